// Package canonical produces a single deterministic byte encoding, and a
// SHA-256 content hash, for any JSON-compatible value. Every hash stored in
// the provenance ledger is computed through this package.
//
// Two profiles exist. ProfileStrict rejects floating-point numbers anywhere
// in the value tree and is the only profile used for stored or compared
// hashes. ProfileLenient admits finite floats and exists for display and
// debug encodings only; mixing profiles at a hash site silently diverges
// digests for the same logical payload.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/evolvekit/evolve/errors"
)

// Profile selects the numeric domain admitted by the codec.
type Profile int

const (
	// ProfileStrict forbids floating-point numbers outright. Hashed
	// payloads must represent fractional quantities as integers
	// (e.g. cents, millis) or strings before reaching the codec.
	ProfileStrict Profile = iota

	// ProfileLenient admits finite floats. Never used to produce a hash
	// that is persisted or compared.
	ProfileLenient
)

// Encoding failure sentinels.
var (
	// ErrFloatForbidden is returned by ProfileStrict for any float in the
	// value tree, however deeply nested.
	ErrFloatForbidden = errors.New("float forbidden in strict canonical profile")

	// ErrNonFinite is returned for NaN or infinite values under either profile.
	ErrNonFinite = errors.New("non-finite number not canonicalizable")

	// ErrNonStringKey is returned for a map whose key type is not string.
	ErrNonStringKey = errors.New("map key is not a string")

	// ErrUnsupportedType is returned for values outside the JSON data model.
	ErrUnsupportedType = errors.New("unsupported type for canonical encoding")
)

// Canonicalize rewrites v into its normalized form: maps become
// map[string]any, sequences become []any preserving order, integral numbers
// become int64 (or uint64 when out of int64 range), and floats either pass
// through (lenient) or fail (strict). The returned tree encodes and hashes
// identically to v.
func Canonicalize(v any, profile Profile) (any, error) {
	switch val := v.(type) {
	case nil, bool, string:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return uint64(val), nil
	case uint8:
		return uint64(val), nil
	case uint16:
		return uint64(val), nil
	case uint32:
		return uint64(val), nil
	case uint64:
		return val, nil
	case float32:
		return canonicalizeFloat(float64(val), profile)
	case float64:
		return canonicalizeFloat(val, profile)
	case json.Number:
		return canonicalizeNumber(val, profile)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			ce, err := Canonicalize(elem, profile)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}
			out[k] = ce
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			ce, err := Canonicalize(elem, profile)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = ce
		}
		return out, nil
	}
	return canonicalizeReflect(v, profile)
}

// canonicalizeReflect handles typed maps and slices outside the fast paths.
func canonicalizeReflect(v any, profile Profile) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, errors.Wrapf(ErrNonStringKey, "map type %s", rv.Type())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			ce, err := Canonicalize(iter.Value().Interface(), profile)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}
			out[k] = ce
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ce, err := Canonicalize(rv.Index(i).Interface(), profile)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = ce
		}
		return out, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Canonicalize(rv.Elem().Interface(), profile)
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "%T", v)
}

func canonicalizeFloat(f float64, profile Profile) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNonFinite
	}
	if profile == ProfileStrict {
		return nil, errors.Wrapf(ErrFloatForbidden, "value %v", f)
	}
	return f, nil
}

// canonicalizeNumber keeps integral json.Numbers exact and routes fractional
// or exponent forms through the float rules.
func canonicalizeNumber(n json.Number, profile Profile) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, nil
		}
		// Integral but beyond uint64: treat as float-class
	}
	if profile == ProfileStrict {
		return nil, errors.Wrapf(ErrFloatForbidden, "number %s", s)
	}
	f, err := n.Float64()
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedType, "unparseable number %s", s)
	}
	return canonicalizeFloat(f, profile)
}

// Encode serializes v in canonical form: object keys sorted lexicographically,
// no whitespace, ASCII-safe string escaping, NaN/Infinity rejected.
func Encode(v any, profile Profile) ([]byte, error) {
	cv, err := Canonicalize(v, profile)
	if err != nil {
		return nil, err
	}
	var b []byte
	return appendValue(b, cv)
}

// Hash returns the lowercase hex SHA-256 of the canonical encoding of v.
func Hash(v any, profile Profile) (string, error) {
	data, err := Encode(v, profile)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Decode parses JSON preserving numeric fidelity: numbers surface as
// json.Number so integral values survive round-trips without becoming floats.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decode canonical JSON")
	}
	return v, nil
}

// appendValue writes the canonical serialization of an already-canonicalized
// value. Unknown types cannot appear here.
func appendValue(b []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return append(b, "null"...), nil
	case bool:
		if val {
			return append(b, "true"...), nil
		}
		return append(b, "false"...), nil
	case string:
		return appendString(b, val), nil
	case int64:
		return strconv.AppendInt(b, val, 10), nil
	case uint64:
		return strconv.AppendUint(b, val, 10), nil
	case float64:
		return strconv.AppendFloat(b, val, 'g', -1, 64), nil
	case []any:
		var err error
		b = append(b, '[')
		for i, elem := range val {
			if i > 0 {
				b = append(b, ',')
			}
			if b, err = appendValue(b, elem); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var err error
		b = append(b, '{')
		for i, k := range keys {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendString(b, k)
			b = append(b, ':')
			if b, err = appendValue(b, val[k]); err != nil {
				return nil, err
			}
		}
		return append(b, '}'), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "%T after canonicalization", v)
}

const hexDigits = "0123456789abcdef"

// appendString escapes to pure ASCII so the encoding is byte-identical
// regardless of platform or locale handling of multibyte text.
func appendString(b []byte, s string) []byte {
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			if r < 0x20 || r > 0x7e {
				if r > 0xffff {
					// Surrogate pair for astral-plane runes
					r -= 0x10000
					hi := 0xd800 + (r >> 10)
					lo := 0xdc00 + (r & 0x3ff)
					b = appendEscapedRune(b, hi)
					b = appendEscapedRune(b, lo)
				} else {
					b = appendEscapedRune(b, r)
				}
			} else {
				b = append(b, byte(r))
			}
		}
	}
	return append(b, '"')
}

func appendEscapedRune(b []byte, r rune) []byte {
	return append(b, '\\', 'u',
		hexDigits[(r>>12)&0xf],
		hexDigits[(r>>8)&0xf],
		hexDigits[(r>>4)&0xf],
		hexDigits[r&0xf])
}
