package canonical

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvekit/evolve/errors"
)

func TestHashIgnoresKeyOrder(t *testing.T) {
	a := map[string]any{"alpha": 1, "beta": []any{"x", "y"}, "gamma": map[string]any{"k": true}}
	b := map[string]any{"gamma": map[string]any{"k": true}, "beta": []any{"x", "y"}, "alpha": 1}

	ha, err := Hash(a, ProfileStrict)
	require.NoError(t, err)
	hb, err := Hash(b, ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestHashDistinguishesValues(t *testing.T) {
	h1, err := Hash(map[string]any{"value": 1}, ProfileStrict)
	require.NoError(t, err)
	h2, err := Hash(map[string]any{"value": 2}, ProfileStrict)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestSequenceOrderMatters(t *testing.T) {
	h1, err := Hash([]any{"a", "b"}, ProfileStrict)
	require.NoError(t, err)
	h2, err := Hash([]any{"b", "a"}, ProfileStrict)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestStrictRejectsFloat(t *testing.T) {
	_, err := Hash(3.14, ProfileStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFloatForbidden))
}

func TestStrictRejectsNestedFloat(t *testing.T) {
	v := map[string]any{
		"outer": []any{
			map[string]any{"inner": 2.5},
		},
	}
	_, err := Hash(v, ProfileStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFloatForbidden))
}

func TestLenientAllowsFloat(t *testing.T) {
	h, err := Hash(map[string]any{"score": 0.75}, ProfileLenient)
	require.NoError(t, err)
	assert.Len(t, h, 64)
}

func TestProfilesDivergeOnFloats(t *testing.T) {
	// The same integral payload hashes identically under both profiles;
	// only float-bearing payloads diverge (by failing strict).
	v := map[string]any{"n": 42}
	hs, err := Hash(v, ProfileStrict)
	require.NoError(t, err)
	hl, err := Hash(v, ProfileLenient)
	require.NoError(t, err)
	assert.Equal(t, hs, hl)
}

func TestNonFiniteRejectedEverywhere(t *testing.T) {
	for _, f := range []float64{nan(), posInf()} {
		_, err := Hash(f, ProfileLenient)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNonFinite))
	}
}

func nan() float64    { f := 0.0; return f / f }
func posInf() float64 { f := 1.0; return f / 0.0 }

func TestNonStringKeyRejected(t *testing.T) {
	_, err := Encode(map[int]string{1: "x"}, ProfileStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonStringKey))
}

func TestUnsupportedTypeRejected(t *testing.T) {
	type opaque struct{ X int }
	_, err := Encode(opaque{X: 1}, ProfileStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestEncodeCompactSortedASCII(t *testing.T) {
	v := map[string]any{"b": "héllo", "a": []any{1, nil, true}}
	data, err := Encode(v, ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,null,true],"b":"h\u00e9llo"}`, string(data))
}

func TestEncodeEscapesControlAndAstral(t *testing.T) {
	data, err := Encode("line\nbreak \U0001F600", ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, `"line\nbreak \ud83d\ude00"`, string(data))
}

func TestDecodePreservesIntegers(t *testing.T) {
	v, err := Decode([]byte(`{"big":9007199254740993,"small":1}`))
	require.NoError(t, err)

	// Round-trip through the strict profile must not classify integers
	// as floats.
	h, err := Hash(v, ProfileStrict)
	require.NoError(t, err)

	direct, err := Hash(map[string]any{"big": int64(9007199254740993), "small": 1}, ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, direct, h)
}

func TestDecodedFloatStillRejectedByStrict(t *testing.T) {
	v, err := Decode([]byte(`{"ratio":0.5}`))
	require.NoError(t, err)
	_, err = Hash(v, ProfileStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFloatForbidden))
}

func TestCanonicalizeNormalizesNumberTypes(t *testing.T) {
	cv, err := Canonicalize(map[string]any{"a": int32(7), "b": json.Number("7")}, ProfileStrict)
	require.NoError(t, err)
	m := cv.(map[string]any)
	assert.Equal(t, int64(7), m["a"])
	assert.Equal(t, int64(7), m["b"])
}

func TestTypedSliceAndMap(t *testing.T) {
	h1, err := Hash(map[string]string{"k": "v"}, ProfileStrict)
	require.NoError(t, err)
	h2, err := Hash(map[string]any{"k": "v"}, ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := Hash([]string{"a", "b"}, ProfileStrict)
	require.NoError(t, err)
	h4, err := Hash([]any{"a", "b"}, ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, h3, h4)
}

func TestHashDeterministicAcrossCalls(t *testing.T) {
	v := map[string]any{"run": "r-1", "steps": []any{1, 2, 3}}
	h1, err := Hash(v, ProfileStrict)
	require.NoError(t, err)
	h2, err := Hash(v, ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
