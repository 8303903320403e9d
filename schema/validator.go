// Package schema validates capability inputs and outputs against JSON Schema
// documents referenced by path from a repository root. Compiled schemas are
// cached per path for the life of the validator.
package schema

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/evolvekit/evolve/errors"
)

// Validator compiles and caches JSON Schema documents.
type Validator struct {
	root string

	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

// NewValidator creates a validator resolving relative schema paths against
// root. An empty root resolves against the working directory.
func NewValidator(root string) *Validator {
	return &Validator{
		root:  root,
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Validate checks value against the schema document at path. Any failure,
// whether the document cannot be compiled or the value does not conform,
// is a contract violation.
func (v *Validator) Validate(path string, value any) error {
	sch, err := v.compiled(path)
	if err != nil {
		return errors.Wrapf(errors.ErrContractViolation, "schema %s: %v", path, err)
	}

	// The validator walks values in encoding/json's UseNumber shape;
	// round-trip arbitrary Go values into that shape first.
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(errors.ErrContractViolation, "schema %s: marshal value: %v", path, err)
	}
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrapf(errors.ErrContractViolation, "schema %s: decode value: %v", path, err)
	}

	if err := sch.Validate(decoded); err != nil {
		return errors.Wrapf(errors.ErrContractViolation, "schema %s: %v", path, err)
	}
	return nil
}

func (v *Validator) compiled(path string) (*jsonschema.Schema, error) {
	resolved := path
	if !filepath.IsAbs(resolved) && v.root != "" {
		resolved = filepath.Join(v.root, resolved)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.cache[resolved]; ok {
		return sch, nil
	}

	compiler := jsonschema.NewCompiler()
	sch, err := compiler.Compile(resolved)
	if err != nil {
		return nil, err
	}
	v.cache[resolved] = sch
	return sch, nil
}
