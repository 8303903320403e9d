// Package operator holds the explicit registration table mapping operator
// references to functions. References are plain strings carried by the
// registry document (e.g. "operators.echo"); the table is populated at
// process start, so resolution never does runtime symbol lookup.
package operator

import (
	"context"
	"sort"
	"sync"

	"github.com/evolvekit/evolve/errors"
)

// Operator is the contract every capability implementation satisfies: named
// inputs in, named outputs out. Under strict execution an unimplemented
// operator returns an error wrapping errors.ErrNotImplemented; outside strict
// mode placeholders are expected to return a neutral result instead.
type Operator func(ctx context.Context, inputs map[string]any, strict bool) (map[string]any, error)

// Table maps operator reference strings to functions.
type Table struct {
	mu        sync.RWMutex
	operators map[string]Operator
}

// NewTable creates an empty operator table.
func NewTable() *Table {
	return &Table{operators: make(map[string]Operator)}
}

// Register binds a reference to a function. Re-registering a reference is an
// error; the table is meant to be populated once at startup.
func (t *Table) Register(reference string, op Operator) error {
	if reference == "" {
		return errors.New("operator reference is empty")
	}
	if op == nil {
		return errors.Newf("operator %s is nil", reference)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.operators[reference]; exists {
		return errors.Newf("operator already registered: %s", reference)
	}
	t.operators[reference] = op
	return nil
}

// MustRegister is Register for process-start wiring where a collision is a
// programming error.
func (t *Table) MustRegister(reference string, op Operator) {
	if err := t.Register(reference, op); err != nil {
		panic(err)
	}
}

// Resolve returns the operator bound to reference. A missing reference is a
// configuration error, not a stub.
func (t *Table) Resolve(reference string) (Operator, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	op, ok := t.operators[reference]
	if !ok {
		return nil, errors.Wrapf(errors.ErrOperatorResolution, "reference %q", reference)
	}
	return op, nil
}

// List returns all registered references in sorted order.
func (t *Table) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	refs := make([]string, 0, len(t.operators))
	for ref := range t.operators {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// NotImplemented builds the distinguished stub signal with detail about the
// missing body.
func NotImplemented(detail string) error {
	return errors.Wrap(errors.ErrNotImplemented, detail)
}
