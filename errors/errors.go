// Package errors provides error handling for evolve.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrStubBlocked) {
//	    // handle stub
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Substrate sentinel errors. Every classified invocation outcome maps to one
// of these; use errors.Is() to branch, errors.Wrap() to add context while
// preserving the type.
var (
	// ErrMissingContext indicates an invocation context with an empty
	// run, subsystem, or revision id. Raised before any ledger write.
	ErrMissingContext = New("invocation context incomplete")

	// ErrAmbiguousCapability indicates more than one registry binding
	// answers the same capability id.
	ErrAmbiguousCapability = New("ambiguous capability binding")

	// ErrOperatorResolution indicates a binding's operator reference has
	// no registered function. A configuration error, not a stub.
	ErrOperatorResolution = New("operator not registered")

	// ErrContractViolation indicates inputs or outputs failed JSON Schema
	// validation against the binding's declared contract.
	ErrContractViolation = New("capability contract violation")

	// ErrStubBlocked indicates the operator reported itself unimplemented
	// under strict execution.
	ErrStubBlocked = New("stub operator blocked")

	// ErrInvocation wraps an operator-internal failure.
	ErrInvocation = New("operator invocation failed")

	// ErrNotImplemented is the distinguished signal an operator returns
	// when its body is a placeholder. The engine classifies it as a stub
	// rather than a failure.
	ErrNotImplemented = New("not implemented")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")
)

// IsStubBlocked checks if an error is or wraps ErrStubBlocked.
func IsStubBlocked(err error) bool {
	return err != nil && Is(err, ErrStubBlocked)
}

// IsContractViolation checks if an error is or wraps ErrContractViolation.
func IsContractViolation(err error) bool {
	return err != nil && Is(err, ErrContractViolation)
}

// IsNotImplemented checks if an error is or wraps ErrNotImplemented.
// Operators may wrap the sentinel with detail about what is missing.
func IsNotImplemented(err error) bool {
	return err != nil && Is(err, ErrNotImplemented)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
