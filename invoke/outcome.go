package invoke

import (
	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/ledger"
)

// OutcomeKind classifies what an operator call produced.
type OutcomeKind int

const (
	// OutcomeOK means the operator returned outputs.
	OutcomeOK OutcomeKind = iota
	// OutcomeStub means the operator signalled "not implemented".
	OutcomeStub
	// OutcomeFailure means the operator returned any other error.
	OutcomeFailure
)

// Outcome is the explicit result value the engine branches on after calling
// an operator. Stub detection is a value check against the distinguished
// not-implemented sentinel, not error-type control flow at the call site.
type Outcome struct {
	Kind    OutcomeKind
	Outputs map[string]any
	Cause   error
}

// classify folds an operator's return pair into an Outcome.
func classify(outputs map[string]any, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: OutcomeOK, Outputs: outputs}
	case errors.IsNotImplemented(err):
		return Outcome{Kind: OutcomeStub, Cause: err}
	default:
		return Outcome{Kind: OutcomeFailure, Cause: err}
	}
}

// status maps the outcome onto its ledger record status.
func (o Outcome) status() ledger.Status {
	switch o.Kind {
	case OutcomeStub:
		return ledger.StatusStubBlocked
	case OutcomeFailure:
		return ledger.StatusFailed
	default:
		return ledger.StatusOK
	}
}
