// Package invoke is the single call path through which every operator is
// exercised. The engine enforces the invocation context, optional schema
// contracts, and outcome classification, and records every classified
// outcome in the provenance ledger before surfacing an error to the caller.
package invoke

import (
	"context"

	"go.uber.org/zap"

	"github.com/evolvekit/evolve/canonical"
	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/ledger"
	"github.com/evolvekit/evolve/operator"
	"github.com/evolvekit/evolve/registry"
	"github.com/evolvekit/evolve/schema"
	"github.com/evolvekit/evolve/sym"
)

// Engine resolves bindings, validates contracts, calls operators, and
// records outcomes. Safe for concurrent use; all state is read-only after
// construction except the ledger, which serializes its own appends.
type Engine struct {
	registry  *registry.Registry
	operators *operator.Table
	schemas   *schema.Validator
	log       *zap.SugaredLogger
}

// NewEngine wires an engine. logger may be nil for silent operation.
func NewEngine(reg *registry.Registry, ops *operator.Table, schemas *schema.Validator, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		registry:  reg,
		operators: ops,
		schemas:   schemas,
		log:       logger,
	}
}

// Invoke runs one capability. The ledger handle is injected per call; its
// lifecycle belongs to the top-level caller. Exactly one ledger record is
// appended for every classified outcome (ok, stub_blocked, failed); context
// validation and binding resolution fail before any ledger write.
func (e *Engine) Invoke(
	ctx context.Context,
	capabilityID string,
	inputs map[string]any,
	ictx Context,
	strict bool,
	led *ledger.Ledger,
) (map[string]any, error) {
	if err := ictx.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invoke %s", capabilityID)
	}

	binding, err := e.resolveBinding(capabilityID)
	if err != nil {
		return nil, err
	}
	if led == nil && binding.ProvenanceRequired {
		return nil, errors.Newf("capability %s requires provenance but no ledger was provided", capabilityID)
	}

	// Hash inputs and context up front; a non-canonicalizable payload is
	// the caller's bug and fails before any side effect.
	inputsHash, err := canonical.Hash(inputs, canonical.ProfileStrict)
	if err != nil {
		return nil, errors.Wrapf(err, "capability %s: inputs not canonicalizable", capabilityID)
	}
	contextHash, err := canonical.Hash(ictx.hashable(), canonical.ProfileStrict)
	if err != nil {
		return nil, errors.Wrapf(err, "capability %s: context not canonicalizable", capabilityID)
	}

	rec := &ledger.Record{
		Capability:  binding.CapabilityID,
		RuneID:      binding.RuneID,
		Version:     binding.Version,
		Context:     ictx.record(),
		Inputs:      inputs,
		InputsHash:  inputsHash,
		ContextHash: contextHash,
	}
	if rec.Capability == "" {
		rec.Capability = capabilityID
	}

	if binding.InputSchema != "" {
		if err := e.schemas.Validate(binding.InputSchema, inputs); err != nil {
			violation := errors.Wrapf(err, "capability %s: inputs", capabilityID)
			return nil, e.recordFailure(led, rec, violation)
		}
	}

	op, err := e.operators.Resolve(binding.OperatorReference)
	if err != nil {
		resolution := errors.Wrapf(err, "capability %s", capabilityID)
		return nil, e.recordFailure(led, rec, resolution)
	}

	outputs, callErr := op(ctx, inputs, strict)
	outcome := classify(outputs, callErr)

	switch outcome.Kind {
	case OutcomeStub:
		stub := errors.Wrapf(errors.ErrStubBlocked, "capability %s: %v", capabilityID, outcome.Cause)
		return nil, e.record(led, rec, outcome.status(), nil, stub)

	case OutcomeFailure:
		failure := errors.Wrapf(errors.ErrInvocation, "capability %s: %v", capabilityID, outcome.Cause)
		return nil, e.record(led, rec, outcome.status(), nil, failure)
	}

	// Operator succeeded; a violated output contract still fails the call.
	if binding.OutputSchema != "" {
		if err := e.schemas.Validate(binding.OutputSchema, outcome.Outputs); err != nil {
			violation := errors.Wrapf(err, "capability %s: outputs", capabilityID)
			return nil, e.recordFailure(led, rec, violation)
		}
	}

	if err := e.record(led, rec, outcome.status(), outcome.Outputs, nil); err != nil {
		return nil, err
	}
	return outcome.Outputs, nil
}

// resolveBinding prefers an exact legacy rune binding; more than one answer
// for the same id refuses the call.
func (e *Engine) resolveBinding(capabilityID string) (*registry.Binding, error) {
	if matches := e.registry.MatchesByRune(capabilityID); len(matches) > 0 {
		if len(matches) > 1 {
			return nil, errors.Wrapf(errors.ErrAmbiguousCapability, "rune %s has %d bindings", capabilityID, len(matches))
		}
		return matches[0], nil
	}

	matches := e.registry.MatchesByCapability(capabilityID)
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError("capability %s", capabilityID)
	case 1:
		return matches[0], nil
	}
	return nil, errors.Wrapf(errors.ErrAmbiguousCapability, "capability %s has %d bindings", capabilityID, len(matches))
}

// recordFailure writes a failed record carrying the violation message and
// returns the violation.
func (e *Engine) recordFailure(led *ledger.Ledger, rec *ledger.Record, cause error) error {
	return e.record(led, rec, ledger.StatusFailed, nil, cause)
}

// record appends the classified outcome. The ledger is the durable audit
// trail; an error passed in is returned after the append so the caller sees
// exactly what was recorded. A failing append supersedes the original error.
func (e *Engine) record(led *ledger.Ledger, rec *ledger.Record, status ledger.Status, outputs map[string]any, cause error) error {
	rec.Status = status
	rec.Outputs = outputs
	if cause != nil {
		msg := cause.Error()
		rec.Error = &msg
	}

	if led != nil {
		stepHash, err := led.Append(rec)
		if err != nil {
			return errors.Wrapf(err, "record %s outcome for %s", status, rec.Capability)
		}
		if e.log != nil {
			e.log.Debugw("Invocation recorded",
				"symbol", sym.Engine,
				"subsystem", sym.Name(sym.Engine),
				"capability", rec.Capability,
				"run_id", rec.Context.RunID,
				"status", string(status),
				"step_hash", stepHash,
			)
		}
	}

	return cause
}
