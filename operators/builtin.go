// Package operators provides the built-in operator bodies shipped with the
// evolve binary. Domain heuristics live behind the same table but in their
// own packages; these built-ins exist so a fresh checkout can exercise the
// full invocation path, including the stub lane.
package operators

import (
	"context"

	"github.com/evolvekit/evolve/canonical"
	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/operator"
)

// Register binds every built-in operator reference into the table.
func Register(table *operator.Table) error {
	builtins := map[string]operator.Operator{
		"operators.echo":       Echo,
		"operators.digest":     Digest,
		"operators.dmx_score":  DMXScore,
		"operators.csp_signal": CSPSignal,
	}
	for ref, op := range builtins {
		if err := table.Register(ref, op); err != nil {
			return err
		}
	}
	return nil
}

// Echo returns its inputs unchanged.
func Echo(_ context.Context, inputs map[string]any, _ bool) (map[string]any, error) {
	out := make(map[string]any, len(inputs))
	for k, v := range inputs {
		out[k] = v
	}
	return out, nil
}

// Digest returns the strict canonical hash of its inputs. Useful for
// anchoring an external payload into a run without storing it.
func Digest(_ context.Context, inputs map[string]any, _ bool) (map[string]any, error) {
	h, err := canonical.Hash(inputs, canonical.ProfileStrict)
	if err != nil {
		return nil, errors.Wrap(err, "digest inputs")
	}
	return map[string]any{"digest": h}, nil
}

// DMXScore is the memetic-extraction scoring placeholder.
func DMXScore(_ context.Context, _ map[string]any, strict bool) (map[string]any, error) {
	if strict {
		return nil, operator.NotImplemented("dmx scoring heuristic")
	}
	return map[string]any{}, nil
}

// CSPSignal is the conspiracy-signal detector placeholder.
func CSPSignal(_ context.Context, _ map[string]any, strict bool) (map[string]any, error) {
	if strict {
		return nil, operator.NotImplemented("csp signal detector")
	}
	return map[string]any{}, nil
}
