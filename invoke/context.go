package invoke

import (
	"github.com/google/uuid"

	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/ledger"
)

// Context is the mandatory caller identity carried by every invocation.
// Constructed per logical run immediately before invoking; never persisted
// on its own — it is embedded, hashed, into every ledger record it produces.
type Context struct {
	RunID       string
	SubsystemID string
	RevisionID  string
}

// NewContext builds a context with a fresh UUID run id.
func NewContext(subsystemID, revisionID string) Context {
	return Context{
		RunID:       uuid.NewString(),
		SubsystemID: subsystemID,
		RevisionID:  revisionID,
	}
}

// Validate fails unless all three fields are non-empty.
func (c Context) Validate() error {
	switch {
	case c.RunID == "":
		return errors.Wrap(errors.ErrMissingContext, "run_id is empty")
	case c.SubsystemID == "":
		return errors.Wrap(errors.ErrMissingContext, "subsystem_id is empty")
	case c.RevisionID == "":
		return errors.Wrap(errors.ErrMissingContext, "revision_id is empty")
	}
	return nil
}

// record converts to the ledger's embedded form.
func (c Context) record() ledger.RecordContext {
	return ledger.RecordContext{
		RunID:       c.RunID,
		SubsystemID: c.SubsystemID,
		RevisionID:  c.RevisionID,
	}
}

// hashable is the canonical tree hashed into context_hash.
func (c Context) hashable() map[string]any {
	return map[string]any{
		"run_id":       c.RunID,
		"subsystem_id": c.SubsystemID,
		"revision_id":  c.RevisionID,
	}
}
