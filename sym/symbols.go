// Package sym defines canonical symbols for evolve subsystems and system
// markers. These symbols are stable across CLI output, logs, and docs.
package sym

// Subsystem markers used in CLI and log output.
const (
	Registry = "⌘" // capability registry
	Engine   = "⚙" // invocation engine
	Ledger   = "⛓" // provenance ledger
	Codec    = "#" // canonical codec / hashing
	Schema   = "⊨" // schema contract validation
	Operator = "ƒ" // operator table
	Config   = "≡" // configuration
	DB       = "⛁" // ledger index database
)

// Outcome markers for classified invocation results.
const (
	OK          = "✓"
	StubBlocked = "◌"
	Failed      = "✗"
)

// names maps each glyph to its identifier.
var names = map[string]string{
	Registry:    "registry",
	Engine:      "engine",
	Ledger:      "ledger",
	Codec:       "codec",
	Schema:      "schema",
	Operator:    "operator",
	Config:      "config",
	DB:          "db",
	OK:          "ok",
	StubBlocked: "stub_blocked",
	Failed:      "failed",
}

// Name returns the identifier for a glyph, or empty string if unknown.
func Name(glyph string) string {
	return names[glyph]
}

// ForStatus returns the outcome marker for a ledger record status.
func ForStatus(status string) string {
	switch status {
	case "ok":
		return OK
	case "stub_blocked":
		return StubBlocked
	case "failed":
		return Failed
	default:
		return "?"
	}
}
