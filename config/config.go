// Package config manages evolve configuration: an evolve.toml document,
// EVOLVE_* environment overrides, and defaults, resolved through Viper.
package config

import "github.com/evolvekit/evolve/version"

// Config is the evolve core configuration.
type Config struct {
	Registry  RegistryConfig  `mapstructure:"registry"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Log       LogConfig       `mapstructure:"log"`
}

// RegistryConfig locates the capability registry document and the root
// against which relative schema paths resolve.
type RegistryConfig struct {
	Path       string `mapstructure:"path"`
	SchemaRoot string `mapstructure:"schema_root"`
}

// LedgerConfig locates the provenance ledger and its derived SQLite index.
type LedgerConfig struct {
	Path      string `mapstructure:"path"`
	IndexPath string `mapstructure:"index_path"`
}

// ExecutionConfig controls invocation defaults.
type ExecutionConfig struct {
	// Strict makes unimplemented operators a hard stop.
	Strict bool `mapstructure:"strict"`
}

// LogConfig controls logger output.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// RevisionID is the default revision_id for invocation contexts: the short
// build commit of the running binary.
func (c *Config) RevisionID() string {
	return version.Get().Short()
}
