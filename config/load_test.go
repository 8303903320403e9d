package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "registry.json", cfg.Registry.Path)
	assert.Equal(t, "provenance.jsonl", cfg.Ledger.Path)
	assert.Equal(t, "provenance.db", cfg.Ledger.IndexPath)
	assert.True(t, cfg.Execution.Strict)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadIsCached(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evolve.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[registry]
path = "/etc/evolve/registry.json"

[ledger]
path = "/var/lib/evolve/provenance.jsonl"

[execution]
strict = false
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/evolve/registry.json", cfg.Registry.Path)
	assert.Equal(t, "/var/lib/evolve/provenance.jsonl", cfg.Ledger.Path)
	assert.False(t, cfg.Execution.Strict)
	// Unset sections keep defaults
	assert.Equal(t, "provenance.db", cfg.Ledger.IndexPath)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("EVOLVE_LEDGER_PATH", "/tmp/override.jsonl")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.jsonl", cfg.Ledger.Path)
}
