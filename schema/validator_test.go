package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvekit/evolve/errors"
)

const echoSchema = `{
	"type": "object",
	"properties": {
		"value": {"type": "integer"}
	},
	"required": ["value"],
	"additionalProperties": false
}`

func writeSchema(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestValidateAccepts(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "echo.json", echoSchema)

	v := NewValidator(dir)
	err := v.Validate("echo.json", map[string]any{"value": 42})
	assert.NoError(t, err)
}

func TestValidateRejectsWrongType(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "echo.json", echoSchema)

	v := NewValidator(dir)
	err := v.Validate("echo.json", map[string]any{"value": "forty-two"})
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "echo.json", echoSchema)

	v := NewValidator(dir)
	err := v.Validate("echo.json", map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))
}

func TestMissingSchemaDocumentIsViolation(t *testing.T) {
	v := NewValidator(t.TempDir())
	err := v.Validate("ghost.json", map[string]any{"value": 1})
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))
}

func TestCompiledSchemaIsCached(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "echo.json", echoSchema)

	v := NewValidator(dir)
	require.NoError(t, v.Validate("echo.json", map[string]any{"value": 1}))

	// Removing the file must not invalidate the cached compilation.
	require.NoError(t, os.Remove(filepath.Join(dir, "echo.json")))
	assert.NoError(t, v.Validate("echo.json", map[string]any{"value": 2}))
}
