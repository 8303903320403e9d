package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	database, err := Open(path, nil)
	require.NoError(t, err)
	defer database.Close()

	var mode string
	require.NoError(t, database.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestIsDatabaseClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	database, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	err = database.QueryRow("SELECT 1").Scan(new(int))
	assert.True(t, IsDatabaseClosed(err))
	assert.False(t, IsDatabaseClosed(nil))
}
