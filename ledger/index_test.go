package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvekit/evolve/db"
	evolvetesting "github.com/evolvekit/evolve/internal/testing"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	database := evolvetesting.CreateTestDB(t)
	require.NoError(t, db.Migrate(database, nil))
	return NewIndex(database)
}

func TestSyncMirrorsChain(t *testing.T) {
	led := Open(filepath.Join(t.TempDir(), "provenance.jsonl"))
	for i := 1; i <= 3; i++ {
		_, err := led.Append(record("run-1", i))
		require.NoError(t, err)
	}

	ix := testIndex(t)
	inserted, err := ix.Sync(led)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	// Re-sync indexes nothing new.
	inserted, err = ix.Sync(led)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	_, err = led.Append(record("run-2", 4))
	require.NoError(t, err)
	inserted, err = ix.Sync(led)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestStats(t *testing.T) {
	led := Open(filepath.Join(t.TempDir(), "provenance.jsonl"))

	ok := record("run-1", 1)
	_, err := led.Append(ok)
	require.NoError(t, err)

	msg := "not implemented"
	stub := record("run-2", 2)
	stub.Status = StatusStubBlocked
	stub.Outputs = nil
	stub.Error = &msg
	_, err = led.Append(stub)
	require.NoError(t, err)

	ix := testIndex(t)
	_, err = ix.Sync(led)
	require.NoError(t, err)

	stats, err := ix.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, 1, stats.Capabilities)
	assert.Equal(t, 1, stats.ByStatus[StatusOK])
	assert.Equal(t, 1, stats.ByStatus[StatusStubBlocked])
}

func TestListRun(t *testing.T) {
	led := Open(filepath.Join(t.TempDir(), "provenance.jsonl"))
	for i := 1; i <= 2; i++ {
		_, err := led.Append(record("run-a", i))
		require.NoError(t, err)
	}
	_, err := led.Append(record("run-b", 3))
	require.NoError(t, err)

	ix := testIndex(t)
	_, err = ix.Sync(led)
	require.NoError(t, err)

	recs, err := ix.ListRun("run-a")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Genesis, recs[0].PrevHash)
	assert.Equal(t, recs[0].StepHash, recs[1].PrevHash)
	assert.Equal(t, "demo.echo", recs[0].Capability)

	empty, err := ix.ListRun("run-z")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
