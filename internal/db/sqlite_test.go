package db

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	write := buildDSN("/tmp/meta.sqlite", ModeWrite)
	assert.True(t, strings.HasPrefix(write, "/tmp/meta.sqlite?"))
	assert.Contains(t, write, "_journal_mode=WAL")
	assert.Contains(t, write, "_busy_timeout=5000")
	assert.Contains(t, write, "_txlock=immediate")

	read := buildDSN("/tmp/meta.sqlite", ModeRead)
	assert.Contains(t, read, "_foreign_keys=on")
	assert.NotContains(t, read, "_txlock")
}

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "meta.db"), Mode("invalid"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite(t.Context(), "/nonexistent/dir/meta.db", ModeWrite, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping sqlite")
}

func TestOpenMetaStore(t *testing.T) {
	store, err := OpenMetaStore(t.Context(), filepath.Join(t.TempDir(), "meta.db"), 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	writeDB, readDB := store.Write, store.Read

	assert.Equal(t, 1, writeDB.Stats().MaxOpenConnections)
	assert.Equal(t, 4, readDB.Stats().MaxOpenConnections)

	var journalMode string
	require.NoError(t, writeDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))
}

func TestMigrate_CreatesTables(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	for _, table := range []string{"sync_runs", "evaluations"} {
		var name string
		err := readDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	version, err := SchemaVersion(t.Context(), readDB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Re-running is a no-op.
	require.NoError(t, Migrate(t.Context(), writeDB, nil))
}

func TestMetaStore_ConcurrentWritesAndReads(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = writeDB.Exec(`INSERT INTO evaluations (id, file_id, model_used, evaluation_result, evaluated_at)
				VALUES (?, 'f', 'm', 'r', '2026-03-20 10:00:00.000000000')`, idx)
		}(i)
		go func(idx int) {
			defer wg.Done()
			var n int
			errs[10+idx] = readDB.QueryRow("SELECT count(*) FROM evaluations").Scan(&n)
		}(i)
	}
	wg.Wait()

	for i, e := range errs {
		assert.NoError(t, e, "op %d failed", i)
	}
}
