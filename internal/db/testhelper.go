package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated metadata store in t.TempDir() and closes it
// when the test ends.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	store, err := OpenMetaStore(t.Context(), filepath.Join(t.TempDir(), "test.sqlite"), 4, nil)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store.Write, store.Read
}
