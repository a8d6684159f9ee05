// Package testutil provides shared test helpers for setting up upload roots and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/arkiv/internal/blob"
	"github.com/starford/arkiv/internal/metadata"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *metadata.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "arkiv-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := metadata.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary upload directory with a blob store over it.
func TestStore(t *testing.T) (string, *blob.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := blob.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
