// Package testutil provides shared test helpers for setting up page stores and services.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/motioneffector/wiki/internal/storage"
	"github.com/motioneffector/wiki/internal/wikilink"
	"github.com/motioneffector/wiki/internal/wikiservice"
)

// TestStore creates a temporary page directory with a storage.Provider.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestSQLite creates a temporary SQLite-backed provider that is
// automatically cleaned up.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "wiki-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestService creates a wiki service over a temporary filesystem store
// using the default link syntax.
func TestService(t *testing.T) *wikiservice.Service {
	t.Helper()
	_, store := TestStore(t)
	svc, err := wikiservice.New(store, wikilink.Default())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}
