package storage

import (
	"path/filepath"
	"testing"
)

// openTestStore opens a store backed by a file in a fresh temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), SessionFileName))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store
}
