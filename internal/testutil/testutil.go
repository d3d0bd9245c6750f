// Package testutil provides shared test helpers for setting up stores and
// directories.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/richtext"
	"github.com/starford/notebook/internal/storage"
)

// TestStore creates a temporary SQLite note store that is automatically cleaned up.
func TestStore(t *testing.T, opts ...notestore.Option) *notestore.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notebook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	s, err := notestore.Open(dbFile.Name(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestDir creates a temporary directory with a storage.Provider.
func TestDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// CreateNote stores text as a note and returns its ID.
func CreateNote(t *testing.T, s notestore.NoteStore, text string) string {
	t.Helper()
	id, err := s.Create(context.Background(), richtext.FromText(text, richtext.DefaultTheme()))
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	return id
}
