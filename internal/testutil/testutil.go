// Package testutil provides shared test helpers for setting up stores and sessions.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/cfreality/internal/persist"
	"github.com/starford/cfreality/internal/session"
	"github.com/starford/cfreality/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore creates a file-backed storage.Provider in a temp directory.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestSession creates a session persisted synchronously to an in-memory
// store. The adapter is returned so tests can read back what was saved.
// The session clock is stopped on cleanup.
func TestSession(t *testing.T, opts ...session.Option) (*session.Session, *persist.Adapter) {
	t.Helper()
	adapter := persist.NewAdapter(storage.NewMemory(), persist.DefaultKey, Logger())
	base := []session.Option{
		session.WithSaver(adapter),
		session.WithLogger(Logger()),
	}
	s := session.New(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, adapter
}
