package storage

import (
	"fmt"
	"log/slog"
	"os"
)

// Open returns the Provider for backend rooted at path.
func Open(backend, path string, logger *slog.Logger) (Provider, error) {
	switch backend {
	case BackendFile:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create dir: %w", err)
		}
		return NewFS(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBadger:
		return OpenBadger(BadgerConfig{Path: path, SyncWrites: true, Logger: logger})
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}
