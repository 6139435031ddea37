package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Backends lists the supported persistence backends.
var Backends = []string{"json", "sqlite", "memory"}

// NewPersister creates a Persister based on the backend name. Every backend
// is seeded from the JSON files in dataDir.
//
// Supported backends:
//
//	"json"   - JSON files in dataDir (default)
//	"sqlite" - SQLite database at dataDir/fake-server.db
//	"memory" - In-memory (mutations are never written back)
func NewPersister(backend, dataDir string, logger *slog.Logger) (Persister, error) {
	files, err := NewJsonFilePersister(dataDir, logger)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "json", "":
		return files, nil
	case "sqlite":
		dbPath := filepath.Join(dataDir, "fake-server.db")
		return NewSqlitePersister(dbPath, files, logger)
	case "memory":
		seed, err := files.Load()
		if err != nil {
			return nil, err
		}
		return NewMemoryPersister(seed), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: json, sqlite, memory)", backend)
	}
}

// New opens a Store on the named backend.
func New(backend, dataDir string, logger *slog.Logger) (*Store, error) {
	p, err := NewPersister(backend, dataDir, logger)
	if err != nil {
		return nil, err
	}
	s, err := Open(p, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}
