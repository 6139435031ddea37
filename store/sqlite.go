package store

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// SqlitePersister mirrors every resource into a single SQLite database,
// seeded from another Persister (normally the JSON data directory).
//
// Tables:
//
//	resources(name, data)  PRIMARY KEY (name), data is the JSON array
type SqlitePersister struct {
	mu     sync.Mutex
	db     *sql.DB
	seed   Persister
	logger *slog.Logger
}

func NewSqlitePersister(dbPath string, seed Persister, logger *slog.Logger) (*SqlitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS resources (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &SqlitePersister{db: db, seed: seed, logger: logger}, nil
}

// Load returns the seed resources overlaid with every resource stored in the
// database. A stored row wins over a seed of the same name.
func (s *SqlitePersister) Load() (map[string][]Record, error) {
	result := make(map[string][]Record)
	if s.seed != nil {
		seeded, err := s.seed.Load()
		if err != nil {
			return nil, err
		}
		for name, records := range seeded {
			result[name] = records
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name, data FROM resources")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, err
		}
		records, err := DecodeRecords([]byte(raw))
		if err != nil {
			s.logger.Warn("failed to parse stored resource", "resource", name, "err", err)
			records = []Record{}
		}
		result[name] = records
	}
	return result, rows.Err()
}

func (s *SqlitePersister) Save(resource string, records []Record) error {
	b, err := EncodeRecords(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT INTO resources (name, data) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
		resource, string(b),
	)
	return err
}

func (s *SqlitePersister) Close() error {
	return s.db.Close()
}
