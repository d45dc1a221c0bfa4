// Package store provides the embedded SQLite record store.
//
// The database file is shared with whatever else the operator points at it;
// ingestion therefore never updates existing rows (see InsertJob) and schema
// maintenance is additive only (see EnsureSchema).
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the jobs database.
type Store struct {
	db *sqlx.DB
}

// Open creates (if necessary) and verifies the SQLite database at path.
// A 30s busy timeout covers the concurrently-running review server.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=30000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Connect(%q): %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
