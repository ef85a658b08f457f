// Package store persists project index snapshots to SQLite so query
// commands can warm-start from a prior CLI run instead of re-walking the
// project.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for persisted index snapshots.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the snapshot tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
  id              INTEGER PRIMARY KEY,
  root            TEXT NOT NULL UNIQUE,
  file_count      INTEGER NOT NULL,
  checksum        TEXT NOT NULL,
  built_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_files (
  id              INTEGER PRIMARY KEY,
  snapshot_id     INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  path            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS identifiers (
  id              INTEGER PRIMARY KEY,
  snapshot_id     INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  file_id         INTEGER NOT NULL REFERENCES snapshot_files(id) ON DELETE CASCADE,
  name            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_files_snapshot ON snapshot_files(snapshot_id);
CREATE INDEX IF NOT EXISTS idx_identifiers_lookup ON identifiers(snapshot_id, name);
`
