package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jward/thicket/internal/index"
)

// SaveSnapshot persists idx, replacing any prior snapshot for the same root.
// The whole write runs in one transaction so readers never observe a partial
// snapshot.
func (s *Store) SaveSnapshot(idx *index.Index) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snapshots WHERE root = ?", idx.Root()); err != nil {
		return fmt.Errorf("save snapshot: delete prior: %w", err)
	}

	res, err := tx.Exec(
		"INSERT INTO snapshots (root, file_count, checksum, built_at) VALUES (?, ?, ?, ?)",
		idx.Root(), idx.FileCount(), idx.Checksum(), idx.BuiltAt(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: insert: %w", err)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("save snapshot: id: %w", err)
	}

	fileStmt, err := tx.Prepare("INSERT INTO snapshot_files (snapshot_id, path) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("save snapshot: prepare files: %w", err)
	}
	defer fileStmt.Close()
	identStmt, err := tx.Prepare("INSERT INTO identifiers (snapshot_id, file_id, name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("save snapshot: prepare identifiers: %w", err)
	}
	defer identStmt.Close()

	fileIDs := make(map[string]int64)
	for _, name := range idx.Names() {
		for _, path := range idx.Files(name) {
			fid, ok := fileIDs[path]
			if !ok {
				res, err := fileStmt.Exec(snapID, path)
				if err != nil {
					return fmt.Errorf("save snapshot: insert file %s: %w", path, err)
				}
				fid, err = res.LastInsertId()
				if err != nil {
					return fmt.Errorf("save snapshot: file id: %w", err)
				}
				fileIDs[path] = fid
			}
			if _, err := identStmt.Exec(snapID, fid, name); err != nil {
				return fmt.Errorf("save snapshot: insert identifier %s: %w", name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// LoadSnapshot rehydrates the persisted index for root. Returns (nil, nil)
// when no snapshot exists.
func (s *Store) LoadSnapshot(root string) (*index.Index, error) {
	var (
		snapID    int64
		fileCount int
		checksum  string
		builtAt   time.Time
	)
	err := s.db.QueryRow(
		"SELECT id, file_count, checksum, built_at FROM snapshots WHERE root = ?", root,
	).Scan(&snapID, &fileCount, &checksum, &builtAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT i.name, f.path
		 FROM identifiers i JOIN snapshot_files f ON f.id = i.file_id
		 WHERE i.snapshot_id = ?`, snapID,
	)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: query identifiers: %w", err)
	}
	defer rows.Close()

	names := make(map[string][]string)
	for rows.Next() {
		var name, path string
		if err := rows.Scan(&name, &path); err != nil {
			return nil, fmt.Errorf("load snapshot: scan: %w", err)
		}
		names[name] = append(names[name], path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot: rows: %w", err)
	}

	return index.New(root, names, fileCount, checksum, builtAt), nil
}

// SnapshotChecksum returns the stored checksum for root, or "" when no
// snapshot exists. Lets callers detect a stale snapshot without rehydrating.
func (s *Store) SnapshotChecksum(root string) (string, error) {
	var checksum string
	err := s.db.QueryRow("SELECT checksum FROM snapshots WHERE root = ?", root).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("snapshot checksum: %w", err)
	}
	return checksum, nil
}

// DeleteSnapshot removes the snapshot for root, if any.
func (s *Store) DeleteSnapshot(root string) error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE root = ?", root); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
