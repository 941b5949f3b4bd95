package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var stateSchema = []string{
	`CREATE TABLE IF NOT EXISTS imported_files (
		path        TEXT PRIMARY KEY,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		workouts    INTEGER NOT NULL DEFAULT 0,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	// One row per workout the server accepted. occurrence numbers identical
	// rows within a file so genuine repeats are still sent once each.
	`CREATE TABLE IF NOT EXISTS sent_rows (
		path       TEXT NOT NULL,
		row_key    TEXT NOT NULL,
		occurrence INTEGER NOT NULL,
		line       INTEGER NOT NULL,
		sent_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (path, row_key, occurrence)
	)`,
}

// StateDB remembers which CSV files were fully imported, and which rows of
// partially imported files the server already accepted, so a rerun never
// logs the same workout twice.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	for _, stmt := range stateSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating state tables: %w", err)
		}
	}
	return &StateDB{db: db}, nil
}

// IsImported reports whether path was imported with the same size and hash.
// A file that changed since its last import is read again.
func (s *StateDB) IsImported(path string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND size = ? AND hash = ?`,
		path, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking import state for %s: %w", path, err)
	}
	return count > 0, nil
}

// MarkImported records that every row of path has been handled.
func (s *StateDB) MarkImported(path string, size int64, hash string, workouts int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (path, size, hash, workouts) VALUES (?, ?, ?, ?)`,
		path, size, hash, workouts,
	)
	if err != nil {
		return fmt.Errorf("recording import of %s: %w", path, err)
	}
	return nil
}

// SentRows returns, per row key, how many identical rows of path the
// server has accepted.
func (s *StateDB) SentRows(path string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT row_key, COUNT(*) FROM sent_rows WHERE path = ? GROUP BY row_key`, path)
	if err != nil {
		return nil, fmt.Errorf("loading sent rows for %s: %w", path, err)
	}
	defer rows.Close()

	sent := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scanning sent rows: %w", err)
		}
		sent[key] = n
	}
	return sent, rows.Err()
}

// MarkRowSent records that the occurrence-th copy of row in path was
// accepted by the server.
func (s *StateDB) MarkRowSent(path string, row Row, occurrence int) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sent_rows (path, row_key, occurrence, line) VALUES (?, ?, ?, ?)`,
		path, row.Key(), occurrence, row.Line,
	)
	if err != nil {
		return fmt.Errorf("recording line %d of %s: %w", row.Line, path, err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
