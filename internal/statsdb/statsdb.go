// Package statsdb persists selection statistics in a SQLite database
// so `termsearch stats` can report which commands get picked most.
package statsdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// FileName is the database file under the termsearch directory.
const FileName = "stats.db"

// StatsDB wraps a SQLite database recording picked commands.
// Thread-safe for concurrent use within one process; WAL mode plus a
// busy timeout keeps separate termsearch processes from tripping over
// each other.
type StatsDB struct {
	db *sql.DB
}

// CommandCount is the aggregated selection record for one command.
type CommandCount struct {
	Command  string
	Count    int
	LastUsed time.Time
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy timeout.
func Open(dbPath string) (*StatsDB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("statsdb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("statsdb: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statsdb: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statsdb: busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statsdb: foreign keys: %w", err)
	}

	return &StatsDB{db: db}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StatsDB) Close() error {
	// Checkpoint WAL to merge it back into the main database file
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *StatsDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist and stamps the schema version.
func (s *StatsDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statsdb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statsdb: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS selections (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			command     TEXT NOT NULL,
			query       TEXT NOT NULL DEFAULT '',
			selected_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statsdb: create selections: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("statsdb: set schema version: %w", err)
	}

	return tx.Commit()
}

// RecordSelection appends one picked command along with the query that
// surfaced it.
func (s *StatsDB) RecordSelection(command, query string, at time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO selections (command, query, selected_at) VALUES (?, ?, ?)",
		command, query, at.Unix(),
	)
	return err
}

// TopCommands returns the most selected commands, busiest first, with
// recency breaking count ties.
func (s *StatsDB) TopCommands(limit int) ([]CommandCount, error) {
	rows, err := s.db.Query(`
		SELECT command, COUNT(*) AS uses, MAX(selected_at) AS last_used
		FROM selections
		GROUP BY command
		ORDER BY uses DESC, last_used DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CommandCount
	for rows.Next() {
		var cc CommandCount
		var lastUnix int64
		if err := rows.Scan(&cc.Command, &cc.Count, &lastUnix); err != nil {
			return nil, err
		}
		cc.LastUsed = time.Unix(lastUnix, 0)
		result = append(result, cc)
	}
	return result, rows.Err()
}

// TotalSelections returns how many selections were ever recorded.
func (s *StatsDB) TotalSelections() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM selections").Scan(&count)
	return count, err
}

// SetMeta sets a key-value pair in the metadata table.
func (s *StatsDB) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *StatsDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
