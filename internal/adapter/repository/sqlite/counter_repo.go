// Package sqlite provides the embedded single-file counter store used
// when no server-side database is available, e.g. for CLI runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// CounterStore keeps the id counter in a single-row sqlite table.
type CounterStore struct {
	db *sql.DB
}

// Open opens (or creates) the counter database at dbPath.
func Open(dbPath string) (*CounterStore, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create counter directory %s: %w", dbDir, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open counter database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to counter database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS id_counter (
		id INTEGER PRIMARY KEY,
		value INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create id_counter table: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO id_counter (id, value) VALUES (1, 0)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed id_counter: %w", err)
	}

	return &CounterStore{db: db}, nil
}

// Next atomically increments the stored counter and returns the new
// value.
func (s *CounterStore) Next(ctx context.Context) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin counter transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE id_counter SET value = value + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("increment id counter: %w", err)
	}

	var value int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM id_counter WHERE id = 1`).Scan(&value); err != nil {
		return 0, fmt.Errorf("read id counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit counter transaction: %w", err)
	}

	return uint64(value), nil
}

// Close closes the underlying database.
func (s *CounterStore) Close() error {
	return s.db.Close()
}
