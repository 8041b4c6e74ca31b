// Package sqlite is the database-backed history store, for installs that
// prefer a real database file over the JSON log.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/complegal/comprate/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	reports   TEXT NOT NULL,
	prompt    TEXT NOT NULL,
	analysis  TEXT NOT NULL
)`

// HistoryStore implements domain.HistoryRepository on a SQLite file.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (or creates) the database file and its schema.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Load returns all entries in insertion order.
func (s *HistoryStore) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, reports, prompt, analysis FROM history ORDER BY id`)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var reports string
		if err := rows.Scan(&entry.Timestamp, &reports, &entry.Prompt, &entry.Analysis); err != nil {
			return nil, &domain.StorageError{Op: "load", Err: err}
		}
		if err := json.Unmarshal([]byte(reports), &entry.Reports); err != nil {
			return nil, &domain.StorageError{Op: "load", Err: err}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}

	return entries, nil
}

// Append inserts one entry.
func (s *HistoryStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	reports, err := json.Marshal(entry.Reports)
	if err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history (timestamp, reports, prompt, analysis) VALUES (?, ?, ?, ?)`,
		entry.Timestamp, string(reports), entry.Prompt, entry.Analysis)
	if err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *HistoryStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}
