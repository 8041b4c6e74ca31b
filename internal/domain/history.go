package domain

import "context"

// HistoryTimeFormat is the timestamp layout stored in history entries. It is
// part of the on-disk format and must not change.
const HistoryTimeFormat = "2006-01-02 15:04:05"

// HistoryEntry is one durable record of a completed prompt→analysis exchange.
// Immutable once created.
type HistoryEntry struct {
	Timestamp string   `json:"timestamp"`
	Reports   []string `json:"reports"`
	Prompt    string   `json:"prompt"`
	Analysis  string   `json:"analysis"`
}

// HistoryRepository defines the interface for the append-only history log.
type HistoryRepository interface {
	// Load returns all entries in append order. A missing store yields an
	// empty slice, not an error.
	Load(ctx context.Context) ([]HistoryEntry, error)

	// Append adds one entry and persists the full log. Single-writer.
	Append(ctx context.Context, entry HistoryEntry) error

	// Ping reports whether the backing store is usable.
	Ping(ctx context.Context) error
}
