// Package jsonfile stores the analysis history as a single JSON array on
// disk. The whole file is rewritten on every append; history volume is
// low-frequency and a single writer is assumed.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/complegal/comprate/internal/domain"
)

// HistoryStore implements domain.HistoryRepository on a JSON file.
type HistoryStore struct {
	path string

	mu      sync.Mutex
	entries []domain.HistoryEntry
	loaded  bool
}

// NewHistoryStore creates a store backed by the given file path. The file is
// read lazily; it does not need to exist yet.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Load returns all entries in append order. A missing file yields an empty
// slice.
func (s *HistoryStore) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}

	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Append adds one entry and rewrites the file. The in-memory entry is kept
// even when persistence fails, so the caller can still show the result.
func (s *HistoryStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Best effort: an unreadable existing file must not block new entries.
	if !s.loaded {
		_ = s.loadLocked()
		s.loaded = true
	}

	s.entries = append(s.entries, entry)
	return s.flushLocked()
}

// Ping verifies the history directory is usable.
func (s *HistoryStore) Ping(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

func (s *HistoryStore) loadLocked() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = nil
			s.loaded = true
			return nil
		}
		return &domain.StorageError{Op: "load", Err: err}
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return &domain.StorageError{Op: "load", Err: err}
	}

	s.entries = entries
	s.loaded = true
	return nil
}

func (s *HistoryStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}

	data, err := json.Marshal(s.entries)
	if err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}

	// Write-then-rename keeps the previous log intact on a partial write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}
	return nil
}
