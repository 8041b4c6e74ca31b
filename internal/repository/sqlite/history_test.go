package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/complegal/comprate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*HistoryStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestHistoryStore_EmptyLoad(t *testing.T) {
	store, _ := newTestStore(t)

	entries, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryStore_RoundTrip(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	entry := domain.HistoryEntry{
		Timestamp: "2025-04-17 10:30:00",
		Reports:   []string{"qme-report.pdf"},
		Prompt:    "Simple Analysis",
		Analysis:  "15.01.02.02 - 20 - [1.4] 28 - 28% PD",
	}
	require.NoError(t, store.Append(ctx, entry))

	// Reopen to simulate a process restart.
	store.Close()
	reopened, err := NewHistoryStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistoryStore_AppendPreservesOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.HistoryEntry{Timestamp: "2025-04-17 10:00:00", Reports: []string{"a.pdf"}, Prompt: "first", Analysis: "x"}))
	require.NoError(t, store.Append(ctx, domain.HistoryEntry{Timestamp: "2025-04-17 11:00:00", Reports: []string{"b.pdf"}, Prompt: "second", Analysis: "y"}))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Prompt)
	assert.Equal(t, "second", entries[1].Prompt)
}

func TestHistoryStore_Ping(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
