package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/complegal/comprate/internal/domain"
)

const refHandlePrefix = "refdoc:"

// HandleCache keeps uploaded reference-document handles warm across process
// restarts. The TTL must stay below the remote service's own file lifetime
// (48h for Gemini), so a stale handle can never outlive the file it names.
type HandleCache struct {
	client *Client
	ttl    time.Duration
}

// NewHandleCache creates a new reference-handle cache
func NewHandleCache(client *Client, ttl time.Duration) *HandleCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HandleCache{client: client, ttl: ttl}
}

// Get retrieves a cached handle for a reference kind. Returns nil on miss.
func (c *HandleCache) Get(ctx context.Context, kind domain.ReferenceKind) (*domain.RemoteHandle, error) {
	key := fmt.Sprintf("%s%s", refHandlePrefix, kind)

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var handle domain.RemoteHandle
	if err := json.Unmarshal(data, &handle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal handle: %w", err)
	}

	return &handle, nil
}

// Set caches a handle for a reference kind.
func (c *HandleCache) Set(ctx context.Context, kind domain.ReferenceKind, handle domain.RemoteHandle) error {
	key := fmt.Sprintf("%s%s", refHandlePrefix, kind)

	data, err := json.Marshal(handle)
	if err != nil {
		return fmt.Errorf("failed to marshal handle: %w", err)
	}

	return c.client.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate removes a cached handle.
func (c *HandleCache) Invalidate(ctx context.Context, kind domain.ReferenceKind) error {
	key := fmt.Sprintf("%s%s", refHandlePrefix, kind)
	return c.client.rdb.Del(ctx, key).Err()
}
