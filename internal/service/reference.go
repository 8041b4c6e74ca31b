package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/repository/redis"
	"github.com/complegal/comprate/internal/retry"
	"github.com/rs/zerolog/log"
)

// ReferenceSource binds a reference kind to the public URL serving its PDF.
type ReferenceSource struct {
	Kind domain.ReferenceKind
	URL  string
}

// ReferenceCache downloads and uploads each fixed reference document at most
// once per process lifetime and memoizes the resulting remote handle. A kind
// whose retry budget was exhausted stays absent for the rest of the session;
// consumers proceed without it.
type ReferenceCache struct {
	store  domain.DocumentStore
	client *http.Client
	policy retry.Policy
	warm   *redis.HandleCache // optional, nil when Redis is disabled

	mu      sync.Mutex
	sources map[domain.ReferenceKind]string
	entries map[domain.ReferenceKind]*refEntry
}

type refEntry struct {
	once   sync.Once
	handle domain.RemoteHandle
	ok     bool
}

// NewReferenceCache creates the cache for the given sources.
func NewReferenceCache(store domain.DocumentStore, sources []ReferenceSource, policy retry.Policy, client *http.Client, warm *redis.HandleCache) *ReferenceCache {
	if client == nil {
		client = http.DefaultClient
	}

	srcs := make(map[domain.ReferenceKind]string, len(sources))
	for _, s := range sources {
		srcs[s.Kind] = s.URL
	}

	return &ReferenceCache{
		store:   store,
		client:  client,
		policy:  policy,
		warm:    warm,
		sources: srcs,
		entries: make(map[domain.ReferenceKind]*refEntry),
	}
}

// Resolve returns the memoized handle for kind, fetching and uploading it on
// first use. The second return value is false when the document is
// unavailable; that is a degradation, not a failure.
func (c *ReferenceCache) Resolve(ctx context.Context, kind domain.ReferenceKind) (domain.RemoteHandle, bool) {
	c.mu.Lock()
	url, known := c.sources[kind]
	if !known {
		c.mu.Unlock()
		return domain.RemoteHandle{}, false
	}
	entry, ok := c.entries[kind]
	if !ok {
		entry = &refEntry{}
		c.entries[kind] = entry
	}
	c.mu.Unlock()

	// One in-flight first-fetch per kind; the attempted flag holds even
	// after a terminal failure.
	entry.once.Do(func() {
		entry.handle, entry.ok = c.fetch(ctx, kind, url)
	})

	return entry.handle, entry.ok
}

func (c *ReferenceCache) fetch(ctx context.Context, kind domain.ReferenceKind, url string) (domain.RemoteHandle, bool) {
	if c.warm != nil {
		if cached, err := c.warm.Get(ctx, kind); err == nil && cached != nil {
			log.Info().Str("kind", string(kind)).Msg("reference handle restored from warm cache")
			return *cached, true
		}
	}

	var handle domain.RemoteHandle
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		data, err := c.download(ctx, url)
		if err != nil {
			return err
		}

		handle, err = c.store.Upload(ctx, data, domain.UploadOptions{
			DisplayName: string(kind),
			MIMEType:    domain.MIMETypePDF,
		})
		return err
	})
	if err != nil {
		fetchErr := &domain.FetchError{Kind: kind, Err: err}
		log.Error().Err(fetchErr).
			Str("kind", string(kind)).
			Int("attempts", c.policy.MaxAttempts).
			Msg("reference document unavailable, proceeding without it")
		return domain.RemoteHandle{}, false
	}

	log.Info().Str("kind", string(kind)).Str("handle", handle.ID).Msg("reference document uploaded")

	if c.warm != nil {
		if err := c.warm.Set(ctx, kind, handle); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to warm-cache reference handle")
		}
	}

	return handle, true
}

func (c *ReferenceCache) download(ctx context.Context, url string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	// Buffer in memory so a failed upload attempt never re-reads a
	// half-consumed body.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}
