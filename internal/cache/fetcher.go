package cache

import (
	"context"
	"time"

	"github.com/ppiankov/decisync/internal/model"
	"go.uber.org/zap"
)

// Fetcher retrieves a page body
type Fetcher interface {
	FetchBody(ctx context.Context, ref model.DocumentRef) (string, error)
}

// CachingFetcher serves page bodies from a Store and falls back to the
// wrapped fetcher. Failed fetches are never cached.
type CachingFetcher struct {
	next    Fetcher
	store   Store
	baseURL string
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCachingFetcher wraps next with store
func NewCachingFetcher(next Fetcher, store Store, baseURL string, ttl time.Duration, logger *zap.Logger) *CachingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingFetcher{next: next, store: store, baseURL: baseURL, ttl: ttl, logger: logger}
}

// FetchBody returns a cached body or fetches and stores it
func (c *CachingFetcher) FetchBody(ctx context.Context, ref model.DocumentRef) (string, error) {
	key := PageKey(c.baseURL, ref.ID)
	if v, ok := c.store.Get(key); ok {
		c.logger.Debug("page body cache hit", zap.Int64("page_id", ref.ID))
		return string(v), nil
	}

	body, err := c.next.FetchBody(ctx, ref)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(key, []byte(body), c.ttl); err != nil {
		c.logger.Warn("cache page body", zap.Int64("page_id", ref.ID), zap.Error(err))
	}
	return body, nil
}
