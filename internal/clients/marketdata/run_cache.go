package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RunCache wraps a Provider with a cache scoped to one batch run. The
// benchmark index history is fetched once per run instead of once per
// company; quotes are cached too so that a retried company does not hit
// the upstream twice. Create a fresh RunCache for every run: the cache
// deliberately has no expiry.
type RunCache struct {
	inner Provider

	mu      sync.Mutex
	quotes  map[string]Quote
	history map[string][]PricePoint
}

// NewRunCache creates a run-scoped caching decorator around a provider.
func NewRunCache(inner Provider) *RunCache {
	return &RunCache{
		inner:   inner,
		quotes:  make(map[string]Quote),
		history: make(map[string][]PricePoint),
	}
}

// Snapshot returns the cached quote or fetches it once.
func (c *RunCache) Snapshot(ctx context.Context, ticker string) (Quote, error) {
	c.mu.Lock()
	if quote, ok := c.quotes[ticker]; ok {
		c.mu.Unlock()
		return quote, nil
	}
	c.mu.Unlock()

	quote, err := c.inner.Snapshot(ctx, ticker)
	if err != nil {
		return Quote{}, err
	}

	c.mu.Lock()
	c.quotes[ticker] = quote
	c.mu.Unlock()
	return quote, nil
}

// History returns the cached series or fetches it once. The cache key
// includes the start date so different lookbacks do not collide.
func (c *RunCache) History(ctx context.Context, ticker string, from time.Time) ([]PricePoint, error) {
	key := fmt.Sprintf("%s:%s", ticker, from.UTC().Format("2006-01-02"))

	c.mu.Lock()
	if points, ok := c.history[key]; ok {
		c.mu.Unlock()
		return points, nil
	}
	c.mu.Unlock()

	points, err := c.inner.History(ctx, ticker, from)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.history[key] = points
	c.mu.Unlock()
	return points, nil
}
