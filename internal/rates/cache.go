package rates

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mmynk/tripsplit/internal/calculator"
)

// CachedProvider decorates a Provider with an expiring LRU cache keyed by
// reference currency. It is safe for concurrent use.
type CachedProvider struct {
	next  Provider
	cache *expirable.LRU[string, calculator.Rates]
}

// NewCached caches up to size tables from next, each for ttl.
func NewCached(next Provider, size int, ttl time.Duration) *CachedProvider {
	if size <= 0 {
		size = 1
	}
	return &CachedProvider{
		next:  next,
		cache: expirable.NewLRU[string, calculator.Rates](size, nil, ttl),
	}
}

// Rates returns the cached table for reference, fetching it on a miss.
// Failed fetches are not cached.
func (c *CachedProvider) Rates(ctx context.Context, reference string) (calculator.Rates, error) {
	key := strings.ToUpper(reference)
	if rates, ok := c.cache.Get(key); ok {
		return rates, nil
	}

	rates, err := c.next.Rates(ctx, key)
	if err != nil {
		return calculator.Rates{}, err
	}
	c.cache.Add(key, rates)
	slog.Debug("Cached exchange rates", "reference", key)
	return rates, nil
}
