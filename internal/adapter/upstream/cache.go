package upstream

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// CachedSource wraps a SampleSource with an in-memory LRU cache keyed by
// signal and coordinate. Coordinates are keyed at 4 decimal places (~11 m),
// matching the precision the client sends upstream.
type CachedSource struct {
	inner   domain.SampleSource
	cache   *lru.Cache[string, []domain.RawSample]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a sample source.
func NewCachedSource(inner domain.SampleSource, maxEntries int, metrics *observability.Metrics) (*CachedSource, error) {
	cache, err := lru.New[string, []domain.RawSample](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create sample cache: %w", err)
	}
	return &CachedSource{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedSource) FetchSamples(ctx context.Context, signal domain.Signal, loc domain.Location) ([]domain.RawSample, error) {
	key := fmt.Sprintf("%s|%.4f|%.4f", signal, loc.Latitude, loc.Longitude)
	if samples, ok := c.cache.Get(key); ok {
		c.metrics.UpstreamCache.WithLabelValues("hit").Inc()
		return samples, nil
	}
	c.metrics.UpstreamCache.WithLabelValues("miss").Inc()

	samples, err := c.inner.FetchSamples(ctx, signal, loc)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty series so a transiently dry upstream is retried.
	if len(samples) > 0 {
		c.cache.Add(key, samples)
	}
	return samples, nil
}
