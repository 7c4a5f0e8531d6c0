package zippopotam

import (
	"context"
	"log/slog"
	"sync"

	"github.com/parcelscope/shipment-etl-service/internal/domain"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
)

// MemoizingGeocoder wraps a PostalGeocoder with a process-wide cache keyed by
// postal code. Failures are memoized as unresolved markers so each code hits
// the external API at most once per process; there is no eviction because the
// key universe is bounded by the ZIP codes actually seen in uploads.
type MemoizingGeocoder struct {
	inner   domain.PostalGeocoder
	metrics *observability.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result   domain.GeocodeResult
	resolved bool
}

// NewMemoizingGeocoder creates the cache decorator around a lookup client.
func NewMemoizingGeocoder(inner domain.PostalGeocoder, metrics *observability.Metrics, logger *slog.Logger) *MemoizingGeocoder {
	return &MemoizingGeocoder{
		inner:   inner,
		metrics: metrics,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Resolve returns the coordinates for a postal code and whether resolution
// succeeded. fromCache reports whether the answer was served without an
// external call, which the pipeline uses to decide whether a courtesy delay
// is due.
func (g *MemoizingGeocoder) Resolve(ctx context.Context, postalCode string) (result domain.GeocodeResult, resolved, fromCache bool) {
	g.mu.Lock()
	if e, ok := g.entries[postalCode]; ok {
		g.mu.Unlock()
		g.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return e.result, e.resolved, true
	}
	g.mu.Unlock()
	g.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	res, err := g.inner.Lookup(ctx, postalCode)
	entry := cacheEntry{result: res, resolved: err == nil}
	if err != nil {
		g.logger.Warn("postal lookup failed, memoizing as unresolved",
			"postal_code", postalCode,
			"error", err,
		)
	}

	g.mu.Lock()
	g.entries[postalCode] = entry
	size := len(g.entries)
	g.mu.Unlock()
	g.metrics.GeocodeCacheSize.Set(float64(size))

	return entry.result, entry.resolved, false
}

// Len reports the number of memoized postal codes, resolved or not.
// Exposed on the health endpoint.
func (g *MemoizingGeocoder) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
