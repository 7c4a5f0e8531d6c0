// Package pipeline orchestrates the shipment enrichment run: normalize rows,
// resolve coordinates through the memoizing geocoder, attach distances, and
// aggregate statistics.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/parcelscope/shipment-etl-service/internal/domain"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
)

// CoordinateResolver resolves a postal code to coordinates. fromCache reports
// whether the answer was served without an external call; the pipeline uses
// it to decide whether the courtesy delay is due.
type CoordinateResolver interface {
	Resolve(ctx context.Context, postalCode string) (result domain.GeocodeResult, resolved, fromCache bool)
}

// Exporter publishes enriched records to a downstream feed.
type Exporter interface {
	ExportBatch(ctx context.Context, records []domain.EnrichedRecord) error
}

// Terminal run states. Both are expected data-quality outcomes, reported to
// the caller as typed errors rather than results with empty sets.
var (
	// ErrNoValidRecords means normalization dropped every input row.
	ErrNoValidRecords = errors.New("no valid records after normalization")

	// ErrNoCoordinates means no record had both endpoints geocoded.
	ErrNoCoordinates = errors.New("no coordinates could be resolved")
)

// Result is a completed enrichment run.
type Result struct {
	Records []domain.EnrichedRecord `json:"data"`
	Stats   domain.RunStatistics    `json:"stats"`
}

// Service runs the enrichment pipeline over uploaded batches. Safe for
// concurrent use: per-run state is local and the resolver guards its own
// cache.
type Service struct {
	resolver    CoordinateResolver
	exporter    Exporter // nil when the feed is disabled
	logger      *slog.Logger
	metrics     *observability.Metrics
	maxRows     int
	lookupDelay time.Duration
}

// New creates a pipeline Service. Pass a nil exporter to disable the
// enriched-record feed.
func New(resolver CoordinateResolver, exporter Exporter, logger *slog.Logger, metrics *observability.Metrics, maxRows int, lookupDelay time.Duration) *Service {
	return &Service{
		resolver:    resolver,
		exporter:    exporter,
		logger:      logger,
		metrics:     metrics,
		maxRows:     maxRows,
		lookupDelay: lookupDelay,
	}
}

// Run enriches one uploaded batch. Per-row failures drop the row and never
// abort the run; the only errors are the terminal states above and context
// cancellation.
func (s *Service) Run(ctx context.Context, rows []domain.RawRecord) (Result, error) {
	start := time.Now()

	originalCount := len(rows)
	if len(rows) > s.maxRows {
		rows = rows[:s.maxRows]
	}
	s.metrics.RowsIngested.Add(float64(len(rows)))

	records, dropped := s.normalize(rows)
	if len(records) == 0 {
		return Result{}, ErrNoValidRecords
	}

	coords, err := s.resolveAll(ctx, records)
	if err != nil {
		return Result{}, err
	}

	enriched, unresolved := s.attach(records, coords)
	if len(enriched) == 0 {
		return Result{}, ErrNoCoordinates
	}

	s.metrics.RecordsEnriched.Add(float64(len(enriched)))
	s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	stats := domain.BuildStatistics(enriched, originalCount, dropped, unresolved)
	s.logger.Info("enrichment run complete",
		"original_count", originalCount,
		"enriched", len(enriched),
		"dropped", dropped,
		"unresolved", unresolved,
		"duration", time.Since(start),
	)

	s.export(ctx, enriched)

	return Result{Records: enriched, Stats: stats}, nil
}

// normalize converts raw rows to normalized records, counting drops.
func (s *Service) normalize(rows []domain.RawRecord) ([]domain.NormalizedRecord, int) {
	records := make([]domain.NormalizedRecord, 0, len(rows))
	dropped := 0
	for _, raw := range rows {
		res := domain.NormalizeRecord(raw, len(records)+1)
		if res.IsDropped() {
			dropped++
			s.metrics.RowsDropped.WithLabelValues(string(res.Dropped)).Inc()
			s.logger.Warn("row dropped", "reason", res.Dropped, "id", raw.ID)
			continue
		}
		records = append(records, res.Record)
	}
	return records, dropped
}

// resolveAll looks up every distinct postal code across origins and
// destinations exactly once, in sorted order, pausing between true external
// calls to stay polite to the public lookup API. Returns only the codes that
// resolved.
func (s *Service) resolveAll(ctx context.Context, records []domain.NormalizedRecord) (map[string]domain.GeocodeResult, error) {
	unique := make(map[string]struct{}, len(records)*2)
	for _, rec := range records {
		unique[rec.WarehouseZip] = struct{}{}
		unique[rec.DestZip] = struct{}{}
	}

	codes := make([]string, 0, len(unique))
	for code := range unique {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	coords := make(map[string]domain.GeocodeResult, len(codes))
	for _, code := range codes {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, resolved, fromCache := s.resolver.Resolve(ctx, code)
		if resolved {
			coords[code] = result
		}

		if !fromCache && s.lookupDelay > 0 {
			if !sleepWithContext(ctx, s.lookupDelay) {
				return nil, ctx.Err()
			}
		}
	}
	return coords, nil
}

// attach joins coordinates onto records and computes distances. Records with
// an unresolved endpoint are excluded and counted.
func (s *Service) attach(records []domain.NormalizedRecord, coords map[string]domain.GeocodeResult) ([]domain.EnrichedRecord, int) {
	enriched := make([]domain.EnrichedRecord, 0, len(records))
	unresolved := 0
	for _, rec := range records {
		origin, originOK := coords[rec.WarehouseZip]
		dest, destOK := coords[rec.DestZip]
		if !originOK || !destOK {
			unresolved++
			s.metrics.RecordsSkipped.Inc()
			s.logger.Warn("record excluded, endpoint unresolved",
				"id", rec.ID,
				"warehouse_zip", rec.WarehouseZip,
				"dest_zip", rec.DestZip,
			)
			continue
		}

		enriched = append(enriched, domain.EnrichedRecord{
			NormalizedRecord: rec,
			OriginLat:        origin.Lat,
			OriginLng:        origin.Lng,
			DestLat:          dest.Lat,
			DestLng:          dest.Lng,
			DistanceKm:       domain.HaversineKm(origin.Geo, dest.Geo),
		})
	}
	return enriched, unresolved
}

// export publishes the run to the enriched-record feed when configured.
// Best-effort: the HTTP response is the primary output, so a feed failure is
// logged and does not fail the run.
func (s *Service) export(ctx context.Context, records []domain.EnrichedRecord) {
	if s.exporter == nil {
		return
	}
	if err := s.exporter.ExportBatch(ctx, records); err != nil {
		s.logger.Warn("export to feed failed", "error", err, "records", len(records))
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
