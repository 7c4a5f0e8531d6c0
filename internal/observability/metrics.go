package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment service.
type Metrics struct {
	UploadsTotal    prometheus.Counter
	UploadOutcomes  *prometheus.CounterVec // labels: outcome={success,validation_error,no_valid_records,no_coordinates,internal_error}
	RowsIngested    prometheus.Counter
	RowsDropped     *prometheus.CounterVec // labels: reason={invalid_date,invalid_postal}
	RecordsEnriched prometheus.Counter
	RecordsSkipped  prometheus.Counter // records excluded for unresolved coordinates

	PipelineDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeCacheSize   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "uploads_total",
			Help:      "Total CSV uploads received.",
		}),
		UploadOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "upload_outcomes_total",
			Help:      "Upload results by outcome.",
		}, []string{"outcome"}),
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "rows_ingested_total",
			Help:      "Total raw rows accepted into the pipeline after truncation.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped during normalization, by reason.",
		}, []string{"reason"}),
		RecordsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "records_enriched_total",
			Help:      "Records that received coordinates and a distance.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "records_skipped_total",
			Help:      "Normalized records excluded because an endpoint never resolved.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shipment_etl",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete enrichment run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "geocode_requests_total",
			Help:      "Postal lookup API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipment_etl",
			Name:      "geocode_cache_total",
			Help:      "Postal lookup cache accesses by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shipment_etl",
			Name:      "geocode_api_duration_seconds",
			Help:      "Postal lookup API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shipment_etl",
			Name:      "geocode_cache_size",
			Help:      "Number of memoized postal codes (resolved or not).",
		}),
	}

	prometheus.MustRegister(
		m.UploadsTotal,
		m.UploadOutcomes,
		m.RowsIngested,
		m.RowsDropped,
		m.RecordsEnriched,
		m.RecordsSkipped,
		m.PipelineDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeCacheSize,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UploadsTotal:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "uploads_total"}),
		UploadOutcomes:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "upload_outcomes_total"}, []string{"outcome"}),
		RowsIngested:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "rows_ingested_total"}),
		RowsDropped:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "rows_dropped_total"}, []string{"reason"}),
		RecordsEnriched:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "records_enriched_total"}),
		RecordsSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "records_skipped_total"}),
		PipelineDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "shipment_etl", Name: "pipeline_duration_seconds"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipment_etl", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "shipment_etl", Name: "geocode_api_duration_seconds"}),
		GeocodeCacheSize:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "shipment_etl", Name: "geocode_cache_size"}),
	}
}
