// Package httpserver exposes the upload API plus health, readiness, and
// metrics endpoints.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parcelscope/shipment-etl-service/internal/adapter/csvsource"
	"github.com/parcelscope/shipment-etl-service/internal/domain"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
	"github.com/parcelscope/shipment-etl-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runner executes one enrichment run over parsed CSV rows.
type Runner interface {
	Run(ctx context.Context, rows []domain.RawRecord) (pipeline.Result, error)
}

// CacheSizer reports the geocode cache population for the health endpoint.
type CacheSizer interface {
	Len() int
}

// Server serves the shipment upload API.
type Server struct {
	httpServer *http.Server
	runner     Runner
	cache      CacheSizer
	metrics    *observability.Metrics
	logger     *slog.Logger
	maxUpload  int64
}

// NewServer creates the HTTP server with all API and operational routes.
func NewServer(addr string, runner Runner, cache CacheSizer, metrics *observability.Metrics, logger *slog.Logger, maxUploadBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second, // enrichment runs block on external lookups
			IdleTimeout:  60 * time.Second,
		},
		runner:    runner,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		maxUpload: maxUploadBytes,
	}

	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/sample", s.handleSample)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type uploadResponse struct {
	Success bool                    `json:"success"`
	RunID   string                  `json:"run_id"`
	Data    []domain.EnrichedRecord `json:"data"`
	Stats   domain.RunStatistics    `json:"stats"`
	Message string                  `json:"message"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.metrics.UploadsTotal.Inc()

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.fail(w, logger, http.StatusBadRequest, "validation_error", "could not parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, logger, http.StatusBadRequest, "validation_error", "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.fail(w, logger, http.StatusBadRequest, "validation_error", "no file selected")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		s.fail(w, logger, http.StatusBadRequest, "validation_error", "please upload a CSV file")
		return
	}

	rows, err := csvsource.ParseUpload(file)
	if err != nil {
		s.fail(w, logger, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	logger.Info("upload accepted", "filename", header.Filename, "rows", len(rows))

	result, err := s.runner.Run(r.Context(), rows)
	switch {
	case errors.Is(err, pipeline.ErrNoValidRecords):
		s.fail(w, logger, http.StatusBadRequest, "no_valid_records", "no valid data found in CSV")
		return
	case errors.Is(err, pipeline.ErrNoCoordinates):
		s.fail(w, logger, http.StatusBadRequest, "no_coordinates", "could not get coordinates for any locations")
		return
	case err != nil:
		logger.Error("enrichment run failed", "error", err)
		s.fail(w, logger, http.StatusInternalServerError, "internal_error", "processing failed")
		return
	}

	s.metrics.UploadOutcomes.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		RunID:   runID,
		Data:    result.Records,
		Stats:   result.Stats,
		Message: fmt.Sprintf("successfully processed %d shipment records", len(result.Records)),
	})
}

func (s *Server) handleSample(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvsource.SampleFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csvsource.SampleCSV))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"cache_size": s.cache.Len(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// fail writes an error response and records the outcome metric.
func (s *Server) fail(w http.ResponseWriter, logger *slog.Logger, status int, outcome, message string) {
	s.metrics.UploadOutcomes.WithLabelValues(outcome).Inc()
	logger.Warn("upload rejected", "outcome", outcome, "message", message)
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
