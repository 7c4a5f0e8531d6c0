package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/parcelscope/shipment-etl-service/internal/adapter/httpserver"
	"github.com/parcelscope/shipment-etl-service/internal/adapter/kafkaexport"
	"github.com/parcelscope/shipment-etl-service/internal/adapter/zippopotam"
	"github.com/parcelscope/shipment-etl-service/internal/config"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
	"github.com/parcelscope/shipment-etl-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := zippopotam.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeTimeout, metrics, logger)
	geocoder := zippopotam.NewMemoizingGeocoder(client, metrics, logger)

	// Enriched-record feed (feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED).
	var exporter pipeline.Exporter
	var writer *kafkaexport.Writer
	if cfg.KafkaEnabled {
		writer = kafkaexport.NewWriter(cfg, logger)
		exporter = writer
		logger.Info("kafka export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka export disabled")
	}

	svc := pipeline.New(geocoder, exporter, logger, metrics, cfg.MaxRows, cfg.GeocodeDelay)

	srv := httpserver.NewServer(cfg.HTTPAddr, svc, geocoder, metrics, logger, cfg.MaxUploadBytes)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
