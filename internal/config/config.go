package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Pipeline limits.
	MaxRows        int
	MaxUploadBytes int64

	// Postal geocoding configuration.
	GeocodeBaseURL string
	GeocodeTimeout time.Duration
	GeocodeDelay   time.Duration

	// Optional enriched-record feed.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	geocodeDelay, err := parseDuration("GEOCODE_DELAY", "100ms")
	if err != nil {
		return nil, err
	}

	maxRows, err := parsePositiveInt("MAX_ROWS", 500)
	if err != nil {
		return nil, err
	}
	maxUploadBytes, err := parsePositiveInt("MAX_UPLOAD_BYTES", 16<<20)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MaxRows:        maxRows,
		MaxUploadBytes: int64(maxUploadBytes),

		GeocodeBaseURL: envOrDefault("GEOCODE_BASE_URL", "https://api.zippopotam.us/us"),
		GeocodeTimeout: geocodeTimeout,
		GeocodeDelay:   geocodeDelay,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "enriched-shipments"),
		KafkaEnabled:   kafkaEnabled,
	}

	if cfg.GeocodeBaseURL == "" {
		return nil, errors.New("GEOCODE_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(value string) []string {
	var brokers []string
	for _, b := range strings.Split(value, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
