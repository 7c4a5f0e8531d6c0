// Package zippopotam resolves US postal codes to coordinates via the free
// Zippopotam.us lookup API, with a process-wide memoizing cache in front of it.
package zippopotam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/parcelscope/shipment-etl-service/internal/domain"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
)

// Client implements domain.PostalGeocoder against the Zippopotam.us API.
// The API is free and unauthenticated, so callers are expected to space out
// requests; see MemoizingGeocoder and the pipeline's courtesy delay.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a postal lookup client. baseURL is the country-scoped
// endpoint, e.g. "https://api.zippopotam.us/us".
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// Lookup fetches the first place registered for a 5-digit postal code. Any
// transport failure, non-200 status, empty place list, or malformed
// coordinate is an error; the caller memoizes those as unresolved.
func (c *Client) Lookup(ctx context.Context, postalCode string) (domain.GeocodeResult, error) {
	fullURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(postalCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("postal lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("zippopotam API error: status %d: %s", resp.StatusCode, body)
	}

	var zr response
	if err := json.NewDecoder(resp.Body).Decode(&zr); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(zr.Places) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("no places for postal code %s", postalCode)
	}

	p := zr.Places[0]
	lat, err := strconv.ParseFloat(p.Latitude, 64)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("parse latitude %q: %w", p.Latitude, err)
	}
	lng, err := strconv.ParseFloat(p.Longitude, 64)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("parse longitude %q: %w", p.Longitude, err)
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return domain.GeocodeResult{
		Geo:   domain.Geo{Lat: lat, Lng: lng},
		City:  p.PlaceName,
		State: p.StateAbbreviation,
	}, nil
}

// Zippopotam API response types. Coordinates arrive as strings.

type response struct {
	PostCode string  `json:"post code"`
	Places   []place `json:"places"`
}

type place struct {
	PlaceName         string `json:"place name"`
	Latitude          string `json:"latitude"`
	Longitude         string `json:"longitude"`
	StateAbbreviation string `json:"state abbreviation"`
}
