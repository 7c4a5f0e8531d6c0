package zippopotam

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parcelscope/shipment-etl-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     discardLogger(),
	}
}

func TestClient_Lookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/10001", r.URL.Path)

		resp := response{
			PostCode: "10001",
			Places: []place{
				{
					PlaceName:         "New York City",
					Latitude:          "40.7484",
					Longitude:         "-73.9967",
					StateAbbreviation: "NY",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Lookup(context.Background(), "10001")
	require.NoError(t, err)

	assert.Equal(t, 40.7484, result.Lat)
	assert.Equal(t, -73.9967, result.Lng)
	assert.Equal(t, "New York City", result.City)
	assert.Equal(t, "NY", result.State)
}

func TestClient_Lookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Zippopotam returns 404 with an empty JSON object for unknown codes.
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Lookup(context.Background(), "00000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Lookup_NoPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response{PostCode: "99999"}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Lookup(context.Background(), "99999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no places")
}

func TestClient_Lookup_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := response{Places: []place{{PlaceName: "Nowhere", Latitude: "north", Longitude: "-73"}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Lookup(context.Background(), "10001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse latitude")
}

func TestClient_Lookup_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &Client{
		httpClient: &http.Client{Timeout: 50 * time.Millisecond},
		baseURL:    srv.URL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     discardLogger(),
	}

	_, err := c.Lookup(context.Background(), "10001")
	require.Error(t, err)
}
