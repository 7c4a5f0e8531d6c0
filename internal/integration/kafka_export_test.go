//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/parcelscope/shipment-etl-service/internal/adapter/csvsource"
	"github.com/parcelscope/shipment-etl-service/internal/adapter/kafkaexport"
	"github.com/parcelscope/shipment-etl-service/internal/config"
	"github.com/parcelscope/shipment-etl-service/internal/domain"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
	"github.com/parcelscope/shipment-etl-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-enriched-shipments"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a topic via the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// stubResolver serves fixed coordinates so the run needs no external lookups.
type stubResolver struct {
	coords map[string]domain.Geo
}

func (s *stubResolver) Resolve(_ context.Context, postalCode string) (domain.GeocodeResult, bool, bool) {
	geo, ok := s.coords[postalCode]
	return domain.GeocodeResult{Geo: geo}, ok, true
}

// exportedMessage holds a deserialized message read from the sink topic.
type exportedMessage struct {
	Record  domain.EnrichedRecord
	Key     string
	Headers map[string]string
}

func readExported(ctx context.Context, t *testing.T, consumer *kafkago.Reader) exportedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec domain.EnrichedRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal sink message")

	return exportedMessage{Record: rec, Key: string(msg.Key), Headers: headers}
}

// TestExportBatch verifies the adapter layer: kafkaexport.Writer publishes
// enriched records with the expected key, headers, and payload.
func TestExportBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	writer := kafkaexport.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	rec := domain.EnrichedRecord{
		NormalizedRecord: domain.NormalizedRecord{
			ID:            "1",
			ShipmentDate:  "2024-03-15",
			WarehouseName: "NJ9",
			WarehouseZip:  "07114",
			DestZip:       "10001",
			DestCity:      "New York",
		},
		OriginLat:  40.69,
		OriginLng:  -74.17,
		DestLat:    40.75,
		DestLng:    -73.99,
		DistanceKm: 16,
	}

	require.NoError(t, writer.ExportBatch(ctx, []domain.EnrichedRecord{rec}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	em := readExported(ctx, t, consumer)
	assert.Equal(t, "1", em.Key)
	assert.Equal(t, "07114", em.Headers["warehouse"])
	assert.Equal(t, "2024-03-15", em.Headers["shipment_date"])
	assert.Equal(t, "New York", em.Record.DestCity)
	assert.Equal(t, 16, em.Record.DistanceKm)
}

// TestPipelineExportEndToEnd runs the full pipeline over the sample CSV with
// a stub resolver and verifies every enriched record lands on the sink topic.
func TestPipelineExportEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	rows, err := csvsource.ParseUpload(strings.NewReader(csvsource.SampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 15)

	// Fixed coordinates for every postal code the sample mentions.
	resolver := &stubResolver{coords: map[string]domain.Geo{}}
	for _, row := range rows {
		resolver.coords[row.ShipToPostal] = domain.Geo{Lat: 40.0, Lng: -75.0}
	}
	for _, code := range domain.KnownWarehouseCodes() {
		resolver.coords[domain.ResolveWarehouse(code).Zip] = domain.Geo{Lat: 41.0, Lng: -74.0}
	}

	writer := kafkaexport.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	svc := pipeline.New(resolver, writer, discardLogger(), metrics, 500, 0)

	result, err := svc.Run(ctx, rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 15)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]exportedMessage, 0, len(result.Records))
	for len(received) < len(result.Records) {
		received = append(received, readExported(ctx, t, consumer))
	}

	byID := make(map[string]exportedMessage, len(received))
	for _, em := range received {
		require.NotEmpty(t, em.Key)
		assert.NotEmpty(t, em.Headers["warehouse"], "missing warehouse header")
		assert.NotEmpty(t, em.Headers["shipment_date"], "missing shipment_date header")
		byID[em.Record.ID] = em
	}
	require.Len(t, byID, 15)

	// Spot-check a known record: row 1 ships from NJ9 to Manhattan.
	first, ok := byID["1"]
	require.True(t, ok)
	assert.Equal(t, "07114", first.Record.WarehouseZip)
	assert.Equal(t, "10001", first.Record.DestZip)
	assert.Equal(t, "2024-03-15", first.Record.ShipmentDate)
	assert.Positive(t, first.Record.DistanceKm)
}
