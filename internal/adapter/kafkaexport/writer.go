// Package kafkaexport publishes enriched shipment records to a Kafka topic
// for downstream consumers.
package kafkaexport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/parcelscope/shipment-etl-service/internal/config"
	"github.com/parcelscope/shipment-etl-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces enriched records to the sink topic.
// It implements pipeline.Exporter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// ExportBatch serializes and publishes an enrichment run's records in a
// single WriteMessages call for efficiency.
func (w *Writer) ExportBatch(ctx context.Context, records []domain.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EnrichedRecord into a Kafka message keyed by
// record ID, so retried runs of the same upload compact cleanly.
func serializeToMessage(rec domain.EnrichedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enriched record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "warehouse", Value: []byte(rec.WarehouseZip)},
			{Key: "shipment_date", Value: []byte(rec.ShipmentDate)},
		},
	}, nil
}
