package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/courier-billing-recon/internal/config"
	"github.com/couchcryptid/courier-billing-recon/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message-type header values on the sink topic.
const (
	messageTypeShipment = "shipment"
	messageTypeSummary  = "kpi_summary"
)

// Writer publishes reconciliation results to the sink topic.
// It implements pipeline.Loader.
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

// Load publishes one message per normalized shipment plus a trailing KPI
// summary message, all in a single WriteMessages call so a result lands as
// one batch or not at all.
func (w *Writer) Load(ctx context.Context, result domain.ReconResult) error {
	msgs := make([]kafkago.Message, 0, len(result.Shipments)+1)

	for i := range result.Shipments {
		msg, err := serializeShipment(&result.Shipments[i], result.RequestID)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	summaryMsg, err := serializeSummary(result.Summary, result.RequestID)
	if err != nil {
		return err
	}
	msgs = append(msgs, summaryMsg)

	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeShipment marshals a normalized shipment into a Kafka message
// keyed by AWB.
func serializeShipment(s *domain.NormalizedShipment, requestID string) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize shipment %s: %w", s.AWB, err)
	}
	return kafkago.Message{
		Key:   []byte(s.AWB),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "message_type", Value: []byte(messageTypeShipment)},
			{Key: "carrier", Value: []byte(s.Carrier)},
			{Key: "request_id", Value: []byte(requestID)},
			{Key: "processed_at", Value: []byte(s.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

// serializeSummary marshals the KPI summary keyed by request ID.
func serializeSummary(summary domain.KPISummary, requestID string) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize kpi summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(requestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "message_type", Value: []byte(messageTypeSummary)},
			{Key: "request_id", Value: []byte(requestID)},
		},
	}, nil
}
