package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/courier-billing-recon/internal/config"
	"github.com/couchcryptid/courier-billing-recon/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes reconciliation requests from the source topic.
// It implements pipeline.Extractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{reader: r, logger: logger}
}

// Extract blocks until the next request message arrives or the context is
// cancelled. Offsets are committed explicitly via the returned Commit
// callback, after the result has been loaded.
func (r *Reader) Extract(ctx context.Context) (domain.RawRequest, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawRequest{}, fmt.Errorf("fetch request message: %w", err)
	}

	raw := mapMessageToRawRequest(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawRequest copies the transport-level fields of a Kafka
// message into a domain request envelope.
func mapMessageToRawRequest(msg kafkago.Message) domain.RawRequest {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	return domain.RawRequest{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
