package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/case-growth-etl/internal/config"
	"github.com/couchcryptid/case-growth-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Summary is the message value published for each region.
type Summary struct {
	domain.ReportEntry
	GeneratedAt time.Time `json:"generated_at"`
}

// Writer publishes region summaries to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes the aggregate and every ranked region in a single
// WriteMessages call. Keys are region codes so a compacted topic keeps the
// latest summary per region.
func (w *Writer) Publish(ctx context.Context, r domain.Report) (int, error) {
	entries := make([]domain.ReportEntry, 0, len(r.Entries)+1)
	if r.Total != nil {
		entries = append(entries, *r.Total)
	}
	entries = append(entries, r.Entries...)
	if len(entries) == 0 {
		return 0, nil
	}

	msgs := make([]kafkago.Message, len(entries))
	for i := range entries {
		msg, err := serializeToMessage(entries[i], r.GeneratedAt)
		if err != nil {
			return 0, err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish summaries: %w", err)
	}
	w.logger.Info("summaries published", "topic", w.writer.Topic, "count", len(msgs))
	return len(msgs), nil
}

// Close flushes pending messages and releases the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a report entry into a Kafka message.
func serializeToMessage(e domain.ReportEntry, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(Summary{ReportEntry: e, GeneratedAt: generatedAt})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary %s: %w", e.Region.Code, err)
	}
	return kafkago.Message{
		Key:   []byte(e.Region.Code),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "regime", Value: []byte(e.Regime.String())},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
