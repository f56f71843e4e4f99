// Package kafka publishes sweep results to a Kafka topic so downstream
// reporting services can consume them without polling the HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/line-rating-service/internal/sweep"
)

// Writer produces contingency records to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a producer for the given brokers and topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishReport serializes every record of a contingency report and writes
// them in a single WriteMessages call. Messages are keyed by the outaged
// component so all impacts of one outage land on the same partition.
func (w *Writer) PublishReport(ctx context.Context, report *sweep.Report) error {
	if len(report.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(report.Records))
	for i, rec := range report.Records {
		msg, err := serializeRecord(report, rec)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish contingency report %s: %w", report.RunID, err)
	}
	w.logger.Info("contingency report published", "run_id", report.RunID, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeRecord(report *sweep.Report, rec sweep.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize contingency record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.OutagedComponent),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(report.RunID)},
			{Key: "component_type", Value: []byte(rec.ComponentType)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
