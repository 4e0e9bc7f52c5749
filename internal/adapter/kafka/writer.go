package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/coastal-threat-service/internal/config"
	"github.com/couchcryptid/coastal-threat-service/internal/monitor"
)

// Writer produces alert messages to the alerts topic.
// It implements monitor.AlertPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured alerts topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one alert event to the alerts topic.
func (w *Writer) Publish(ctx context.Context, event monitor.AlertEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an alert event into a Kafka message keyed by
// station.
func serializeToMessage(event monitor.AlertEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(event.Alert.Type)},
			{Key: "severity", Value: []byte(event.Alert.Severity)},
		},
	}, nil
}
