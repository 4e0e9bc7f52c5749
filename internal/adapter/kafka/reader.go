package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/coastal-threat-service/internal/config"
	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/monitor"
)

// Reader consumes sensor readings from the readings topic.
// It implements monitor.Source.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured readings topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaReadingsTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// Next fetches the next reading event. Malformed messages are logged,
// committed, and skipped so a poison message never stalls the monitor.
func (r *Reader) Next(ctx context.Context) (monitor.ReadingEvent, error) {
	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			return monitor.ReadingEvent{}, fmt.Errorf("fetch reading: %w", err)
		}

		ev, err := mapMessageToEvent(msg)
		if err != nil {
			r.logger.Warn("malformed reading, skipping",
				"error", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			if commitErr := r.reader.CommitMessages(ctx, msg); commitErr != nil {
				r.logger.Warn("commit skipped message failed", "error", commitErr)
			}
			continue
		}

		ev.Commit = func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		}
		return ev, nil
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// readingEnvelope is the wire shape on the readings topic. Bare reading
// objects without the envelope are also accepted, keyed by message key.
type readingEnvelope struct {
	StationID string          `json:"station_id"`
	Location  *domain.Geo     `json:"location"`
	Reading   *domain.Reading `json:"reading"`
}

// mapMessageToEvent converts a Kafka message into a reading event.
func mapMessageToEvent(msg kafkago.Message) (monitor.ReadingEvent, error) {
	var env readingEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return monitor.ReadingEvent{}, fmt.Errorf("decode reading message: %w", err)
	}

	reading := env.Reading
	if reading == nil {
		reading = &domain.Reading{}
		if err := json.Unmarshal(msg.Value, reading); err != nil {
			return monitor.ReadingEvent{}, fmt.Errorf("decode bare reading: %w", err)
		}
	}

	stationID := env.StationID
	if stationID == "" {
		stationID = string(msg.Key)
	}

	return monitor.ReadingEvent{
		StationID: stationID,
		Reading:   reading,
		Location:  env.Location,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}, nil
}
