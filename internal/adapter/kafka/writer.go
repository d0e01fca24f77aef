package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/adcirc-etl/internal/config"
	"github.com/couchcryptid/adcirc-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces station series messages to a Kafka topic.
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
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchBytes:   16 << 20,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes station series to the sink topic in a
// single WriteMessages call. Messages are keyed by station name so each
// station's history lands on one partition.
func (w *Writer) LoadBatch(ctx context.Context, series []domain.StationSeries) error {
	if len(series) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(series))
	for i := range series {
		msg, err := serializeToMessage(series[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write station series: %w", err)
	}
	w.logger.Debug("station series written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationSeries into a Kafka message.
func serializeToMessage(ss domain.StationSeries) (kafkago.Message, error) {
	data, err := json.Marshal(ss)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station series: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ss.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(ss.Station)},
			{Key: "datum", Value: []byte(ss.Datum)},
			{Key: "run_id", Value: []byte(ss.RunID)},
			{Key: "processed_at", Value: []byte(ss.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
