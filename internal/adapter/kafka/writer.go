package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Writer produces prediction results to the result topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple prediction results in a single
// WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.PredictionResult) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
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

// serializeToMessage marshals a PredictionResult into a Kafka message.
func serializeToMessage(result domain.PredictionResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "model", Value: []byte(result.Model)},
			{Key: "predicted_at", Value: []byte(result.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
