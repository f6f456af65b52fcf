// Package kafka adapts the scoring pipeline's extractor and loader
// interfaces to Kafka topics.
package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Reader consumes scoring requests from the request topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger

	// drainWait bounds how long a batch waits for followers once the first
	// message has arrived.
	drainWait time.Duration
}

// NewReader creates a Kafka consumer for the configured request topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaRequestTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	drainWait := cfg.BatchFlushInterval
	if drainWait <= 0 {
		drainWait = 200 * time.Millisecond
	}
	return &Reader{reader: r, logger: logger, drainWait: drainWait}
}

// ExtractBatch blocks for the first message, then drains up to batchSize
// messages that are already close behind it. Offsets are committed through
// each request's Commit hook, not on fetch.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRequest, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]domain.RawRequest, 0, batchSize)
	batch = append(batch, r.mapMessage(first))

	drainCtx, cancel := context.WithTimeout(ctx, r.drainWait)
	defer cancel()
	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(drainCtx)
		if err != nil {
			// Deadline exhausted or parent cancelled; ship what we have.
			break
		}
		batch = append(batch, r.mapMessage(msg))
	}
	return batch, nil
}

func (r *Reader) mapMessage(msg kafkago.Message) domain.RawRequest {
	return domain.RawRequest{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
