// Package pipeline runs the batch scoring loop: scoring requests are read
// from a source in batches, scored through the prediction orchestrator, and
// the results produced to a sink.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// BatchExtractor reads up to batchSize raw scoring requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRequest, error)
}

// Scorer converts a raw scoring request into a prediction result.
type Scorer interface {
	Score(ctx context.Context, raw domain.RawRequest) (domain.PredictionResult, error)
}

// BatchLoader writes multiple prediction results to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, results []domain.PredictionResult) error
}

// Pipeline orchestrates the extract-score-load loop.
type Pipeline struct {
	extractor BatchExtractor
	scorer    Scorer
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, s Scorer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		scorer:    s,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has scored at least one
// request, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not scored any requests yet")
	}
	return nil
}

// Run executes the batch scoring loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("scoring pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("scoring pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-score-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.RequestsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.scoreAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.ready.Store(true)
		p.logger.Debug("scored batch",
			"requests", len(rawBatch),
			"results", loaded,
			"duration", time.Since(start),
		)
	}
	return true
}

// scoreAndLoad scores each request in the batch, loads the successes, and
// commits offsets. Returns the number of successfully loaded results and
// false if the pipeline should stop.
func (p *Pipeline) scoreAndLoad(ctx context.Context, rawBatch []domain.RawRequest, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	results := make([]domain.PredictionResult, 0, len(rawBatch))
	scoredRaws := make([]domain.RawRequest, 0, len(rawBatch))

	for _, raw := range rawBatch {
		result, err := p.scorer.Score(ctx, raw)
		if err != nil {
			p.logger.Warn("scoring failed, skipping request",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ScoringErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		results = append(results, result)
		scoredRaws = append(scoredRaws, raw)
	}

	if len(results) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, results); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(results))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.ResultsProduced.Add(float64(len(results)))

	for _, raw := range scoredRaws {
		p.commitOffset(ctx, raw)
	}

	return len(results), true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the request offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawRequest) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
