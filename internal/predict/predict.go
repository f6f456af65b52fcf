// Package predict hosts the prediction orchestrator: request validation,
// sample acquisition, pipeline routing, model dispatch, and assembly of the
// user-facing result.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/preprocess"
	"github.com/couchcryptid/climate-risk-engine/internal/stats"
)

// minSelectedSignals is the validation floor on feature toggles.
const minSelectedSignals = 2

// ErrTooFewSignals rejects requests selecting fewer than two signals. This
// is an input-validation failure, raised before any data work happens.
var ErrTooFewSignals = errors.New("at least 2 signals must be selected")

// Request is one prediction request as the orchestrator sees it.
type Request struct {
	Location domain.Location       `json:"location"`
	Toggles  domain.FeatureToggles `json:"toggles"`
	Model    string                `json:"model"`
}

// Validate checks the request before any preprocessing or model work.
func (r Request) Validate() error {
	if !model.KnownModel(r.Model) {
		return fmt.Errorf("%w: %q", model.ErrUnknownModel, r.Model)
	}
	if r.Toggles.EnabledCount() < minSelectedSignals {
		return fmt.Errorf("%w: %d selected", ErrTooFewSignals, r.Toggles.EnabledCount())
	}
	return r.Location.Validate()
}

// Orchestrator runs the full prediction flow and records results in the
// in-memory history. One instance is shared across requests; each call's
// intermediate state is locally scoped.
type Orchestrator struct {
	logger  *slog.Logger
	metrics *observability.Metrics

	source   domain.SampleSource
	basic    preprocess.Processor
	enhanced preprocess.Processor
	models   *model.Manager
	store    *Store
}

// NewOrchestrator wires the orchestrator. The sample source may be nil, in
// which case every signal degrades to an empty series (used by callers that
// supply samples directly via Score).
func NewOrchestrator(logger *slog.Logger, metrics *observability.Metrics, source domain.SampleSource, models *model.Manager) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		metrics:  metrics,
		source:   source,
		basic:    preprocess.NewBasic(logger, metrics),
		enhanced: preprocess.NewEnhanced(logger, metrics),
		models:   models,
		store:    NewStore(),
	}
}

// Predict validates the request, fetches the selected signals concurrently,
// and scores the assembled batch.
func (o *Orchestrator) Predict(ctx context.Context, req Request) (domain.PredictionResult, error) {
	if err := req.Validate(); err != nil {
		o.metrics.PredictionsTotal.WithLabelValues(req.Model, "validation_error").Inc()
		return domain.PredictionResult{}, err
	}

	batch := domain.FetchSignals(ctx, o.source, req.Location, req.Toggles, o.logger)
	return o.score(req, batch)
}

// Score validates the request and scores a caller-supplied sample batch.
// Used by the streaming pipeline, where samples arrive with the request.
func (o *Orchestrator) Score(req Request, batch domain.SampleBatch) (domain.PredictionResult, error) {
	if err := req.Validate(); err != nil {
		o.metrics.PredictionsTotal.WithLabelValues(req.Model, "validation_error").Inc()
		return domain.PredictionResult{}, err
	}
	return o.score(req, batch)
}

func (o *Orchestrator) score(req Request, batch domain.SampleBatch) (domain.PredictionResult, error) {
	enhanced := model.UsesEnhancedPath(req.Model)
	processor := o.basic
	if enhanced {
		processor = o.enhanced
	}

	features := processor.Process(batch, req.Location)

	prediction, err := o.models.Predict(req.Model, features.Values, enhanced)
	if err != nil {
		o.metrics.PredictionsTotal.WithLabelValues(req.Model, "model_error").Inc()
		return domain.PredictionResult{}, fmt.Errorf("model predict: %w", err)
	}

	// Data quality strictly dampens stated confidence, never amplifies it.
	confidence := prediction.Confidence * features.Quality
	if enhanced {
		confidence *= features.DataRichness
	}
	confidence = stats.Clamp01(confidence)

	now := domain.Now()
	result := domain.PredictionResult{
		ID:        domain.NewPredictionID(req.Model, req.Location, now),
		Timestamp: now,
		Location:  req.Location,
		Drought: domain.RiskAssessment{
			Level:       domain.RiskLevelFor(prediction.DroughtRisk),
			Probability: stats.Clamp01(prediction.DroughtRisk),
			Confidence:  confidence,
		},
		Flood: domain.RiskAssessment{
			Level:       domain.RiskLevelFor(prediction.FloodRisk),
			Probability: stats.Clamp01(prediction.FloodRisk),
			Confidence:  confidence,
		},
		Model:      req.Model,
		Toggles:    req.Toggles,
		DataPoints: selectedMeans(req.Toggles, features.SignalMeans),
	}

	o.store.Add(result)
	o.metrics.PredictionsTotal.WithLabelValues(req.Model, "ok").Inc()
	o.logger.Info("prediction complete",
		"id", result.ID,
		"model", req.Model,
		"enhanced", enhanced,
		"drought_level", result.Drought.Level,
		"flood_level", result.Flood.Level,
		"quality", features.Quality,
		"confidence", confidence,
	)
	return result, nil
}

// Results returns the prediction history, most recent first.
func (o *Orchestrator) Results() []domain.PredictionResult {
	return o.store.Results()
}

// Clear discards the prediction history.
func (o *Orchestrator) Clear() {
	o.store.Clear()
	o.logger.Info("cleared prediction history")
}

// selectedMeans keeps the raw mean per selected signal only; deselected
// signals never show a data point, even a zero one.
func selectedMeans(toggles domain.FeatureToggles, means map[domain.Signal]float64) map[domain.Signal]float64 {
	out := make(map[domain.Signal]float64, len(means))
	for _, signal := range domain.Signals() {
		if toggles.Enabled(signal) {
			out[signal] = means[signal]
		}
	}
	return out
}
