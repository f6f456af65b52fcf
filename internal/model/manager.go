package model

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/feature"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

// Manager owns the model registries and the train-once lifecycle. One
// instance is constructed at startup and shared by reference; trained models
// are reused across predictions but never persisted.
type Manager struct {
	logger  *slog.Logger
	metrics *observability.Metrics

	gen      *synthetic.Generator
	genOnce  sync.Once
	examples []synthetic.Example

	basic    map[string]Predictor
	enhanced map[string]Predictor
}

// NewManager builds the fixed registries: all four identifiers on the basic
// path, neural and ensemble on the enhanced path. The seed feeds both the
// training-data generator and the predictors' own randomness.
func NewManager(logger *slog.Logger, metrics *observability.Metrics, seed int64) *Manager {
	linear := NewLinear(feature.BasicSize, seed)
	neural := NewNeural(feature.BasicSize, seed+1)
	forest := NewForest(feature.BasicSize, seed+2)
	enhancedNeural := NewNeuralEnhanced(feature.EnhancedSize, seed+3)

	return &Manager{
		logger:  logger,
		metrics: metrics,
		gen:     synthetic.NewGenerator(seed),
		basic: map[string]Predictor{
			IDLinear:   linear,
			IDNeural:   neural,
			IDForest:   forest,
			IDEnsemble: NewEnsemble(linear, neural, forest),
		},
		enhanced: map[string]Predictor{
			IDNeural:   enhancedNeural,
			IDEnsemble: NewEnhancedEnsemble(enhancedNeural),
		},
	}
}

// UsesEnhancedPath reports whether a model identifier routes through the
// enhanced 25-feature pipeline.
func UsesEnhancedPath(id string) bool {
	return id == IDNeural || id == IDEnsemble
}

// KnownModel reports whether an identifier is registered on the basic path,
// which carries all four models.
func KnownModel(id string) bool {
	switch id {
	case IDLinear, IDNeural, IDForest, IDEnsemble:
		return true
	}
	return false
}

// Predict routes to the registered predictor for the identifier and path,
// training it first if this is its first use. An unregistered identifier
// fails fast; there is no default model.
func (m *Manager) Predict(id string, features []float64, enhanced bool) (domain.ModelPrediction, error) {
	registry, path := m.basic, "basic"
	if enhanced {
		registry, path = m.enhanced, "enhanced"
	}

	p, ok := registry[id]
	if !ok {
		return domain.ModelPrediction{}, fmt.Errorf("%w: %q on %s path", ErrUnknownModel, id, path)
	}

	if !p.Ready() {
		start := time.Now()
		if err := p.EnsureTrained(m.trainingSet()); err != nil {
			return domain.ModelPrediction{}, fmt.Errorf("training %s: %w", id, err)
		}
		elapsed := time.Since(start)
		m.metrics.TrainingDuration.WithLabelValues(id).Observe(elapsed.Seconds())
		m.logger.Info("trained model",
			"model", id,
			"path", path,
			"examples", len(m.examples),
			"duration", elapsed,
		)
	}

	return p.Predict(features)
}

// trainingSet generates the synthetic examples at most once and shares them
// across every predictor.
func (m *Manager) trainingSet() []synthetic.Example {
	m.genOnce.Do(func() {
		m.examples = m.gen.Examples()
		m.logger.Info("generated training data", "examples", len(m.examples))
	})
	return m.examples
}
