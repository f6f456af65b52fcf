// Package model implements the four risk predictors (linear, neural,
// randomized forest, ensemble) behind a common Predictor interface, plus the
// Manager that owns the registry and the train-once lifecycle.
//
// Every predictor trains from the synthetic generator's labeled examples and
// answers with drought/flood probabilities plus a confidence heuristic. The
// weights, epoch budgets, and confidence formulas are hand-tuned contracts;
// do not re-derive them.
package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

// Model identifiers accepted by the Manager.
const (
	IDLinear   = "linear"
	IDNeural   = "neural"
	IDForest   = "random_forest"
	IDEnsemble = "ensemble"
)

var (
	// ErrUnknownModel is returned when an identifier is not registered for
	// the active path. There is no fallback to a default model.
	ErrUnknownModel = errors.New("unknown model")
	// ErrNotTrained is returned by Predict on a predictor that has not
	// completed training.
	ErrNotTrained = errors.New("predictor not trained")
)

// Predictor is a trainable risk model. EnsureTrained is idempotent and safe
// for concurrent use; the first caller trains, later callers return once the
// predictor is ready.
type Predictor interface {
	EnsureTrained(examples []synthetic.Example) error
	Ready() bool
	Predict(features []float64) (domain.ModelPrediction, error)
}

type trainState int

const (
	stateUntrained trainState = iota
	stateTraining
	stateReady
)

// lifecycle is the shared untrained → training → ready state machine.
// The mutex serializes first-training so concurrent predictions cannot
// double-train one instance.
type lifecycle struct {
	mu    sync.Mutex
	state trainState
}

func (l *lifecycle) ensure(train func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == stateReady {
		return nil
	}
	l.state = stateTraining
	if err := train(); err != nil {
		l.state = stateUntrained
		return err
	}
	l.state = stateReady
	return nil
}

func (l *lifecycle) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateReady
}

// checkInputs validates a prediction input vector against the model's
// expected width.
func checkInputs(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("expected %d features, got %d", want, len(features))
	}
	return nil
}
