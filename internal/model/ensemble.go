package model

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

// Fixed ensemble blend weights. They sum to 1, so sub-model agreement passes
// through exactly.
const (
	ensembleLinearWeight = 0.2
	ensembleNeuralWeight = 0.5
	ensembleForestWeight = 0.3
)

// Ensemble blends the three basic predictors with fixed weights, including
// their confidences. Training the ensemble trains all three sub-models.
type Ensemble struct {
	linear Predictor
	neural Predictor
	forest Predictor
}

// NewEnsemble creates the basic ensemble over the given sub-models.
func NewEnsemble(linear, neural, forest Predictor) *Ensemble {
	return &Ensemble{linear: linear, neural: neural, forest: forest}
}

func (m *Ensemble) EnsureTrained(examples []synthetic.Example) error {
	for _, sub := range []Predictor{m.linear, m.neural, m.forest} {
		if err := sub.EnsureTrained(examples); err != nil {
			return err
		}
	}
	return nil
}

func (m *Ensemble) Ready() bool {
	return m.linear.Ready() && m.neural.Ready() && m.forest.Ready()
}

func (m *Ensemble) Predict(features []float64) (domain.ModelPrediction, error) {
	lp, err := m.linear.Predict(features)
	if err != nil {
		return domain.ModelPrediction{}, err
	}
	np, err := m.neural.Predict(features)
	if err != nil {
		return domain.ModelPrediction{}, err
	}
	fp, err := m.forest.Predict(features)
	if err != nil {
		return domain.ModelPrediction{}, err
	}

	blend := func(l, n, f float64) float64 {
		return ensembleLinearWeight*l + ensembleNeuralWeight*n + ensembleForestWeight*f
	}
	return domain.ModelPrediction{
		DroughtRisk: blend(lp.DroughtRisk, np.DroughtRisk, fp.DroughtRisk),
		FloodRisk:   blend(lp.FloodRisk, np.FloodRisk, fp.FloodRisk),
		Confidence:  blend(lp.Confidence, np.Confidence, fp.Confidence),
	}, nil
}

// EnhancedEnsemble wraps the enhanced neural predictor, dampening its stated
// certainty: confidence scales down by 5% and uncertainty up by 10%.
type EnhancedEnsemble struct {
	neural Predictor
}

// NewEnhancedEnsemble creates the enhanced ensemble around the given
// enhanced neural predictor.
func NewEnhancedEnsemble(neural Predictor) *EnhancedEnsemble {
	return &EnhancedEnsemble{neural: neural}
}

func (m *EnhancedEnsemble) EnsureTrained(examples []synthetic.Example) error {
	return m.neural.EnsureTrained(examples)
}

func (m *EnhancedEnsemble) Ready() bool { return m.neural.Ready() }

func (m *EnhancedEnsemble) Predict(features []float64) (domain.ModelPrediction, error) {
	p, err := m.neural.Predict(features)
	if err != nil {
		return domain.ModelPrediction{}, err
	}
	p.Confidence *= 0.95
	if p.Uncertainty != nil {
		u := math.Min(1, *p.Uncertainty*1.1)
		p.Uncertainty = &u
	}
	return p, nil
}
