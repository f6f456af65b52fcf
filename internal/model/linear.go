package model

import (
	"math"
	"math/rand"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

const (
	linearEpochs    = 50
	linearBatchSize = 32
	linearRate      = 0.05
	linearL2        = 1e-3
)

// Linear predicts each target with a single L2-regularized sigmoid unit
// trained by mini-batch gradient descent on squared error.
type Linear struct {
	lifecycle

	inputs  int
	rng     *rand.Rand
	drought linearUnit
	flood   linearUnit
}

type linearUnit struct {
	weights []float64
	bias    float64
}

// NewLinear creates an untrained linear predictor for the given input width.
func NewLinear(inputs int, seed int64) *Linear {
	return &Linear{inputs: inputs, rng: rand.New(rand.NewSource(seed))}
}

func (m *Linear) EnsureTrained(examples []synthetic.Example) error {
	return m.ensure(func() error { return m.train(examples) })
}

func (m *Linear) train(examples []synthetic.Example) error {
	set, err := newTrainingSet(m.rng, examples, m.inputs)
	if err != nil {
		return err
	}
	// 20% holdout; fixed-epoch training, no early stopping.
	train, _ := set.split(0.2)

	m.drought = m.fitUnit(train.rows, train.droughts)
	m.flood = m.fitUnit(train.rows, train.floods)
	return nil
}

func (m *Linear) fitUnit(rows [][]float64, targets []float64) linearUnit {
	u := linearUnit{weights: make([]float64, m.inputs)}
	for i := range u.weights {
		u.weights[i] = m.rng.NormFloat64() * 0.01
	}

	gradW := make([]float64, m.inputs)
	for epoch := 0; epoch < linearEpochs; epoch++ {
		for start := 0; start < len(rows); start += linearBatchSize {
			end := start + linearBatchSize
			if end > len(rows) {
				end = len(rows)
			}

			for i := range gradW {
				gradW[i] = 0
			}
			gradB := 0.0
			for i := start; i < end; i++ {
				a := sigmoid(dot(u.weights, rows[i]) + u.bias)
				// Squared-error delta through the sigmoid.
				d := (a - targets[i]) * a * (1 - a)
				for j, xj := range rows[i] {
					gradW[j] += d * xj
				}
				gradB += d
			}

			n := float64(end - start)
			for j := range u.weights {
				u.weights[j] -= linearRate * (gradW[j]/n + linearL2*u.weights[j])
			}
			u.bias -= linearRate * gradB / n
		}
	}
	return u
}

func (m *Linear) Predict(features []float64) (domain.ModelPrediction, error) {
	if !m.Ready() {
		return domain.ModelPrediction{}, ErrNotTrained
	}
	if err := checkInputs(features, m.inputs); err != nil {
		return domain.ModelPrediction{}, err
	}

	confidence := math.Min(0.95, 0.6+0.3*nonZeroRatio(features))
	return domain.ModelPrediction{
		DroughtRisk: sigmoid(dot(m.drought.weights, features) + m.drought.bias),
		FloodRisk:   sigmoid(dot(m.flood.weights, features) + m.flood.bias),
		Confidence:  confidence,
	}, nil
}
