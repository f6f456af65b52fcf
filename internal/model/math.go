package model

import (
	"errors"
	"math"
	"math/rand"

	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func dot(w, x []float64) float64 {
	var sum float64
	for i, wi := range w {
		sum += wi * x[i]
	}
	return sum
}

// nonZeroRatio is the fraction of feature slots carrying signal, used by the
// confidence heuristics.
func nonZeroRatio(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	n := 0
	for _, v := range x {
		if v != 0 {
			n++
		}
	}
	return float64(n) / float64(len(x))
}

// trainingSet is the example set projected to a model's input width.
type trainingSet struct {
	rows     [][]float64
	droughts []float64
	floods   []float64
}

func (s trainingSet) len() int { return len(s.rows) }

// newTrainingSet shuffles the examples and slices each feature vector to
// width inputs. Basic models read the level slots only.
func newTrainingSet(rng *rand.Rand, examples []synthetic.Example, inputs int) (trainingSet, error) {
	if len(examples) == 0 {
		return trainingSet{}, errors.New("no training examples")
	}

	order := rng.Perm(len(examples))
	s := trainingSet{
		rows:     make([][]float64, len(examples)),
		droughts: make([]float64, len(examples)),
		floods:   make([]float64, len(examples)),
	}
	for i, idx := range order {
		ex := examples[idx]
		if len(ex.Features) < inputs {
			return trainingSet{}, errors.New("example feature vector too short")
		}
		s.rows[i] = ex.Features[:inputs]
		s.droughts[i] = ex.DroughtRisk
		s.floods[i] = ex.FloodRisk
	}
	return s, nil
}

// split carves off the trailing holdout fraction. The holdout is reserved
// for validation reporting and never drives early stopping.
func (s trainingSet) split(holdout float64) (train, val trainingSet) {
	cut := len(s.rows) - int(float64(len(s.rows))*holdout)
	if cut < 1 {
		cut = len(s.rows)
	}
	train = trainingSet{rows: s.rows[:cut], droughts: s.droughts[:cut], floods: s.floods[:cut]}
	val = trainingSet{rows: s.rows[cut:], droughts: s.droughts[cut:], floods: s.floods[cut:]}
	return train, val
}
