package model

import (
	"math"
	"math/rand"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

const (
	forestTrees   = 50
	forestMinLeaf = 10
)

// Forest is an ensemble of fully randomized regression trees: each split
// picks a uniformly random feature and a uniformly random threshold within
// that feature's observed range in the node. Prediction averages the trees'
// leaf means; agreement across trees drives the confidence score.
type Forest struct {
	lifecycle

	inputs int
	rng    *rand.Rand
	trees  []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	// Leaf payload: mean targets of the examples that reached it.
	leaf    bool
	drought float64
	flood   float64
}

// NewForest creates an untrained randomized forest for the given input width.
func NewForest(inputs int, seed int64) *Forest {
	return &Forest{inputs: inputs, rng: rand.New(rand.NewSource(seed))}
}

func (m *Forest) EnsureTrained(examples []synthetic.Example) error {
	return m.ensure(func() error { return m.train(examples) })
}

func (m *Forest) train(examples []synthetic.Example) error {
	set, err := newTrainingSet(m.rng, examples, m.inputs)
	if err != nil {
		return err
	}
	train, _ := set.split(0.2)

	indices := make([]int, train.len())
	for i := range indices {
		indices[i] = i
	}

	m.trees = make([]*treeNode, forestTrees)
	for t := range m.trees {
		m.trees[t] = m.buildNode(train, indices)
	}
	return nil
}

func (m *Forest) buildNode(set trainingSet, indices []int) *treeNode {
	if len(indices) < forestMinLeaf {
		return leafNode(set, indices)
	}

	feature := m.rng.Intn(m.inputs)
	lo, hi := set.rows[indices[0]][feature], set.rows[indices[0]][feature]
	for _, idx := range indices[1:] {
		v := set.rows[idx][feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return leafNode(set, indices)
	}

	threshold := lo + m.rng.Float64()*(hi-lo)
	var left, right []int
	for _, idx := range indices {
		if set.rows[idx][feature] < threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leafNode(set, indices)
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      m.buildNode(set, left),
		right:     m.buildNode(set, right),
	}
}

func leafNode(set trainingSet, indices []int) *treeNode {
	n := &treeNode{leaf: true}
	if len(indices) == 0 {
		return n
	}
	for _, idx := range indices {
		n.drought += set.droughts[idx]
		n.flood += set.floods[idx]
	}
	n.drought /= float64(len(indices))
	n.flood /= float64(len(indices))
	return n
}

func (n *treeNode) lookup(features []float64) (drought, flood float64) {
	for !n.leaf {
		if features[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.drought, n.flood
}

func (m *Forest) Predict(features []float64) (domain.ModelPrediction, error) {
	if !m.Ready() {
		return domain.ModelPrediction{}, ErrNotTrained
	}
	if err := checkInputs(features, m.inputs); err != nil {
		return domain.ModelPrediction{}, err
	}

	droughts := make([]float64, len(m.trees))
	floods := make([]float64, len(m.trees))
	var droughtSum, floodSum float64
	for i, tree := range m.trees {
		droughts[i], floods[i] = tree.lookup(features)
		droughtSum += droughts[i]
		floodSum += floods[i]
	}

	n := float64(len(m.trees))
	droughtMean := droughtSum / n
	floodMean := floodSum / n

	var droughtVar, floodVar float64
	for i := range m.trees {
		droughtVar += (droughts[i] - droughtMean) * (droughts[i] - droughtMean)
		floodVar += (floods[i] - floodMean) * (floods[i] - floodMean)
	}
	droughtVar /= n
	floodVar /= n

	// Tighter tree agreement yields higher confidence.
	confidence := math.Min(0.95, 0.65+0.3*(1-math.Sqrt(droughtVar+floodVar)))

	return domain.ModelPrediction{
		DroughtRisk: droughtMean,
		FloodRisk:   floodMean,
		Confidence:  confidence,
	}, nil
}
