package model

import (
	"math"
	"math/rand"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

const (
	neuralBasicEpochs    = 50
	neuralEnhancedEpochs = 100
	neuralBatchSize      = 32
	neuralRate           = 0.05
	neuralL2             = 1e-4
)

// Per-depth dropout rates between hidden layers; deeper layers drop less.
var dropoutRates = []float64{0.3, 0.2, 0.1}

// Neural is a feed-forward network with ReLU hidden layers and a sigmoid
// unit per target. The basic variant (5 inputs, two hidden layers) minimizes
// squared error; the enhanced variant (25 inputs, three hidden layers with
// activation normalization after the first) minimizes cross-entropy and
// additionally reports uncertainty and feature importance.
type Neural struct {
	lifecycle

	inputs   int
	enhanced bool
	rng      *rand.Rand

	hidden []*dense
	output *dense
	norm   *activationNorm
}

// NewNeural creates an untrained basic neural predictor.
func NewNeural(inputs int, seed int64) *Neural {
	return newNeural(inputs, false, seed)
}

// NewNeuralEnhanced creates an untrained enhanced neural predictor.
func NewNeuralEnhanced(inputs int, seed int64) *Neural {
	return newNeural(inputs, true, seed)
}

func newNeural(inputs int, enhanced bool, seed int64) *Neural {
	rng := rand.New(rand.NewSource(seed))
	m := &Neural{inputs: inputs, enhanced: enhanced, rng: rng}

	sizes := []int{12, 8}
	if enhanced {
		sizes = []int{32, 16, 8}
	}

	prev := inputs
	for _, size := range sizes {
		m.hidden = append(m.hidden, newDense(rng, prev, size))
		prev = size
	}
	m.output = newDense(rng, prev, 2)

	if enhanced {
		m.norm = newActivationNorm(sizes[0])
	}
	return m
}

func (m *Neural) EnsureTrained(examples []synthetic.Example) error {
	return m.ensure(func() error { return m.train(examples) })
}

func (m *Neural) train(examples []synthetic.Example) error {
	set, err := newTrainingSet(m.rng, examples, m.inputs)
	if err != nil {
		return err
	}
	// 20% holdout; fixed-epoch training, no early stopping.
	train, _ := set.split(0.2)

	epochs := neuralBasicEpochs
	if m.enhanced {
		epochs = neuralEnhancedEpochs
	}

	for epoch := 0; epoch < epochs; epoch++ {
		for start := 0; start < train.len(); start += neuralBatchSize {
			end := start + neuralBatchSize
			if end > train.len() {
				end = train.len()
			}
			m.trainBatch(train, start, end)
		}
	}
	return nil
}

func (m *Neural) trainBatch(set trainingSet, start, end int) {
	grads := make([]*denseGrad, len(m.hidden)+1)
	for i, layer := range m.hidden {
		grads[i] = newDenseGrad(layer)
	}
	grads[len(m.hidden)] = newDenseGrad(m.output)

	for i := start; i < end; i++ {
		out, c := m.forwardTrain(set.rows[i])

		// Output deltas. Cross-entropy through a sigmoid reduces to the
		// residual; squared error keeps the sigmoid derivative.
		targets := [2]float64{set.droughts[i], set.floods[i]}
		delta := make([]float64, 2)
		for k := 0; k < 2; k++ {
			if m.enhanced {
				delta[k] = out[k] - targets[k]
			} else {
				delta[k] = (out[k] - targets[k]) * out[k] * (1 - out[k])
			}
		}

		m.backward(c, delta, grads)
	}

	n := float64(end - start)
	for i, layer := range m.hidden {
		layer.apply(grads[i], n)
	}
	m.output.apply(grads[len(m.hidden)], n)
}

// forwardCache holds per-layer intermediates for one training sample.
type forwardCache struct {
	inputs [][]float64 // input to each dense layer (hidden... then output)
	zs     [][]float64 // hidden pre-activations, post-normalization
	masks  [][]float64 // inverted dropout masks per hidden layer
}

func (m *Neural) forwardTrain(x []float64) ([]float64, forwardCache) {
	c := forwardCache{}
	h := x
	for i, layer := range m.hidden {
		c.inputs = append(c.inputs, h)
		z := layer.forward(h)
		if i == 0 && m.norm != nil {
			z = m.norm.applyTrain(z)
		}
		c.zs = append(c.zs, z)

		mask := m.dropoutMask(i, len(z))
		c.masks = append(c.masks, mask)

		next := make([]float64, len(z))
		for j, zj := range z {
			if zj > 0 {
				next[j] = zj * mask[j]
			}
		}
		h = next
	}

	c.inputs = append(c.inputs, h)
	out := m.output.forward(h)
	for k := range out {
		out[k] = sigmoid(out[k])
	}
	return out, c
}

func (m *Neural) dropoutMask(layer, size int) []float64 {
	rate := 0.0
	if layer < len(dropoutRates) {
		rate = dropoutRates[layer]
	}
	mask := make([]float64, size)
	for j := range mask {
		if m.rng.Float64() >= rate {
			mask[j] = 1 / (1 - rate)
		}
	}
	return mask
}

func (m *Neural) backward(c forwardCache, delta []float64, grads []*denseGrad) {
	// Output layer.
	last := len(m.hidden)
	grads[last].accumulate(delta, c.inputs[last])
	delta = m.output.backPropagate(delta)

	// Hidden layers, deepest first.
	for i := len(m.hidden) - 1; i >= 0; i-- {
		for j := range delta {
			if c.zs[i][j] <= 0 {
				delta[j] = 0
			} else {
				delta[j] *= c.masks[i][j]
			}
		}
		if i == 0 && m.norm != nil {
			m.norm.scaleDelta(delta)
		}
		grads[i].accumulate(delta, c.inputs[i])
		if i > 0 {
			delta = m.hidden[i].backPropagate(delta)
		}
	}
}

func (m *Neural) Predict(features []float64) (domain.ModelPrediction, error) {
	if !m.Ready() {
		return domain.ModelPrediction{}, ErrNotTrained
	}
	if err := checkInputs(features, m.inputs); err != nil {
		return domain.ModelPrediction{}, err
	}

	h := features
	for i, layer := range m.hidden {
		z := layer.forward(h)
		if i == 0 && m.norm != nil {
			z = m.norm.apply(z)
		}
		for j, zj := range z {
			if zj < 0 {
				z[j] = 0
			}
		}
		h = z
	}
	out := m.output.forward(h)
	drought := sigmoid(out[0])
	flood := sigmoid(out[1])

	p := domain.ModelPrediction{
		DroughtRisk: drought,
		FloodRisk:   flood,
	}
	ratio := nonZeroRatio(features)
	if m.enhanced {
		p.Confidence = math.Min(0.95, 0.8+0.15*ratio)
		u := math.Min(1, 2*math.Abs(drought-flood))
		p.Uncertainty = &u
		p.FeatureImportance = featureImportance(features)
	} else {
		p.Confidence = math.Min(0.95, 0.7+0.25*ratio)
	}
	return p, nil
}

// featureImportance is a deliberately simple position-decayed magnitude,
// kept as-is because downstream display depends on its exact shape. It is
// not a sensitivity measure.
func featureImportance(features []float64) []float64 {
	imp := make([]float64, len(features))
	for i, v := range features {
		imp[i] = math.Abs(v) / float64(i+1)
	}
	return imp
}

// dense is one fully connected layer.
type dense struct {
	in, out int
	w       [][]float64 // out rows of in weights
	b       []float64
}

func newDense(rng *rand.Rand, in, out int) *dense {
	d := &dense{in: in, out: out, w: make([][]float64, out), b: make([]float64, out)}
	scale := math.Sqrt(2 / float64(in))
	for i := range d.w {
		row := make([]float64, in)
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
		d.w[i] = row
	}
	return d
}

func (d *dense) forward(x []float64) []float64 {
	out := make([]float64, d.out)
	for i, row := range d.w {
		out[i] = dot(row, x) + d.b[i]
	}
	return out
}

// backPropagate maps this layer's output deltas to input deltas.
func (d *dense) backPropagate(delta []float64) []float64 {
	prev := make([]float64, d.in)
	for i, row := range d.w {
		for j, wij := range row {
			prev[j] += wij * delta[i]
		}
	}
	return prev
}

// apply performs one L2-regularized gradient step averaged over n samples.
func (d *dense) apply(g *denseGrad, n float64) {
	for i, row := range d.w {
		for j := range row {
			row[j] -= neuralRate * (g.w[i][j]/n + neuralL2*row[j])
		}
		d.b[i] -= neuralRate * g.b[i] / n
	}
}

type denseGrad struct {
	w [][]float64
	b []float64
}

func newDenseGrad(d *dense) *denseGrad {
	g := &denseGrad{w: make([][]float64, d.out), b: make([]float64, d.out)}
	for i := range g.w {
		g.w[i] = make([]float64, d.in)
	}
	return g
}

func (g *denseGrad) accumulate(delta, input []float64) {
	for i, di := range delta {
		for j, xj := range input {
			g.w[i][j] += di * xj
		}
		g.b[i] += di
	}
}

// activationNorm keeps online mean/variance estimates per unit and rescales
// activations with them. Estimates update during training only; inference
// uses the frozen values. The statistics are exponential running estimates
// rather than per-batch moments.
type activationNorm struct {
	mean []float64
	vari []float64
}

const (
	normMomentum = 0.9
	normEpsilon  = 1e-5
)

func newActivationNorm(size int) *activationNorm {
	n := &activationNorm{mean: make([]float64, size), vari: make([]float64, size)}
	for i := range n.vari {
		n.vari[i] = 1
	}
	return n
}

func (n *activationNorm) applyTrain(z []float64) []float64 {
	out := make([]float64, len(z))
	for i, zi := range z {
		d := zi - n.mean[i]
		n.mean[i] = normMomentum*n.mean[i] + (1-normMomentum)*zi
		n.vari[i] = normMomentum*n.vari[i] + (1-normMomentum)*d*d
		out[i] = (zi - n.mean[i]) / math.Sqrt(n.vari[i]+normEpsilon)
	}
	return out
}

func (n *activationNorm) apply(z []float64) []float64 {
	out := make([]float64, len(z))
	for i, zi := range z {
		out[i] = (zi - n.mean[i]) / math.Sqrt(n.vari[i]+normEpsilon)
	}
	return out
}

// scaleDelta pushes gradients through the normalization as a fixed rescale,
// ignoring the statistics' own dependence on the input.
func (n *activationNorm) scaleDelta(delta []float64) {
	for i := range delta {
		delta[i] /= math.Sqrt(n.vari[i] + normEpsilon)
	}
}
