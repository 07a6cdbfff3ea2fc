package ml

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
)

const (
	// InitHeUniform draws weights from U(-sqrt(2/fanIn), sqrt(2/fanIn)).
	InitHeUniform Initializer = iota
	// InitXavierUniform draws from U(-limit, limit), limit = sqrt(6/(fanIn+fanOut)).
	InitXavierUniform
	// InitHeNormal draws from N(0, 1) scaled by sqrt(2/fanIn).
	InitHeNormal
)

var initializerMap = map[string]Initializer{
	"he_uniform": InitHeUniform,
	"xavier":     InitXavierUniform,
	"he_normal":  InitHeNormal,
}

// Initializer selects how a DenseLayer's weights are drawn.
type Initializer int

type DenseOption func(*denseConfig)

type denseConfig struct {
	rng  *rand.Rand
	init Initializer
}

// WithRand draws initial weights from rng, making initialisation reproducible.
func WithRand(rng *rand.Rand) DenseOption {
	return func(c *denseConfig) { c.rng = rng }
}

func WithInit(init Initializer) DenseOption {
	return func(c *denseConfig) { c.init = init }
}

// ParseInitializer maps "he_uniform", "xavier" or "he_normal" to an Initializer.
func ParseInitializer(name string) (Initializer, error) {
	init, ok := initializerMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown initializer %q", name)
	}
	return init, nil
}

func (init Initializer) weights(fanIn, fanOut int, rng *rand.Rand) (*Matrix, error) {
	switch init {
	case InitHeUniform:
		limit := math.Sqrt(2.0 / float64(fanIn))
		return Random(fanIn, fanOut, -limit, limit, rng)
	case InitXavierUniform:
		// limit = sqrt(6 / (fan_in + fan_out))
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		return Random(fanIn, fanOut, -limit, limit, rng)
	case InitHeNormal:
		scale := math.Sqrt(2.0 / float64(fanIn))
		m := NewMatrix(fanIn, fanOut)
		for i := range m.data {
			m.data[i] = normal(rng) * scale
		}
		return m, nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unsupported initializer %d", int(init))
	}
}

// DenseLayer is a fully connected layer computing input·W + b.
type DenseLayer struct {
	weights *Matrix // inSize x outSize
	biases  *Matrix // 1 x outSize

	// Backward State
	gradWeights *Matrix
	gradBiases  *Matrix
	lastInput   *Matrix

	inSize, outSize int
}

// NewDenseLayer creates an inputSize -> outputSize layer with zero biases and
// weights drawn by the configured Initializer (InitHeUniform by default).
func NewDenseLayer(inputSize, outputSize int, opts ...DenseOption) (*DenseLayer, error) {
	if inputSize <= 0 || outputSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "dense %dx%d: sizes must be positive", inputSize, outputSize)
	}
	var cfg denseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	weights, err := cfg.init.weights(inputSize, outputSize, cfg.rng)
	if err != nil {
		return nil, err
	}
	return newDense(weights, NewMatrix(1, outputSize)), nil
}

// NewDenseLayerFrom creates a layer with fixed initial parameters. Both
// matrices are copied.
func NewDenseLayerFrom(weights, biases *Matrix) (*DenseLayer, error) {
	if weights.rows == 0 || weights.cols == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "dense from %dx%d weights", weights.rows, weights.cols)
	}
	if biases.rows != 1 || biases.cols != weights.cols {
		return nil, errors.Wrapf(ErrShapeMismatch, "dense bias: want 1x%d, got %dx%d", weights.cols, biases.rows, biases.cols)
	}
	return newDense(weights.Clone(), biases.Clone()), nil
}

func newDense(weights, biases *Matrix) *DenseLayer {
	return &DenseLayer{
		weights:     weights,
		biases:      biases,
		gradWeights: NewMatrix(weights.rows, weights.cols),
		gradBiases:  NewMatrix(1, weights.cols),
		inSize:      weights.rows,
		outSize:     weights.cols,
	}
}

func (d *DenseLayer) InSize() int  { return d.inSize }
func (d *DenseLayer) OutSize() int { return d.outSize }

// Weights returns a copy of the weight matrix.
func (d *DenseLayer) Weights() *Matrix { return d.weights.Clone() }

// Bias returns a copy of the bias row vector.
func (d *DenseLayer) Bias() *Matrix { return d.biases.Clone() }

// Forward computes input·W + b for a batch of rows.
func (d *DenseLayer) Forward(input *Matrix) (*Matrix, error) {
	if input.cols != d.inSize {
		return nil, errors.Wrapf(ErrShapeMismatch, "dense forward: input has %d features, layer expects %d", input.cols, d.inSize)
	}
	out, err := input.Dot(d.weights)
	if err != nil {
		return nil, err
	}
	if err := out.AddRowVectorInPlace(d.biases); err != nil {
		return nil, err
	}
	d.lastInput = input.Clone()
	return out, nil
}

// Backward stores the batch-mean parameter gradients
//
//	dW = Xᵗ·G / batch, db = sumRows(G) / batch
//
// and returns G·Wᵗ.
func (d *DenseLayer) Backward(gradOutput *Matrix) (*Matrix, error) {
	if d.lastInput == nil {
		return nil, errors.Wrap(ErrInvalidState, "dense backward before forward")
	}
	if gradOutput.cols != d.outSize {
		return nil, errors.Wrapf(ErrShapeMismatch, "dense backward: gradient has %d columns, layer outputs %d", gradOutput.cols, d.outSize)
	}

	batchSize := float64(d.lastInput.rows)
	dW, err := d.lastInput.T().Dot(gradOutput)
	if err != nil {
		return nil, errors.Wrap(err, "dense backward")
	}
	if dW, err = dW.Div(batchSize); err != nil {
		return nil, errors.Wrap(err, "dense backward")
	}
	db, err := gradOutput.SumRows().Div(batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "dense backward")
	}

	gradInput, err := gradOutput.Dot(d.weights.T())
	if err != nil {
		return nil, errors.Wrap(err, "dense backward")
	}
	d.gradWeights, d.gradBiases = dW, db
	return gradInput, nil
}

// UpdateParams hands (W, dW) and (b, db) to opt.
func (d *DenseLayer) UpdateParams(opt Optimizer) error {
	if opt == nil {
		return errors.Wrap(ErrInvalidConfiguration, "dense update: nil optimizer")
	}
	if err := opt.Update(d.weights, d.gradWeights); err != nil {
		return errors.Wrap(err, "dense update weights")
	}
	if err := opt.Update(d.biases, d.gradBiases); err != nil {
		return errors.Wrap(err, "dense update bias")
	}
	return nil
}
