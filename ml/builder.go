package ml

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

type LayerOption func(*LayerConfig)

// LayerConfig holds the blueprint for a layer
type LayerConfig struct {
	Neurons    int
	IsInput    bool
	Activation string
	Init       Initializer
}

// ------- LAYER CONFIG HELPERS ------- //

// Input defines the entry point dimensions
func Input(size int) LayerConfig {
	return LayerConfig{
		Neurons:    size,
		IsInput:    true,
		Activation: "linear",
	}
}

// Dense defines a fully connected layer, followed by ReLU unless another
// activation is chosen.
func Dense(size int, opts ...LayerOption) LayerConfig {
	d := LayerConfig{
		Neurons:    size,
		Activation: "relu", // Default for hidden layers
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Activation names the nonlinearity applied after a Dense layer. Names are
// validated by Build.
func Activation(name string) LayerOption {
	return func(lc *LayerConfig) {
		lc.Activation = name
	}
}

func WithInitializer(init Initializer) LayerOption {
	return func(lc *LayerConfig) {
		lc.Init = init
	}
}

// Build assembles a network from an Input config followed by Dense configs.
// Each Dense expands to a DenseLayer plus an ActivationLayer ("linear" adds
// none). Weights are drawn from rng; nil uses the global source.
func Build(rng *rand.Rand, configs ...LayerConfig) (*NeuralNetwork, error) {
	if len(configs) < 2 {
		return nil, errors.Wrap(ErrInvalidConfiguration, "build: need Input and at least one Dense layer")
	}
	if !configs[0].IsInput {
		return nil, errors.Wrap(ErrInvalidConfiguration, "build: first layer must be Input()")
	}
	if configs[0].Neurons <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "build: input size %d", configs[0].Neurons)
	}

	nw := &NeuralNetwork{}
	prevOutputSize := configs[0].Neurons
	for i := 1; i < len(configs); i++ {
		cfg := configs[i]
		if cfg.IsInput {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "build: layer %d: Input() is only valid first", i)
		}
		if cfg.Neurons <= 0 {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "build: layer %d has %d neurons", i, cfg.Neurons)
		}
		act, err := ParseActivation(cfg.Activation)
		if err != nil {
			return nil, errors.Wrapf(err, "build: layer %d", i)
		}

		dense, err := NewDenseLayer(prevOutputSize, cfg.Neurons, WithRand(rng), WithInit(cfg.Init))
		if err != nil {
			return nil, errors.Wrapf(err, "build: layer %d", i)
		}
		nw.Add(dense)
		if act != ActLinear {
			nw.Add(NewActivationLayer(act))
		}
		prevOutputSize = cfg.Neurons
	}
	return nw, nil
}
