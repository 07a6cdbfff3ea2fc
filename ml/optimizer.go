package ml

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	OptSGD      OptimizerType = "sgd"
	OptMomentum OptimizerType = "momentum"
	OptAdam     OptimizerType = "adam"
)

// Default settings generally recommended for Adam
var DefaultAdamConfig = AdamConfig{
	Beta1:        0.9,
	Beta2:        0.999,
	Epsilon:      1e-8,
	LearningRate: 0.001,
}

const defaultMomentumMu = 0.9

type OptimizerType string

// Optimizer applies one gradient step to param in place. param and grad must
// share a shape.
type Optimizer interface {
	Update(param, grad *Matrix) error
}

// OptimizerConfig selects and parameterises an optimizer. Zero
// hyperparameters take the defaults.
type OptimizerConfig struct {
	Type         OptimizerType
	LearningRate float64

	MomentumMu float64 // For Momentum (usually 0.9)
	AdamBeta1  float64 // For Adam (usually 0.9)
	AdamBeta2  float64 // For Adam (usually 0.999)
	AdamEps    float64 // For Adam (usually 1e-8)
}

type AdamConfig struct {
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	LearningRate float64
}

type SGDOptimizer struct {
	LearningRate float64
}

type MomentumOptimizer struct {
	LearningRate float64
	Mu           float64 // Momentum Factor (usually 0.9)

	velocity map[*Matrix]*Matrix
}

type AdamOptimizer struct {
	cfg    AdamConfig
	states map[*Matrix]*adamState
}

// adamState holds the moment estimates of a single parameter matrix.
type adamState struct {
	m, v     *Matrix
	timeStep int // 't' in the Adam paper, tracks number of updates
}

// NewOptimizer builds the optimizer named by cfg.Type. An empty type means SGD.
func NewOptimizer(cfg OptimizerConfig) (Optimizer, error) {
	if !(cfg.LearningRate > 0) || math.IsInf(cfg.LearningRate, 0) {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "optimizer: learning rate %v", cfg.LearningRate)
	}

	switch cfg.Type {
	case OptSGD, "":
		return NewSGD(cfg.LearningRate), nil

	case OptMomentum:
		return NewMomentumOptimizer(cfg.LearningRate, cfg.MomentumMu), nil

	case OptAdam:
		adamCfg := DefaultAdamConfig
		adamCfg.LearningRate = cfg.LearningRate
		if cfg.AdamBeta1 != 0 {
			adamCfg.Beta1 = cfg.AdamBeta1
		}
		if cfg.AdamBeta2 != 0 {
			adamCfg.Beta2 = cfg.AdamBeta2
		}
		if cfg.AdamEps != 0 {
			adamCfg.Epsilon = cfg.AdamEps
		}
		return NewAdamOptimizer(adamCfg), nil

	default:
		return nil, errors.Wrapf(ErrInvalidConfiguration, "optimizer: unknown type %q", cfg.Type)
	}
}

func NewSGD(learningRate float64) *SGDOptimizer {
	return &SGDOptimizer{LearningRate: learningRate}
}

func NewMomentumOptimizer(lr, mu float64) *MomentumOptimizer {
	if mu == 0 {
		mu = defaultMomentumMu
	}
	return &MomentumOptimizer{
		LearningRate: lr,
		Mu:           mu,
		velocity:     make(map[*Matrix]*Matrix),
	}
}

func NewAdamOptimizer(cfg AdamConfig) *AdamOptimizer {
	return &AdamOptimizer{
		cfg:    cfg,
		states: make(map[*Matrix]*adamState),
	}
}

// ------ SGD OPTIMIZER METHODS ------ //

// Update applies W = W - (lr * gradient).
func (opt *SGDOptimizer) Update(param, grad *Matrix) error {
	if !param.SameShape(grad) {
		return shapeError("sgd update", param, grad)
	}
	floats.AddScaled(param.data, -opt.LearningRate, grad.data)
	return nil
}

// ------ MOMENTUM OPTIMIZER METHODS ------ //

// Update applies v = mu * v - lr * grad, w = w + v. Velocities are tracked
// per parameter matrix.
func (opt *MomentumOptimizer) Update(param, grad *Matrix) error {
	if !param.SameShape(grad) {
		return shapeError("momentum update", param, grad)
	}
	if opt.velocity == nil {
		opt.velocity = make(map[*Matrix]*Matrix)
	}
	velocity, ok := opt.velocity[param]
	if !ok {
		velocity = NewMatrix(param.rows, param.cols)
		opt.velocity[param] = velocity
	}

	v := velocity.data
	for i := range param.data {
		v[i] = (opt.Mu * v[i]) - (opt.LearningRate * grad.data[i])
		param.data[i] += v[i]
	}
	return nil
}

// ------ ADAM OPTIMIZER METHODS ------ //

// Update applies the bias-corrected Adam rule to a single parameter matrix.
func (opt *AdamOptimizer) Update(param, grad *Matrix) error {
	if !param.SameShape(grad) {
		return shapeError("adam update", param, grad)
	}
	if opt.states == nil {
		opt.states = make(map[*Matrix]*adamState)
	}
	state, ok := opt.states[param]
	if !ok {
		state = &adamState{
			m: NewMatrix(param.rows, param.cols),
			v: NewMatrix(param.rows, param.cols),
		}
		opt.states[param] = state
	}

	state.timeStep++
	t := float64(state.timeStep)
	beta1, beta2 := opt.cfg.Beta1, opt.cfg.Beta2
	eps, lr := opt.cfg.Epsilon, opt.cfg.LearningRate

	// correction1 = 1 - beta1^t
	// correction2 = 1 - beta2^t
	correction1 := 1.0 - math.Pow(beta1, t)
	correction2 := 1.0 - math.Pow(beta2, t)

	m, v := state.m.data, state.v.data
	for i := range param.data {
		g := grad.data[i]
		m[i] = beta1*m[i] + (1.0-beta1)*g
		v[i] = beta2*v[i] + (1.0-beta2)*(g*g)

		mHat := m[i] / correction1
		vHat := v[i] / correction2
		param.data[i] -= lr * mHat / (math.Sqrt(vHat) + eps)
	}
	return nil
}
