package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptimizer(t *testing.T) {
	opt, err := NewOptimizer(OptimizerConfig{LearningRate: 0.1})
	require.NoError(t, err)
	assert.IsType(t, &SGDOptimizer{}, opt)

	opt, err = NewOptimizer(OptimizerConfig{Type: OptMomentum, LearningRate: 0.1})
	require.NoError(t, err)
	require.IsType(t, &MomentumOptimizer{}, opt)
	assert.Equal(t, 0.9, opt.(*MomentumOptimizer).Mu)

	opt, err = NewOptimizer(OptimizerConfig{Type: OptAdam, LearningRate: 0.01, AdamBeta2: 0.99})
	require.NoError(t, err)
	require.IsType(t, &AdamOptimizer{}, opt)
	adam := opt.(*AdamOptimizer)
	assert.Equal(t, 0.9, adam.cfg.Beta1)
	assert.Equal(t, 0.99, adam.cfg.Beta2)
	assert.Equal(t, 1e-8, adam.cfg.Epsilon)
	assert.Equal(t, 0.01, adam.cfg.LearningRate)
}

func TestNewOptimizerInvalid(t *testing.T) {
	for _, cfg := range []OptimizerConfig{
		{Type: OptSGD, LearningRate: 0},
		{Type: OptSGD, LearningRate: -0.1},
		{Type: OptAdam, LearningRate: math.NaN()},
		{Type: OptMomentum, LearningRate: math.Inf(1)},
		{Type: "rmsprop", LearningRate: 0.1},
	} {
		_, err := NewOptimizer(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "%+v", cfg)
	}
}

func TestSGDUpdate(t *testing.T) {
	param := mustRows(t, [][]float64{{1, 2}})
	require.NoError(t, NewSGD(0.1).Update(param, mustRows(t, [][]float64{{0.5, -1}})))
	assert.InDeltaSlice(t, []float64{0.95, 2.1}, param.Data(), 1e-15)

	err := NewSGD(0.1).Update(param, NewMatrix(2, 1))
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.InDeltaSlice(t, []float64{0.95, 2.1}, param.Data(), 1e-15)
}

func TestMomentumUpdate(t *testing.T) {
	opt := NewMomentumOptimizer(0.1, 0.9)
	param := NewMatrix(1, 1)
	grad := Full(1, 1, 1)

	require.NoError(t, opt.Update(param, grad))
	assert.InDelta(t, -0.1, param.data[0], 1e-15)
	require.NoError(t, opt.Update(param, grad))
	assert.InDelta(t, -0.29, param.data[0], 1e-15)

	require.ErrorIs(t, opt.Update(param, NewMatrix(1, 2)), ErrShapeMismatch)
}

func TestAdamFirstStep(t *testing.T) {
	opt := NewAdamOptimizer(AdamConfig{Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8, LearningRate: 0.1})
	param := Full(1, 2, 1)
	require.NoError(t, opt.Update(param, mustRows(t, [][]float64{{0.5, -2}})))
	assert.InDeltaSlice(t, []float64{0.9, 1.1}, param.Data(), 1e-6)
}

func TestOptimizerStatePerParameter(t *testing.T) {
	for _, optType := range []OptimizerType{OptMomentum, OptAdam} {
		t.Run(string(optType), func(t *testing.T) {
			opt, err := NewOptimizer(OptimizerConfig{Type: optType, LearningRate: 0.1})
			require.NoError(t, err)
			fresh, err := NewOptimizer(OptimizerConfig{Type: optType, LearningRate: 0.1})
			require.NoError(t, err)

			grad := Full(1, 1, 1)
			a, b, c := NewMatrix(1, 1), NewMatrix(1, 1), NewMatrix(1, 1)
			require.NoError(t, opt.Update(a, grad))
			require.NoError(t, opt.Update(a, grad))
			require.NoError(t, opt.Update(b, grad))
			require.NoError(t, fresh.Update(c, grad))

			assert.Equal(t, c.data[0], b.data[0], "b must not inherit a's state")
			assert.NotEqual(t, b.data[0], a.data[0])
		})
	}
}

// TestOptimizersMinimiseQuadratic runs each optimizer on f(w) = (w-3)^2.
func TestOptimizersMinimiseQuadratic(t *testing.T) {
	for _, optType := range []OptimizerType{OptSGD, OptMomentum, OptAdam} {
		t.Run(string(optType), func(t *testing.T) {
			opt, err := NewOptimizer(OptimizerConfig{Type: optType, LearningRate: 0.1})
			require.NoError(t, err)

			w := NewMatrix(1, 1)
			grad := NewMatrix(1, 1)
			for i := 0; i < 2000; i++ {
				grad.data[0] = 2 * (w.data[0] - 3)
				require.NoError(t, opt.Update(w, grad))
			}
			assert.InDelta(t, 3.0, w.data[0], 0.05)
		})
	}
}
