package ml

import "github.com/pkg/errors"

// ActivationLayer applies an elementwise nonlinearity. It has no learnable
// state; it caches the last input and output for Backward.
type ActivationLayer struct {
	act ActivationType

	// Forward State
	lastInput  *Matrix
	lastOutput *Matrix
}

func NewActivationLayer(act ActivationType) *ActivationLayer {
	return &ActivationLayer{act: act}
}

func (l *ActivationLayer) Type() ActivationType { return l.act }

func (l *ActivationLayer) Forward(input *Matrix) (*Matrix, error) {
	fn, err := activationFunc(l.act)
	if err != nil {
		return nil, err
	}
	out := input.Apply(fn)
	l.lastInput = input.Clone()
	l.lastOutput = out.Clone()
	return out, nil
}

// Backward returns gradOutput ⊙ f'(x) for the cached forward call.
func (l *ActivationLayer) Backward(gradOutput *Matrix) (*Matrix, error) {
	if l.lastInput == nil {
		return nil, errors.Wrapf(ErrInvalidState, "%v activation backward before forward", l.act)
	}
	if !gradOutput.SameShape(l.lastOutput) {
		return nil, shapeError(l.act.String()+" activation backward", gradOutput, l.lastOutput)
	}
	deriv, err := activationDerivative(l.lastInput, l.lastOutput, l.act)
	if err != nil {
		return nil, err
	}
	return gradOutput.Hadamard(deriv)
}

// UpdateParams is a no-op; activations have nothing to learn.
func (l *ActivationLayer) UpdateParams(Optimizer) error { return nil }
