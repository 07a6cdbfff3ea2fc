package ml

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

const (
	ActLinear ActivationType = iota
	ActRelu
	ActSigmoid
	ActTanh
)

var activationMap = map[string]ActivationType{
	"linear":  ActLinear,
	"relu":    ActRelu,
	"sigmoid": ActSigmoid,
	"tanh":    ActTanh,
}

// -------- TYPE DEFINITIONS -------- //
type ActivationType int

// Layer is one stage of a Network.
//
// Backward consumes the caches written by the most recent Forward on the same
// instance and returns the gradient with respect to that Forward's input. It
// also stores the layer's own parameter gradients, which UpdateParams later
// hands to the optimizer. Layers are not safe for concurrent use.
type Layer interface {
	Forward(input *Matrix) (*Matrix, error)
	Backward(gradOutput *Matrix) (*Matrix, error)
	UpdateParams(opt Optimizer) error
}

// ParseActivation maps a case-insensitive name to its ActivationType.
func ParseActivation(name string) (ActivationType, error) {
	act, ok := activationMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown activation %q", name)
	}
	return act, nil
}

func (a ActivationType) String() string {
	switch a {
	case ActLinear:
		return "linear"
	case ActRelu:
		return "relu"
	case ActSigmoid:
		return "sigmoid"
	case ActTanh:
		return "tanh"
	default:
		return fmt.Sprintf("ActivationType(%d)", int(a))
	}
}

// ------- SCALAR FUNCTIONS ------- //

func Relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReluDerivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func identity(x float64) float64 { return x }

// activationFunc returns the elementwise forward function for act.
func activationFunc(act ActivationType) (func(float64) float64, error) {
	switch act {
	case ActRelu:
		return Relu, nil
	case ActSigmoid:
		return Sigmoid, nil
	case ActTanh:
		return math.Tanh, nil
	case ActLinear:
		return identity, nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unsupported activation %v", act)
	}
}

// activationDerivative evaluates f' elementwise. ReLU reads the cached input,
// Sigmoid and Tanh are expressed through the cached output.
func activationDerivative(input, output *Matrix, act ActivationType) (*Matrix, error) {
	if !input.SameShape(output) {
		return nil, shapeError("activation derivative", input, output)
	}
	d := NewMatrix(input.rows, input.cols)
	switch act {
	case ActRelu:
		for i, x := range input.data {
			d.data[i] = ReluDerivative(x)
		}
	case ActSigmoid:
		for i, y := range output.data {
			d.data[i] = y * (1.0 - y)
		}
	case ActTanh:
		for i, y := range output.data {
			d.data[i] = 1.0 - y*y
		}
	case ActLinear:
		for i := range d.data {
			d.data[i] = 1.0
		}
	default:
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unsupported activation %v", act)
	}
	return d, nil
}
