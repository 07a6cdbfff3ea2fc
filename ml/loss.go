package ml

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

const (
	LossMSE LossType = iota
	LossBinaryCrossEntropy
)

// bceEpsilon keeps the logarithms in BinaryCrossEntropy finite.
const bceEpsilon = 1e-12

var lossMap = map[string]LossType{
	"mse":                  LossMSE,
	"bce":                  LossBinaryCrossEntropy,
	"binary_crossentropy":  LossBinaryCrossEntropy,
	"binary_cross_entropy": LossBinaryCrossEntropy,
}

type LossType int

// ParseLoss maps "mse", "bce" or "binary_crossentropy" to a LossType.
func ParseLoss(name string) (LossType, error) {
	lt, ok := lossMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown loss %q", name)
	}
	return lt, nil
}

func (l LossType) String() string {
	switch l {
	case LossMSE:
		return "mse"
	case LossBinaryCrossEntropy:
		return "binary_crossentropy"
	default:
		return fmt.Sprintf("LossType(%d)", int(l))
	}
}

func checkLossOperands(predictions, targets *Matrix) (float64, error) {
	if !predictions.SameShape(targets) {
		return 0, shapeError("loss", predictions, targets)
	}
	n := predictions.rows * predictions.cols
	if n == 0 {
		return 0, errors.Wrapf(ErrEmptyInput, "loss over %dx%d", predictions.rows, predictions.cols)
	}
	return float64(n), nil
}

func clampProb(p float64) float64 {
	return math.Min(math.Max(p, bceEpsilon), 1.0-bceEpsilon)
}

// LossValue returns the mean loss over every element of predictions.
func LossValue(lossType LossType, predictions, targets *Matrix) (float64, error) {
	n, err := checkLossOperands(predictions, targets)
	if err != nil {
		return 0, err
	}

	var sum float64
	switch lossType {
	case LossMSE:
		for i, p := range predictions.data {
			diff := p - targets.data[i]
			sum += diff * diff
		}

	case LossBinaryCrossEntropy:
		for i, raw := range predictions.data {
			y := targets.data[i]
			p := clampProb(raw)
			sum += -(y*math.Log(p) + (1.0-y)*math.Log(1.0-p))
		}

	default:
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unsupported loss %v", lossType)
	}
	return sum / n, nil
}

// LossGradient returns dLoss/dPredictions. The 1/n mean factor covers every
// element, batch and feature dimensions alike.
func LossGradient(lossType LossType, predictions, targets *Matrix) (*Matrix, error) {
	n, err := checkLossOperands(predictions, targets)
	if err != nil {
		return nil, err
	}

	grad := NewMatrix(predictions.rows, predictions.cols)
	switch lossType {
	case LossMSE:
		for i, p := range predictions.data {
			grad.data[i] = 2.0 * (p - targets.data[i]) / n
		}

	case LossBinaryCrossEntropy:
		for i, raw := range predictions.data {
			y := targets.data[i]
			p := clampProb(raw)
			grad.data[i] = (p - y) / ((p * (1.0 - p)) * n)
		}

	default:
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unsupported loss %v", lossType)
	}
	return grad, nil
}
