package ml

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// DefaultThreshold separates the two classes of a sigmoid output.
const DefaultThreshold = 0.5

// Threshold maps every element to 1 if it is >= cut, else 0.
func Threshold(pred *Matrix, cut float64) *Matrix {
	return pred.Apply(func(v float64) float64 {
		if v >= cut {
			return 1
		}
		return 0
	})
}

// BinaryAccuracy returns the fraction of elements whose thresholded
// prediction equals the target.
func BinaryAccuracy(pred, targets *Matrix, cut float64) (float64, error) {
	if !pred.SameShape(targets) {
		return 0, shapeError("binary accuracy", pred, targets)
	}
	if len(pred.data) == 0 {
		return 0, errors.Wrap(ErrEmptyInput, "binary accuracy")
	}
	classes := Threshold(pred, cut)
	correct := 0
	for i, c := range classes.data {
		if c == targets.data[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(classes.data)), nil
}

// ArgMaxRows returns, for each row, the column index of its largest value.
func ArgMaxRows(pred *Matrix) ([]int, error) {
	if pred.cols == 0 {
		return nil, errors.Wrapf(ErrEmptyInput, "argmax over %dx%d", pred.rows, pred.cols)
	}
	idx := make([]int, pred.rows)
	for r := range idx {
		idx[r] = floats.MaxIdx(pred.data[r*pred.cols : (r+1)*pred.cols])
	}
	return idx, nil
}
