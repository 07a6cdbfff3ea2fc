package ml

import "github.com/pkg/errors"

// Sentinel errors. Every failure returned by this package wraps exactly one
// of them, so callers can branch with errors.Is.
var (
	// ErrShapeMismatch indicates operands whose dimensions violate the
	// operation's required relationship.
	ErrShapeMismatch = errors.New("ml: shape mismatch")

	// ErrOutOfRange indicates an element index outside the matrix bounds.
	ErrOutOfRange = errors.New("ml: index out of range")

	// ErrDivisionByZero indicates a scalar divisor within machine epsilon of zero.
	ErrDivisionByZero = errors.New("ml: division by zero")

	// ErrInvalidArgument indicates malformed construction arguments.
	ErrInvalidArgument = errors.New("ml: invalid argument")

	// ErrInvalidConfiguration indicates an unusable network, loss, activation
	// or optimizer setup.
	ErrInvalidConfiguration = errors.New("ml: invalid configuration")

	// ErrEmptyInput indicates a reduction over zero elements.
	ErrEmptyInput = errors.New("ml: empty input")

	// ErrInvalidState indicates Backward was called on a layer with no
	// cached Forward.
	ErrInvalidState = errors.New("ml: invalid state")
)

func shapeError(op string, a, b *Matrix) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: %dx%d vs %dx%d", op, a.rows, a.cols, b.rows, b.cols)
}
