package ml

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// machineEpsilon is the gap between 1.0 and the next representable float64.
const machineEpsilon = 0x1p-52

// Matrix represents a dense matrix with a flat data slice for performance.
// The gonum view shares the backing array, so kernels run on it in place.
// Zero-sized matrices carry no view because gonum rejects zero lengths.
type Matrix struct {
	rows, cols int
	data       []float64
	dense      *mat.Dense
}

// -------- CONSTRUCTORS ------- //

// NewMatrix returns a zero-filled rows x cols matrix. Negative sizes panic,
// like make does.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("ml: negative matrix size %dx%d", rows, cols))
	}
	return wrap(rows, cols, make([]float64, rows*cols))
}

// Full returns a rows x cols matrix with every element set to value.
func Full(rows, cols int, value float64) *Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.data {
		m.data[i] = value
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromRows builds a matrix from a rectangular nested literal. Rows of
// differing length are rejected with ErrShapeMismatch.
func FromRows(values [][]float64) (*Matrix, error) {
	if len(values) == 0 {
		return NewMatrix(0, 0), nil
	}
	rows, cols := len(values), len(values[0])
	data := make([]float64, 0, rows*cols)
	for i, row := range values {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "from rows: row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return wrap(rows, cols, data), nil
}

// FromSlice copies a flat row-major slice into a new rows x cols matrix.
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "from slice: size %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.Wrapf(ErrShapeMismatch, "from slice: %d values for %dx%d", len(data), rows, cols)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return wrap(rows, cols, buf), nil
}

// Random returns a matrix drawn uniformly from [lo, hi). A nil rng draws from
// the global source, which is not reproducible across runs.
func Random(rows, cols int, lo, hi float64, rng *rand.Rand) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "random: size %dx%d", rows, cols)
	}
	if lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil, errors.Wrapf(ErrInvalidArgument, "random: min %v > max %v", lo, hi)
	}
	m := NewMatrix(rows, cols)
	span := hi - lo
	for i := range m.data {
		m.data[i] = lo + span*uniform(rng)
	}
	return m, nil
}

func wrap(rows, cols int, data []float64) *Matrix {
	m := &Matrix{rows: rows, cols: cols, data: data}
	if rows > 0 && cols > 0 {
		m.dense = mat.NewDense(rows, cols, data)
	}
	return m
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

func normal(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.NormFloat64()
	}
	return rng.NormFloat64()
}

// ------- ACCESSORS ------ //

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) { return m.rows, m.cols }

// SameShape reports whether m and b have identical dimensions.
func (m *Matrix) SameShape(b *Matrix) bool {
	return m.rows == b.rows && m.cols == b.cols
}

func (m *Matrix) index(row, col int) (int, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return 0, errors.Wrapf(ErrOutOfRange, "(%d, %d) in %dx%d", row, col, m.rows, m.cols)
	}
	return row*m.cols + col, nil
}

// At returns the element at (row, col).
func (m *Matrix) At(row, col int) (float64, error) {
	i, err := m.index(row, col)
	if err != nil {
		return 0, err
	}
	return m.data[i], nil
}

// Set stores v at (row, col).
func (m *Matrix) Set(row, col int, v float64) error {
	i, err := m.index(row, col)
	if err != nil {
		return err
	}
	m.data[i] = v
	return nil
}

// Data returns a copy of the row-major storage.
func (m *Matrix) Data() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.rows {
		return nil, errors.Wrapf(ErrOutOfRange, "row %d of %d", i, m.rows)
	}
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out, nil
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return wrap(m.rows, m.cols, m.Data())
}

func (m *Matrix) Reset() {
	for i := range m.data {
		m.data[i] = 0.0
	}
}

// ------- ARITHMETIC ------ //

func (m *Matrix) Add(b *Matrix) (*Matrix, error) {
	if !m.SameShape(b) {
		return nil, shapeError("add", m, b)
	}
	out := NewMatrix(m.rows, m.cols)
	floats.AddTo(out.data, m.data, b.data)
	return out, nil
}

func (m *Matrix) Sub(b *Matrix) (*Matrix, error) {
	if !m.SameShape(b) {
		return nil, shapeError("sub", m, b)
	}
	out := NewMatrix(m.rows, m.cols)
	floats.SubTo(out.data, m.data, b.data)
	return out, nil
}

func (m *Matrix) AddInPlace(b *Matrix) error {
	if !m.SameShape(b) {
		return shapeError("add in place", m, b)
	}
	floats.Add(m.data, b.data)
	return nil
}

func (m *Matrix) SubInPlace(b *Matrix) error {
	if !m.SameShape(b) {
		return shapeError("sub in place", m, b)
	}
	floats.Sub(m.data, b.data)
	return nil
}

// Hadamard returns the elementwise product of m and b.
func (m *Matrix) Hadamard(b *Matrix) (*Matrix, error) {
	if !m.SameShape(b) {
		return nil, shapeError("hadamard", m, b)
	}
	out := NewMatrix(m.rows, m.cols)
	floats.MulTo(out.data, m.data, b.data)
	return out, nil
}

func (m *Matrix) Scale(s float64) *Matrix {
	out := NewMatrix(m.rows, m.cols)
	floats.ScaleTo(out.data, s, m.data)
	return out
}

func (m *Matrix) ScaleInPlace(s float64) {
	floats.Scale(s, m.data)
}

// Div divides every element by s. Divisors within machine epsilon of zero
// are rejected.
func (m *Matrix) Div(s float64) (*Matrix, error) {
	if math.Abs(s) < machineEpsilon {
		return nil, errors.Wrapf(ErrDivisionByZero, "div by %v", s)
	}
	out := NewMatrix(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i] = v / s
	}
	return out, nil
}

// Dot returns the matrix product m·b.
func (m *Matrix) Dot(b *Matrix) (*Matrix, error) {
	if m.cols != b.rows {
		return nil, shapeError("dot", m, b)
	}
	out := NewMatrix(m.rows, b.cols)
	if out.dense == nil || m.cols == 0 {
		return out, nil
	}
	out.dense.Mul(m.dense, b.dense)
	return out, nil
}

// T returns the transpose of m as a new matrix.
func (m *Matrix) T() *Matrix {
	out := NewMatrix(m.cols, m.rows)
	if out.dense != nil {
		out.dense.Copy(m.dense.T())
	}
	return out
}

// SumRows reduces over rows, returning a 1 x cols matrix of column sums.
func (m *Matrix) SumRows() *Matrix {
	out := NewMatrix(1, m.cols)
	for r := 0; r < m.rows; r++ {
		floats.Add(out.data, m.data[r*m.cols:(r+1)*m.cols])
	}
	return out
}

// AddRowVectorInPlace broadcast-adds the 1 x cols vector v to every row.
func (m *Matrix) AddRowVectorInPlace(v *Matrix) error {
	if v.rows != 1 || v.cols != m.cols {
		return errors.Wrapf(ErrShapeMismatch, "add row vector: want 1x%d, got %dx%d", m.cols, v.rows, v.cols)
	}
	for r := 0; r < m.rows; r++ {
		floats.Add(m.data[r*m.cols:(r+1)*m.cols], v.data)
	}
	return nil
}

// Apply returns a new matrix with fn applied to every element.
func (m *Matrix) Apply(fn func(float64) float64) *Matrix {
	out := NewMatrix(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i] = fn(v)
	}
	return out
}

// ------- COMPARISON ------ //

// Equal reports whether m and b have the same shape and identical elements.
func (m *Matrix) Equal(b *Matrix) bool {
	return m.SameShape(b) && floats.Equal(m.data, b.data)
}

// EqualApprox is Equal with an absolute or relative tolerance per element.
func (m *Matrix) EqualApprox(b *Matrix, tol float64) bool {
	return m.SameShape(b) && floats.EqualApprox(m.data, b.data, tol)
}

func (m *Matrix) String() string {
	if m.dense == nil {
		return fmt.Sprintf("[](%dx%d)", m.rows, m.cols)
	}
	return fmt.Sprintf("%v", mat.Formatted(m.dense, mat.Squeeze()))
}
