// Package data builds small numeric datasets for the demo driver.
package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrMalformed reports a dataset that cannot be split into features and targets.
var ErrMalformed = errors.New("data: malformed dataset")

// XOR returns the four 2-bit input combinations and their XOR targets.
func XOR() (x, y [][]float64) {
	x = [][]float64{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
	}
	y = [][]float64{{0}, {1}, {1}, {0}}
	return x, y
}

// LoadCSV reads a numeric CSV file. The last targetCols columns of each
// record become the targets. A leading row that does not parse as numbers is
// treated as a header and skipped.
func LoadCSV(path string, targetCols int) (x, y [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()
	return ReadCSV(f, targetCols)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, targetCols int) (x, y [][]float64, err error) {
	if targetCols < 1 {
		return nil, nil, errors.Wrapf(ErrMalformed, "target columns %d", targetCols)
	}
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read CSV")
	}
	if len(records) > 0 && !isNumeric(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, nil, errors.Wrap(ErrMalformed, "CSV file is empty or header only")
	}

	width := len(records[0])
	if targetCols >= width {
		return nil, nil, errors.Wrapf(ErrMalformed, "%d target columns leave no features in %d columns", targetCols, width)
	}
	split := width - targetCols
	for i, record := range records {
		if len(record) != width {
			return nil, nil, errors.Wrapf(ErrMalformed, "row %d has %d fields, want %d", i+1, len(record), width)
		}
		values := make([]float64, width)
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "invalid value at row %d, column %d", i+1, j+1)
			}
			values[j] = v
		}
		x = append(x, values[:split:split])
		y = append(y, values[split:])
	}
	return x, y, nil
}

func isNumeric(record []string) bool {
	for _, field := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return false
		}
	}
	return true
}

// MinMaxNormalize rescales every column of rows to [0, 1] in place. Constant
// columns become 0.
func MinMaxNormalize(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	col := make([]float64, len(rows))
	for j := range rows[0] {
		for i, row := range rows {
			col[i] = row[j]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		for _, row := range rows {
			if span == 0 {
				row[j] = 0
				continue
			}
			row[j] = (row[j] - lo) / span
		}
	}
}
