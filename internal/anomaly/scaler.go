package anomaly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// standardScaler centers each feature column to zero mean and scales it to
// unit variance. Parameters are refit on every training window; a scaler is
// never reused across fits.
type standardScaler struct {
	means []float64
	stds  []float64
}

// fit computes per-column mean and population standard deviation over the
// training matrix. Columns with zero spread keep a unit scale so constant
// features map to zero rather than dividing by zero.
func (s *standardScaler) fit(matrix [][]float64) error {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return fmt.Errorf("empty training matrix")
	}

	cols := len(matrix[0])
	s.means = make([]float64, cols)
	s.stds = make([]float64, cols)

	column := make([]float64, len(matrix))
	for c := 0; c < cols; c++ {
		for r, row := range matrix {
			if len(row) != cols {
				return fmt.Errorf("ragged matrix: row %d has %d features, want %d", r, len(row), cols)
			}
			v := row[c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite value in feature column %d", c)
			}
			column[r] = v
		}

		mean := stat.Mean(column, nil)
		std := math.Sqrt(stat.MomentAbout(2, column, mean, nil))
		if std == 0 {
			std = 1
		}
		s.means[c] = mean
		s.stds[c] = std
	}
	return nil
}

// transform returns a scaled copy of the matrix using the fitted parameters.
func (s *standardScaler) transform(matrix [][]float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for r, row := range matrix {
		scaled := make([]float64, len(row))
		for c, v := range row {
			scaled[c] = (v - s.means[c]) / s.stds[c]
		}
		out[r] = scaled
	}
	return out
}
