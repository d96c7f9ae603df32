package features

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes feature columns to zero mean and unit
// variance. A constant column keeps std 1 so it passes through centered.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("scaler fit requires at least one row")
	}
	cols := len(rows[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	column := make([]float64, len(rows))
	for c := 0; c < cols; c++ {
		for r, row := range rows {
			column[r] = row[c]
		}
		s.Mean[c] = stat.Mean(column, nil)
		std := stat.StdDev(column, nil)
		if std == 0 || len(rows) < 2 {
			std = 1
		}
		s.Std[c] = std
	}
	return nil
}

// Transform standardizes rows in place-compatible copies.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for r, row := range rows {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[r] = scaled
	}
	return out, nil
}

// TransformRow standardizes a single row.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(row))
	}
	out := make([]float64, len(row))
	for c, v := range row {
		out[c] = (v - s.Mean[c]) / s.Std[c]
	}
	return out, nil
}

// FitTransform fits on rows and returns them standardized.
func (s *StandardScaler) FitTransform(rows [][]float64) ([][]float64, error) {
	if err := s.Fit(rows); err != nil {
		return nil, err
	}
	return s.Transform(rows)
}
