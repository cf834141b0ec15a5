package cluster

import "math"

// Scaler standardizes features to zero mean and unit variance. Constant
// features keep a divisor of 1 so they transform to zero instead of NaN.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Fit computes the per-feature mean and population standard deviation.
func (s *Scaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	r, c := len(X), len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			s.Mean[j] += X[i][j]
		}
		s.Mean[j] /= float64(r)
		v := 0.0
		for i := 0; i < r; i++ {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}
		v /= float64(r)
		s.Std[j] = math.Sqrt(v)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
}

// Transform maps rows into z-score space using the fitted parameters.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	if s.Mean == nil {
		return X
	}
	Y := make([][]float64, len(X))
	for i := range X {
		row := make([]float64, len(X[i]))
		for j := range X[i] {
			row[j] = (X[i][j] - s.Mean[j]) / s.Std[j]
		}
		Y[i] = row
	}
	return Y
}

// FitTransform fits the scaler on X and transforms the same matrix.
func (s *Scaler) FitTransform(X [][]float64) [][]float64 {
	s.Fit(X)
	return s.Transform(X)
}
