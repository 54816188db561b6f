package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/creditdefault/core/model"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// minScale below which a column counts as constant and is left unscaled.
const minScale = 1e-8

// StandardScaler centers every feature column on its training mean and
// divides by its population standard deviation. It is fitted on the
// (possibly rebalanced) training partition only.
//
// Fields are exported for gob.
type StandardScaler struct {
	model.BaseEstimator

	Mean      []float64
	Scale     []float64 // 1 for constant columns
	NFeatures int

	WithMean bool
	WithStd  bool
}

var _ model.Transformer = (*StandardScaler)(nil)

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(XTrain)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// NewStandardScalerDefault centers and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns per-column mean and scale from X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	s.Reset()

	mean := make([]float64, cols)
	scale := make([]float64, cols)
	buf := make([]float64, rows)
	for j := range cols {
		m, sd := stat.PopMeanStdDev(mat.Col(buf, j, X), nil)
		if s.WithMean {
			mean[j] = m
		}
		scale[j] = 1
		if s.WithStd && sd > minScale {
			scale[j] = sd
		}
	}
	if err := errors.CheckNumericalStability("StandardScaler.Fit", mean, 0); err != nil {
		return err
	}
	if err := errors.CheckNumericalStability("StandardScaler.Fit", scale, 0); err != nil {
		return err
	}

	s.Mean, s.Scale, s.NFeatures = mean, scale, cols
	s.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics. X is not modified.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply("Transform", X, func(j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	})
}

// FitTransform fits on X and standardizes it.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized rows back to the original units.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply("InverseTransform", X, func(j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	})
}

func (s *StandardScaler) apply(method string, X mat.Matrix, fn func(j int, v float64) float64) (mat.Matrix, error) {
	if err := s.RequireFitted("StandardScaler", method); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler."+method, s.NFeatures, cols, 1)
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, j int, v float64) float64 { return fn(j, v) }, X)
	return out, nil
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.WithMean, s.WithStd, s.NFeatures)
}
