// Package imbalance implements SMOTE oversampling for binary targets.
package imbalance

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/core/parallel"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// SMOTE synthesizes minority-class rows by interpolating between a
// minority row and one of its KNeighbors nearest minority neighbours.
type SMOTE struct {
	// KNeighbors is capped at minority size - 1.
	KNeighbors int
	Seed       uint64
}

// NewSMOTE は新しいSMOTEを作成する
func NewSMOTE(kNeighbors int, seed uint64) *SMOTE {
	return &SMOTE{KNeighbors: kNeighbors, Seed: seed}
}

// FitResample returns X and y with synthetic minority rows appended until
// both classes have the same count. The original rows come first,
// unchanged and in order. Inputs are not modified.
//
// 使用例:
//
//	XRes, yRes, err := imbalance.NewSMOTE(5, 42).FitResample(XTrain, yTrain)
func (s *SMOTE) FitResample(X mat.Matrix, y mat.Vector) (*mat.Dense, *mat.VecDense, error) {
	n, cols := X.Dims()
	if n == 0 || cols == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "SMOTE.FitResample")
	}
	if y.Len() != n {
		return nil, nil, errors.NewDimensionError("SMOTE.FitResample", n, y.Len(), 0)
	}
	if s.KNeighbors < 1 {
		return nil, nil, errors.NewValidationError("KNeighbors", "must be at least 1", s.KNeighbors)
	}

	var pos, neg []int
	for i := 0; i < n; i++ {
		switch y.AtVec(i) {
		case 1:
			pos = append(pos, i)
		case 0:
			neg = append(neg, i)
		default:
			return nil, nil, errors.NewValueError("SMOTE.FitResample", "labels must be 0 or 1")
		}
	}
	if len(pos) == 0 || len(neg) == 0 {
		return nil, nil, errors.Wrap(errors.ErrSingleClass, "SMOTE.FitResample")
	}

	minority, label, need := pos, 1.0, len(neg)-len(pos)
	if len(neg) < len(pos) {
		minority, label, need = neg, 0.0, len(pos)-len(neg)
	}

	XRes := mat.NewDense(n+need, cols, nil)
	XRes.Slice(0, n, 0, cols).(*mat.Dense).Copy(X)
	yRes := mat.NewVecDense(n+need, nil)
	for i := 0; i < n; i++ {
		yRes.SetVec(i, y.AtVec(i))
	}
	if need == 0 {
		return XRes, yRes, nil
	}
	if len(minority) < 2 {
		return nil, nil, errors.NewValueError("SMOTE.FitResample",
			"minority class needs at least 2 rows to interpolate")
	}

	points := make([][]float64, len(minority))
	for i, idx := range minority {
		points[i] = mat.Row(nil, idx, X)
	}
	k := min(s.KNeighbors, len(points)-1)
	neighbours := nearestNeighbours(points, k)

	r := rand.New(rand.NewPCG(s.Seed, s.Seed))
	synthetic := make([]float64, cols)
	for j := 0; j < need; j++ {
		i := r.IntN(len(points))
		nn := neighbours[i][r.IntN(k)]
		gap := r.Float64()

		// x + gap·(nn − x)
		floats.SubTo(synthetic, points[nn], points[i])
		floats.Scale(gap, synthetic)
		floats.Add(synthetic, points[i])

		XRes.SetRow(n+j, synthetic)
		yRes.SetVec(n+j, label)
	}

	if err := errors.CheckMatrix("SMOTE.FitResample", XRes, n+need, cols, 0); err != nil {
		return nil, nil, err
	}
	return XRes, yRes, nil
}

// nearestNeighbours returns, for every point, the indices of its k nearest
// other points by Euclidean distance. Ties go to the lower index.
func nearestNeighbours(points [][]float64, k int) [][]int {
	out := make([][]int, len(points))
	parallel.ParallelizeWithThreshold(len(points), parallel.DefaultThreshold, func(start, end int) {
		order := make([]int, 0, len(points)-1)
		dist := make([]float64, len(points))
		for i := start; i < end; i++ {
			order = order[:0]
			for j := range points {
				if j == i {
					continue
				}
				dist[j] = floats.Distance(points[i], points[j], 2)
				order = append(order, j)
			}
			sort.SliceStable(order, func(a, b int) bool {
				return dist[order[a]] < dist[order[b]]
			})
			out[i] = append([]int(nil), order[:k]...)
		}
	})
	return out
}
