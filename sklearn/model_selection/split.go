// Package model_selection provides the stratified train/test split.
package model_selection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// Split holds the two partitions and the original row indices of each.
type Split struct {
	XTrain       *mat.Dense
	XTest        *mat.Dense
	YTrain       *mat.VecDense
	YTest        *mat.VecDense
	TrainIndices []int
	TestIndices  []int
}

// TrainTestSplit partitions (X, y) stratified on y.
//
// Each class c contributes round(testFraction·n_c) rows to the test
// partition, clamped to [1, n_c-1], picked by a per-class shuffle from a
// PCG generator seeded with seed. Both partitions keep the original row
// order, so the result depends only on the inputs and seed.
//
// 使用例:
//
//	split, err := model_selection.TrainTestSplit(X, y, 0.3, 42)
func TrainTestSplit(X mat.Matrix, y mat.Vector, testFraction float64, seed uint64) (*Split, error) {
	n, cols := X.Dims()
	if n == 0 || cols == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, errors.NewValidationError("testFraction", "must be in (0, 1)", testFraction)
	}

	// 各クラスのインデックスをグループ化
	classIndices := make(map[float64][]int)
	for i := 0; i < n; i++ {
		label := y.AtVec(i)
		classIndices[label] = append(classIndices[label], i)
	}
	if len(classIndices) < 2 {
		return nil, errors.Wrap(errors.ErrSingleClass, "TrainTestSplit")
	}

	labels := make([]float64, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	r := rand.New(rand.NewPCG(seed, seed))
	inTest := make([]bool, n)
	for _, label := range labels {
		indices := classIndices[label]
		nc := len(indices)
		if nc < 2 {
			return nil, errors.NewValueError("TrainTestSplit",
				"every class needs at least 2 rows for a stratified split")
		}

		nTest := int(math.Round(testFraction * float64(nc)))
		nTest = max(1, min(nTest, nc-1))

		shuffled := append([]int(nil), indices...)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for _, idx := range shuffled[:nTest] {
			inTest[idx] = true
		}
	}

	var train, test []int
	for i := 0; i < n; i++ {
		if inTest[i] {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}

	s := &Split{TrainIndices: train, TestIndices: test}
	s.XTrain, s.YTrain = Subset(X, y, train)
	s.XTest, s.YTest = Subset(X, y, test)
	return s, nil
}

// Subset copies the given rows of X and y, in the given order.
func Subset(X mat.Matrix, y mat.Vector, indices []int) (*mat.Dense, *mat.VecDense) {
	_, cols := X.Dims()
	xs := mat.NewDense(len(indices), cols, nil)
	ys := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			xs.Set(i, j, X.At(idx, j))
		}
		ys.SetVec(i, y.AtVec(idx))
	}
	return xs, ys
}
