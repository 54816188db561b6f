// Package model provides the estimator state, the interfaces shared by the
// pipeline stages and gob persistence for fitted models.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// BinaryClassifier is a fitted-or-fittable model mapping feature rows to
// the probability of the positive class.
type BinaryClassifier interface {
	Fitter

	// PredictProba returns an n×2 matrix of class probabilities
	// (column 0 negative, column 1 positive).
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// PositiveProba returns the positive-class column of PredictProba.
	PositiveProba(X mat.Matrix) (*mat.VecDense, error)
}
