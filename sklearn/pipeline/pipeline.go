// Package pipeline chains feature standardization and logistic regression
// into the single fitted model that is evaluated and persisted.
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/core/model"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/preprocessing"
	"github.com/YuminosukeSato/creditdefault/sklearn/linear_model"
)

// Pipeline is StandardScaler followed by LogisticRegression. Both steps
// are exported so the fitted pipeline gob-encodes as a whole.
type Pipeline struct {
	Scaler     *preprocessing.StandardScaler
	Classifier *linear_model.LogisticRegression
}

var _ model.BinaryClassifier = (*Pipeline)(nil)

// New returns an unfitted pipeline around clf.
func New(clf *linear_model.LogisticRegression) *Pipeline {
	return &Pipeline{
		Scaler:     preprocessing.NewStandardScalerDefault(),
		Classifier: clf,
	}
}

// Fit standardizes X with statistics learned from X itself and fits the
// classifier on the result.
func (p *Pipeline) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Pipeline.Fit")

	if p.Scaler == nil || p.Classifier == nil {
		return errors.NewValueError("Pipeline.Fit", "scaler and classifier must be set")
	}
	Xs, err := p.Scaler.FitTransform(X)
	if err != nil {
		return err
	}
	return p.Classifier.Fit(Xs, y)
}

// IsFitted reports whether both steps are fitted.
func (p *Pipeline) IsFitted() bool {
	return p.Scaler != nil && p.Classifier != nil && p.Scaler.IsFitted() && p.Classifier.IsFitted()
}

// PositiveProba returns P(y=1) per row.
func (p *Pipeline) PositiveProba(X mat.Matrix) (*mat.VecDense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "PositiveProba")
	}
	Xs, err := p.Scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Classifier.PositiveProba(Xs)
}

// PredictProba returns the n×2 class probability matrix.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "PredictProba")
	}
	Xs, err := p.Scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Classifier.PredictProba(Xs)
}

// PredictWithThreshold labels a row 1 iff its positive probability is at
// least threshold.
func (p *Pipeline) PredictWithThreshold(X mat.Matrix, threshold float64) (*mat.VecDense, error) {
	if threshold < 0 || threshold > 1 {
		return nil, errors.NewValidationError("threshold", "must be in [0, 1]", threshold)
	}
	proba, err := p.PositiveProba(X)
	if err != nil {
		return nil, err
	}
	return Threshold(proba, threshold), nil
}

// Threshold maps probabilities to labels: 1 iff p >= threshold.
func Threshold(proba mat.Vector, threshold float64) *mat.VecDense {
	labels := mat.NewVecDense(proba.Len(), nil)
	for i := 0; i < proba.Len(); i++ {
		if proba.AtVec(i) >= threshold {
			labels.SetVec(i, 1)
		}
	}
	return labels
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(steps=[%v, %v])", p.Scaler, p.Classifier)
}
