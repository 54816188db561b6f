package model

import "github.com/YuminosukeSato/creditdefault/pkg/errors"

// EstimatorState は Fit の前後を区別する
type EstimatorState int

const (
	NotFitted EstimatorState = iota
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not fitted"
}

// BaseEstimator is embedded by every fitted step of the pipeline. State is
// exported so it survives a gob round trip with the rest of the model.
type BaseEstimator struct {
	State EstimatorState
}

func (e *BaseEstimator) IsFitted() bool { return e.State == Fitted }

func (e *BaseEstimator) SetFitted() { e.State = Fitted }

// Reset は Fit をやり直す前に呼ぶ
func (e *BaseEstimator) Reset() { e.State = NotFitted }

// RequireFitted returns a NotFittedError naming model and method unless
// the estimator has been fitted.
//
// 使用例:
//
//	if err := lr.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
//	    return nil, err
//	}
func (e *BaseEstimator) RequireFitted(model, method string) error {
	if e.State != Fitted {
		return errors.NewNotFittedError(model, method)
	}
	return nil
}
