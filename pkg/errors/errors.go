// Package errors は creditdefault 全体で使うエラー型と警告の仕組みを提供する。
//
// スタックトレースは github.com/cockroachdb/errors で付与される。
// エラーは検出した段階でログに出し、そのまま呼び出し元へ返す。リトライや
// 部分的な結果の返却はしない。
//
// 型で判定する:
//
//	var tErr *errors.TargetValueError
//	if errors.As(err, &tErr) {
//	    // tErr.Row, tErr.Value
//	}
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyData: a stage received zero rows or zero columns.
	ErrEmptyData = New("empty data")

	// ErrSingleClass: the label vector holds only one class.
	ErrSingleClass = New("target has a single class")
)

// NotFittedError は Fit 前に推論系メソッドが呼ばれたときのエラー
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("creditdefault: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "NotFittedError").
		Str("model_name", e.ModelName).
		Str("method", e.Method)
}

func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError reports a row (Axis 0) or feature (Axis 1) count that
// does not match what the fitted step expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("creditdefault: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "DimensionError").
		Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName())
}

func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は設定値や引数が許容範囲外のときのエラー
// ParamName は環境変数名またはオプション名
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("creditdefault: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "ValidationError").
		Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value)
}

func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError: the data itself is unusable, e.g. an all-missing column.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("creditdefault: %s: %s", e.Op, e.Message)
}

func (e *ValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "ValueError").
		Str("operation", e.Op).
		Str("message", e.Message)
}

func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は学習・推論中の失敗（最適化の異常終了など）を表す
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("creditdefault: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("creditdefault: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError carries up to a handful of the NaN or ±Inf
// values found, and the optimizer iteration (0 outside a loop).
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	shown := make([]string, 0, 6)
	for i, v := range e.Values {
		if i == 5 {
			shown = append(shown, "...")
			break
		}
		shown = append(shown, fmt.Sprintf("%.6g", v))
	}
	return fmt.Sprintf("creditdefault: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, strings.Join(shown, ", "))
}

func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Iteration: iteration})
}

// Thin re-exports so callers import a single errors package.

func Is(err, target error) bool { return errors.Is(err, target) }
func As(err error, target interface{}) bool { return errors.As(err, target) }
func Wrap(err error, message string) error { return errors.Wrap(err, message) }
func Wrapf(err error, format string, args ...interface{}) error { return errors.Wrapf(err, format, args...) }
func New(message string) error { return errors.New(message) }
func Newf(format string, args ...interface{}) error { return errors.Newf(format, args...) }
func WithStack(err error) error { return errors.WithStack(err) }
