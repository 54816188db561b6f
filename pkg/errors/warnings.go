package errors

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Warnings are non-fatal conditions a run reports and continues past:
// an optimizer stopping at its iteration cap, a metric that is undefined
// on the evaluated partition, a decimal rounded on load.

var (
	warnMu sync.Mutex
	// stderrWarn is used until a logger is installed with SetZerologWarnFunc.
	stderrWarn = zerolog.New(os.Stderr).With().Timestamp().Str("component", "warnings").Logger()

	warningHandler = func(w error) {
		e := stderrWarn.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			e = e.Object("warning", m)
		}
		e.Msg(w.Error())
	}
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the fallback handler, e.g. to silence
// warnings in tests:
//
//	errors.SetWarningHandler(func(error) {})
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings to the run logger. pkg/log cannot be
// imported from here, so the logger hands in its hook instead. nil
// restores the fallback handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports w through the installed hook.
func Warn(w error) {
	warnMu.Lock()
	defer warnMu.Unlock()

	switch {
	case zerologWarnFunc != nil:
		zerologWarnFunc(w)
	case warningHandler != nil:
		warningHandler(w)
	}
}

// ConvergenceWarning は最適化が MaxIter に達しても収束しなかったことを示す
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message == "" {
		return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing MAX_ITER or scaling the data.", w.Algorithm, w.Iterations)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
}

func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "ConvergenceWarning").
		Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message)
}

func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// DataConversionWarning は読み込み時の型変換で値が丸められたことを示す
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "DataConversionWarning").
		Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason)
}

func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// UndefinedMetricWarning: the metric has no value on this partition (one
// class only, or no positive predictions) and Result is reported instead.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "UndefinedMetricWarning").
		Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result)
}

func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}
