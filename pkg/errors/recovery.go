package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
)

// PanicError is a panic recovered at a stage boundary. gonum's mat package
// panics on shape mismatches, so every stage that multiplies matrices
// recovers into one of these.
type PanicError struct {
	Operation  string
	PanicValue interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the goroutine stack captured at recovery.
func (e *PanicError) String() string {
	return e.Error() + "\nStack trace:\n" + e.StackTrace
}

// NewPanicError captures the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		Operation:  operation,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
	}
}

// Recover turns a panic into *err. Use it deferred with a named result:
//
//	func (t *Trainer) Train(X mat.Matrix, y mat.Vector) (res *Result, err error) {
//	    defer errors.Recover(&err, "Trainer.Train")
//	    ...
//	}
//
// An error already set when the panic hit stays the primary cause; the
// PanicError is attached as secondary so neither is lost.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	panicErr := NewPanicError(operation, r)
	if *err == nil {
		*err = panicErr
		return
	}
	*err = errors.WithSecondaryError(errors.Wrapf(*err, "panic in %s: %v", operation, r), panicErr)
}
