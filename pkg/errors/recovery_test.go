package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRecover(t *testing.T) {
	t.Run("panic becomes PanicError", func(t *testing.T) {
		train := func() (err error) {
			defer Recover(&err, "Trainer.Train")
			panic("stratified split exploded")
		}

		err := train()
		var panicErr *PanicError
		if !errors.As(err, &panicErr) {
			t.Fatalf("expected PanicError, got %T (%v)", err, err)
		}
		if panicErr.Operation != "Trainer.Train" {
			t.Errorf("Operation = %q", panicErr.Operation)
		}
		if panicErr.StackTrace == "" || !strings.Contains(panicErr.String(), "Stack trace:") {
			t.Error("expected captured stack trace")
		}
		if want := "panic in Trainer.Train: stratified split exploded"; panicErr.Error() != want {
			t.Errorf("Error() = %q, want %q", panicErr.Error(), want)
		}
	})

	t.Run("no panic leaves result alone", func(t *testing.T) {
		sentinel := fmt.Errorf("split failed")
		fit := func() (err error) {
			defer Recover(&err, "Pipeline.Fit")
			return sentinel
		}
		if err := fit(); err != sentinel {
			t.Fatalf("got %v, want the returned error unchanged", err)
		}
	})

	t.Run("existing error stays primary", func(t *testing.T) {
		original := fmt.Errorf("log loss diverged")
		evaluate := func() (err error) {
			defer Recover(&err, "Evaluate")
			err = original
			panic("report rendering")
		}

		err := evaluate()
		if !strings.Contains(err.Error(), "panic in Evaluate") {
			t.Errorf("message should mention the panic: %s", err)
		}
		if !errors.Is(err, original) {
			t.Error("original error must stay reachable through errors.Is")
		}
	})

	t.Run("gonum shape mismatch", func(t *testing.T) {
		score := func() (err error) {
			defer Recover(&err, "LogisticRegression.DecisionFunction")
			var c mat.Dense
			c.Mul(mat.NewDense(2, 3, nil), mat.NewDense(2, 3, nil))
			return nil
		}
		var panicErr *PanicError
		if err := score(); !errors.As(err, &panicErr) {
			t.Fatalf("expected PanicError, got %T (%v)", err, err)
		}
	})
}

func TestNumericalChecks(t *testing.T) {
	inf := 1 / zero()

	if err := CheckNumericalStability("StandardScaler.Fit", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("finite values: %v", err)
	}
	err := CheckNumericalStability("LogisticRegression.Fit", []float64{0.3, nan(), inf}, 17)
	var ni *NumericalInstabilityError
	if !As(err, &ni) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if ni.Iteration != 17 || len(ni.Values) != 2 {
		t.Errorf("unexpected details: %+v", ni)
	}

	if err := CheckScalar("log_loss", inf, 0); err == nil {
		t.Error("expected error for +Inf loss")
	}
	if err := CheckScalar("log_loss", 0.42, 0); err != nil {
		t.Errorf("finite loss: %v", err)
	}

	tests := []struct{ v, want float64 }{
		{-0.5, 1e-15},
		{0.3, 0.3},
		{1.2, 1 - 1e-15},
	}
	for _, tt := range tests {
		if got := ClipValue(tt.v, 1e-15, 1-1e-15); got != tt.want {
			t.Errorf("ClipValue(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func zero() float64 { return 0 }
