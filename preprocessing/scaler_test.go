package preprocessing

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})

	scaler := NewStandardScalerDefault()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if math.Abs(scaler.Mean[0]-2.5) > 1e-12 {
		t.Errorf("Mean[0] = %v, want 2.5", scaler.Mean[0])
	}
	// population std of 1..4
	if want := math.Sqrt(1.25); math.Abs(scaler.Scale[0]-want) > 1e-12 {
		t.Errorf("Scale[0] = %v, want %v", scaler.Scale[0], want)
	}
	// constant column keeps unit scale
	if scaler.Scale[1] != 1 {
		t.Errorf("Scale[1] = %v, want 1", scaler.Scale[1])
	}

	col := mat.Col(nil, 0, out)
	sum := 0.0
	for _, v := range col {
		sum += v
	}
	if math.Abs(sum) > 1e-12 {
		t.Errorf("standardized column should have zero mean, got sum %v", sum)
	}
	for i := 0; i < 4; i++ {
		if out.At(i, 1) != 0 {
			t.Errorf("constant column should map to 0, got %v", out.At(i, 1))
		}
	}
}

func TestStandardScalerInverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, -5, 7, 0, 13, 5})
	scaler := NewStandardScalerDefault()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	back, err := scaler.InverseTransform(out)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(X, back, 1e-12) {
		t.Errorf("round trip mismatch:\n%v\n%v", mat.Formatted(X), mat.Formatted(back))
	}
}

func TestStandardScalerErrors(t *testing.T) {
	scaler := NewStandardScalerDefault()

	if _, err := scaler.Transform(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("expected NotFittedError before Fit")
	}
	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatal(err)
	}
	if _, err := scaler.Transform(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("expected DimensionError for wrong feature count")
	}
}

func TestStandardScalerGob(t *testing.T) {
	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 1, []float64{1, 3})); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(scaler); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded StandardScaler
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.IsFitted() || decoded.Mean[0] != 2 {
		t.Errorf("decoded scaler lost state: %+v", decoded)
	}
}
