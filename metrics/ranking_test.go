package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAveragePrecision(t *testing.T) {
	quiet(t)

	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		// 延滞順に並んだスコア: 1/1, 2/2, 3/4, 4/5, 5/6 の精度で再現率が増える
		{
			name:  "contracts",
			yTrue: vec(defaulted...),
			yPred: vec(scores...),
			want:  (1.0 + 1.0 + 3.0/4 + 4.0/5 + 5.0/6) / 5,
		},
		{name: "defaults ranked first", yTrue: vec(1, 1, 0, 0), yPred: vec(0.9, 0.8, 0.2, 0.1), want: 1},
		{name: "defaults ranked last", yTrue: vec(1, 1, 0, 0), yPred: vec(0.1, 0.2, 0.8, 0.9), want: (1.0/3 + 2.0/4) / 2},
		{name: "one default in the middle", yTrue: vec(0, 1, 0), yPred: vec(0.9, 0.5, 0.1), want: 0.5},
		{name: "all tied", yTrue: vec(1, 0, 0, 1), yPred: vec(0.5, 0.5, 0.5, 0.5), want: 0.5},
		// 同点の組は一つの閾値として扱う
		{name: "tie at the top", yTrue: vec(1, 0, 1), yPred: vec(0.7, 0.7, 0.2), want: 0.5*0.5 + 0.5*(2.0/3)},
		{name: "no defaults", yTrue: vec(0, 0), yPred: vec(0.3, 0.4), want: 0},
		{name: "label 0.5", yTrue: vec(0, 0.5), yPred: vec(0.3, 0.4), wantErr: true},
		{name: "length mismatch", yTrue: vec(0, 1), yPred: vec(0.3), wantErr: true},
		{name: "nil", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AveragePrecision(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AveragePrecision() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AveragePrecision() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkAveragePrecision(b *testing.B) {
	n := 5000
	y := make([]float64, n)
	p := make([]float64, n)
	for i := range y {
		if i%8 == 0 {
			y[i] = 1
		}
		p[i] = math.Mod(float64(i)*0.6180339887, 1)
	}
	yv, pv := vec(y...), vec(p...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = AveragePrecision(yv, pv)
	}
}
