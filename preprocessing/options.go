package preprocessing

import (
	"math"
	"time"
)

// Default column names of the contracts table.
const (
	DefaultTargetColumn = "INADIMPLENTE_COBRANCA"
	DefaultIDColumn     = "NUMERO_CONTRATO"
	DefaultUnknownToken = "DESCONHECIDO"
)

// Target vocabulary after trimming and upper-casing.
const (
	TargetPositive = "SIM"
	TargetNegative = "NAO"
)

// Bucketing derives a categorical column from a numeric one. Bounds are
// ascending lower edges of half-open intervals [Bounds[i], Bounds[i+1]);
// the last interval is unbounded above. Labels has one entry per bound.
type Bucketing struct {
	Source string
	Target string
	Bounds []float64
	Labels []string
}

// DefaultBuckets bands the financed amount at 0, 5000, 10000, 20000, 50000.
func DefaultBuckets() []Bucketing {
	return []Bucketing{{
		Source: "VALOR_FINANCIADO",
		Target: "FAIXA_VALOR_FINANCIADO",
		Bounds: []float64{0, 5000, 10000, 20000, 50000},
		Labels: []string{"ATE_5K", "5K_10K", "10K_20K", "20K_50K", "ACIMA_50K"},
	}}
}

// Assign returns the label of the interval containing v. ok is false for
// NaN or values below the first bound.
func (b Bucketing) Assign(v float64) (label string, ok bool) {
	if math.IsNaN(v) || len(b.Bounds) == 0 || v < b.Bounds[0] {
		return "", false
	}
	i := len(b.Bounds) - 1
	for i > 0 && v < b.Bounds[i] {
		i--
	}
	return b.Labels[i], true
}

// Options configures a Preprocessor.
type Options struct {
	TargetColumn string
	IDColumns    []string
	Buckets      []Bucketing
	// ObservationTime is the reference instant for date columns. It must be
	// set; the preprocessor never reads the clock.
	ObservationTime time.Time
	UnknownToken    string
}

// DefaultOptions returns the contracts-table defaults observed at obs.
func DefaultOptions(obs time.Time) Options {
	return Options{
		TargetColumn:    DefaultTargetColumn,
		IDColumns:       []string{DefaultIDColumn},
		Buckets:         DefaultBuckets(),
		ObservationTime: obs,
		UnknownToken:    DefaultUnknownToken,
	}
}
