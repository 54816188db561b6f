package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

func sample(t *testing.T) *Frame {
	t.Helper()
	f, err := New(
		NewNumeric("RENDA", []float64{1000, math.NaN(), 3000}, nil),
		NewCategorical("UF", []string{"SP", "RJ", "SP"}, nil),
		NewDate("DATA_ASSINATURA", []time.Time{
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			{},
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}, nil),
	)
	require.NoError(t, err)
	return f
}

func TestNewValidatesShape(t *testing.T) {
	_, err := New(
		NewNumeric("a", []float64{1, 2}, nil),
		NewNumeric("b", []float64{1}, nil),
	)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = New(
		NewNumeric("a", []float64{1}, nil),
		NewCategorical("a", []string{"x"}, nil),
	)
	assert.Error(t, err)

	_, err = New(&Column{Name: "bad", Kind: Numeric, Floats: []float64{1, 2}, Valid: []bool{true}})
	assert.Error(t, err)
}

func TestFrameAccessors(t *testing.T) {
	f := sample(t)

	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, 3, f.NumCols())
	assert.Equal(t, []string{"RENDA", "UF", "DATA_ASSINATURA"}, f.Names())

	renda, ok := f.Column("RENDA")
	require.True(t, ok)
	assert.True(t, renda.IsMissing(1))
	assert.Equal(t, 1, renda.MissingCount())

	date, _ := f.Column("DATA_ASSINATURA")
	assert.True(t, date.IsMissing(1))

	_, ok = f.Column("NOPE")
	assert.False(t, ok)
}

func TestMustHave(t *testing.T) {
	f := sample(t)
	require.NoError(t, f.MustHave("test", "RENDA", "UF"))

	err := f.MustHave("target extraction", "RENDA", "INADIMPLENTE_COBRANCA")
	var colErr *errors.ColumnNotFoundError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "INADIMPLENTE_COBRANCA", colErr.Column)
	assert.Equal(t, "target extraction", colErr.Step)
}

func TestDropReplaceAdd(t *testing.T) {
	f := sample(t)

	f.Drop("UF", "UNKNOWN")
	assert.Equal(t, []string{"RENDA", "DATA_ASSINATURA"}, f.Names())

	days := NewNumeric("DATA_ASSINATURA", []float64{10, 0, 20}, []bool{true, false, true})
	require.NoError(t, f.Replace("DATA_ASSINATURA", days))
	col, _ := f.Column("DATA_ASSINATURA")
	assert.Equal(t, Numeric, col.Kind)

	require.NoError(t, f.Add(NewCategorical("FAIXA", []string{"a", "b", "c"}, nil)))
	assert.Equal(t, []string{"RENDA", "DATA_ASSINATURA", "FAIXA"}, f.Names())

	assert.Error(t, f.Add(NewCategorical("SHORT", []string{"a"}, nil)))
	assert.Error(t, f.Replace("MISSING", days))
}

func TestDistinctCountsMissingAsValue(t *testing.T) {
	tests := []struct {
		name string
		col  *Column
		want int
	}{
		{"constant numeric", NewNumeric("a", []float64{1, 1, 1}, nil), 1},
		{"constant with missing", NewNumeric("a", []float64{1, math.NaN(), 1}, nil), 2},
		{"all missing", NewNumeric("a", []float64{math.NaN(), math.NaN()}, nil), 1},
		{"negative zero folds", NewNumeric("a", []float64{0, math.Copysign(0, -1)}, nil), 1},
		{"categorical", NewCategorical("b", []string{"x", "y", "x"}, nil), 2},
		{"categorical missing", NewCategorical("b", []string{"x", ""}, []bool{true, false}), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.col.Distinct())
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	f := sample(t)
	c := f.Clone()

	col, _ := c.Column("RENDA")
	col.Floats[0] = -1
	col.Valid[1] = true
	c.Drop("UF")

	orig, _ := f.Column("RENDA")
	assert.Equal(t, 1000.0, orig.Floats[0])
	assert.True(t, orig.IsMissing(1))
	assert.Equal(t, 3, f.NumCols())
}
