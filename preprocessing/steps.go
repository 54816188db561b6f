package preprocessing

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
)

// prune drops ID columns and columns with at most one distinct value. The
// target and bucket sources are kept regardless.
func (p *Preprocessor) prune(work *frame.Frame) []string {
	protected := map[string]struct{}{p.opts.TargetColumn: {}}
	for _, b := range p.opts.Buckets {
		protected[b.Source] = struct{}{}
	}

	var dropped []string
	for _, id := range p.opts.IDColumns {
		if _, ok := work.Column(id); ok {
			dropped = append(dropped, id)
		}
	}
	isID := make(map[string]struct{}, len(dropped))
	for _, id := range dropped {
		isID[id] = struct{}{}
	}

	for _, c := range work.Columns() {
		if _, ok := protected[c.Name]; ok {
			continue
		}
		if _, ok := isID[c.Name]; ok {
			continue
		}
		if c.Distinct() <= 1 {
			p.logger.Debug("dropping constant column", log.ColumnKey, c.Name)
			dropped = append(dropped, c.Name)
		}
	}
	work.Drop(dropped...)
	return dropped
}

// deriveBuckets appends one categorical column per Bucketing.
func (p *Preprocessor) deriveBuckets(work *frame.Frame) error {
	for _, b := range p.opts.Buckets {
		src, _ := work.Column(b.Source)
		if src.Kind != frame.Numeric {
			return errors.NewValidationError(b.Source, "bucket source must be numeric", src.Kind.String())
		}

		n := src.Len()
		labels := make([]string, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			if src.IsMissing(i) {
				continue
			}
			labels[i], valid[i] = b.Assign(src.Floats[i])
		}

		col := frame.NewCategorical(b.Target, labels, valid)
		if _, exists := work.Column(b.Target); exists {
			if err := work.Replace(b.Target, col); err != nil {
				return err
			}
			continue
		}
		if err := work.Add(col); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeTarget maps a raw target cell to 0 or 1 after trimming and
// upper-casing. Anything outside {SIM, NAO} is rejected.
func NormalizeTarget(raw string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case TargetPositive:
		return 1, true
	case TargetNegative:
		return 0, true
	default:
		return 0, false
	}
}

// extractTarget removes the target column from work and returns it as y.
func (p *Preprocessor) extractTarget(work *frame.Frame) (*mat.VecDense, error) {
	name := p.opts.TargetColumn
	col, _ := work.Column(name)
	if col.Kind != frame.Categorical {
		return nil, errors.NewValidationError(name, "target must be a text column", col.Kind.String())
	}

	y := mat.NewVecDense(col.Len(), nil)
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			return nil, errors.NewTargetValueError(name, i, "", true)
		}
		v, ok := NormalizeTarget(col.Strings[i])
		if !ok {
			return nil, errors.NewTargetValueError(name, i, col.Strings[i], false)
		}
		y.SetVec(i, v)
	}

	work.Drop(name)
	return y, nil
}

// DaysSince returns the whole days elapsed from t to obs, floored.
func DaysSince(obs, t time.Time) float64 {
	return math.Floor(obs.Sub(t).Hours() / 24)
}

// convertDates replaces each date column with a numeric days-since column
// under the same name.
func (p *Preprocessor) convertDates(work *frame.Frame) error {
	for _, c := range work.Columns() {
		if c.Kind != frame.Date {
			continue
		}
		days := make([]float64, c.Len())
		valid := make([]bool, c.Len())
		for i := range days {
			if c.IsMissing(i) {
				continue
			}
			days[i], valid[i] = DaysSince(p.opts.ObservationTime, c.Times[i]), true
		}
		if err := work.Replace(c.Name, frame.NewNumeric(c.Name, days, valid)); err != nil {
			return err
		}
	}
	return nil
}

// impute fills numeric gaps with the column median and categorical gaps
// with the unknown token.
func (p *Preprocessor) impute(work *frame.Frame, medians map[string]float64) error {
	for _, c := range work.Columns() {
		switch c.Kind {
		case frame.Numeric:
			observed := make([]float64, 0, c.Len())
			for i, v := range c.Floats {
				if !c.IsMissing(i) {
					observed = append(observed, v)
				}
			}
			if len(observed) == 0 {
				return errors.NewValueError("impute", "numeric column "+c.Name+" has no observed values")
			}
			med := Median(observed)
			medians[c.Name] = med
			for i := range c.Floats {
				if c.IsMissing(i) {
					c.Floats[i], c.Valid[i] = med, true
				}
			}
		case frame.Categorical:
			for i := range c.Strings {
				if c.IsMissing(i) {
					c.Strings[i], c.Valid[i] = p.opts.UnknownToken, true
				}
			}
		}
	}
	return nil
}

// Median returns the median of values, averaging the two middle elements
// for even lengths. values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// encode assembles X: numeric columns first in table order, then the
// one-hot columns of each categorical column with its first sorted level
// dropped.
func encode(work *frame.Frame, levels map[string][]string) (*mat.Dense, []string, error) {
	cols := work.Columns()
	var names []string
	var numeric, categorical []*frame.Column
	for _, c := range cols {
		switch c.Kind {
		case frame.Numeric:
			numeric = append(numeric, c)
			names = append(names, c.Name)
		case frame.Categorical:
			categorical = append(categorical, c)
		}
	}

	type dummy struct {
		col   *frame.Column
		level string
	}
	var dummies []dummy
	for _, c := range categorical {
		lv := distinctSorted(c.Strings)
		levels[c.Name] = lv
		for _, l := range lv[1:] {
			dummies = append(dummies, dummy{col: c, level: l})
			names = append(names, c.Name+"_"+l)
		}
	}

	if len(names) == 0 {
		return nil, nil, errors.NewValidationError("features", "no feature columns survived preprocessing", work.Names())
	}

	rows := work.NumRows()
	X := mat.NewDense(rows, len(names), nil)
	for j, c := range numeric {
		X.SetCol(j, c.Floats)
	}
	offset := len(numeric)
	for k, d := range dummies {
		for i := 0; i < rows; i++ {
			if d.col.Strings[i] == d.level {
				X.Set(i, offset+k, 1)
			}
		}
	}

	if err := errors.CheckMatrix("feature_matrix", X, rows, len(names), 0); err != nil {
		return nil, nil, err
	}
	return X, names, nil
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
