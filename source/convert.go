package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

var (
	numericTypes = map[string]struct{}{
		"INT": {}, "INTEGER": {}, "INT2": {}, "INT4": {}, "INT8": {},
		"TINYINT": {}, "SMALLINT": {}, "BIGINT": {},
		"DECIMAL": {}, "NUMERIC": {}, "MONEY": {}, "SMALLMONEY": {},
		"FLOAT": {}, "FLOAT4": {}, "FLOAT8": {}, "REAL": {}, "DOUBLE": {},
		"BIT": {}, "BOOL": {},
	}
	dateTypes = map[string]struct{}{
		"DATE": {}, "DATETIME": {}, "DATETIME2": {}, "SMALLDATETIME": {},
		"DATETIMEOFFSET": {}, "TIMESTAMP": {}, "TIMESTAMPTZ": {},
	}
)

// kindFromTypeName maps a driver type name to a column kind. ok is false
// when the driver reported nothing usable.
func kindFromTypeName(name string) (frame.Kind, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	if _, ok := numericTypes[name]; ok {
		return frame.Numeric, true
	}
	if _, ok := dateTypes[name]; ok {
		return frame.Date, true
	}
	return frame.Categorical, true
}

// kindFromValues infers the kind from the first non-NULL value.
func kindFromValues(values []any) frame.Kind {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64, int32, int, float64, float32, bool, decimal.Decimal:
			return frame.Numeric
		case time.Time:
			return frame.Date
		default:
			return frame.Categorical
		}
	}
	return frame.Categorical
}

// buildColumn converts the raw scanned values of one column.
func buildColumn(name string, kind frame.Kind, values []any) (*frame.Column, error) {
	n := len(values)
	valid := make([]bool, n)

	switch kind {
	case frame.Numeric:
		out := make([]float64, n)
		rounded := 0
		for i, v := range values {
			if v == nil {
				continue
			}
			f, exact, err := toFloat(v)
			if err != nil {
				return nil, errors.Wrapf(err, "column %s row %d", name, i)
			}
			if !exact {
				rounded++
			}
			out[i], valid[i] = f, true
		}
		if rounded > 0 {
			errors.Warn(errors.NewDataConversionWarning("decimal", "float64",
				fmt.Sprintf("column %s: %d values rounded to the nearest float64", name, rounded)))
		}
		return frame.NewNumeric(name, out, valid), nil

	case frame.Date:
		out := make([]time.Time, n)
		for i, v := range values {
			if v == nil {
				continue
			}
			t, ok := v.(time.Time)
			if !ok {
				return nil, errors.NewValueError("source.Load",
					fmt.Sprintf("column %s row %d: expected a date, got %T", name, i, v))
			}
			out[i], valid[i] = t, true
		}
		return frame.NewDate(name, out, valid), nil

	default:
		out := make([]string, n)
		for i, v := range values {
			if v == nil {
				continue
			}
			out[i], valid[i] = toString(v), true
		}
		return frame.NewCategorical(name, out, valid), nil
	}
}

// toFloat converts a scanned value. exact is false when a decimal had to
// be rounded.
func toFloat(v any) (f float64, exact bool, err error) {
	switch x := v.(type) {
	case float64:
		return x, true, nil
	case float32:
		return float64(x), true, nil
	case int64:
		return float64(x), true, nil
	case int32:
		return float64(x), true, nil
	case int:
		return float64(x), true, nil
	case bool:
		if x {
			return 1, true, nil
		}
		return 0, true, nil
	case decimal.Decimal:
		f, exact = x.Float64()
		return f, exact, nil
	case []byte:
		return parseDecimal(string(x))
	case string:
		return parseDecimal(x)
	default:
		return 0, false, errors.Newf("cannot convert %T to a number", v)
	}
}

// parseDecimal handles DECIMAL and MONEY values that drivers hand back as
// text.
func parseDecimal(s string) (float64, bool, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false, errors.Wrapf(err, "invalid decimal %q", s)
	}
	f, exact := d.Float64()
	return f, exact, nil
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
