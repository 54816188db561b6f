package frame

import (
	"math"
	"time"
)

// Kind identifies the value type stored in a Column.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string values.
	Categorical
	// Date columns hold time.Time values.
	Date
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Column is a named, typed vector with a validity mask. Only the slice
// matching Kind is populated. Valid[i] == false marks a missing cell.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	Times   []time.Time
	Valid   []bool
}

// NewNumeric builds a numeric column. A nil valid mask marks every non-NaN
// value as present.
func NewNumeric(name string, values []float64, valid []bool) *Column {
	if valid == nil {
		valid = make([]bool, len(values))
		for i, v := range values {
			valid[i] = !math.IsNaN(v)
		}
	}
	return &Column{Name: name, Kind: Numeric, Floats: values, Valid: valid}
}

// NewCategorical builds a categorical column. A nil valid mask marks every
// value as present.
func NewCategorical(name string, values []string, valid []bool) *Column {
	if valid == nil {
		valid = allValid(len(values))
	}
	return &Column{Name: name, Kind: Categorical, Strings: values, Valid: valid}
}

// NewDate builds a date column. A nil valid mask marks every non-zero time
// as present.
func NewDate(name string, values []time.Time, valid []bool) *Column {
	if valid == nil {
		valid = make([]bool, len(values))
		for i, v := range values {
			valid[i] = !v.IsZero()
		}
	}
	return &Column{Name: name, Kind: Date, Times: values, Valid: valid}
}

// Len returns the number of cells.
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsMissing reports whether cell i is missing.
func (c *Column) IsMissing(i int) bool {
	return !c.Valid[i]
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Distinct returns the number of distinct values, counting "missing" as one
// more value when at least one cell is missing.
func (c *Column) Distinct() int {
	seen := make(map[any]struct{})
	missing := false
	for i, ok := range c.Valid {
		if !ok {
			missing = true
			continue
		}
		switch c.Kind {
		case Numeric:
			v := c.Floats[i]
			if v == 0 {
				v = 0 // fold -0
			}
			seen[math.Float64bits(v)] = struct{}{}
		case Categorical:
			seen[c.Strings[i]] = struct{}{}
		case Date:
			seen[c.Times[i].UnixNano()] = struct{}{}
		}
	}
	n := len(seen)
	if missing {
		n++
	}
	return n
}

// Clone returns a deep copy with the given name.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Valid: append([]bool(nil), c.Valid...)}
	switch c.Kind {
	case Numeric:
		out.Floats = append([]float64(nil), c.Floats...)
	case Categorical:
		out.Strings = append([]string(nil), c.Strings...)
	case Date:
		out.Times = append([]time.Time(nil), c.Times...)
	}
	return out
}

func (c *Column) dataLen() int {
	switch c.Kind {
	case Numeric:
		return len(c.Floats)
	case Categorical:
		return len(c.Strings)
	case Date:
		return len(c.Times)
	default:
		return -1
	}
}

func allValid(n int) []bool {
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}
