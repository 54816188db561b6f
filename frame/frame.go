// Package frame holds the raw record table produced by the loader: ordered,
// named, typed columns of equal length with per-cell missing markers.
package frame

import (
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// Frame is an ordered set of equal-length columns.
type Frame struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a frame from columns. Names must be unique and every column
// must have the same length.
func New(cols ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := f.Add(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// MustHave returns a ColumnNotFoundError for the first name that is absent.
func (f *Frame) MustHave(step string, names ...string) error {
	for _, name := range names {
		if _, ok := f.index[name]; !ok {
			return errors.NewColumnNotFoundError(step, name)
		}
	}
	return nil
}

// Drop removes the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := f.cols[:0]
	for _, c := range f.cols {
		if _, ok := drop[c.Name]; !ok {
			kept = append(kept, c)
		}
	}
	f.cols = kept
	f.reindex()
}

// Add appends a column.
func (f *Frame) Add(c *Column) error {
	if err := f.check(c); err != nil {
		return err
	}
	if _, dup := f.index[c.Name]; dup {
		return errors.NewValueError("frame.Add", "duplicate column "+c.Name)
	}
	if len(f.cols) == 0 {
		f.rows = c.Len()
	}
	f.index[c.Name] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// Replace swaps the named column for c, keeping its position. c may carry
// a different name and kind.
func (f *Frame) Replace(name string, c *Column) error {
	i, ok := f.index[name]
	if !ok {
		return errors.NewColumnNotFoundError("frame.Replace", name)
	}
	if err := f.check(c); err != nil {
		return err
	}
	if j, dup := f.index[c.Name]; dup && j != i {
		return errors.NewValueError("frame.Replace", "duplicate column "+c.Name)
	}
	f.cols[i] = c
	f.reindex()
	return nil
}

// Names returns column names in table order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in table order. The slice is a copy; the
// columns are shared.
func (f *Frame) Columns() []*Column {
	return append([]*Column(nil), f.cols...)
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return f.rows
}

// NumCols returns the column count.
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		cols:  make([]*Column, len(f.cols)),
		index: make(map[string]int, len(f.cols)),
		rows:  f.rows,
	}
	for i, c := range f.cols {
		out.cols[i] = c.Clone()
		out.index[c.Name] = i
	}
	return out
}

func (f *Frame) check(c *Column) error {
	if c == nil || c.Name == "" {
		return errors.NewValueError("frame", "column must be non-nil and named")
	}
	if c.dataLen() != c.Len() {
		return errors.NewValueError("frame", "column "+c.Name+": values and validity mask differ in length")
	}
	if len(f.cols) > 0 && c.Len() != f.rows {
		return errors.NewDimensionError("frame:"+c.Name, f.rows, c.Len(), 0)
	}
	return nil
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		f.index[c.Name] = i
	}
}
