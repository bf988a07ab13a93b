// Package frame holds the in-memory tabular representation the profiler
// works on. A Frame is column-ordered; values are stored as int64, float64,
// bool, string or time.Time, with nil marking a missing value.
package frame

import (
	"fmt"
	"time"

	"timeprof/domain/schema"
)

// Column is a named, typed value vector
type Column struct {
	Name   string
	Type   schema.ElementType
	Values []any
}

// IsNull reports whether the value at row i is missing
func (c *Column) IsNull(i int) bool {
	return c.Values[i] == nil
}

// FloatAt returns the value at row i as float64. Integers and booleans are
// widened (true=1, false=0). The second return is false for missing values
// and non-numeric types.
func (c *Column) FloatAt(i int) (float64, bool) {
	switch v := c.Values[i].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// TimeAt returns the value at row i as time.Time
func (c *Column) TimeAt(i int) (time.Time, bool) {
	t, ok := c.Values[i].(time.Time)
	return t, ok
}

// StringAt returns the value at row i as string
func (c *Column) StringAt(i int) (string, bool) {
	s, ok := c.Values[i].(string)
	return s, ok
}

// Frame is an ordered collection of equal-length columns
type Frame struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New builds a frame, validating unique names and equal column lengths
func New(columns []Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(columns))}
	for _, col := range columns {
		if err := f.add(col); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Frame) add(col Column) error {
	if _, dup := f.index[col.Name]; dup {
		return fmt.Errorf("duplicate column name: %s", col.Name)
	}
	if len(f.columns) > 0 && len(col.Values) != f.rows {
		return fmt.Errorf("column %s has %d rows, frame has %d", col.Name, len(col.Values), f.rows)
	}
	f.rows = len(col.Values)
	f.index[col.Name] = len(f.columns)
	f.columns = append(f.columns, col)
	return nil
}

// NumRows returns the row count
func (f *Frame) NumRows() int {
	return f.rows
}

// NumColumns returns the column count
func (f *Frame) NumColumns() int {
	return len(f.columns)
}

// Schema derives the current schema. Must be re-derived after any filter
// or transform step; those can add, replace, or drop columns.
func (f *Frame) Schema() schema.Schema {
	cols := make([]schema.Column, len(f.columns))
	for i, col := range f.columns {
		cols[i] = schema.Column{Name: col.Name, Type: col.Type}
	}
	s, _ := schema.New(cols) // names already unique by construction
	return s
}

// Column returns the named column
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return &f.columns[i], true
}

// SetColumn adds or replaces a column in place
func (f *Frame) SetColumn(col Column) error {
	if len(col.Values) != f.rows && len(f.columns) > 0 {
		return fmt.Errorf("column %s has %d rows, frame has %d", col.Name, len(col.Values), f.rows)
	}
	if i, ok := f.index[col.Name]; ok {
		f.columns[i] = col
		return nil
	}
	return f.add(col)
}

// RenameColumn renames a column keeping its position
func (f *Frame) RenameColumn(oldName, newName string) error {
	i, ok := f.index[oldName]
	if !ok {
		return fmt.Errorf("column not found: %s", oldName)
	}
	if _, dup := f.index[newName]; dup {
		return fmt.Errorf("duplicate column name: %s", newName)
	}
	delete(f.index, oldName)
	f.index[newName] = i
	f.columns[i].Name = newName
	return nil
}

// SelectRows returns a new frame keeping only the given row indices, in order
func (f *Frame) SelectRows(keep []int) *Frame {
	out := &Frame{index: make(map[string]int, len(f.columns)), rows: len(keep)}
	for _, col := range f.columns {
		values := make([]any, len(keep))
		for j, i := range keep {
			values[j] = col.Values[i]
		}
		out.index[col.Name] = len(out.columns)
		out.columns = append(out.columns, Column{Name: col.Name, Type: col.Type, Values: values})
	}
	return out
}
