package schema

import (
	"fmt"
)

// ElementType classifies the values a column holds
type ElementType string

const (
	Integer  ElementType = "integer"
	Float    ElementType = "float"
	Boolean  ElementType = "boolean"
	String   ElementType = "string"
	Date     ElementType = "date"
	Datetime ElementType = "datetime"
	Other    ElementType = "other"
)

// IsNumeric reports whether the type participates in numeric aggregation
func (t ElementType) IsNumeric() bool {
	return t == Integer || t == Float
}

// IsTemporal reports whether the type can serve as a bucketing key
func (t ElementType) IsTemporal() bool {
	return t == Date || t == Datetime
}

// Column is a single schema entry
type Column struct {
	Name string      `json:"name"`
	Type ElementType `json:"type"`
}

// Schema is an ordered mapping from column name to element type.
// Column names are unique; insertion order is the dataset's declared order
// and drives deterministic planning.
type Schema struct {
	columns []Column
	index   map[string]int
}

// New builds a schema from ordered columns, rejecting duplicate names
func New(columns []Column) (Schema, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col.Name]; dup {
			return Schema{}, fmt.Errorf("duplicate column name: %s", col.Name)
		}
		index[col.Name] = i
	}
	return Schema{columns: columns, index: index}, nil
}

// Len returns the number of columns
func (s Schema) Len() int {
	return len(s.columns)
}

// Columns returns the ordered column list
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the ordered column names
func (s Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether a column exists
func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// TypeOf returns the element type of a column
func (s Schema) TypeOf(name string) (ElementType, bool) {
	i, ok := s.index[name]
	if !ok {
		return Other, false
	}
	return s.columns[i].Type, true
}

// FirstTemporal returns the name of the first date or datetime column in
// declared order, or false if none exists
func (s Schema) FirstTemporal() (string, bool) {
	for _, col := range s.columns {
		if col.Type.IsTemporal() {
			return col.Name, true
		}
	}
	return "", false
}

// String renders the schema one column per line, for diagnostics
func (s Schema) String() string {
	out := ""
	for _, col := range s.columns {
		out += fmt.Sprintf("%s: %s\n", col.Name, col.Type)
	}
	return out
}
