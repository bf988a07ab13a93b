// Package expr defines a small dialect-free AST for row filters and column
// rewrites. The pipeline never interprets these itself; a pluggable
// expression engine resolves them against the loaded dataset.
package expr

import (
	"fmt"
)

// CompareOp is a comparison operator in a filter predicate
type CompareOp string

const (
	OpEq CompareOp = "eq"
	OpNe CompareOp = "ne"
	OpLt CompareOp = "lt"
	OpLe CompareOp = "le"
	OpGt CompareOp = "gt"
	OpGe CompareOp = "ge"
)

// Valid reports whether the operator is known
func (op CompareOp) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Compare tests one column against a literal
type Compare struct {
	Column string    `json:"column"`
	Op     CompareOp `json:"op"`
	Value  any       `json:"value"`
}

// Predicate is a tagged variant: exactly one of the fields is set.
// Rows for which the predicate holds are kept; all others are removed.
type Predicate struct {
	Compare *Compare    `json:"compare,omitempty"`
	All     []Predicate `json:"all,omitempty"`
	Any     []Predicate `json:"any,omitempty"`
	Not     *Predicate  `json:"not,omitempty"`
}

// Validate checks the variant invariant recursively
func (p Predicate) Validate() error {
	set := 0
	if p.Compare != nil {
		set++
		if !p.Compare.Op.Valid() {
			return fmt.Errorf("unknown compare op: %q", p.Compare.Op)
		}
		if p.Compare.Column == "" {
			return fmt.Errorf("compare predicate requires a column")
		}
	}
	if p.All != nil {
		set++
		for _, child := range p.All {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	}
	if p.Any != nil {
		set++
		for _, child := range p.Any {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	}
	if p.Not != nil {
		set++
		if err := p.Not.Validate(); err != nil {
			return err
		}
	}
	if set != 1 {
		return fmt.Errorf("predicate must set exactly one variant, got %d", set)
	}
	return nil
}

// ArithOp is an arithmetic operator in a column rewrite
type ArithOp string

const (
	OpAdd ArithOp = "add"
	OpSub ArithOp = "sub"
	OpMul ArithOp = "mul"
	OpDiv ArithOp = "div"
)

// Valid reports whether the operator is known
func (op ArithOp) Valid() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

// Binary combines two sub-expressions
type Binary struct {
	Op    ArithOp `json:"op"`
	Left  Expr    `json:"left"`
	Right Expr    `json:"right"`
}

// Expr is a tagged variant: exactly one of the fields is set
type Expr struct {
	Column  *string  `json:"column,omitempty"`
	Literal *float64 `json:"literal,omitempty"`
	Binary  *Binary  `json:"binary,omitempty"`
}

// Validate checks the variant invariant recursively
func (e Expr) Validate() error {
	set := 0
	if e.Column != nil {
		set++
		if *e.Column == "" {
			return fmt.Errorf("column reference cannot be empty")
		}
	}
	if e.Literal != nil {
		set++
	}
	if e.Binary != nil {
		set++
		if !e.Binary.Op.Valid() {
			return fmt.Errorf("unknown arithmetic op: %q", e.Binary.Op)
		}
		if err := e.Binary.Left.Validate(); err != nil {
			return err
		}
		if err := e.Binary.Right.Validate(); err != nil {
			return err
		}
	}
	if set != 1 {
		return fmt.Errorf("expression must set exactly one variant, got %d", set)
	}
	return nil
}

// Col builds a column reference expression
func Col(name string) Expr { return Expr{Column: &name} }

// Lit builds a literal expression
func Lit(v float64) Expr { return Expr{Literal: &v} }

// Bin builds a binary expression
func Bin(op ArithOp, left, right Expr) Expr {
	return Expr{Binary: &Binary{Op: op, Left: left, Right: right}}
}

// Rewrite adds or replaces a named column with the value of Expr.
// If Name matches an existing column the column is replaced, otherwise a
// new column is appended.
type Rewrite struct {
	Name string `json:"name"`
	Expr Expr   `json:"expr"`
}

// Validate checks the rewrite is well formed
func (r Rewrite) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rewrite requires a target column name")
	}
	return r.Expr.Validate()
}
