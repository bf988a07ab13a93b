package engine

import (
	"testing"

	"timeprof/domain/core"
	"timeprof/domain/expr"
	"timeprof/domain/frame"
	"timeprof/domain/schema"
)

func exprFrame(t *testing.T) *frame.Frame {
	t.Helper()
	fr, err := frame.New([]frame.Column{
		{Name: "amount", Type: schema.Float, Values: []any{10.0, 20.0, nil, 40.0}},
		{Name: "qty", Type: schema.Integer, Values: []any{int64(1), int64(2), int64(4), nil}},
		{Name: "region", Type: schema.String, Values: []any{"north", "south", "north", "east"}},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return fr
}

func TestFilter_NumericCompare(t *testing.T) {
	eng := New(nil)
	out, err := eng.Filter(exprFrame(t), expr.Predicate{
		Compare: &expr.Compare{Column: "amount", Op: expr.OpGt, Value: 15.0},
	})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.NumRows())
	}
	col, _ := out.Column("amount")
	if v, _ := col.FloatAt(0); v != 20.0 {
		t.Errorf("row 0 amount = %v, want 20", v)
	}
}

func TestFilter_NullComparisonsRemoveRow(t *testing.T) {
	eng := New(nil)
	// amount ne 10 would hold for the null row under three-valued logic
	// with negation pushed in; here any comparison on null is false
	out, err := eng.Filter(exprFrame(t), expr.Predicate{
		Compare: &expr.Compare{Column: "amount", Op: expr.OpNe, Value: 10.0},
	})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.NumRows() != 2 {
		t.Errorf("expected 2 rows (null amount removed), got %d", out.NumRows())
	}
}

func TestFilter_Combinators(t *testing.T) {
	eng := New(nil)
	out, err := eng.Filter(exprFrame(t), expr.Predicate{
		All: []expr.Predicate{
			{Compare: &expr.Compare{Column: "region", Op: expr.OpEq, Value: "north"}},
			{Not: &expr.Predicate{
				Compare: &expr.Compare{Column: "qty", Op: expr.OpGe, Value: 3.0},
			}},
		},
	})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", out.NumRows())
	}
}

func TestFilter_UnknownColumnIsFatal(t *testing.T) {
	eng := New(nil)
	_, err := eng.Filter(exprFrame(t), expr.Predicate{
		Compare: &expr.Compare{Column: "nope", Op: expr.OpEq, Value: 1.0},
	})
	if !core.IsFatal(err) {
		t.Errorf("expected fatal error for unknown filter column, got %v", err)
	}
}

func TestFilter_InvalidPredicateRejected(t *testing.T) {
	eng := New(nil)
	_, err := eng.Filter(exprFrame(t), expr.Predicate{})
	if err == nil {
		t.Fatal("expected error for empty predicate")
	}
}

func TestTransform_AddsDerivedColumn(t *testing.T) {
	eng := New(nil)
	out, err := eng.Transform(exprFrame(t), expr.Rewrite{
		Name: "unit_price",
		Expr: expr.Bin(expr.OpDiv, expr.Col("amount"), expr.Col("qty")),
	})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	col, ok := out.Column("unit_price")
	if !ok {
		t.Fatal("derived column missing")
	}
	if v, _ := col.FloatAt(0); v != 10.0 {
		t.Errorf("row 0 = %v, want 10", v)
	}
	if v, _ := col.FloatAt(1); v != 10.0 {
		t.Errorf("row 1 = %v, want 10", v)
	}
	// rows 2 and 3 each have a missing operand
	if !col.IsNull(2) || !col.IsNull(3) {
		t.Error("rows with a missing operand must produce a missing result")
	}
}

func TestTransform_ReplacesExistingColumn(t *testing.T) {
	eng := New(nil)
	out, err := eng.Transform(exprFrame(t), expr.Rewrite{
		Name: "qty",
		Expr: expr.Bin(expr.OpMul, expr.Col("qty"), expr.Lit(2)),
	})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	col, _ := out.Column("qty")
	if v, _ := col.FloatAt(1); v != 4.0 {
		t.Errorf("replaced qty row 1 = %v, want 4", v)
	}
	if got := len(out.Schema().Columns()); got != 3 {
		t.Errorf("replace must not add a column, schema has %d", got)
	}
}

func TestTransform_DivisionByZeroIsMissing(t *testing.T) {
	eng := New(nil)
	fr, err := frame.New([]frame.Column{
		{Name: "v", Type: schema.Float, Values: []any{1.0}},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	out, err := eng.Transform(fr, expr.Rewrite{
		Name: "ratio",
		Expr: expr.Bin(expr.OpDiv, expr.Col("v"), expr.Lit(0)),
	})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	col, _ := out.Column("ratio")
	if !col.IsNull(0) {
		t.Error("non-finite result must be missing")
	}
}

func TestTransform_NonNumericColumnIsFatal(t *testing.T) {
	eng := New(nil)
	_, err := eng.Transform(exprFrame(t), expr.Rewrite{
		Name: "bad",
		Expr: expr.Col("region"),
	})
	if !core.IsFatal(err) {
		t.Errorf("expected fatal error for non-numeric operand, got %v", err)
	}
}
