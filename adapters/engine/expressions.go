package engine

import (
	"fmt"
	"math"

	"timeprof/domain/core"
	"timeprof/domain/expr"
	"timeprof/domain/frame"
	"timeprof/domain/schema"
)

// Filter keeps the rows for which the predicate holds. Comparisons against
// missing values are false, so such rows are removed. The schema of the
// result may be consulted directly; callers re-derive it anyway after any
// dataset mutation.
func (e *Engine) Filter(fr *frame.Frame, pred expr.Predicate) (*frame.Frame, error) {
	if err := pred.Validate(); err != nil {
		return nil, core.NewUnsupportedTransformError(err.Error())
	}
	keep := make([]int, 0, fr.NumRows())
	for i := 0; i < fr.NumRows(); i++ {
		ok, err := evalPredicate(fr, pred, i)
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	e.log.Info("filter applied: kept %d of %d rows", len(keep), fr.NumRows())
	return fr.SelectRows(keep), nil
}

// Transform adds or replaces a named column with the evaluated expression.
// The result column is always float typed; rows where an operand is
// missing become missing.
func (e *Engine) Transform(fr *frame.Frame, rw expr.Rewrite) (*frame.Frame, error) {
	if err := rw.Validate(); err != nil {
		return nil, core.NewUnsupportedTransformError(err.Error())
	}
	values := make([]any, fr.NumRows())
	for i := 0; i < fr.NumRows(); i++ {
		v, ok, err := evalExpr(fr, rw.Expr, i)
		if err != nil {
			return nil, err
		}
		if ok {
			values[i] = v
		}
	}
	if err := fr.SetColumn(frame.Column{Name: rw.Name, Type: schema.Float, Values: values}); err != nil {
		return nil, core.NewUnsupportedTransformError(err.Error())
	}
	e.log.Info("transform applied: column %q", rw.Name)
	return fr, nil
}

func evalPredicate(fr *frame.Frame, pred expr.Predicate, row int) (bool, error) {
	switch {
	case pred.Compare != nil:
		return evalCompare(fr, pred.Compare, row)
	case pred.All != nil:
		for _, child := range pred.All {
			ok, err := evalPredicate(fr, child, row)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case pred.Any != nil:
		for _, child := range pred.Any {
			ok, err := evalPredicate(fr, child, row)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case pred.Not != nil:
		ok, err := evalPredicate(fr, *pred.Not, row)
		return !ok, err
	default:
		return false, core.NewUnsupportedTransformError("empty predicate")
	}
}

func evalCompare(fr *frame.Frame, cmp *expr.Compare, row int) (bool, error) {
	col, ok := fr.Column(cmp.Column)
	if !ok {
		return false, core.NewUnsupportedTransformError(fmt.Sprintf("filter column not found: %s", cmp.Column))
	}
	if col.IsNull(row) {
		return false, nil
	}

	// Numeric comparison when both sides are numeric; string otherwise
	if lhs, isNum := col.FloatAt(row); isNum {
		rhs, err := literalFloat(cmp.Value)
		if err != nil {
			return false, core.NewUnsupportedTransformError(
				fmt.Sprintf("column %s is numeric, literal %v is not", cmp.Column, cmp.Value))
		}
		return compareFloats(lhs, rhs, cmp.Op), nil
	}

	lhs, _ := col.StringAt(row)
	rhs, isStr := cmp.Value.(string)
	if !isStr {
		return false, core.NewUnsupportedTransformError(
			fmt.Sprintf("column %s is not numeric, literal %v must be a string", cmp.Column, cmp.Value))
	}
	return compareStrings(lhs, rhs, cmp.Op), nil
}

func compareFloats(lhs, rhs float64, op expr.CompareOp) bool {
	switch op {
	case expr.OpEq:
		return lhs == rhs
	case expr.OpNe:
		return lhs != rhs
	case expr.OpLt:
		return lhs < rhs
	case expr.OpLe:
		return lhs <= rhs
	case expr.OpGt:
		return lhs > rhs
	default:
		return lhs >= rhs
	}
}

func compareStrings(lhs, rhs string, op expr.CompareOp) bool {
	switch op {
	case expr.OpEq:
		return lhs == rhs
	case expr.OpNe:
		return lhs != rhs
	case expr.OpLt:
		return lhs < rhs
	case expr.OpLe:
		return lhs <= rhs
	case expr.OpGt:
		return lhs > rhs
	default:
		return lhs >= rhs
	}
}

// literalFloat widens JSON-decoded literal values to float64
func literalFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("not a numeric literal: %v", v)
	}
}

func evalExpr(fr *frame.Frame, ex expr.Expr, row int) (float64, bool, error) {
	switch {
	case ex.Column != nil:
		col, ok := fr.Column(*ex.Column)
		if !ok {
			return 0, false, core.NewUnsupportedTransformError(fmt.Sprintf("transform column not found: %s", *ex.Column))
		}
		if col.IsNull(row) {
			return 0, false, nil
		}
		v, isNum := col.FloatAt(row)
		if !isNum {
			return 0, false, core.NewUnsupportedTransformError(fmt.Sprintf("column %s is not numeric", *ex.Column))
		}
		return v, true, nil

	case ex.Literal != nil:
		return *ex.Literal, true, nil

	case ex.Binary != nil:
		lhs, lok, err := evalExpr(fr, ex.Binary.Left, row)
		if err != nil {
			return 0, false, err
		}
		rhs, rok, err := evalExpr(fr, ex.Binary.Right, row)
		if err != nil {
			return 0, false, err
		}
		if !lok || !rok {
			return 0, false, nil
		}
		v := applyArith(ex.Binary.Op, lhs, rhs)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false, nil
		}
		return v, true, nil

	default:
		return 0, false, core.NewUnsupportedTransformError("empty expression")
	}
}

func applyArith(op expr.ArithOp, lhs, rhs float64) float64 {
	switch op {
	case expr.OpAdd:
		return lhs + rhs
	case expr.OpSub:
		return lhs - rhs
	case expr.OpMul:
		return lhs * rhs
	default: // OpDiv
		return lhs / rhs
	}
}
