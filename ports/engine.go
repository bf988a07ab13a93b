package ports

import (
	"context"

	"timeprof/domain/expr"
	"timeprof/domain/frame"
	"timeprof/domain/profile"
)

// PlanExecutor runs a group-by/aggregate plan against a frame whose
// temporal key has already been resolved and bucketed. It returns one row
// per distinct bucket, sorted ascending. Execution failure (e.g. an
// aggregate applied to an incompatible column) is core.ErrAggregation and
// fatal; there is no partial-result mode.
type PlanExecutor interface {
	Execute(ctx context.Context, fr *frame.Frame, plan profile.Plan) (*profile.Table, error)
}

// ExpressionEngine resolves the dialect-free filter/transform AST against
// a frame. Filter removes rows; Transform adds or replaces a named column.
// The schema must be re-derived after either.
type ExpressionEngine interface {
	Filter(fr *frame.Frame, pred expr.Predicate) (*frame.Frame, error)
	Transform(fr *frame.Frame, rw expr.Rewrite) (*frame.Frame, error)
}
