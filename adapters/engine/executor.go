// Package engine is the in-memory tabular engine behind the pipeline's
// executor and expression ports: a single group-by/aggregate pass over a
// frame, plus resolution of the filter/transform AST.
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"timeprof/domain/core"
	"timeprof/domain/frame"
	"timeprof/domain/profile"
	"timeprof/internal"
)

// Engine implements ports.PlanExecutor and ports.ExpressionEngine over the
// in-memory frame representation
type Engine struct {
	log *internal.Logger
}

// New creates an engine
func New(log *internal.Logger) *Engine {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Engine{log: log}
}

// Execute runs the plan in one group-by pass keyed on the resolved
// temporal bucket column. The result has one row per distinct bucket,
// sorted ascending; rows whose bucket key is missing are not counted.
// Statistics undefined on a bucket (all-null input, sample std of one
// value) come back as NaN.
func (e *Engine) Execute(ctx context.Context, fr *frame.Frame, plan profile.Plan) (*profile.Table, error) {
	key, ok := fr.Column(profile.TimeColumn)
	if !ok {
		return nil, core.NewAggregationError(profile.TimeColumn, fmt.Errorf("bucket column missing"))
	}

	// Bucket row indices by truncated timestamp
	groups := make(map[int64][]int)
	for i := 0; i < fr.NumRows(); i++ {
		t, isTime := key.TimeAt(i)
		if !isTime {
			continue
		}
		groups[t.UnixNano()] = append(groups[t.UnixNano()], i)
	}

	keys := make([]int64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	table := &profile.Table{
		Buckets: make([]time.Time, len(keys)),
		Columns: plan.Names(),
		Values:  make(map[string][]float64, len(plan.Exprs)),
	}
	for i, k := range keys {
		table.Buckets[i] = time.Unix(0, k).UTC()
	}

	start := time.Now()
	for _, agg := range plan.Exprs {
		if err := ctx.Err(); err != nil {
			return nil, core.NewAggregationError(agg.Name, err)
		}
		series := make([]float64, len(keys))
		for i, k := range keys {
			v, err := e.reduce(fr, agg, groups[k])
			if err != nil {
				return nil, core.NewAggregationError(agg.Name, err)
			}
			series[i] = v
		}
		table.Values[agg.Name] = series
	}
	e.log.Debug("aggregated %d expressions over %d buckets in %s", len(plan.Exprs), len(keys), time.Since(start))

	return table, nil
}

// reduce applies one aggregate to the rows of a single bucket
func (e *Engine) reduce(fr *frame.Frame, agg profile.AggExpr, rows []int) (float64, error) {
	if agg.Kind == profile.AggCount {
		return float64(len(rows)), nil
	}

	col, ok := fr.Column(agg.Column)
	if !ok {
		return 0, fmt.Errorf("column not found: %s", agg.Column)
	}

	switch agg.Kind {
	case profile.AggNUnique:
		distinct := make(map[any]struct{}, len(rows))
		for _, i := range rows {
			distinct[col.Values[i]] = struct{}{}
		}
		return float64(len(distinct)), nil

	case profile.AggNullRatio:
		nulls := 0
		for _, i := range rows {
			if col.IsNull(i) {
				nulls++
			}
		}
		if len(rows) == 0 {
			return math.NaN(), nil
		}
		return float64(nulls) / float64(len(rows)), nil

	case profile.AggMin, profile.AggMax, profile.AggMean, profile.AggMedian, profile.AggStd:
		values, err := bucketFloats(col, rows)
		if err != nil {
			return 0, err
		}
		if len(values) == 0 {
			return math.NaN(), nil
		}
		switch agg.Kind {
		case profile.AggMin:
			return floats.Min(values), nil
		case profile.AggMax:
			return floats.Max(values), nil
		case profile.AggMean:
			return stat.Mean(values, nil), nil
		case profile.AggMedian:
			return median(values), nil
		default: // AggStd, sample standard deviation
			if len(values) < 2 {
				return math.NaN(), nil
			}
			return stat.StdDev(values, nil), nil
		}

	default:
		return 0, fmt.Errorf("unsupported aggregate kind: %s", agg.Kind)
	}
}

// bucketFloats collects the non-null numeric values of a bucket. A
// non-numeric value under a numeric aggregate is a type mismatch and
// fails the plan.
func bucketFloats(col *frame.Column, rows []int) ([]float64, error) {
	values := make([]float64, 0, len(rows))
	for _, i := range rows {
		if col.IsNull(i) {
			continue
		}
		v, ok := col.FloatAt(i)
		if !ok {
			return nil, fmt.Errorf("column %s: value %v is not numeric", col.Name, col.Values[i])
		}
		values = append(values, v)
	}
	return values, nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
