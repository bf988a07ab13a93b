package profiling

import (
	"timeprof/domain/core"
	"timeprof/domain/frame"
	"timeprof/domain/profile"
	"timeprof/domain/schema"
)

// BuildPlan builds the ordered aggregate-expression list for one group-by
// pass, together with the per-column metadata describing what was
// requested. The bucket count comes first, then the target average when a
// target column is configured and present, then per surviving column the
// common pair and, for numeric columns, the numeric quintet. A configured
// target absent from the schema is simply skipped here; CheckTarget is how
// callers surface that condition.
//
// Column iteration follows the schema's declared order, so the same schema
// and configuration always produce byte-for-byte identical plans.
func BuildPlan(s schema.Schema, target string, excluded []string) (profile.Plan, profile.Metadata) {
	plan := profile.Plan{
		Exprs: []profile.AggExpr{
			{Name: profile.CountColumn, Kind: profile.AggCount},
		},
	}

	if target != "" {
		if s.Has(target) {
			plan.Exprs = append(plan.Exprs, profile.AggExpr{
				Name:   profile.TargetColumn,
				Column: target,
				Kind:   profile.AggMean,
			})
		} else {
			target = ""
		}
	}

	skip := make(map[string]bool, len(excluded)+2)
	skip[profile.TimeColumn] = true
	if target != "" {
		skip[target] = true
	}
	for _, name := range excluded {
		skip[name] = true
	}

	var metadata profile.Metadata
	for _, col := range s.Columns() {
		if skip[col.Name] {
			continue
		}
		plan.Exprs = append(plan.Exprs,
			profile.AggExpr{Name: col.Name + profile.SuffixUniq, Column: col.Name, Kind: profile.AggNUnique},
			profile.AggExpr{Name: col.Name + profile.SuffixNullRatio, Column: col.Name, Kind: profile.AggNullRatio},
		)
		meta := profile.ColumnMeta{Column: col.Name}
		if Classify(col.Type) == ClassNumeric {
			plan.Exprs = append(plan.Exprs,
				profile.AggExpr{Name: col.Name + profile.SuffixMin, Column: col.Name, Kind: profile.AggMin},
				profile.AggExpr{Name: col.Name + profile.SuffixMax, Column: col.Name, Kind: profile.AggMax},
				profile.AggExpr{Name: col.Name + profile.SuffixMean, Column: col.Name, Kind: profile.AggMean},
				profile.AggExpr{Name: col.Name + profile.SuffixMedian, Column: col.Name, Kind: profile.AggMedian},
				profile.AggExpr{Name: col.Name + profile.SuffixStd, Column: col.Name, Kind: profile.AggStd},
			)
			dtype := string(col.Type)
			meta.Dtype = &dtype
			meta.IsNumeric = true
		}
		metadata = append(metadata, meta)
	}

	return plan, metadata
}

// CheckTarget reports the recoverable target anomalies: a configured
// target column missing from the schema, or one with more than two
// distinct non-null values. Either degrades the run (no class-balance
// reading) without failing it; callers classify with core.IsRecoverable.
func CheckTarget(fr *frame.Frame, s schema.Schema, target string) error {
	if target == "" {
		return nil
	}
	if !s.Has(target) {
		return core.NewMissingTargetColumnError(target)
	}
	if !IsBinaryTarget(fr, target) {
		return core.NewNonBinaryTargetError(target)
	}
	return nil
}

// IsBinaryTarget reports whether the target column holds at most two
// distinct non-null values. A non-binary target still gets its average
// aggregated; the caller just stops labeling it as class balance.
func IsBinaryTarget(fr *frame.Frame, target string) bool {
	col, ok := fr.Column(target)
	if !ok {
		return false
	}
	distinct := make(map[any]struct{}, 3)
	for i := range col.Values {
		if col.IsNull(i) {
			continue
		}
		distinct[col.Values[i]] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	return true
}
