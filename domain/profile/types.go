package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"timeprof/domain/core"
)

// Pipeline-internal column names. The temporal key is renamed to TimeColumn
// during resolution so every downstream step addresses it the same way.
const (
	TimeColumn   = "__time_interval"
	CountColumn  = "__count"
	TargetColumn = "__target"
)

// Aggregation output name suffixes. A source column's statistics appear in
// the aggregated table under <column><suffix>.
const (
	SuffixUniq      = "__uniq"
	SuffixNullRatio = "__null_ratio"
	SuffixMin       = "__min"
	SuffixMax       = "__max"
	SuffixMean      = "__mean"
	SuffixMedian    = "__median"
	SuffixStd       = "__std"
)

// AggKind names a single-pass group-by reduction the executor must support
type AggKind string

const (
	AggCount     AggKind = "count"
	AggMean      AggKind = "mean"
	AggNUnique   AggKind = "n_unique"
	AggNullRatio AggKind = "null_ratio"
	AggMin       AggKind = "min"
	AggMax       AggKind = "max"
	AggMedian    AggKind = "median"
	AggStd       AggKind = "std"
)

// AggExpr is one named aggregate expression in a plan
type AggExpr struct {
	Name   string  `json:"name"`   // output column name, unique within the plan
	Column string  `json:"column"` // source column; empty for row count
	Kind   AggKind `json:"kind"`
}

// Plan is the ordered aggregate-expression list executed in one group-by
// pass over the time buckets
type Plan struct {
	Exprs []AggExpr `json:"exprs"`
}

// Names returns the output column names in plan order
func (p Plan) Names() []string {
	names := make([]string, len(p.Exprs))
	for i, e := range p.Exprs {
		names[i] = e.Name
	}
	return names
}

// Fingerprint hashes the plan's shape. Identical schema and configuration
// must yield identical fingerprints across runs.
func (p Plan) Fingerprint() core.PlanHash {
	var b strings.Builder
	for _, e := range p.Exprs {
		fmt.Fprintf(&b, "%s|%s|%s\n", e.Name, e.Column, e.Kind)
	}
	return core.NewPlanHash([]byte(b.String()))
}

// ColumnMeta describes what was aggregated for one source column.
// Dtype is null for non-numeric columns and carries the textual type name
// for numeric ones; IsNumeric doubles as the "numeric extras exist" flag.
type ColumnMeta struct {
	Column    string  `json:"column"`
	Dtype     *string `json:"dtype"`
	IsNumeric bool    `json:"is_numeric"`
}

// Metadata lists profiled columns in plan order
type Metadata []ColumnMeta

// Get returns the metadata entry for a column
func (m Metadata) Get(column string) (ColumnMeta, bool) {
	for _, cm := range m {
		if cm.Column == column {
			return cm, true
		}
	}
	return ColumnMeta{}, false
}

// Table is the aggregated output: one row per distinct time bucket, sorted
// ascending, columns addressed by plan output name. Values use NaN for
// statistics undefined on a bucket (e.g. sample std of a single row).
type Table struct {
	Buckets []time.Time          `json:"buckets"`
	Columns []string             `json:"columns"`
	Values  map[string][]float64 `json:"values"`
}

// Len returns the number of buckets
func (t *Table) Len() int {
	return len(t.Buckets)
}

// Series returns the per-bucket values of one aggregated statistic
func (t *Table) Series(name string) ([]float64, bool) {
	s, ok := t.Values[name]
	return s, ok
}

// Sorted reports whether buckets are strictly ascending (no duplicates)
func (t *Table) Sorted() bool {
	return sort.SliceIsSorted(t.Buckets, func(i, j int) bool {
		return t.Buckets[i].Before(t.Buckets[j])
	}) && !hasDuplicateBuckets(t.Buckets)
}

func hasDuplicateBuckets(buckets []time.Time) bool {
	for i := 1; i < len(buckets); i++ {
		if buckets[i].Equal(buckets[i-1]) {
			return true
		}
	}
	return false
}

// tableJSON is the wire form of Table. Undefined statistics are NaN
// in memory, which encoding/json cannot represent, so they cross the
// wire as null.
type tableJSON struct {
	Buckets []time.Time           `json:"buckets"`
	Columns []string              `json:"columns"`
	Values  map[string][]*float64 `json:"values"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Buckets: t.Buckets,
		Columns: t.Columns,
		Values:  make(map[string][]*float64, len(t.Values)),
	}
	for name, series := range t.Values {
		encoded := make([]*float64, len(series))
		for i, v := range series {
			if !math.IsNaN(v) {
				encoded[i] = &series[i]
			}
		}
		out.Values[name] = encoded
	}
	return json.Marshal(out)
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Buckets = in.Buckets
	t.Columns = in.Columns
	t.Values = make(map[string][]float64, len(in.Values))
	for name, series := range in.Values {
		decoded := make([]float64, len(series))
		for i, v := range series {
			if v == nil {
				decoded[i] = math.NaN()
			} else {
				decoded[i] = *v
			}
		}
		t.Values[name] = decoded
	}
	return nil
}
