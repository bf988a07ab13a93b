package profile

import (
	"timeprof/domain/core"
)

// SectionKind distinguishes the logical sections of the aggregated table
type SectionKind string

const (
	SectionOverview SectionKind = "overview"
	SectionCommon   SectionKind = "common"
	SectionNumeric  SectionKind = "numeric"
)

// NamedEvaluation pairs an aggregated-table column with its evaluation
type NamedEvaluation struct {
	Name       string     `json:"name"`
	Evaluation Evaluation `json:"evaluation"`
}

// Section is one evaluated slice of the aggregated table: the overview,
// a column's common pair, or a numeric column's extras. Sections whose
// evaluation failed are omitted from the run result entirely.
type Section struct {
	Kind   SectionKind       `json:"kind"`
	Column string            `json:"column,omitempty"` // empty for the overview
	Evals  []NamedEvaluation `json:"evals"`
}

// StageTiming records a completed pipeline stage for the run manifest
type StageTiming struct {
	Name     string `json:"name"`
	DurMilli int64  `json:"duration_ms"`
}

// RunManifest is the audit record of a single profiling run
type RunManifest struct {
	RunID       core.RunID     `json:"run_id"`
	PlanHash    core.PlanHash  `json:"plan_hash"`
	TemporalKey string         `json:"temporal_key"` // the source column resolved as time axis
	Interval    string         `json:"interval"`
	StartedAt   core.Timestamp `json:"started_at"`
	CompletedAt core.Timestamp `json:"completed_at"`
	Stages      []StageTiming  `json:"stages"`
}

// RunResult is everything a reporting collaborator consumes
type RunResult struct {
	Manifest RunManifest `json:"manifest"`
	Table    *Table      `json:"table"`
	Metadata Metadata    `json:"metadata"`
	Sections []Section   `json:"sections"`
}

// Section returns the section of the given kind for a column
func (r *RunResult) Section(kind SectionKind, column string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Kind == kind && s.Column == column {
			return s, true
		}
	}
	return Section{}, false
}
