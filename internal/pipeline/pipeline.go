// Package pipeline drives a profiling run through its one-way stages:
// load, filter, transform, temporal key resolution, planning, aggregation,
// and the per-section evaluation fan-out. Failure at any stage before the
// fan-out is terminal; a failed evaluation branch only loses its section.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"timeprof/domain/core"
	"timeprof/domain/frame"
	"timeprof/domain/profile"
	"timeprof/internal"
	"timeprof/internal/config"
	"timeprof/internal/profiling"
	"timeprof/ports"
)

// State is the pipeline's current stage. Transitions are one-way; there
// is no retry and no rollback, since filters and transforms rewrite the
// logical dataset in place.
type State string

const (
	StateCreated     State = "created"
	StateLoaded      State = "loaded"
	StateFiltered    State = "filtered"
	StateTransformed State = "transformed"
	StateKeyResolved State = "key_resolved"
	StatePlanned     State = "planned"
	StateAggregated  State = "aggregated"
	StateEvaluated   State = "evaluated"
	StateFailed      State = "failed"
)

// Pipeline wires a dataset source, the expression engine, and the plan
// executor into one run. A Pipeline is single-use.
type Pipeline struct {
	source   ports.DatasetSource
	exprs    ports.ExpressionEngine
	executor ports.PlanExecutor
	cfg      *config.Config
	log      *internal.Logger

	state State
	fr    *frame.Frame
}

// New creates a pipeline for one run
func New(source ports.DatasetSource, exprs ports.ExpressionEngine, executor ports.PlanExecutor, cfg *config.Config, log *internal.Logger) *Pipeline {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Pipeline{
		source:   source,
		exprs:    exprs,
		executor: executor,
		cfg:      cfg,
		log:      log,
		state:    StateCreated,
	}
}

// State returns the pipeline's current stage
func (p *Pipeline) State() State {
	return p.state
}

// Run executes all stages and returns the run result
func (p *Pipeline) Run(ctx context.Context) (*profile.RunResult, error) {
	interval, err := profiling.ParseInterval(p.cfg.TimeInterval)
	if err != nil {
		p.state = StateFailed
		return nil, err
	}

	manifest := profile.RunManifest{
		RunID:     core.NewRunID(),
		Interval:  p.cfg.TimeInterval,
		StartedAt: core.Now(),
	}
	timer := stageTimer{manifest: &manifest}

	// Load
	p.fr, err = p.source.Read(ctx)
	if err != nil {
		return nil, p.fail(err, "load dataset")
	}
	p.state = StateLoaded
	timer.mark("load")
	p.log.Info("loaded dataset: %d rows, %d columns", p.fr.NumRows(), p.fr.NumColumns())

	// Filter
	if p.cfg.Filter != nil {
		p.fr, err = p.exprs.Filter(p.fr, *p.cfg.Filter)
		if err != nil {
			return nil, p.fail(err, "apply filter")
		}
	}
	p.state = StateFiltered
	timer.mark("filter")

	// Transform
	for _, rw := range p.cfg.Transforms {
		p.fr, err = p.exprs.Transform(p.fr, rw)
		if err != nil {
			return nil, p.fail(err, "apply transform")
		}
	}
	p.state = StateTransformed
	timer.mark("transform")

	// Resolve temporal key; schema is re-derived after the mutations above
	manifest.TemporalKey, err = profiling.ResolveTemporalKey(p.fr, p.cfg.DateColumn, interval, p.log)
	if err != nil {
		return nil, p.fail(err, "resolve temporal key")
	}
	p.state = StateKeyResolved
	timer.mark("resolve_key")

	// Plan
	s := profiling.InspectSchema(p.fr, p.log)
	if err := profiling.CheckTarget(p.fr, s, p.cfg.TargetColumn); err != nil {
		if !core.IsRecoverable(err) {
			return nil, p.fail(err, "check target column")
		}
		// Still averaged where present, just not a class-balance signal
		p.log.Warn("%v", err)
	}
	plan, metadata := profiling.BuildPlan(s, p.cfg.TargetColumn, p.cfg.ColumnsToExclude)
	manifest.PlanHash = plan.Fingerprint()
	p.state = StatePlanned
	timer.mark("plan")

	// Aggregate
	table, err := p.executor.Execute(ctx, p.fr, plan)
	if err != nil {
		return nil, p.fail(err, "execute aggregation plan")
	}
	p.state = StateAggregated
	timer.mark("aggregate")
	p.log.Info("aggregated table: %d buckets, %d columns", table.Len(), len(table.Columns))

	// Evaluate sections
	sections := p.evaluateSections(ctx, table, metadata)
	p.state = StateEvaluated
	timer.mark("evaluate")

	manifest.CompletedAt = core.Now()
	return &profile.RunResult{
		Manifest: manifest,
		Table:    table,
		Metadata: metadata,
		Sections: sections,
	}, nil
}

func (p *Pipeline) fail(err error, stage string) error {
	p.state = StateFailed
	return fmt.Errorf("%s: %w", stage, err)
}

// evaluateSections fans out over the logical sections of the aggregated
// table. Branches share nothing but the read-only table and write to
// independent slots, so they run concurrently; a failed branch logs a
// warning and its section is omitted, siblings are unaffected.
func (p *Pipeline) evaluateSections(ctx context.Context, table *profile.Table, metadata profile.Metadata) []profile.Section {
	specs := sectionSpecs(table, metadata)
	results := make([]*profile.Section, len(specs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			section, err := p.evaluateSection(table, spec)
			if err != nil {
				// Either way the section is omitted and siblings continue;
				// only expected branch conditions stay at warn level
				if core.IsBranchError(err) {
					p.log.Warn("section %s/%s skipped: %v", spec.kind, spec.column, err)
				} else {
					p.log.Error("section %s/%s failed: %v", spec.kind, spec.column, err)
				}
				return nil
			}
			results[i] = section
			return nil
		})
	}
	g.Wait()

	sections := make([]profile.Section, 0, len(results))
	for _, s := range results {
		if s != nil {
			sections = append(sections, *s)
		}
	}
	return sections
}

type sectionSpec struct {
	kind   profile.SectionKind
	column string
	names  []string
}

// sectionSpecs enumerates the table's logical sections: the overview
// first, then per profiled column the common pair and, when the metadata
// flag is set, the numeric extras.
func sectionSpecs(table *profile.Table, metadata profile.Metadata) []sectionSpec {
	overview := []string{profile.CountColumn}
	if _, ok := table.Series(profile.TargetColumn); ok {
		overview = append(overview, profile.TargetColumn)
	}
	specs := []sectionSpec{{kind: profile.SectionOverview, names: overview}}

	for _, meta := range metadata {
		specs = append(specs, sectionSpec{
			kind:   profile.SectionCommon,
			column: meta.Column,
			names: []string{
				meta.Column + profile.SuffixUniq,
				meta.Column + profile.SuffixNullRatio,
			},
		})
		if meta.IsNumeric {
			specs = append(specs, sectionSpec{
				kind:   profile.SectionNumeric,
				column: meta.Column,
				names: []string{
					meta.Column + profile.SuffixMin,
					meta.Column + profile.SuffixMax,
					meta.Column + profile.SuffixMean,
					meta.Column + profile.SuffixMedian,
					meta.Column + profile.SuffixStd,
				},
			})
		}
	}
	return specs
}

func (p *Pipeline) evaluateSection(table *profile.Table, spec sectionSpec) (*profile.Section, error) {
	section := &profile.Section{Kind: spec.kind, Column: spec.column}
	for _, name := range spec.names {
		series, ok := table.Series(name)
		if !ok {
			return nil, fmt.Errorf("series %s not in aggregated table", name)
		}
		eval, err := profiling.EvaluateSeries(series, p.cfg.OutlierConfig())
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", name, err)
		}
		section.Evals = append(section.Evals, profile.NamedEvaluation{Name: name, Evaluation: eval})
	}
	return section, nil
}

type stageTimer struct {
	manifest *profile.RunManifest
	last     time.Time
}

func (t *stageTimer) mark(name string) {
	now := time.Now()
	if t.last.IsZero() {
		t.last = t.manifest.StartedAt.Time()
	}
	t.manifest.Stages = append(t.manifest.Stages, profile.StageTiming{
		Name:     name,
		DurMilli: now.Sub(t.last).Milliseconds(),
	})
	t.last = now
}
