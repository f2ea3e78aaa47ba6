// Package pipeline runs the cleaning stages over a loaded snapshot in a fixed
// order: impute, dedupe, coerce, normalize, outliers, bucketize.
//
// New validates the configuration up front and refuses to build a pipeline
// from an invalid one, so no stage ever runs on a bad document. Run passes
// each stage's output snapshot to the next and appends exactly one report
// entry per completed stage. Cancellation is observed between stages only;
// a stage that has started always finishes or fails on its own.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tabclean/internal/config"
	"tabclean/internal/metrics"
	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/pkg/records"
)

// Pipeline is an immutable, reusable plan. It is safe to call Run
// concurrently on different snapshots.
type Pipeline struct {
	job      string
	registry *schema.Registry
	steps    []step
	logger   *zap.Logger
	onStage  func(State, report.Entry)
	now      func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// OnStage registers fn to be called after every completed stage with the
// state reached and the stage's entry.
func OnStage(fn func(State, report.Entry)) Option {
	return func(p *Pipeline) { p.onStage = fn }
}

// Result is the outcome of Run. On cancellation or failure Snapshot is the
// output of the last completed stage and Report holds the partial log.
type Result struct {
	RunID    string
	State    State
	Snapshot *records.Snapshot
	Report   *report.Report
}

// New validates cfg and builds the stage sequence. Any error-severity issue
// yields a *ConfigurationError.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: nil configuration")
	}
	var fatal []config.Issue
	for _, iss := range config.Validate(cfg) {
		if iss.Severity == config.SeverityError {
			fatal = append(fatal, iss)
		}
	}
	if len(fatal) > 0 {
		return nil, &ConfigurationError{Issues: fatal}
	}
	steps, err := plan(cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p := &Pipeline{
		job:      cfg.Job,
		registry: schema.NewRegistry(cfg.Contract()),
		steps:    steps,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.stage.Name()
	}
	return out
}

// Run executes every stage over in. in itself is never modified.
//
// The returned error wraps the context error on cancellation (state
// Cancelled) or the stage error on failure (state Failed); in both cases the
// Result is still populated.
func (p *Pipeline) Run(ctx context.Context, in *records.Snapshot) (*Result, error) {
	if in == nil {
		return nil, errors.New("pipeline: nil snapshot")
	}
	started := p.now()
	res := &Result{
		RunID:    uuid.NewString(),
		State:    StateLoaded,
		Snapshot: in,
	}
	res.Report = &report.Report{
		RunID:     res.RunID,
		Job:       p.job,
		StartedAt: started,
		Before:    report.Summarize(in),
	}
	log := p.logger.With(zap.String("run_id", res.RunID), zap.String("job", p.job))
	metrics.RecordRow(p.job, metrics.KindRowsIn, int64(in.Len()))

	present, absent := p.registry.Check(in.Columns())
	for _, name := range absent {
		if col, _ := p.registry.Contract().Lookup(name); col.Required {
			log.Warn("required column not in dataset", zap.String("column", name))
		}
	}
	log.Info("run started", zap.Int("rows", in.Len()), zap.Int("columns", len(in.Columns())), zap.Int("declared_present", len(present)))

	finish := func(st State) {
		res.State = st
		res.Report.State = st.String()
		res.Report.After = report.Summarize(res.Snapshot)
		res.Report.Duration = p.now().Sub(started)
	}

	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			last := res.State
			finish(StateCancelled)
			log.Warn("run cancelled", zap.Stringer("after", last), zap.Error(err))
			return res, fmt.Errorf("pipeline: cancelled before %s: %w", s.stage.Name(), err)
		}

		name := s.stage.Name()
		cur := res.Snapshot
		present := schema.PresentColumns(p.registry.Contract().Names(), cur.Columns())
		t0 := p.now()
		out, entry, err := s.stage.Apply(ctx, cur, present)
		entry.Duration = p.now().Sub(t0)
		metrics.RecordStep(p.job, name, err, entry.Duration)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				finish(StateCancelled)
				log.Warn("run cancelled", zap.String("stage", name), zap.Error(err))
				return res, fmt.Errorf("pipeline: cancelled during %s: %w", name, err)
			}
			finish(StateFailed)
			log.Error("stage failed", zap.String("stage", name), zap.Error(err))
			return res, fmt.Errorf("pipeline: stage %s: %w", name, err)
		}

		res.Snapshot = out
		res.State = s.after
		res.Report.Append(entry)
		res.Report.Bounds = append(res.Report.Bounds, entry.Bounds...)
		p.record(entry)

		log.Info("stage finished",
			zap.String("stage", name),
			zap.Int("rows_in", entry.RowsIn),
			zap.Int("rows_out", entry.RowsOut),
			zap.Strings("columns", entry.ColumnsTouched()),
			zap.Int("notices", len(entry.Notices)),
			zap.Duration("duration", entry.Duration),
		)
		for _, n := range entry.Notices {
			log.Debug("notice", zap.String("stage", name), zap.String("kind", string(n.Kind)), zap.String("column", n.Column), zap.Int("count", n.Count))
		}
		if p.onStage != nil {
			p.onStage(s.after, entry)
		}
	}

	finish(StateDone)
	log.Info("run finished", zap.Int("rows", res.Snapshot.Len()), zap.Duration("duration", res.Report.Duration))
	return res, nil
}

func (p *Pipeline) record(e report.Entry) {
	var filled, failures, outliers int
	for _, c := range e.Columns {
		filled += c.Filled
		failures += c.Failures
		outliers += c.Flagged
		if len(e.Bounds) > 0 {
			outliers += c.Dropped
		}
	}
	metrics.RecordRow(p.job, metrics.KindRowsRemoved, int64(e.RowsRemoved))
	metrics.RecordRow(p.job, metrics.KindValuesFilled, int64(filled))
	metrics.RecordRow(p.job, metrics.KindCoercionFailures, int64(failures))
	metrics.RecordRow(p.job, metrics.KindOutliers, int64(outliers))
}
