// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cascade runs the search strategies in a fixed order, cheapest
// first, until one produces a program that reproduces every training and
// test output.
package cascade

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/features"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/mdl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/bidir"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/brute"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/cellular"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/dagsearch"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/evolve"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/smart"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// MethodNone is reported for unsolved tasks.
const MethodNone = "none"

// Stage outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeRejected    = "rejected"
	OutcomeNoCandidate = "no_candidate"
	OutcomeSkipped     = "skipped"
)

// =============================================================================
// Configuration
// =============================================================================

// Config configures the cascade and every strategy in it.
type Config struct {
	// Budget is the wall-clock allowance per task. It is checked before
	// each gated stage. Zero disables the deadline.
	Budget time.Duration `yaml:"budget" json:"budget" validate:"gte=0"`

	// BruteDepth is the deepest brute-force enumeration. The caller's
	// maximum composite size lowers it further.
	BruteDepth int `yaml:"brute_depth" json:"brute_depth" validate:"gte=1,lte=3"`

	Smart    *smart.Config     `yaml:"smart" json:"smart" validate:"required"`
	Cellular *cellular.Config  `yaml:"cellular" json:"cellular" validate:"required"`
	Bidir    *bidir.Config     `yaml:"bidir" json:"bidir" validate:"required"`
	DAG      *dagsearch.Config `yaml:"dag" json:"dag" validate:"required"`
	Brute    *brute.Config     `yaml:"brute" json:"brute" validate:"required"`
	Evolve   *evolve.Config    `yaml:"evolve" json:"evolve" validate:"required"`
}

// DefaultConfig returns a ten second budget, brute depth two, and each
// strategy's defaults.
func DefaultConfig() *Config {
	return &Config{
		Budget:     10 * time.Second,
		BruteDepth: 2,
		Smart:      smart.DefaultConfig(),
		Cellular:   cellular.DefaultConfig(),
		Bidir:      bidir.DefaultConfig(),
		DAG:        dagsearch.DefaultConfig(),
		Brute:      brute.DefaultConfig(),
		Evolve:     evolve.DefaultConfig(),
	}
}

// =============================================================================
// Result
// =============================================================================

// StageReport records what one stage did for one task.
type StageReport struct {
	Name    string        `json:"name"`
	Outcome string        `json:"outcome"`
	Method  string        `json:"method,omitempty"`
	Checked int           `json:"checked"`
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the outcome of solving one task.
//
// Description:
//
//	Program, Predictions and a finite MDL are only set when Solved.
//	ProgramSize counts primitive steps, so Seq(FlipH, FlipV) has size 2.
//	Checked is the running sum of what every stage examined, whether it
//	proposed a candidate or not, so an unsolved task keeps its count.
type Result struct {
	TaskID      string        `json:"task_id"`
	Solved      bool          `json:"solved"`
	Method      string        `json:"method"`
	ProgramSize int           `json:"program_size"`
	Checked     int           `json:"checked"`
	MDL         float64       `json:"-"`
	Program     *dsl.Program  `json:"-"`
	Predictions []grid.Grid   `json:"-"`
	Elapsed     time.Duration `json:"elapsed"`
	Stages      []StageReport `json:"stages"`
}

// =============================================================================
// Solver
// =============================================================================

// Solver runs the cascade.
//
// Thread Safety: Safe for concurrent use. Stages keep no state between
// calls and every task gets its own budget.
type Solver struct {
	config *Config
	logger *slog.Logger
	stages []Stage
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStages replaces the default stages.
func WithStages(stages ...Stage) Option {
	return func(s *Solver) {
		s.stages = stages
	}
}

// New creates a solver.
//
// Inputs:
//   - config: Configuration. If nil, uses DefaultConfig().
//   - opts: Optional logger and stage overrides.
func New(config *Config, opts ...Option) *Solver {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Solver{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stages == nil {
		s.stages = DefaultStages(config)
	}
	s.logger = s.logger.With(slog.String("component", "cascade"))
	return s
}

// Stages returns the stage names in order.
func (s *Solver) Stages() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.Name
	}
	return names
}

// SolveTask runs the cascade on t.
//
// Description:
//
//	Stages run in order. A candidate is accepted only when it reproduces
//	every training and test output exactly; otherwise it is discarded and
//	the next stage runs. Earlier stages are never retried. Before each
//	gated stage the task budget is checked, and once it has expired the
//	remaining stages are skipped. The budget is cooperative: a stage
//	already running may overrun it.
//
// Inputs:
//   - ctx: Parent context. Its cancellation ends the cascade like an
//     expired budget.
//   - t: The task. A nil task or one without training pairs is unsolved.
//   - maxSize: Maximum composite size. Values below one leave the
//     configured depths unchanged.
//
// Outputs:
//
//	Result - Never an error; an unsolved task has Method "none" and MDL +Inf.
func (s *Solver) SolveTask(ctx context.Context, t *task.Task, maxSize int) Result {
	start := time.Now()
	res := Result{Method: MethodNone, MDL: math.Inf(1)}
	if t == nil {
		return res
	}
	res.TaskID = t.ID

	ctx, span := tracer.Start(ctx, "cascade.SolveTask",
		trace.WithAttributes(
			attribute.String("task.id", t.ID),
			attribute.Int("task.train", len(t.Train)),
			attribute.Int("task.test", len(t.Test)),
		),
	)
	defer span.End()

	if s.config.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Budget)
		defer cancel()
	}

	if len(t.Train) > 0 {
		problem := &strategy.Problem{
			Train:   t.Train,
			Prims:   features.Select(features.Analyze(t.Train)),
			MaxSize: maxSize,
		}
		s.run(ctx, t, problem, &res)
	}

	res.Elapsed = time.Since(start)
	tasksTotal.WithLabelValues(strconv.FormatBool(res.Solved)).Inc()
	span.SetAttributes(
		attribute.Bool("solved", res.Solved),
		attribute.String("method", res.Method),
		attribute.Int("checked", res.Checked),
	)
	span.SetStatus(codes.Ok, "")

	s.logger.Info("task finished",
		slog.String("task_id", t.ID),
		slog.Bool("solved", res.Solved),
		slog.String("method", res.Method),
		slog.Int("program_size", res.ProgramSize),
		slog.Int("checked", res.Checked),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res
}

// run executes stages until one is accepted.
func (s *Solver) run(ctx context.Context, t *task.Task, problem *strategy.Problem, res *Result) {
	all := t.AllPairs()
	for i, st := range s.stages {
		if st.Gated && strategy.Done(ctx) {
			for _, rest := range s.stages[i:] {
				res.Stages = append(res.Stages, StageReport{Name: rest.Name, Outcome: OutcomeSkipped})
				stageRuns.WithLabelValues(rest.Name, OutcomeSkipped).Inc()
			}
			s.logger.Debug("budget exhausted",
				slog.String("task_id", t.ID),
				slog.String("next_stage", st.Name),
			)
			return
		}

		report, cand := s.runStage(ctx, st, problem, all)
		res.Stages = append(res.Stages, report)
		res.Checked += report.Checked
		if report.Outcome != OutcomeAccepted {
			continue
		}

		res.Solved = true
		res.Method = cand.Method
		res.Program = cand.Program
		res.ProgramSize = cand.Program.Depth()
		res.MDL = mdl.Score(cand.Program, t.Train)
		res.Predictions = make([]grid.Grid, len(t.Test))
		for j, p := range t.Test {
			res.Predictions[j] = dsl.Apply(cand.Program, p.Input)
		}
		return
	}
}

// runStage runs one stage in its own span and verifies its candidate.
func (s *Solver) runStage(ctx context.Context, st Stage, problem *strategy.Problem, all []task.Pair) (StageReport, *strategy.Candidate) {
	ctx, span := tracer.Start(ctx, "cascade.stage."+st.Name,
		trace.WithAttributes(attribute.String("stage", st.Name)),
	)
	defer span.End()

	start := time.Now()
	report := StageReport{Name: st.Name, Outcome: OutcomeNoCandidate}

	cand, ok := st.Run(ctx, problem)
	if cand != nil {
		report.Checked = cand.Checked
	}
	if ok && cand != nil && cand.Program != nil {
		report.Method = cand.Method
		if verify.Exact(cand.Program, all) {
			report.Outcome = OutcomeAccepted
		} else {
			report.Outcome = OutcomeRejected
		}
	}
	report.Elapsed = time.Since(start)

	stageRuns.WithLabelValues(st.Name, report.Outcome).Inc()
	stageDuration.WithLabelValues(st.Name).Observe(report.Elapsed.Seconds())
	span.SetAttributes(
		attribute.String("outcome", report.Outcome),
		attribute.Int("checked", report.Checked),
	)
	span.SetStatus(codes.Ok, "")

	s.logger.Debug("stage finished",
		slog.String("stage", st.Name),
		slog.String("outcome", report.Outcome),
		slog.String("method", report.Method),
		slog.Int("checked", report.Checked),
		slog.Duration("elapsed", report.Elapsed),
	)

	if report.Outcome != OutcomeAccepted {
		return report, nil
	}
	return report, cand
}
