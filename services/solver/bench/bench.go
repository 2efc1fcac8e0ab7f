// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bench solves a directory of tasks and aggregates the results.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianARC/services/solver/cascade"
	"github.com/AleutianAI/AleutianARC/services/solver/storage"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

var meter = otel.Meter("aleutian.arc.bench")

// ErrNoSolver is returned when a runner was built without a solver.
var ErrNoSolver = errors.New("bench: runner has no solver")

// Config configures a benchmark run.
type Config struct {
	// Workers is the number of tasks solved at once.
	Workers int

	// MaxTasks limits the task files read. Zero means all.
	MaxTasks int

	// MaxSize is passed to the cascade as the maximum composite size.
	MaxSize int

	// Resume skips tasks the store already has as solved.
	Resume bool
}

// DefaultConfig returns four workers, all tasks and composite size 3.
func DefaultConfig() *Config {
	return &Config{Workers: 4, MaxSize: 3}
}

// Solver is the part of the cascade the runner needs.
type Solver interface {
	SolveTask(ctx context.Context, t *task.Task, maxSize int) cascade.Result
}

// Runner solves task directories.
//
// Description:
//
//	Tasks are solved concurrently by a bounded errgroup, each with the
//	solver's own per-task budget. Results are written into per-task slots
//	so the report order never depends on scheduling. When a store is set
//	every result is persisted, and with Resume tasks already solved in the
//	store are reported from it without solving.
//
// Thread Safety: Safe for concurrent use. Each Run has its own run ID.
type Runner struct {
	config *Config
	solver Solver
	store  *storage.ResultStore
	logger *slog.Logger

	metricsOnce sync.Once
	tasksTotal  metric.Int64Counter
	taskLatency metric.Float64Histogram
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists results in store.
func WithStore(store *storage.ResultStore) Option {
	return func(r *Runner) { r.store = store }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner.
//
// Inputs:
//   - config: If nil, uses DefaultConfig().
//   - solver: Must not be nil; usually a *cascade.Solver.
func NewRunner(config *Config, solver Solver, opts ...Option) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	r := &Runner{config: config, solver: solver, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "bench"))
	return r
}

// initMetrics creates the instruments on first use, so they bind to
// whichever meter provider telemetry installed.
func (r *Runner) initMetrics() {
	r.metricsOnce.Do(func() {
		var err error
		r.tasksTotal, err = meter.Int64Counter("arc_bench_tasks_total",
			metric.WithDescription("Benchmark tasks by outcome"),
		)
		if err != nil {
			r.logger.Warn("create arc_bench_tasks_total", slog.String("error", err.Error()))
		}
		r.taskLatency, err = meter.Float64Histogram("arc_bench_task_duration_seconds",
			metric.WithDescription("Per-task solve time"),
			metric.WithUnit("s"),
		)
		if err != nil {
			r.logger.Warn("create arc_bench_task_duration_seconds", slog.String("error", err.Error()))
		}
	})
}

// Run solves every task file in dir.
//
// Outputs:
//
//	*Report - Aggregate and per-task results. Files that fail to load are
//	          listed in Report.Skipped and do not count toward Total.
//	error   - Non-nil when dir cannot be read, the store cannot be read
//	          for resume, or ctx ends before every task is reported.
func (r *Runner) Run(ctx context.Context, dir string) (*Report, error) {
	if r.solver == nil {
		return nil, ErrNoSolver
	}
	r.initMetrics()
	start := time.Now()
	runID := uuid.NewString()

	tasks, loadErrs, err := task.LoadDir(dir, r.config.MaxTasks)
	if err != nil {
		return nil, err
	}
	for _, le := range loadErrs {
		r.logger.Warn("skipping task file",
			slog.String("path", le.Path),
			slog.String("error", le.Err.Error()),
		)
	}

	done := map[string]storage.Record{}
	if r.config.Resume && r.store != nil {
		recs, err := r.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("read store for resume: %w", err)
		}
		for _, rec := range recs {
			if rec.Solved {
				done[rec.TaskID] = rec
			}
		}
	}

	r.logger.Info("benchmark started",
		slog.String("run_id", runID),
		slog.String("dir", dir),
		slog.Int("tasks", len(tasks)),
		slog.Int("skipped_files", len(loadErrs)),
		slog.Int("resumed", len(done)),
		slog.Int("workers", r.config.Workers),
	)

	reports := make([]TaskReport, len(tasks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.config.Workers))
	for i, t := range tasks {
		g.Go(func() error {
			if rec, ok := done[t.ID]; ok {
				reports[i] = fromRecord(rec)
				return nil
			}
			if err := gCtx.Err(); err != nil {
				return err
			}
			reports[i] = r.solveOne(gCtx, runID, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("benchmark interrupted: %w", err)
	}

	rep := Aggregate(reports)
	rep.RunID = runID
	rep.Dir = dir
	rep.Elapsed = time.Since(start)
	for _, le := range loadErrs {
		rep.Skipped = append(rep.Skipped, SkippedFile{Path: le.Path, Reason: le.Err.Error()})
	}

	r.logger.Info("benchmark finished",
		slog.String("run_id", runID),
		slog.Int("total", rep.Total),
		slog.Int("solved", rep.Solved),
		slog.Float64("score", rep.Score),
		slog.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func (r *Runner) solveOne(ctx context.Context, runID string, t *task.Task) TaskReport {
	res := r.solver.SolveTask(ctx, t, r.config.MaxSize)
	tr := fromResult(res)

	attrs := metric.WithAttributes(attribute.Bool("solved", res.Solved))
	if r.tasksTotal != nil {
		r.tasksTotal.Add(ctx, 1, attrs)
	}
	if r.taskLatency != nil {
		r.taskLatency.Record(ctx, res.Elapsed.Seconds(), attrs)
	}

	if r.store != nil {
		if err := r.store.Put(ctx, storage.RecordOf(runID, res), res.Predictions...); err != nil {
			tr.Error = err.Error()
			r.logger.Warn("persist result",
				slog.String("task_id", t.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return tr
}
