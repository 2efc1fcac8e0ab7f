// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

// DefaultDebounce is how long a file must be quiet before it is solved.
const DefaultDebounce = 200 * time.Millisecond

// Watcher solves task files as they are written into a directory.
//
// Description:
//
//	Create and write events for *.json files are collected and solved
//	once no event has arrived for the debounce window, so a file written
//	in several chunks is read once. A file that does not parse yet is
//	retried on its next event. Each watch session has one run ID and
//	persists through the runner's store like a benchmark run.
//
// Thread Safety: Run must be called at most once.
type Watcher struct {
	runner   *Runner
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	runID    string
}

// NewWatcher starts watching dir. Events are only collected once Run is
// called, but files written between NewWatcher and Run are not lost.
//
// Inputs:
//   - debounce: Quiet period before solving. Zero uses DefaultDebounce.
func (r *Runner) NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	if r.solver == nil {
		return nil, ErrNoSolver
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	r.initMetrics()
	return &Watcher{
		runner:   r,
		dir:      dir,
		watcher:  fw,
		debounce: debounce,
		runID:    uuid.NewString(),
	}, nil
}

// RunID identifies the results this watcher persists.
func (w *Watcher) RunID() string { return w.runID }

// Run solves files until ctx ends, calling onResult after each task.
// It always closes the underlying watcher and returns nil on a clean stop.
func (w *Watcher) Run(ctx context.Context, onResult func(TaskReport)) error {
	defer w.watcher.Close()
	logger := w.runner.logger.With(slog.String("run_id", w.runID))
	logger.Info("watching for tasks", slog.String("dir", w.dir))

	pending := map[string]bool{}
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			for _, p := range paths {
				if ctx.Err() != nil {
					return nil
				}
				delete(pending, p)
				t, err := task.Load(p)
				if err != nil {
					logger.Debug("task not ready", slog.String("path", p), slog.String("error", err.Error()))
					continue
				}
				tr := w.runner.solveOne(ctx, w.runID, t)
				logger.Info("solved watched task",
					slog.String("task_id", tr.TaskID),
					slog.Bool("solved", tr.Solved),
					slog.String("method", tr.Method),
				)
				if onResult != nil {
					onResult(tr)
				}
			}
		}
	}
}
