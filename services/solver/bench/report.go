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
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/AleutianAI/AleutianARC/pkg/ux"
	"github.com/AleutianAI/AleutianARC/services/solver/cascade"
	"github.com/AleutianAI/AleutianARC/services/solver/storage"
)

// TaskReport is one task's line in a report.
type TaskReport struct {
	TaskID      string        `json:"task_id"`
	Solved      bool          `json:"solved"`
	Method      string        `json:"method"`
	Program     string        `json:"program,omitempty"`
	ProgramSize int           `json:"program_size"`
	Checked     int           `json:"checked"`
	MDL         float64       `json:"-"`
	Elapsed     time.Duration `json:"elapsed"`

	// Resumed is set when the result came from the store.
	Resumed bool `json:"resumed,omitempty"`

	// Error records a failure to persist the result.
	Error string `json:"error,omitempty"`
}

// MethodCount is one entry of the method histogram.
type MethodCount struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
}

// SkippedFile is a task file that failed to load.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report aggregates a benchmark run.
type Report struct {
	RunID string `json:"run_id"`
	Dir   string `json:"dir"`

	Total  int     `json:"total"`
	Solved int     `json:"solved"`
	Score  float64 `json:"score"`

	// AvgMDL is the mean MDL over solved tasks, or 0 when none solved.
	AvgMDL float64 `json:"avg_mdl"`

	Elapsed time.Duration `json:"elapsed"`

	// Methods counts solved tasks per method, most frequent first and ties
	// by name.
	Methods []MethodCount `json:"methods"`

	// Tasks are sorted by task ID.
	Tasks   []TaskReport  `json:"tasks"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

func fromResult(res cascade.Result) TaskReport {
	tr := TaskReport{
		TaskID:      res.TaskID,
		Solved:      res.Solved,
		Method:      res.Method,
		ProgramSize: res.ProgramSize,
		Checked:     res.Checked,
		MDL:         res.MDL,
		Elapsed:     res.Elapsed,
	}
	if res.Program != nil {
		tr.Program = res.Program.String()
	}
	return tr
}

func fromRecord(rec storage.Record) TaskReport {
	tr := TaskReport{
		TaskID:      rec.TaskID,
		Solved:      rec.Solved,
		Method:      rec.Method,
		Program:     rec.Program,
		ProgramSize: rec.ProgramSize,
		Checked:     rec.Checked,
		MDL:         math.Inf(1),
		Elapsed:     time.Duration(rec.ElapsedMS) * time.Millisecond,
		Resumed:     true,
	}
	if rec.MDL != nil {
		tr.MDL = *rec.MDL
	}
	return tr
}

// Aggregate builds a report from per-task results. RunID, Dir, Elapsed
// and Skipped are left for the caller.
func Aggregate(tasks []TaskReport) *Report {
	rep := &Report{Tasks: slices.Clone(tasks)}
	slices.SortStableFunc(rep.Tasks, func(a, b TaskReport) int {
		return cmp.Compare(a.TaskID, b.TaskID)
	})

	counts := map[string]int{}
	mdlSum, mdlN := 0.0, 0
	for _, t := range rep.Tasks {
		rep.Total++
		if !t.Solved {
			continue
		}
		rep.Solved++
		counts[t.Method]++
		if !math.IsInf(t.MDL, 0) && !math.IsNaN(t.MDL) {
			mdlSum += t.MDL
			mdlN++
		}
	}
	if rep.Total > 0 {
		rep.Score = float64(rep.Solved) / float64(rep.Total)
	}
	if mdlN > 0 {
		rep.AvgMDL = mdlSum / float64(mdlN)
	}

	for m, n := range counts {
		rep.Methods = append(rep.Methods, MethodCount{Method: m, Count: n})
	}
	slices.SortFunc(rep.Methods, func(a, b MethodCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})
	return rep
}

// Render prints the report. Output is styled when w is a terminal.
// With detail every task gets its own line.
func (r *Report) Render(w io.Writer, detail bool) error {
	p := ux.NewPrinter(w)

	p.Title("ARC benchmark")
	if r.RunID != "" {
		p.Muted("run %s  %s", r.RunID, r.Dir)
	}
	p.KV("tasks", r.Total)
	p.KV("solved", fmt.Sprintf("%d (%.1f%%)", r.Solved, 100*r.Score))
	p.KV("avg mdl", fmt.Sprintf("%.2f", r.AvgMDL))
	p.KV("elapsed", r.Elapsed.Round(time.Millisecond))
	if len(r.Skipped) > 0 {
		p.KV("skipped", len(r.Skipped))
	}

	if len(r.Methods) > 0 {
		lines := make([]string, len(r.Methods))
		for i, m := range r.Methods {
			lines[i] = fmt.Sprintf("%-22s %d", m.Method, m.Count)
		}
		p.Line("")
		p.Title("Methods")
		p.Box(lines...)
	}

	if detail {
		p.Line("")
		p.Title("Tasks")
		for _, t := range r.Tasks {
			icon := ux.IconError
			if t.Solved {
				icon = ux.IconSuccess
			}
			line := fmt.Sprintf("%-12s %-22s checked=%d", t.TaskID, t.Method, t.Checked)
			if t.Program != "" {
				line += " " + t.Program
			}
			if t.Resumed {
				line += " (resumed)"
			}
			p.Status(icon, "%s", line)
		}
		for _, s := range r.Skipped {
			p.Status(ux.IconWarning, "%s: %s", s.Path, s.Reason)
		}
	}
	return p.Err()
}
