// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianARC/pkg/ux"
	"github.com/AleutianAI/AleutianARC/services/solver/cascade"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

func newSolver() *cascade.Solver {
	return cascade.New(state.cfg.Solver, cascade.WithLogger(state.logger.Slog()))
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, err := task.Load(args[0])
	if err != nil {
		return err
	}
	maxSize := solveMaxSize
	if maxSize <= 0 {
		maxSize = state.cfg.Bench.MaxSize
	}

	res := newSolver().SolveTask(ctx, t, maxSize)

	p := ux.NewPrinter(cmd.OutOrStdout())
	p.Title("Task " + t.ID)
	if res.Solved {
		p.Status(ux.IconSuccess, "solved by %s", res.Method)
		p.KV("program", res.Program)
		p.KV("size", res.ProgramSize)
		p.KV("mdl", fmt.Sprintf("%.2f", res.MDL))
	} else {
		p.Status(ux.IconError, "no program found")
	}
	p.KV("checked", res.Checked)
	p.KV("elapsed", res.Elapsed)

	for _, st := range res.Stages {
		p.Muted("  %-20s %-12s checked=%d", st.Name, st.Outcome, st.Checked)
	}

	for i, pred := range res.Predictions {
		p.Line("")
		label := fmt.Sprintf("test %d", i)
		if i < len(t.Test) && !t.Test[i].Output.IsEmpty() {
			if pred.Equal(t.Test[i].Output) {
				label += " (matches expected)"
			} else {
				label += " (differs from expected)"
			}
		}
		p.Title(label)
		p.Box(formatGrid(pred)...)
	}
	return p.Err()
}

// formatGrid renders one line of digits per row.
func formatGrid(g grid.Grid) []string {
	return strings.Split(g.String(), "\n")
}
