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
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianARC/pkg/ux"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

// runPack writes every grid of a task, input then output for each train
// pair followed by each test pair.
func runPack(cmd *cobra.Command, args []string) error {
	t, err := task.Load(args[0])
	if err != nil {
		return err
	}
	var grids []grid.Grid
	for _, p := range t.AllPairs() {
		grids = append(grids, p.Input, p.Output)
	}
	data, err := grid.MarshalGrids(grids...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", args[1], err)
	}
	state.logger.Info("packed task",
		slog.String("task_id", t.ID),
		slog.Int("grids", len(grids)),
		slog.Int("bytes", len(data)),
	)
	p := ux.NewPrinter(cmd.OutOrStdout())
	p.Status(ux.IconSuccess, "%s: %d grids, %d bytes", args[1], len(grids), len(data))
	return p.Err()
}

func runUnpack(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	grids, err := grid.UnmarshalGrids(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	p := ux.NewPrinter(cmd.OutOrStdout())
	for i, g := range grids {
		p.Title(fmt.Sprintf("grid %d (%dx%d)", i, g.Rows(), g.Cols()))
		p.Box(formatGrid(g)...)
	}
	return p.Err()
}
