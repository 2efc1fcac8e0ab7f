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
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianARC/services/solver/bench"
)

func runBench(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bc := state.cfg.Bench
	if cmd.Flags().Changed("workers") {
		bc.Workers = benchWorkers
	}
	if cmd.Flags().Changed("max-tasks") {
		bc.MaxTasks = benchMaxTasks
	}
	if cmd.Flags().Changed("resume") {
		bc.Resume = benchResume
	}

	db, store, err := openStore(benchStore)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	if bc.Resume && store == nil {
		return errors.New("--resume needs --store or storage.path")
	}

	opts := []bench.Option{bench.WithLogger(state.logger.Slog())}
	if store != nil {
		opts = append(opts, bench.WithStore(store))
	}
	runner := bench.NewRunner(&bench.Config{
		Workers:  bc.Workers,
		MaxTasks: bc.MaxTasks,
		MaxSize:  bc.MaxSize,
		Resume:   bc.Resume,
	}, newSolver(), opts...)

	rep, err := runner.Run(ctx, args[0])
	if err != nil {
		return err
	}
	if benchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return rep.Render(cmd.OutOrStdout(), benchDetail)
}
