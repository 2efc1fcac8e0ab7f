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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianARC/pkg/ux"
	"github.com/AleutianAI/AleutianARC/services/solver/bench"
)

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, store, err := openStore(watchStore)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	opts := []bench.Option{bench.WithLogger(state.logger.Slog())}
	if store != nil {
		opts = append(opts, bench.WithStore(store))
	}
	runner := bench.NewRunner(&bench.Config{MaxSize: state.cfg.Bench.MaxSize}, newSolver(), opts...)
	w, err := runner.NewWatcher(args[0], watchDebounce)
	if err != nil {
		return err
	}

	p := ux.NewPrinter(cmd.OutOrStdout())
	p.Muted("watching %s (run %s), Ctrl-C to stop", args[0], w.RunID())
	err = w.Run(ctx, func(tr bench.TaskReport) {
		if tr.Solved {
			p.Status(ux.IconSuccess, "%s %s %s", tr.TaskID, tr.Method, tr.Program)
			return
		}
		p.Status(ux.IconError, "%s unsolved (checked %d)", tr.TaskID, tr.Checked)
	})
	if err != nil {
		return err
	}
	return p.Err()
}
