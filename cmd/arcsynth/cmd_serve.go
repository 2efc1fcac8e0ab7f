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

	"github.com/AleutianAI/AleutianARC/services/solver/api"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ac := state.cfg.API
	if serveAddr != "" {
		ac.Addr = serveAddr
	}

	db, store, err := openStore("")
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	opts := []api.Option{api.WithLogger(state.logger.Slog())}
	if store != nil {
		opts = append(opts, api.WithStore(store))
	}
	srv := api.NewServer(&api.Config{
		Addr:         ac.Addr,
		RateLimit:    ac.RateLimit,
		Burst:        ac.Burst,
		MaxBodyBytes: ac.MaxBodyBytes,
		MaxSize:      ac.MaxSize,
	}, newSolver(), opts...)
	return srv.Run(ctx)
}
