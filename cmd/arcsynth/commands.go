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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianARC/pkg/logging"
	"github.com/AleutianAI/AleutianARC/services/solver/bench"
	"github.com/AleutianAI/AleutianARC/services/solver/config"
	"github.com/AleutianAI/AleutianARC/services/solver/storage"
	"github.com/AleutianAI/AleutianARC/services/solver/telemetry"
)

var (
	rootCmd = &cobra.Command{
		Use:   "arcsynth",
		Short: "Solve ARC tasks by program search",
		Long: `arcsynth searches a library of grid transformations for a program that
maps every training input of an ARC task to its output, then applies it to the
test inputs.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}
	configPath string
	logLevel   string
	logDir     string

	solveCmd = &cobra.Command{
		Use:   "solve [task.json]",
		Short: "Solve one task file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveMaxSize int

	benchCmd = &cobra.Command{
		Use:   "bench [dir]",
		Short: "Solve every task file in a directory and report accuracy",
		Args:  cobra.ExactArgs(1),
		RunE:  runBench,
	}
	benchWorkers  int
	benchMaxTasks int
	benchStore    string
	benchResume   bool
	benchDetail   bool
	benchJSON     bool

	watchCmd = &cobra.Command{
		Use:   "watch [dir]",
		Short: "Solve task files as they are written into a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchStore    string
	watchDebounce time.Duration

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveAddr string

	// --- Grid codec ---
	packCmd = &cobra.Command{
		Use:   "pack [task.json] [out.bin]",
		Short: "Encode a task's grids in the binary grid format",
		Args:  cobra.ExactArgs(2),
		RunE:  runPack,
	}
	unpackCmd = &cobra.Command{
		Use:   "unpack [in.bin]",
		Short: "Print the grids of a binary grid file",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnpack,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "also write JSON logs to this directory")

	solveCmd.Flags().IntVar(&solveMaxSize, "max-size", 0, "maximum composite program size (default from config)")

	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "tasks solved at once (default from config)")
	benchCmd.Flags().IntVar(&benchMaxTasks, "max-tasks", 0, "read at most this many task files")
	benchCmd.Flags().StringVar(&benchStore, "store", "", "badger directory for results")
	benchCmd.Flags().BoolVar(&benchResume, "resume", false, "skip tasks already solved in the store")
	benchCmd.Flags().BoolVar(&benchDetail, "detail", false, "print one line per task")
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "print the report as JSON")

	watchCmd.Flags().StringVar(&watchStore, "store", "", "badger directory for results")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", bench.DefaultDebounce, "quiet period before a file is solved")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")

	rootCmd.AddCommand(solveCmd, benchCmd, watchCmd, serveCmd, packCmd, unpackCmd)
}

// runtimeState is built by setup and torn down after the command.
type runtimeState struct {
	cfg      *config.Config
	logger   *logging.Logger
	shutdown func(context.Context) error
}

var state *runtimeState

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logDir != "" {
		cfg.Logging.Dir = logDir
	}
	lc, err := cfg.LoggerConfig("arcsynth")
	if err != nil {
		return err
	}
	lc.Output = cmd.ErrOrStderr()
	logger := logging.New(lc)
	slog.SetDefault(logger.Slog())

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		_ = logger.Close()
		return err
	}
	state = &runtimeState{cfg: cfg, logger: logger, shutdown: shutdown}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if state == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := state.shutdown(ctx)
	if cerr := state.logger.Close(); err == nil {
		err = cerr
	}
	state = nil
	return err
}

// openStore opens the result store at path, or returns nil when path is
// empty and the config does not ask for an in-memory store.
func openStore(path string) (*storage.DB, *storage.ResultStore, error) {
	sc := state.cfg.Storage
	if path != "" {
		sc.Path = path
	}
	if sc.Path == "" && !sc.InMemory {
		return nil, nil, nil
	}
	sc.Logger = state.logger.Slog().With(slog.String("component", "badger"))
	db, err := storage.OpenDB(sc)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return db, storage.NewResultStore(db), nil
}
