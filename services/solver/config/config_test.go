// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianARC/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10*time.Second, cfg.Solver.Budget)
	assert.Equal(t, 2, cfg.Solver.BruteDepth)
	assert.Equal(t, 5000, cfg.Solver.Bidir.MaxNodes)
	assert.Equal(t, 20000, cfg.Solver.DAG.MaxNodes)
	assert.Equal(t, 30, cfg.Solver.Evolve.Population)
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "arc.yaml", `
solver:
  budget: 2s
  bidir:
    max_nodes: 100
bench:
  workers: 8
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Solver.Budget)
	assert.Equal(t, 100, cfg.Solver.Bidir.MaxNodes)
	assert.Equal(t, 3, cfg.Solver.Bidir.MaxDepth, "sibling fields keep defaults")
	assert.Equal(t, 8, cfg.Bench.Workers)
	assert.Equal(t, 3, cfg.Bench.MaxSize)

	lc, err := cfg.LoggerConfig("bench")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "bench", lc.Service)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "arc.json", `{"bench": {"workers": 2, "max_size": 2}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Bench.Workers)
	assert.Equal(t, 2, cfg.Bench.MaxSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "arc.yaml", "bench:\n  workers: 8\n")
	t.Setenv("ARC_WORKERS", "3")
	t.Setenv("ARC_BUDGET", "750ms")
	t.Setenv("ARC_SEED", "0x10")
	t.Setenv("ARC_API_RATE", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Bench.Workers)
	assert.Equal(t, 750*time.Millisecond, cfg.Solver.Budget)
	assert.Equal(t, uint64(16), cfg.Solver.Evolve.Seed)
	assert.Equal(t, 5.0, cfg.API.RateLimit, "unparseable values are ignored")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "bench: [unterminated"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "bench:\n  workers: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "zipkin" }},
		{"zero bidir depth", func(c *Config) { c.Solver.Bidir.MaxDepth = 0 }},
		{"brute depth four", func(c *Config) { c.Solver.BruteDepth = 4 }},
		{"tiny population", func(c *Config) { c.Solver.Evolve.Population = 2 }},
		{"missing strategy", func(c *Config) { c.Solver.DAG = nil }},
		{"rate without burst", func(c *Config) { c.API.Burst = 0 }},
		{"resume without store", func(c *Config) { c.Bench.Resume = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	cfg := Default()
	cfg.Bench.Resume = true
	cfg.Storage.Path = t.TempDir()
	assert.NoError(t, cfg.Validate())
}
