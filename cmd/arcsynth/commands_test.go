// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remapTask = `{
  "train": [
    {"input": [[1,2],[2,1]], "output": [[3,4],[4,3]]},
    {"input": [[2,2],[1,1]], "output": [[4,4],[3,3]]}
  ],
  "test": [
    {"input": [[1,1],[2,2]], "output": [[3,3],[4,4]]}
  ]
}`

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ARC_METRIC_EXPORTER", "none")
	t.Setenv("ARC_TRACE_EXPORTER", "none")
	t.Setenv("ARC_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		_ = teardown(nil, nil)
		rootCmd.SetArgs(nil)
		configPath, logLevel, logDir = "", "", ""
		benchStore, benchDetail, benchJSON = "", false, false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTask(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(remapTask), 0o600))
	return path
}

func TestSolveCommand(t *testing.T) {
	path := writeTask(t, t.TempDir(), "remap.json")
	out, err := execute(t, "solve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Task remap")
	assert.Contains(t, out, "solved by smart_color_map")
	assert.Contains(t, out, "test 0 (matches expected)")
	assert.Contains(t, out, "  3 3\n  4 4\n")
}

func TestPackUnpack(t *testing.T) {
	dir := t.TempDir()
	path := writeTask(t, dir, "remap.json")
	bin := filepath.Join(dir, "remap.bin")

	out, err := execute(t, "pack", path, bin)
	require.NoError(t, err)
	assert.Contains(t, out, "6 grids")

	out, err = execute(t, "unpack", bin)
	require.NoError(t, err)
	assert.Contains(t, out, "grid 0 (2x2)\n  1 2\n  2 1\n")
	assert.Contains(t, out, "grid 5 (2x2)\n  3 3\n  4 4\n")

	require.NoError(t, os.WriteFile(bin, []byte("nope"), 0o600))
	_, err = execute(t, "unpack", bin)
	assert.Error(t, err)
}

func TestBenchCommand(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "a.json")
	writeTask(t, dir, "b.json")
	store := filepath.Join(t.TempDir(), "store")

	out, err := execute(t, "bench", dir, "--store", store, "--json")
	require.NoError(t, err)

	var rep struct {
		Total  int     `json:"total"`
		Solved int     `json:"solved"`
		Score  float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 2, rep.Solved)
	assert.Equal(t, 1.0, rep.Score)
	assert.DirExists(t, store)

	out, err = execute(t, "bench", dir, "--store", store, "--detail")
	require.NoError(t, err)
	assert.Contains(t, out, "ARC benchmark")
	assert.Contains(t, out, "✓ a")
}

func TestCommandErrors(t *testing.T) {
	_, err := execute(t, "solve", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "solve", "x.json")
	assert.Error(t, err)

	_, err = execute(t, "pack", "only-one-arg")
	assert.Error(t, err)
}
