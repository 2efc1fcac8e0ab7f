// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package brute

import (
	"context"
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(in, out [][]int) []task.Pair {
	return []task.Pair{{Input: grid.MustFromRows(in), Output: grid.MustFromRows(out)}}
}

func TestEnumerator_DepthOne(t *testing.T) {
	e := New(nil)
	assert.Equal(t, "brute", e.Name())

	c, ok := e.Solve(context.Background(), pair([][]int{{1, 2}}, [][]int{{2, 1}}), 3)
	require.True(t, ok)
	assert.Equal(t, Method, c.Method)
	assert.Equal(t, "FlipH", c.Program.Key())
	assert.Equal(t, 5, c.Checked, "Identity and three rotations come first")
}

func TestEnumerator_DepthTwo(t *testing.T) {
	ps := pair([][]int{{1, 2, 3}}, [][]int{{3, 2, 2}})

	_, ok := New(nil).Solve(context.Background(), ps, 1)
	assert.False(t, ok)

	c, ok := New(nil).Solve(context.Background(), ps, 2)
	require.True(t, ok)
	assert.Equal(t, 3, c.Program.Size())
	assert.True(t, dsl.Apply(c.Program, ps[0].Input).Equal(ps[0].Output))
	assert.Greater(t, c.Checked, len(dsl.Catalog()))
}

// TestEnumerator_DepthThree needs three independent colour swaps, each of
// which scores a third on its own.
func TestEnumerator_DepthThree(t *testing.T) {
	ps := pair([][]int{{1, 3, 5}}, [][]int{{2, 4, 6}})

	_, ok := New(nil).Solve(context.Background(), ps, 2)
	assert.False(t, ok)

	c, ok := New(nil).Solve(context.Background(), ps, 3)
	require.True(t, ok)
	assert.Equal(t, 3, c.Program.Depth())
	assert.True(t, dsl.Apply(c.Program, ps[0].Input).Equal(ps[0].Output))

	cfg := DefaultConfig()
	cfg.Depth3Cap = len(dsl.Catalog())*len(dsl.Catalog()) + len(dsl.Catalog()) + 1
	_, ok = New(cfg).Solve(context.Background(), ps, 3)
	assert.False(t, ok, "depth 3 cap")
}

func TestEnumerator_Rank(t *testing.T) {
	e := New(nil)
	top := e.rank(pair([][]int{{1, 3, 5}}, [][]int{{2, 4, 6}}))
	require.NotEmpty(t, top)
	assert.LessOrEqual(t, len(top), 20)

	keys := make(map[string]bool)
	for _, p := range top {
		keys[p.Key()] = true
	}
	assert.True(t, keys["ReplaceColor(1,2)"])
	assert.True(t, keys["ReplaceColor(5,6)"])
	assert.False(t, keys["Identity"])
}

func TestEnumerator_Limits(t *testing.T) {
	ps := pair([][]int{{1, 2, 3}}, [][]int{{3, 2, 2}})

	cfg := DefaultConfig()
	cfg.Depth2Cap = len(dsl.Catalog()) + 1
	c, ok := New(cfg).Solve(context.Background(), ps, 2)
	assert.False(t, ok, "depth 2 cap")
	require.NotNil(t, c)
	assert.Equal(t, cfg.Depth2Cap, c.Checked, "work up to the cap is reported")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = New(nil).Solve(ctx, ps, 2)
	assert.False(t, ok)

	_, ok = New(nil).Solve(context.Background(), nil, 2)
	assert.False(t, ok)
}
