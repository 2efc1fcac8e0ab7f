// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package bidir

import (
	"context"
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ops(kinds ...dsl.Kind) []*dsl.Program {
	out := make([]*dsl.Program, len(kinds))
	for i, k := range kinds {
		out[i] = dsl.Op(k)
	}
	return out
}

func flipBoth() []task.Pair {
	in := grid.MustFromRows([][]int{{1, 2, 3}, {4, 5, 6}})
	out := dsl.Apply(dsl.Seq(dsl.Op(dsl.KindFlipH), dsl.Op(dsl.KindFlipV)), in)
	return []task.Pair{{Input: in, Output: out}}
}

// TestSearch_MeetsInTheMiddle verifies a two-step answer is found with one
// step from each side.
func TestSearch_MeetsInTheMiddle(t *testing.T) {
	pairs := flipBoth()
	prims := ops(dsl.KindRotateCW, dsl.KindFlipH, dsl.KindFlipV, dsl.KindTranspose)

	c, ok := New(nil).Solve(context.Background(), pairs, prims)
	require.True(t, ok)
	assert.Equal(t, "bidir_1f_1b", c.Method)
	assert.Equal(t, 1, c.ForwardDepth)
	assert.Equal(t, 1, c.BackwardDepth)
	assert.Equal(t, 2, c.Program.Depth(), "two primitive steps")
	assert.True(t, dsl.Apply(c.Program, pairs[0].Input).Equal(pairs[0].Output))
	assert.Greater(t, c.Checked, 2)
}

// TestSearch_NonSelfInverseReconstruction checks a backward path made of
// rotations is reconstructed in the right direction.
func TestSearch_NonSelfInverseReconstruction(t *testing.T) {
	in := grid.MustFromRows([][]int{{1, 2, 3}, {4, 5, 0}})
	want := dsl.Chain(dsl.Op(dsl.KindGravityDown), dsl.Op(dsl.KindRotateCW), dsl.Op(dsl.KindRotateCW))
	pairs := []task.Pair{{Input: in, Output: dsl.Apply(want, in)}}

	c, ok := New(nil).Solve(context.Background(), pairs, ops(dsl.KindGravityDown, dsl.KindRotateCW))
	require.True(t, ok)
	assert.True(t, dsl.Apply(c.Program, in).Equal(pairs[0].Output), "%s", c.Program)
}

// TestSearch_ForwardOnly verifies lossy primitives still meet the target
// root.
func TestSearch_ForwardOnly(t *testing.T) {
	pairs := []task.Pair{{
		Input:  grid.MustFromRows([][]int{{1}, {0}}),
		Output: grid.MustFromRows([][]int{{0}, {1}}),
	}}
	c, ok := New(nil).Solve(context.Background(), pairs, ops(dsl.KindIdentity, dsl.KindGravityDown))
	require.True(t, ok)
	assert.Equal(t, "bidir_1f_0b", c.Method)
	assert.Equal(t, "GravityDown", c.Program.Key())
}

func TestSearch_Identity(t *testing.T) {
	g := grid.MustFromRows([][]int{{1, 2}})
	c, ok := New(nil).Solve(context.Background(), []task.Pair{{Input: g, Output: g}}, nil)
	require.True(t, ok)
	assert.Equal(t, "bidir_0f_0b", c.Method)
	assert.Equal(t, dsl.KindIdentity, c.Program.Kind())
}

// TestSearch_VerifiesEveryPair rejects a program that only fits pair 0.
func TestSearch_VerifiesEveryPair(t *testing.T) {
	pairs := append(flipBoth(), task.Pair{
		Input:  grid.MustFromRows([][]int{{1, 2}}),
		Output: grid.MustFromRows([][]int{{1, 2}}),
	})
	_, ok := New(nil).Solve(context.Background(), pairs, ops(dsl.KindFlipH, dsl.KindFlipV))
	assert.False(t, ok)
}

func TestSearch_Budgets(t *testing.T) {
	pairs := flipBoth()
	prims := ops(dsl.KindFlipH, dsl.KindFlipV)

	_, ok := New(&Config{MaxNodes: 2, MaxDepth: 3}).Solve(context.Background(), pairs, prims)
	assert.False(t, ok, "node budget")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = New(nil).Solve(ctx, pairs, prims)
	assert.False(t, ok, "cancelled")

	_, ok = New(nil).Solve(context.Background(), nil, prims)
	assert.False(t, ok)
	assert.Equal(t, "bidir", New(nil).Name())
}
