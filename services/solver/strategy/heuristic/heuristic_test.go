// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package heuristic

import (
	"context"
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/features"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(in, out [][]int) []task.Pair {
	return []task.Pair{{Input: grid.MustFromRows(in), Output: grid.MustFromRows(out)}}
}

func TestSingle_FlipWithSelectedPrimitives(t *testing.T) {
	ps := pair([][]int{{1, 2}, {3, 4}}, [][]int{{2, 1}, {4, 3}})
	prims := features.Select(features.Analyze(ps))

	c, ok := Single(context.Background(), ps, prims)
	require.True(t, ok)
	assert.Equal(t, MethodSingle, c.Method)
	assert.Equal(t, 1, c.Program.Size())
	assert.Equal(t, "FlipH", c.Program.Key())
	assert.LessOrEqual(t, c.Checked, len(prims))
}

func TestCompose2(t *testing.T) {
	ps := pair([][]int{{1, 2, 3}}, [][]int{{3, 2, 2}})
	prims := []*dsl.Program{
		dsl.Identity(),
		dsl.Op(dsl.KindFlipH),
		dsl.Op(dsl.KindReplaceColor, 1, 2),
	}

	_, ok := Single(context.Background(), ps, prims)
	assert.False(t, ok)

	c, ok := Compose2(context.Background(), ps, prims)
	require.True(t, ok)
	assert.Equal(t, MethodCompose2, c.Method)
	assert.Equal(t, "Seq(FlipH, ReplaceColor(1,2))", c.Program.Key())
	assert.Equal(t, 2, c.Checked, "identity pairs are skipped")
}

func TestHeuristic_NoCandidate(t *testing.T) {
	ps := pair([][]int{{1}}, [][]int{{5, 5}})
	prims := []*dsl.Program{dsl.Op(dsl.KindFlipH)}

	c, ok := Single(context.Background(), ps, prims)
	assert.False(t, ok)
	require.NotNil(t, c)
	assert.Nil(t, c.Program)
	assert.Equal(t, 1, c.Checked, "failed search still reports its work")

	c, ok = Compose2(context.Background(), ps, prims)
	assert.False(t, ok)
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Checked)

	_, ok = Single(context.Background(), nil, prims)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, ok = Single(ctx, pair([][]int{{1, 2}}, [][]int{{2, 1}}), prims)
	assert.False(t, ok)
	require.NotNil(t, c)
	assert.Zero(t, c.Checked)
}

func TestHeuristic_CountsEveryCheckOnFailure(t *testing.T) {
	ps := pair([][]int{{1, 2}, {3, 4}}, [][]int{{7, 7, 7}, {0, 1, 0}})
	prims := features.Select(features.Analyze(ps))
	require.NotEmpty(t, prims)
	require.Equal(t, dsl.KindIdentity, prims[0].Kind())

	c, ok := Single(context.Background(), ps, prims)
	require.False(t, ok)
	assert.Equal(t, len(prims), c.Checked)

	rest := len(prims) - 1
	c, ok = Compose2(context.Background(), ps, prims)
	require.False(t, ok)
	assert.Equal(t, rest*rest, c.Checked)
}
