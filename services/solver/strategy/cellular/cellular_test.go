// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cellular

import (
	"context"
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(in, out [][]int) task.Pair {
	return task.Pair{Input: grid.MustFromRows(in), Output: grid.MustFromRows(out)}
}

// growPairs: a zero next to a one becomes one. Pair 0 saturates in one
// step; pair 1 needs two.
func growPairs() []task.Pair {
	return []task.Pair{
		pair([][]int{{1, 0}}, [][]int{{1, 1}}),
		pair([][]int{{1, 0, 0}}, [][]int{{1, 1, 1}}),
	}
}

func TestLearner_OneStep(t *testing.T) {
	ps := []task.Pair{pair(
		[][]int{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}},
		[][]int{{2, 2, 2}, {2, 1, 2}, {2, 2, 2}},
	)}
	c, ok := New(nil).Solve(context.Background(), ps)
	require.True(t, ok)
	assert.Equal(t, "cellular_1steps", c.Method)
	assert.Equal(t, 1, c.Checked)
	assert.Equal(t, 1, c.Program.Arg(0))
}

func TestLearner_MultiStep(t *testing.T) {
	c, ok := New(nil).Solve(context.Background(), growPairs())
	require.True(t, ok)
	assert.Equal(t, "cellular_2steps", c.Method)
	assert.Equal(t, 2, c.Checked)

	_, ok = New(&Config{MaxSteps: 1}).Solve(context.Background(), growPairs())
	assert.False(t, ok, "one step cannot finish pair 1")
}

// TestLearner_MultiStepNeedsSecondPair verifies a single pair never gets
// more than one step.
func TestLearner_MultiStepNeedsSecondPair(t *testing.T) {
	_, ok := New(nil).Solve(context.Background(), growPairs()[1:])
	assert.True(t, ok, "a single pair always fits its own one-step table")

	ps := []task.Pair{pair([][]int{{1, 0, 0}}, [][]int{{1, 0, 1}})}
	c, ok := New(nil).Solve(context.Background(), ps)
	require.True(t, ok)
	assert.Equal(t, "cellular_1steps", c.Method)
}

func TestLearner_Rejects(t *testing.T) {
	l := New(nil)
	assert.Equal(t, "cellular", l.Name())

	// Both cells share a signature but need different colours.
	_, ok := l.Solve(context.Background(), []task.Pair{pair([][]int{{0, 0}}, [][]int{{1, 2}})})
	assert.False(t, ok)

	_, ok = l.Solve(context.Background(), []task.Pair{pair([][]int{{1, 2}}, [][]int{{1}})})
	assert.False(t, ok, "shape change")

	_, ok = l.Solve(context.Background(), []task.Pair{pair([][]int{{1, 2}}, [][]int{{1, 2}})})
	assert.False(t, ok, "a rule that changes nothing is not a solution")

	_, ok = l.Solve(context.Background(), nil)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = l.Solve(ctx, growPairs())
	assert.False(t, ok)
}
