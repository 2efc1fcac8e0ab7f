// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package verify

import (
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
)

func pairsOf(rows ...[][]int) []task.Pair {
	var out []task.Pair
	for i := 0; i+1 < len(rows); i += 2 {
		out = append(out, task.Pair{Input: grid.MustFromRows(rows[i]), Output: grid.MustFromRows(rows[i+1])})
	}
	return out
}

// TestExact verifies acceptance requires every pair to match.
func TestExact(t *testing.T) {
	pairs := pairsOf(
		[][]int{{1, 2}}, [][]int{{2, 1}},
		[][]int{{3, 4, 5}}, [][]int{{5, 4, 3}},
	)
	assert.True(t, Exact(dsl.Op(dsl.KindFlipH), pairs))
	assert.False(t, Exact(dsl.Identity(), pairs))
	assert.True(t, Exact(dsl.Identity(), nil))
}

// TestSimilarity covers shape mismatch, empty grids and partial matches.
func TestSimilarity(t *testing.T) {
	a := grid.MustFromRows([][]int{{1, 2}, {3, 4}})
	b := grid.MustFromRows([][]int{{1, 2}, {3, 0}})

	assert.InDelta(t, 0.75, Similarity(a, b), 1e-9)
	assert.Equal(t, 0.0, Similarity(a, grid.MustFromRows([][]int{{1, 2}})))
	assert.Equal(t, 1.0, Similarity(grid.Empty(), grid.Empty()))
	assert.Equal(t, 1, Mismatches(a, b))
	assert.Equal(t, -1, Mismatches(a, grid.Empty()))
}

// TestPartialScore verifies averaging across pairs.
func TestPartialScore(t *testing.T) {
	pairs := pairsOf(
		[][]int{{1, 2}}, [][]int{{1, 2}},
		[][]int{{1, 2}}, [][]int{{1, 0}},
	)
	assert.InDelta(t, 0.75, PartialScore(dsl.Identity(), pairs), 1e-9)
	assert.Equal(t, 0.0, PartialScore(dsl.Identity(), nil))
}
