// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mdl

import (
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flipPairs() []task.Pair {
	return []task.Pair{
		{Input: grid.MustFromRows([][]int{{1, 2}, {3, 4}}), Output: grid.MustFromRows([][]int{{2, 1}, {4, 3}})},
		{Input: grid.MustFromRows([][]int{{5, 0, 6}}), Output: grid.MustFromRows([][]int{{6, 0, 5}})},
	}
}

// TestDescriptionLength covers leaves, parameters, composites and learned kinds.
func TestDescriptionLength(t *testing.T) {
	tests := []struct {
		name string
		p    *dsl.Program
		want float64
	}{
		{"identity", dsl.Identity(), 0},
		{"leaf", dsl.Op(dsl.KindFlipH), 4},
		{"one param", dsl.Op(dsl.KindFillColor, 3), 7.3},
		{"two params", dsl.Op(dsl.KindReplaceColor, 1, 2), 10.6},
		{"sequence", dsl.Seq(dsl.Op(dsl.KindFlipH), dsl.Op(dsl.KindFlipV)), 9},
		{"conditional", dsl.Cond(dsl.Op(dsl.KindFlipH), dsl.Op(dsl.KindFlipV), dsl.Identity()), 9},
		{"colour map", dsl.ColorMap([10]int{-1, 3, 4, 3, -1, -1, -1, -1, -1, -1}), 4 + 2*3.3},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DescriptionLength(tt.p), 1e-9)
		})
	}
}

// TestDescriptionLength_Cellular charges each rule entry plus the step count.
func TestDescriptionLength_Cellular(t *testing.T) {
	in := grid.MustFromRows([][]int{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}})
	out := grid.MustFromRows([][]int{{2, 2, 2}, {2, 1, 2}, {2, 2, 2}})
	rule, ok := dsl.LearnCellRule(in, out)
	require.True(t, ok)

	assert.InDelta(t, 4+3*3.3, DescriptionLength(dsl.Cellular(rule, 1)), 1e-9)
}

// TestDescriptionLength_CompositeGrows verifies a sequence costs more than
// either of its parts, including when a part is Identity.
func TestDescriptionLength_CompositeGrows(t *testing.T) {
	leaves := []*dsl.Program{
		dsl.Identity(),
		dsl.Op(dsl.KindRotateCW),
		dsl.Op(dsl.KindCrop, 0, 0, 2, 2),
		dsl.Seq(dsl.Op(dsl.KindFlipH), dsl.Op(dsl.KindInvert)),
	}
	for _, a := range leaves {
		for _, b := range leaves {
			s := dsl.Seq(a, b)
			assert.Greater(t, DescriptionLength(s), DescriptionLength(a), "%s", s)
			assert.Greater(t, DescriptionLength(s), DescriptionLength(b), "%s", s)
		}
	}
}

// TestDataFit covers exact matches, wrong cells and wrong shapes.
func TestDataFit(t *testing.T) {
	pairs := flipPairs()
	assert.Equal(t, 0.0, DataFit(dsl.Op(dsl.KindFlipH), pairs))

	// Identity gets 4 cells wrong on pair 0 and 2 on pair 1.
	assert.InDelta(t, 6*3.3, DataFit(dsl.Identity(), pairs), 1e-9)

	// Transpose gets every cell wrong on pair 0 and changes shape on pair 1.
	tr := DataFit(dsl.Op(dsl.KindTranspose), pairs)
	assert.InDelta(t, 4*3.3+100, tr, 1e-9)

	assert.Equal(t, 0.0, DataFit(dsl.Identity(), nil))
}

// TestScore_ZeroIffExactFit verifies a zero-penalty score means every pair
// matches.
func TestScore_ZeroIffExactFit(t *testing.T) {
	pairs := flipPairs()
	for _, p := range dsl.Catalog() {
		exact := true
		for _, pair := range pairs {
			if !dsl.Apply(p, pair.Input).Equal(pair.Output) {
				exact = false
				break
			}
		}
		assert.Equal(t, exact, DataFit(p, pairs) == 0, "%s", p)
	}
	assert.InDelta(t, 4, Score(dsl.Op(dsl.KindFlipH), pairs), 1e-9)
}

// TestRank orders by score and keeps input order on ties.
func TestRank(t *testing.T) {
	pairs := flipPairs()
	flipH := dsl.Op(dsl.KindFlipH)
	viaRotations := dsl.Seq(dsl.Op(dsl.KindRotate180), dsl.Op(dsl.KindFlipV))
	alsoFlip := dsl.Seq(dsl.Op(dsl.KindFlipV), dsl.Op(dsl.KindRotate180))

	ranked := Rank([]*dsl.Program{viaRotations, nil, alsoFlip, flipH}, pairs)
	require.Len(t, ranked, 3)
	assert.Same(t, flipH, ranked[0].Program)
	assert.Same(t, viaRotations, ranked[1].Program)
	assert.Same(t, alsoFlip, ranked[2].Program)
	assert.InDelta(t, 9, ranked[1].Score, 1e-9)
}
