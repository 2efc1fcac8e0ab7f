// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package smart

import (
	"context"
	"testing"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairs(rows ...[][]int) []task.Pair {
	var out []task.Pair
	for i := 0; i+1 < len(rows); i += 2 {
		out = append(out, task.Pair{Input: grid.MustFromRows(rows[i]), Output: grid.MustFromRows(rows[i+1])})
	}
	return out
}

func TestSmart_Detectors(t *testing.T) {
	tests := []struct {
		name   string
		pairs  []task.Pair
		method string
		key    string
	}{
		{
			name:   "colour map",
			pairs:  pairs([][]int{{1, 2}}, [][]int{{3, 4}}),
			method: "smart_color_map",
			key:    "ColorMap(-1,3,4,-1,-1,-1,-1,-1,-1,-1)",
		},
		{
			name:   "tile",
			pairs:  pairs([][]int{{1, 0}, {0, 2}}, [][]int{{1, 0, 1, 0}, {0, 2, 0, 2}, {1, 0, 1, 0}, {0, 2, 0, 2}}),
			method: "smart_tile",
			key:    "Tile(2,2)",
		},
		{
			name:   "self tile",
			pairs:  pairs([][]int{{1, 0}, {0, 0}}, [][]int{{1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}),
			method: "smart_self_tile",
			key:    "SelfTile",
		},
		{
			name:   "subgrid",
			pairs:  pairs([][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, [][]int{{5, 6}, {8, 9}}),
			method: "smart_subgrid",
			key:    "Crop(1,1,2,2)",
		},
		{
			name: "dedup rows",
			pairs: pairs(
				[][]int{{1, 2}, {1, 2}, {3, 4}}, [][]int{{1, 2}, {3, 4}},
				[][]int{{5, 5}, {6, 6}, {6, 6}}, [][]int{{5, 5}, {6, 6}},
			),
			method: "smart_dedup_rows",
			key:    "DedupRows",
		},
		{
			name: "dedup cols",
			pairs: pairs(
				[][]int{{1, 1, 2}, {3, 3, 4}}, [][]int{{1, 2}, {3, 4}},
				[][]int{{5, 6, 6}, {7, 8, 8}}, [][]int{{5, 6}, {7, 8}},
			),
			method: "smart_dedup_cols",
			key:    "DedupCols",
		},
		{
			name: "repair period",
			pairs: pairs(
				[][]int{{1, 2, 1, 2}, {2, 1, 0, 1}, {1, 2, 1, 2}, {2, 1, 2, 0}},
				[][]int{{1, 2, 1, 2}, {2, 1, 2, 1}, {1, 2, 1, 2}, {2, 1, 2, 1}},
			),
			method: "smart_repair_period",
			key:    "RepairPeriod(2,2)",
		},
		{
			name: "partition overlay",
			pairs: pairs(
				[][]int{{1, 0, 5, 2, 2}, {0, 1, 5, 2, 0}, {0, 0, 5, 0, 0}},
				[][]int{{1, 2}, {2, 1}, {0, 0}},
			),
			method: "smart_partition",
			key:    "CombineParts(0,1,2)",
		},
		{
			name: "connect markers",
			pairs: pairs(
				[][]int{{0, 0, 0, 0, 0}, {4, 0, 0, 0, 4}, {0, 0, 0, 0, 0}},
				[][]int{{0, 0, 0, 0, 0}, {4, 8, 8, 8, 4}, {0, 0, 0, 0, 0}},
			),
			method: "smart_connect",
			key:    "ConnectMarkers(4,8,0)",
		},
		{
			name: "fill between",
			pairs: pairs(
				[][]int{{3, 0, 0, 3, 0}, {3, 0, 0, 3, 0}},
				[][]int{{3, 3, 3, 3, 0}, {3, 3, 3, 3, 0}},
			),
			method: "smart_fill_between",
			key:    "FillBetween(0)",
		},
		{
			name: "stamp",
			pairs: pairs(
				[][]int{{0, 0, 0, 0, 0}, {0, 0, 0, 0, 0}, {0, 0, 2, 0, 0}, {0, 0, 0, 0, 0}, {0, 0, 0, 0, 0}},
				[][]int{{0, 0, 0, 0, 0}, {0, 0, 1, 0, 0}, {0, 1, 2, 1, 0}, {0, 0, 1, 0, 0}, {0, 0, 0, 0, 0}},
			),
			method: "smart_stamp",
			key:    "Stamp(2,0,1,1)",
		},
		{
			name: "complete bbox",
			pairs: pairs(
				[][]int{{5, 0, 0}, {5, 5, 0}, {0, 0, 0}},
				[][]int{{5, 5, 0}, {5, 5, 0}, {0, 0, 0}},
			),
			method: "smart_complete_bbox",
			key:    "CompleteBBox",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := New(nil).Solve(context.Background(), tt.pairs)
			require.True(t, ok)
			assert.Equal(t, tt.method, c.Method)
			assert.Equal(t, tt.key, c.Program.Key())
			assert.Equal(t, 1, c.Checked)
			for _, p := range tt.pairs {
				assert.True(t, dsl.Apply(c.Program, p.Input).Equal(p.Output))
			}
		})
	}
}

// TestSmart_InconsistentColourMap verifies a colour sent two ways yields
// nothing.
func TestSmart_InconsistentColourMap(t *testing.T) {
	_, ok := New(nil).Solve(context.Background(), pairs([][]int{{1, 1}}, [][]int{{2, 3}}))
	assert.False(t, ok)
}

// TestSmart_MustExplainEveryPair rejects a map that only fits pair 0.
func TestSmart_MustExplainEveryPair(t *testing.T) {
	ps := pairs(
		[][]int{{1, 2}}, [][]int{{3, 4}},
		[][]int{{1, 2}}, [][]int{{3, 5}},
	)
	_, ok := New(&Config{Detectors: []string{DetectColorMap}}).Solve(context.Background(), ps)
	assert.False(t, ok)
}

func TestSmart_ConfigOrder(t *testing.T) {
	ps := pairs([][]int{{1, 2}}, [][]int{{3, 4}})
	_, ok := New(&Config{Detectors: []string{DetectTile, "unknown"}}).Solve(context.Background(), ps)
	assert.False(t, ok)
}

func TestSmart_EmptyAndCancelled(t *testing.T) {
	s := New(nil)
	assert.Equal(t, "smart", s.Name())

	_, ok := s.Solve(context.Background(), nil)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = s.Solve(ctx, pairs([][]int{{1, 2}}, [][]int{{3, 4}}))
	assert.False(t, ok)
}

// TestSmart_FailureCountsProposals verifies a failed run reports how many
// detectors proposed a program that then failed verification.
func TestSmart_FailureCountsProposals(t *testing.T) {
	ps := pairs(
		[][]int{{1, 2}}, [][]int{{3, 4}},
		[][]int{{1, 2}}, [][]int{{3, 5}},
	)
	c, ok := New(&Config{Detectors: []string{DetectColorMap, DetectTile}}).Solve(context.Background(), ps)
	assert.False(t, ok)
	require.NotNil(t, c)
	assert.Nil(t, c.Program)
	assert.Equal(t, 1, c.Checked)
}

// TestSmart_StampPrefersLargestConsistent keeps the box when the plus
// would leave output cells unexplained.
func TestSmart_StampPrefersLargestConsistent(t *testing.T) {
	ps := pairs(
		[][]int{{0, 0, 0}, {0, 6, 0}, {0, 0, 0}},
		[][]int{{3, 3, 3}, {3, 6, 3}, {3, 3, 3}},
		[][]int{{6, 0, 0, 0}, {0, 0, 0, 0}},
		[][]int{{6, 3, 0, 0}, {3, 3, 0, 0}},
	)
	c, ok := New(&Config{Detectors: []string{DetectStamp}}).Solve(context.Background(), ps)
	require.True(t, ok)
	assert.Equal(t, "Stamp(6,2,3,1)", c.Program.Key())
}

// TestSmart_ConnectRejectsContradiction refuses a line that would paint a
// cell the output leaves empty.
func TestSmart_ConnectRejectsContradiction(t *testing.T) {
	ps := pairs(
		[][]int{{4, 0, 4}, {0, 0, 0}},
		[][]int{{4, 0, 4}, {8, 0, 0}},
	)
	_, ok := New(&Config{Detectors: []string{DetectConnect}}).Solve(context.Background(), ps)
	assert.False(t, ok)
}
