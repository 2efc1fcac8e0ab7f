// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cascade

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/features"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/dagsearch"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pr(in, out [][]int) task.Pair {
	return task.Pair{Input: grid.MustFromRows(in), Output: grid.MustFromRows(out)}
}

func newTask(id string, train, test []task.Pair) *task.Task {
	return &task.Task{ID: id, Train: train, Test: test}
}

// counting returns a stage that records its calls and proposes p.
func counting(name string, gated bool, calls *int, p *dsl.Program, checked int) Stage {
	return Stage{Name: name, Gated: gated, Run: func(ctx context.Context, _ *strategy.Problem) (*strategy.Candidate, bool) {
		*calls++
		if p == nil {
			return nil, false
		}
		return &strategy.Candidate{Program: p, Method: name, Checked: checked}, true
	}}
}

// =============================================================================
// End-to-end
// =============================================================================

func TestSolveTask_HorizontalFlip(t *testing.T) {
	// The held-out pair rules out the colour map and the cellular rule
	// that both fit the training pair.
	tk := newTask("flip",
		[]task.Pair{pr([][]int{{1, 2}, {3, 4}}, [][]int{{2, 1}, {4, 3}})},
		[]task.Pair{pr([][]int{{1, 1}, {2, 3}}, [][]int{{1, 1}, {3, 2}})},
	)

	res := New(nil).SolveTask(context.Background(), tk, 3)
	require.True(t, res.Solved)
	assert.Equal(t, "flip", res.TaskID)
	assert.Equal(t, "heuristic_single", res.Method)
	assert.Equal(t, 1, res.ProgramSize)
	assert.Equal(t, "FlipH", res.Program.Key())
	assert.GreaterOrEqual(t, res.Checked, 5)
	assert.False(t, math.IsInf(res.MDL, 1))

	require.Len(t, res.Predictions, 1)
	assert.True(t, res.Predictions[0].Equal(tk.Test[0].Output))

	require.GreaterOrEqual(t, len(res.Stages), 3)
	assert.Equal(t, StageSmart, res.Stages[0].Name)
	assert.Equal(t, OutcomeRejected, res.Stages[0].Outcome, "colour map fits train only")
	last := res.Stages[len(res.Stages)-1]
	assert.Equal(t, StageSingle, last.Name)
	assert.Equal(t, OutcomeAccepted, last.Outcome)
}

func TestSolveTask_ColorRemap(t *testing.T) {
	tk := newTask("remap",
		[]task.Pair{pr([][]int{{1, 2}}, [][]int{{3, 4}})},
		[]task.Pair{pr([][]int{{2, 1}}, [][]int{{4, 3}})},
	)

	res := New(nil).SolveTask(context.Background(), tk, 3)
	require.True(t, res.Solved)
	assert.Equal(t, "smart_color_map", res.Method)
	assert.Equal(t, 1, res.Checked)
	assert.Equal(t, 1, res.ProgramSize)
	assert.Len(t, res.Stages, 1)
}

func TestSolveTask_Tiling(t *testing.T) {
	tiled := func(a, b, c, d int) [][]int {
		return [][]int{{a, b, a, b}, {c, d, c, d}, {a, b, a, b}, {c, d, c, d}}
	}
	tk := newTask("tile",
		[]task.Pair{pr([][]int{{1, 0}, {0, 2}}, tiled(1, 0, 0, 2))},
		[]task.Pair{pr([][]int{{3, 0}, {0, 0}}, tiled(3, 0, 0, 0))},
	)

	res := New(nil).SolveTask(context.Background(), tk, 3)
	require.True(t, res.Solved)
	assert.Equal(t, "smart_tile", res.Method)
}

// TestSolveTask_TwoStepSearch restricts the primitives so that the only
// answer is Seq(FlipH, FlipV).
func TestSolveTask_TwoStepSearch(t *testing.T) {
	in := [][]int{{1, 2, 3}, {4, 5, 6}}
	out := [][]int{{6, 5, 4}, {3, 2, 1}}
	tk := newTask("two",
		[]task.Pair{pr(in, out)},
		[]task.Pair{pr([][]int{{1, 2}, {3, 4}}, [][]int{{4, 3}, {2, 1}})},
	)
	prims := []*dsl.Program{dsl.Op(dsl.KindTranspose), dsl.Op(dsl.KindFlipH), dsl.Op(dsl.KindFlipV)}
	dag := dagsearch.New(nil)
	stage := Stage{Name: StageDAG, Gated: true, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
		return dag.Solve(ctx, p.Train, prims)
	}}

	res := New(nil, WithStages(stage)).SolveTask(context.Background(), tk, 3)
	require.True(t, res.Solved)
	assert.Equal(t, dagsearch.Method, res.Method)
	assert.Equal(t, 2, res.ProgramSize)
	assert.True(t, dsl.Apply(res.Program, grid.MustFromRows(in)).Equal(grid.MustFromRows(out)))
}

func TestSolveTask_InconsistentColorMapFallsThrough(t *testing.T) {
	tk := newTask("inconsistent",
		[]task.Pair{pr([][]int{{1, 1}}, [][]int{{2, 3}})},
		nil,
	)
	stages := DefaultStages(nil)[:2]

	res := New(nil, WithStages(stages...)).SolveTask(context.Background(), tk, 3)
	require.Len(t, res.Stages, 2)
	assert.Equal(t, OutcomeNoCandidate, res.Stages[0].Outcome)
	assert.Equal(t, StageCellular, res.Stages[1].Name)
	assert.NotContains(t, res.Method, "smart")
}

// =============================================================================
// Control flow
// =============================================================================

func TestSolveTask_ShortCircuit(t *testing.T) {
	var a, b, c int
	tk := newTask("sc",
		[]task.Pair{pr([][]int{{1, 2}}, [][]int{{2, 1}})},
		[]task.Pair{pr([][]int{{3, 4}}, [][]int{{4, 3}})},
	)
	s := New(nil, WithStages(
		counting("a", false, &a, nil, 0),
		counting("b", false, &b, dsl.Op(dsl.KindFlipH), 4),
		counting("c", true, &c, dsl.Op(dsl.KindFlipH), 9),
	))
	assert.Equal(t, []string{"a", "b", "c"}, s.Stages())

	res := s.SolveTask(context.Background(), tk, 3)
	require.True(t, res.Solved)
	assert.Equal(t, "b", res.Method)
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Zero(t, c, "no stage after the accepted one runs")
	assert.Equal(t, 4, res.Checked)
}

func TestSolveTask_RejectedCandidateContinues(t *testing.T) {
	var a, b int
	// FlipH fits train but not test, and Identity fits neither.
	tk := newTask("rej",
		[]task.Pair{pr([][]int{{1, 2}}, [][]int{{2, 1}})},
		[]task.Pair{pr([][]int{{1, 2}}, [][]int{{1, 2}})},
	)
	s := New(nil, WithStages(
		counting("cheap", false, &a, dsl.Op(dsl.KindFlipH), 3),
		counting("dear", false, &b, dsl.Identity(), 5),
	))

	res := s.SolveTask(context.Background(), tk, 3)
	assert.False(t, res.Solved)
	assert.Equal(t, MethodNone, res.Method)
	assert.Nil(t, res.Program)
	assert.True(t, math.IsInf(res.MDL, 1))
	assert.Equal(t, 8, res.Checked, "rejected candidates still count")
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, OutcomeRejected, res.Stages[0].Outcome)
	assert.Equal(t, OutcomeRejected, res.Stages[1].Outcome)
}

func TestSolveTask_BudgetGate(t *testing.T) {
	var open, gated int
	tk := newTask("budget", []task.Pair{pr([][]int{{1}}, [][]int{{2}})}, nil)
	s := New(nil, WithStages(
		counting("open", false, &open, nil, 0),
		counting("gated", true, &gated, dsl.Op(dsl.KindFillColor, 2), 1),
	))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.SolveTask(ctx, tk, 3)
	assert.False(t, res.Solved)
	assert.Equal(t, 1, open, "ungated stages run after the deadline")
	assert.Zero(t, gated)
	require.Len(t, res.Stages, 2)
	assert.Equal(t, OutcomeSkipped, res.Stages[1].Outcome)

	cfg := DefaultConfig()
	cfg.Budget = time.Nanosecond
	slow := Stage{Name: "slow", Run: func(ctx context.Context, _ *strategy.Problem) (*strategy.Candidate, bool) {
		<-ctx.Done()
		return nil, false
	}}
	res = New(cfg, WithStages(slow, counting("gated", true, &gated, dsl.Op(dsl.KindFillColor, 2), 1))).
		SolveTask(context.Background(), tk, 3)
	assert.False(t, res.Solved)
	assert.Zero(t, gated)
}

func TestSolveTask_UnsolvedKeepsChecked(t *testing.T) {
	train := []task.Pair{pr([][]int{{1, 2}, {3, 4}}, [][]int{{7, 7, 7}, {0, 1, 0}})}
	tk := newTask("unsolvable", train, nil)
	prims := features.Select(features.Analyze(train))
	rest := len(prims) - 1

	res := New(nil, WithStages(DefaultStages(nil)[:4]...)).SolveTask(context.Background(), tk, 3)
	assert.False(t, res.Solved)
	require.Len(t, res.Stages, 4)
	assert.Equal(t, OutcomeNoCandidate, res.Stages[2].Outcome)
	assert.Equal(t, len(prims), res.Stages[2].Checked)
	assert.Equal(t, rest*rest, res.Stages[3].Checked)

	sum := 0
	for _, st := range res.Stages {
		sum += st.Checked
	}
	assert.Equal(t, sum, res.Checked)
	assert.GreaterOrEqual(t, res.Checked, len(prims)+rest*rest)
}

func TestSolveTask_BudgetExpiredKeepsChecked(t *testing.T) {
	var gated int
	tk := newTask("expired", []task.Pair{pr([][]int{{1}}, [][]int{{2}})}, nil)
	cfg := DefaultConfig()
	cfg.Budget = time.Nanosecond
	slow := Stage{Name: "slow", Run: func(ctx context.Context, _ *strategy.Problem) (*strategy.Candidate, bool) {
		<-ctx.Done()
		return strategy.Exhausted(7)
	}}

	res := New(cfg, WithStages(slow, counting("gated", true, &gated, dsl.Op(dsl.KindFillColor, 2), 1))).
		SolveTask(context.Background(), tk, 3)
	assert.False(t, res.Solved)
	assert.Zero(t, gated)
	assert.Equal(t, 7, res.Checked)
	require.Len(t, res.Stages, 2)
	assert.Equal(t, OutcomeNoCandidate, res.Stages[0].Outcome)
	assert.Equal(t, 7, res.Stages[0].Checked)
	assert.Equal(t, OutcomeSkipped, res.Stages[1].Outcome)
}

func TestSolveTask_Degenerate(t *testing.T) {
	s := New(nil)

	res := s.SolveTask(context.Background(), nil, 3)
	assert.False(t, res.Solved)
	assert.Equal(t, MethodNone, res.Method)

	res = s.SolveTask(context.Background(), newTask("empty", nil, nil), 3)
	assert.False(t, res.Solved)
	assert.Equal(t, "empty", res.TaskID)
	assert.Empty(t, res.Stages)
}

func TestDefaultStages_Order(t *testing.T) {
	stages := DefaultStages(nil)
	names := make([]string, len(stages))
	gated := make([]bool, len(stages))
	for i, st := range stages {
		names[i] = st.Name
		gated[i] = st.Gated
	}
	assert.Equal(t, []string{
		StageSmart, StageCellular, StageSingle, StageCompose2,
		StageBidir, StageDAG, StageBrute, StageEvolution,
	}, names)
	assert.Equal(t, []bool{false, false, false, false, true, true, true, true}, gated)
}
