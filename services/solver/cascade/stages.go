// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cascade

import (
	"context"

	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/bidir"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/brute"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/cellular"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/dagsearch"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/evolve"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/heuristic"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy/smart"
)

// Stage names, in cascade order.
const (
	StageSmart     = "smart"
	StageCellular  = "cellular"
	StageSingle    = "heuristic_single"
	StageCompose2  = "heuristic_compose2"
	StageBidir     = "bidir"
	StageDAG       = "dag"
	StageBrute     = "brute"
	StageEvolution = "evolution"
)

// RunFunc runs one strategy against a problem.
type RunFunc func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool)

// Stage is one step of the cascade.
type Stage struct {
	// Name labels logs, spans and metrics.
	Name string

	// Gated stages only run while the task budget has time left.
	Gated bool

	Run RunFunc
}

// DefaultStages builds the standard cascade from config.
//
// Description:
//
//	Smart transforms, the cellular learner and both heuristic passes
//	always run. Bidirectional search, the forward DAG, brute force and
//	evolution sit behind the budget gate. Brute force enumerates to
//	min(maxSize, config.BruteDepth).
func DefaultStages(config *Config) []Stage {
	if config == nil {
		config = DefaultConfig()
	}
	sm := smart.New(config.Smart)
	ca := cellular.New(config.Cellular)
	bi := bidir.New(config.Bidir)
	dag := dagsearch.New(config.DAG)
	bf := brute.New(config.Brute)
	ev := evolve.New(config.Evolve)
	bruteDepth := config.BruteDepth

	return []Stage{
		{Name: StageSmart, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return sm.Solve(ctx, p.Train)
		}},
		{Name: StageCellular, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return ca.Solve(ctx, p.Train)
		}},
		{Name: StageSingle, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return heuristic.Single(ctx, p.Train, p.Prims)
		}},
		{Name: StageCompose2, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return heuristic.Compose2(ctx, p.Train, p.Prims)
		}},
		{Name: StageBidir, Gated: true, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return bi.Solve(ctx, p.Train, p.Prims)
		}},
		{Name: StageDAG, Gated: true, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return dag.Solve(ctx, p.Train, p.Prims)
		}},
		{Name: StageBrute, Gated: true, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			depth := bruteDepth
			if p.MaxSize > 0 {
				depth = min(depth, p.MaxSize)
			}
			return bf.Solve(ctx, p.Train, depth)
		}},
		{Name: StageEvolution, Gated: true, Run: func(ctx context.Context, p *strategy.Problem) (*strategy.Candidate, bool) {
			return ev.Solve(ctx, p.Train)
		}},
	}
}
