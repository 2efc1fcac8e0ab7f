// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dagsearch implements deduplicated forward breadth-first search.
package dagsearch

import (
	"context"
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Method is reported by every candidate from this strategy.
const Method = "dag_search"

// Config configures the search.
type Config struct {
	// MaxNodes bounds the number of stored states.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes" validate:"gte=1"`

	// MaxDepth is the longest program searched.
	MaxDepth int `yaml:"max_depth" json:"max_depth" validate:"gte=1,lte=8"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{MaxNodes: 20000, MaxDepth: 3}
}

// Search is the forward DAG strategy.
//
// Description:
//
//	States reached from the first pair's input are expanded one layer at
//	a time with every candidate primitive. A result equal to the target
//	ends the search; the program is then checked against every pair.
//	Results that change nothing, or whose fingerprint is already stored,
//	are not expanded further. Because different paths reaching the same
//	grid share one state, the reached set is a DAG over programs.
//
// Thread Safety: Safe for concurrent use. The frontier is per call.
type Search struct {
	config *Config
}

// New creates the strategy.
//
// Inputs:
//   - config: Configuration. If nil, uses DefaultConfig().
func New(config *Config) *Search {
	if config == nil {
		config = DefaultConfig()
	}
	return &Search{config: config}
}

// Name returns the strategy name.
func (s *Search) Name() string {
	return "dag"
}

// Solve searches from pair 0 and checks the result on every pair.
//
// Outputs:
//
//	*strategy.Candidate - Checked is the number of stored states, also
//	                      reported when the search fails.
//	bool                - False when nothing within budget reaches the
//	                      target, or the first program that does fails
//	                      another pair.
func (s *Search) Solve(ctx context.Context, pairs []task.Pair, prims []*dsl.Program) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	input, target := pairs[0].Input, pairs[0].Output
	f := strategy.NewFrontier(input)

	found := func(p *dsl.Program) (*strategy.Candidate, bool) {
		if !verify.Exact(p, pairs) {
			return strategy.Exhausted(f.Len())
		}
		return &strategy.Candidate{Program: p, Method: Method, Checked: f.Len()}, true
	}

	if input.Equal(target) {
		return found(dsl.Identity())
	}

	for depth := 0; depth < s.config.MaxDepth; depth++ {
		for _, n := range f.Layer(depth) {
			if strategy.Done(ctx) {
				return strategy.Exhausted(f.Len())
			}
			for _, p := range prims {
				next := dsl.Apply(p, n.Grid)
				if next.Equal(target) {
					return found(dsl.Chain(append(slices.Clip(n.Path), p)...))
				}
				fp := next.Fingerprint()
				if f.Seen(fp) || next.Equal(n.Grid) {
					continue
				}
				f.Add(n, p, next, fp)
				if f.Len() >= s.config.MaxNodes {
					return strategy.Exhausted(f.Len())
				}
			}
		}
	}
	return strategy.Exhausted(f.Len())
}
