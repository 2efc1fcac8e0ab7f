// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package brute enumerates compositions of the full primitive catalog.
package brute

import (
	"context"
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Method is reported by every candidate from this strategy.
const Method = "enumerate"

// Config configures enumeration.
type Config struct {
	// Depth2Cap stops pairwise enumeration after this many checks in total.
	Depth2Cap int `yaml:"depth2_cap" json:"depth2_cap" validate:"gte=1"`

	// Depth3Cap stops triple enumeration after this many checks in total.
	Depth3Cap int `yaml:"depth3_cap" json:"depth3_cap" validate:"gte=1"`

	// TopK is how many primitives are kept for triples.
	TopK int `yaml:"top_k" json:"top_k" validate:"gte=1"`

	// MinPartial is the partial score a primitive must beat to be kept.
	MinPartial float64 `yaml:"min_partial" json:"min_partial" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Depth2Cap:  100_000,
		Depth3Cap:  500_000,
		TopK:       20,
		MinPartial: 0.3,
	}
}

// Enumerator is the brute-force strategy.
//
// Description:
//
//	Depth 1 checks every catalog primitive. Depth 2 checks ordered pairs
//	until Depth2Cap checks have been made. Depth 3 only composes the TopK
//	primitives ranked by mean cell match across the pairs, and gives up
//	once Depth3Cap checks have been made. Every check is exact on all
//	pairs; the ranking is only used to choose what to compose.
//
// Thread Safety: Safe for concurrent use.
type Enumerator struct {
	config *Config
	prims  []*dsl.Program
}

// New creates the strategy over dsl.Catalog().
//
// Inputs:
//   - config: Configuration. If nil, uses DefaultConfig().
func New(config *Config) *Enumerator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Enumerator{config: config, prims: dsl.Catalog()}
}

// Name returns the strategy name.
func (e *Enumerator) Name() string {
	return "brute"
}

// Solve enumerates programs of up to maxDepth steps.
//
// Inputs:
//
//	ctx      - Polled once per outer loop iteration.
//	pairs    - Training pairs.
//	maxDepth - 1, 2 or 3. Larger values behave as 3.
//
// Outputs:
//
//	*strategy.Candidate - Checked is the number of programs tried.
//	bool                - False when nothing matches within the caps;
//	                      Checked still counts what was tried.
func (e *Enumerator) Solve(ctx context.Context, pairs []task.Pair, maxDepth int) (*strategy.Candidate, bool) {
	if len(pairs) == 0 || maxDepth < 1 {
		return nil, false
	}
	checked := 0
	hit := func(p *dsl.Program) (*strategy.Candidate, bool) {
		checked++
		if !verify.Exact(p, pairs) {
			return nil, false
		}
		return &strategy.Candidate{Program: p, Method: Method, Checked: checked}, true
	}

	for _, p := range e.prims {
		if c, ok := hit(p); ok {
			return c, true
		}
	}
	if strategy.Done(ctx) || maxDepth < 2 {
		return strategy.Exhausted(checked)
	}

pairsLoop:
	for _, a := range e.prims {
		if strategy.Done(ctx) {
			return strategy.Exhausted(checked)
		}
		for _, b := range e.prims {
			if c, ok := hit(dsl.Seq(a, b)); ok {
				return c, true
			}
			if checked >= e.config.Depth2Cap {
				break pairsLoop
			}
		}
	}
	if maxDepth < 3 {
		return strategy.Exhausted(checked)
	}

	top := e.rank(pairs)
	for _, a := range top {
		for _, b := range top {
			if strategy.Done(ctx) {
				return strategy.Exhausted(checked)
			}
			for _, c := range top {
				if cand, ok := hit(dsl.Chain(a, b, c)); ok {
					return cand, true
				}
				if checked >= e.config.Depth3Cap {
					return strategy.Exhausted(checked)
				}
			}
		}
	}
	return strategy.Exhausted(checked)
}

// rank returns up to TopK primitives whose partial score beats
// MinPartial, best first. Ties keep catalog order.
func (e *Enumerator) rank(pairs []task.Pair) []*dsl.Program {
	type scored struct {
		p     *dsl.Program
		score float64
	}
	var all []scored
	for _, p := range e.prims {
		if s := verify.PartialScore(p, pairs); s > e.config.MinPartial {
			all = append(all, scored{p, s})
		}
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})
	out := make([]*dsl.Program, 0, min(len(all), e.config.TopK))
	for _, s := range all[:min(len(all), e.config.TopK)] {
		out = append(out, s.p)
	}
	return out
}
