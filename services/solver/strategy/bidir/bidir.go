// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bidir implements meet-in-the-middle program search.
//
// A forward frontier grows from the input using every candidate primitive.
// A backward frontier grows from the target using the inverses of the
// invertible primitives. When a state produced on one side already exists
// on the other, the forward path followed by the reversed, inverted
// backward path is a program from input to target.
package bidir

import (
	"context"
	"fmt"
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Config configures the search.
type Config struct {
	// MaxNodes bounds the states stored across both frontiers.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes" validate:"gte=2"`

	// MaxDepth is the longest program searched. Each side expands
	// ceil(MaxDepth/2) times.
	MaxDepth int `yaml:"max_depth" json:"max_depth" validate:"gte=1,lte=8"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{MaxNodes: 5000, MaxDepth: 3}
}

// Search is the bidirectional strategy.
//
// Thread Safety: Safe for concurrent use. Frontiers are per call.
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
	return "bidir"
}

// Solve searches from pair 0 and checks the result on every pair.
//
// Description:
//
//	Only the first pair drives search. A meeting point yields a program
//	that is accepted only if it reproduces every training pair; otherwise
//	search continues. Rounds alternate one forward layer then one backward
//	layer. Search ends on success, when the node budget is spent, after
//	ceil(MaxDepth/2) rounds, or when ctx is done.
//
// Inputs:
//
//	ctx   - Polled once per expanded state.
//	pairs - Training pairs.
//	prims - Forward primitives. Those with a declared inverse also drive
//	        the backward frontier.
//
// Outputs:
//
//	*strategy.Candidate - Method "bidir_<f>f_<b>b"; Checked is the number
//	                      of stored states.
//	bool                - False when no program was found.
func (s *Search) Solve(ctx context.Context, pairs []task.Pair, prims []*dsl.Program) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	input, target := pairs[0].Input, pairs[0].Output
	if input.Equal(target) {
		if verify.Exact(dsl.Identity(), pairs) {
			return &strategy.Candidate{Program: dsl.Identity(), Method: method(0, 0), Checked: 1}, true
		}
		return strategy.Exhausted(1)
	}

	r := &run{
		ctx:      ctx,
		pairs:    pairs,
		prims:    withoutIdentity(prims),
		inverses: inverses(prims),
		forward:  strategy.NewFrontier(input),
		backward: strategy.NewFrontier(target),
		maxNodes: s.config.MaxNodes,
	}

	rounds := (s.config.MaxDepth + 1) / 2
	for depth := 0; depth < rounds; depth++ {
		if c, ok := r.expandForward(depth); ok {
			return c, true
		}
		if r.stopped {
			break
		}
		if len(r.inverses) > 0 {
			if c, ok := r.expandBackward(depth); ok {
				return c, true
			}
			if r.stopped {
				break
			}
		}
	}
	return strategy.Exhausted(r.nodes())
}

func withoutIdentity(prims []*dsl.Program) []*dsl.Program {
	return slices.DeleteFunc(slices.Clone(prims), func(p *dsl.Program) bool {
		return p.Kind() == dsl.KindIdentity
	})
}

// inverses returns the inverse of every invertible primitive except
// Identity, in primitive order.
func inverses(prims []*dsl.Program) []*dsl.Program {
	var out []*dsl.Program
	for _, p := range prims {
		if p.Kind() == dsl.KindIdentity {
			continue
		}
		if inv, ok := dsl.Inverse(p); ok {
			out = append(out, inv)
		}
	}
	return out
}

func method(f, b int) string {
	return fmt.Sprintf("bidir_%df_%db", f, b)
}

// -----------------------------------------------------------------------------
// Expansion
// -----------------------------------------------------------------------------

type run struct {
	ctx      context.Context
	pairs    []task.Pair
	prims    []*dsl.Program
	inverses []*dsl.Program
	forward  *strategy.Frontier
	backward *strategy.Frontier
	maxNodes int
	stopped  bool
}

func (r *run) nodes() int {
	return r.forward.Len() + r.backward.Len()
}

func (r *run) expandForward(depth int) (*strategy.Candidate, bool) {
	for _, n := range r.forward.Layer(depth) {
		if strategy.Done(r.ctx) {
			r.stopped = true
			return nil, false
		}
		for _, p := range r.prims {
			next := dsl.Apply(p, n.Grid)
			fp := next.Fingerprint()
			if back, ok := r.backward.Lookup(next, fp); ok {
				fwd := append(slices.Clip(n.Path), p)
				if c, ok := r.accept(fwd, back.Path); ok {
					return c, true
				}
			}
			if r.forward.Seen(fp) || next.Equal(n.Grid) {
				continue
			}
			r.forward.Add(n, p, next, fp)
			if r.nodes() >= r.maxNodes {
				r.stopped = true
				return nil, false
			}
		}
	}
	return nil, false
}

func (r *run) expandBackward(depth int) (*strategy.Candidate, bool) {
	for _, n := range r.backward.Layer(depth) {
		if strategy.Done(r.ctx) {
			r.stopped = true
			return nil, false
		}
		for _, inv := range r.inverses {
			prev := dsl.Apply(inv, n.Grid)
			fp := prev.Fingerprint()
			if fwd, ok := r.forward.Lookup(prev, fp); ok {
				back := append(slices.Clip(n.Path), inv)
				if c, ok := r.accept(fwd.Path, back); ok {
					return c, true
				}
			}
			if r.backward.Seen(fp) || prev.Equal(n.Grid) {
				continue
			}
			r.backward.Add(n, inv, prev, fp)
			if r.nodes() >= r.maxNodes {
				r.stopped = true
				return nil, false
			}
		}
	}
	return nil, false
}

// accept joins a forward path with a backward path of applied inverses
// and keeps the program only if it reproduces every pair. Inverses of
// colour swaps are not always exact, so the check is required even on
// pair 0.
func (r *run) accept(fwd, back []*dsl.Program) (*strategy.Candidate, bool) {
	steps := slices.Clip(fwd)
	if len(back) > 0 {
		undo, ok := dsl.InvertPath(back)
		if !ok {
			return nil, false
		}
		steps = append(steps, undo.Steps()...)
	}
	p := dsl.Chain(steps...)
	if !verify.Exact(p, r.pairs) {
		return nil, false
	}
	return &strategy.Candidate{
		Program:       p,
		Method:        method(len(fwd), len(back)),
		Checked:       r.nodes(),
		ForwardDepth:  len(fwd),
		BackwardDepth: len(back),
	}, true
}
