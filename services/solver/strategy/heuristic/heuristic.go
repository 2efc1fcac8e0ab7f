// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package heuristic enumerates the reduced primitive set picked by the
// feature selector.
package heuristic

import (
	"context"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Methods reported by this package.
const (
	MethodSingle   = "heuristic_single"
	MethodCompose2 = "heuristic_compose2"
)

// Single checks every primitive on its own, in order.
//
// Outputs:
//
//	*strategy.Candidate - The first primitive matching every pair. Checked
//	                      is the number of primitives tried.
//	bool                - False when none matches or ctx is done. The
//	                      candidate then has no program but still
//	                      carries Checked.
func Single(ctx context.Context, pairs []task.Pair, prims []*dsl.Program) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	for i, p := range prims {
		if strategy.Done(ctx) {
			return strategy.Exhausted(i)
		}
		if verify.Exact(p, pairs) {
			return &strategy.Candidate{Program: p, Method: MethodSingle, Checked: i + 1}, true
		}
	}
	return strategy.Exhausted(len(prims))
}

// Compose2 checks every ordered pair Seq(a, b), a major.
//
// Description:
//
//	Identity is skipped on both sides since Single already covers those
//	programs. ctx is polled once per first step.
//
// Outputs:
//
//	*strategy.Candidate - The first pair matching every pair. Checked is
//	                      the number of compositions tried.
//	bool                - False when none matches or ctx is done.
func Compose2(ctx context.Context, pairs []task.Pair, prims []*dsl.Program) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	checked := 0
	for _, a := range prims {
		if strategy.Done(ctx) {
			return strategy.Exhausted(checked)
		}
		if a.Kind() == dsl.KindIdentity {
			continue
		}
		for _, b := range prims {
			if b.Kind() == dsl.KindIdentity {
				continue
			}
			checked++
			p := dsl.Seq(a, b)
			if verify.Exact(p, pairs) {
				return &strategy.Candidate{Program: p, Method: MethodCompose2, Checked: checked}, true
			}
		}
	}
	return strategy.Exhausted(checked)
}
