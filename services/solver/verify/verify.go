// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package verify decides whether a program reproduces example pairs.
//
// Exact is the only acceptance test used by the solver. Similarity and
// PartialScore are ranking proxies for search and never accept anything.
package verify

import (
	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

// Exact reports whether p maps every input to exactly its output.
// An empty pair list is vacuously satisfied.
func Exact(p *dsl.Program, pairs []task.Pair) bool {
	for _, pair := range pairs {
		if !dsl.Apply(p, pair.Input).Equal(pair.Output) {
			return false
		}
	}
	return true
}

// Similarity is the fraction of matching cells between two grids.
// Grids of different shape score 0; two empty grids score 1.
func Similarity(a, b grid.Grid) float64 {
	if !a.SameShape(b) {
		return 0
	}
	if a.IsEmpty() {
		return 1
	}
	match := 0
	rows, cols := a.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if a.At(r, c) == b.At(r, c) {
				match++
			}
		}
	}
	return float64(match) / float64(rows*cols)
}

// Mismatches counts differing cells between same-shape grids, or -1 when
// the shapes differ.
func Mismatches(a, b grid.Grid) int {
	if !a.SameShape(b) {
		return -1
	}
	n := 0
	rows, cols := a.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if a.At(r, c) != b.At(r, c) {
				n++
			}
		}
	}
	return n
}

// PartialScore is the mean Similarity of p's outputs against the expected
// outputs. An empty pair list scores 0.
func PartialScore(p *dsl.Program, pairs []task.Pair) float64 {
	if len(pairs) == 0 {
		return 0
	}
	total := 0.0
	for _, pair := range pairs {
		total += Similarity(dsl.Apply(p, pair.Input), pair.Output)
	}
	return total / float64(len(pairs))
}
