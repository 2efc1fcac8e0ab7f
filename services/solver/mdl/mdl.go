// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mdl scores programs by minimum description length.
//
// A score is the program's own cost in bits plus a penalty for every way
// it fails to reproduce the example outputs. Lower is better. Scores rank
// exact solutions for reporting; they never accept a program that does
// not match.
package mdl

import (
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Bit costs.
const (
	// LeafBits is the cost of naming one primitive.
	LeafBits = 4.0

	// ParamBits is the cost of one small-integer parameter.
	ParamBits = 3.3

	// CompositeBits is the cost of one Sequence or Conditional node.
	CompositeBits = 1.0

	// DimMismatchPenalty is charged per pair whose output shape is wrong.
	DimMismatchPenalty = 100.0

	// CellMismatchBits is charged per wrong cell on a same-shape output.
	CellMismatchBits = 3.3
)

// DescriptionLength returns the cost in bits of writing p down.
//
// Description:
//
//	Identity is free. Any other leaf costs LeafBits plus ParamBits per
//	parameter. A learned colour map only pays for entries that change a
//	colour, and a learned cellular rule pays for each table entry and its
//	step count. Composites add CompositeBits to the sum of their children,
//	so a composite always costs strictly more than any child.
func DescriptionLength(p *dsl.Program) float64 {
	if p == nil {
		return 0
	}
	switch k := p.Kind(); {
	case k == dsl.KindIdentity:
		return 0
	case k.IsComposite():
		bits := CompositeBits
		for _, c := range p.Children() {
			bits += DescriptionLength(c)
		}
		return bits
	case k == dsl.KindColorMap:
		remapped := 0
		for i := 0; i < p.NumArgs(); i++ {
			if v := p.Arg(i); v >= 0 && v != i {
				remapped++
			}
		}
		return LeafBits + ParamBits*float64(remapped)
	case k == dsl.KindCellular:
		rules := 0
		if r := p.Rule(); r != nil {
			rules = r.Len()
		}
		return LeafBits + ParamBits*float64(rules) + ParamBits
	default:
		return LeafBits + ParamBits*float64(p.NumArgs())
	}
}

// DataFit returns the penalty for p's mistakes on pairs. It is 0 exactly
// when p reproduces every pair.
func DataFit(p *dsl.Program, pairs []task.Pair) float64 {
	penalty := 0.0
	for _, pair := range pairs {
		got := dsl.Apply(p, pair.Input)
		n := verify.Mismatches(got, pair.Output)
		if n < 0 {
			penalty += DimMismatchPenalty
			continue
		}
		penalty += CellMismatchBits * float64(n)
	}
	return penalty
}

// Score is DescriptionLength plus DataFit.
func Score(p *dsl.Program, pairs []task.Pair) float64 {
	return DescriptionLength(p) + DataFit(p, pairs)
}

// Ranked is a program with its score.
type Ranked struct {
	Program *dsl.Program
	Score   float64
}

// Rank scores programs against pairs and returns them cheapest first.
//
// Description:
//
//	Ties keep their input order. Nil programs are skipped.
//
// Inputs:
//
//	programs - Candidate programs.
//	pairs    - Pairs to fit against, normally the training pairs.
//
// Outputs:
//
//	[]Ranked - Programs ordered by ascending score.
func Rank(programs []*dsl.Program, pairs []task.Pair) []Ranked {
	out := make([]Ranked, 0, len(programs))
	for _, p := range programs {
		if p == nil {
			continue
		}
		out = append(out, Ranked{Program: p, Score: Score(p, pairs)})
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})
	return out
}
