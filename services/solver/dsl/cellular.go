// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dsl

import (
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// Signature describes a cell's local neighbourhood.
//
// Counts is a histogram of the colours of the eight Moore neighbours;
// neighbours outside the grid count as colour 0 and colours above 9 are
// not counted. Border is set for cells on the outer ring.
type Signature struct {
	Center uint8
	Counts [10]uint8
	Border bool
}

// SignatureAt computes the signature of cell (r, c).
func SignatureAt(g grid.Grid, r, c int) Signature {
	sig := Signature{Center: g.At(r, c)}
	for _, d := range grid.Neighbours8() {
		v := g.At(r+d.R, c+d.C)
		if v < 10 {
			sig.Counts[v]++
		}
	}
	rows, cols := g.Dims()
	sig.Border = r == 0 || c == 0 || r == rows-1 || c == cols-1
	return sig
}

// CellRule maps neighbourhood signatures to output colours.
//
// A CellRule is built once by Learn and never modified afterwards.
type CellRule struct {
	table map[Signature]uint8
}

// LearnCellRule derives a rule from one same-shape pair.
//
// Description:
//
//	Every input cell's signature is mapped to the colour of the matching
//	output cell. If one signature would need two different outputs the
//	pair cannot be expressed and ok is false.
//
// Outputs:
//
//	*CellRule - The learned rule.
//	bool - False on shape mismatch or an inconsistent table.
func LearnCellRule(in, out grid.Grid) (*CellRule, bool) {
	if !in.SameShape(out) {
		return nil, false
	}
	rule := &CellRule{table: make(map[Signature]uint8)}
	rows, cols := in.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sig := SignatureAt(in, r, c)
			want := out.At(r, c)
			if have, seen := rule.table[sig]; seen && have != want {
				return nil, false
			}
			rule.table[sig] = want
		}
	}
	return rule, true
}

// Len returns the number of learned signatures.
func (cr *CellRule) Len() int {
	if cr == nil {
		return 0
	}
	return len(cr.table)
}

// Changes counts entries whose output differs from the centre colour.
func (cr *CellRule) Changes() int {
	if cr == nil {
		return 0
	}
	n := 0
	for sig, out := range cr.table {
		if sig.Center != out {
			n++
		}
	}
	return n
}

// Step applies the rule once. Cells with an unseen signature keep their colour.
func (cr *CellRule) Step(g grid.Grid) grid.Grid {
	if cr == nil || g.IsEmpty() {
		return g
	}
	rows, cols := g.Dims()
	b := grid.NewBuilder(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v, ok := cr.table[SignatureAt(g, r, c)]
			if !ok {
				v = g.At(r, c)
			}
			b.Set(r, c, v)
		}
	}
	return b.Build()
}

// Run applies the rule up to steps times, stopping early at a fixpoint.
func (cr *CellRule) Run(g grid.Grid, steps int) grid.Grid {
	for i := 0; i < steps; i++ {
		next := cr.Step(g)
		if next.Equal(g) {
			return next
		}
		g = next
	}
	return g
}
