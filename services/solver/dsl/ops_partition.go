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
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// SelectPartBy rules.
const (
	PartMostColorful = 0 // most distinct non-zero colours
	PartMostDistinct = 1 // largest total difference from the other parts
)

// CombineParts operators.
const (
	CombineXor = 0 // the larger value where the parts differ, else 0
	CombineAnd = 1 // first part's value where both are non-zero
	CombineOr  = 2 // first part's value, else the second's
)

// Partition splits g at separator lines.
//
// Description:
//
//	A separator is a full row (or column) of one non-zero colour next to
//	at least one line that is not entirely that colour. Rows and columns
//	are both used when both exist, giving parts in row-major order;
//	otherwise whichever kind exists is used. Empty strips between adjacent
//	separators are dropped.
//
// Outputs:
//
//	[]grid.Grid - The parts.
//	bool        - False when fewer than two parts result.
func Partition(g grid.Grid) ([]grid.Grid, bool) {
	hs := rowSeparators(g)
	vs := rowSeparators(transpose(g))

	var parts []grid.Grid
	switch {
	case len(hs) > 0 && len(vs) > 0:
		for _, strip := range splitRows(g, hs) {
			parts = append(parts, splitCols(strip, vs)...)
		}
	case len(hs) > 0:
		parts = splitRows(g, hs)
	case len(vs) > 0:
		parts = splitCols(g, vs)
	}
	if len(parts) < 2 {
		return nil, false
	}
	return parts, true
}

// rowSeparators returns the indices of separator rows.
func rowSeparators(g grid.Grid) []int {
	rows := g.Rows()
	var out []int
	for r := 0; r < rows; r++ {
		v := g.At(r, 0)
		if v == 0 || !uniformRow(g, r, v) {
			continue
		}
		above := r == 0 || !uniformRow(g, r-1, v)
		below := r == rows-1 || !uniformRow(g, r+1, v)
		if above || below {
			out = append(out, r)
		}
	}
	return out
}

func uniformRow(g grid.Grid, r int, v uint8) bool {
	for _, x := range g.Row(r) {
		if x != v {
			return false
		}
	}
	return true
}

func splitRows(g grid.Grid, seps []int) []grid.Grid {
	var out []grid.Grid
	start := 0
	for _, s := range append(slices.Clip(seps), g.Rows()) {
		if s > start {
			out = append(out, g.SubGrid(start, 0, s-start, g.Cols()))
		}
		start = s + 1
	}
	return out
}

// splitCols splits at column separators found on the full grid, so every
// strip is cut at the same columns.
func splitCols(g grid.Grid, seps []int) []grid.Grid {
	var out []grid.Grid
	start := 0
	for _, s := range append(slices.Clip(seps), g.Cols()) {
		if s > start {
			out = append(out, g.SubGrid(0, start, g.Rows(), s-start))
		}
		start = s + 1
	}
	return out
}

func selectPart(g grid.Grid, i int) grid.Grid {
	parts, ok := Partition(g)
	if !ok || i < 0 || i >= len(parts) {
		return g
	}
	return parts[i]
}

// selectPartBy picks a part by rule. Ties go to the earliest part.
func selectPartBy(g grid.Grid, rule int) grid.Grid {
	parts, ok := Partition(g)
	if !ok {
		return g
	}
	var score func(i int) int
	switch rule {
	case PartMostColorful:
		score = func(i int) int { return len(parts[i].NonZeroColors()) }
	case PartMostDistinct:
		score = func(i int) int {
			total := 0
			for j := range parts {
				if j != i {
					total += difference(parts[i], parts[j])
				}
			}
			return total
		}
	default:
		return g
	}
	best, bestScore := 0, score(0)
	for i := 1; i < len(parts); i++ {
		if s := score(i); s > bestScore {
			best, bestScore = i, s
		}
	}
	return parts[best]
}

// difference counts differing cells, or the larger area when the shapes
// differ.
func difference(a, b grid.Grid) int {
	if !a.SameShape(b) {
		return max(a.Len(), b.Len())
	}
	n := 0
	ac, bc := a.Cells(), b.Cells()
	for k := range ac {
		if ac[k] != bc[k] {
			n++
		}
	}
	return n
}

func combineParts(g grid.Grid, i, j, op int) grid.Grid {
	parts, ok := Partition(g)
	if !ok || i < 0 || j < 0 || i >= len(parts) || j >= len(parts) || op < CombineXor || op > CombineOr {
		return g
	}
	return overlapCells(parts[i], parts[j], func(a, b uint8) uint8 {
		switch op {
		case CombineXor:
			if a != b {
				return max(a, b)
			}
			return 0
		case CombineAnd:
			if a != 0 && b != 0 {
				return a
			}
			return 0
		default:
			if a != 0 {
				return a
			}
			return b
		}
	})
}

func diffParts(g grid.Grid, i, j int, mark uint8) grid.Grid {
	parts, ok := Partition(g)
	if !ok || i < 0 || j < 0 || i >= len(parts) || j >= len(parts) {
		return g
	}
	return overlapCells(parts[i], parts[j], func(a, b uint8) uint8 {
		if a != b {
			return mark
		}
		return 0
	})
}

// overlapCells combines the overlapping top-left region of a and b.
func overlapCells(a, b grid.Grid, f func(a, b uint8) uint8) grid.Grid {
	rows, cols := min(a.Rows(), b.Rows()), min(a.Cols(), b.Cols())
	out := grid.NewBuilder(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, f(a.At(r, c), b.At(r, c)))
		}
	}
	return out.Build()
}
