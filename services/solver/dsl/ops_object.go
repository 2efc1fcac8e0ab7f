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

// keepObject keeps only the largest (or smallest) object. Ties go to the
// object found first in row-major order.
func keepObject(g grid.Grid, largest bool) grid.Grid {
	objs := g.Objects()
	if len(objs) == 0 {
		return g
	}
	pick := 0
	for i, o := range objs[1:] {
		if (largest && o.Area() > objs[pick].Area()) || (!largest && o.Area() < objs[pick].Area()) {
			pick = i + 1
		}
	}
	b := grid.NewBuilder(g.Dims())
	for _, p := range objs[pick].Cells {
		b.Set(p.R, p.C, objs[pick].Color)
	}
	return b.Build()
}

func cropToBBox(g grid.Grid) grid.Grid {
	minR, minC, maxR, maxC, ok := g.BoundingBox()
	if !ok {
		return g
	}
	return g.SubGrid(minR, minC, maxR-minR+1, maxC-minC+1)
}

// extractObject crops to the bounding box of object i (row-major order).
// Only cells of that object are kept; an index past the end yields the
// empty grid.
func extractObject(g grid.Grid, i int) grid.Grid {
	objs := g.Objects()
	if i < 0 || i >= len(objs) {
		return grid.Empty()
	}
	o := objs[i]
	b := grid.NewBuilder(o.Height(), o.Width())
	for _, p := range o.Cells {
		b.Set(p.R-o.MinRow, p.C-o.MinCol, o.Color)
	}
	return b.Build()
}

// outlineObjects paints background cells that touch any object, including
// diagonally.
func outlineObjects(g grid.Grid, color uint8) grid.Grid {
	rows, cols := g.Dims()
	b := grid.BuilderFrom(g)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(r, c) != 0 {
				continue
			}
			for _, d := range grid.Neighbours8() {
				if g.InBounds(r+d.R, c+d.C) && g.At(r+d.R, c+d.C) != 0 {
					b.Set(r, c, color)
					break
				}
			}
		}
	}
	return b.Build()
}

// fillInsideObjects paints background cells inside each object's bounding box.
func fillInsideObjects(g grid.Grid, color uint8) grid.Grid {
	b := grid.BuilderFrom(g)
	for _, o := range g.Objects() {
		for r := o.MinRow; r <= o.MaxRow; r++ {
			for c := o.MinCol; c <= o.MaxCol; c++ {
				if g.At(r, c) == 0 {
					b.Set(r, c, color)
				}
			}
		}
	}
	return b.Build()
}

// fillEnclosed paints background cells that have no 4-connected background
// path to the grid edge.
func fillEnclosed(g grid.Grid, color uint8) grid.Grid {
	rows, cols := g.Dims()
	if g.IsEmpty() {
		return g
	}
	outside := make([]bool, rows*cols)
	var stack []grid.Point
	push := func(r, c int) {
		if g.InBounds(r, c) && g.At(r, c) == 0 && !outside[r*cols+c] {
			outside[r*cols+c] = true
			stack = append(stack, grid.Point{R: r, C: c})
		}
	}
	for r := 0; r < rows; r++ {
		push(r, 0)
		push(r, cols-1)
	}
	for c := 0; c < cols; c++ {
		push(0, c)
		push(rows-1, c)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range grid.Neighbours4() {
			push(p.R+d.R, p.C+d.C)
		}
	}
	b := grid.BuilderFrom(g)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(r, c) == 0 && !outside[r*cols+c] {
				b.Set(r, c, color)
			}
		}
	}
	return b.Build()
}

// floodFill recolours the 4-connected same-colour region containing (r, c).
func floodFill(g grid.Grid, r, c int, color uint8) grid.Grid {
	if !g.InBounds(r, c) {
		return g
	}
	target := g.At(r, c)
	if target == color {
		return g
	}
	b := grid.BuilderFrom(g)
	stack := []grid.Point{{R: r, C: c}}
	b.Set(r, c, color)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range grid.Neighbours4() {
			nr, nc := p.R+d.R, p.C+d.C
			if g.InBounds(nr, nc) && b.Get(nr, nc) == target && g.At(nr, nc) == target {
				b.Set(nr, nc, color)
				stack = append(stack, grid.Point{R: nr, C: nc})
			}
		}
	}
	return b.Build()
}

// extendMarkers draws lines from every single-cell object across the
// background until the line meets a non-zero cell of the input.
func extendMarkers(g grid.Grid, horizontal, vertical bool) grid.Grid {
	b := grid.BuilderFrom(g)
	for _, o := range g.Objects() {
		if o.Area() != 1 {
			continue
		}
		p := o.Cells[0]
		if horizontal {
			ray(g, b, p, 0, 1, o.Color)
			ray(g, b, p, 0, -1, o.Color)
		}
		if vertical {
			ray(g, b, p, 1, 0, o.Color)
			ray(g, b, p, -1, 0, o.Color)
		}
	}
	return b.Build()
}

// diagonalFill draws diagonals through every single-cell object. slope 1
// runs top-left to bottom-right, slope -1 top-right to bottom-left.
func diagonalFill(g grid.Grid, slope int) grid.Grid {
	b := grid.BuilderFrom(g)
	for _, o := range g.Objects() {
		if o.Area() != 1 {
			continue
		}
		p := o.Cells[0]
		ray(g, b, p, 1, slope, o.Color)
		ray(g, b, p, -1, -slope, o.Color)
	}
	return b.Build()
}

func ray(g grid.Grid, b *grid.Builder, from grid.Point, dr, dc int, color uint8) {
	r, c := from.R+dr, from.C+dc
	for g.InBounds(r, c) && g.At(r, c) == 0 {
		b.Set(r, c, color)
		r += dr
		c += dc
	}
}

// repairPeriod rebuilds the grid from a pr x pc tile whose cells hold the
// most common non-zero colour at each phase, ties going to the lower colour.
func repairPeriod(g grid.Grid, pr, pc int) grid.Grid {
	rows, cols := g.Dims()
	if g.IsEmpty() || pr <= 0 || pc <= 0 || pr > rows || pc > cols {
		return g
	}
	tileCells := make([]uint8, pr*pc)
	for tr := 0; tr < pr; tr++ {
		for tc := 0; tc < pc; tc++ {
			var counts [256]int
			for r := tr; r < rows; r += pr {
				for c := tc; c < cols; c += pc {
					counts[g.At(r, c)]++
				}
			}
			best, bestCount := 0, 0
			for v := 1; v < len(counts); v++ {
				if counts[v] > bestCount {
					best, bestCount = v, counts[v]
				}
			}
			tileCells[tr*pc+tc] = uint8(best)
		}
	}
	b := grid.NewBuilder(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.Set(r, c, tileCells[(r%pr)*pc+c%pc])
		}
	}
	return b.Build()
}
