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

// ConnectMarkers modes.
const (
	ConnectH        = 0 // markers on the same row
	ConnectV        = 1 // markers on the same column
	ConnectHV       = 2 // both of the above
	ConnectDiagonal = 3 // same row, column or exact diagonal
)

// Stamp shapes.
const (
	StampPlus = 0
	StampX    = 1
	StampBox  = 2
)

// MaxStampRadius is the largest radius a stamp detector proposes.
const MaxStampRadius = 5

// markerCells returns the single-cell objects of colour c in scan order.
func markerCells(g grid.Grid, c uint8) []grid.Point {
	var out []grid.Point
	for _, o := range g.Objects() {
		if o.Area() == 1 && o.Color == c {
			out = append(out, o.Cells[0])
		}
	}
	return out
}

// connectMarkers draws fill between every pair of single-cell markers of
// colour marker that the mode allows. Only background cells are painted.
func connectMarkers(g grid.Grid, marker, fill uint8, mode int) grid.Grid {
	if mode < ConnectH || mode > ConnectDiagonal {
		return g
	}
	pts := markerCells(g, marker)
	if len(pts) < 2 {
		return g
	}
	b := grid.BuilderFrom(g)
	for i, a := range pts {
		for _, z := range pts[i+1:] {
			if joins(mode, a, z) {
				segment(b, a, z, fill)
			}
		}
	}
	return b.Build()
}

// joins reports whether mode draws a line between a and z.
func joins(mode int, a, z grid.Point) bool {
	switch {
	case a.R == z.R:
		return mode != ConnectV
	case a.C == z.C:
		return mode != ConnectH
	case abs(z.R-a.R) == abs(z.C-a.C):
		return mode == ConnectDiagonal
	}
	return false
}

// segment paints the background cells on the straight line from a to z.
// The line must be horizontal, vertical or an exact diagonal.
func segment(b *grid.Builder, a, z grid.Point, color uint8) {
	dr, dc := sign(z.R-a.R), sign(z.C-a.C)
	r, c := a.R, a.C
	for {
		if b.Get(r, c) == 0 {
			b.Set(r, c, color)
		}
		if r == z.R && c == z.C {
			return
		}
		r += dr
		c += dc
	}
}

// fillBetween joins equal non-zero colours along each row (axis 0) or
// column (axis 1), painting the background between the first and last
// occurrence. Earlier colours in scan order paint first.
func fillBetween(g grid.Grid, axis int) grid.Grid {
	if axis == 1 {
		return transpose(fillBetween(transpose(g), 0))
	}
	if axis != 0 {
		return g
	}
	rows, cols := g.Dims()
	b := grid.BuilderFrom(g)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := g.At(r, c)
			if v == 0 {
				continue
			}
			last := c
			for cc := c + 1; cc < cols; cc++ {
				if g.At(r, cc) == v {
					last = cc
				}
			}
			for cc := c + 1; cc < last; cc++ {
				if b.Get(r, cc) == 0 {
					b.Set(r, cc, v)
				}
			}
		}
	}
	return b.Build()
}

// stamp paints shape around every cell of colour trigger. Only background
// cells are painted, so the triggers themselves survive.
func stamp(g grid.Grid, trigger uint8, shape int, color uint8, radius int) grid.Grid {
	if radius < 1 || shape < StampPlus || shape > StampBox {
		return g
	}
	rows, cols := g.Dims()
	offsets := stampOffsets(shape, min(radius, max(rows, cols)))
	b := grid.BuilderFrom(g)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(r, c) != trigger {
				continue
			}
			for _, d := range offsets {
				nr, nc := r+d.R, c+d.C
				if g.InBounds(nr, nc) && b.Get(nr, nc) == 0 {
					b.Set(nr, nc, color)
				}
			}
		}
	}
	return b.Build()
}

// stampOffsets lists the cells of a shape around the origin, nearest first.
func stampOffsets(shape, radius int) []grid.Point {
	var out []grid.Point
	for d := 1; d <= radius; d++ {
		switch shape {
		case StampPlus:
			out = append(out, grid.Point{R: -d}, grid.Point{R: d}, grid.Point{C: -d}, grid.Point{C: d})
		case StampX:
			out = append(out, grid.Point{R: -d, C: -d}, grid.Point{R: -d, C: d}, grid.Point{R: d, C: -d}, grid.Point{R: d, C: d})
		case StampBox:
			for dr := -d; dr <= d; dr++ {
				for dc := -d; dc <= d; dc++ {
					if max(abs(dr), abs(dc)) == d {
						out = append(out, grid.Point{R: dr, C: dc})
					}
				}
			}
		}
	}
	return out
}

// completeBBox fills the background inside every object's bounding box
// with the object's colour. Objects are processed in scan order.
func completeBBox(g grid.Grid) grid.Grid {
	b := grid.BuilderFrom(g)
	for _, o := range g.Objects() {
		for r := o.MinRow; r <= o.MaxRow; r++ {
			for c := o.MinCol; c <= o.MaxCol; c++ {
				if b.Get(r, c) == 0 {
					b.Set(r, c, o.Color)
				}
			}
		}
	}
	return b.Build()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
