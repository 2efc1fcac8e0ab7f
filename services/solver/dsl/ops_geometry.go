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
	"bytes"

	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// MaxOutputDim bounds the rows and columns any primitive may produce.
// Growing primitives that would exceed it return the empty grid, which
// keeps repeated Scale or Tile steps from exploding during search.
const MaxOutputDim = 256

// remap builds an outRows x outCols grid where each cell is read from the
// source position returned by src.
func remap(g grid.Grid, outRows, outCols int, src func(r, c int) (int, int)) grid.Grid {
	if outRows <= 0 || outCols <= 0 || outRows > MaxOutputDim || outCols > MaxOutputDim {
		return grid.Empty()
	}
	b := grid.NewBuilder(outRows, outCols)
	for r := 0; r < outRows; r++ {
		for c := 0; c < outCols; c++ {
			sr, sc := src(r, c)
			b.Set(r, c, g.At(sr, sc))
		}
	}
	return b.Build()
}

func rotateCW(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, cols, rows, func(r, c int) (int, int) { return rows - 1 - c, r })
}

func rotateCCW(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, cols, rows, func(r, c int) (int, int) { return c, cols - 1 - r })
}

func rotate180(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, rows, cols, func(r, c int) (int, int) { return rows - 1 - r, cols - 1 - c })
}

func flipH(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, rows, cols, func(r, c int) (int, int) { return r, cols - 1 - c })
}

func flipV(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, rows, cols, func(r, c int) (int, int) { return rows - 1 - r, c })
}

func transpose(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, cols, rows, func(r, c int) (int, int) { return c, r })
}

// translate shifts content by (dr, dc); vacated cells become 0.
func translate(g grid.Grid, dr, dc int) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, rows, cols, func(r, c int) (int, int) { return r - dr, c - dc })
}

// scale enlarges every cell into an s x s block.
func scale(g grid.Grid, s int) grid.Grid {
	if s <= 0 {
		return grid.Empty()
	}
	rows, cols := g.Dims()
	return remap(g, rows*s, cols*s, func(r, c int) (int, int) { return r / s, c / s })
}

// tile repeats the whole grid nr times vertically and nc times horizontally.
func tile(g grid.Grid, nr, nc int) grid.Grid {
	if nr <= 0 || nc <= 0 {
		return grid.Empty()
	}
	rows, cols := g.Dims()
	return remap(g, rows*nr, cols*nc, func(r, c int) (int, int) { return r % rows, c % cols })
}

// pad surrounds the grid with an n cell frame of colour c.
func pad(g grid.Grid, n int, color uint8) grid.Grid {
	if g.IsEmpty() || n < 0 {
		return g
	}
	rows, cols := g.Dims()
	outRows, outCols := rows+2*n, cols+2*n
	if outRows > MaxOutputDim || outCols > MaxOutputDim {
		return grid.Empty()
	}
	b := grid.NewBuilder(outRows, outCols)
	b.Fill(color)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.Set(r+n, c+n, g.At(r, c))
		}
	}
	return b.Build()
}

// crop returns the h x w window at (r, c), clipped to the grid.
func crop(g grid.Grid, r, c, h, w int) grid.Grid {
	if r < 0 || c < 0 || h <= 0 || w <= 0 {
		return grid.Empty()
	}
	return g.SubGrid(r, c, h, w)
}

// mirrorH appends the left-right mirror image to the right.
func mirrorH(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, rows, 2*cols, func(r, c int) (int, int) {
		if c < cols {
			return r, c
		}
		return r, 2*cols - 1 - c
	})
}

// mirrorV appends the top-bottom mirror image below.
func mirrorV(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	return remap(g, 2*rows, cols, func(r, c int) (int, int) {
		if r < rows {
			return r, c
		}
		return 2*rows - 1 - r, c
	})
}

// selfTile replaces each non-zero cell with a copy of the whole grid and
// each zero cell with a zero block.
func selfTile(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	if g.IsEmpty() || rows*rows > MaxOutputDim || cols*cols > MaxOutputDim {
		return grid.Empty()
	}
	b := grid.NewBuilder(rows*rows, cols*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(r, c) == 0 {
				continue
			}
			for br := 0; br < rows; br++ {
				for bc := 0; bc < cols; bc++ {
					b.Set(r*rows+br, c*cols+bc, g.At(br, bc))
				}
			}
		}
	}
	return b.Build()
}

// dedupRows drops every row equal to the row kept before it.
func dedupRows(g grid.Grid) grid.Grid {
	if g.IsEmpty() {
		return g
	}
	kept := [][]uint8{g.Row(0)}
	for r := 1; r < g.Rows(); r++ {
		row := g.Row(r)
		if !bytes.Equal(row, kept[len(kept)-1]) {
			kept = append(kept, row)
		}
	}
	b := grid.NewBuilder(len(kept), g.Cols())
	for r, row := range kept {
		for c, v := range row {
			b.Set(r, c, v)
		}
	}
	return b.Build()
}

// overlayHalves splits the grid into left and right halves, skipping a
// middle separator column when the width is odd, and draws the right
// half's non-zero cells over the left half.
func overlayHalves(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	if cols < 2 {
		return g
	}
	half := cols / 2
	offset := cols - half
	b := grid.NewBuilder(rows, half)
	for r := 0; r < rows; r++ {
		for c := 0; c < half; c++ {
			v := g.At(r, c+offset)
			if v == 0 {
				v = g.At(r, c)
			}
			b.Set(r, c, v)
		}
	}
	return b.Build()
}
