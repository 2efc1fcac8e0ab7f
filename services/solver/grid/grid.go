// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package grid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrRagged is returned when input rows have different lengths.
	ErrRagged = errors.New("grid rows have different lengths")

	// ErrCellRange is returned when a cell value does not fit in a byte.
	ErrCellRange = errors.New("grid cell value out of range")

	// ErrDimensions is returned when a cell slice does not match rows*cols.
	ErrDimensions = errors.New("grid dimensions do not match cell count")
)

// MaxDim is the largest row or column count the binary codec can express.
const MaxDim = 1<<16 - 1

// -----------------------------------------------------------------------------
// Grid
// -----------------------------------------------------------------------------

// Grid is an immutable rectangular array of small colour values.
//
// Description:
//
//	Cells are stored row-major in a flat slice that is never written after
//	construction. Copying a Grid value is cheap and safe: copies share the
//	backing slice, which nobody mutates. A grid with zero rows or zero
//	columns is the empty grid, and all empty grids compare equal.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Grid struct {
	rows  int
	cols  int
	cells []uint8
}

// Empty returns the 0x0 grid.
func Empty() Grid {
	return Grid{}
}

// New returns a rows x cols grid with every cell set to fill.
// Non-positive dimensions yield the empty grid.
func New(rows, cols int, fill uint8) Grid {
	if rows <= 0 || cols <= 0 {
		return Grid{}
	}
	cells := make([]uint8, rows*cols)
	if fill != 0 {
		for i := range cells {
			cells[i] = fill
		}
	}
	return Grid{rows: rows, cols: cols, cells: cells}
}

// FromRows builds a grid from nested rows.
//
// Description:
//
//	The input is copied. Every row must have the same length and every
//	value must lie in 0..255. An empty outer slice, or rows of length
//	zero, produce the empty grid.
//
// Outputs:
//
//	Grid - The constructed grid.
//	error - ErrRagged or ErrCellRange (wrapped with position).
func FromRows(rows [][]int) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), cols, ErrRagged)
		}
	}
	if cols == 0 {
		return Grid{}, nil
	}
	if len(rows) > MaxDim || cols > MaxDim {
		return Grid{}, fmt.Errorf("%dx%d exceeds %d: %w", len(rows), cols, MaxDim, ErrDimensions)
	}
	cells := make([]uint8, 0, len(rows)*cols)
	for r, row := range rows {
		for c, v := range row {
			if v < 0 || v > 255 {
				return Grid{}, fmt.Errorf("cell (%d,%d)=%d: %w", r, c, v, ErrCellRange)
			}
			cells = append(cells, uint8(v))
		}
	}
	return Grid{rows: len(rows), cols: cols, cells: cells}, nil
}

// MustFromRows is FromRows that panics on error. Intended for tests and
// literals known to be well formed.
func MustFromRows(rows [][]int) Grid {
	g, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// FromCells builds a grid from a row-major cell slice, which is copied.
func FromCells(rows, cols int, cells []uint8) (Grid, error) {
	if rows <= 0 || cols <= 0 {
		if len(cells) != 0 {
			return Grid{}, ErrDimensions
		}
		return Grid{}, nil
	}
	if len(cells) != rows*cols {
		return Grid{}, fmt.Errorf("%dx%d with %d cells: %w", rows, cols, len(cells), ErrDimensions)
	}
	owned := make([]uint8, len(cells))
	copy(owned, cells)
	return Grid{rows: rows, cols: cols, cells: owned}, nil
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g Grid) Cols() int { return g.cols }

// Dims returns (rows, cols).
func (g Grid) Dims() (int, int) { return g.rows, g.cols }

// Len returns rows*cols.
func (g Grid) Len() int { return len(g.cells) }

// IsEmpty reports whether the grid has no cells.
func (g Grid) IsEmpty() bool { return len(g.cells) == 0 }

// SameShape reports whether both grids have identical dimensions.
func (g Grid) SameShape(other Grid) bool {
	return g.rows == other.rows && g.cols == other.cols
}

// InBounds reports whether (r, c) addresses a cell.
func (g Grid) InBounds(r, c int) bool {
	return r >= 0 && c >= 0 && r < g.rows && c < g.cols
}

// At returns the cell at (r, c), or 0 when out of bounds.
func (g Grid) At(r, c int) uint8 {
	if !g.InBounds(r, c) {
		return 0
	}
	return g.cells[r*g.cols+c]
}

// Row returns a copy of row r, or nil when out of bounds.
func (g Grid) Row(r int) []uint8 {
	if r < 0 || r >= g.rows {
		return nil
	}
	out := make([]uint8, g.cols)
	copy(out, g.cells[r*g.cols:(r+1)*g.cols])
	return out
}

// Cells returns a copy of the row-major cells.
func (g Grid) Cells() []uint8 {
	out := make([]uint8, len(g.cells))
	copy(out, g.cells)
	return out
}

// ToRows returns the grid as nested int rows (the ARC JSON shape).
func (g Grid) ToRows() [][]int {
	out := make([][]int, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]int, g.cols)
		for c := 0; c < g.cols; c++ {
			row[c] = int(g.cells[r*g.cols+c])
		}
		out[r] = row
	}
	return out
}

// Equal reports exact equality of dimensions and every cell.
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i, v := range g.cells {
		if other.cells[i] != v {
			return false
		}
	}
	return true
}

// Histogram returns the number of cells holding each value.
func (g Grid) Histogram() [256]int {
	var h [256]int
	for _, v := range g.cells {
		h[v]++
	}
	return h
}

// Colors returns the distinct cell values in ascending order.
func (g Grid) Colors() []uint8 {
	var seen [256]bool
	for _, v := range g.cells {
		seen[v] = true
	}
	out := make([]uint8, 0, 10)
	for v, ok := range seen {
		if ok {
			out = append(out, uint8(v))
		}
	}
	return out
}

// NonZeroColors returns the distinct non-background values in ascending order.
func (g Grid) NonZeroColors() []uint8 {
	all := g.Colors()
	out := all[:0:0]
	for _, v := range all {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// CountNonZero returns the number of non-background cells.
func (g Grid) CountNonZero() int {
	n := 0
	for _, v := range g.cells {
		if v != 0 {
			n++
		}
	}
	return n
}

// String renders the grid one row per line with space separated cells.
func (g Grid) String() string {
	if g.IsEmpty() {
		return "<empty>"
	}
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < g.cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", g.cells[r*g.cols+c])
		}
	}
	return b.String()
}

// SortedColorsByCount returns the distinct values ordered by descending
// count, ties broken by ascending value.
func (g Grid) SortedColorsByCount() []uint8 {
	h := g.Histogram()
	colors := g.Colors()
	sort.SliceStable(colors, func(i, j int) bool {
		return h[colors[i]] > h[colors[j]]
	})
	return colors
}

// -----------------------------------------------------------------------------
// Builder
// -----------------------------------------------------------------------------

// Builder assembles a grid cell by cell and freezes it with Build.
//
// A Builder must not be used after Build.
type Builder struct {
	rows  int
	cols  int
	cells []uint8
}

// NewBuilder returns a zero-filled builder. Non-positive dimensions build
// the empty grid.
func NewBuilder(rows, cols int) *Builder {
	if rows <= 0 || cols <= 0 {
		return &Builder{}
	}
	return &Builder{rows: rows, cols: cols, cells: make([]uint8, rows*cols)}
}

// BuilderFrom returns a builder initialised with a copy of g.
func BuilderFrom(g Grid) *Builder {
	return &Builder{rows: g.rows, cols: g.cols, cells: g.Cells()}
}

// Rows returns the builder's row count.
func (b *Builder) Rows() int { return b.rows }

// Cols returns the builder's column count.
func (b *Builder) Cols() int { return b.cols }

// Set writes v at (r, c). Out of bounds writes are ignored.
func (b *Builder) Set(r, c int, v uint8) {
	if r < 0 || c < 0 || r >= b.rows || c >= b.cols {
		return
	}
	b.cells[r*b.cols+c] = v
}

// Get reads (r, c), returning 0 when out of bounds.
func (b *Builder) Get(r, c int) uint8 {
	if r < 0 || c < 0 || r >= b.rows || c >= b.cols {
		return 0
	}
	return b.cells[r*b.cols+c]
}

// Fill sets every cell to v.
func (b *Builder) Fill(v uint8) {
	for i := range b.cells {
		b.cells[i] = v
	}
}

// Build freezes the builder into a Grid. The builder gives up its cells.
func (b *Builder) Build() Grid {
	if b.rows <= 0 || b.cols <= 0 {
		return Grid{}
	}
	g := Grid{rows: b.rows, cols: b.cols, cells: b.cells}
	b.cells = nil
	b.rows, b.cols = 0, 0
	return g
}
