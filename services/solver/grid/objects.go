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

// Point is a (row, column) cell address.
type Point struct {
	R int
	C int
}

// Object is a 4-connected component of equal, non-zero cells.
type Object struct {
	Color  uint8
	Cells  []Point
	MinRow int
	MinCol int
	MaxRow int
	MaxCol int
}

// Area returns the number of cells in the object.
func (o Object) Area() int { return len(o.Cells) }

// Height returns the bounding box height.
func (o Object) Height() int { return o.MaxRow - o.MinRow + 1 }

// Width returns the bounding box width.
func (o Object) Width() int { return o.MaxCol - o.MinCol + 1 }

// Objects returns the connected components of non-zero cells.
//
// Description:
//
//	Components use 4-connectivity and require equal colour. They are
//	returned in the row-major order of their first cell, and each
//	component's cells are listed in flood order.
//
// Outputs:
//
//	[]Object - Components, possibly empty.
func (g Grid) Objects() []Object {
	if g.IsEmpty() {
		return nil
	}
	seen := make([]bool, len(g.cells))
	var objects []Object
	stack := make([]Point, 0, 16)

	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			idx := r*g.cols + c
			color := g.cells[idx]
			if color == 0 || seen[idx] {
				continue
			}
			obj := Object{Color: color, MinRow: r, MinCol: c, MaxRow: r, MaxCol: c}
			seen[idx] = true
			stack = append(stack[:0], Point{r, c})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				obj.Cells = append(obj.Cells, p)
				obj.MinRow = min(obj.MinRow, p.R)
				obj.MaxRow = max(obj.MaxRow, p.R)
				obj.MinCol = min(obj.MinCol, p.C)
				obj.MaxCol = max(obj.MaxCol, p.C)
				for _, d := range neighbours4 {
					nr, nc := p.R+d.R, p.C+d.C
					if !g.InBounds(nr, nc) {
						continue
					}
					n := nr*g.cols + nc
					if !seen[n] && g.cells[n] == color {
						seen[n] = true
						stack = append(stack, Point{nr, nc})
					}
				}
			}
			objects = append(objects, obj)
		}
	}
	return objects
}

// CountObjects returns len(Objects()) without retaining cell lists.
func (g Grid) CountObjects() int {
	return len(g.Objects())
}

// BoundingBox returns the inclusive bounds of all non-zero cells.
// ok is false when the grid has no non-zero cell.
func (g Grid) BoundingBox() (minR, minC, maxR, maxC int, ok bool) {
	minR, minC = g.rows, g.cols
	maxR, maxC = -1, -1
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.cells[r*g.cols+c] == 0 {
				continue
			}
			minR = min(minR, r)
			maxR = max(maxR, r)
			minC = min(minC, c)
			maxC = max(maxC, c)
		}
	}
	if maxR < 0 {
		return 0, 0, 0, 0, false
	}
	return minR, minC, maxR, maxC, true
}

// SubGrid returns the h x w window starting at (r, c), clipped to the grid.
// A window that lies entirely outside yields the empty grid.
func (g Grid) SubGrid(r, c, h, w int) Grid {
	r0, c0 := max(r, 0), max(c, 0)
	r1, c1 := min(r+h, g.rows), min(c+w, g.cols)
	if r1 <= r0 || c1 <= c0 {
		return Grid{}
	}
	b := NewBuilder(r1-r0, c1-c0)
	for rr := r0; rr < r1; rr++ {
		for cc := c0; cc < c1; cc++ {
			b.Set(rr-r0, cc-c0, g.cells[rr*g.cols+cc])
		}
	}
	return b.Build()
}

var neighbours4 = [4]Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Neighbours4 returns the four orthogonal offsets.
func Neighbours4() [4]Point { return neighbours4 }

var neighbours8 = [8]Point{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Neighbours8 returns the eight Moore offsets in row-major order.
func Neighbours8() [8]Point { return neighbours8 }
