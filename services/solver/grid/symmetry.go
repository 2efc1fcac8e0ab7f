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

// SymmetricH reports whether every row reads the same left to right and
// right to left. The empty grid is symmetric.
func (g Grid) SymmetricH() bool {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols/2; c++ {
			if g.cells[r*g.cols+c] != g.cells[r*g.cols+g.cols-1-c] {
				return false
			}
		}
	}
	return true
}

// SymmetricV reports whether the grid equals its top-bottom mirror.
func (g Grid) SymmetricV() bool {
	for r := 0; r < g.rows/2; r++ {
		for c := 0; c < g.cols; c++ {
			if g.cells[r*g.cols+c] != g.cells[(g.rows-1-r)*g.cols+c] {
				return false
			}
		}
	}
	return true
}

// PeriodH returns the smallest column period p with 1 <= p <= cols/2 such
// that every cell equals the cell p columns to its left, or 0 if none.
func (g Grid) PeriodH() int {
	for p := 1; p <= g.cols/2; p++ {
		if g.hasPeriod(0, p) {
			return p
		}
	}
	return 0
}

// PeriodV returns the smallest row period, as PeriodH does for columns.
func (g Grid) PeriodV() int {
	for p := 1; p <= g.rows/2; p++ {
		if g.hasPeriod(p, 0) {
			return p
		}
	}
	return 0
}

func (g Grid) hasPeriod(pr, pc int) bool {
	for r := pr; r < g.rows; r++ {
		for c := pc; c < g.cols; c++ {
			if g.cells[r*g.cols+c] != g.cells[(r-pr)*g.cols+(c-pc)] {
				return false
			}
		}
	}
	return true
}
