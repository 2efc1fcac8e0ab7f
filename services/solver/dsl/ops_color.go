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
	"sort"

	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// mapCells applies f to every cell, keeping the shape.
func mapCells(g grid.Grid, f func(v uint8) uint8) grid.Grid {
	rows, cols := g.Dims()
	b := grid.NewBuilder(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.Set(r, c, f(g.At(r, c)))
		}
	}
	return b.Build()
}

// invert maps colour v to 9-v. Values above 9 are kept.
func invert(g grid.Grid) grid.Grid {
	return mapCells(g, func(v uint8) uint8 {
		if v > 9 {
			return v
		}
		return 9 - v
	})
}

func fillNonZero(g grid.Grid, color uint8) grid.Grid {
	return mapCells(g, func(v uint8) uint8 {
		if v != 0 {
			return color
		}
		return 0
	})
}

func filterColor(g grid.Grid, color uint8) grid.Grid {
	return mapCells(g, func(v uint8) uint8 {
		if v == color {
			return v
		}
		return 0
	})
}

func replaceColor(g grid.Grid, from, to uint8) grid.Grid {
	return mapCells(g, func(v uint8) uint8 {
		if v == from {
			return to
		}
		return v
	})
}

// applyColorTable maps v through table[v] for v < len(table); entries
// outside 0..255 keep the colour.
func applyColorTable(g grid.Grid, table []int) grid.Grid {
	return mapCells(g, func(v uint8) uint8 {
		if int(v) >= len(table) {
			return v
		}
		to := table[v]
		if to < 0 || to > 255 {
			return v
		}
		return uint8(to)
	})
}

// mostFrequentFill recolours every non-zero cell with the most common
// non-zero colour, ties going to the lower colour.
func mostFrequentFill(g grid.Grid) grid.Grid {
	h := g.Histogram()
	best, bestCount := 0, 0
	for v := 1; v < len(h); v++ {
		if h[v] > bestCount {
			best, bestCount = v, h[v]
		}
	}
	if bestCount == 0 {
		return g
	}
	return fillNonZero(g, uint8(best))
}

func borderFill(g grid.Grid, color uint8) grid.Grid {
	if g.IsEmpty() {
		return g
	}
	rows, cols := g.Dims()
	b := grid.BuilderFrom(g)
	for c := 0; c < cols; c++ {
		b.Set(0, c, color)
		b.Set(rows-1, c, color)
	}
	for r := 0; r < rows; r++ {
		b.Set(r, 0, color)
		b.Set(r, cols-1, color)
	}
	return b.Build()
}

// gravity slides non-zero cells as far as possible in direction (dr, dc),
// preserving their relative order along each line.
func gravity(g grid.Grid, dr, dc int) grid.Grid {
	rows, cols := g.Dims()
	b := grid.NewBuilder(rows, cols)
	if dc == 0 {
		for c := 0; c < cols; c++ {
			var line []uint8
			for r := 0; r < rows; r++ {
				if v := g.At(r, c); v != 0 {
					line = append(line, v)
				}
			}
			start := 0
			if dr > 0 {
				start = rows - len(line)
			}
			for i, v := range line {
				b.Set(start+i, c, v)
			}
		}
		return b.Build()
	}
	for r := 0; r < rows; r++ {
		var line []uint8
		for c := 0; c < cols; c++ {
			if v := g.At(r, c); v != 0 {
				line = append(line, v)
			}
		}
		start := 0
		if dc > 0 {
			start = cols - len(line)
		}
		for i, v := range line {
			b.Set(r, start+i, v)
		}
	}
	return b.Build()
}

// sortRows stable-sorts rows by their count of non-zero cells, densest first.
func sortRows(g grid.Grid) grid.Grid {
	rows, cols := g.Dims()
	if rows < 2 {
		return g
	}
	order := make([]int, rows)
	counts := make([]int, rows)
	for r := 0; r < rows; r++ {
		order[r] = r
		for c := 0; c < cols; c++ {
			if g.At(r, c) != 0 {
				counts[r]++
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return remap(g, rows, cols, func(r, c int) (int, int) { return order[r], c })
}
