// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package smart

import (
	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// detectPartition explains the output as one part of a separated input, or
// as two parts overlaid. Candidates are tried in a fixed order and the
// first exact one wins.
func detectPartition(in, out grid.Grid) *dsl.Program {
	parts, ok := dsl.Partition(in)
	if !ok {
		return nil
	}
	var cands []*dsl.Program
	for i := range parts {
		cands = append(cands, dsl.Op(dsl.KindSelectPart, i))
	}
	cands = append(cands,
		dsl.Op(dsl.KindSelectPartBy, dsl.PartMostColorful),
		dsl.Op(dsl.KindSelectPartBy, dsl.PartMostDistinct),
	)
	for i := range parts {
		for j := i + 1; j < len(parts); j++ {
			for op := dsl.CombineXor; op <= dsl.CombineOr; op++ {
				cands = append(cands, dsl.Op(dsl.KindCombineParts, i, j, op))
			}
		}
	}
	for _, mark := range out.NonZeroColors() {
		for i := range parts {
			for j := range parts {
				if i != j {
					cands = append(cands, dsl.Op(dsl.KindDiffParts, i, j, int(mark)))
				}
			}
		}
	}
	for _, p := range cands {
		if dsl.Apply(p, in).Equal(out) {
			return p
		}
	}
	return nil
}

// detectConnect draws lines between same-colour markers. The line colour is
// the most common newly painted colour; each marker colour takes the mode
// that paints the most cells without contradicting the output.
func detectConnect(in, out grid.Grid) *dsl.Program {
	fill, ok := newColor(in, out)
	if !ok {
		return nil
	}
	var steps []*dsl.Program
	for _, c := range in.NonZeroColors() {
		if markers(in, c) < 2 {
			continue
		}
		var best *dsl.Program
		bestPainted := 0
		for mode := dsl.ConnectH; mode <= dsl.ConnectDiagonal; mode++ {
			p := dsl.Op(dsl.KindConnectMarkers, int(c), int(fill), mode)
			if n := painted(in, dsl.Apply(p, in), out); n > bestPainted {
				best, bestPainted = p, n
			}
		}
		if best != nil {
			steps = append(steps, best)
		}
	}
	return chained(steps, in, out)
}

// detectFillBetween tries row fills, then column fills.
func detectFillBetween(in, out grid.Grid) *dsl.Program {
	if !in.SameShape(out) {
		return nil
	}
	for axis := 0; axis <= 1; axis++ {
		p := dsl.Op(dsl.KindFillBetween, axis)
		if dsl.Apply(p, in).Equal(out) {
			return p
		}
	}
	return nil
}

// detectStamp paints a shape around each single-cell marker colour. For
// every colour the consistent stamp painting the most cells wins; on ties
// the smaller radius is kept.
func detectStamp(in, out grid.Grid) *dsl.Program {
	if !in.SameShape(out) || in.Equal(out) {
		return nil
	}
	var steps []*dsl.Program
	for _, c := range in.NonZeroColors() {
		at, ok := firstMarker(in, c)
		if !ok {
			continue
		}
		var best *dsl.Program
		bestPainted := 0
		for radius := 1; radius <= dsl.MaxStampRadius; radius++ {
			for _, shape := range []int{dsl.StampPlus, dsl.StampX, dsl.StampBox} {
				color, ok := stampColor(in, out, at, shape)
				if !ok {
					continue
				}
				p := dsl.Op(dsl.KindStamp, int(c), shape, int(color), radius)
				if n := painted(in, dsl.Apply(p, in), out); n > bestPainted {
					best, bestPainted = p, n
				}
			}
		}
		if best != nil {
			steps = append(steps, best)
		}
	}
	return chained(steps, in, out)
}

// stampColor reads the output colour at the nearest in-bounds background
// neighbour of at along shape.
func stampColor(in, out grid.Grid, at grid.Point, shape int) (uint8, bool) {
	for _, d := range shapeRing(shape) {
		r, c := at.R+d.R, at.C+d.C
		if !in.InBounds(r, c) || in.At(r, c) != 0 {
			continue
		}
		v := out.At(r, c)
		return v, v != 0
	}
	return 0, false
}

// shapeRing lists the radius-1 offsets of a stamp shape.
func shapeRing(shape int) []grid.Point {
	plus := []grid.Point{{R: -1}, {R: 1}, {C: -1}, {C: 1}}
	x := []grid.Point{{R: -1, C: -1}, {R: -1, C: 1}, {R: 1, C: -1}, {R: 1, C: 1}}
	switch shape {
	case dsl.StampPlus:
		return plus
	case dsl.StampX:
		return x
	}
	return append(plus, x...)
}

// newColor returns the most common colour painted over background, ties to
// the lowest.
func newColor(in, out grid.Grid) (uint8, bool) {
	if !in.SameShape(out) {
		return 0, false
	}
	var counts [256]int
	ic, oc := in.Cells(), out.Cells()
	for k := range ic {
		if ic[k] == 0 && oc[k] != 0 {
			counts[oc[k]]++
		}
	}
	best := 0
	for v := 1; v < len(counts); v++ {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return uint8(best), best != 0
}

// painted counts the cells got changed from in, or -1 when any of them
// disagrees with out.
func painted(in, got, out grid.Grid) int {
	if !got.SameShape(out) {
		return -1
	}
	ic, gc, oc := in.Cells(), got.Cells(), out.Cells()
	n := 0
	for k := range ic {
		if gc[k] == ic[k] {
			continue
		}
		if gc[k] != oc[k] {
			return -1
		}
		n++
	}
	return n
}

// chained returns the steps as one program if together they rebuild out.
func chained(steps []*dsl.Program, in, out grid.Grid) *dsl.Program {
	if len(steps) == 0 {
		return nil
	}
	p := dsl.Chain(steps...)
	if !dsl.Apply(p, in).Equal(out) {
		return nil
	}
	return p
}

func markers(g grid.Grid, c uint8) int {
	n := 0
	for _, o := range g.Objects() {
		if o.Area() == 1 && o.Color == c {
			n++
		}
	}
	return n
}

func firstMarker(g grid.Grid, c uint8) (grid.Point, bool) {
	for _, o := range g.Objects() {
		if o.Area() == 1 && o.Color == c {
			return o.Cells[0], true
		}
	}
	return grid.Point{}, false
}
