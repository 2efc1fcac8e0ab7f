// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package features profiles a task's example pairs and uses the profile
// to pick a reduced set of primitives worth searching.
//
// The profile is computed from the first training pair only. Selection is
// a union of fixed rule outputs, so adding a feature can only add
// primitives, never remove one.
package features

import (
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

// -----------------------------------------------------------------------------
// Dimension change
// -----------------------------------------------------------------------------

// DimKind classifies how the output shape relates to the input shape.
type DimKind int

const (
	DimSame DimKind = iota
	DimTransposed
	DimScaled
	DimCropped
	DimPadded
	DimArbitrary
)

// String returns the lower-case name of the dimension change.
func (k DimKind) String() string {
	switch k {
	case DimSame:
		return "same"
	case DimTransposed:
		return "transposed"
	case DimScaled:
		return "scaled"
	case DimCropped:
		return "cropped"
	case DimPadded:
		return "padded"
	default:
		return "arbitrary"
	}
}

// DimChange is a DimKind plus the integer factors for DimScaled.
type DimChange struct {
	Kind      DimKind
	RowFactor int
	ColFactor int
}

// classifyDims checks, in order: same, transposed, integer scale with a
// factor above one, any shrink, any growth.
func classifyDims(inR, inC, outR, outC int) DimChange {
	switch {
	case inR == outR && inC == outC:
		return DimChange{Kind: DimSame}
	case inR == outC && inC == outR:
		return DimChange{Kind: DimTransposed}
	}
	if inR > 0 && inC > 0 && outR%inR == 0 && outC%inC == 0 {
		rf, cf := outR/inR, outC/inC
		if rf > 1 || cf > 1 {
			return DimChange{Kind: DimScaled, RowFactor: rf, ColFactor: cf}
		}
	}
	switch {
	case outR < inR || outC < inC:
		return DimChange{Kind: DimCropped}
	case outR > inR || outC > inC:
		return DimChange{Kind: DimPadded}
	}
	return DimChange{Kind: DimArbitrary}
}

// -----------------------------------------------------------------------------
// Colour change
// -----------------------------------------------------------------------------

// ColorChange classifies how the palette changes.
type ColorChange int

const (
	ColorSame ColorChange = iota
	ColorBijection
	ColorReduction
	ColorExpansion
	ColorComplex
)

// String returns the lower-case name of the colour change.
func (c ColorChange) String() string {
	switch c {
	case ColorSame:
		return "same"
	case ColorBijection:
		return "bijection"
	case ColorReduction:
		return "reduction"
	case ColorExpansion:
		return "expansion"
	default:
		return "complex"
	}
}

// classifyColors compares palettes. Equal-size palettes are a bijection
// unless a same-shape pair shows one input colour landing on two output
// colours, which makes it complex.
func classifyColors(in, out grid.Grid, inColors, outColors []uint8) ColorChange {
	switch {
	case slices.Equal(inColors, outColors):
		return ColorSame
	case len(outColors) < len(inColors):
		return ColorReduction
	case len(outColors) > len(inColors):
		return ColorExpansion
	}
	if in.SameShape(out) && !cellwiseFunction(in, out) {
		return ColorComplex
	}
	return ColorBijection
}

func cellwiseFunction(in, out grid.Grid) bool {
	var mapped [256]int16
	for i := range mapped {
		mapped[i] = -1
	}
	rows, cols := in.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a, b := in.At(r, c), int16(out.At(r, c))
			if mapped[a] >= 0 && mapped[a] != b {
				return false
			}
			mapped[a] = b
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Profile
// -----------------------------------------------------------------------------

// Profile summarises the first training pair.
type Profile struct {
	Dim         DimChange
	Color       ColorChange
	ObjectDelta int

	InputSymmetricH  bool
	InputSymmetricV  bool
	OutputSymmetricH bool
	OutputSymmetricV bool

	// Periods are 0 when the grid is not periodic along that axis.
	InputPeriodH  int
	InputPeriodV  int
	OutputPeriodH int
	OutputPeriodV int

	SameGrid     bool
	InputColors  []uint8
	OutputColors []uint8
	InputRows    int
	InputCols    int
	OutputRows   int
	OutputCols   int
}

// DefaultProfile is returned for tasks without training pairs.
func DefaultProfile() Profile {
	return Profile{
		Dim:      DimChange{Kind: DimSame},
		Color:    ColorSame,
		SameGrid: true,
	}
}

// Analyze profiles the first pair.
//
// Description:
//
//	Only pairs[0] is inspected. An empty slice yields DefaultProfile.
//	Object counts use 4-connected same-colour non-zero components.
//
// Inputs:
//
//	pairs - Training pairs.
//
// Outputs:
//
//	Profile - The feature profile.
func Analyze(pairs []task.Pair) Profile {
	if len(pairs) == 0 {
		return DefaultProfile()
	}
	in, out := pairs[0].Input, pairs[0].Output
	inR, inC := in.Dims()
	outR, outC := out.Dims()
	inColors, outColors := in.Colors(), out.Colors()

	return Profile{
		Dim:              classifyDims(inR, inC, outR, outC),
		Color:            classifyColors(in, out, inColors, outColors),
		ObjectDelta:      out.CountObjects() - in.CountObjects(),
		InputSymmetricH:  in.SymmetricH(),
		InputSymmetricV:  in.SymmetricV(),
		OutputSymmetricH: out.SymmetricH(),
		OutputSymmetricV: out.SymmetricV(),
		InputPeriodH:     in.PeriodH(),
		InputPeriodV:     in.PeriodV(),
		OutputPeriodH:    out.PeriodH(),
		OutputPeriodV:    out.PeriodV(),
		SameGrid:         in.Equal(out),
		InputColors:      inColors,
		OutputColors:     outColors,
		InputRows:        inR,
		InputCols:        inC,
		OutputRows:       outR,
		OutputCols:       outC,
	}
}
