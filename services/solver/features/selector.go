// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package features

import (
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
)

// selection accumulates primitives, dropping structural duplicates while
// keeping first-seen order.
type selection struct {
	prims []*dsl.Program
	seen  map[string]struct{}
}

func (s *selection) add(p *dsl.Program) {
	key := p.Key()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.prims = append(s.prims, p)
}

func (s *selection) op(kind dsl.Kind, args ...int) {
	s.add(dsl.Op(kind, args...))
}

// Select returns the primitives suggested by a profile.
//
// Description:
//
//	Identity is always first. Each feature contributes a fixed group:
//
//	  same dims     rotations, flips, gravity, invert, row/col sort,
//	                keep objects, line extension, diagonals, translations
//	                by 1 and 2, and per-colour ops for colours present
//	  transposed    Transpose, RotateCW, RotateCCW
//	  scaled        Scale/RepeatH/RepeatV 2..4, Scale(rf) when rf == cf,
//	                MirrorH, MirrorV
//	  cropped       keep objects, CropToBBox, ExtractObject 0..4
//	  padded        Pad(1,c) and BorderFill(c) for every colour, mirrors
//	  arbitrary     keep objects, Transpose, ExtractObject 0..2
//	  symmetry gain mirror and flip on the gained axis
//	  fewer objects keep objects, RemoveColor for every colour
//	  more objects  OutlineObjects and FillInsideObjects for every colour
//	  bijection     ReplaceColor between every differing in/out colour
//	  reduction     RemoveColor and ReplaceColor for dropped colours
//	  expansion     fill, border, outline, fill-inside with new colours
//	                and FillEnclosed with input colours
//
//	The result never contains two structurally equal programs.
//
// Outputs:
//
//	[]*dsl.Program - The reduced primitive set, Identity first.
func Select(p Profile) []*dsl.Program {
	s := &selection{seen: make(map[string]struct{}, 64)}
	s.add(dsl.Identity())

	switch p.Dim.Kind {
	case DimSame:
		for _, k := range []dsl.Kind{
			dsl.KindRotateCW, dsl.KindRotateCCW, dsl.KindRotate180,
			dsl.KindFlipH, dsl.KindFlipV,
			dsl.KindGravityDown, dsl.KindGravityUp, dsl.KindGravityLeft, dsl.KindGravityRight,
			dsl.KindInvert, dsl.KindSortRowsByColor, dsl.KindSortColsByColor,
			dsl.KindKeepLargestObject, dsl.KindKeepSmallestObject,
			dsl.KindExtendHLines, dsl.KindExtendVLines, dsl.KindExtendCross,
			dsl.KindDiagFillTL, dsl.KindDiagFillTR,
		} {
			s.op(k)
		}
		for _, d := range []int{-2, -1, 1, 2} {
			s.op(dsl.KindTranslate, d, 0)
			s.op(dsl.KindTranslate, 0, d)
		}
		for _, ic := range p.InputColors {
			for _, oc := range p.OutputColors {
				if ic != oc {
					s.op(dsl.KindReplaceColor, int(ic), int(oc))
				}
			}
			s.op(dsl.KindFilterColor, int(ic))
			s.op(dsl.KindFillColor, int(ic))
		}
	case DimTransposed:
		s.op(dsl.KindTranspose)
		s.op(dsl.KindRotateCW)
		s.op(dsl.KindRotateCCW)
	case DimScaled:
		for f := 2; f <= 4; f++ {
			s.op(dsl.KindScale, f)
			s.op(dsl.KindRepeatH, f)
			s.op(dsl.KindRepeatV, f)
		}
		if p.Dim.RowFactor == p.Dim.ColFactor {
			s.op(dsl.KindScale, p.Dim.RowFactor)
		}
		s.op(dsl.KindMirrorH)
		s.op(dsl.KindMirrorV)
	case DimCropped:
		s.op(dsl.KindKeepLargestObject)
		s.op(dsl.KindKeepSmallestObject)
		s.op(dsl.KindCropToBBox)
		for i := 0; i < 5; i++ {
			s.op(dsl.KindExtractObject, i)
		}
	case DimPadded:
		for c := 0; c <= dsl.MaxColor; c++ {
			s.op(dsl.KindPad, 1, c)
			s.op(dsl.KindBorderFill, c)
		}
		s.op(dsl.KindMirrorH)
		s.op(dsl.KindMirrorV)
	default:
		s.op(dsl.KindKeepLargestObject)
		s.op(dsl.KindKeepSmallestObject)
		s.op(dsl.KindTranspose)
		for i := 0; i < 3; i++ {
			s.op(dsl.KindExtractObject, i)
		}
	}

	if p.OutputSymmetricH && !p.InputSymmetricH {
		s.op(dsl.KindMirrorH)
		s.op(dsl.KindFlipH)
	}
	if p.OutputSymmetricV && !p.InputSymmetricV {
		s.op(dsl.KindMirrorV)
		s.op(dsl.KindFlipV)
	}

	if p.ObjectDelta < 0 {
		s.op(dsl.KindKeepLargestObject)
		s.op(dsl.KindKeepSmallestObject)
		for c := 0; c <= dsl.MaxColor; c++ {
			s.op(dsl.KindRemoveColor, c)
		}
	}
	if p.ObjectDelta > 0 {
		for c := 0; c <= dsl.MaxColor; c++ {
			s.op(dsl.KindOutlineObjects, c)
			s.op(dsl.KindFillInsideObjects, c)
		}
	}

	switch p.Color {
	case ColorBijection:
		for _, ic := range p.InputColors {
			for _, oc := range p.OutputColors {
				if ic != oc {
					s.op(dsl.KindReplaceColor, int(ic), int(oc))
				}
			}
		}
	case ColorReduction:
		for _, c := range p.InputColors {
			if slices.Contains(p.OutputColors, c) {
				continue
			}
			s.op(dsl.KindRemoveColor, int(c))
			for _, oc := range p.OutputColors {
				s.op(dsl.KindReplaceColor, int(c), int(oc))
			}
		}
	case ColorExpansion:
		for _, c := range p.OutputColors {
			if slices.Contains(p.InputColors, c) {
				continue
			}
			s.op(dsl.KindFillColor, int(c))
			s.op(dsl.KindBorderFill, int(c))
			s.op(dsl.KindOutlineObjects, int(c))
			s.op(dsl.KindFillInsideObjects, int(c))
		}
		for _, c := range p.InputColors {
			s.op(dsl.KindFillEnclosed, int(c))
		}
	}

	return s.prims
}
