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

// Apply runs p on g.
//
// Description:
//
//	Apply is total: every program maps every grid to some grid. Parameters
//	that make no sense for the input (out of range colours, crops beyond
//	the edge, zero scale factors) produce a degenerate result, usually the
//	input itself or the empty grid. Apply never panics and never mutates g.
//
// Inputs:
//
//	p - The program. A nil program behaves as Identity.
//	g - The input grid.
//
// Outputs:
//
//	grid.Grid - The transformed grid.
func Apply(p *Program, g grid.Grid) grid.Grid {
	if p == nil {
		return g
	}
	switch p.kind {
	case KindIdentity:
		return g
	case KindRotateCW:
		return rotateCW(g)
	case KindRotateCCW:
		return rotateCCW(g)
	case KindRotate180:
		return rotate180(g)
	case KindFlipH:
		return flipH(g)
	case KindFlipV:
		return flipV(g)
	case KindTranspose:
		return transpose(g)
	case KindInvert:
		return invert(g)

	case KindGravityDown:
		return gravity(g, 1, 0)
	case KindGravityUp:
		return gravity(g, -1, 0)
	case KindGravityLeft:
		return gravity(g, 0, -1)
	case KindGravityRight:
		return gravity(g, 0, 1)
	case KindSortRowsByColor:
		return sortRows(g)
	case KindSortColsByColor:
		return transpose(sortRows(transpose(g)))

	case KindKeepLargestObject:
		return keepObject(g, true)
	case KindKeepSmallestObject:
		return keepObject(g, false)
	case KindCropToBBox:
		return cropToBBox(g)
	case KindMirrorH:
		return mirrorH(g)
	case KindMirrorV:
		return mirrorV(g)
	case KindMostFrequentColor:
		return mostFrequentFill(g)
	case KindOverlay:
		return overlayHalves(g)

	case KindExtendHLines:
		return extendMarkers(g, true, false)
	case KindExtendVLines:
		return extendMarkers(g, false, true)
	case KindExtendCross:
		return extendMarkers(g, true, true)
	case KindDiagFillTL:
		return diagonalFill(g, 1)
	case KindDiagFillTR:
		return diagonalFill(g, -1)

	case KindDedupRows:
		return dedupRows(g)
	case KindDedupCols:
		return transpose(dedupRows(transpose(g)))
	case KindSelfTile:
		return selfTile(g)

	case KindFillColor:
		return fillNonZero(g, colorArg(p, 0))
	case KindFilterColor:
		return filterColor(g, colorArg(p, 0))
	case KindRemoveColor:
		return replaceColor(g, colorArg(p, 0), 0)
	case KindBorderFill:
		return borderFill(g, colorArg(p, 0))
	case KindOutlineObjects:
		return outlineObjects(g, colorArg(p, 0))
	case KindFillInsideObjects:
		return fillInsideObjects(g, colorArg(p, 0))
	case KindFillEnclosed:
		return fillEnclosed(g, colorArg(p, 0))
	case KindReplaceColor:
		return replaceColor(g, colorArg(p, 0), colorArg(p, 1))
	case KindTranslate:
		return translate(g, p.Arg(0), p.Arg(1))
	case KindScale:
		return scale(g, p.Arg(0))
	case KindRepeatH:
		return tile(g, 1, p.Arg(0))
	case KindRepeatV:
		return tile(g, p.Arg(0), 1)
	case KindPad:
		return pad(g, p.Arg(0), colorArg(p, 1))
	case KindCrop:
		return crop(g, p.Arg(0), p.Arg(1), p.Arg(2), p.Arg(3))
	case KindExtractObject:
		return extractObject(g, p.Arg(0))
	case KindFloodFill:
		return floodFill(g, p.Arg(0), p.Arg(1), colorArg(p, 2))
	case KindTile:
		return tile(g, p.Arg(0), p.Arg(1))
	case KindRepairPeriod:
		return repairPeriod(g, p.Arg(0), p.Arg(1))
	case KindConnectMarkers:
		return connectMarkers(g, colorArg(p, 0), colorArg(p, 1), p.Arg(2))
	case KindFillBetween:
		return fillBetween(g, p.Arg(0))
	case KindStamp:
		return stamp(g, colorArg(p, 0), p.Arg(1), colorArg(p, 2), p.Arg(3))
	case KindCompleteBBox:
		return completeBBox(g)
	case KindSelectPart:
		return selectPart(g, p.Arg(0))
	case KindSelectPartBy:
		return selectPartBy(g, p.Arg(0))
	case KindCombineParts:
		return combineParts(g, p.Arg(0), p.Arg(1), p.Arg(2))
	case KindDiffParts:
		return diffParts(g, p.Arg(0), p.Arg(1), colorArg(p, 2))
	case KindColorMap:
		return applyColorTable(g, p.args)
	case KindCellular:
		return p.rule.Run(g, p.Arg(0))

	case KindSequence:
		return Apply(p.children[1], Apply(p.children[0], g))
	case KindConditional:
		if !Apply(p.children[0], g).Equal(g) {
			return Apply(p.children[1], g)
		}
		return Apply(p.children[2], g)
	}
	return g
}

// colorArg clamps parameter i into the byte range; out of range colours
// become 255, which never matches a real ARC colour.
func colorArg(p *Program, i int) uint8 {
	v := p.Arg(i)
	if v < 0 || v > 255 {
		return 255
	}
	return uint8(v)
}
