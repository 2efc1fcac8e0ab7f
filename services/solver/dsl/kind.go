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

// Kind identifies a primitive or composite node. The set is closed.
type Kind uint8

const (
	KindIdentity Kind = iota
	KindRotateCW
	KindRotateCCW
	KindRotate180
	KindFlipH
	KindFlipV
	KindTranspose
	KindInvert

	KindGravityDown
	KindGravityUp
	KindGravityLeft
	KindGravityRight
	KindSortRowsByColor
	KindSortColsByColor

	KindKeepLargestObject
	KindKeepSmallestObject
	KindCropToBBox
	KindMirrorH
	KindMirrorV
	KindMostFrequentColor
	KindOverlay

	KindExtendHLines
	KindExtendVLines
	KindExtendCross
	KindDiagFillTL
	KindDiagFillTR

	KindDedupRows
	KindDedupCols
	KindSelfTile

	KindFillColor         // (c) recolour every non-zero cell
	KindFilterColor       // (c) keep only cells of colour c
	KindRemoveColor       // (c) clear cells of colour c
	KindBorderFill        // (c) paint the outer ring
	KindOutlineObjects    // (c) paint background cells touching an object
	KindFillInsideObjects // (c) paint background cells inside object boxes
	KindFillEnclosed      // (c) paint background not reachable from the edge
	KindReplaceColor      // (a, b)
	KindTranslate         // (dr, dc)
	KindScale             // (s)
	KindRepeatH           // (n)
	KindRepeatV           // (n)
	KindPad               // (n, c)
	KindCrop              // (r, c, h, w)
	KindExtractObject     // (i)
	KindFloodFill         // (r, c, colour)
	KindTile              // (nr, nc)
	KindRepairPeriod      // (pr, pc)
	KindConnectMarkers    // (marker, fill, mode) join single-cell markers
	KindFillBetween       // (axis) join equal colours along rows (0) or columns (1)
	KindStamp             // (trigger, shape, colour, radius)
	KindCompleteBBox      // fill each object's bounding box
	KindSelectPart        // (i) region i between separator lines
	KindSelectPartBy      // (rule)
	KindCombineParts      // (i, j, op)
	KindDiffParts         // (i, j, colour)
	KindColorMap          // (t0..t9), -1 keeps the colour
	KindCellular          // rule + (steps)

	KindSequence    // (first, second)
	KindConditional // (cond, then, else)

	kindCount
)

type kindInfo struct {
	name  string
	arity int
}

var kindTable = [kindCount]kindInfo{
	KindIdentity:           {"Identity", 0},
	KindRotateCW:           {"RotateCW", 0},
	KindRotateCCW:          {"RotateCCW", 0},
	KindRotate180:          {"Rotate180", 0},
	KindFlipH:              {"FlipH", 0},
	KindFlipV:              {"FlipV", 0},
	KindTranspose:          {"Transpose", 0},
	KindInvert:             {"Invert", 0},
	KindGravityDown:        {"GravityDown", 0},
	KindGravityUp:          {"GravityUp", 0},
	KindGravityLeft:        {"GravityLeft", 0},
	KindGravityRight:       {"GravityRight", 0},
	KindSortRowsByColor:    {"SortRowsByColor", 0},
	KindSortColsByColor:    {"SortColsByColor", 0},
	KindKeepLargestObject:  {"KeepLargestObject", 0},
	KindKeepSmallestObject: {"KeepSmallestObject", 0},
	KindCropToBBox:         {"CropToBBox", 0},
	KindMirrorH:            {"MirrorH", 0},
	KindMirrorV:            {"MirrorV", 0},
	KindMostFrequentColor:  {"MostFrequentColor", 0},
	KindOverlay:            {"Overlay", 0},
	KindExtendHLines:       {"ExtendHLines", 0},
	KindExtendVLines:       {"ExtendVLines", 0},
	KindExtendCross:        {"ExtendCross", 0},
	KindDiagFillTL:         {"DiagFillTL", 0},
	KindDiagFillTR:         {"DiagFillTR", 0},
	KindDedupRows:          {"DedupRows", 0},
	KindDedupCols:          {"DedupCols", 0},
	KindSelfTile:           {"SelfTile", 0},
	KindFillColor:          {"FillColor", 1},
	KindFilterColor:        {"FilterColor", 1},
	KindRemoveColor:        {"RemoveColor", 1},
	KindBorderFill:         {"BorderFill", 1},
	KindOutlineObjects:     {"OutlineObjects", 1},
	KindFillInsideObjects:  {"FillInsideObjects", 1},
	KindFillEnclosed:       {"FillEnclosed", 1},
	KindReplaceColor:       {"ReplaceColor", 2},
	KindTranslate:          {"Translate", 2},
	KindScale:              {"Scale", 1},
	KindRepeatH:            {"RepeatH", 1},
	KindRepeatV:            {"RepeatV", 1},
	KindPad:                {"Pad", 2},
	KindCrop:               {"Crop", 4},
	KindExtractObject:      {"ExtractObject", 1},
	KindFloodFill:          {"FloodFill", 3},
	KindTile:               {"Tile", 2},
	KindRepairPeriod:       {"RepairPeriod", 2},
	KindConnectMarkers:     {"ConnectMarkers", 3},
	KindFillBetween:        {"FillBetween", 1},
	KindStamp:              {"Stamp", 4},
	KindCompleteBBox:       {"CompleteBBox", 0},
	KindSelectPart:         {"SelectPart", 1},
	KindSelectPartBy:       {"SelectPartBy", 1},
	KindCombineParts:       {"CombineParts", 3},
	KindDiffParts:          {"DiffParts", 3},
	KindColorMap:           {"ColorMap", 10},
	KindCellular:           {"Cellular", 1},
	KindSequence:           {"Seq", 0},
	KindConditional:        {"Cond", 0},
}

// String returns the primitive's display name.
func (k Kind) String() string {
	if k >= kindCount {
		return "Unknown"
	}
	return kindTable[k].name
}

// Arity returns the number of integer parameters the kind takes.
func (k Kind) Arity() int {
	if k >= kindCount {
		return 0
	}
	return kindTable[k].arity
}

// IsComposite reports whether the kind has child programs.
func (k Kind) IsComposite() bool {
	return k == KindSequence || k == KindConditional
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool {
	return k < kindCount
}
