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

import "sync"

// MaxColor is the largest ARC colour.
const MaxColor = 9

// parameterless lists the leaf kinds that take no parameters and belong in
// the enumerable catalog, in catalog order.
var parameterless = []Kind{
	KindIdentity, KindRotateCW, KindRotateCCW, KindRotate180,
	KindFlipH, KindFlipV, KindTranspose, KindInvert,
	KindGravityDown, KindGravityUp, KindGravityLeft, KindGravityRight,
	KindSortRowsByColor, KindSortColsByColor,
	KindKeepLargestObject, KindKeepSmallestObject, KindCropToBBox,
	KindMirrorH, KindMirrorV, KindMostFrequentColor, KindOverlay,
	KindExtendHLines, KindExtendVLines, KindExtendCross,
	KindDiagFillTL, KindDiagFillTR,
	KindDedupRows, KindDedupCols,
}

var catalog = sync.OnceValue(buildCatalog)

// Catalog returns every enumerable primitive in a fixed order.
//
// Description:
//
//	The catalog is built once per process and shared. It holds all
//	parameterless leaves, the per-colour leaves for colours 0..9,
//	ReplaceColor for every ordered pair of distinct colours, Scale,
//	RepeatH and RepeatV for factors 2..4, and unit Translate steps.
//	Learned primitives (ColorMap, Tile, Cellular and friends) are not
//	enumerated.
//
// Thread Safety:
//
//	Safe for concurrent use. The returned slice must not be modified.
func Catalog() []*Program {
	return catalog()
}

func buildCatalog() []*Program {
	prims := make([]*Program, 0, 180)
	for _, k := range parameterless {
		if k == KindIdentity {
			prims = append(prims, Identity())
			continue
		}
		prims = append(prims, Op(k))
	}
	for c := 0; c <= MaxColor; c++ {
		prims = append(prims,
			Op(KindFillColor, c),
			Op(KindFilterColor, c),
			Op(KindRemoveColor, c),
			Op(KindBorderFill, c),
		)
	}
	for a := 0; a <= MaxColor; a++ {
		for b := 0; b <= MaxColor; b++ {
			if a != b {
				prims = append(prims, Op(KindReplaceColor, a, b))
			}
		}
	}
	for s := 2; s <= 4; s++ {
		prims = append(prims, Op(KindScale, s), Op(KindRepeatH, s), Op(KindRepeatV, s))
	}
	prims = append(prims,
		Op(KindTranslate, 1, 0),
		Op(KindTranslate, -1, 0),
		Op(KindTranslate, 0, 1),
		Op(KindTranslate, 0, -1),
	)
	return prims
}
