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
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a compact identity for a grid used to deduplicate search
// states.
//
// Description:
//
//	Hash covers shape and every cell. Shape packs rows<<16 | cols. Colors
//	holds a 3-bit log2 bucket of the count of each value 0..9 followed by
//	a 2-bit saturating count of distinct values.
//
//	Equal grids always have equal fingerprints. Unequal grids collide with
//	negligible probability; callers that must be exact (meet-in-the-middle)
//	re-check with Grid.Equal.
type Fingerprint struct {
	Hash   uint64
	Shape  uint32
	Colors uint32
}

// FingerprintOf computes the fingerprint of g.
func FingerprintOf(g Grid) Fingerprint {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(g.rows))
	binary.LittleEndian.PutUint32(header[4:8], uint32(g.cols))

	d := xxhash.New()
	_, _ = d.Write(header[:])
	_, _ = d.Write(g.cells)

	return Fingerprint{
		Hash:   d.Sum64(),
		Shape:  uint32(g.rows)<<16 | uint32(g.cols)&0xFFFF,
		Colors: colorSignature(g),
	}
}

// Fingerprint is shorthand for FingerprintOf(g).
func (g Grid) Fingerprint() Fingerprint {
	return FingerprintOf(g)
}

func colorSignature(g Grid) uint32 {
	var counts [10]int
	unique := 0
	h := g.Histogram()
	for v, n := range h {
		if n == 0 {
			continue
		}
		unique++
		if v < len(counts) {
			counts[v] = n
		}
	}
	var sig uint32
	for v, n := range counts {
		bucket := uint32(min(bits.Len(uint(n)), 7))
		sig |= bucket << (3 * v)
	}
	sig |= uint32(min(unique, 3)) << 30
	return sig
}

// -----------------------------------------------------------------------------
// FingerprintSet
// -----------------------------------------------------------------------------

// FingerprintSet is an insertion-only set of fingerprints.
//
// Thread Safety:
//
//	Not safe for concurrent use.
type FingerprintSet struct {
	seen map[Fingerprint]struct{}
}

// NewFingerprintSet returns an empty set sized for hint entries.
func NewFingerprintSet(hint int) *FingerprintSet {
	return &FingerprintSet{seen: make(map[Fingerprint]struct{}, hint)}
}

// Insert adds fp and reports whether it was not already present.
func (s *FingerprintSet) Insert(fp Fingerprint) bool {
	if _, ok := s.seen[fp]; ok {
		return false
	}
	s.seen[fp] = struct{}{}
	return true
}

// InsertGrid fingerprints g and inserts it.
func (s *FingerprintSet) InsertGrid(g Grid) bool {
	return s.Insert(FingerprintOf(g))
}

// Contains reports membership.
func (s *FingerprintSet) Contains(fp Fingerprint) bool {
	_, ok := s.seen[fp]
	return ok
}

// Len returns the number of distinct fingerprints.
func (s *FingerprintSet) Len() int {
	return len(s.seen)
}
