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

// Inverse returns the program that undoes p.
//
// Description:
//
//	RotateCW and RotateCCW invert each other. Rotate180, FlipH, FlipV,
//	Transpose, Invert and Identity are their own inverses.
//	ReplaceColor(a,b) is undone by ReplaceColor(b,a), which is exact only
//	when b did not occur in the input; backward search re-checks every
//	meeting point exactly. A Sequence is invertible when both children are.
//	Every other primitive loses information and has no inverse.
//
// Outputs:
//
//	*Program - The inverse.
//	bool - False when p has no declared inverse.
func Inverse(p *Program) (*Program, bool) {
	if p == nil {
		return nil, false
	}
	switch p.kind {
	case KindIdentity, KindRotate180, KindFlipH, KindFlipV, KindTranspose, KindInvert:
		return p, true
	case KindRotateCW:
		return Op(KindRotateCCW), true
	case KindRotateCCW:
		return Op(KindRotateCW), true
	case KindReplaceColor:
		return Op(KindReplaceColor, p.Arg(1), p.Arg(0)), true
	case KindSequence:
		first, ok1 := Inverse(p.children[0])
		second, ok2 := Inverse(p.children[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		return Seq(second, first), true
	}
	return nil, false
}

// HasInverse reports whether Inverse(p) succeeds.
func HasInverse(p *Program) bool {
	_, ok := Inverse(p)
	return ok
}

// InvertPath reverses a list of invertible steps and inverts each one,
// returning the composed program. ok is false if any step is lossy.
func InvertPath(steps []*Program) (*Program, bool) {
	out := make([]*Program, 0, len(steps))
	for i := len(steps) - 1; i >= 0; i-- {
		inv, ok := Inverse(steps[i])
		if !ok {
			return nil, false
		}
		out = append(out, inv)
	}
	return Chain(out...), true
}
