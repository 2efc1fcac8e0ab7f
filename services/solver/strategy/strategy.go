// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package strategy holds the types shared by every search strategy.
//
// Each strategy lives in its own subpackage and follows one shape: a
// Config, DefaultConfig, New, Name and a Solve method taking a context.
// Failing to find a program is a normal outcome reported as ok=false,
// never as an error. A strategy that searched before failing still returns
// a Candidate with a nil Program so the work it did is counted.
package strategy

import (
	"context"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
)

// Candidate is a program proposed by a strategy.
//
// Description:
//
//	A candidate has been checked against the pairs the strategy was given,
//	but it is not accepted until the cascade verifies it against every
//	training and test pair.
type Candidate struct {
	// Program is the proposed transform.
	Program *dsl.Program

	// Method names the strategy variant that found it.
	Method string

	// Checked counts the programs or nodes examined, found or not.
	Checked int

	// ForwardDepth and BackwardDepth are set by bidirectional search.
	ForwardDepth  int
	BackwardDepth int
}

// Exhausted reports a failed search that examined checked programs.
func Exhausted(checked int) (*Candidate, bool) {
	return &Candidate{Checked: checked}, false
}

// Problem is the input shared by every stage of the cascade.
type Problem struct {
	// Train are the pairs that constrain search.
	Train []task.Pair

	// Prims is the reduced primitive set picked by the feature selector.
	Prims []*dsl.Program

	// MaxSize caps composite size for strategies that honour it.
	MaxSize int
}

// Done reports whether ctx has been cancelled or has expired.
func Done(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
