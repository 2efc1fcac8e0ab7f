// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cellular learns local neighbourhood rules and iterates them.
package cellular

import (
	"context"
	"fmt"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Config configures the learner.
type Config struct {
	// MaxSteps is the largest iteration count tried.
	MaxSteps int `yaml:"max_steps" json:"max_steps" validate:"gte=1,lte=64"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{MaxSteps: 3}
}

// Learner is the cellular automaton strategy.
//
// Description:
//
//	A signature table is learned from the first training pair. With one
//	step the table must reproduce every pair directly. Longer runs reuse
//	the same table, iterate it up to the step count or a fixpoint, and
//	are only tried when there is a second pair to confirm the guess.
//
// Thread Safety: Safe for concurrent use.
type Learner struct {
	config *Config
}

// New creates the learner.
//
// Inputs:
//   - config: Configuration. If nil, uses DefaultConfig().
func New(config *Config) *Learner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Learner{config: config}
}

// Name returns the strategy name.
func (l *Learner) Name() string {
	return "cellular"
}

// Solve learns a rule and searches for a working step count.
//
// Outputs:
//
//	*strategy.Candidate - Method "cellular_<n>steps"; Checked is the number
//	                      of step counts tried.
//	bool                - False when no table or step count fits.
func (l *Learner) Solve(ctx context.Context, pairs []task.Pair) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	rule, ok := dsl.LearnCellRule(pairs[0].Input, pairs[0].Output)
	if !ok || rule.Changes() == 0 {
		return nil, false
	}

	checked := 0
	for steps := 1; steps <= l.config.MaxSteps; steps++ {
		if strategy.Done(ctx) {
			return strategy.Exhausted(checked)
		}
		if steps > 1 && len(pairs) < 2 {
			break
		}
		checked++
		p := dsl.Cellular(rule, steps)
		if verify.Exact(p, pairs) {
			return &strategy.Candidate{
				Program: p,
				Method:  fmt.Sprintf("cellular_%dsteps", steps),
				Checked: checked,
			}, true
		}
	}
	return strategy.Exhausted(checked)
}
