// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package smart infers closed-form transforms directly from one example.
//
// Each detector reads the first training pair, proposes the single program
// that would explain it, and keeps it only if that program reproduces every
// training pair. Detectors run in a fixed order and the first hit wins.
package smart

import (
	"context"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Detector names, in default order.
const (
	DetectColorMap     = "color_map"
	DetectSelfTile     = "self_tile"
	DetectTile         = "tile"
	DetectSubgrid      = "subgrid"
	DetectDedupRows    = "dedup_rows"
	DetectDedupCols    = "dedup_cols"
	DetectRepairPeriod = "repair_period"
	DetectPartition    = "partition"
	DetectConnect      = "connect"
	DetectFillBetween  = "fill_between"
	DetectStamp        = "stamp"
	DetectCompleteBBox = "complete_bbox"
)

// detector proposes a program from the first pair, or nil.
type detector func(in, out grid.Grid) *dsl.Program

var detectors = map[string]detector{
	DetectColorMap:     detectColorMap,
	DetectSelfTile:     fixed(dsl.KindSelfTile),
	DetectTile:         detectTile,
	DetectSubgrid:      detectSubgrid,
	DetectDedupRows:    fixed(dsl.KindDedupRows),
	DetectDedupCols:    fixed(dsl.KindDedupCols),
	DetectRepairPeriod: detectDamagedPeriod,
	DetectPartition:    detectPartition,
	DetectConnect:      detectConnect,
	DetectFillBetween:  detectFillBetween,
	DetectStamp:        detectStamp,
	DetectCompleteBBox: fixed(dsl.KindCompleteBBox),
}

// -----------------------------------------------------------------------------
// Strategy
// -----------------------------------------------------------------------------

// Config configures the detector run.
type Config struct {
	// Detectors lists detector names in the order they are tried.
	// Unknown names are ignored.
	Detectors []string `yaml:"detectors" json:"detectors"`
}

// DefaultConfig returns every detector in its standard order.
func DefaultConfig() *Config {
	return &Config{
		Detectors: []string{
			DetectColorMap,
			DetectSelfTile,
			DetectTile,
			DetectSubgrid,
			DetectDedupRows,
			DetectDedupCols,
			DetectRepairPeriod,
			DetectPartition,
			DetectConnect,
			DetectFillBetween,
			DetectStamp,
			DetectCompleteBBox,
		},
	}
}

// Smart runs the closed-form detectors.
//
// Thread Safety: Safe for concurrent use.
type Smart struct {
	config *Config
}

// New creates the strategy.
//
// Inputs:
//   - config: Configuration. If nil, uses DefaultConfig().
func New(config *Config) *Smart {
	if config == nil {
		config = DefaultConfig()
	}
	return &Smart{config: config}
}

// Name returns the strategy name.
func (s *Smart) Name() string {
	return "smart"
}

// Solve tries each detector in order.
//
// Description:
//
//	The winning candidate's method is "smart_<detector>" and its checked
//	count is 1. Pairs are never guessed from; a detector that cannot
//	describe pair 0 proposes nothing.
//
// Inputs:
//
//	ctx   - Polled between detectors.
//	pairs - Training pairs.
//
// Outputs:
//
//	*strategy.Candidate - The verified candidate.
//	bool                - False when no detector explains every pair;
//	                      Checked then counts the proposals rejected.
func (s *Smart) Solve(ctx context.Context, pairs []task.Pair) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	in, out := pairs[0].Input, pairs[0].Output
	proposed := 0
	for _, name := range s.config.Detectors {
		if strategy.Done(ctx) {
			return strategy.Exhausted(proposed)
		}
		detect, ok := detectors[name]
		if !ok {
			continue
		}
		p := detect(in, out)
		if p == nil {
			continue
		}
		proposed++
		if !verify.Exact(p, pairs) {
			continue
		}
		return &strategy.Candidate{Program: p, Method: "smart_" + name, Checked: 1}, true
	}
	return strategy.Exhausted(proposed)
}

// -----------------------------------------------------------------------------
// Detectors
// -----------------------------------------------------------------------------

func fixed(kind dsl.Kind) detector {
	return func(in, out grid.Grid) *dsl.Program {
		p := dsl.Op(kind)
		if !dsl.Apply(p, in).Equal(out) {
			return nil
		}
		return p
	}
}

// detectColorMap learns a cellwise colour table from a same-shape pair.
// Any colour sent to two different colours rejects the pair.
func detectColorMap(in, out grid.Grid) *dsl.Program {
	if !in.SameShape(out) {
		return nil
	}
	var table [10]int
	for i := range table {
		table[i] = -2
	}
	rows, cols := in.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a, b := int(in.At(r, c)), int(out.At(r, c))
			if a > dsl.MaxColor || b > dsl.MaxColor {
				return nil
			}
			if table[a] != -2 && table[a] != b {
				return nil
			}
			table[a] = b
		}
	}
	for i, v := range table {
		if v == -2 || v == i {
			table[i] = -1
		}
	}
	return dsl.ColorMap(table)
}

// detectTile checks for an integer tiling of the whole input.
func detectTile(in, out grid.Grid) *dsl.Program {
	if in.IsEmpty() || out.IsEmpty() {
		return nil
	}
	inR, inC := in.Dims()
	outR, outC := out.Dims()
	if outR%inR != 0 || outC%inC != 0 {
		return nil
	}
	p := dsl.Op(dsl.KindTile, outR/inR, outC/inC)
	if !dsl.Apply(p, in).Equal(out) {
		return nil
	}
	return p
}

// detectSubgrid finds the first offset, in scan order, where the output
// appears inside the input.
func detectSubgrid(in, out grid.Grid) *dsl.Program {
	if out.IsEmpty() {
		return nil
	}
	inR, inC := in.Dims()
	h, w := out.Dims()
	for r := 0; r+h <= inR; r++ {
		for c := 0; c+w <= inC; c++ {
			if in.SubGrid(r, c, h, w).Equal(out) {
				return dsl.Op(dsl.KindCrop, r, c, h, w)
			}
		}
	}
	return nil
}

// detectDamagedPeriod looks for the smallest period (pr, pc), each
// dividing its axis and at most half of it, such that the output tiles
// exactly with that period and the input differs from the output only in
// zero cells, at least one of which is repaired.
func detectDamagedPeriod(in, out grid.Grid) *dsl.Program {
	if !in.SameShape(out) || in.IsEmpty() {
		return nil
	}
	rows, cols := in.Dims()
	if !consistentDamage(in, out) {
		return nil
	}
	for pr := 1; pr <= rows/2; pr++ {
		if rows%pr != 0 {
			continue
		}
		for pc := 1; pc <= cols/2; pc++ {
			if cols%pc != 0 || !periodic(out, pr, pc) {
				continue
			}
			return dsl.Op(dsl.KindRepairPeriod, pr, pc)
		}
	}
	return nil
}

// consistentDamage reports whether in equals out except at zero cells and
// at least one zero is filled.
func consistentDamage(in, out grid.Grid) bool {
	damaged := false
	rows, cols := in.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a, b := in.At(r, c), out.At(r, c)
			switch {
			case a == 0 && b != 0:
				damaged = true
			case a != 0 && a != b:
				return false
			}
		}
	}
	return damaged
}

func periodic(g grid.Grid, pr, pc int) bool {
	rows, cols := g.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(r, c) != g.At(r%pr, c%pc) {
				return false
			}
		}
	}
	return true
}
