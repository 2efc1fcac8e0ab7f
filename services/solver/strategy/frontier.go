// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package strategy

import (
	"slices"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// Node is one reached search state.
type Node struct {
	// Grid is the state.
	Grid grid.Grid

	// Path lists the steps applied from the frontier's root, in order.
	Path []*dsl.Program

	// Depth is len(Path).
	Depth int
}

// Program returns the node's path as a single program.
func (n *Node) Program() *dsl.Program {
	return dsl.Chain(n.Path...)
}

// Frontier holds the states reached from one root grid.
//
// Description:
//
//	States are grouped by depth and kept in insertion order, so expansion
//	order is the same on every run. Dedup is by fingerprint alone: a fresh
//	state whose fingerprint collides with a stored one is dropped without
//	comparing grids. Lookup, used to detect a goal or a meeting point,
//	always confirms with an exact comparison.
//
// Thread Safety: Not safe for concurrent use. Each search owns its own.
type Frontier struct {
	layers [][]*Node
	index  map[grid.Fingerprint]*Node
	size   int
}

// NewFrontier creates a frontier holding root at depth 0.
func NewFrontier(root grid.Grid) *Frontier {
	n := &Node{Grid: root}
	return &Frontier{
		layers: [][]*Node{{n}},
		index:  map[grid.Fingerprint]*Node{root.Fingerprint(): n},
		size:   1,
	}
}

// Layer returns the nodes at depth d in insertion order. The slice must
// not be modified.
func (f *Frontier) Layer(d int) []*Node {
	if d < 0 || d >= len(f.layers) {
		return nil
	}
	return f.layers[d]
}

// Len returns the number of stored states.
func (f *Frontier) Len() int {
	return f.size
}

// Seen reports whether a state with this fingerprint is stored.
func (f *Frontier) Seen(fp grid.Fingerprint) bool {
	_, ok := f.index[fp]
	return ok
}

// Lookup returns the stored state exactly equal to g.
func (f *Frontier) Lookup(g grid.Grid, fp grid.Fingerprint) (*Node, bool) {
	n, ok := f.index[fp]
	if !ok || !n.Grid.Equal(g) {
		return nil, false
	}
	return n, true
}

// Add stores g as the child of parent reached by step.
//
// Description:
//
//	The caller is expected to have checked Seen. The parent's path is
//	never shared with the child.
func (f *Frontier) Add(parent *Node, step *dsl.Program, g grid.Grid, fp grid.Fingerprint) *Node {
	n := &Node{
		Grid:  g,
		Path:  append(slices.Clip(parent.Path), step),
		Depth: parent.Depth + 1,
	}
	for len(f.layers) <= n.Depth {
		f.layers = append(f.layers, nil)
	}
	f.layers[n.Depth] = append(f.layers[n.Depth], n)
	f.index[fp] = n
	f.size++
	return n
}
