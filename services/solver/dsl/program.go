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
	"fmt"
	"strconv"
	"strings"
)

// Program is an immutable transform tree.
//
// Description:
//
//	Leaves carry a Kind and small integer parameters. A Sequence applies
//	its first child then its second. A Conditional applies its "then"
//	child when the condition changes the grid, otherwise its "else" child.
//	Children are shared between programs; nothing is ever modified after
//	construction.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Program struct {
	kind     Kind
	args     []int
	rule     *CellRule
	children []*Program
}

// Op builds a leaf program. Parameters are copied.
func Op(kind Kind, args ...int) *Program {
	p := &Program{kind: kind}
	if len(args) > 0 {
		p.args = append([]int(nil), args...)
	}
	return p
}

// Identity returns the identity program.
func Identity() *Program { return identity }

var identity = &Program{kind: KindIdentity}

// Seq composes first then second. A nil side yields the other side.
func Seq(first, second *Program) *Program {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return &Program{kind: KindSequence, children: []*Program{first, second}}
}

// Chain composes steps left to right. An empty chain is Identity.
func Chain(steps ...*Program) *Program {
	var out *Program
	for _, s := range steps {
		out = Seq(out, s)
	}
	if out == nil {
		return Identity()
	}
	return out
}

// Cond builds a conditional: then when cond changes the grid, else otherwise.
func Cond(cond, then, els *Program) *Program {
	return &Program{kind: KindConditional, children: []*Program{cond, then, els}}
}

// ColorMap builds a learned colour table. table[v] is the new colour for v,
// or -1 to keep v.
func ColorMap(table [10]int) *Program {
	return Op(KindColorMap, table[:]...)
}

// Cellular builds a learned cellular automaton applied for steps iterations.
func Cellular(rule *CellRule, steps int) *Program {
	return &Program{kind: KindCellular, args: []int{steps}, rule: rule}
}

// Kind returns the node kind.
func (p *Program) Kind() Kind { return p.kind }

// Arg returns parameter i, or 0 when absent.
func (p *Program) Arg(i int) int {
	if i < 0 || i >= len(p.args) {
		return 0
	}
	return p.args[i]
}

// NumArgs returns the number of parameters present.
func (p *Program) NumArgs() int { return len(p.args) }

// Rule returns the learned cellular rule, nil for other kinds.
func (p *Program) Rule() *CellRule { return p.rule }

// Children returns the child programs. The slice must not be modified.
func (p *Program) Children() []*Program { return p.children }

// IsLeaf reports whether p has no children.
func (p *Program) IsLeaf() bool { return !p.kind.IsComposite() }

// Size counts nodes: 1 for a leaf, 1 plus the children for a composite.
func (p *Program) Size() int {
	if p == nil {
		return 0
	}
	n := 1
	for _, c := range p.children {
		n += c.Size()
	}
	return n
}

// Depth returns the number of leaf steps on the longest Sequence chain.
func (p *Program) Depth() int {
	switch p.kind {
	case KindSequence:
		return p.children[0].Depth() + p.children[1].Depth()
	case KindConditional:
		return max(p.children[0].Depth(), p.children[1].Depth(), p.children[2].Depth())
	default:
		return 1
	}
}

// Steps flattens a Sequence tree into its leaves in application order.
// Conditionals are kept as single steps.
func (p *Program) Steps() []*Program {
	if p == nil {
		return nil
	}
	if p.kind != KindSequence {
		return []*Program{p}
	}
	return append(p.children[0].Steps(), p.children[1].Steps()...)
}

// Equal reports structural equality.
func (p *Program) Equal(other *Program) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil || p.kind != other.kind || p.rule != other.rule {
		return false
	}
	if len(p.args) != len(other.args) || len(p.children) != len(other.children) {
		return false
	}
	for i, a := range p.args {
		if other.args[i] != a {
			return false
		}
	}
	for i, c := range p.children {
		if !c.Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// String renders the program, e.g. "Seq(FlipH, ReplaceColor(1,2))".
func (p *Program) String() string {
	if p == nil {
		return "<nil>"
	}
	var b strings.Builder
	p.render(&b)
	return b.String()
}

// Key is a structural identity suitable for map keys.
func (p *Program) Key() string {
	return p.String()
}

func (p *Program) render(b *strings.Builder) {
	b.WriteString(p.kind.String())
	switch {
	case p.kind.IsComposite():
		b.WriteByte('(')
		for i, c := range p.children {
			if i > 0 {
				b.WriteString(", ")
			}
			c.render(b)
		}
		b.WriteByte(')')
	case p.kind == KindCellular:
		fmt.Fprintf(b, "(steps=%d,rules=%d)", p.Arg(0), p.rule.Len())
	case len(p.args) > 0:
		b.WriteByte('(')
		for i, a := range p.args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(a))
		}
		b.WriteByte(')')
	}
}
