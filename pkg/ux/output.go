// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux styles terminal output for the arcsynth CLI.
//
// Output is styled only when it goes to a terminal. Pipes and files get
// plain text so reports stay diffable.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian palette.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")
	ColorWarning     = lipgloss.Color("#F4D03F")
	ColorError       = lipgloss.Color("#E74C3C")
)

// Styles holds the shared lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorTealBright),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon is a one-character status marker.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconError   Icon = "✗"
	IconWarning Icon = "⚠"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
)

// Render returns the icon coloured by meaning.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Printer writes lines that are styled on a terminal and plain elsewhere.
//
// Thread Safety: Not safe for concurrent use.
type Printer struct {
	w      io.Writer
	styled bool
	err    error
}

// NewPrinter styles output only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// NewPlainPrinter never styles.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Styled reports whether output is styled.
func (p *Printer) Styled() bool { return p.styled }

// Err returns the first write error.
func (p *Printer) Err() error { return p.err }

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *Printer) println(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

// Title prints a heading.
func (p *Printer) Title(s string) {
	p.println(p.render(Styles.Title, s))
}

// Line prints a formatted line without styling.
func (p *Printer) Line(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

// Muted prints a formatted line in the muted style.
func (p *Printer) Muted(format string, args ...any) {
	p.println(p.render(Styles.Muted, fmt.Sprintf(format, args...)))
}

// KV prints an aligned "key: value" line.
func (p *Printer) KV(key string, value any) {
	label := fmt.Sprintf("%-12s", key+":")
	p.println(p.render(Styles.Bold, label) + " " + fmt.Sprint(value))
}

// Status prints a line prefixed by an icon.
func (p *Printer) Status(icon Icon, format string, args ...any) {
	mark := string(icon)
	if p.styled {
		mark = icon.Render()
	}
	p.println(mark + " " + fmt.Sprintf(format, args...))
}

// Box prints lines inside a rounded border on a terminal, or indented
// otherwise.
func (p *Printer) Box(lines ...string) {
	if p.styled {
		p.println(Styles.Box.Render(strings.Join(lines, "\n")))
		return
	}
	for _, l := range lines {
		p.println("  " + l)
	}
}
