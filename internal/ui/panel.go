package ui

import (
	"strings"

	"mirror-ca/internal/core"
)

// LineKind selects the color and spacing of a panel row.
type LineKind int

const (
	LineTitle LineKind = iota
	LineStatus
	LineGroup
	LineParam
	LineSummary
)

// Line is one row of the HUD panel. Value is right-aligned when set.
type Line struct {
	Kind  LineKind
	Text  string
	Value string
}

// PanelLines lays out the title, live status rows and the parameter groups.
func PanelLines(title string, status []string, snap core.ParameterSnapshot) []Line {
	lines := []Line{{Kind: LineTitle, Text: title}}
	for _, s := range status {
		lines = append(lines, Line{Kind: LineStatus, Text: s})
	}
	for _, g := range snap.Groups {
		lines = append(lines, Line{Kind: LineGroup, Text: g.Name})
		for _, p := range g.Params {
			lines = append(lines, Line{Kind: LineParam, Text: p.Label, Value: p.Value})
		}
		if g.Summary != "" {
			lines = append(lines, Line{Kind: LineSummary, Text: g.Summary})
		}
	}
	return lines
}

func buildTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Lattice"
	}
	name := sim.Name()
	return strings.ToUpper(name[:1]) + name[1:] + " lattice"
}
