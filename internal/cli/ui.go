package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/deploygraph/pkg/graph"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary values
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
	colorWhite  = lipgloss.Color("255") // Bright white - values
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
)

// printSummary writes a short human-readable description of g to w.
// dest names where the graph was written; empty means standard output.
func printSummary(w io.Writer, source, dest string, g *graph.Graph) {
	modules, collections, flagged := 0, 0, 0
	for _, n := range g.Nodes {
		if n.Kind.IsModule() {
			modules++
		}
		if n.IsCollection() {
			collections++
		}
		if n.HasError {
			flagged++
		}
	}

	if g.HasErrors {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render("graph built from a document with errors"))
	} else {
		fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+StyleTitle.Render("deployment graph"))
	}
	printKeyValue(w, "source", source)
	if dest != "" {
		fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(dest))
	}
	printStats(w, []stat{
		{len(g.Nodes), "nodes"},
		{len(g.Edges), "edges"},
		{modules, "modules"},
		{collections, "collections"},
		{flagged, "flagged"},
	})
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

type stat struct {
	n    int
	name string
}

// printStats prints the non-zero counts on a single line. The first entry
// is always printed.
func printStats(w io.Writer, stats []stat) {
	var parts []string
	for i, s := range stats {
		if s.n == 0 && i > 0 {
			continue
		}
		parts = append(parts, StyleNumber.Render(fmt.Sprint(s.n))+" "+StyleDim.Render(s.name))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
