package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors and conflicts
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	StyleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim      = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue    = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning  = lipgloss.NewStyle().Foreground(colorYellow)
	StyleConflict = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// statusOut receives status lines. Command results go to the command's
// output writer instead, so they can be piped.
var statusOut io.Writer = os.Stderr

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printStats prints resolution statistics on a single line.
func printStats(artifacts, conflicts, overridden int) {
	parts := []string{fmt.Sprintf("%d artifacts", artifacts)}
	if overridden > 0 {
		parts = append(parts, fmt.Sprintf("%d overridden", overridden))
	}
	line := "  " + StyleDim.Render(strings.Join(parts, " · "))
	if conflicts > 0 {
		line += StyleDim.Render(" · ") + StyleConflict.Render(fmt.Sprintf("%d conflicts", conflicts))
	}
	fmt.Fprintln(statusOut, line)
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// resolvedTable renders every entry of p with its declaring parent and markers.
func resolvedTable(p *model.ResolvedPath) string {
	t := newTable("#", "Artifact", "Declared by", "Markers", "Content")
	for i, a := range p.Artifacts() {
		parent := "—"
		if id, ok := p.DeclaredBy(a.ID); ok {
			parent = id.String()
		}
		t.Row(fmt.Sprint(i+1), a.ID.String(), parent, markers(a, p.Resolution(a.ID)), content(a))
	}
	return t.Render()
}

func markers(a *model.Artifact, r model.Resolution) string {
	var m []string
	if r.Conflict > 0 {
		m = append(m, fmt.Sprintf("conflict %d", r.Conflict))
	}
	if r.ConflictParent {
		m = append(m, "conflict parent")
	}
	if r.Overridden {
		m = append(m, "overridden")
	}
	if a.Stub {
		m = append(m, "stub")
	}
	if !a.OriginalID.IsZero() {
		m = append(m, "renamed from "+a.OriginalID.String())
	}
	return strings.Join(m, ", ")
}

func content(a *model.Artifact) string {
	switch {
	case a.LocalCopy != "":
		return a.LocalCopy
	case len(a.Hash) > 12:
		return a.Hash[:12]
	default:
		return a.Hash
	}
}

// pathsTable renders the paths declared by a and the dependencies assigned
// to each. Paths that dependency specs target without a declaration are
// listed with the default flags.
func pathsTable(a *model.Artifact) string {
	t := newTable("Path", "Description", "Descend", "Mandatory", "Dependencies")
	all := append([]*model.Path(nil), a.Paths...)
	for _, to := range undeclared(a) {
		all = append(all, model.NewPath(to, "(undeclared)"))
	}
	for _, p := range all {
		t.Row(p.ID, p.Description, yesNo(p.Descend), yesNo(p.Mandatory), strings.Join(assigned(a, p), "\n"))
	}
	return t.Render()
}

// assigned lists "id spec" for every dependency spec targeting p.
func assigned(a *model.Artifact, p *model.Path) []string {
	var out []string
	for _, d := range a.Dependencies {
		for _, s := range d.SpecsTo(p.ID) {
			out = append(out, d.ID.String()+" "+pathspec.Format(s, p))
		}
	}
	return out
}

// undeclared returns the targets of a's dependency specs that a declares no
// path for, in order of first appearance.
func undeclared(a *model.Artifact) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range a.Dependencies {
		for _, s := range d.PathSpecs {
			if _, ok := a.Path(s.To); ok || seen[s.To] {
				continue
			}
			seen[s.To] = true
			out = append(out, s.To)
		}
	}
	return out
}

func countSpecs(deps []*model.Dependency, to string) int {
	n := 0
	for _, d := range deps {
		n += len(d.SpecsTo(to))
	}
	return n
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func triState(b *bool) string {
	if b == nil {
		return "default"
	}
	return yesNo(*b)
}
