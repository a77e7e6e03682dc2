package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/buildpath/pkg/model"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PathListModel - Interactive path selection
// =============================================================================

// PathListModel is the bubbletea model for picking one of an artifact's
// paths.
type PathListModel struct {
	Artifact *model.Artifact
	Paths    []*model.Path
	Cursor   int
	Selected *model.Path
}

// NewPathListModel lists the paths of a. When a declares none, the
// well-known compile, runtime and test paths are offered.
func NewPathListModel(a *model.Artifact) PathListModel {
	paths := a.Paths
	if len(paths) == 0 {
		paths = []*model.Path{
			model.NewPath(model.PathCompile, ""),
			model.NewPath(model.PathRuntime, ""),
			model.NewPath(model.PathTest, ""),
		}
	}
	m := PathListModel{Artifact: a, Paths: paths}
	for i, p := range paths {
		if p.ID == model.DefaultFrom {
			m.Cursor = i
		}
	}
	return m
}

func (m PathListModel) Init() tea.Cmd {
	return nil
}

func (m PathListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Paths)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Paths[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PathListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Path"))
	b.WriteString(" " + listDimStyle.Render(m.Artifact.ID.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, p := range m.Paths {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		n := countSpecs(m.Artifact.Dependencies, p.ID)
		line := fmt.Sprintf("%s%-12s %3d deps  %s", cursor, p.ID, n, listDimStyle.Render(p.Description))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pickPath runs the picker and returns the chosen path id, or "" when the
// user quit.
func pickPath(a *model.Artifact) (string, error) {
	final, err := tea.NewProgram(NewPathListModel(a), tea.WithOutput(statusOut)).Run()
	if err != nil {
		return "", fmt.Errorf("path picker: %w", err)
	}
	if m, ok := final.(PathListModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}
