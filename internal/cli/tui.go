package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sortiz4/pipit/pkg/pip"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// packageRow is one rendered row of the interactive package table.
type packageRow struct {
	Name      string
	Installed string
	Latest    string
	Outdated  bool
}

// packageListModel is the bubbletea model for the interactive package
// browser behind "list --interactive".
type packageListModel struct {
	Rows   []packageRow
	Cursor int
	Height int
	Offset int
}

// newPackageListModel builds the model from the installed packages and the
// outdated subset (which may be empty when the index was unreachable).
func newPackageListModel(installed []pip.Package, stale []pip.OutdatedPackage) packageListModel {
	latest := make(map[string]string, len(stale))
	for _, pkg := range stale {
		latest[pkg.Name] = pkg.Latest
	}

	rows := make([]packageRow, len(installed))
	for i, pkg := range installed {
		rows[i] = packageRow{
			Name:      pkg.Name,
			Installed: pkg.Version,
			Latest:    latest[pkg.Name],
			Outdated:  latest[pkg.Name] != "",
		}
	}

	return packageListModel{
		Rows:   rows,
		Height: 15,
	}
}

func (m packageListModel) Init() tea.Cmd {
	return nil
}

func (m packageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m packageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Installed Packages"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		latest := "—"
		status := "up to date"
		if r.Outdated {
			latest = r.Latest
			status = "outdated"
		}

		rows = append(rows, []string{cursor, r.Name, r.Installed, latest, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Installed", "Latest", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			r := m.Rows[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if r.Outdated && (col == 3 || col == 4) {
				base = base.Foreground(colorYellow)
			}

			if isCurrent {
				if r.Outdated && (col == 3 || col == 4) {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			if !r.Outdated && col == 4 {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}
