package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/cherry/cherry-cli/internal/testrun"
)

// Adaptive so text stays readable on both light and dark terminal backgrounds.
var (
	cherryTextColor = lipgloss.AdaptiveColor{Light: "#2b1d22", Dark: "#f7f1f3"}
	cherryMuted     = lipgloss.AdaptiveColor{Light: "#7d6870", Dark: "#d9ccd1"}
	// Borders must remain visible on light terminals; keep light-theme borders darker.
	cherryBorder  = lipgloss.AdaptiveColor{Light: "#7d6870", Dark: "#d9ccd1"}
	cherryAccent  = lipgloss.AdaptiveColor{Light: "#b3124a", Dark: "#e0457b"}
	cherryDanger  = lipgloss.AdaptiveColor{Light: "#a32138", Dark: "#e5484d"}
	cherrySuccess = lipgloss.AdaptiveColor{Light: "#1d7a46", Dark: "#3dd68c"}
	cherryWarning = lipgloss.AdaptiveColor{Light: "#9a5b00", Dark: "#f5a524"}
	cherryInfo    = lipgloss.AdaptiveColor{Light: "#1f5fbf", Dark: "#70b8ff"}
)

func cherryListStyles() list.Styles {
	s := list.DefaultStyles()

	s.TitleBar = lipgloss.NewStyle().Padding(0, 0, 1, 0)
	s.Title = lipgloss.NewStyle().Bold(true).Foreground(cherryTextColor).UnsetBackground()

	s.StatusBar = lipgloss.NewStyle().Foreground(cherryMuted).Padding(0, 0, 1, 0)
	s.StatusEmpty = lipgloss.NewStyle().Foreground(cherryMuted)
	s.NoItems = lipgloss.NewStyle().Foreground(cherryMuted)
	s.HelpStyle = lipgloss.NewStyle().Padding(1, 0, 0, 0).Foreground(cherryMuted)

	return s
}

func cherryDefaultItemStyles() list.DefaultItemStyles {
	s := list.NewDefaultItemStyles()

	s.NormalTitle = lipgloss.NewStyle().
		Foreground(cherryTextColor).
		Padding(0, 0, 0, 2)

	s.NormalDesc = lipgloss.NewStyle().
		Foreground(cherryMuted).
		Padding(0, 0, 0, 2)

	s.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(cherryAccent).
		Foreground(cherryTextColor).
		Bold(true).
		Padding(0, 0, 0, 1)

	s.SelectedDesc = s.SelectedTitle.
		Bold(false).
		Foreground(cherryMuted)

	s.DimmedTitle = lipgloss.NewStyle().
		Foreground(cherryMuted).
		Padding(0, 0, 0, 2)

	s.DimmedDesc = lipgloss.NewStyle().
		Foreground(cherryBorder).
		Padding(0, 0, 0, 2)

	return s
}

func minimalTableStyles() table.Styles {
	s := table.DefaultStyles()
	// Plain header/cells with a little horizontal breathing room.
	s.Header = lipgloss.NewStyle().Foreground(cherryMuted).Bold(true).Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	// Selected row: typographic emphasis rather than color blocks.
	s.Selected = lipgloss.NewStyle().Bold(true).Underline(true)
	return s
}

func statusColor(s testrun.Status) lipgloss.TerminalColor {
	switch s {
	case testrun.StatusPending:
		return cherryMuted
	case testrun.StatusInProgress:
		return cherryInfo
	case testrun.StatusComplete:
		return cherrySuccess
	case testrun.StatusAbort:
		return cherryDanger
	}
	return cherryBorder
}

func statusBadge(s testrun.Status) string {
	return lipgloss.NewStyle().
		Foreground(statusColor(s)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(statusColor(s)).
		Padding(0, 1).
		Render(s.Label())
}

// caseStatusGlyph prefixes case status labels in the table, which cannot hold
// styled cells without breaking its width math.
func caseStatusGlyph(s testrun.CaseStatus) string {
	switch s {
	case testrun.CasePassed:
		return "✓"
	case testrun.CaseFailed:
		return "✗"
	case testrun.CaseBlocked:
		return "■"
	case testrun.CaseSkipped:
		return "»"
	}
	return "○"
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.HiddenBorder()).
		Padding(0, 1).
		AlignVertical(lipgloss.Top).
		Align(lipgloss.Left)
}

func footerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(cherryMuted).Faint(true)
}
