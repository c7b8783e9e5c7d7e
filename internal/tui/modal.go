package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalSettings modalKind = iota
	modalExport
)

type modalResult int

const (
	modalResultNone modalResult = iota
	modalResultChosen
	modalResultCanceled
)

type modalModel struct {
	kind  modalKind
	title string

	list   list.Model
	status string

	result modalResult
}

type modalItem struct {
	id     string
	name   string
	desc   string
	danger bool
}

func (i modalItem) Title() string       { return i.name }
func (i modalItem) Description() string { return i.desc }
func (i modalItem) FilterValue() string { return i.name + " " + i.desc }

func newModal(kind modalKind, title string, items []modalItem) *modalModel {
	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.Styles = cherryDefaultItemStyles()

	listItems := make([]list.Item, 0, len(items))
	for _, it := range items {
		if it.danger {
			it.name = lipgloss.NewStyle().Foreground(cherryDanger).Render(it.name)
		}
		listItems = append(listItems, it)
	}

	l := list.New(listItems, d, 0, 0)
	l.Title = title
	// Title is rendered by the modal frame, not the embedded list.
	l.SetShowTitle(false)
	l.Styles = cherryListStyles()
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// ESC should cancel/close modal, not quit.
	l.KeyMap.Quit.SetKeys("q")
	return &modalModel{kind: kind, title: title, list: l}
}

func (m *modalModel) selected() (modalItem, bool) {
	it, ok := m.list.SelectedItem().(modalItem)
	return it, ok
}

func (m modalModel) View(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}

	boxW := minInt(60, maxInt(30, w-6))
	boxH := minInt(18, maxInt(8, h-6))

	title := lipgloss.NewStyle().Bold(true).Foreground(cherryTextColor).Render(m.title)

	innerW := boxW - 4
	innerH := boxH - 4
	if innerH < 3 {
		innerH = 3
	}
	m.list.SetSize(innerW, innerH)

	status := lipgloss.NewStyle().Foreground(cherryMuted).Render(strings.TrimSpace(m.status))
	body := strings.Join([]string{title, "", m.list.View(), "", status}, "\n")

	panel := lipgloss.NewStyle().
		Width(boxW).
		Height(boxH).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cherryBorder).
		Padding(1, 1).
		Render(body)

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
}

func (m *modalModel) handleKey(msg tea.KeyMsg) (modalResult, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "ctrl+g":
		m.result = modalResultCanceled
		return m.result, nil
	case "enter":
		m.result = modalResultChosen
		return m.result, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(translateNavKeys(msg))
	return modalResultNone, cmd
}

func translateNavKeys(msg tea.KeyMsg) tea.KeyMsg {
	switch msg.String() {
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	default:
		return msg
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
