// Package tui renders the interactive test run detail view.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cherry/cherry-cli/internal/action"
	"github.com/cherry/cherry-cli/internal/export"
	"github.com/cherry/cherry-cli/internal/testrun"
)

const settingsTitle = "Test Run Settings"

// Dispatcher submits a settings action. *action.Handler satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, projectShortCode string, sub testrun.Submission) (action.Result, error)
}

// Outcome is where the user asked to go when the view exited. Redirect is set
// after a successful action; Navigate after choosing a route directly.
type Outcome struct {
	Redirect string `json:"redirect,omitempty"`
	Navigate string `json:"navigate,omitempty"`
	Exported string `json:"exported,omitempty"`
}

type Options struct {
	// ExportDir is where exports are written. Empty means the working directory.
	ExportDir string
}

type dispatchDoneMsg struct {
	res action.Result
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

// DetailModel is the bubbletea model for one test run. Its only state beyond
// the fetched detail is which overlay is open and the last status line.
type DetailModel struct {
	ctx        context.Context
	detail     testrun.Detail
	actions    []testrun.Action
	dispatcher Dispatcher
	exportDir  string

	table table.Model
	keys  keyMap
	help  help.Model

	width       int
	height      int
	description string

	modal   *modalModel
	confirm *testrun.Submit

	busy    bool
	status  string
	err     error
	outcome Outcome
}

func NewDetailModel(ctx context.Context, d testrun.Detail, dispatcher Dispatcher, opts Options) DetailModel {
	t := table.New(
		table.WithColumns(detailColumns(80)),
		table.WithRows(detailRows(d)),
		table.WithFocused(true),
	)
	t.SetStyles(minimalTableStyles())

	return DetailModel{
		ctx:        ctx,
		detail:     d,
		actions:    d.Actions(),
		dispatcher: dispatcher,
		exportDir:  opts.ExportDir,
		table:      t,
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
}

func detailColumns(width int) []table.Column {
	// Account for cell padding (see minimalTableStyles).
	avail := width - 8
	idW, statusW, createdW := 10, 14, 17
	titleW := maxInt(12, avail-idW-statusW-createdW)
	return []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Title", Width: titleW},
		{Title: "Status", Width: statusW},
		{Title: "Created", Width: createdW},
	}
}

func detailRows(d testrun.Detail) []table.Row {
	rows := make([]table.Row, 0, len(d.TestCaseRuns))
	for _, r := range d.Rows() {
		created := "-"
		if !r.Created.IsZero() {
			created = r.Created.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{
			r.Code,
			r.Title,
			caseStatusGlyph(r.Status) + " " + r.Status.Label(),
			created,
		})
	}
	return rows
}

// Outcome reports how the view was left.
func (m DetailModel) Outcome() Outcome { return m.outcome }

// Err is the last action or export error shown to the user.
func (m DetailModel) Err() error { return m.err }

func (m DetailModel) Init() tea.Cmd { return nil }

func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case dispatchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.outcome.Redirect = msg.res.Redirect
		return m, tea.Quit

	case exportDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.outcome.Exported = msg.path
		m.status = "Exported to " + msg.path
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DetailModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	if m.confirm != nil {
		switch strings.ToLower(msg.String()) {
		case "y":
			sub := m.confirm.Submission
			m.confirm = nil
			return m.submit(sub)
		case "n", "enter", "esc", "backspace", "q":
			m.confirm = nil
			m.status = "Cancelled"
		}
		return m, nil
	}

	if m.modal != nil {
		res, cmd := m.modal.handleKey(msg)
		switch res {
		case modalResultCanceled:
			m.modal = nil
		case modalResultChosen:
			return m.chooseFromModal()
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.outcome.Navigate = testrun.ProjectTestRunsRoute(m.detail.Project.ProjectShortCode)
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.err = nil
		m.modal = m.newSettingsModal()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		m.modal = newExportModal()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		rows := m.detail.Rows()
		i := m.table.Cursor()
		if i >= 0 && i < len(rows) {
			m.outcome.Navigate = testrun.TestCaseRoute(m.detail.Project.ProjectShortCode, rows[i].TestCaseNumber)
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(translateNavKeys(msg))
	return m, cmd
}

func (m DetailModel) newSettingsModal() *modalModel {
	items := make([]modalItem, 0, len(m.actions))
	for _, a := range m.actions {
		items = append(items, modalItem{
			id:     string(a.Kind),
			name:   a.Label,
			desc:   effectHint(a.Effect),
			danger: a.Variant == testrun.VariantDanger,
		})
	}
	return newModal(modalSettings, settingsTitle, items)
}

func effectHint(e testrun.Effect) string {
	switch e := e.(type) {
	case testrun.Submit:
		if e.Submission.Intent == testrun.IntentDelete {
			return "Permanently remove this run"
		}
		if e.Submission.TestRunUpdate != nil {
			return "Set status to " + e.Submission.TestRunUpdate.Status.Label()
		}
	case testrun.Navigate:
		return "Open the " + e.To + " page"
	case testrun.OpenExport:
		return "JSON, YAML or CSV"
	}
	return ""
}

func newExportModal() *modalModel {
	items := make([]modalItem, 0, len(export.Formats))
	for _, f := range export.Formats {
		items = append(items, modalItem{id: string(f), name: f.Label(), desc: "Save as " + f.Extension()})
	}
	return newModal(modalExport, "Export options", items)
}

func (m DetailModel) chooseFromModal() (tea.Model, tea.Cmd) {
	it, ok := m.modal.selected()
	kind := m.modal.kind
	m.modal = nil
	if !ok {
		return m, nil
	}

	if kind == modalExport {
		f, err := export.ParseFormat(it.id)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.busy = true
		m.status = "Exporting…"
		return m, writeExportCmd(m.detail, f, m.exportDir)
	}

	a, found := testrun.Find(m.actions, testrun.ActionKind(it.id))
	if !found {
		return m, nil
	}
	return m.runEffect(a)
}

func (m DetailModel) runEffect(a testrun.Action) (tea.Model, tea.Cmd) {
	switch e := a.Effect.(type) {
	case testrun.Submit:
		if e.Confirm != "" {
			m.confirm = &e
			return m, nil
		}
		return m.submit(e.Submission)
	case testrun.Navigate:
		m.outcome.Navigate = testrun.NavigateTarget(m.detail.Project.ProjectShortCode, m.detail.TestRun.TestRunNumber, e.To)
		return m, tea.Quit
	case testrun.OpenExport:
		m.modal = newExportModal()
		return m, nil
	}
	return m, nil
}

func (m DetailModel) submit(sub testrun.Submission) (tea.Model, tea.Cmd) {
	if m.dispatcher == nil {
		m.err = fmt.Errorf("actions are not available in this view")
		return m, nil
	}
	m.busy = true
	m.err = nil
	m.status = "Submitting…"
	ctx, d, code := m.ctx, m.dispatcher, m.detail.Project.ProjectShortCode
	return m, func() tea.Msg {
		res, err := d.Dispatch(ctx, code, sub)
		return dispatchDoneMsg{res: res, err: err}
	}
}

func writeExportCmd(d testrun.Detail, f export.Format, dir string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, export.Filename(d, f))
		file, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating export file: %w", err)}
		}
		if err := export.Write(file, d, f); err != nil {
			_ = file.Close()
			return exportDoneMsg{err: fmt.Errorf("writing export: %w", err)}
		}
		if err := file.Close(); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func (m *DetailModel) layout() {
	if m.height < 8 {
		m.height = 8
	}
	w := maxInt(40, m.width-2)
	m.description = renderMarkdown(m.detail.DescriptionText(), w-2)
	m.table.SetColumns(detailColumns(w))
	m.table.SetWidth(w)
	headerH := lipgloss.Height(m.renderHeader())
	m.table.SetHeight(maxInt(3, m.height-headerH-3))
}

func (m DetailModel) renderHeader() string {
	run := m.detail.TestRun
	back := footerStyle().Render("← esc  " + m.detail.Project.Title + " test runs")
	title := lipgloss.NewStyle().Bold(true).Foreground(cherryTextColor).Render(
		fmt.Sprintf("#%d %s", run.TestRunNumber, run.Title),
	)
	titleLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", statusBadge(run.Status))

	desc := m.description
	if desc == "" {
		desc = m.detail.DescriptionText()
	}
	settings := lipgloss.NewStyle().Foreground(cherryAccent).Render("⚙ " + settingsTitle + " (s)")

	return lipgloss.JoinVertical(lipgloss.Left, back, "", titleLine, "", desc, "", settings)
}

func (m DetailModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}

	var line string
	switch {
	case m.confirm != nil:
		line = lipgloss.NewStyle().Foreground(cherryDanger).Bold(true).Render(m.confirm.Confirm + " [y/N]")
	case m.err != nil:
		line = lipgloss.NewStyle().Foreground(cherryDanger).Bold(true).Render(m.err.Error())
	case m.status != "":
		line = lipgloss.NewStyle().Foreground(cherryMuted).Render(m.status)
	}

	rows := m.table.View()
	if len(m.detail.TestCaseRuns) == 0 {
		rows = footerStyle().Render("No test cases in this run")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		rows,
		line,
	)
	footer := footerStyle().Render(m.help.View(m.keys))
	page := panelStyle().Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, body, footer))

	if m.modal != nil {
		return m.modal.View(m.width, m.height)
	}
	return page
}

// Run shows the detail view until the user leaves it.
func Run(ctx context.Context, d testrun.Detail, dispatcher Dispatcher, opts Options) (Outcome, error) {
	p := tea.NewProgram(NewDetailModel(ctx, d, dispatcher, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Outcome{}, err
	}
	if dm, ok := final.(DetailModel); ok {
		return dm.Outcome(), dm.Err()
	}
	return Outcome{}, nil
}
