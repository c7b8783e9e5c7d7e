package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/export"
	"github.com/cherry/cherry-cli/internal/server"
	"github.com/cherry/cherry-cli/internal/testrun"
	"github.com/cherry/cherry-cli/internal/tui"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "run", Aliases: []string{"runs"}, Short: "Inspect and change test runs"}
	cmd.AddCommand(newRunsListCmd(app))
	cmd.AddCommand(newRunsShowCmd(app))
	cmd.AddCommand(newRunsActionsCmd(app))
	cmd.AddCommand(newRunsStatusCmd(app, testrun.ActionAbort, "abort", "Abort a pending or in-progress test run"))
	cmd.AddCommand(newRunsStatusCmd(app, testrun.ActionResume, "resume", "Resume an aborted test run"))
	cmd.AddCommand(newRunsUpdateCmd(app))
	cmd.AddCommand(newRunsDeleteCmd(app))
	cmd.AddCommand(newRunsExportCmd(app))
	return cmd
}

// runArgs is the <project-short-code> <test-run-number> pair every run
// subcommand but list takes.
func runArgs(args []string) (string, int64, error) {
	code := strings.TrimSpace(args[0])
	if code == "" {
		return "", 0, errors.New("project short code is required")
	}
	n, err := parseTestRunNumber(args[1])
	if err != nil {
		return "", 0, err
	}
	return code, n, nil
}

func newRunsListCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list <project-short-code>",
		Short: "List a project's test runs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			p, err := s.loader.Project(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			runs, err := s.client.ListTestRuns(cmd.Context(), p.ID)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			newestFirst(runs)
			total := len(runs)
			truncated := false
			if limit > 0 && limit < len(runs) {
				runs = runs[:limit]
				truncated = true
			}
			meta := map[string]any{
				"project":   p.View(),
				"total":     total,
				"shown":     len(runs),
				"truncated": truncated,
			}
			if truncated {
				meta["hint"] = "Use --limit 0 to show all test runs"
			}
			return writeData(cmd, app, meta, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "Limit results (0 = all)")
	return cmd
}

// newestFirst orders runs by test run number, highest first, whatever order
// the backend returned them in.
func newestFirst(runs []testrun.TestRun) {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].TestRunNumber > runs[j].TestRunNumber })
}

func newRunsShowCmd(app *App) *cobra.Command {
	var jsonOut bool
	var exportDir string
	cmd := &cobra.Command{
		Use:   "show <project-short-code> <test-run-number>",
		Short: "Show a test run with its test case runs and settings",
		Long: "On a terminal this opens the interactive detail view. Otherwise, or with --json,\n" +
			"it prints the test run, its test case runs and the resolved settings actions.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, n, err := runArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			d, err := s.loader.Load(cmd.Context(), code, n)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}

			if jsonOut || !interactive(cmd) {
				return writeData(cmd, app, nil, server.NewDetailResponse(d))
			}

			outcome, err := tui.Run(cmd.Context(), d, s.actions, tui.Options{ExportDir: exportDir})
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			if outcome == (tui.Outcome{}) {
				return nil
			}
			return writeData(cmd, app, nil, outcome)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the detail instead of opening the interactive view")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory for exports made from the interactive view (default: current directory)")
	return cmd
}

func newRunsActionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <project-short-code> <test-run-number>",
		Short: "List the settings actions available for a test run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, n, err := runArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			d, err := s.loader.Load(cmd.Context(), code, n)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			meta := map[string]any{
				"status":      d.TestRun.Status,
				"actionRoute": testrun.DetailRoute(d.Project.ProjectShortCode, d.TestRun.TestRunNumber),
			}
			return writeData(cmd, app, meta, testrun.Describe(d.Actions()))
		},
	}
}

// newRunsStatusCmd builds abort and resume. Both submit exactly what the
// settings menu would, so they are refused when the menu does not offer them.
func newRunsStatusCmd(app *App, kind testrun.ActionKind, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-short-code> <test-run-number>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, n, err := runArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			d, err := s.loader.Load(cmd.Context(), code, n)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			a, ok := testrun.Find(d.Actions(), kind)
			if !ok {
				return writeFailure(cmd, app, "action_unavailable",
					fmt.Errorf("cannot %s a test run with status %s", use, d.TestRun.Status.Label()),
					"See what is available with: cherry run actions "+code+" "+args[1],
					map[string]any{"status": d.TestRun.Status})
			}
			sub := a.Effect.(testrun.Submit).Submission
			return dispatch(cmd, app, s, d.Project.ProjectShortCode, sub)
		},
	}
}

func newRunsUpdateCmd(app *App) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "update <project-short-code> <test-run-number>",
		Short: "Change a test run's title, description or status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, n, err := runArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("status") {
				return writeErr(cmd, errors.New("nothing to update (pass --title, --description or --status)"))
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			d, err := s.loader.Load(cmd.Context(), code, n)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			u := testrun.UpdateTestRun{
				Title:       d.TestRun.Title,
				Description: d.TestRun.Description,
				Status:      d.TestRun.Status,
			}
			if flags.Changed("title") {
				u.Title = title
			}
			if flags.Changed("description") {
				u.Description = description
			}
			if flags.Changed("status") {
				u.Status = testrun.Status(strings.TrimSpace(status))
			}
			sub := testrun.Submission{Intent: testrun.IntentUpdate, TestRunID: d.TestRun.TestRunID, TestRunUpdate: &u}
			return dispatch(cmd, app, s, d.Project.ProjectShortCode, sub)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description (markdown)")
	cmd.Flags().StringVar(&status, "status", "", "New status (pending|inProgress|complete|abort)")
	return cmd
}

func newRunsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <project-short-code> <test-run-number>",
		Short: "Delete a test run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, n, err := runArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			d, err := s.loader.Load(cmd.Context(), code, n)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			a, ok := testrun.Find(d.Actions(), testrun.ActionDelete)
			if !ok {
				return writeFailure(cmd, app, "action_unavailable", errors.New("delete is not available"), "", nil)
			}
			submit := a.Effect.(testrun.Submit)

			if submit.Confirm != "" && !yes {
				if !interactive(cmd) {
					return writeFailure(cmd, app, "confirmation_required",
						errors.New("refusing to delete without confirmation"),
						"Pass --yes to delete without a prompt.", nil)
				}
				confirmed, err := confirm(fmt.Sprintf("Delete test run #%d %s?", d.TestRun.TestRunNumber, d.TestRun.Title), submit.Confirm)
				if err != nil {
					return writeErr(cmd, err)
				}
				if !confirmed {
					return writeData(cmd, app, map[string]any{"canceled": true}, nil)
				}
			}
			return dispatch(cmd, app, s, d.Project.ProjectShortCode, submit.Submission)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeCharm()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func newRunsExportCmd(app *App) *cobra.Command {
	var as, out string
	cmd := &cobra.Command{
		Use:   "export <project-short-code> <test-run-number>",
		Short: "Export a test run and its test case runs",
		Long:  "Writes json, yaml or csv to --out (default: <CODE>-run-<N>.<ext> in the current directory). --out - writes to stdout.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, n, err := runArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := export.ParseFormat(as)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			d, err := s.loader.Load(cmd.Context(), code, n)
			if err != nil {
				return writeCommandError(cmd, app, err)
			}

			if out == "-" {
				return export.Write(cmd.OutOrStdout(), d, f)
			}
			path := strings.TrimSpace(out)
			if path == "" {
				path = export.Filename(d, f)
			}
			var buf bytes.Buffer
			if err := export.Write(&buf, d, f); err != nil {
				return writeErr(cmd, err)
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, nil, map[string]any{
				"path":         path,
				"format":       f,
				"testCaseRuns": len(d.TestCaseRuns),
			})
		},
	}
	cmd.Flags().StringVar(&as, "type", string(export.CSV), "Export format (json|yaml|csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, or - for stdout")
	return cmd
}

// dispatch sends sub through the same action handler the HTTP route uses and
// reports where the user lands afterwards.
func dispatch(cmd *cobra.Command, app *App, s *session, code string, sub testrun.Submission) error {
	res, err := s.actions.Dispatch(cmd.Context(), code, sub)
	if err != nil {
		return writeCommandError(cmd, app, err)
	}
	return writeData(cmd, app, map[string]any{"intent": sub.Intent}, map[string]any{
		"redirect":   res.Redirect,
		"submission": sub,
	})
}
