package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/detail"
	"github.com/cherry/cherry-cli/internal/project"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "project", Aliases: []string{"projects"}, Short: "Manage workspace projects"}
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsGetCmd(app))
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var title, shortCode string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := project.New(title, shortCode)
			if err := p.Validate(); err != nil {
				return writeFailure(cmd, app, "invalid_project", err, "", nil)
			}
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			if err := db.ProjectRepository().Save(cmd.Context(), p); err != nil {
				return writeCommandError(cmd, app, err)
			}
			return writeData(cmd, app, nil, p)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&shortCode, "short-code", "", "Short code used in test case ids, e.g. WEB")
	must(cmd.MarkFlagRequired("title"))
	must(cmd.MarkFlagRequired("short-code"))
	return cmd
}

func newProjectsGetCmd(app *App) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "get [short-code]",
		Short: "Look up a project by short code or exact --title",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (title == "") {
				return writeErr(cmd, errors.New("pass either a short code or --title"))
			}
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			repo := db.ProjectRepository()
			var p *project.WorkspaceProject
			var key string
			if len(args) == 1 {
				key = project.NormalizeShortCode(args[0])
				p, err = repo.FindByShortCode(cmd.Context(), key)
			} else {
				key = title
				p, err = repo.FindByTitle(cmd.Context(), title)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if p == nil {
				return writeFailure(cmd, app, "project_not_found", fmt.Errorf("no project matches %q", key),
					"Titles match exactly. List known projects with: cherry project list", nil)
			}
			return writeData(cmd, app, nil, p)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Exact project title")
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects by short code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			items, err := db.ProjectRepository().FindAll(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"total": len(items)}, items)
		},
	}
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <short-code> <title>",
		Short: "Change a project's title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			repo := db.ProjectRepository()
			p, err := findProject(cmd, repo, args[0])
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			p.Title = strings.TrimSpace(args[1])
			if err := repo.Save(cmd.Context(), p); err != nil {
				return writeFailure(cmd, app, "invalid_project", err, "", nil)
			}
			return writeData(cmd, app, nil, p)
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <short-code>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			repo := db.ProjectRepository()
			p, err := findProject(cmd, repo, args[0])
			if err != nil {
				return writeCommandError(cmd, app, err)
			}
			if err := repo.DeleteByID(cmd.Context(), p.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"deleted": true}, p)
		},
	}
}

func findProject(cmd *cobra.Command, repo project.Repository, shortCode string) (*project.WorkspaceProject, error) {
	code := project.NormalizeShortCode(shortCode)
	p, err := repo.FindByShortCode(cmd.Context(), code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", detail.ErrProjectNotFound, code)
	}
	return p, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
