package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/config"
	"github.com/cherry/cherry-cli/internal/mock"
	"github.com/cherry/cherry-cli/internal/project"
	"github.com/cherry/cherry-cli/internal/server"
	"github.com/cherry/cherry-cli/internal/state"
)

func newMockCmd(app *App) *cobra.Command {
	var statePath string
	cmd := &cobra.Command{Use: "mock", Short: "Run a file-backed stand-in for the cherry API"}

	defaultPath, _ := state.DefaultPath()
	cmd.PersistentFlags().StringVar(&statePath, "state", envOr("CHERRY_MOCK_STATE", defaultPath), "Path to mock state JSON")

	cmd.AddCommand(newMockServeCmd(app, &statePath))
	cmd.AddCommand(newMockSeedCmd(app))
	return cmd
}

func newMockServeCmd(app *App, statePath *string) *cobra.Command {
	var addr string
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mock REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(*statePath) == "" {
				return writeErr(cmd, errors.New("missing --state"))
			}
			store := mock.Store{Path: *statePath, WorkspaceID: app.WorkspaceID}
			if _, err := store.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			if seed {
				if _, err := seedProjects(cmd.Context(), app); err != nil {
					return writeErr(cmd, err)
				}
			}
			return server.Serve(cmd.Context(), addr, mock.NewServer(store, app.Token).Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultMockAddr, "Listen address")
	cmd.Flags().BoolVar(&seed, "seed-projects", true, "Add the mock projects to the project database when missing")
	return cmd
}

func newMockSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the mock backend's projects to the project database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := seedProjects(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"created": len(created)}, created)
		},
	}
}

// seedProjects saves the mock projects that are not in the database yet, in
// seed order, so a fresh database assigns the same ids the mock uses.
func seedProjects(ctx context.Context, app *App) ([]*project.WorkspaceProject, error) {
	db, err := openDB(app)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	repo := db.ProjectRepository()
	created := []*project.WorkspaceProject{}
	for _, sp := range state.SeedProjects() {
		existing, err := repo.FindByShortCode(ctx, sp.ProjectShortCode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.ID != sp.ProjectID {
				serveLog.Warn("project id differs from mock", "shortCode", sp.ProjectShortCode, "id", existing.ID, "mockId", sp.ProjectID)
			}
			continue
		}
		p := project.New(sp.Title, sp.ProjectShortCode)
		if err := repo.Save(ctx, p); err != nil {
			return nil, err
		}
		created = append(created, p)
	}
	return created, nil
}
