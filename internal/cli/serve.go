package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/infrastructure/database"
	"github.com/cherry/cherry-cli/internal/logging"
	"github.com/cherry/cherry-cli/internal/project"
	"github.com/cherry/cherry-cli/internal/server"
)

var serveLog = logging.New("serve")

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve test run pages and the test run action route over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPI(app); err != nil {
				return writeErr(cmd, err)
			}
			cfg := app.settings()
			if strings.TrimSpace(addr) == "" {
				addr = cfg.Server.Addr
			}
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			repo := project.NewCachedRepository(db.ProjectRepository(), cfg.Server.CacheTTL)
			serveLog.Info("backend", "api", app.APIURL, "workspace", app.WorkspaceID, "db", db.Driver())
			if err := server.New(repo, apiClient(app)).ListenAndServe(cmd.Context(), addr); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	return cmd
}

func newDBCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "db", Short: "Manage the project database"}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Open migrates; running it again is a no-op.
			db, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			data := map[string]any{"driver": db.Driver()}
			if db.Driver() == database.DriverSQLite {
				data["path"] = app.settings().Database.Path
			}
			return writeData(cmd, app, nil, data)
		},
	})
	return cmd
}
