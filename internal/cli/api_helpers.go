package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/action"
	"github.com/cherry/cherry-cli/internal/api"
	"github.com/cherry/cherry-cli/internal/detail"
	"github.com/cherry/cherry-cli/internal/infrastructure/database"
	"github.com/cherry/cherry-cli/internal/project"
)

func requireAPI(app *App) error {
	if strings.TrimSpace(app.APIURL) == "" {
		return errors.New("missing api url (pass --api, set CHERRY_API_URL, or run: cherry api use local)")
	}
	if !strings.HasPrefix(app.APIURL, "http://") && !strings.HasPrefix(app.APIURL, "https://") {
		return fmt.Errorf("invalid api url (expected http/https): %s", app.APIURL)
	}
	return nil
}

func apiClient(app *App) api.Client {
	return api.Client{
		BaseURL:     app.APIURL,
		WorkspaceID: app.WorkspaceID,
		Token:       app.Token,
		HTTP:        &http.Client{Timeout: app.settings().API.Timeout},
	}
}

func openDB(app *App) (*database.DB, error) {
	c := app.settings().Database
	return database.Open(database.Options{Driver: c.Driver, Path: c.Path, DSN: c.DSN})
}

// session bundles what the test run commands need: the project repository,
// the REST client and the services built on them. Close releases the database.
type session struct {
	db       *database.DB
	projects project.Repository
	client   api.Client
	loader   *detail.Loader
	actions  *action.Handler
}

func openSession(app *App) (*session, error) {
	if err := requireAPI(app); err != nil {
		return nil, err
	}
	db, err := openDB(app)
	if err != nil {
		return nil, err
	}
	client := apiClient(app)
	projects := db.ProjectRepository()
	return &session{
		db:       db,
		projects: projects,
		client:   client,
		loader:   detail.NewLoader(projects, client),
		actions:  action.NewHandler(client),
	}, nil
}

func (s *session) Close() error { return s.db.Close() }

func parseTestRunNumber(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid test run number %q (expected a positive integer)", raw)
	}
	return n, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactive reports whether both ends of cmd are attached to a terminal.
func interactive(cmd *cobra.Command) bool {
	return isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())
}
