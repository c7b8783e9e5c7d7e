package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/config"
	"github.com/cherry/cherry-cli/internal/format"
	"github.com/cherry/cherry-cli/internal/logging"
)

type App struct {
	ConfigPath   string
	WorkspaceID  string
	APIURL       string
	Token        string
	DatabasePath string
	Format       string
	PrettyJSON   bool
	Verbose      bool
	Quiet        bool
	LogJSON      bool

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cherry",
		Short:        "Cherry test run CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("CHERRY_CONFIG", ""), "Config file (default $XDG_CONFIG_HOME/cherry/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.WorkspaceID, "workspace", "", "Workspace id (or set CHERRY_WORKSPACE)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api", envOr("CHERRY_API_URL", ""), "API base URL (e.g. http://localhost:8080)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("CHERRY_TOKEN", ""), "API token (or set CHERRY_TOKEN)")
	cmd.PersistentFlags().StringVar(&app.DatabasePath, "db", "", "SQLite database path (overrides database.path)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CHERRY_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging on stderr")
	cmd.PersistentFlags().BoolVarP(&app.Quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(&app.LogJSON, "log-json", false, "Log as JSON lines")

	cmd.AddCommand(newRunsCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newMockCmd(app))
	cmd.AddCommand(newDBCmd(app))
	cmd.AddCommand(newAPICmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// load reads the config file and fills in every global flag the caller left
// empty. Flags win over the environment, which wins over the file.
func (app *App) load() error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	app.cfg = cfg

	if strings.TrimSpace(app.WorkspaceID) == "" {
		app.WorkspaceID = cfg.Workspace
	}
	if strings.TrimSpace(app.APIURL) == "" {
		app.APIURL = cfg.API.BaseURL
	}
	app.APIURL = strings.TrimRight(strings.TrimSpace(app.APIURL), "/")
	if strings.TrimSpace(app.Token) == "" {
		app.Token = cfg.API.Token
	}
	if strings.TrimSpace(app.DatabasePath) != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = strings.TrimSpace(app.DatabasePath)
	}

	logging.Setup(app.Verbose, app.Quiet, app.LogJSON || cfg.Log.Format == "json")
	if !app.Verbose && !app.Quiet {
		logging.SetLevel(logging.ParseLevel(cfg.Log.Level))
	}
	return nil
}

// settings returns the loaded config, or defaults for commands run without the
// root pre-run (tests calling helpers directly).
func (app *App) settings() *config.Config {
	if app.cfg == nil {
		d := config.Defaults()
		app.cfg = &d
	}
	return app.cfg
}

func (app *App) configPath() (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
