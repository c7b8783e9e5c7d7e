package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/config"
)

func newAPICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Configure and call the cherry API",
	}
	cmd.AddCommand(newAPIShowCmd(app))
	cmd.AddCommand(newAPIUseCmd(app))
	cmd.AddCommand(newAPIRequestCmd(app))
	return cmd
}

func newAPIShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the API base URL in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.settings()
			meta := map[string]any{
				"configPath": cfg.Path,
				"stored":     cfg.Path != "",
			}
			if cfg.Path == "" {
				if p, err := app.configPath(); err == nil {
					meta["configPath"] = p
				}
			}
			return writeData(cmd, app, meta, map[string]any{
				"apiUrl":    app.APIURL,
				"workspace": app.WorkspaceID,
				"hasToken":  app.Token != "",
			})
		},
	}
}

func newAPIUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <local|url>",
		Short: "Store the API base URL in the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			if target == "" {
				return writeErr(cmd, errors.New("missing target"))
			}

			apiURL := target
			if strings.EqualFold(target, "local") {
				apiURL = config.DefaultLocalAPIURL
			}
			apiURL = strings.TrimRight(apiURL, "/")
			if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
				return writeErr(cmd, fmt.Errorf("invalid api url (expected http/https): %s", apiURL))
			}

			path, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := config.SaveAPIURL(path, apiURL); err != nil {
				return writeErr(cmd, err)
			}

			meta := map[string]any{
				"configPath": path,
				"stored":     true,
				"hint":       "You can still override per-run via --api or CHERRY_API_URL.",
			}
			for _, env := range []string{"CHERRY_API_URL", "CHERRY_API_BASE_URL"} {
				if v := strings.TrimRight(strings.TrimSpace(os.Getenv(env)), "/"); v != "" && v != apiURL {
					meta["warning"] = env + " is set and will override this config in your current shell."
					meta["unsetEnv"] = "unset " + env
				}
			}
			return writeData(cmd, app, meta, map[string]any{"apiUrl": apiURL})
		},
	}
}

func newAPIRequestCmd(app *App) *cobra.Command {
	var query []string
	var data string
	cmd := &cobra.Command{
		Use:   "request <method> <path>",
		Short: "Send a raw request to the cherry API",
		Example: "  cherry api request GET /projects/1/test-runs\n" +
			"  cherry api request PUT /test-runs/3 --data '{\"title\":\"x\",\"description\":\"\",\"status\":\"abort\"}'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPI(app); err != nil {
				return writeErr(cmd, err)
			}
			method := strings.ToUpper(strings.TrimSpace(args[0]))
			switch method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return writeErr(cmd, fmt.Errorf("unsupported method %q", args[0]))
			}

			q := url.Values{}
			for _, kv := range query {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || strings.TrimSpace(k) == "" {
					return writeErr(cmd, fmt.Errorf("invalid --query %q (expected key=value)", kv))
				}
				q.Add(strings.TrimSpace(k), v)
			}

			var body any
			if strings.TrimSpace(data) != "" {
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --data json: %w", err))
				}
			}

			out, status, err := apiClient(app).DoREST(cmd.Context(), method, args[1], q, body)
			if err != nil {
				return writeErr(cmd, err)
			}
			meta := map[string]any{"status": status, "method": method, "path": args[1]}
			if status >= 400 {
				return writeFailure(cmd, app, "api_error", fmt.Errorf("api error (status=%d)", status), "", map[string]any{"status": status, "body": out})
			}
			return writeData(cmd, app, meta, out)
		},
	}
	cmd.Flags().StringArrayVar(&query, "query", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	return cmd
}

func newWorkspaceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "workspace", Aliases: []string{"workspaces"}, Short: "Show or store the default workspace"}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the workspace in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeData(cmd, app, nil, map[string]any{"workspace": app.WorkspaceID})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <workspace-id>",
		Short: "Store the default workspace in the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			ws := strings.TrimSpace(args[0])
			if err := config.SaveWorkspace(path, ws); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"configPath": path, "stored": true}, map[string]any{"workspace": ws})
		},
	})
	return cmd
}
