package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/action"
	"github.com/cherry/cherry-cli/internal/api"
	"github.com/cherry/cherry-cli/internal/detail"
	"github.com/cherry/cherry-cli/internal/project"
)

func writeData(cmd *cobra.Command, app *App, meta map[string]any, data any) error {
	out := map[string]any{
		"ok":          true,
		"workspaceId": app.WorkspaceID,
		"meta":        meta,
		"data":        data,
	}
	// Avoid emitting empty meta.
	if meta == nil {
		delete(out, "meta")
	}
	return writeOut(cmd, app, out)
}

func writeFailure(cmd *cobra.Command, app *App, code string, err error, hint string, details any) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	out := map[string]any{
		"ok":          false,
		"workspaceId": app.WorkspaceID,
		"error": map[string]any{
			"code":    code,
			"message": err.Error(),
			"details": details,
		},
	}
	if hint != "" {
		out["hint"] = hint
	}
	// We still return an error so Cobra exits non-zero.
	_ = writeOut(cmd, app, out)
	return err
}

// writeCommandError classifies err into a failure envelope.
func writeCommandError(cmd *cobra.Command, app *App, err error) error {
	var respErr *action.ResponseError
	var apiErr *api.Error
	switch {
	case errors.As(err, &respErr):
		return writeFailure(cmd, app, "invalid_request", errors.New(respErr.Message), "", map[string]any{"status": respErr.Status})
	case errors.Is(err, detail.ErrProjectNotFound):
		return writeFailure(cmd, app, "project_not_found", err, "List known projects with: cherry project list", nil)
	case errors.Is(err, project.ErrShortCodeTaken):
		return writeFailure(cmd, app, "short_code_taken", err, "Pick another --short-code or inspect the existing one with: cherry project get <short-code>", nil)
	case errors.As(err, &apiErr):
		details := map[string]any{"status": apiErr.Status, "method": apiErr.Method, "path": apiErr.Path}
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return writeFailure(cmd, app, "unauthorized", err, "Pass --token or set CHERRY_TOKEN.", details)
		case http.StatusNotFound:
			return writeFailure(cmd, app, "not_found", err, "", details)
		}
		return writeFailure(cmd, app, "api_error", err, "", details)
	}
	return writeFailure(cmd, app, "error", err, "", nil)
}
