package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/cherry/cherry-cli/internal/action"
	"github.com/cherry/cherry-cli/internal/api"
	"github.com/cherry/cherry-cli/internal/detail"
	"github.com/cherry/cherry-cli/internal/project"
)

func failureCode(t *testing.T, err error) map[string]any {
	t.Helper()
	cmd := &cobra.Command{}
	out := new(bytes.Buffer)
	cmd.SetOut(out)

	app := &App{WorkspaceID: "ws-test", Format: "json"}
	if got := writeCommandError(cmd, app, err); got == nil {
		t.Fatalf("expected error to be returned")
	}
	var env map[string]any
	if uerr := json.Unmarshal(out.Bytes(), &env); uerr != nil {
		t.Fatalf("unmarshal output: %v\n%s", uerr, out.String())
	}
	if env["ok"] != false || env["workspaceId"] != "ws-test" {
		t.Fatalf("unexpected envelope: %#v", env)
	}
	return env
}

func TestWriteCommandError_Codes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{&action.ResponseError{Status: 400, Message: action.MsgInvalidRequest}, "invalid_request"},
		{fmt.Errorf("wrapped: %w", detail.ErrProjectNotFound), "project_not_found"},
		{project.ErrShortCodeTaken, "short_code_taken"},
		{fmt.Errorf("fetching: %w", &api.Error{Method: "GET", Path: "/x", Status: 404}), "not_found"},
		{&api.Error{Method: "GET", Path: "/x", Status: 401}, "unauthorized"},
		{&api.Error{Method: "PUT", Path: "/x", Status: 502}, "api_error"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		env := failureCode(t, tc.err)
		errObj := env["error"].(map[string]any)
		if errObj["code"] != tc.code {
			t.Fatalf("%v: expected code %s, got %v", tc.err, tc.code, errObj["code"])
		}
	}
}

func TestWriteCommandError_InvalidRequestMessage(t *testing.T) {
	env := failureCode(t, &action.ResponseError{Status: 400, Message: action.MsgShortCodeRequired})
	if msg := env["error"].(map[string]any)["message"]; msg != action.MsgShortCodeRequired {
		t.Fatalf("unexpected message %v", msg)
	}
	if _, ok := env["hint"]; ok {
		t.Fatalf("expected no hint key: %#v", env)
	}
}
