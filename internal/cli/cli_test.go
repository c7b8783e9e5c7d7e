package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cherry/cherry-cli/internal/cli"
	"github.com/cherry/cherry-cli/internal/mock"
)

func runCLIArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// testEnv is a mock backend plus an isolated config dir and project database.
type testEnv struct {
	dir   string
	store mock.Store
	flags []string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)

	store := mock.Store{Path: filepath.Join(dir, "state.json"), WorkspaceID: "ws-test"}
	srv := httptest.NewServer(mock.NewServer(store, "tok").Handler())
	t.Cleanup(srv.Close)

	env := testEnv{
		dir:   dir,
		store: store,
		flags: []string{
			"--workspace", "ws-test",
			"--api", srv.URL,
			"--token", "tok",
			"--db", filepath.Join(dir, "cherry.db"),
			"--quiet",
		},
	}
	if stdout, stderr, err := env.run(t, "mock", "seed"); err != nil {
		t.Fatalf("mock seed failed: %v\nstdout:\n%s\nstderr:\n%s", err, stdout, stderr)
	}
	return env
}

func (e testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIArgs(t, append(append([]string{}, e.flags...), args...)...)
}

// ok runs args, requires success and returns the decoded envelope.
func (e testEnv) ok(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\nstdout:\n%s\nstderr:\n%s", args, err, stdout, stderr)
	}
	env := decodeEnvelope(t, stdout)
	if env["ok"] != true {
		t.Fatalf("expected ok=true, got:\n%s", stdout)
	}
	return env
}

// fail runs args, requires an error and returns the failure envelope's error object.
func (e testEnv) fail(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, _, err := e.run(t, args...)
	if err == nil {
		t.Fatalf("%v: expected error, got:\n%s", args, stdout)
	}
	env := decodeEnvelope(t, stdout)
	if env["ok"] != false {
		t.Fatalf("expected ok=false, got:\n%s", stdout)
	}
	errObj, _ := env["error"].(map[string]any)
	if errObj == nil {
		t.Fatalf("expected error object, got:\n%s", stdout)
	}
	return errObj
}

func decodeEnvelope(t *testing.T, stdout string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("expected JSON output, got:\n%s\nerr=%v", stdout, err)
	}
	return out
}
