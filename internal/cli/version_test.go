package cli_test

import (
	"strings"
	"testing"
)

func TestVersion_Envelope(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	stdout, _, err := runCLIArgs(t, "--workspace", "ws-x", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	out := decodeEnvelope(t, stdout)
	if out["ok"] != true || out["workspaceId"] != "ws-x" {
		t.Fatalf("unexpected envelope:\n%s", stdout)
	}
	if _, ok := out["meta"]; ok {
		t.Fatalf("expected no meta key when meta is nil:\n%s", stdout)
	}
	if out["data"].(map[string]any)["version"] == "" {
		t.Fatalf("expected a version:\n%s", stdout)
	}
}

func TestVersion_YAML(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	stdout, _, err := runCLIArgs(t, "--format", "yaml", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(stdout, "ok: true") || !strings.Contains(stdout, "rawVersion:") {
		t.Fatalf("unexpected yaml:\n%s", stdout)
	}
}

func TestUnknownFormatFails(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, _, err := runCLIArgs(t, "--format", "edn", "version"); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}
