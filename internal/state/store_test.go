package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cherry/cherry-cli/internal/testrun"
)

func TestSeedDefault_Basics(t *testing.T) {
	st := SeedDefault("ws-acme")
	if st == nil || st.Workspaces == nil {
		t.Fatalf("expected state with workspaces")
	}
	ws := st.Workspaces["ws-acme"]
	if ws == nil {
		t.Fatalf("expected workspace ws-acme")
	}
	if strings.TrimSpace(ws.ID) != "ws-acme" {
		t.Fatalf("unexpected workspace id: %q", ws.ID)
	}
	if len(ws.Projects) == 0 || len(ws.TestRuns) == 0 {
		t.Fatalf("expected seeded projects and runs")
	}

	seen := map[testrun.Status]bool{}
	numbers := map[int64]map[int64]bool{}
	for _, r := range ws.TestRuns {
		seen[r.Status] = true
		if r.TestRunID > ws.NextID {
			t.Fatalf("run id %d above next id %d", r.TestRunID, ws.NextID)
		}
		if numbers[r.ProjectID] == nil {
			numbers[r.ProjectID] = map[int64]bool{}
		}
		if numbers[r.ProjectID][r.TestRunNumber] {
			t.Fatalf("duplicate run number %d in project %d", r.TestRunNumber, r.ProjectID)
		}
		numbers[r.ProjectID][r.TestRunNumber] = true
	}
	for _, s := range []testrun.Status{testrun.StatusPending, testrun.StatusInProgress, testrun.StatusComplete, testrun.StatusAbort} {
		if !seen[s] {
			t.Fatalf("expected a seeded run with status %s", s)
		}
	}
}

func TestSaveAtomicAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	st := SeedDefault("ws-acme")
	if err := SaveAtomic(path, st); err != nil {
		t.Fatalf("SaveAtomic: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasSuffix(string(b), "\n") {
		t.Fatalf("expected trailing newline")
	}
	if !strings.Contains(string(b), `"testRunID"`) {
		t.Fatalf("expected embedded test run fields to be flattened")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ws := loaded.Workspaces["ws-acme"]
	if ws == nil {
		t.Fatalf("expected workspace present after load")
	}
	if len(ws.TestRuns) != len(st.Workspaces["ws-acme"].TestRuns) {
		t.Fatalf("expected %d runs, got %d", len(st.Workspaces["ws-acme"].TestRuns), len(ws.TestRuns))
	}
	if ws.TestRuns[0].Title != st.Workspaces["ws-acme"].TestRuns[0].Title {
		t.Fatalf("title mismatch after round trip")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
