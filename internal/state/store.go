// Package state is the on-disk document behind the mock backend.
package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/cherry/cherry-cli/internal/testrun"
)

func DefaultPath() (string, error) {
	// Prefer OS config dir; falls back to HOME.
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		h, herr := os.UserHomeDir()
		if herr != nil {
			return "", errors.New("cannot determine config dir")
		}
		dir = filepath.Join(h, ".config")
	}
	return filepath.Join(dir, "cherry", "mock", "state.json"), nil
}

func Load(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Workspaces == nil {
		s.Workspaces = map[string]*Workspace{}
	}
	return &s, nil
}

func SaveAtomic(path string, s *State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SeedProjects are the projects SeedDefault creates runs for. The CLI also
// inserts them into the project repository so lookups by short code resolve.
func SeedProjects() []testrun.Project {
	return []testrun.Project{
		{ProjectID: 1, Title: "Web Shop", ProjectShortCode: "WEB"},
		{ProjectID: 2, Title: "Mobile App", ProjectShortCode: "MOB"},
	}
}

// SeedDefault returns a workspace with one run in each status.
func SeedDefault(workspaceID string) *State {
	now := time.Now().UTC().Truncate(time.Second)
	ws := &Workspace{
		ID:        workspaceID,
		Name:      "Demo Workspace",
		UpdatedAt: now,
		Projects:  SeedProjects(),
	}

	web := ws.Projects[0]
	cases := []testrun.TestCase{
		{TestCaseID: 101, TestCaseNumber: 1, Title: "Login with valid credentials"},
		{TestCaseID: 102, TestCaseNumber: 2, Title: "Login with wrong password"},
		{TestCaseID: 103, TestCaseNumber: 3, Title: "Checkout with saved card"},
		{TestCaseID: 104, TestCaseNumber: 4, Title: "Apply discount code"},
	}

	add := func(p testrun.Project, title, description string, status testrun.Status, age time.Duration, results ...testrun.CaseStatus) {
		ws.NextID++
		created := now.Add(-age)
		run := &TestRun{
			TestRun: testrun.TestRun{
				TestRunID:     ws.NextID,
				TestRunNumber: int64(countRuns(ws, p.ProjectID) + 1),
				Title:         title,
				Description:   description,
				Status:        status,
				CreationDate:  created,
			},
			ProjectID:    p.ProjectID,
			TestCaseRuns: []testrun.TestCaseRun{},
		}
		for i, st := range results {
			tc := cases[i%len(cases)]
			run.TestCaseRuns = append(run.TestCaseRuns, testrun.TestCaseRun{
				TestCaseRunID: run.TestRunID*100 + int64(i+1),
				Title:         tc.Title,
				Status:        st,
				CreationDate:  created.Add(time.Duration(i) * time.Minute),
				TestCase:      tc,
			})
		}
		ws.TestRuns = append(ws.TestRuns, run)
	}

	add(web, "Release 2.4 regression", "Full regression for the **2.4** release.\n\n- payments\n- auth", testrun.StatusInProgress, 2*time.Hour,
		testrun.CasePassed, testrun.CaseFailed, testrun.CasePending, testrun.CasePending)
	add(web, "Nightly smoke", "", testrun.StatusPending, 30*time.Minute,
		testrun.CasePending, testrun.CasePending)
	add(web, "Release 2.3 regression", "Shipped.", testrun.StatusComplete, 14*24*time.Hour,
		testrun.CasePassed, testrun.CasePassed, testrun.CasePassed, testrun.CaseSkipped)
	add(web, "Payment provider migration", "Stopped while the provider fixes sandbox access.", testrun.StatusAbort, 3*24*time.Hour,
		testrun.CasePassed, testrun.CaseBlocked)
	add(ws.Projects[1], "iOS beta", "", testrun.StatusPending, time.Hour,
		testrun.CasePending)

	return &State{
		Version:    1,
		Workspaces: map[string]*Workspace{workspaceID: ws},
	}
}

func countRuns(ws *Workspace, projectID int64) int {
	n := 0
	for _, r := range ws.TestRuns {
		if r.ProjectID == projectID {
			n++
		}
	}
	return n
}
