package state

import (
	"time"

	"github.com/cherry/cherry-cli/internal/testrun"
)

// State is the whole mock backend, persisted as one JSON document.
type State struct {
	Version    int                   `json:"version"`
	Workspaces map[string]*Workspace `json:"workspaces"`
}

type Workspace struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Projects  []testrun.Project `json:"projects"`
	TestRuns  []*TestRun        `json:"testRuns"`
	NextID    int64             `json:"nextId"`
}

// TestRun is a stored run together with the project it belongs to and its
// case runs.
type TestRun struct {
	testrun.TestRun
	ProjectID    int64                 `json:"projectID"`
	TestCaseRuns []testrun.TestCaseRun `json:"testCaseRuns"`
}
