// Package mock is a file-backed stand-in for the cherry REST API, used for
// local development and as the backend in tests.
package mock

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/cherry/cherry-cli/internal/state"
	"github.com/cherry/cherry-cli/internal/testrun"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrTestRunNotFound   = errors.New("test run not found")
)

type Store struct {
	Path        string
	WorkspaceID string
}

// Ensure loads the state file, seeding it on first use.
func (s Store) Ensure() (*state.State, error) {
	st, err := state.Load(s.Path)
	if err == nil {
		if st.Workspaces[s.WorkspaceID] == nil {
			st.Workspaces[s.WorkspaceID] = state.SeedDefault(s.WorkspaceID).Workspaces[s.WorkspaceID]
			if err := state.SaveAtomic(s.Path, st); err != nil {
				return nil, err
			}
		}
		return st, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	seed := state.SeedDefault(s.WorkspaceID)
	if err := state.SaveAtomic(s.Path, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func (s Store) Load() (*state.State, error) { return state.Load(s.Path) }
func (s Store) Save(st *state.State) error  { return state.SaveAtomic(s.Path, st) }

func (s Store) Projects(st *state.State) ([]testrun.Project, error) {
	ws, err := getWS(st, s.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return append([]testrun.Project(nil), ws.Projects...), nil
}

// ListTestRuns returns the project's runs, newest number first.
func (s Store) ListTestRuns(st *state.State, projectID int64) ([]testrun.TestRun, error) {
	ws, err := getWS(st, s.WorkspaceID)
	if err != nil {
		return nil, err
	}
	items := []testrun.TestRun{}
	for _, r := range ws.TestRuns {
		if r.ProjectID == projectID {
			items = append(items, r.TestRun)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].TestRunNumber > items[j].TestRunNumber })
	return items, nil
}

func (s Store) GetTestRun(st *state.State, projectID, testRunNumber int64) (*state.TestRun, error) {
	ws, err := getWS(st, s.WorkspaceID)
	if err != nil {
		return nil, err
	}
	for _, r := range ws.TestRuns {
		if r.ProjectID == projectID && r.TestRunNumber == testRunNumber {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: project %d #%d", ErrTestRunNotFound, projectID, testRunNumber)
}

func (s Store) getByID(st *state.State, testRunID int64) (*state.Workspace, int, error) {
	ws, err := getWS(st, s.WorkspaceID)
	if err != nil {
		return nil, 0, err
	}
	for i, r := range ws.TestRuns {
		if r.TestRunID == testRunID {
			return ws, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: id %d", ErrTestRunNotFound, testRunID)
}

// UpdateTestRun replaces title, description and status of the run.
func (s Store) UpdateTestRun(st *state.State, testRunID int64, u testrun.UpdateTestRun) (*state.TestRun, error) {
	ws, i, err := s.getByID(st, testRunID)
	if err != nil {
		return nil, err
	}
	r := ws.TestRuns[i]
	r.Title = u.Title
	r.Description = u.Description
	r.Status = u.Status
	ws.UpdatedAt = time.Now().UTC()
	return r, nil
}

func (s Store) DeleteTestRun(st *state.State, testRunID int64) error {
	ws, i, err := s.getByID(st, testRunID)
	if err != nil {
		return err
	}
	ws.TestRuns = append(ws.TestRuns[:i], ws.TestRuns[i+1:]...)
	ws.UpdatedAt = time.Now().UTC()
	return nil
}

func getWS(st *state.State, workspaceID string) (*state.Workspace, error) {
	if st == nil {
		return nil, errors.New("state is nil")
	}
	ws := st.Workspaces[workspaceID]
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}
	return ws, nil
}
