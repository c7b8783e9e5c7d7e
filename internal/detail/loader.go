// Package detail assembles the data shown on a test run detail page.
package detail

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cherry/cherry-cli/internal/project"
	"github.com/cherry/cherry-cli/internal/testrun"
)

var ErrProjectNotFound = errors.New("project not found")

// Source is the read side of the REST API the loader needs.
type Source interface {
	GetTestRun(ctx context.Context, projectID, testRunNumber int64) (testrun.TestRun, error)
	ListTestCaseRuns(ctx context.Context, projectID, testRunNumber int64) ([]testrun.TestCaseRun, error)
}

type Loader struct {
	Projects project.Repository
	API      Source
}

func NewLoader(projects project.Repository, api Source) *Loader {
	return &Loader{Projects: projects, API: api}
}

// Project resolves a short code through the repository.
func (l *Loader) Project(ctx context.Context, shortCode string) (*project.WorkspaceProject, error) {
	code := project.NormalizeShortCode(shortCode)
	if code == "" {
		return nil, fmt.Errorf("%w: empty short code", ErrProjectNotFound)
	}
	p, err := l.Projects.FindByShortCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("looking up project %s: %w", code, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, code)
	}
	return p, nil
}

// Load fetches the run and its case runs concurrently; the first failure
// cancels the other request.
func (l *Loader) Load(ctx context.Context, shortCode string, testRunNumber int64) (testrun.Detail, error) {
	p, err := l.Project(ctx, shortCode)
	if err != nil {
		return testrun.Detail{}, err
	}

	var (
		run   testrun.TestRun
		cases []testrun.TestCaseRun
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := l.API.GetTestRun(gctx, p.ID, testRunNumber)
		if err != nil {
			return fmt.Errorf("fetching test run %d: %w", testRunNumber, err)
		}
		run = r
		return nil
	})
	g.Go(func() error {
		c, err := l.API.ListTestCaseRuns(gctx, p.ID, testRunNumber)
		if err != nil {
			return fmt.Errorf("fetching test case runs: %w", err)
		}
		cases = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return testrun.Detail{}, err
	}
	if cases == nil {
		cases = []testrun.TestCaseRun{}
	}
	return testrun.Detail{Project: p.View(), TestRun: run, TestCaseRuns: cases}, nil
}
