package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cherry/cherry-cli/internal/testrun"
)

func (c Client) GetTestRun(ctx context.Context, projectID, testRunNumber int64) (testrun.TestRun, error) {
	var out testrun.TestRun
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/test-runs/%d", projectID, testRunNumber), nil, &out)
	return out, err
}

func (c Client) ListTestRuns(ctx context.Context, projectID int64) ([]testrun.TestRun, error) {
	out := []testrun.TestRun{}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/test-runs", projectID), nil, &out)
	return out, err
}

func (c Client) ListTestCaseRuns(ctx context.Context, projectID, testRunNumber int64) ([]testrun.TestCaseRun, error) {
	out := []testrun.TestCaseRun{}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/test-runs/%d/test-case-runs", projectID, testRunNumber), nil, &out)
	return out, err
}

// UpdateTestRun issues PUT /test-runs/{id}.
func (c Client) UpdateTestRun(ctx context.Context, testRunID int64, update testrun.UpdateTestRun) error {
	return c.do(ctx, http.MethodPut, testrun.APIPath(testRunID), update, nil)
}

// DeleteTestRun issues DELETE /test-runs/{id}.
func (c Client) DeleteTestRun(ctx context.Context, testRunID int64) error {
	return c.do(ctx, http.MethodDelete, testrun.APIPath(testRunID), nil, nil)
}
