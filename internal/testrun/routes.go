package testrun

import (
	"fmt"
	"net/url"
	"strings"
)

// ProjectTestRunsRoute is the list view every action redirects back to.
func ProjectTestRunsRoute(projectShortCode string) string {
	return "/projects/" + url.PathEscape(strings.TrimSpace(projectShortCode)) + "/test-runs"
}

// DetailRoute is the UI route of a single test run.
func DetailRoute(projectShortCode string, testRunNumber int64) string {
	return fmt.Sprintf("/test-runs/%s/%d", url.PathEscape(strings.TrimSpace(projectShortCode)), testRunNumber)
}

// APIPath is the backend resource of a test run, used for PUT and DELETE.
func APIPath(testRunID int64) string {
	return fmt.Sprintf("/test-runs/%d", testRunID)
}

// TestCaseRoute is the UI route of a test case, opened from a detail row.
func TestCaseRoute(projectShortCode string, testCaseNumber int64) string {
	return fmt.Sprintf("/test-cases/%s/%d", url.PathEscape(strings.TrimSpace(projectShortCode)), testCaseNumber)
}

// NavigateTarget resolves a Navigate effect against the run's detail route.
func NavigateTarget(projectShortCode string, testRunNumber int64, to string) string {
	return DetailRoute(projectShortCode, testRunNumber) + "/" + strings.TrimPrefix(to, "/")
}
