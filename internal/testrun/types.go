// Package testrun holds the test-run model shared by the CLI, the TUI and the
// HTTP service, plus the pure status-to-action mapping that drives the
// test run settings menu.
package testrun

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a test run as reported by the backend.
// Values outside the known set are carried verbatim.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "inProgress"
	StatusComplete   Status = "complete"
	StatusAbort      Status = "abort"
)

// Known reports whether s is one of the statuses the backend defines.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusComplete, StatusAbort:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusComplete:
		return "Complete"
	case StatusAbort:
		return "Aborted"
	}
	if strings.TrimSpace(string(s)) == "" {
		return "Unknown"
	}
	return string(s)
}

// CaseStatus is the result state of a single test case run.
type CaseStatus string

const (
	CasePending CaseStatus = "pending"
	CasePassed  CaseStatus = "passed"
	CaseFailed  CaseStatus = "failed"
	CaseBlocked CaseStatus = "blocked"
	CaseSkipped CaseStatus = "skipped"
)

func (s CaseStatus) Label() string {
	switch s {
	case CasePending:
		return "Pending"
	case CasePassed:
		return "Passed"
	case CaseFailed:
		return "Failed"
	case CaseBlocked:
		return "Blocked"
	case CaseSkipped:
		return "Skipped"
	}
	if strings.TrimSpace(string(s)) == "" {
		return "Unknown"
	}
	return string(s)
}

type TestRun struct {
	TestRunID     int64     `json:"testRunID" yaml:"testRunID"`
	TestRunNumber int64     `json:"testRunNumber" yaml:"testRunNumber"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	Status        Status    `json:"status" yaml:"status"`
	CreationDate  time.Time `json:"creationDate" yaml:"creationDate"`
}

type TestCase struct {
	TestCaseID     int64  `json:"testCaseID" yaml:"testCaseID"`
	TestCaseNumber int64  `json:"testCaseNumber" yaml:"testCaseNumber"`
	Title          string `json:"title" yaml:"title"`
}

type TestCaseRun struct {
	TestCaseRunID int64      `json:"testCaseRunID" yaml:"testCaseRunID"`
	Title         string     `json:"title" yaml:"title"`
	Status        CaseStatus `json:"status" yaml:"status"`
	CreationDate  time.Time  `json:"creationDate" yaml:"creationDate"`
	TestCase      TestCase   `json:"testCase" yaml:"testCase"`
}

// Project is the backend's read projection of a workspace project.
type Project struct {
	ProjectID        int64  `json:"projectID" yaml:"projectID"`
	Title            string `json:"title" yaml:"title"`
	ProjectShortCode string `json:"projectShortCode" yaml:"projectShortCode"`
}

// UpdateTestRun is the body of PUT /test-runs/{id}.
type UpdateTestRun struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// DisplayCode is the human-facing identifier of a test case within a
// project, e.g. "CHR-12".
func DisplayCode(p Project, tc TestCase) string {
	code := strings.ToUpper(strings.TrimSpace(p.ProjectShortCode))
	if code == "" {
		return fmt.Sprintf("#%d", tc.TestCaseNumber)
	}
	return fmt.Sprintf("%s-%d", code, tc.TestCaseNumber)
}
