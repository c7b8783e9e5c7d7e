package testrun

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayCode(t *testing.T) {
	assert.Equal(t, "CHR-12", DisplayCode(Project{ProjectShortCode: "chr"}, TestCase{TestCaseNumber: 12}))
	assert.Equal(t, "#4", DisplayCode(Project{}, TestCase{TestCaseNumber: 4}))
}

func TestDetail_RowsAndDescription(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := Detail{
		Project: Project{ProjectID: 1, ProjectShortCode: "WEB"},
		TestRun: TestRun{TestRunID: 2, Title: "Regression"},
		TestCaseRuns: []TestCaseRun{
			{TestCaseRunID: 10, Title: "Login", Status: CasePassed, CreationDate: created, TestCase: TestCase{TestCaseNumber: 3}},
			{TestCaseRunID: 11, Title: "Logout", Status: CaseFailed, CreationDate: created, TestCase: TestCase{TestCaseNumber: 4}},
		},
	}

	rows := d.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, Row{ID: 10, Code: "WEB-3", Title: "Login", Status: CasePassed, Created: created, TestCaseNumber: 3}, rows[0])
	assert.Equal(t, "WEB-4", rows[1].Code)

	assert.Equal(t, NoDescription, d.DescriptionText())
	d.TestRun.Description = "  "
	assert.Equal(t, "  ", d.DescriptionText())
	d.TestRun.Description = "covers auth"
	assert.Equal(t, "covers auth", d.DescriptionText())
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "In progress", StatusInProgress.Label())
	assert.Equal(t, "Aborted", StatusAbort.Label())
	assert.Equal(t, "archived", Status("archived").Label())
	assert.Equal(t, "Unknown", Status("").Label())
	assert.True(t, StatusComplete.Known())
	assert.False(t, Status("archived").Known())
	assert.Equal(t, "Blocked", CaseBlocked.Label())
}

func TestSubmission_JSONShape(t *testing.T) {
	b, err := json.Marshal(Submission{Intent: IntentDelete, TestRunID: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"delete","testRunID":9}`, string(b))

	b, err = json.Marshal(Submission{
		Intent:        IntentUpdate,
		TestRunID:     9,
		TestRunUpdate: &UpdateTestRun{Title: "a", Description: "b", Status: StatusAbort},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"update","testRunID":9,"testRunUpdate":{"title":"a","description":"b","status":"abort"}}`, string(b))
}

func TestRoutes(t *testing.T) {
	assert.Equal(t, "/projects/CHR/test-runs", ProjectTestRunsRoute("CHR"))
	assert.Equal(t, "/projects/a%2Fb/test-runs", ProjectTestRunsRoute("a/b"))
	assert.Equal(t, "/test-runs/CHR/4", DetailRoute("CHR", 4))
	assert.Equal(t, "/test-runs/42", APIPath(42))
	assert.Equal(t, "/test-cases/CHR/3", TestCaseRoute("CHR", 3))
	assert.Equal(t, "/test-runs/CHR/4/edit", NavigateTarget("CHR", 4, "edit"))
}
