package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cherry/cherry-cli/internal/testrun"
)

func sampleDetail() testrun.Detail {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return testrun.Detail{
		Project: testrun.Project{ProjectID: 1, Title: "Web", ProjectShortCode: "web"},
		TestRun: testrun.TestRun{TestRunID: 40, TestRunNumber: 12, Title: "Release, 1.2", Status: testrun.StatusInProgress, CreationDate: created},
		TestCaseRuns: []testrun.TestCaseRun{
			{TestCaseRunID: 5, Title: `Login "happy" path`, Status: testrun.CasePassed, CreationDate: created, TestCase: testrun.TestCase{TestCaseID: 9, TestCaseNumber: 3}},
			{TestCaseRunID: 6, Title: "Logout", Status: testrun.CaseFailed, TestCase: testrun.TestCase{TestCaseID: 10, TestCaseNumber: 4}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": JSON, " YAML ": YAML, "yml": YAML, "Csv": CSV} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	d := sampleDetail()
	assert.Equal(t, "WEB-run-12.csv", Filename(d, CSV))
	d.Project.ProjectShortCode = ""
	assert.Equal(t, "test-run-12.json", Filename(d, JSON))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDetail(), CSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"5", "WEB-3", `Login "happy" path`, "passed", "2024-03-01T09:30:00Z", "12", "Release, 1.2", "inProgress"}, records[1])
	assert.Equal(t, "", records[2][4], "zero creation date exports blank")
}

func TestWriteJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDetail(), JSON))
	var decoded testrun.Detail
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, int64(12), decoded.TestRun.TestRunNumber)
	assert.Len(t, decoded.TestCaseRuns, 2)

	buf.Reset()
	require.NoError(t, Write(&buf, sampleDetail(), YAML))
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &generic))
	assert.Contains(t, generic, "testRun")
	assert.Contains(t, generic, "testCaseRuns")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sampleDetail(), Format("xml")))
}
