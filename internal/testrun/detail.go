package testrun

import "time"

const NoDescription = "No description provided"

// Detail is everything the detail view shows for one test run.
type Detail struct {
	Project      Project       `json:"project" yaml:"project"`
	TestRun      TestRun       `json:"testRun" yaml:"testRun"`
	TestCaseRuns []TestCaseRun `json:"testCaseRuns" yaml:"testCaseRuns"`
}

type Row struct {
	ID             int64
	Code           string
	Title          string
	Status         CaseStatus
	Created        time.Time
	TestCaseNumber int64
}

func (d Detail) Rows() []Row {
	rows := make([]Row, 0, len(d.TestCaseRuns))
	for _, r := range d.TestCaseRuns {
		rows = append(rows, Row{
			ID:             r.TestCaseRunID,
			Code:           DisplayCode(d.Project, r.TestCase),
			Title:          r.Title,
			Status:         r.Status,
			Created:        r.CreationDate,
			TestCaseNumber: r.TestCase.TestCaseNumber,
		})
	}
	return rows
}

func (d Detail) DescriptionText() string {
	if d.TestRun.Description == "" {
		return NoDescription
	}
	return d.TestRun.Description
}

func (d Detail) Actions() []Action { return Actions(d.TestRun) }
