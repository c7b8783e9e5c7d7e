// Package export writes a test run and its test case runs to a file format a
// user can hand to someone else.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cherry/cherry-cli/internal/format"
	"github.com/cherry/cherry-cli/internal/testrun"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
)

// Formats lists the export formats in menu order.
var Formats = []Format{JSON, YAML, CSV}

func (f Format) Label() string {
	switch f {
	case JSON:
		return "JSON"
	case YAML:
		return "YAML"
	case CSV:
		return "CSV"
	}
	return strings.ToUpper(string(f))
}

func (f Format) Extension() string { return "." + string(f) }

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected json, yaml or csv)", s)
}

// Filename is the suggested file name, e.g. "WEB-run-12.csv".
func Filename(d testrun.Detail, f Format) string {
	prefix := strings.ToUpper(strings.TrimSpace(d.Project.ProjectShortCode))
	if prefix == "" {
		prefix = "test"
	}
	return fmt.Sprintf("%s-run-%d%s", prefix, d.TestRun.TestRunNumber, f.Extension())
}

// CSVHeader is the first row of a CSV export.
var CSVHeader = []string{"id", "code", "title", "status", "created", "testRunNumber", "testRunTitle", "testRunStatus"}

func Write(w io.Writer, d testrun.Detail, f Format) error {
	switch f {
	case JSON:
		return format.WriteJSON(w, d, true)
	case YAML:
		return format.WriteYAML(w, d)
	case CSV:
		return writeCSV(w, d)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func writeCSV(w io.Writer, d testrun.Detail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	runNumber := strconv.FormatInt(d.TestRun.TestRunNumber, 10)
	for _, row := range d.Rows() {
		created := ""
		if !row.Created.IsZero() {
			created = row.Created.UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.Code,
			row.Title,
			string(row.Status),
			created,
			runNumber,
			d.TestRun.Title,
			string(d.TestRun.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
