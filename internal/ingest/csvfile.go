package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
)

// parseCSV handles manually recorded restore test evidence. The header row
// names the columns; unknown columns are ignored and missing values get
// documented defaults so a partially filled sheet still produces records.
func (i *Ingestor) parseCSV(path string, data []byte, ingestedAt time.Time, defaultRTO int) ([]validation.Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	// Ragged rows are a record-level defect; the missing columns default.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.SourceUnreadable(path, err)
	}
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var results []validation.Result
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			i.logDefault(path, "line "+strconv.Itoa(line), "row", "skipped (malformed)")
			continue
		}

		vmName := field(row, "vmname")
		if vmName == "" {
			i.logDefault(path, "line "+strconv.Itoa(line), "vmname", "skipped (empty)")
			continue
		}

		testName := field(row, "testname")
		if testName == "" {
			testName = "Manual Test"
			i.logDefault(path, vmName, "testname", testName)
		}

		r := validation.Result{
			Platform:         validation.ParsePlatform(field(row, "platform")),
			VMName:           vmName,
			BackupJobName:    field(row, "backupjobname"),
			TestName:         testName,
			TestCategory:     validation.InferCategory(testName),
			Passed:           validation.ParseBool(field(row, "passed")),
			Details:          field(row, "details"),
			DurationSeconds:  validation.Round2(parseFloat(field(row, "durationseconds"))),
			Timestamp:        ingestedAt,
			RTOTargetMinutes: i.defaultTarget(path, vmName, parseInt(field(row, "rtotargetminutes")), defaultRTO),
			RTOActualMinutes: validation.Round2(parseFloat(field(row, "rtoactualminutes"))),
		}
		if r.RTOTargetMinutes > 0 {
			if field(row, "rtoactualminutes") == "" {
				i.logDefault(path, vmName, "rtoactualminutes", "0 (target judged against zero actual)")
			}
			r.RTOMet = validation.BoolPtr(r.RTOActualMinutes <= float64(r.RTOTargetMinutes))
		}
		results = append(results, r)
	}
	return results, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
