package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
)

// ExportService writes a posture bundle to disk as audit evidence files.
type ExportService struct {
	logger *logger.Logger
}

// NewExportService creates an ExportService.
func NewExportService(log *logger.Logger) *ExportService {
	return &ExportService{logger: log}
}

// Export writes results.csv, results.json, findings.csv and delta.csv
// into dir, creating it if needed. delta.csv is omitted on baseline runs.
// Returns the paths written.
func (e *ExportService) Export(bundle *PostureBundle, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Internal("Failed to create export directory", err)
	}

	var written []string

	path := filepath.Join(dir, "results.csv")
	if err := e.writeResultsCSV(bundle, path); err != nil {
		return written, err
	}
	written = append(written, path)

	path = filepath.Join(dir, "results.json")
	if err := e.writeResultsJSON(bundle, path); err != nil {
		return written, err
	}
	written = append(written, path)

	path = filepath.Join(dir, "findings.csv")
	if err := e.writeFindingsCSV(bundle, path); err != nil {
		return written, err
	}
	written = append(written, path)

	if bundle.Delta != nil {
		path = filepath.Join(dir, "delta.csv")
		if err := e.writeDeltaCSV(bundle, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.logger.WithFields(map[string]interface{}{
		"dir":   dir,
		"files": len(written),
	}).Info("Exported assessment evidence")
	return written, nil
}

func (e *ExportService) writeResultsCSV(bundle *PostureBundle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Internal("Failed to create results.csv", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Platform", "VMName", "BackupJobName", "TestCategory", "TestName",
		"Passed", "Details", "DurationSeconds", "Timestamp",
		"RTOTargetMinutes", "RTOActualMinutes", "RTOMet",
	}
	if err := w.Write(header); err != nil {
		return errors.Internal("Failed to write results.csv", err)
	}

	for _, r := range bundle.Summary.Results {
		// Tri-state: an absent RTO verdict exports as an empty cell, never
		// as "false".
		rtoMet := ""
		if r.RTOMet != nil {
			rtoMet = strconv.FormatBool(*r.RTOMet)
		}
		row := []string{
			r.Platform,
			r.VMName,
			r.BackupJobName,
			r.TestCategory,
			r.TestName,
			strconv.FormatBool(r.Passed),
			r.Details,
			formatFloat(r.DurationSeconds),
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(r.RTOTargetMinutes),
			formatFloat(r.RTOActualMinutes),
			rtoMet,
		}
		if err := w.Write(row); err != nil {
			return errors.Internal("Failed to write results.csv", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (e *ExportService) writeResultsJSON(bundle *PostureBundle, path string) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return errors.Internal("Failed to encode results.json", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Internal("Failed to write results.json", err)
	}
	return nil
}

func (e *ExportService) writeFindingsCSV(bundle *PostureBundle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Internal("Failed to create findings.csv", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"Severity", "Category", "Title", "Detail", "Recommendation", "Framework"}
	if err := w.Write(header); err != nil {
		return errors.Internal("Failed to write findings.csv", err)
	}
	for _, finding := range bundle.Findings {
		row := []string{
			finding.Severity,
			finding.Category,
			finding.Title,
			finding.Detail,
			finding.Recommendation,
			finding.Framework,
		}
		if err := w.Write(row); err != nil {
			return errors.Internal("Failed to write findings.csv", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (e *ExportService) writeDeltaCSV(bundle *PostureBundle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Internal("Failed to create delta.csv", err)
	}
	defer f.Close()

	d := bundle.Delta
	w := csv.NewWriter(f)
	rows := [][]string{
		{"Metric", "Prior", "Current", "Diff"},
		{"Score", formatFloat(d.Score.Prior), formatFloat(d.Score.Current), formatFloat(d.Score.Diff)},
		{"PassRate", formatFloat(d.PassRate.Prior), formatFloat(d.PassRate.Current), formatFloat(d.PassRate.Diff)},
		{"TotalVMs", formatFloat(d.TotalVMs.Prior), formatFloat(d.TotalVMs.Current), formatFloat(d.TotalVMs.Diff)},
		{"FindingCount", formatFloat(d.FindingCount.Prior), formatFloat(d.FindingCount.Current), formatFloat(d.FindingCount.Diff)},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Internal("Failed to write delta.csv", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
