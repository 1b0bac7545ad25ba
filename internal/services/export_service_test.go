package services

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/testutil"
)

func runBundle(t *testing.T) *PostureBundle {
	t.Helper()
	service := newService(testutil.NewMockSnapshotRepository())
	bundle, err := service.Run(context.Background(), RunOptions{
		Org:     "acme",
		Sources: []ingest.Source{writeCSV(t, manualEvidence)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return bundle
}

func TestExportBaselineRun(t *testing.T) {
	bundle := runBundle(t)
	dir := t.TempDir()

	written, err := NewExportService(logger.Nop()).Export(bundle, dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	// No delta.csv on a baseline run.
	if len(written) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(written), written)
	}
	for _, name := range []string{"results.csv", "results.json", "findings.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "delta.csv")); err == nil {
		t.Error("delta.csv written for a baseline run")
	}
}

func TestExportResultsCSVTriState(t *testing.T) {
	bundle := runBundle(t)
	dir := t.TempDir()

	if _, err := NewExportService(logger.Nop()).Export(bundle, dir); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}

	rtoMetCol := -1
	for i, h := range rows[0] {
		if h == "RTOMet" {
			rtoMetCol = i
		}
	}
	if rtoMetCol < 0 {
		t.Fatalf("RTOMet column missing from header: %v", rows[0])
	}

	// One tagged row exports "true"; the two untagged rows export an
	// empty cell, never "false".
	var trueCells, emptyCells int
	for _, row := range rows[1:] {
		switch row[rtoMetCol] {
		case "true":
			trueCells++
		case "":
			emptyCells++
		default:
			t.Errorf("unexpected RTOMet cell %q in row %v", row[rtoMetCol], row)
		}
	}
	if trueCells != 1 || emptyCells != 2 {
		t.Errorf("RTOMet cells true=%d empty=%d, want 1/2", trueCells, emptyCells)
	}
}

func TestExportDeltaRun(t *testing.T) {
	service := newService(testutil.NewMockSnapshotRepository())
	ctx := context.Background()
	src := writeCSV(t, manualEvidence)

	if _, err := service.Run(ctx, RunOptions{Org: "acme", Sources: []ingest.Source{src}}); err != nil {
		t.Fatal(err)
	}
	bundle, err := service.Run(ctx, RunOptions{Org: "acme", Sources: []ingest.Source{src}})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	written, err := NewExportService(logger.Nop()).Export(bundle, dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("got %d files, want 4 including delta.csv", len(written))
	}

	f, err := os.Open(filepath.Join(dir, "delta.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Errorf("delta.csv has %d rows, want header + 4 metrics", len(rows))
	}
}
