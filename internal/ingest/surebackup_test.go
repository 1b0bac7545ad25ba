package ingest

import (
	"testing"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
)

func TestParseSureBackupDerivesRTO(t *testing.T) {
	data := []byte(`{
		"job_name": "nightly-web",
		"platform": "VMware",
		"rto_target_minutes": 4,
		"tests": [
			{"vm_name": "web01", "test_name": "Boot Check", "passed": true, "duration_seconds": 120, "timestamp": "2026-03-01T06:00:00Z"},
			{"vm_name": "web01", "test_name": "Ping Test", "passed": true, "duration_seconds": 180, "timestamp": "2026-03-01T06:05:00Z"},
			{"vm_name": "web02", "test_name": "Boot Check", "passed": true, "duration_seconds": 60, "timestamp": "2026-03-01T06:00:00Z"}
		]
	}`)

	ing := New(logger.Nop())
	results, err := ing.parseSureBackup("lab-surebackup.json", data, time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// web01 ran 120s + 180s = 5.00 min against a 4 min target.
	for _, r := range results[:2] {
		if r.VMName != "web01" {
			t.Fatalf("unexpected ordering: %+v", r)
		}
		if r.RTOActualMinutes != 5.0 {
			t.Errorf("web01 RTO actual = %v, want 5.0", r.RTOActualMinutes)
		}
		if r.RTOMet == nil || *r.RTOMet {
			t.Error("web01 RTOMet should be false with 5.0 > 4")
		}
	}

	web02 := results[2]
	if web02.RTOActualMinutes != 1.0 {
		t.Errorf("web02 RTO actual = %v, want 1.0", web02.RTOActualMinutes)
	}
	if web02.RTOMet == nil || !*web02.RTOMet {
		t.Error("web02 RTOMet should be true with 1.0 <= 4")
	}
	if web02.BackupJobName != "nightly-web" || web02.Platform != validation.PlatformVMware {
		t.Errorf("bundle context not carried: %+v", web02)
	}
}

func TestParseSureBackupNoTarget(t *testing.T) {
	data := []byte(`{
		"job_name": "nightly",
		"tests": [{"vm_name": "web01", "test_name": "Boot Check", "passed": true, "duration_seconds": 90, "timestamp": "2026-03-01T06:00:00Z"}]
	}`)

	ing := New(logger.Nop())
	results, err := ing.parseSureBackup("lab-surebackup.json", data, time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	r := results[0]
	if r.RTOMet != nil {
		t.Error("RTOMet set without a target; must stay nil")
	}
	if r.RTOActualMinutes != 0 {
		t.Errorf("RTO actual = %v without a target", r.RTOActualMinutes)
	}
}

func TestParseSureBackupCategoriesAndDefaults(t *testing.T) {
	ingestedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	data := []byte(`{
		"job_name": "nightly",
		"tests": [
			{"vm_name": "web01", "test_name": "HTTP probe", "passed": false, "duration_seconds": 12.345},
			{"vm_name": "web01", "test_name": "Something odd", "passed": true, "duration_seconds": 1}
		]
	}`)

	ing := New(logger.Nop())
	results, err := ing.parseSureBackup("lab-surebackup.json", data, ingestedAt, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if results[0].TestCategory != validation.CategoryApplication {
		t.Errorf("category = %q, want Application", results[0].TestCategory)
	}
	if results[1].TestCategory != validation.CategoryCustom {
		t.Errorf("category = %q, want Custom", results[1].TestCategory)
	}
	if results[0].DurationSeconds != 12.35 {
		t.Errorf("duration = %v, want 12.35", results[0].DurationSeconds)
	}
	// Missing timestamp defaults to ingest time.
	if !results[0].Timestamp.Equal(ingestedAt) {
		t.Errorf("timestamp = %v, want ingest time", results[0].Timestamp)
	}
}
