package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/services"
	"github.com/guardline/restoreaudit/internal/testutil"
)

func newTestScheduler(repo *testutil.MockSnapshotRepository, sourceDir, spec string) *Scheduler {
	log := logger.Nop()
	service := services.NewAssessmentService(ingest.New(log), repo, log)
	return NewScheduler(service, config.AssessmentConfig{
		Org:       "acme",
		SourceDir: sourceDir,
	}, spec, log)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := newTestScheduler(testutil.NewMockSnapshotRepository(), t.TempDir(), "not a cron spec")
	if err := s.Start(); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestRunOnceSkipsEmptyDirectory(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	s := newTestScheduler(repo, t.TempDir(), "@daily")

	s.runOnce()

	if repo.SaveCalls != 0 {
		t.Errorf("SaveCalls = %d, want 0 with no result files", repo.SaveCalls)
	}
}

func TestRunOnceAssesses(t *testing.T) {
	dir := t.TempDir()
	content := "Platform,VMName,TestName,Passed\nVMware,web01,Boot Check,true\n"
	if err := os.WriteFile(filepath.Join(dir, "manual.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := testutil.NewMockSnapshotRepository()
	s := newTestScheduler(repo, dir, "@daily")

	s.runOnce()

	if repo.SaveCalls != 1 {
		t.Errorf("SaveCalls = %d, want 1", repo.SaveCalls)
	}
}
