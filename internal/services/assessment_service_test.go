package services

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guardline/restoreaudit/internal/domain/advisory"
	"github.com/guardline/restoreaudit/internal/domain/scoring"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/testutil"
)

const manualEvidence = `Platform,VMName,BackupJobName,TestName,Passed,Details,DurationSeconds,RTOTargetMinutes,RTOActualMinutes
VMware,web01,nightly,Boot Check,true,ok,45,30,20
VMware,web01,nightly,Ping Test,true,ok,3,0,0
AWS,web02,aws-dr,Boot Check,false,no heartbeat,120,0,0
`

func writeCSV(t *testing.T, content string) ingest.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return ingest.Source{Path: path, Kind: ingest.KindCSV}
}

func newService(repo *testutil.MockSnapshotRepository) *AssessmentService {
	log := logger.Nop()
	return NewAssessmentService(ingest.New(log), repo, log)
}

func TestRunEndToEnd(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	service := newService(repo)

	bundle, err := service.Run(context.Background(), RunOptions{
		Org:     "acme",
		Sources: []ingest.Source{writeCSV(t, manualEvidence)},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	s := bundle.Summary
	if s.TotalVMs != 2 {
		t.Errorf("TotalVMs = %d, want 2", s.TotalVMs)
	}
	if s.TotalTests != 3 {
		t.Errorf("TotalTests = %d, want 3", s.TotalTests)
	}
	if s.PassRate != 66.7 {
		t.Errorf("PassRate = %v, want 66.7", s.PassRate)
	}
	// Only web01's Boot Check carries a target, and it was met.
	if s.RTOComplianceRate != 100.0 {
		t.Errorf("RTOComplianceRate = %v, want 100", s.RTOComplianceRate)
	}

	var recoveryFailures, slaViolations int
	var failureDetail string
	for _, f := range bundle.Findings {
		switch f.Category {
		case advisory.CategoryRecoveryFailure:
			recoveryFailures++
			failureDetail = f.Detail
			if f.Severity != advisory.SeverityHigh {
				t.Errorf("recovery failure severity = %s", f.Severity)
			}
		case advisory.CategorySLAViolation:
			slaViolations++
		}
	}
	if recoveryFailures != 1 {
		t.Fatalf("got %d recovery failure findings, want 1", recoveryFailures)
	}
	if !strings.Contains(failureDetail, "web02") || !strings.Contains(failureDetail, "AWS") {
		t.Errorf("failure detail missing web02/AWS: %q", failureDetail)
	}
	if slaViolations != 0 {
		t.Errorf("got %d SLA violations, want 0 (the only tagged result met its target)", slaViolations)
	}

	if bundle.Delta != nil {
		t.Error("first run should be a baseline with nil delta")
	}
	if repo.SaveCalls != 1 {
		t.Errorf("SaveCalls = %d, want 1", repo.SaveCalls)
	}
	if bundle.Snapshot == nil || bundle.Snapshot.RunID != s.RunID {
		t.Error("snapshot not built from this run")
	}
	if len(bundle.Snapshot.Sources) != 1 || !bundle.Snapshot.Sources[0].Manual {
		t.Errorf("snapshot sources = %+v", bundle.Snapshot.Sources)
	}
}

func TestRunZeroResultsIsFatal(t *testing.T) {
	service := newService(testutil.NewMockSnapshotRepository())

	_, err := service.Run(context.Background(), RunOptions{
		Org:     "acme",
		Sources: []ingest.Source{{Path: "/nonexistent.csv", Kind: ingest.KindCSV}},
	})
	if err == nil {
		t.Fatal("expected fatal error for zero results")
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeIngestEmpty {
		t.Errorf("error = %v, want INGEST_EMPTY", err)
	}
}

func TestRunSecondRunProducesDelta(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	service := newService(repo)
	ctx := context.Background()
	src := writeCSV(t, manualEvidence)

	first, err := service.Run(ctx, RunOptions{Org: "acme", Sources: []ingest.Source{src}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := service.Run(ctx, RunOptions{Org: "acme", Sources: []ingest.Source{src}})
	if err != nil {
		t.Fatal(err)
	}

	if second.Delta == nil {
		t.Fatal("second run should carry a delta")
	}
	if second.Delta.PriorRunID != first.Summary.RunID {
		t.Errorf("prior run = %q, want %q", second.Delta.PriorRunID, first.Summary.RunID)
	}
	// Identical evidence: a zero delta, which is still a delta.
	if second.Delta.Score.Diff != 0 || second.Delta.TotalVMs.Diff != 0 {
		t.Errorf("unexpected diffs over identical evidence: %+v", second.Delta)
	}
}

func TestRunIsolatesOrgs(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	service := newService(repo)
	ctx := context.Background()
	src := writeCSV(t, manualEvidence)

	if _, err := service.Run(ctx, RunOptions{Org: "acme", Sources: []ingest.Source{src}}); err != nil {
		t.Fatal(err)
	}
	other, err := service.Run(ctx, RunOptions{Org: "globex", Sources: []ingest.Source{src}})
	if err != nil {
		t.Fatal(err)
	}

	if other.Delta != nil {
		t.Error("another org's snapshot must not serve as a prior")
	}
}

func TestRunSaveFailureDoesNotFailRun(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	repo.SaveErr = errors.StoreError("disk full", nil)
	service := newService(repo)

	bundle, err := service.Run(context.Background(), RunOptions{
		Org:     "acme",
		Sources: []ingest.Source{writeCSV(t, manualEvidence)},
	})
	if err != nil {
		t.Fatalf("run failed on snapshot write error: %v", err)
	}
	if bundle == nil || bundle.Score.Grade == "" {
		t.Error("bundle incomplete despite successful assessment")
	}
}

func TestRunLatestLookupFailureDegradesToBaseline(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	repo.LatestErr = errors.StoreError("backend down", nil)
	service := newService(repo)

	bundle, err := service.Run(context.Background(), RunOptions{
		Org:     "acme",
		Sources: []ingest.Source{writeCSV(t, manualEvidence)},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if bundle.Delta != nil {
		t.Error("unreadable prior should degrade to baseline, not fail")
	}
}

func TestRunCanonicalizesRequiredPlatforms(t *testing.T) {
	repo := testutil.NewMockSnapshotRepository()
	service := newService(repo)

	bundle, err := service.Run(context.Background(), RunOptions{
		Org:               "acme",
		Sources:           []ingest.Source{writeCSV(t, manualEvidence)},
		RequiredPlatforms: []string{"vmware", "aws"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, f := range bundle.Findings {
		if f.Category == advisory.CategoryCoverageGap {
			t.Errorf("lowercase required platform read as a gap: %q", f.Title)
		}
	}
	for _, sub := range bundle.Score.SubScores {
		if sub.Dimension == scoring.DimensionCoverage && sub.Score != 100 {
			t.Errorf("coverage score = %v, want 100 for covered platforms", sub.Score)
		}
	}
}
