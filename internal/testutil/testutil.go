package testutil

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/guardline/restoreaudit/internal/domain/advisory"
	"github.com/guardline/restoreaudit/internal/domain/scoring"
	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/domain/validation"
)

const snapshotsSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id         TEXT PRIMARY KEY,
    org        TEXT NOT NULL,
    run_id     TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_org_created ON snapshots (org, created_at);
`

// NewTestDB creates an in-memory SQLite database with the snapshots
// schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec(snapshotsSchema); err != nil {
		db.Close()
		t.Fatalf("apply test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Result builds a passing Boot result with sensible defaults; override
// fields on the returned value as needed.
func Result(platform, vmName, testName string) validation.Result {
	return validation.Result{
		Platform:        platform,
		VMName:          vmName,
		BackupJobName:   "nightly-" + vmName,
		TestCategory:    validation.InferCategory(testName),
		TestName:        testName,
		Passed:          true,
		DurationSeconds: 30,
		Timestamp:       time.Now().UTC(),
	}
}

// Snapshot builds a minimal persisted snapshot for store tests.
func Snapshot(org string, score float64, createdAt time.Time) *snapshot.Snapshot {
	summary := validation.Summarize([]validation.Result{
		Result(validation.PlatformVMware, "vm-"+org, "Boot Check"),
	})
	snap := snapshot.New(org, summary, scoring.Score{
		OverallScore: score,
		Grade:        scoring.GradeFor(score),
	}, []advisory.Finding{}, nil)
	snap.CreatedAt = createdAt
	return snap
}
