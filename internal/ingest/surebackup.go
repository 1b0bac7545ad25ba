package ingest

import (
	"encoding/json"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
)

// sureBackupBundle is the generic per-VM test list emitted by lab-style
// verification jobs. RTO targets apply at the job level and are derived
// per VM from summed test durations.
type sureBackupBundle struct {
	JobName          string           `json:"job_name"`
	Platform         string           `json:"platform"`
	RestorePointTime time.Time        `json:"restore_point_time"`
	RTOTargetMinutes int              `json:"rto_target_minutes"`
	Tests            []sureBackupTest `json:"tests"`
}

type sureBackupTest struct {
	VMName          string    `json:"vm_name"`
	TestName        string    `json:"test_name"`
	Passed          bool      `json:"passed"`
	Details         string    `json:"details"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}

func (i *Ingestor) parseSureBackup(path string, data []byte, ingestedAt time.Time, defaultRTO int) ([]validation.Result, error) {
	var bundle sureBackupBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, errors.SourceUnreadable(path, err)
	}

	platform := validation.ParsePlatform(bundle.Platform)
	target := i.defaultTarget(path, bundle.JobName, bundle.RTOTargetMinutes, defaultRTO)

	// Per-VM wall time is approximated by summing test durations; the
	// target is only judged against VMs once all their tests are seen.
	vmSeconds := make(map[string]float64)
	for _, t := range bundle.Tests {
		vmSeconds[t.VMName] += t.DurationSeconds
	}

	results := make([]validation.Result, 0, len(bundle.Tests))
	for _, t := range bundle.Tests {
		r := validation.Result{
			Platform:         platform,
			VMName:           t.VMName,
			BackupJobName:    bundle.JobName,
			RestorePointTime: bundle.RestorePointTime,
			TestName:         t.TestName,
			TestCategory:     validation.InferCategory(t.TestName),
			Passed:           t.Passed,
			Details:          t.Details,
			DurationSeconds:  validation.Round2(t.DurationSeconds),
			Timestamp:        t.Timestamp,
			RTOTargetMinutes: target,
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = ingestedAt
			i.logDefault(path, t.VMName+"/"+t.TestName, "timestamp", "ingest time")
		}
		if target > 0 {
			actual := validation.Round2(vmSeconds[t.VMName] / 60)
			r.RTOActualMinutes = actual
			r.RTOMet = validation.BoolPtr(actual <= float64(target))
		}
		results = append(results, r)
	}
	return results, nil
}
