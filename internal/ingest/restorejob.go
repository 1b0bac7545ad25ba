package ingest

import (
	"encoding/json"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
)

// restoreJobBundle is a full restore exercise for one VM: the restore
// itself (with RTO measured by the producer) plus post-restore health
// checks that inherit the VM's context.
type restoreJobBundle struct {
	VMName           string        `json:"vm_name"`
	Platform         string        `json:"platform"`
	JobName          string        `json:"job_name"`
	RestorePointTime time.Time     `json:"restore_point_time"`
	Success          bool          `json:"success"`
	Details          string        `json:"details"`
	DurationSeconds  float64       `json:"duration_seconds"`
	RTOTargetMinutes int           `json:"rto_target_minutes"`
	RTOActualMinutes float64       `json:"rto_actual_minutes"`
	RTOMet           *bool         `json:"rto_met"`
	Timestamp        time.Time     `json:"timestamp"`
	HealthChecks     []healthCheck `json:"health_checks"`
}

type healthCheck struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Passed          bool    `json:"passed"`
	Details         string  `json:"details"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (i *Ingestor) parseRestoreJob(path string, data []byte, ingestedAt time.Time, defaultRTO int) ([]validation.Result, error) {
	var bundles []restoreJobBundle
	if err := json.Unmarshal(data, &bundles); err != nil {
		return nil, errors.SourceUnreadable(path, err)
	}

	var results []validation.Result
	for _, b := range bundles {
		platform := validation.ParsePlatform(b.Platform)
		if b.Platform == "" {
			platform = validation.PlatformAWS
		}

		timestamp := b.Timestamp
		if timestamp.IsZero() {
			timestamp = ingestedAt
			i.logDefault(path, b.VMName, "timestamp", "ingest time")
		}

		rtoMet := b.RTOMet
		rtoActual := b.RTOActualMinutes
		target := b.RTOTargetMinutes
		switch {
		case target <= 0 && defaultRTO > 0:
			// The producer judged nothing; judge against the run default.
			target = i.defaultTarget(path, b.VMName, target, defaultRTO)
			rtoMet = validation.BoolPtr(validation.Round2(rtoActual) <= float64(target))
		case target <= 0 && rtoMet != nil:
			// A verdict without a target is meaningless; drop it.
			rtoMet = nil
			i.logDefault(path, b.VMName, "rto_met", "unset (no target)")
		}

		results = append(results, validation.Result{
			Platform:         platform,
			VMName:           b.VMName,
			BackupJobName:    b.JobName,
			RestorePointTime: b.RestorePointTime,
			TestName:         "Restore",
			TestCategory:     validation.CategoryBoot,
			Passed:           b.Success,
			Details:          b.Details,
			DurationSeconds:  validation.Round2(b.DurationSeconds),
			Timestamp:        timestamp,
			RTOTargetMinutes: target,
			RTOActualMinutes: validation.Round2(rtoActual),
			RTOMet:           rtoMet,
		})

		for _, hc := range b.HealthChecks {
			category := hc.Category
			if category == "" {
				category = validation.InferCategory(hc.Name)
			}
			results = append(results, validation.Result{
				Platform:         platform,
				VMName:           b.VMName,
				BackupJobName:    b.JobName,
				RestorePointTime: b.RestorePointTime,
				TestName:         hc.Name,
				TestCategory:     category,
				Passed:           hc.Passed,
				Details:          hc.Details,
				DurationSeconds:  validation.Round2(hc.DurationSeconds),
				Timestamp:        timestamp,
				RTOTargetMinutes: target,
				RTOActualMinutes: validation.Round2(rtoActual),
				RTOMet:           rtoMet,
			})
		}
	}
	return results, nil
}
