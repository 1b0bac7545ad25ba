package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
)

// cloudVerifyRecord is one cloud restore verification: a single restored
// VM with boolean check outcomes that expand into individual test records.
type cloudVerifyRecord struct {
	VMName           string    `json:"vm_name"`
	Platform         string    `json:"platform"`
	BackupJobName    string    `json:"backup_job_name"`
	RestorePoint     time.Time `json:"restore_point"`
	RestoreStatus    string    `json:"restore_status"`
	BootOK           bool      `json:"boot_ok"`
	HeartbeatOK      bool      `json:"heartbeat_ok"`
	PortCheckOK      bool      `json:"port_check_ok"`
	ScriptOK         *bool     `json:"script_ok"`
	Duration         string    `json:"duration"`
	RTOTargetMinutes int       `json:"rto_target_minutes"`
	Timestamp        time.Time `json:"timestamp"`
}

func (i *Ingestor) parseCloudVerify(path string, data []byte, ingestedAt time.Time, defaultRTO int) ([]validation.Result, error) {
	var records []cloudVerifyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.SourceUnreadable(path, err)
	}

	var results []validation.Result
	for _, rec := range records {
		platform := validation.ParsePlatform(rec.Platform)
		if rec.Platform == "" {
			platform = validation.PlatformAzure
		}

		totalSeconds, ok := parseClockDuration(rec.Duration)
		if !ok {
			i.logDefault(path, rec.VMName, "duration", "0s")
		}

		timestamp := rec.Timestamp
		if timestamp.IsZero() {
			timestamp = ingestedAt
			i.logDefault(path, rec.VMName, "timestamp", "ingest time")
		}

		restored := strings.EqualFold(rec.RestoreStatus, "success") ||
			strings.EqualFold(rec.RestoreStatus, "succeeded")

		target := i.defaultTarget(path, rec.VMName, rec.RTOTargetMinutes, defaultRTO)

		base := validation.Result{
			Platform:         platform,
			VMName:           rec.VMName,
			BackupJobName:    rec.BackupJobName,
			RestorePointTime: rec.RestorePoint,
			Timestamp:        timestamp,
			RTOTargetMinutes: target,
		}
		if target > 0 {
			actual := validation.Round2(totalSeconds / 60)
			base.RTOActualMinutes = actual
			base.RTOMet = validation.BoolPtr(actual <= float64(target))
		}

		expand := func(testName, category string, passed bool, durationSeconds float64) validation.Result {
			r := base
			r.TestName = testName
			r.TestCategory = category
			r.Passed = passed
			r.DurationSeconds = validation.Round2(durationSeconds)
			return r
		}

		results = append(results,
			expand("Restore", validation.CategoryBoot, restored, totalSeconds),
			expand("Boot Verification", validation.CategoryBoot, rec.BootOK, 0),
			expand("Heartbeat", validation.CategoryBoot, rec.HeartbeatOK, 0),
			expand("TCP Port Check", validation.CategoryNetwork, rec.PortCheckOK, 0),
		)
		if rec.ScriptOK != nil {
			results = append(results, expand("Custom Script", validation.CategoryCustom, *rec.ScriptOK, 0))
		}
	}
	return results, nil
}

// parseClockDuration parses "mm:ss" into seconds.
func parseClockDuration(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, false
	}
	return float64(minutes*60 + seconds), true
}
