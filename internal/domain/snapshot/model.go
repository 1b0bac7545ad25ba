package snapshot

import (
	"time"

	"github.com/google/uuid"
	"github.com/guardline/restoreaudit/internal/domain/advisory"
	"github.com/guardline/restoreaudit/internal/domain/scoring"
	"github.com/guardline/restoreaudit/internal/domain/validation"
)

// Source records where one slice of a run's evidence came from.
type Source struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Records int    `json:"records"`
	Manual  bool   `json:"manual"`
}

// Snapshot is the persisted record of one assessment run, keyed by
// organization. Snapshots are written once and never mutated; trend deltas
// are computed against the most recent prior snapshot.
type Snapshot struct {
	ID        string    `json:"id"`
	Org       string    `json:"org"`
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	Platforms         []string `json:"platforms"`
	TotalVMs          int      `json:"total_vms"`
	TotalTests        int      `json:"total_tests"`
	PassedTests       int      `json:"passed_tests"`
	FailedTests       int      `json:"failed_tests"`
	PassRate          float64  `json:"pass_rate"`
	AvgRTOMinutes     float64  `json:"avg_rto_minutes"`
	RTOComplianceRate float64  `json:"rto_compliance_rate"`

	Score      scoring.Score      `json:"score"`
	Findings   []advisory.Finding `json:"findings"`
	Sources    []Source           `json:"sources"`
	Frameworks []string           `json:"frameworks"`
}

// New builds the snapshot for a completed run. The snapshot carries the
// run's ID so later reads can exclude it when looking for a prior baseline.
func New(org string, summary validation.Summary, score scoring.Score, findings []advisory.Finding, sources []Source) *Snapshot {
	return &Snapshot{
		ID:                uuid.New().String(),
		Org:               org,
		RunID:             summary.RunID,
		CreatedAt:         time.Now().UTC(),
		Platforms:         summary.Platforms,
		TotalVMs:          summary.TotalVMs,
		TotalTests:        summary.TotalTests,
		PassedTests:       summary.PassedTests,
		FailedTests:       summary.FailedTests,
		PassRate:          summary.PassRate,
		AvgRTOMinutes:     summary.AvgRTOMinutes,
		RTOComplianceRate: summary.RTOComplianceRate,
		Score:             score,
		Findings:          findings,
		Sources:           sources,
		Frameworks:        advisory.Frameworks(),
	}
}

// MetricDelta is one prior/current pair with its signed difference.
type MetricDelta struct {
	Prior   float64 `json:"prior"`
	Current float64 `json:"current"`
	Diff    float64 `json:"diff"`
}

// Delta is the trend comparison against the prior snapshot. A nil Delta
// means no prior snapshot existed (baseline run), which is distinct from a
// Delta whose diffs are all zero.
type Delta struct {
	PriorRunID     string      `json:"prior_run_id"`
	PriorCreatedAt time.Time   `json:"prior_created_at"`
	Score          MetricDelta `json:"score"`
	PassRate       MetricDelta `json:"pass_rate"`
	TotalVMs       MetricDelta `json:"total_vms"`
	FindingCount   MetricDelta `json:"finding_count"`
}

// ComputeDelta compares the current snapshot against a prior one.
func ComputeDelta(prior, current *Snapshot) *Delta {
	d := &Delta{
		PriorRunID:     prior.RunID,
		PriorCreatedAt: prior.CreatedAt,
	}
	d.Score = metricDelta(prior.Score.OverallScore, current.Score.OverallScore)
	d.PassRate = metricDelta(prior.PassRate, current.PassRate)
	d.TotalVMs = metricDelta(float64(prior.TotalVMs), float64(current.TotalVMs))
	d.FindingCount = metricDelta(float64(len(prior.Findings)), float64(len(current.Findings)))
	return d
}

func metricDelta(prior, current float64) MetricDelta {
	return MetricDelta{
		Prior:   prior,
		Current: current,
		Diff:    validation.Round2(current - prior),
	}
}
