package client

import "time"

// Wire types mirroring the server's JSON payloads. The client keeps its
// own copies so importers of this package never depend on internal
// packages of the server module.

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// SubScore is one scored dimension with its disclosed weight.
type SubScore struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Basis     string  `json:"basis"`
}

// Score is the weighted composite compliance score for one run.
type Score struct {
	OverallScore float64    `json:"overall_score"`
	Grade        string     `json:"grade"`
	SubScores    []SubScore `json:"sub_scores"`
}

// Finding is one advisory statement from rule evaluation.
type Finding struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Detail         string `json:"detail"`
	Recommendation string `json:"recommendation"`
	Framework      string `json:"framework"`
}

// Source records where one slice of a run's evidence came from.
type Source struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Records int    `json:"records"`
	Manual  bool   `json:"manual"`
}

// Snapshot is the persisted record of one assessment run.
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

	Score      Score     `json:"score"`
	Findings   []Finding `json:"findings"`
	Sources    []Source  `json:"sources"`
	Frameworks []string  `json:"frameworks"`
}
