package advisory

// Finding severity constants
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
	SeverityInfo   = "Info"
)

// Finding category constants
const (
	CategoryCoverageGap       = "Coverage Gap"
	CategoryRecoveryFailure   = "Recovery Failure"
	CategorySLAViolation      = "SLA Violation"
	CategoryStaleEvidence     = "Stale Evidence"
	CategoryMeasurementGap    = "Measurement Gap"
	CategoryPlatformDiversity = "Platform Diversity"
	CategoryPosture           = "Posture"
)

// Finding is one advisory statement produced by rule evaluation. Framework
// cites the compliance clauses the finding maps to; it is presentation
// metadata carried into reports and snapshots.
type Finding struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Detail         string `json:"detail"`
	Recommendation string `json:"recommendation"`
	Framework      string `json:"framework"`
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []Finding) map[string]int {
	counts := make(map[string]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
