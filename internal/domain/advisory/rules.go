package advisory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
)

// DefaultPassRateBar is the pass rate at or above which the positive
// posture finding fires.
const DefaultPassRateBar = 95.0

// Config holds the caller-supplied rule parameters. Now anchors staleness
// checks; a zero Now means the current time, passing it explicitly keeps
// rule evaluation deterministic under test.
type Config struct {
	RequiredPlatforms []string
	StalenessDays     int
	PassRateBar       float64
	Now               time.Time
}

// Evaluate runs the fixed, ordered rule set against a run summary and
// returns zero or more findings. Positive and negative findings coexist.
func Evaluate(summary validation.Summary, cfg Config) []Finding {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	if cfg.StalenessDays <= 0 {
		cfg.StalenessDays = 30
	}
	if cfg.PassRateBar <= 0 {
		cfg.PassRateBar = DefaultPassRateBar
	}

	var findings []Finding
	findings = append(findings, coverageGaps(summary, cfg)...)
	if f, ok := recoveryFailures(summary); ok {
		findings = append(findings, f)
	}
	if f, ok := slaViolations(summary); ok {
		findings = append(findings, f)
	}
	if f, ok := staleEvidence(summary, cfg); ok {
		findings = append(findings, f)
	}
	if f, ok := measurementGap(summary); ok {
		findings = append(findings, f)
	}
	if f, ok := singlePlatform(summary, cfg); ok {
		findings = append(findings, f)
	}
	findings = append(findings, positives(summary, cfg)...)
	return findings
}

func coverageGaps(summary validation.Summary, cfg Config) []Finding {
	present := make(map[string]struct{}, len(summary.Platforms))
	for _, p := range summary.Platforms {
		present[p] = struct{}{}
	}

	var findings []Finding
	for _, required := range cfg.RequiredPlatforms {
		if _, ok := present[required]; ok {
			continue
		}
		findings = append(findings, Finding{
			Severity: SeverityHigh,
			Category: CategoryCoverageGap,
			Title:    fmt.Sprintf("No recovery validation evidence for %s", required),
			Detail: fmt.Sprintf("Platform %s is on the required coverage list but contributed no results to this run (%d platforms observed: %s).",
				required, len(summary.Platforms), strings.Join(summary.Platforms, ", ")),
			Recommendation: fmt.Sprintf("Schedule recovery validation for %s workloads and feed its results into the next assessment.", required),
			Framework:      FrameworkFor(CategoryCoverageGap),
		})
	}
	return findings
}

func recoveryFailures(summary validation.Summary) (Finding, bool) {
	var failed int
	vms := make(map[string]struct{})
	platforms := make(map[string]struct{})
	for _, r := range summary.Results {
		if r.Passed {
			continue
		}
		failed++
		vms[r.VMName] = struct{}{}
		platforms[r.Platform] = struct{}{}
	}
	if failed == 0 {
		return Finding{}, false
	}

	return Finding{
		Severity: SeverityHigh,
		Category: CategoryRecoveryFailure,
		Title:    fmt.Sprintf("%d recovery test(s) failed across %d VM(s)", failed, len(vms)),
		Detail: fmt.Sprintf("Failed tests: %d of %d. Affected VMs: %s. Affected platforms: %s.",
			failed, summary.TotalTests, joinSorted(vms), joinSorted(platforms)),
		Recommendation: "Investigate each failing VM, re-run the validation after remediation, and confirm the restore point is usable.",
		Framework:      FrameworkFor(CategoryRecoveryFailure),
	}, true
}

func slaViolations(summary validation.Summary) (Finding, bool) {
	var actualSum, targetSum float64
	var count int
	vms := make(map[string]struct{})
	for _, r := range summary.Results {
		if r.RTOMet == nil || *r.RTOMet {
			continue
		}
		count++
		actualSum += r.RTOActualMinutes
		targetSum += float64(r.RTOTargetMinutes)
		vms[r.VMName] = struct{}{}
	}
	if count == 0 {
		return Finding{}, false
	}

	avgActual := validation.Round2(actualSum / float64(count))
	avgTarget := validation.Round2(targetSum / float64(count))
	return Finding{
		Severity: SeverityHigh,
		Category: CategorySLAViolation,
		Title:    fmt.Sprintf("RTO exceeded for %d result(s)", count),
		Detail: fmt.Sprintf("Average actual RTO %.2f min against an average target of %.2f min. Violating VMs: %s.",
			avgActual, avgTarget, joinSorted(vms)),
		Recommendation: "Review restore infrastructure sizing and job scheduling for the violating VMs, or renegotiate the RTO targets.",
		Framework:      FrameworkFor(CategorySLAViolation),
	}, true
}

func staleEvidence(summary validation.Summary, cfg Config) (Finding, bool) {
	cutoff := cfg.Now.AddDate(0, 0, -cfg.StalenessDays)
	var stale int
	var oldest time.Time
	platforms := make(map[string]struct{})
	for _, r := range summary.Results {
		if !r.Timestamp.Before(cutoff) {
			continue
		}
		stale++
		platforms[r.Platform] = struct{}{}
		if oldest.IsZero() || r.Timestamp.Before(oldest) {
			oldest = r.Timestamp
		}
	}
	if stale == 0 {
		return Finding{}, false
	}

	ageDays := int(cfg.Now.Sub(oldest).Hours() / 24)
	return Finding{
		Severity: SeverityMedium,
		Category: CategoryStaleEvidence,
		Title:    fmt.Sprintf("%d result(s) older than the %d-day staleness window", stale, cfg.StalenessDays),
		Detail: fmt.Sprintf("Oldest stale result is %d days old. Affected platforms: %s.",
			ageDays, joinSorted(platforms)),
		Recommendation: "Re-run recovery validation for the affected platforms so the evidence reflects the current estate.",
		Framework:      FrameworkFor(CategoryStaleEvidence),
	}, true
}

func measurementGap(summary validation.Summary) (Finding, bool) {
	// Fires only when RTO tracking is entirely absent, not merely partial.
	for _, r := range summary.Results {
		if r.RTOTargetMinutes > 0 {
			return Finding{}, false
		}
	}
	return Finding{
		Severity:       SeverityMedium,
		Category:       CategoryMeasurementGap,
		Title:          "No RTO targets applied to any result",
		Detail:         fmt.Sprintf("None of the %d ingested results carry an RTO target, so recovery-time compliance cannot be demonstrated.", summary.TotalTests),
		Recommendation: "Define RTO targets per backup job or supply a default target to the assessment so recovery times are measured against an objective.",
		Framework:      FrameworkFor(CategoryMeasurementGap),
	}, true
}

func singlePlatform(summary validation.Summary, cfg Config) (Finding, bool) {
	if len(summary.Platforms) != 1 || len(cfg.RequiredPlatforms) > 0 {
		return Finding{}, false
	}
	return Finding{
		Severity:       SeverityLow,
		Category:       CategoryPlatformDiversity,
		Title:          fmt.Sprintf("Evidence covers a single platform (%s)", summary.Platforms[0]),
		Detail:         "All results in this run come from one platform and no required-platform list was supplied. Multi-platform estates should validate recovery on every platform they back up.",
		Recommendation: "Supply a required-platform list to the assessment, or confirm the estate really runs on one platform.",
		Framework:      FrameworkFor(CategoryPlatformDiversity),
	}, true
}

func positives(summary validation.Summary, cfg Config) []Finding {
	var findings []Finding

	if summary.TotalTests > 0 && summary.PassRate >= cfg.PassRateBar {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Category: CategoryPosture,
			Title:    fmt.Sprintf("Pass rate %.1f%% meets the %.0f%% bar", summary.PassRate, cfg.PassRateBar),
			Detail: fmt.Sprintf("%d of %d recovery tests passed across %d VM(s) on %d platform(s).",
				summary.PassedTests, summary.TotalTests, summary.TotalVMs, len(summary.Platforms)),
			Recommendation: "Maintain the current validation cadence.",
			Framework:      FrameworkFor(CategoryPosture),
		})
	}

	tagged := summary.RTOTagged()
	if len(tagged) > 0 {
		allMet := true
		for _, r := range tagged {
			if !*r.RTOMet {
				allMet = false
				break
			}
		}
		if allMet {
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Category: CategoryPosture,
				Title:    "All RTO-tagged results met their targets",
				Detail: fmt.Sprintf("%d result(s) carried an RTO target and every one was met (average actual %.2f min).",
					len(tagged), summary.AvgRTOMinutes),
				Recommendation: "Keep RTO targets under review as the estate grows.",
				Framework:      FrameworkFor(CategoryPosture),
			})
		}
	}

	return findings
}

func joinSorted(set map[string]struct{}) string {
	items := make([]string, 0, len(set))
	for k := range set {
		items = append(items, k)
	}
	sort.Strings(items)
	return strings.Join(items, ", ")
}
