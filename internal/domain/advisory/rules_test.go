package advisory

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func result(platform, vm string, passed bool, ts time.Time) validation.Result {
	return validation.Result{
		Platform:     platform,
		VMName:       vm,
		TestCategory: validation.CategoryBoot,
		TestName:     "Boot Check",
		Passed:       passed,
		Timestamp:    ts,
	}
}

func findByCategory(findings []Finding, category string) (Finding, bool) {
	for _, f := range findings {
		if f.Category == category {
			return f, true
		}
	}
	return Finding{}, false
}

func TestCoverageGapPerMissingPlatform(t *testing.T) {
	summary := validation.Summarize([]validation.Result{
		result(validation.PlatformVMware, "web01", true, testNow),
	})

	findings := Evaluate(summary, Config{
		RequiredPlatforms: []string{validation.PlatformVMware, validation.PlatformAWS, validation.PlatformAzure},
		Now:               testNow,
	})

	var gaps []Finding
	for _, f := range findings {
		if f.Category == CategoryCoverageGap {
			gaps = append(gaps, f)
		}
	}
	if len(gaps) != 2 {
		t.Fatalf("got %d coverage gaps, want 2", len(gaps))
	}
	for _, g := range gaps {
		if g.Severity != SeverityHigh {
			t.Errorf("coverage gap severity = %s, want High", g.Severity)
		}
		if g.Framework == "" {
			t.Error("coverage gap missing framework citation")
		}
	}
}

func TestRecoveryFailureAggregated(t *testing.T) {
	summary := validation.Summarize([]validation.Result{
		result(validation.PlatformVMware, "web01", true, testNow),
		result(validation.PlatformAWS, "web02", false, testNow),
		result(validation.PlatformAWS, "web02", false, testNow),
		result(validation.PlatformAzure, "app03", false, testNow),
	})

	findings := Evaluate(summary, Config{Now: testNow})

	f, ok := findByCategory(findings, CategoryRecoveryFailure)
	if !ok {
		t.Fatal("no recovery failure finding")
	}
	if f.Severity != SeverityHigh {
		t.Errorf("severity = %s, want High", f.Severity)
	}
	// One aggregated finding, VMs listed sorted.
	if !strings.Contains(f.Detail, "app03, web02") {
		t.Errorf("detail does not list sorted VMs: %q", f.Detail)
	}
	count := 0
	for _, finding := range findings {
		if finding.Category == CategoryRecoveryFailure {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d recovery failure findings, want 1 aggregated", count)
	}
}

func TestNoRecoveryFailureWhenAllPass(t *testing.T) {
	summary := validation.Summarize([]validation.Result{
		result(validation.PlatformVMware, "web01", true, testNow),
	})
	findings := Evaluate(summary, Config{Now: testNow})
	if _, ok := findByCategory(findings, CategoryRecoveryFailure); ok {
		t.Error("recovery failure finding with zero failed tests")
	}
}

func TestSLAViolation(t *testing.T) {
	missed := result(validation.PlatformVMware, "web01", true, testNow)
	missed.RTOTargetMinutes = 4
	missed.RTOActualMinutes = 5
	missed.RTOMet = validation.BoolPtr(false)

	met := result(validation.PlatformVMware, "web02", true, testNow)
	met.RTOTargetMinutes = 30
	met.RTOActualMinutes = 20
	met.RTOMet = validation.BoolPtr(true)

	findings := Evaluate(validation.Summarize([]validation.Result{missed, met}), Config{Now: testNow})

	f, ok := findByCategory(findings, CategorySLAViolation)
	if !ok {
		t.Fatal("no SLA violation finding")
	}
	if !strings.Contains(f.Detail, "web01") || strings.Contains(f.Detail, "web02") {
		t.Errorf("violating VM list wrong: %q", f.Detail)
	}
	if !strings.Contains(f.Detail, "5.00") || !strings.Contains(f.Detail, "4.00") {
		t.Errorf("averages missing from detail: %q", f.Detail)
	}
}

func TestNoSLAViolationWhenAllMetOrUntagged(t *testing.T) {
	met := result(validation.PlatformAWS, "web02", false, testNow)
	met.RTOTargetMinutes = 30
	met.RTOActualMinutes = 20
	met.RTOMet = validation.BoolPtr(true)

	untagged := result(validation.PlatformVMware, "web01", true, testNow)

	findings := Evaluate(validation.Summarize([]validation.Result{met, untagged}), Config{Now: testNow})
	if _, ok := findByCategory(findings, CategorySLAViolation); ok {
		t.Error("SLA violation fired without any missed target")
	}
}

func TestStaleEvidence(t *testing.T) {
	fresh := result(validation.PlatformVMware, "web01", true, testNow.AddDate(0, 0, -3))
	stale := result(validation.PlatformAWS, "web02", true, testNow.AddDate(0, 0, -45))

	findings := Evaluate(validation.Summarize([]validation.Result{fresh, stale}), Config{
		StalenessDays: 30,
		Now:           testNow,
	})

	f, ok := findByCategory(findings, CategoryStaleEvidence)
	if !ok {
		t.Fatal("no stale evidence finding")
	}
	if f.Severity != SeverityMedium {
		t.Errorf("severity = %s, want Medium", f.Severity)
	}
	if !strings.Contains(f.Detail, "45 days old") {
		t.Errorf("oldest age missing from detail: %q", f.Detail)
	}
	if !strings.Contains(f.Detail, validation.PlatformAWS) {
		t.Errorf("stale platform missing from detail: %q", f.Detail)
	}
}

func TestMeasurementGapOnlyWhenNoTargets(t *testing.T) {
	untagged := result(validation.PlatformVMware, "web01", true, testNow)

	findings := Evaluate(validation.Summarize([]validation.Result{untagged}), Config{Now: testNow})
	if _, ok := findByCategory(findings, CategoryMeasurementGap); !ok {
		t.Error("measurement gap missing with zero targets")
	}

	tagged := untagged
	tagged.RTOTargetMinutes = 10
	tagged.RTOActualMinutes = 5
	tagged.RTOMet = validation.BoolPtr(true)

	// Partial tracking is not a gap.
	findings = Evaluate(validation.Summarize([]validation.Result{untagged, tagged}), Config{Now: testNow})
	if _, ok := findByCategory(findings, CategoryMeasurementGap); ok {
		t.Error("measurement gap fired with a target present")
	}
}

func TestSinglePlatform(t *testing.T) {
	summary := validation.Summarize([]validation.Result{
		result(validation.PlatformNutanixAHV, "db01", true, testNow),
	})

	findings := Evaluate(summary, Config{Now: testNow})
	f, ok := findByCategory(findings, CategoryPlatformDiversity)
	if !ok {
		t.Fatal("no platform diversity finding for single-platform run")
	}
	if f.Severity != SeverityLow {
		t.Errorf("severity = %s, want Low", f.Severity)
	}

	// A required-platform list supersedes the heuristic.
	findings = Evaluate(summary, Config{
		RequiredPlatforms: []string{validation.PlatformNutanixAHV},
		Now:               testNow,
	})
	if _, ok := findByCategory(findings, CategoryPlatformDiversity); ok {
		t.Error("platform diversity fired despite required list")
	}
}

func TestPositiveFindings(t *testing.T) {
	good := result(validation.PlatformVMware, "web01", true, testNow)
	good.RTOTargetMinutes = 10
	good.RTOActualMinutes = 5
	good.RTOMet = validation.BoolPtr(true)

	findings := Evaluate(validation.Summarize([]validation.Result{good}), Config{Now: testNow})

	var infos int
	for _, f := range findings {
		if f.Severity == SeverityInfo {
			infos++
		}
	}
	if infos != 2 {
		t.Errorf("got %d info findings, want pass-rate and RTO positives", infos)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	summary := validation.Summarize([]validation.Result{
		result(validation.PlatformVMware, "web01", true, testNow),
		result(validation.PlatformAWS, "web02", false, testNow.AddDate(0, 0, -60)),
	})
	cfg := Config{
		RequiredPlatforms: []string{validation.PlatformVMware, validation.PlatformAzure},
		StalenessDays:     30,
		Now:               testNow,
	}

	first := Evaluate(summary, cfg)
	second := Evaluate(summary, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("same input produced different findings")
	}
}

func TestEveryFindingCitesFramework(t *testing.T) {
	for _, category := range []string{
		CategoryCoverageGap, CategoryRecoveryFailure, CategorySLAViolation,
		CategoryStaleEvidence, CategoryMeasurementGap, CategoryPlatformDiversity,
		CategoryPosture,
	} {
		if FrameworkFor(category) == "" {
			t.Errorf("category %s has no framework citation", category)
		}
	}
}
