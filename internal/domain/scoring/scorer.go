package scoring

import (
	"fmt"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/validation"
)

// DefaultStalenessDays bounds the recency window when none is configured.
const DefaultStalenessDays = 30

// Inputs carries everything the scorer needs. AsOf anchors the recency
// window so repeated runs over the same evidence score identically.
type Inputs struct {
	Summary           validation.Summary
	RequiredPlatforms []string
	StalenessDays     int
	AutomatedSources  int
	ManualSources     int
	AsOf              time.Time
}

// Compute maps a run summary to a weighted 0-100 composite score with a
// letter grade. Each dimension is computed independently and clamped to
// [0, 100] before weighting.
func Compute(in Inputs) Score {
	if in.AsOf.IsZero() {
		in.AsOf = time.Now().UTC()
	}
	if in.StalenessDays <= 0 {
		in.StalenessDays = DefaultStalenessDays
	}

	subs := []SubScore{
		coverageScore(in),
		passRateScore(in.Summary),
		rtoScore(in.Summary),
		recencyScore(in),
		automationScore(in),
	}

	var overall float64
	for i := range subs {
		subs[i].Score = validation.Round1(clamp(subs[i].Score))
		overall += subs[i].Score * subs[i].Weight / 100
	}

	overall = validation.Round1(clamp(overall))
	return Score{
		OverallScore: overall,
		Grade:        GradeFor(overall),
		SubScores:    subs,
	}
}

func coverageScore(in Inputs) SubScore {
	sub := SubScore{Dimension: DimensionCoverage, Weight: WeightCoverage}

	if len(in.RequiredPlatforms) == 0 {
		if len(in.Summary.Platforms) > 0 {
			sub.Score = 100
			sub.Basis = "no required platform list configured; evidence present"
		} else {
			sub.Basis = "no platforms represented"
		}
		return sub
	}

	present := make(map[string]struct{}, len(in.Summary.Platforms))
	for _, p := range in.Summary.Platforms {
		present[p] = struct{}{}
	}
	covered := 0
	for _, p := range in.RequiredPlatforms {
		if _, ok := present[p]; ok {
			covered++
		}
	}
	sub.Score = float64(covered) / float64(len(in.RequiredPlatforms)) * 100
	sub.Basis = fmt.Sprintf("%d of %d required platforms represented", covered, len(in.RequiredPlatforms))
	return sub
}

func passRateScore(s validation.Summary) SubScore {
	return SubScore{
		Dimension: DimensionPassRate,
		Weight:    WeightPassRate,
		Score:     s.PassRate,
		Basis:     fmt.Sprintf("%d of %d tests passed", s.PassedTests, s.TotalTests),
	}
}

func rtoScore(s validation.Summary) SubScore {
	sub := SubScore{Dimension: DimensionRTO, Weight: WeightRTO}

	tagged := s.RTOTagged()
	if len(tagged) == 0 {
		// Absence of a target is not itself a failure; the measurement-gap
		// finding flags it separately.
		sub.Score = 100
		sub.Basis = "no results carry an RTO target"
		return sub
	}
	sub.Score = s.RTOComplianceRate
	sub.Basis = fmt.Sprintf("%.1f%% of %d RTO-tagged results met their target", s.RTOComplianceRate, len(tagged))
	return sub
}

func recencyScore(in Inputs) SubScore {
	sub := SubScore{Dimension: DimensionRecency, Weight: WeightRecency}

	total := len(in.Summary.Results)
	if total == 0 {
		sub.Basis = "no results"
		return sub
	}

	cutoff := in.AsOf.AddDate(0, 0, -in.StalenessDays)
	fresh := 0
	for _, r := range in.Summary.Results {
		if !r.Timestamp.Before(cutoff) {
			fresh++
		}
	}
	sub.Score = float64(fresh) / float64(total) * 100
	sub.Basis = fmt.Sprintf("%d of %d results within the %d-day staleness window", fresh, total, in.StalenessDays)
	return sub
}

func automationScore(in Inputs) SubScore {
	sub := SubScore{Dimension: DimensionAutomation, Weight: WeightAutomation}

	switch {
	case in.ManualSources == 0:
		// Covers the no-provenance case too: without a manual import there
		// is nothing to penalize.
		sub.Score = 100
		sub.Basis = "all evidence arrived via automated ingestion"
	case in.AutomatedSources == 0:
		sub.Score = 40
		sub.Basis = "all evidence arrived via manual CSV import"
	default:
		sub.Score = 60
		sub.Basis = fmt.Sprintf("mixed provenance: %d automated, %d manual sources", in.AutomatedSources, in.ManualSources)
	}
	return sub
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
