package scoring

// Sub-score dimension names
const (
	DimensionCoverage   = "coverage"
	DimensionPassRate   = "pass_rate"
	DimensionRTO        = "rto"
	DimensionRecency    = "recency"
	DimensionAutomation = "automation"
)

// Fixed dimension weights. They must sum to 100; the scorer discloses them
// on every SubScore so an auditor can recompute the overall score.
const (
	WeightCoverage   = 25.0
	WeightPassRate   = 30.0
	WeightRTO        = 20.0
	WeightRecency    = 15.0
	WeightAutomation = 10.0
)

// Grade cut points over the overall score
const (
	GradeAThreshold = 90.0
	GradeBThreshold = 75.0
	GradeCThreshold = 60.0
	GradeDThreshold = 40.0
)

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

// WeightSum returns the sum of the disclosed sub-score weights.
func (s Score) WeightSum() float64 {
	var sum float64
	for _, sub := range s.SubScores {
		sum += sub.Weight
	}
	return sum
}

// GradeFor maps an overall score to its letter grade. Bands are monotonic
// and exhaustive over [0, 100].
func GradeFor(score float64) string {
	switch {
	case score >= GradeAThreshold:
		return "A"
	case score >= GradeBThreshold:
		return "B"
	case score >= GradeCThreshold:
		return "C"
	case score >= GradeDThreshold:
		return "D"
	default:
		return "F"
	}
}
