package validation

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Summary is the aggregate view over one assessment run's results. It is a
// pure reduction of the input collection; Results holds the full input.
type Summary struct {
	RunID             string    `json:"run_id"`
	Timestamp         time.Time `json:"timestamp"`
	Platforms         []string  `json:"platforms"`
	TotalVMs          int       `json:"total_vms"`
	TotalTests        int       `json:"total_tests"`
	PassedTests       int       `json:"passed_tests"`
	FailedTests       int       `json:"failed_tests"`
	PassRate          float64   `json:"pass_rate"`
	AvgRTOMinutes     float64   `json:"avg_rto_minutes"`
	RTOComplianceRate float64   `json:"rto_compliance_rate"`
	OverallSuccess    bool      `json:"overall_success"`
	Results           []Result  `json:"results"`
}

// Summarize reduces a result collection into a Summary. All rates default
// to 0 over an empty input; an empty input is never an error here (the
// service layer rejects zero-result runs before summarizing).
func Summarize(results []Result) Summary {
	s := Summary{
		RunID:     uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Results:   results,
	}

	platforms := make(map[string]struct{})
	vms := make(map[string]struct{})

	for _, r := range results {
		platforms[r.Platform] = struct{}{}
		vms[r.VMName] = struct{}{}
		s.TotalTests++
		if r.Passed {
			s.PassedTests++
		}
	}
	s.FailedTests = s.TotalTests - s.PassedTests
	s.TotalVMs = len(vms)

	for p := range platforms {
		s.Platforms = append(s.Platforms, p)
	}
	sort.Strings(s.Platforms)

	if s.TotalTests > 0 {
		s.PassRate = Round1(float64(s.PassedTests) / float64(s.TotalTests) * 100)
		s.OverallSuccess = s.FailedTests == 0
	}

	// RTO statistics cover only the subset of records that carry a target.
	var rtoSum float64
	var rtoCount, rtoMet int
	for _, r := range results {
		if r.RTOMet == nil {
			continue
		}
		rtoCount++
		rtoSum += r.RTOActualMinutes
		if *r.RTOMet {
			rtoMet++
		}
	}
	if rtoCount > 0 {
		s.AvgRTOMinutes = Round2(rtoSum / float64(rtoCount))
		s.RTOComplianceRate = Round1(float64(rtoMet) / float64(rtoCount) * 100)
	}

	return s
}

// RTOTagged returns the subset of results carrying an RTO verdict.
func (s Summary) RTOTagged() []Result {
	var tagged []Result
	for _, r := range s.Results {
		if r.RTOMet != nil {
			tagged = append(tagged, r)
		}
	}
	return tagged
}
