package validation

import (
	"math"
	"strings"
	"time"
)

// Platform constants for the supported backup platforms
const (
	PlatformNutanixAHV = "NutanixAHV"
	PlatformAzure      = "Azure"
	PlatformAWS        = "AWS"
	PlatformVMware     = "VMware"
)

// Test category constants
const (
	CategoryBoot        = "Boot"
	CategoryNetwork     = "Network"
	CategoryApplication = "Application"
	CategoryCustom      = "Custom"
)

// Result is one recovery test outcome for one VM on one platform. Results
// are constructed by the ingest normalizers and never mutated afterwards.
type Result struct {
	Platform         string    `json:"platform"`
	VMName           string    `json:"vm_name"`
	BackupJobName    string    `json:"backup_job_name,omitempty"`
	RestorePointTime time.Time `json:"restore_point_time,omitzero"`
	TestCategory     string    `json:"test_category"`
	TestName         string    `json:"test_name"`
	Passed           bool      `json:"passed"`
	Details          string    `json:"details,omitempty"`
	DurationSeconds  float64   `json:"duration_seconds"`
	Timestamp        time.Time `json:"timestamp"`

	// RTOTargetMinutes of 0 means no target was set for this record. RTOMet
	// stays nil in that case; it is never coerced to false.
	RTOTargetMinutes int      `json:"rto_target_minutes,omitempty"`
	RTOActualMinutes float64  `json:"rto_actual_minutes,omitempty"`
	RTOMet           *bool    `json:"rto_met"`
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryBoot, []string{"boot", "heartbeat", "power", "start"}},
	{CategoryNetwork, []string{"ping", "icmp", "network", "tcp", "port", "dns", "connectivity"}},
	{CategoryApplication, []string{"http", "https", "url", "endpoint", "app", "service", "sql", "web"}},
}

// InferCategory derives a test category from a free-text test name by
// case-insensitive substring matching. Unmatched names fall back to Custom.
func InferCategory(testName string) string {
	name := strings.ToLower(testName)
	for _, set := range categoryKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(name, kw) {
				return set.category
			}
		}
	}
	return CategoryCustom
}

// ParsePlatform normalizes a free-text platform label. Unknown labels
// default to VMware, the platform manual evidence most commonly covers.
func ParsePlatform(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); {
	case strings.Contains(v, "ahv"), strings.Contains(v, "nutanix"):
		return PlatformNutanixAHV
	case strings.Contains(v, "azure"):
		return PlatformAzure
	case strings.Contains(v, "aws"), strings.Contains(v, "ec2"):
		return PlatformAWS
	default:
		return PlatformVMware
	}
}

// CanonicalPlatform normalizes a platform label against the known
// constants. Unlike ParsePlatform it reports unknown labels instead of
// falling back, so caller-supplied required-platform lists can be checked.
func CanonicalPlatform(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nutanixahv", "nutanix", "ahv":
		return PlatformNutanixAHV, true
	case "azure":
		return PlatformAzure, true
	case "aws", "ec2":
		return PlatformAWS, true
	case "vmware", "vsphere", "esxi":
		return PlatformVMware, true
	default:
		return "", false
	}
}

// ParseBool parses the truthy string variants accepted in manual imports.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// BoolPtr returns a pointer to b. Used to set the RTOMet tri-state.
func BoolPtr(b bool) *bool {
	return &b
}

// Round1 rounds to 1 decimal place. Rates and scores use this precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to 2 decimal places. Durations and RTO actuals use this.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
