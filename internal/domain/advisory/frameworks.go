package advisory

// Framework citations per finding category. Every finding of a given
// category carries the same citation so report consumers can rely on a
// stable evidence-to-clause mapping.
var frameworkCitations = map[string]string{
	CategoryCoverageGap:       "SOC2 A1.3, ISO 27001 A.8.13, NIS2 Art 21(2)(c)",
	CategoryRecoveryFailure:   "SOC2 A1.3, ISO 27001 A.8.14, DORA Art 12",
	CategorySLAViolation:      "SOC2 A1.2, ISO 22301 8.4, DORA Art 11(5)",
	CategoryStaleEvidence:     "SOC2 CC4.1, ISO 27001 A.8.15, NIS2 Art 21(2)(f)",
	CategoryMeasurementGap:    "ISO 22301 8.4, DORA Art 11(2)",
	CategoryPlatformDiversity: "ISO 27001 A.8.13",
	CategoryPosture:           "SOC2 A1.3, ISO 22301 8.5",
}

// FrameworkFor returns the compliance-framework citation for a category.
func FrameworkFor(category string) string {
	return frameworkCitations[category]
}

// Frameworks lists the distinct framework families cited by the rule set.
func Frameworks() []string {
	return []string{"SOC2", "ISO 27001", "ISO 22301", "NIS2", "DORA"}
}
