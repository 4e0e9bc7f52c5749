package domain

// Base recommendation sets per severity tier. Wording is fixed; alert
// consumers display these strings verbatim.
var baseRecommendations = map[Severity][]string{
	SeverityCritical: {
		"Evacuate immediately to higher ground",
		"Alert all family members and neighbors",
		"Call emergency services (108)",
		"Avoid coastal areas and low-lying regions",
	},
	SeverityHigh: {
		"Prepare for immediate evacuation",
		"Secure property and belongings",
		"Check on vulnerable community members",
		"Monitor official emergency channels",
	},
	SeverityMedium: {
		"Stay alert and monitor conditions",
		"Prepare emergency kit and evacuation plan",
		"Avoid unnecessary travel to coastal areas",
		"Keep emergency contacts ready",
	},
	SeverityLow: {
		"Continue normal activities with caution",
		"Stay informed about weather updates",
		"Review family emergency plan",
	},
}

// Recommendations returns the ordered action items for an assessment: the
// fixed tier-base list first, then condition-specific items in check order
// (wind before wave).
func Recommendations(severity Severity, threatScore float64, current *Reading) []string {
	if current == nil {
		current = &Reading{}
	}

	base := baseRecommendations[severity]
	if base == nil {
		base = baseRecommendations[SeverityLow]
	}

	recs := make([]string, len(base), len(base)+2)
	copy(recs, base)

	if current.windSpeed() > 50 {
		recs = append(recs, "Secure loose outdoor objects")
	}
	if current.waveHeight() > 3 {
		recs = append(recs, "Avoid beach and waterfront activities")
	}

	return recs
}
