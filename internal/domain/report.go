package domain

import (
	"strings"
	"unicode"
)

// ReportAnalyzerVersion tags results from the text analysis path.
const ReportAnalyzerVersion = "report_analyzer_v1.5"

// severityKeywords maps each tier to the phrases that hint at it. Iteration
// follows severityPriority: on tied counts the more severe tier wins, an
// intentional bias toward caution.
var severityKeywords = map[Severity][]string{
	SeverityCritical: {"emergency", "disaster", "catastrophic", "severe", "massive", "devastating"},
	SeverityHigh:     {"dangerous", "serious", "major", "significant", "extensive"},
	SeverityMedium:   {"moderate", "concerning", "noticeable", "unusual"},
	SeverityLow:      {"minor", "slight", "small", "light"},
}

// severityPriority fixes the tie-break order for keyword scoring. Not
// alphabetical and not rank order; first maximum wins.
var severityPriority = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

var (
	locationKeywords = []string{"km", "meter", "coast", "beach", "shore", "village", "town"}
	timeKeywords     = []string{"morning", "evening", "hour", "minute", "yesterday", "today"}
)

// tagGroups define the topical tags extracted from report text. All groups
// match case-insensitively against the lowered text.
var tagGroups = []struct {
	Tag      string
	Keywords []string
}{
	{"weather", []string{"wind", "rain", "storm", "flood", "cyclone", "hurricane"}},
	{"water", []string{"wave", "tide", "flood", "tsunami", "surge"}},
	{"infrastructure_damage", []string{"damage", "destruction", "broken", "collapsed"}},
	{"pollution", []string{"oil", "chemical", "waste", "pollution", "contamination"}},
}

// ReportAnalysis is the stateless result of analyzing one report body.
type ReportAnalysis struct {
	PredictedSeverity  Severity `json:"predicted_severity"`
	SeverityConfidence float64  `json:"severity_confidence"`
	Credibility        float64  `json:"credibility"`
	Tags               []string `json:"tags"`
	TextQuality        bool     `json:"text_quality"`
}

// AnalyzeText scores a free-text incident report for severity hint,
// credibility, and topical tags. Pure function of the description; an empty
// description yields a critical/zero-confidence result per the tie-break rule.
func AnalyzeText(description string) ReportAnalysis {
	text := strings.ToLower(description)

	bestSeverity := severityPriority[0]
	bestCount := -1
	for _, severity := range severityPriority {
		count := 0
		for _, keyword := range severityKeywords[severity] {
			if strings.Contains(text, keyword) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			bestSeverity = severity
		}
	}

	return ReportAnalysis{
		PredictedSeverity:  bestSeverity,
		SeverityConfidence: float64(bestCount) * 20,
		Credibility:        credibility(description),
		Tags:               extractTags(text),
		TextQuality:        len(description) > 50 && containsDigit(description),
	}
}

// credibility estimates report trustworthiness on a 0-100 scale from length,
// numeric detail, word count, and location/time specificity.
func credibility(text string) float64 {
	score := 50.0
	lowered := strings.ToLower(text)

	switch {
	case len(text) > 100:
		score += 15
	case len(text) > 50:
		score += 10
	}

	if containsDigit(text) {
		score += 10
	}

	if len(strings.Fields(text)) > 10 {
		score += 5
	}

	if containsAny(lowered, locationKeywords) {
		score += 10
	}
	if containsAny(lowered, timeKeywords) {
		score += 5
	}

	if score > 100 {
		return 100
	}
	return score
}

// extractTags evaluates each tag group independently against the lowered
// text; a report can carry any combination of tags.
func extractTags(lowered string) []string {
	tags := []string{}
	for _, group := range tagGroups {
		if containsAny(lowered, group.Keywords) {
			tags = append(tags, group.Tag)
		}
	}
	return tags
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
