package domain

import (
	"fmt"
	"strconv"
)

// AlertGateThreshold is the minimum threat score that justifies generating a
// public alert. Assessments below it produce a should_generate=false payload.
const AlertGateThreshold = 60

// AlertPayload is the structured alert produced for the notification layer.
// When ShouldGenerate is false only Reason is populated.
type AlertPayload struct {
	ShouldGenerate     bool     `json:"should_generate"`
	Reason             string   `json:"reason,omitempty"`
	Type               string   `json:"type,omitempty"`
	Severity           Severity `json:"severity,omitempty"`
	Title              string   `json:"title,omitempty"`
	Description        string   `json:"description,omitempty"`
	Confidence         float64  `json:"confidence,omitempty"`
	ETA                string   `json:"eta,omitempty"`
	AffectedPopulation string   `json:"affected_population,omitempty"`
	EvacuationZones    []string `json:"evacuation_zones,omitempty"`
	AIPrediction       bool     `json:"ai_prediction,omitempty"`
	ModelVersion       string   `json:"model_version,omitempty"`
}

var severityAdjectives = map[Severity]string{
	SeverityLow:      "Minor",
	SeverityMedium:   "Moderate",
	SeverityHigh:     "Severe",
	SeverityCritical: "Critical",
}

var threatTypeTitles = map[string]string{
	"cyclone":     "Cyclonic Storm",
	"tsunami":     "Tsunami Warning",
	"flood":       "Coastal Flooding",
	"pollution":   "Marine Pollution",
	"storm_surge": "Storm Surge",
	"erosion":     "Coastal Erosion",
}

// affectedPopulation holds the base population estimate per severity tier.
var affectedPopulation = map[Severity]int{
	SeverityLow:      10000,
	SeverityMedium:   50000,
	SeverityHigh:     200000,
	SeverityCritical: 500000,
}

// evacuationZones lists concentric distance bands per severity tier.
var evacuationZones = map[Severity][]string{
	SeverityLow: {
		"Monitor coastal areas (0-2km)",
	},
	SeverityMedium: {
		"Evacuate immediate coast (0-1km)",
		"Prepare inland areas (1-5km)",
	},
	SeverityHigh: {
		"Immediate evacuation (0-2km)",
		"Prepare evacuation (2-10km)",
		"Monitor closely (10-20km)",
	},
	SeverityCritical: {
		"Immediate evacuation (0-5km)",
		"Mandatory evacuation (5-15km)",
		"Prepare evacuation (15-30km)",
	},
}

// AlertSynthesizer builds alert payloads from environmental readings by
// scoring them and combining severity with a threat-type template.
type AlertSynthesizer struct {
	scorer *Scorer
}

// NewAlertSynthesizer creates an AlertSynthesizer backed by the given scorer.
func NewAlertSynthesizer(scorer *Scorer) *AlertSynthesizer {
	return &AlertSynthesizer{scorer: scorer}
}

// Synthesize scores the reading and, when the threat clears the gate, builds
// the full alert content for the given threat type and location.
func (a *AlertSynthesizer) Synthesize(current *Reading, location Geo, threatType string) AlertPayload {
	assessment := a.scorer.Score(current, nil)
	return BuildAlert(assessment, current, threatType)
}

// BuildAlert assembles alert content from an existing assessment. Split from
// Synthesize so callers that already scored the reading (the monitor loop)
// don't score twice.
func BuildAlert(assessment Assessment, current *Reading, threatType string) AlertPayload {
	if assessment.ThreatScore < AlertGateThreshold {
		return AlertPayload{ShouldGenerate: false, Reason: "Threat level too low"}
	}

	return AlertPayload{
		ShouldGenerate:     true,
		Type:               threatType,
		Severity:           assessment.Severity,
		Title:              alertTitle(threatType, assessment.Severity),
		Description:        alertDescription(threatType, current, assessment),
		Confidence:         assessment.Confidence,
		ETA:                estimateETA(threatType),
		AffectedPopulation: formatPopulation(affectedPopulation[assessment.Severity]),
		EvacuationZones:    zonesFor(assessment.Severity),
		AIPrediction:       true,
		ModelVersion:       assessment.ModelVersion,
	}
}

func alertTitle(threatType string, severity Severity) string {
	noun, ok := threatTypeTitles[threatType]
	if !ok {
		noun = "Coastal Threat"
	}
	return severityAdjectives[severity] + " " + noun
}

func alertDescription(threatType string, current *Reading, assessment Assessment) string {
	if current == nil {
		current = &Reading{}
	}
	wind := current.windSpeed()
	pressure := current.pressure()
	wave := current.waveHeight()

	var base string
	switch threatType {
	case "cyclone":
		base = fmt.Sprintf("Cyclonic system with sustained winds of %.0f km/h and central pressure of %.1f hPa approaching the coast.", wind, pressure)
	case "tsunami":
		base = fmt.Sprintf("Tsunami waves with estimated height of %.1fm detected. Immediate coastal evacuation recommended.", wave)
	case "storm_surge":
		base = fmt.Sprintf("Storm surge of %.1fm height expected due to severe weather conditions and low pressure (%.1f hPa).", wave, pressure)
	case "flood":
		base = fmt.Sprintf("Coastal flooding imminent due to high tide, storm surge, and sustained winds of %.0f km/h.", wind)
	default:
		base = fmt.Sprintf("Severe coastal weather conditions detected with %s threat level.", assessment.Severity)
	}

	return base + fmt.Sprintf(" AI prediction confidence: %.0f%%.", assessment.Confidence)
}

// estimateETA returns a canned arrival estimate per threat type. The cyclone
// figure assumes a system 50 km offshore advancing at 20 km/h.
func estimateETA(threatType string) string {
	switch threatType {
	case "cyclone":
		const distanceKm, speedKmh = 50.0, 20.0
		return fmt.Sprintf("%.1f hours", distanceKm/speedKmh)
	case "tsunami":
		return "15-45 minutes"
	case "storm_surge":
		return "2-4 hours"
	default:
		return "1-3 hours"
	}
}

// formatPopulation renders a population estimate with K/M suffixes.
func formatPopulation(pop int) string {
	switch {
	case pop >= 1000000:
		return fmt.Sprintf("%.1fM", float64(pop)/1000000)
	case pop >= 1000:
		return fmt.Sprintf("%.0fK", float64(pop)/1000)
	default:
		return strconv.Itoa(pop)
	}
}

func zonesFor(severity Severity) []string {
	if zones, ok := evacuationZones[severity]; ok {
		return zones
	}
	return []string{"Monitor situation closely"}
}
