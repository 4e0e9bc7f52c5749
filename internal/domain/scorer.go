package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Model version tags distinguish which path produced a result.
const (
	ModelVersionPrimary  = "v2.1"
	ModelVersionFallback = "fallback_v1.0"
)

// ModelPrediction is the raw output of a statistical threat model.
type ModelPrediction struct {
	ThreatScore        float64
	SeverityClass      int
	ClassProbabilities []float64
}

// ThreatModel scores a feature vector. Implementations are read-only after
// construction and safe for concurrent use. Scorer treats any returned error
// as a cue to switch to the fallback rule model.
type ThreatModel interface {
	Predict(features FeatureVector) (ModelPrediction, error)
}

// Assessment is the result of one threat scoring call. Produced fresh per
// call and never mutated afterwards.
type Assessment struct {
	ThreatScore     float64   `json:"threat_score"`
	Severity        Severity  `json:"severity"`
	Confidence      float64   `json:"confidence"`
	Recommendations []string  `json:"recommendations"`
	ModelVersion    string    `json:"model_version"`
	PredictionTime  time.Time `json:"prediction_time"`
}

// Scorer produces threat assessments from environmental readings. The
// statistical model is optional; without one every call takes the
// deterministic fallback path. Scorer never returns an error: model failures
// of any kind degrade to the fallback rule model.
type Scorer struct {
	model  ThreatModel
	logger *slog.Logger
}

// NewScorer creates a Scorer. A nil model disables the primary path.
func NewScorer(model ThreatModel, logger *slog.Logger) *Scorer {
	return &Scorer{model: model, logger: logger}
}

// ModelAvailable reports whether a statistical model is loaded. Exposed for
// health/capability introspection.
func (s *Scorer) ModelAvailable() bool {
	return s.model != nil
}

// Score assesses the threat level for a reading and optional history window.
func (s *Scorer) Score(current *Reading, history []Reading) Assessment {
	features := ExtractFeatures(current, history)

	if s.model == nil {
		return s.fallback(current)
	}

	pred, err := s.model.Predict(features)
	if err == nil {
		err = validatePrediction(pred)
	}
	if err != nil {
		s.logger.Warn("model prediction failed, using fallback rule model", "error", err)
		return s.fallback(current)
	}

	return Assessment{
		ThreatScore:     pred.ThreatScore,
		Severity:        SeverityByClass(pred.SeverityClass),
		Confidence:      maxOf(pred.ClassProbabilities) * 100,
		Recommendations: Recommendations(SeverityByClass(pred.SeverityClass), pred.ThreatScore, current),
		ModelVersion:    ModelVersionPrimary,
		PredictionTime:  clock.Now().UTC(),
	}
}

// fallback is the deterministic rule model. Thresholds use strict comparisons
// on the parameter side and inclusive bands on the severity side, matching
// the published operational cutoffs exactly.
func (s *Scorer) fallback(current *Reading) Assessment {
	score := FallbackScore(current)
	severity := severityForScore(score)

	return Assessment{
		ThreatScore:     score,
		Severity:        severity,
		Confidence:      fallbackConfidence(score),
		Recommendations: Recommendations(severity, score, current),
		ModelVersion:    ModelVersionFallback,
		PredictionTime:  clock.Now().UTC(),
	}
}

// FallbackScore computes the additive rule-model score from wind speed,
// pressure, wave height, and sea level.
func FallbackScore(current *Reading) float64 {
	if current == nil {
		current = &Reading{}
	}
	wind := current.WindSpeed.ValueOr(DefaultWindSpeed)
	pressure := current.Pressure.ValueOr(DefaultPressure)
	wave := current.WaveHeight.ValueOr(DefaultWaveHeight)
	seaLevel := current.SeaLevel.ValueOr(DefaultSeaLevel)

	score := 0.0
	switch {
	case wind > 80:
		score += 40
	case wind > 60:
		score += 25
	case wind > 40:
		score += 10
	}

	switch {
	case pressure < 990:
		score += 30
	case pressure < 1000:
		score += 15
	case pressure < 1010:
		score += 5
	}

	switch {
	case wave > 4:
		score += 20
	case wave > 3:
		score += 10
	case wave > 2:
		score += 5
	}

	switch {
	case seaLevel > 3:
		score += 15
	case seaLevel > 2:
		score += 8
	}

	return score
}

// severityForScore maps a rule-model score onto the severity bands. Band
// edges are inclusive: exactly 80 is critical, exactly 60 is high, exactly
// 30 is medium.
func severityForScore(score float64) Severity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 60:
		return SeverityHigh
	case score >= 30:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// fallbackConfidence is min(95, 50 + score*0.8); the rule model never claims
// more than 95% certainty.
func fallbackConfidence(score float64) float64 {
	c := 50 + score*0.8
	if c > 95 {
		return 95
	}
	return c
}

// DegradedAssessment is the safe result substituted when scoring is reached
// in an unexpected internal state. Medium severity, 50% confidence, generic
// guidance.
func DegradedAssessment() Assessment {
	return Assessment{
		ThreatScore:     0,
		Severity:        SeverityMedium,
		Confidence:      50,
		Recommendations: []string{"Monitor conditions closely", "Stay informed"},
		ModelVersion:    ModelVersionFallback,
		PredictionTime:  clock.Now().UTC(),
	}
}

func validatePrediction(pred ModelPrediction) error {
	if len(pred.ClassProbabilities) == 0 {
		return errors.New("model returned no class probabilities")
	}
	if pred.SeverityClass < 0 || pred.SeverityClass >= len(severityLabels) {
		return fmt.Errorf("severity class %d out of range", pred.SeverityClass)
	}
	if pred.ThreatScore < 0 {
		return fmt.Errorf("negative threat score %v", pred.ThreatScore)
	}
	return nil
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
