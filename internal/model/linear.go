// Package model provides the injectable statistical threat model: a linear
// regressor for the threat score and a softmax classifier for the severity
// class, both operating on standard-scaled feature vectors. Weights are
// placeholders fitted against synthetic data and load from a JSON file; the
// engine treats the model as a pluggable external input and falls back to
// the rule model whenever it is absent or misshapen.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/couchcryptid/coastal-threat-service/internal/domain"
)

// severityClasses is the number of classifier outputs: low, medium, high, critical.
const severityClasses = 4

// Scaler standardizes features to zero mean and unit variance using the
// statistics the model was fitted with.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Linear is a linear threat model: scaled features through a regression head
// for the score and a softmax head for the severity class. Read-only after
// construction.
type Linear struct {
	Version      string      `json:"version"`
	Scaler       Scaler      `json:"scaler"`
	ScoreWeights []float64   `json:"score_weights"`
	ScoreBias    float64     `json:"score_bias"`
	ClassWeights [][]float64 `json:"class_weights"`
	ClassBiases  []float64   `json:"class_biases"`
}

// Load reads model weights from a JSON file and validates their shape.
func Load(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var m Linear
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %q: %w", path, err)
	}
	return &m, nil
}

// Predict implements domain.ThreatModel.
func (m *Linear) Predict(features domain.FeatureVector) (domain.ModelPrediction, error) {
	if err := m.validate(); err != nil {
		return domain.ModelPrediction{}, err
	}

	scaled := make([]float64, domain.FeatureCount)
	for i, v := range features {
		scaled[i] = (v - m.Scaler.Mean[i]) / m.Scaler.Std[i]
	}

	score := m.ScoreBias
	for i, w := range m.ScoreWeights {
		score += w * scaled[i]
	}
	score = clamp(score, 0, 100)

	probs := softmax(m.logits(scaled))
	class := argmax(probs)

	return domain.ModelPrediction{
		ThreatScore:        score,
		SeverityClass:      class,
		ClassProbabilities: probs,
	}, nil
}

func (m *Linear) logits(scaled []float64) []float64 {
	logits := make([]float64, severityClasses)
	for c := range logits {
		l := m.ClassBiases[c]
		for i, w := range m.ClassWeights[c] {
			l += w * scaled[i]
		}
		logits[c] = l
	}
	return logits
}

func (m *Linear) validate() error {
	if len(m.Scaler.Mean) != domain.FeatureCount || len(m.Scaler.Std) != domain.FeatureCount {
		return fmt.Errorf("scaler shape %dx%d, want %d", len(m.Scaler.Mean), len(m.Scaler.Std), domain.FeatureCount)
	}
	for i, s := range m.Scaler.Std {
		if s == 0 {
			return fmt.Errorf("scaler std[%d] is zero", i)
		}
	}
	if len(m.ScoreWeights) != domain.FeatureCount {
		return fmt.Errorf("score weights length %d, want %d", len(m.ScoreWeights), domain.FeatureCount)
	}
	if len(m.ClassWeights) != severityClasses || len(m.ClassBiases) != severityClasses {
		return fmt.Errorf("classifier expects %d classes", severityClasses)
	}
	for c, row := range m.ClassWeights {
		if len(row) != domain.FeatureCount {
			return fmt.Errorf("class weights[%d] length %d, want %d", c, len(row), domain.FeatureCount)
		}
	}
	return nil
}

// Synthetic builds a model with plausible hand-tuned weights plus seeded
// noise, standing in for one trained on real labeled events. Used by the
// genmodel command and tests.
func Synthetic(seed int64) *Linear {
	rng := rand.New(rand.NewSource(seed))
	noise := func(scale float64) float64 { return (rng.Float64()*2 - 1) * scale }

	// Feature order: wind, pressure, wave, seaLevel, temp, humidity,
	// visibility, waterQuality, windTrend, pressureTrend. Wind, wave, and
	// sea level push the score up; pressure, visibility, and water quality
	// pull it down.
	scoreWeights := []float64{18, -12, 9, 7, 1.5, 1, -2, -1.5, 4, -4}
	for i := range scoreWeights {
		scoreWeights[i] += noise(0.5)
	}

	classWeights := make([][]float64, severityClasses)
	classBiases := make([]float64, severityClasses)
	for c := range classWeights {
		// Each class centers on a progressively more extreme regime.
		intensity := float64(c) - 1.5
		row := make([]float64, domain.FeatureCount)
		for i, w := range scoreWeights {
			row[i] = w*intensity*0.1 + noise(0.2)
		}
		classWeights[c] = row
		classBiases[c] = -math.Abs(intensity) + noise(0.1)
	}

	return &Linear{
		Version: domain.ModelVersionPrimary,
		Scaler: Scaler{
			Mean: []float64{30, 1005, 2, 1, 28, 70, 8, 80, 0, 0},
			Std:  []float64{25, 12, 1.5, 1, 6, 20, 4, 25, 2, 2},
		},
		ScoreWeights: scoreWeights,
		ScoreBias:    45,
		ClassWeights: classWeights,
		ClassBiases:  classBiases,
	}
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	sum := 0.0
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
