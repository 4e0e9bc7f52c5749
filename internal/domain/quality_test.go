package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessDataQuality(t *testing.T) {
	t.Run("complete reading", func(t *testing.T) {
		r := &Reading{
			WindSpeed:    measurement(10),
			Pressure:     measurement(1013),
			WaveHeight:   measurement(1),
			SeaLevel:     measurement(0),
			Temperature:  measurement(25),
			Humidity:     measurement(50),
			Visibility:   measurement(10),
			WaterQuality: measurement(100),
		}

		q := AssessDataQuality(r)

		assert.Equal(t, 100.0, q.Completeness)
		assert.Empty(t, q.MissingParameters)
		assert.Equal(t, "high", q.Reliability)
		assert.Equal(t, "real-time", q.DataAge)
	})

	t.Run("partial reading", func(t *testing.T) {
		r := &Reading{
			WindSpeed:  measurement(10),
			Pressure:   measurement(1013),
			WaveHeight: measurement(1),
			SeaLevel:   measurement(0),
			Humidity:   measurement(50),
		}

		q := AssessDataQuality(r)

		assert.Equal(t, 62.5, q.Completeness)
		assert.Equal(t, []string{"temperature", "visibility", "waterQuality"}, q.MissingParameters)
		assert.Equal(t, "medium", q.Reliability)
	})

	t.Run("empty reading", func(t *testing.T) {
		q := AssessDataQuality(&Reading{})

		assert.Zero(t, q.Completeness)
		assert.Len(t, q.MissingParameters, 8)
		assert.Equal(t, "low", q.Reliability)
	})

	t.Run("nil reading", func(t *testing.T) {
		q := AssessDataQuality(nil)
		assert.Zero(t, q.Completeness)
		assert.Equal(t, "low", q.Reliability)
	})
}

func TestSeverityConsistencyBonus(t *testing.T) {
	tests := []struct {
		name      string
		reported  Severity
		predicted Severity
		expected  float64
	}{
		{"perfect match", SeverityHigh, SeverityHigh, 20},
		{"adjacent tiers", SeverityHigh, SeverityCritical, 10},
		{"two tiers apart", SeverityLow, SeverityHigh, 0},
		{"opposite ends", SeverityLow, SeverityCritical, -10},
		{"unknown reported ranks as medium", Severity(""), SeverityMedium, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeverityConsistencyBonus(tt.reported, tt.predicted))
		})
	}
}
