package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomalies(t *testing.T) {
	t.Run("both anomalies, wind first", func(t *testing.T) {
		r := &Reading{WindSpeed: measurement(101), Pressure: measurement(970)}
		anomalies := DetectAnomalies(r)

		require.Len(t, anomalies, 2)

		assert.Equal(t, "wind_speed", anomalies[0].Parameter)
		assert.Equal(t, 101.0, anomalies[0].Value)
		assert.Equal(t, 100.0, anomalies[0].Threshold)
		assert.Equal(t, SeverityHigh, anomalies[0].Severity)

		assert.Equal(t, "pressure", anomalies[1].Parameter)
		assert.Equal(t, 970.0, anomalies[1].Value)
		assert.Equal(t, 980.0, anomalies[1].Threshold)
		assert.Equal(t, SeverityCritical, anomalies[1].Severity)
	})

	t.Run("thresholds are exclusive", func(t *testing.T) {
		r := &Reading{WindSpeed: measurement(100), Pressure: measurement(980)}
		assert.Empty(t, DetectAnomalies(r))
	})

	t.Run("wind only", func(t *testing.T) {
		r := &Reading{WindSpeed: measurement(120)}
		anomalies := DetectAnomalies(r)

		require.Len(t, anomalies, 1)
		assert.Equal(t, "wind_speed", anomalies[0].Parameter)
	})

	t.Run("nil reading yields no anomalies", func(t *testing.T) {
		assert.Empty(t, DetectAnomalies(nil))
	})
}

func TestAnalyzeTrends(t *testing.T) {
	t.Run("no history returns conservative snapshot", func(t *testing.T) {
		trends := AnalyzeTrends(&Reading{}, nil)

		assert.Equal(t, "falling", trends.PressureTrend)
		assert.Equal(t, "increasing", trends.WindTrend)
		assert.Equal(t, "rising", trends.WaveTrend)
		assert.Equal(t, "deteriorating", trends.OverallTrend)
		assert.Equal(t, 0.85, trends.ForecastReliability)
	})

	t.Run("deteriorating conditions from history", func(t *testing.T) {
		history := []Reading{
			{WindSpeed: measurement(20), Pressure: measurement(1010), WaveHeight: measurement(1)},
			{WindSpeed: measurement(35), Pressure: measurement(1002), WaveHeight: measurement(1.8)},
			{WindSpeed: measurement(55), Pressure: measurement(992), WaveHeight: measurement(2.9)},
		}

		trends := AnalyzeTrends(&Reading{}, history)

		assert.Equal(t, "falling", trends.PressureTrend)
		assert.Equal(t, "increasing", trends.WindTrend)
		assert.Equal(t, "rising", trends.WaveTrend)
		assert.Equal(t, "deteriorating", trends.OverallTrend)
	})

	t.Run("improving conditions from history", func(t *testing.T) {
		history := []Reading{
			{WindSpeed: measurement(60), Pressure: measurement(990), WaveHeight: measurement(3)},
			{WindSpeed: measurement(40), Pressure: measurement(1000), WaveHeight: measurement(2)},
			{WindSpeed: measurement(25), Pressure: measurement(1010), WaveHeight: measurement(1.2)},
		}

		trends := AnalyzeTrends(&Reading{}, history)

		assert.Equal(t, "rising", trends.PressureTrend)
		assert.Equal(t, "decreasing", trends.WindTrend)
		assert.Equal(t, "falling", trends.WaveTrend)
		assert.Equal(t, "improving", trends.OverallTrend)
	})

	t.Run("flat history reads steady", func(t *testing.T) {
		history := []Reading{
			{WindSpeed: measurement(30), Pressure: measurement(1005), WaveHeight: measurement(1.5)},
			{WindSpeed: measurement(30), Pressure: measurement(1005), WaveHeight: measurement(1.5)},
		}

		trends := AnalyzeTrends(&Reading{}, history)

		assert.Equal(t, "steady", trends.PressureTrend)
		assert.Equal(t, "steady", trends.WindTrend)
		assert.Equal(t, "steady", trends.WaveTrend)
		assert.Equal(t, "stable", trends.OverallTrend)
	})

	t.Run("reliability grows with window size", func(t *testing.T) {
		short := AnalyzeTrends(&Reading{}, make([]Reading, 2))
		long := AnalyzeTrends(&Reading{}, make([]Reading, 24))

		assert.Less(t, short.ForecastReliability, long.ForecastReliability)
		assert.LessOrEqual(t, long.ForecastReliability, 0.95)
	})
}
