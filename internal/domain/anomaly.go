package domain

// Anomaly thresholds for out-of-range sensor readings. Wind above 100 km/h
// and pressure below 980 hPa are outside the operating envelope of normal
// coastal weather and warrant immediate attention regardless of the
// composite threat score.
const (
	WindAnomalyThreshold     = 100
	PressureAnomalyThreshold = 980
)

// Anomaly flags a single out-of-range parameter.
type Anomaly struct {
	Parameter   string   `json:"parameter"`
	Value       float64  `json:"value"`
	Threshold   float64  `json:"threshold"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// DetectAnomalies checks a reading for out-of-range parameters. The checks
// are independent and order-stable: wind first, then pressure.
func DetectAnomalies(current *Reading) []Anomaly {
	if current == nil {
		current = &Reading{}
	}

	anomalies := []Anomaly{}

	if wind := current.windSpeed(); wind > WindAnomalyThreshold {
		anomalies = append(anomalies, Anomaly{
			Parameter:   "wind_speed",
			Value:       wind,
			Threshold:   WindAnomalyThreshold,
			Severity:    SeverityHigh,
			Description: "Extremely high wind speeds detected",
		})
	}

	if pressure := current.pressure(); pressure < PressureAnomalyThreshold {
		anomalies = append(anomalies, Anomaly{
			Parameter:   "pressure",
			Value:       pressure,
			Threshold:   PressureAnomalyThreshold,
			Severity:    SeverityCritical,
			Description: "Extremely low atmospheric pressure",
		})
	}

	return anomalies
}

// TrendAnalysis is the qualitative short-term direction summary.
type TrendAnalysis struct {
	PressureTrend       string  `json:"pressure_trend"`
	WindTrend           string  `json:"wind_trend"`
	WaveTrend           string  `json:"wave_trend"`
	OverallTrend        string  `json:"overall_trend"`
	ForecastReliability float64 `json:"forecast_reliability"`
}

// trendEpsilon is the minimum per-step change to call a direction; smaller
// deltas read as steady.
const trendEpsilon = 0.05

// AnalyzeTrends classifies short-term direction for pressure, wind, and wave
// height. Without at least two history points there is nothing to
// differentiate, so the conservative storm-approach snapshot is returned
// (falling pressure, rising wind and waves).
func AnalyzeTrends(current *Reading, history []Reading) TrendAnalysis {
	if len(history) < 2 {
		return TrendAnalysis{
			PressureTrend:       "falling",
			WindTrend:           "increasing",
			WaveTrend:           "rising",
			OverallTrend:        "deteriorating",
			ForecastReliability: 0.85,
		}
	}

	window := trailingWindow(history, trendWindow)
	pressureDelta := trendOf(window, func(r Reading) float64 { return r.pressure() })
	windDelta := trendOf(window, func(r Reading) float64 { return r.windSpeed() })
	waveDelta := trendOf(window, func(r Reading) float64 { return r.waveHeight() })

	analysis := TrendAnalysis{
		PressureTrend:       direction(pressureDelta, "rising", "falling"),
		WindTrend:           direction(windDelta, "increasing", "decreasing"),
		WaveTrend:           direction(waveDelta, "rising", "falling"),
		ForecastReliability: forecastReliability(len(window)),
	}
	analysis.OverallTrend = overallTrend(pressureDelta, windDelta, waveDelta)
	return analysis
}

func direction(delta float64, up, down string) string {
	switch {
	case delta > trendEpsilon:
		return up
	case delta < -trendEpsilon:
		return down
	default:
		return "steady"
	}
}

// overallTrend weighs the three signals: falling pressure, rising wind, and
// rising waves each count toward deterioration; their opposites toward
// improvement.
func overallTrend(pressureDelta, windDelta, waveDelta float64) string {
	worsening := 0
	improving := 0

	tally := func(delta float64, worseWhenPositive bool) {
		if delta > trendEpsilon {
			if worseWhenPositive {
				worsening++
			} else {
				improving++
			}
		} else if delta < -trendEpsilon {
			if worseWhenPositive {
				improving++
			} else {
				worsening++
			}
		}
	}

	tally(pressureDelta, false)
	tally(windDelta, true)
	tally(waveDelta, true)

	switch {
	case worsening > improving:
		return "deteriorating"
	case improving > worsening:
		return "improving"
	default:
		return "stable"
	}
}

// forecastReliability grows with the history window, capped at 0.95 for a
// full 24-point window.
func forecastReliability(points int) float64 {
	r := 0.5 + float64(points)*0.02
	if r > 0.95 {
		return 0.95
	}
	return r
}
