package domain

// FeatureCount is the fixed width of the model input vector.
const FeatureCount = 10

// trendWindow caps how many trailing history snapshots feed trend features.
const trendWindow = 24

// FeatureVector is the fixed-order model input: windSpeed, pressure,
// waveHeight, seaLevel, temperature, humidity, visibility, waterQuality,
// windTrend, pressureTrend. The order is significant; the statistical model's
// scaler is fitted against it.
type FeatureVector [FeatureCount]float64

// ExtractFeatures builds the model input vector from the current reading and
// an optional history window. A nil reading produces an all-zero vector so
// the caller's scoring path degrades to the fallback rule model instead of
// failing. Absent parameters take their documented defaults.
func ExtractFeatures(current *Reading, history []Reading) FeatureVector {
	if current == nil {
		return FeatureVector{}
	}

	var f FeatureVector
	f[0] = current.windSpeed()
	f[1] = current.pressure()
	f[2] = current.waveHeight()
	f[3] = current.seaLevel()
	f[4] = current.temperature()
	f[5] = current.humidity()
	f[6] = current.visibility()
	f[7] = current.waterQuality()

	if len(history) > 1 {
		window := trailingWindow(history, trendWindow)
		f[8] = trendOf(window, func(r Reading) float64 { return r.windSpeed() })
		f[9] = trendOf(window, func(r Reading) float64 { return r.pressure() })
	}

	return f
}

// trendOf computes (last - first) / count over the window, the short-term
// direction estimate used as a model feature. Returns 0 for windows with
// fewer than two points.
func trendOf(window []Reading, value func(Reading) float64) float64 {
	if len(window) < 2 {
		return 0
	}
	first := value(window[0])
	last := value(window[len(window)-1])
	return (last - first) / float64(len(window))
}

func trailingWindow(history []Reading, n int) []Reading {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
