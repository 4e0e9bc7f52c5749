// Package domain implements the coastal threat assessment engine: feature
// extraction from environmental sensor readings, threat scoring with a
// deterministic fallback, free-text incident report analysis, anomaly and
// trend detection, alert content synthesis, and evacuation route generation.
//
// # Input Conventions
//
// Environmental readings arrive as JSON objects mapping parameter names
// (windSpeed, pressure, waveHeight, seaLevel, temperature, humidity,
// visibility, waterQuality) to `{value, unit}` objects. Field gateways are
// inconsistent, so [Measurement] also accepts bare numbers and numeric
// strings. Absent or malformed parameters never produce an error; each
// substitutes its documented default:
//
//	windSpeed 0 km/h | pressure 1013 hPa | waveHeight 1 m | seaLevel 0 m
//	temperature 25 C | humidity 50 %     | visibility 10 km | waterQuality 100
//
// History is an ordered sequence of reading snapshots; trend features use the
// trailing 24 entries.
//
// # Scoring Paths
//
// [Scorer.Score] prefers the injected statistical model ("v2.1"); any model
// absence, shape mismatch, or prediction error switches to the deterministic
// rule model ("fallback_v1.0") instead of surfacing an error:
//
//	wind:     >80 +40 | >60 +25 | >40 +10
//	pressure: <990 +30 | <1000 +15 | <1010 +5
//	wave:     >4 +20 | >3 +10 | >2 +5
//	seaLevel: >3 +15 | >2 +8
//
//	severity: >=80 critical | >=60 high | >=30 medium | else low
//	confidence: min(95, 50 + score*0.8)
//
// Parameter thresholds are strict (>, <); severity bands are inclusive (>=).
//
// # Report Analysis
//
// Severity keywords are counted per tier; ties resolve in the fixed order
// critical, high, medium, low — a deliberate bias toward the more severe
// reading, not alphabetical order. Credibility is a 0-100 heuristic built
// from text length, numeric detail, word count, and location/time mentions.
//
// # Concurrency
//
// All operations are pure, synchronous functions over value types. The only
// shared state is the injected [ThreatModel] (read-only after construction)
// and [RouteSynthesizer]'s generator (internally locked); everything is safe
// to call from concurrent request handlers without external locking.
package domain
