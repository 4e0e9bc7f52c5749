package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Default values substituted for absent or malformed parameters. These mirror
// the sensor network's nominal baseline: calm wind, standard atmosphere,
// one-meter swell, mean sea level, tropical coastal climate.
const (
	DefaultWindSpeed    = 0
	DefaultPressure     = 1013
	DefaultWaveHeight   = 1
	DefaultSeaLevel     = 0
	DefaultTemperature  = 25
	DefaultHumidity     = 50
	DefaultVisibility   = 10
	DefaultWaterQuality = 100
)

// Measurement is a single sensor parameter in the `{value, unit}` wire shape.
// The value pointer is nil when the parameter was absent or malformed.
type Measurement struct {
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// UnmarshalJSON accepts the nested `{value, unit}` object shape as well as a
// bare number or numeric string. Anything unparseable yields a Measurement
// with a nil value rather than an error; callers substitute defaults. Sensor
// gateways in the field emit all three shapes.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		m.Value = &num
		return nil
	}

	var obj struct {
		Value     json.RawMessage `json:"value"`
		Unit      string          `json:"unit"`
		Timestamp string          `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			if v, ok := parseFloat(s); ok {
				m.Value = &v
			}
		}
		return nil
	}

	m.Unit = obj.Unit
	m.Timestamp = obj.Timestamp
	if v, ok := coerceFloat(obj.Value); ok {
		m.Value = &v
	}
	return nil
}

// ValueOr returns the measurement value, or def when the measurement or its
// value is absent.
func (m *Measurement) ValueOr(def float64) float64 {
	if m == nil || m.Value == nil {
		return def
	}
	return *m.Value
}

// Reading is one environmental snapshot from the sensor network. Every field
// is optional; accessors substitute the documented defaults.
type Reading struct {
	WindSpeed    *Measurement `json:"windSpeed,omitempty"`
	Pressure     *Measurement `json:"pressure,omitempty"`
	WaveHeight   *Measurement `json:"waveHeight,omitempty"`
	SeaLevel     *Measurement `json:"seaLevel,omitempty"`
	Temperature  *Measurement `json:"temperature,omitempty"`
	Humidity     *Measurement `json:"humidity,omitempty"`
	Visibility   *Measurement `json:"visibility,omitempty"`
	WaterQuality *Measurement `json:"waterQuality,omitempty"`
}

func (r *Reading) windSpeed() float64    { return r.WindSpeed.ValueOr(DefaultWindSpeed) }
func (r *Reading) pressure() float64     { return r.Pressure.ValueOr(DefaultPressure) }
func (r *Reading) waveHeight() float64   { return r.WaveHeight.ValueOr(DefaultWaveHeight) }
func (r *Reading) seaLevel() float64     { return r.SeaLevel.ValueOr(DefaultSeaLevel) }
func (r *Reading) temperature() float64  { return r.Temperature.ValueOr(DefaultTemperature) }
func (r *Reading) humidity() float64     { return r.Humidity.ValueOr(DefaultHumidity) }
func (r *Reading) visibility() float64   { return r.Visibility.ValueOr(DefaultVisibility) }
func (r *Reading) waterQuality() float64 { return r.WaterQuality.ValueOr(DefaultWaterQuality) }

// parameters returns each parameter's wire name paired with whether a value
// is present, in the canonical feature order.
func (r *Reading) parameters() []struct {
	Name    string
	Present bool
} {
	if r == nil {
		r = &Reading{}
	}
	return []struct {
		Name    string
		Present bool
	}{
		{"windSpeed", r.WindSpeed != nil && r.WindSpeed.Value != nil},
		{"pressure", r.Pressure != nil && r.Pressure.Value != nil},
		{"waveHeight", r.WaveHeight != nil && r.WaveHeight.Value != nil},
		{"seaLevel", r.SeaLevel != nil && r.SeaLevel.Value != nil},
		{"temperature", r.Temperature != nil && r.Temperature.Value != nil},
		{"humidity", r.Humidity != nil && r.Humidity.Value != nil},
		{"visibility", r.Visibility != nil && r.Visibility.Value != nil},
		{"waterQuality", r.WaterQuality != nil && r.WaterQuality.Value != nil},
	}
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Severity is the four-level threat scale used across scoring,
// recommendations, and evacuation-zone selection.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityLabels is ordered by classifier class index: 0=low through 3=critical.
var severityLabels = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the severity's position on the total order, 1 (low) through
// 4 (critical). Unknown labels rank as medium.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 2
	}
}

// SeverityByClass maps a classifier class index to its label.
// Out-of-range indices report medium, the degraded-result default.
func SeverityByClass(class int) Severity {
	if class < 0 || class >= len(severityLabels) {
		return SeverityMedium
	}
	return severityLabels[class]
}

// coerceFloat extracts a float from a raw JSON value that may be a number,
// a numeric string, or anything else (rejected).
func coerceFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseFloat(s)
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
