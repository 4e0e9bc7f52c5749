package domain

import "math"

// coastalReferencePoints are the known coastal population centers threat
// scores are weighted against. Degree-space distance is a deliberate
// simplification; real coastline geodesy is a pluggable external input.
var coastalReferencePoints = map[string]Geo{
	"kutch":     {Lat: 23.7337, Lng: 68.7333},
	"kandla":    {Lat: 23.0333, Lng: 70.2167},
	"veraval":   {Lat: 20.9167, Lng: 70.3667},
	"porbandar": {Lat: 21.6417, Lng: 69.6293},
}

// CoastalProximityFactor returns the threat-score multiplier for a location:
// the closer to a known coastal reference point, the higher the factor.
// Locations more than one degree from every reference point are unweighted.
func CoastalProximityFactor(lat, lng float64) float64 {
	minDistance := math.Inf(1)
	for _, ref := range coastalReferencePoints {
		d := math.Hypot(lat-ref.Lat, lng-ref.Lng)
		if d < minDistance {
			minDistance = d
		}
	}

	switch {
	case minDistance < 0.1:
		return 1.5
	case minDistance < 0.5:
		return 1.3
	case minDistance < 1.0:
		return 1.1
	default:
		return 1.0
	}
}
