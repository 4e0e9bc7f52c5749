package engine

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/observability"
)

var fixedTime = time.Date(2026, 6, 14, 8, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	clk := clockwork.NewFakeClockAt(fixedTime)
	SetClock(clk)
	domain.SetClock(clk)
	t.Cleanup(func() {
		SetClock(clockwork.NewRealClock())
		domain.SetClock(clockwork.NewRealClock())
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer := domain.NewScorer(nil, logger)
	routes := domain.NewRouteSynthesizer(rand.New(rand.NewSource(42)))

	return New(scorer, routes, observability.NewMetricsForTesting(), logger, rand.New(rand.NewSource(42)))
}

func measurement(v float64) *domain.Measurement {
	return &domain.Measurement{Value: &v}
}

func stormReading() *domain.Reading {
	return &domain.Reading{
		WindSpeed:  measurement(85),
		Pressure:   measurement(985),
		WaveHeight: measurement(4.5),
		SeaLevel:   measurement(2.5),
	}
}

type panicModel struct{}

func (panicModel) Predict(domain.FeatureVector) (domain.ModelPrediction, error) {
	panic("corrupt coefficients")
}

func TestAssessThreatDegradesOnModelPanic(t *testing.T) {
	clk := clockwork.NewFakeClockAt(fixedTime)
	SetClock(clk)
	domain.SetClock(clk)
	t.Cleanup(func() {
		SetClock(clockwork.NewRealClock())
		domain.SetClock(clockwork.NewRealClock())
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer := domain.NewScorer(panicModel{}, logger)
	routes := domain.NewRouteSynthesizer(rand.New(rand.NewSource(42)))
	e := New(scorer, routes, observability.NewMetricsForTesting(), logger, nil)

	resp := e.AssessThreat(AssessRequest{CurrentData: stormReading()})

	degraded := domain.DegradedAssessment()
	assert.Equal(t, degraded.Severity, resp.Severity)
	assert.Equal(t, degraded.ThreatScore, resp.ThreatScore)
	assert.Equal(t, degraded.Confidence, resp.Confidence)
	assert.Nil(t, resp.CoastalRiskFactor)
}

func TestAssessThreatWithoutLocation(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AssessThreat(AssessRequest{CurrentData: stormReading()})

	assert.Equal(t, 98.0, resp.ThreatScore)
	assert.Equal(t, domain.SeverityCritical, resp.Severity)
	assert.Equal(t, domain.ModelVersionFallback, resp.ModelVersion)
	assert.Nil(t, resp.CoastalRiskFactor)
	assert.Nil(t, resp.Location)
}

func TestAssessThreatAppliesCoastalFactor(t *testing.T) {
	e := newTestEngine(t)

	// Kandla port coordinates sit on a reference point, the closest band.
	loc := &domain.Geo{Lat: 23.0333, Lng: 70.2167}
	resp := e.AssessThreat(AssessRequest{CurrentData: stormReading(), Location: loc})

	require.NotNil(t, resp.CoastalRiskFactor)
	assert.Equal(t, 1.5, *resp.CoastalRiskFactor)
	assert.InDelta(t, 147.0, resp.ThreatScore, 1e-9)
	// The multiplier scales the score only; severity keeps its class.
	assert.Equal(t, domain.SeverityCritical, resp.Severity)
	assert.Equal(t, loc, resp.Location)
}

func TestAssessThreatZeroLatitudeSkipsFactor(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AssessThreat(AssessRequest{
		CurrentData: stormReading(),
		Location:    &domain.Geo{Lat: 0, Lng: 70.2167},
	})

	assert.Nil(t, resp.CoastalRiskFactor)
	assert.Equal(t, 98.0, resp.ThreatScore)
}

func TestAssessThreatReportsDataQuality(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AssessThreat(AssessRequest{CurrentData: stormReading()})

	assert.Equal(t, 50.0, resp.DataQuality.Completeness)
	assert.Equal(t, "low", resp.DataQuality.Reliability)
	assert.Contains(t, resp.DataQuality.MissingParameters, "temperature")
}

func TestAssessThreatNilReading(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AssessThreat(AssessRequest{})

	assert.Equal(t, 0.0, resp.ThreatScore)
	assert.Equal(t, domain.SeverityLow, resp.Severity)
	assert.Equal(t, 0.0, resp.DataQuality.Completeness)
}

func TestAnalyzeReport(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AnalyzeReport(ReportRequest{
		ReportID:    "rpt-001",
		Type:        "flooding",
		Severity:    domain.SeverityCritical,
		Description: "Emergency! Catastrophic flooding, 5 meters of water, occurred this morning near the coast",
		Attachments: []Attachment{
			{Filename: "wave.jpg", Mimetype: "image/jpeg"},
			{Filename: "street.png", Mimetype: "image/png"},
		},
	})

	assert.Equal(t, domain.SeverityCritical, resp.SeverityPrediction)
	assert.Equal(t, 90.0, resp.Credibility)
	// 90 credibility + 20 evidence + 20 consistency, capped at 95.
	assert.Equal(t, 95.0, resp.Confidence)
	assert.Equal(t, 40.0, resp.EvidenceScore)
	assert.Contains(t, resp.Tags, "water")
	assert.Contains(t, resp.Tags, "weather")
	assert.Contains(t, resp.Tags, "photo_evidence")
	assert.True(t, resp.TextQuality)
	assert.Equal(t, domain.ReportAnalyzerVersion, resp.ModelVersion)
	assert.Equal(t, fixedTime, resp.ProcessedAt)

	require.Len(t, resp.ImageAnalysis, 2)
	for _, img := range resp.ImageAnalysis {
		assert.True(t, img.DisasterRelated)
		assert.GreaterOrEqual(t, img.Confidence, 0.6)
		assert.Less(t, img.Confidence, 0.9)
	}
}

func TestAnalyzeReportNonImageAttachments(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AnalyzeReport(ReportRequest{
		Severity:    domain.SeverityLow,
		Description: "minor debris on the shore road",
		Attachments: []Attachment{{Filename: "notes.pdf", Mimetype: "application/pdf"}},
	})

	// Any attachment counts as evidence, but only images are analyzed.
	assert.Empty(t, resp.ImageAnalysis)
	assert.Equal(t, 20.0, resp.EvidenceScore)
	assert.NotContains(t, resp.Tags, "photo_evidence")
}

func TestAnalyzeReportSeverityMismatchLowersConfidence(t *testing.T) {
	e := newTestEngine(t)

	matched := e.AnalyzeReport(ReportRequest{
		Severity:    domain.SeverityCritical,
		Description: "emergency at the beach",
	})
	mismatched := e.AnalyzeReport(ReportRequest{
		Severity:    domain.SeverityLow,
		Description: "emergency at the beach",
	})

	assert.Equal(t, domain.SeverityCritical, matched.SeverityPrediction)
	assert.Equal(t, matched.Confidence-30, mismatched.Confidence)
}

func TestGenerateAlert(t *testing.T) {
	e := newTestEngine(t)

	alert := e.GenerateAlert(AlertRequest{
		EnvironmentalData: stormReading(),
		Location:          domain.Geo{Lat: 22.3, Lng: 70.8},
		ThreatType:        "cyclone",
	})

	assert.True(t, alert.ShouldGenerate)
	assert.Equal(t, "cyclone", alert.Type)
	assert.Equal(t, domain.SeverityCritical, alert.Severity)
	assert.Equal(t, "Critical Cyclonic Storm", alert.Title)
	assert.True(t, alert.AIPrediction)
}

func TestGenerateAlertBelowGate(t *testing.T) {
	e := newTestEngine(t)

	alert := e.GenerateAlert(AlertRequest{
		EnvironmentalData: &domain.Reading{WindSpeed: measurement(10)},
		ThreatType:        "storm_surge",
	})

	assert.False(t, alert.ShouldGenerate)
	assert.Equal(t, "Threat level too low", alert.Reason)
	assert.Empty(t, alert.Title)
}

func TestEvacuationRoutes(t *testing.T) {
	e := newTestEngine(t)

	resp := e.EvacuationRoutes(RouteRequest{Lat: 22.3, Lng: 70.8, ThreatLevel: domain.SeverityHigh})

	require.Len(t, resp.Routes, 2)
	assert.Equal(t, "route_alpha", resp.RecommendedRoute)
	assert.Equal(t, resp.Routes[0].ID, resp.RecommendedRoute)
	assert.Equal(t, fixedTime, resp.GeneratedAt)
}

func TestRealtimeAnalysis(t *testing.T) {
	e := newTestEngine(t)

	resp := e.RealtimeAnalysis(RealtimeRequest{
		SensorData: &domain.Reading{
			WindSpeed: measurement(101),
			Pressure:  measurement(970),
		},
	})

	assert.Equal(t, domain.SeverityCritical, resp.CurrentThreatLevel.Severity)

	require.Len(t, resp.Anomalies, 2)
	assert.Equal(t, "wind_speed", resp.Anomalies[0].Parameter)
	assert.Equal(t, "pressure", resp.Anomalies[1].Parameter)

	// No history: the conservative storm-approach snapshot.
	assert.Equal(t, "deteriorating", resp.TrendAnalysis.OverallTrend)
	assert.Equal(t, 0.85, resp.TrendAnalysis.ForecastReliability)

	assert.Equal(t, fixedTime.Add(5*time.Minute), resp.NextUpdate)
}

func TestModelAvailable(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.ModelAvailable())
}
