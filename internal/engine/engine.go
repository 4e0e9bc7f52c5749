// Package engine orchestrates the domain primitives into the operations the
// API and monitor expose: threat assessment, report analysis, alert and
// route generation, and realtime analysis. All operations are degrade-only:
// incomplete or malformed input yields defaulted results, never an error.
package engine

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/observability"
)

// nextUpdateInterval is how far ahead realtime analysis schedules its
// follow-up.
const nextUpdateInterval = 5 * time.Minute

var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock swaps the package clock. Test use only.
func SetClock(c clockwork.Clock) {
	clock = c
}

// Engine wires the scorer, route synthesizer, metrics, and logging into the
// request-facing operations. Safe for concurrent use.
type Engine struct {
	scorer  *domain.Scorer
	routes  *domain.RouteSynthesizer
	metrics *observability.Metrics
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Engine. A nil rng seeds image-evidence confidence from the
// wall clock; inject a seeded one for reproducible output.
func New(scorer *domain.Scorer, routes *domain.RouteSynthesizer, metrics *observability.Metrics, logger *slog.Logger, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &Engine{
		scorer:  scorer,
		routes:  routes,
		metrics: metrics,
		logger:  logger,
		rng:     rng,
	}
}

// ModelAvailable reports whether the statistical model is loaded.
func (e *Engine) ModelAvailable() bool {
	return e.scorer.ModelAvailable()
}

// AssessRequest is the body of a threat assessment call.
type AssessRequest struct {
	CurrentData    *domain.Reading  `json:"current_data"`
	HistoricalData []domain.Reading `json:"historical_data"`
	Location       *domain.Geo      `json:"location"`
}

// AssessResponse is an Assessment enriched with location context and data
// quality. CoastalRiskFactor is present only when a location was supplied.
type AssessResponse struct {
	domain.Assessment
	CoastalRiskFactor *float64           `json:"coastal_risk_factor,omitempty"`
	Location          *domain.Geo        `json:"location,omitempty"`
	DataQuality       domain.DataQuality `json:"data_quality"`
}

// AssessThreat scores the reading, applies the coastal proximity multiplier
// when a location with a latitude is supplied, and attaches a data quality
// assessment. The multiplier scales the score only; severity stays as the
// model classified it. A panicking model degrades to a safe medium-severity
// assessment instead of failing the request.
func (e *Engine) AssessThreat(req AssessRequest) (resp AssessResponse) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("threat assessment panicked, returning degraded result", "panic", r)
			resp = AssessResponse{Assessment: domain.DegradedAssessment()}
		}
	}()

	start := clock.Now()

	assessment := e.scorer.Score(req.CurrentData, req.HistoricalData)

	resp = AssessResponse{
		Assessment:  assessment,
		Location:    req.Location,
		DataQuality: domain.AssessDataQuality(req.CurrentData),
	}

	if req.Location != nil && req.Location.Lat != 0 {
		factor := domain.CoastalProximityFactor(req.Location.Lat, req.Location.Lng)
		resp.ThreatScore *= factor
		resp.CoastalRiskFactor = &factor
	}

	e.metrics.AssessmentsTotal.WithLabelValues(assessment.ModelVersion).Inc()
	if assessment.ModelVersion == domain.ModelVersionFallback {
		e.metrics.FallbackAssessments.Inc()
	}
	e.metrics.AssessmentDuration.Observe(clock.Since(start).Seconds())

	e.logger.Info("threat assessment generated",
		"severity", resp.Severity,
		"threat_score", resp.ThreatScore,
		"confidence", resp.Confidence,
		"model_version", resp.ModelVersion,
	)

	return resp
}

// Attachment is a file reference carried on a hazard report.
type Attachment struct {
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
}

// ReportRequest is the body of a report analysis call.
type ReportRequest struct {
	ReportID    string          `json:"report_id"`
	Type        string          `json:"type"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
	Attachments []Attachment    `json:"attachments"`
}

// ImageAnalysis is the per-attachment evidence record. Image content is not
// fetched; classification is a placeholder until a classifier service is
// wired in.
type ImageAnalysis struct {
	Filename        string  `json:"filename"`
	DisasterRelated bool    `json:"disaster_related"`
	Confidence      float64 `json:"confidence"`
}

// ReportResponse is the full analysis of one hazard report.
type ReportResponse struct {
	SeverityPrediction domain.Severity `json:"severity_prediction"`
	Confidence         float64         `json:"confidence"`
	Credibility        float64         `json:"credibility"`
	Tags               []string        `json:"tags"`
	TextQuality        bool            `json:"text_quality"`
	EvidenceScore      float64         `json:"evidence_score"`
	ImageAnalysis      []ImageAnalysis `json:"image_analysis"`
	ProcessedAt        time.Time       `json:"processed_at"`
	ModelVersion       string          `json:"model_version"`
}

// AnalyzeReport runs the text analyzer over the description, credits
// attachments as evidence, and checks the reporter's claimed severity against
// the predicted one. Overall confidence is credibility plus 10 per attachment
// plus the consistency bonus, capped at 95.
func (e *Engine) AnalyzeReport(req ReportRequest) ReportResponse {
	text := domain.AnalyzeText(req.Description)

	images := []ImageAnalysis{}
	for _, att := range req.Attachments {
		if strings.HasPrefix(att.Mimetype, "image/") {
			images = append(images, ImageAnalysis{
				Filename:        att.Filename,
				DisasterRelated: true,
				Confidence:      e.imageConfidence(),
			})
		}
	}

	evidenceBonus := float64(len(req.Attachments)) * 10
	consistency := domain.SeverityConsistencyBonus(req.Severity, text.PredictedSeverity)

	confidence := text.Credibility + evidenceBonus + consistency
	if confidence > 95 {
		confidence = 95
	}

	tags := text.Tags
	if len(images) > 0 {
		tags = append(tags, "photo_evidence")
	}

	e.metrics.ReportsAnalyzed.Inc()
	e.logger.Info("report analyzed",
		"report_id", req.ReportID,
		"severity_prediction", text.PredictedSeverity,
		"confidence", confidence,
	)

	return ReportResponse{
		SeverityPrediction: text.PredictedSeverity,
		Confidence:         confidence,
		Credibility:        text.Credibility,
		Tags:               tags,
		TextQuality:        text.TextQuality,
		EvidenceScore:      float64(len(req.Attachments)) * 20,
		ImageAnalysis:      images,
		ProcessedAt:        clock.Now().UTC(),
		ModelVersion:       domain.ReportAnalyzerVersion,
	}
}

// AlertRequest is the body of an alert generation call.
type AlertRequest struct {
	EnvironmentalData *domain.Reading `json:"environmental_data"`
	Location          domain.Geo      `json:"location"`
	ThreatType        string          `json:"threat_type"`
}

// GenerateAlert assesses the reading and synthesizes an alert payload from
// it. Assessments below the gate come back with should_generate false.
func (e *Engine) GenerateAlert(req AlertRequest) domain.AlertPayload {
	alert := domain.NewAlertSynthesizer(e.scorer).Synthesize(req.EnvironmentalData, req.Location, req.ThreatType)

	if alert.ShouldGenerate {
		e.metrics.AlertsGenerated.Inc()
		e.logger.Info("alert generated", "type", alert.Type, "severity", alert.Severity)
	} else {
		e.metrics.AlertsSuppressed.Inc()
		e.logger.Debug("alert suppressed", "reason", alert.Reason)
	}

	return alert
}

// RouteRequest is the body of an evacuation route call.
type RouteRequest struct {
	Lat         float64         `json:"lat"`
	Lng         float64         `json:"lng"`
	ThreatLevel domain.Severity `json:"threat_level"`
}

// RouteResponse lists generated routes; the first is recommended.
type RouteResponse struct {
	Routes           []domain.EvacuationRoute `json:"routes"`
	RecommendedRoute string                   `json:"recommended_route"`
	GeneratedAt      time.Time                `json:"generated_at"`
}

// EvacuationRoutes generates route options away from the given position.
func (e *Engine) EvacuationRoutes(req RouteRequest) RouteResponse {
	routes := e.routes.Routes(req.Lat, req.Lng, req.ThreatLevel)

	resp := RouteResponse{
		Routes:      routes,
		GeneratedAt: clock.Now().UTC(),
	}
	if len(routes) > 0 {
		resp.RecommendedRoute = routes[0].ID
	}

	e.metrics.RoutesGenerated.Inc()
	return resp
}

// RealtimeRequest is the body of a realtime analysis call.
type RealtimeRequest struct {
	SensorData     *domain.Reading  `json:"sensor_data"`
	HistoricalData []domain.Reading `json:"historical_data"`
	Location       *domain.Geo      `json:"location"`
}

// RealtimeResponse combines a point-in-time assessment with anomaly and
// trend context.
type RealtimeResponse struct {
	CurrentThreatLevel domain.Assessment    `json:"current_threat_level"`
	Anomalies          []domain.Anomaly     `json:"anomalies"`
	TrendAnalysis      domain.TrendAnalysis `json:"trend_analysis"`
	NextUpdate         time.Time            `json:"next_update"`
}

// RealtimeAnalysis assesses the sensor snapshot, flags out-of-range
// parameters, and classifies short-term trends.
func (e *Engine) RealtimeAnalysis(req RealtimeRequest) RealtimeResponse {
	assessment := e.scorer.Score(req.SensorData, req.HistoricalData)

	e.metrics.AssessmentsTotal.WithLabelValues(assessment.ModelVersion).Inc()

	return RealtimeResponse{
		CurrentThreatLevel: assessment,
		Anomalies:          domain.DetectAnomalies(req.SensorData),
		TrendAnalysis:      domain.AnalyzeTrends(req.SensorData, req.HistoricalData),
		NextUpdate:         clock.Now().UTC().Add(nextUpdateInterval),
	}
}

func (e *Engine) imageConfidence() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return 0.6 + e.rng.Float64()*0.3
}
