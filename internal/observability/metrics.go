package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// threat assessment service.
type Metrics struct {
	AssessmentsTotal    *prometheus.CounterVec // labels: model_version
	AssessmentDuration  prometheus.Histogram
	FallbackAssessments prometheus.Counter
	ReportsAnalyzed     prometheus.Counter
	AlertsGenerated     prometheus.Counter
	AlertsSuppressed    prometheus.Counter
	RoutesGenerated     prometheus.Counter

	// Monitor loop metrics.
	ReadingsConsumed prometheus.Counter
	AlertsPublished  prometheus.Counter
	MonitorErrors    prometheus.Counter
	MonitorRunning   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "assessments_total",
			Help:      "Total threat assessments by model version.",
		}, []string{"model_version"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coastal_threat",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete threat assessment.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		FallbackAssessments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "fallback_assessments_total",
			Help:      "Total assessments served by the rule-based fallback.",
		}),
		ReportsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "reports_analyzed_total",
			Help:      "Total hazard reports analyzed.",
		}),
		AlertsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "alerts_generated_total",
			Help:      "Total alerts that passed the threat gate.",
		}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "alerts_suppressed_total",
			Help:      "Total alert requests below the threat gate.",
		}),
		RoutesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "routes_generated_total",
			Help:      "Total evacuation route sets generated.",
		}),
		ReadingsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "readings_consumed_total",
			Help:      "Total sensor readings read from the source topic.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "alerts_published_total",
			Help:      "Total alerts written to the alerts topic.",
		}),
		MonitorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_threat",
			Name:      "monitor_errors_total",
			Help:      "Total monitor cycle failures.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coastal_threat",
			Name:      "monitor_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.FallbackAssessments,
		m.ReportsAnalyzed,
		m.AlertsGenerated,
		m.AlertsSuppressed,
		m.RoutesGenerated,
		m.ReadingsConsumed,
		m.AlertsPublished,
		m.MonitorErrors,
		m.MonitorRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AssessmentsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "assessments_total"}, []string{"model_version"}),
		AssessmentDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "coastal_threat", Name: "assessment_duration_seconds"}),
		FallbackAssessments: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "fallback_assessments_total"}),
		ReportsAnalyzed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "reports_analyzed_total"}),
		AlertsGenerated:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "alerts_generated_total"}),
		AlertsSuppressed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "alerts_suppressed_total"}),
		RoutesGenerated:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "routes_generated_total"}),
		ReadingsConsumed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "readings_consumed_total"}),
		AlertsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "alerts_published_total"}),
		MonitorErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coastal_threat", Name: "monitor_errors_total"}),
		MonitorRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "coastal_threat", Name: "monitor_running"}),
	}
}
