// Package monitor runs the continuous threat monitoring loop: consume sensor
// readings from a source, assess each one, and publish alerts for
// assessments that clear the gate. Failures back off and the loop continues;
// only context cancellation stops it.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/observability"
)

// historyWindow is how many readings per station feed trend features.
const historyWindow = 24

// ReadingEvent is one sensor reading consumed from the source, with enough
// provenance to commit it after processing.
type ReadingEvent struct {
	StationID string
	Reading   *domain.Reading
	Location  *domain.Geo

	Topic     string
	Partition int
	Offset    int64
	Commit    func(ctx context.Context) error
}

// AlertEvent is one generated alert headed for the alerts topic.
type AlertEvent struct {
	StationID string              `json:"station_id"`
	Alert     domain.AlertPayload `json:"alert"`
	Anomalies []domain.Anomaly    `json:"anomalies"`
}

// Source yields the next reading, blocking until one is available or the
// context is cancelled.
type Source interface {
	Next(ctx context.Context) (ReadingEvent, error)
}

// AlertPublisher writes a generated alert to the destination.
type AlertPublisher interface {
	Publish(ctx context.Context, event AlertEvent) error
}

// Monitor orchestrates the consume-assess-publish loop and keeps a trailing
// reading history per station for trend features.
type Monitor struct {
	source    Source
	publisher AlertPublisher
	scorer    *domain.Scorer
	logger    *slog.Logger
	metrics   *observability.Metrics

	interval   time.Duration
	maxBackoff time.Duration
	ready      atomic.Bool

	history map[string][]domain.Reading
}

// New creates a Monitor. interval paces successful cycles (0 means
// consume as fast as the source delivers); maxBackoff caps the error backoff.
func New(source Source, publisher AlertPublisher, scorer *domain.Scorer, logger *slog.Logger, metrics *observability.Metrics, interval, maxBackoff time.Duration) *Monitor {
	return &Monitor{
		source:     source,
		publisher:  publisher,
		scorer:     scorer,
		logger:     logger,
		metrics:    metrics,
		interval:   interval,
		maxBackoff: maxBackoff,
		history:    make(map[string][]domain.Reading),
	}
}

// CheckReadiness returns nil once the monitor has processed at least one
// reading, or an error describing why the service is not yet ready.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not processed any readings yet")
	}
	return nil
}

// Run executes the monitoring loop until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "interval", m.interval)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at
	// maxBackoff. Keeps retry storms short without tight-looping during
	// broker outages.
	backoff := 200 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !m.processOne(ctx, &backoff) {
			return nil
		}

		if !sleepWithContext(ctx, m.interval) {
			return nil
		}
	}
}

// processOne runs one consume-assess-publish cycle. Returns false if the
// monitor should stop.
func (m *Monitor) processOne(ctx context.Context, backoff *time.Duration) bool {
	ev, err := m.source.Next(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.logger.Error("read failed", "error", err)
		m.metrics.MonitorErrors.Inc()
		return m.backoffOrStop(ctx, backoff)
	}

	m.metrics.ReadingsConsumed.Inc()
	*backoff = 200 * time.Millisecond

	history := m.recordHistory(ev)
	assessment := m.scorer.Score(ev.Reading, history)
	anomalies := domain.DetectAnomalies(ev.Reading)

	for _, a := range anomalies {
		m.logger.Warn("anomaly detected",
			"station", ev.StationID,
			"parameter", a.Parameter,
			"value", a.Value,
			"severity", a.Severity,
		)
	}

	alert := domain.BuildAlert(assessment, ev.Reading, threatTypeFor(ev.Reading))
	if alert.ShouldGenerate {
		event := AlertEvent{StationID: ev.StationID, Alert: alert, Anomalies: anomalies}
		if err := m.publisher.Publish(ctx, event); err != nil {
			// Leave the reading uncommitted so it is redelivered.
			m.logger.Error("publish alert failed", "error", err, "station", ev.StationID)
			m.metrics.MonitorErrors.Inc()
			return m.backoffOrStop(ctx, backoff)
		}
		m.metrics.AlertsPublished.Inc()
		m.logger.Info("alert published",
			"station", ev.StationID,
			"type", alert.Type,
			"severity", alert.Severity,
			"threat_score", assessment.ThreatScore,
		)
	} else {
		m.logger.Debug("assessment below alert gate",
			"station", ev.StationID,
			"threat_score", assessment.ThreatScore,
		)
	}

	m.commit(ctx, ev)
	m.ready.Store(true)
	return true
}

// recordHistory returns the station's prior readings and appends the new one,
// keeping a trailing window.
func (m *Monitor) recordHistory(ev ReadingEvent) []domain.Reading {
	prior := m.history[ev.StationID]
	if ev.Reading == nil {
		return prior
	}

	updated := append(prior, *ev.Reading)
	if len(updated) > historyWindow {
		updated = updated[len(updated)-historyWindow:]
	}
	m.history[ev.StationID] = updated
	return prior
}

// threatTypeFor picks the alert type from the dominant hazard signal.
func threatTypeFor(r *domain.Reading) string {
	if r == nil {
		return "storm_surge"
	}
	if r.WindSpeed.ValueOr(domain.DefaultWindSpeed) > 60 {
		return "cyclone"
	}
	if r.WaveHeight.ValueOr(domain.DefaultWaveHeight) > 3 {
		return "storm_surge"
	}
	return "flood"
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the monitor should stop.
func (m *Monitor) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, m.maxBackoff)
	return true
}

// commit commits the reading offset if a commit function is available.
func (m *Monitor) commit(ctx context.Context, ev ReadingEvent) {
	if ev.Commit == nil {
		return
	}
	if err := ev.Commit(ctx); err != nil {
		m.logger.Warn("commit offset failed", "error", err,
			"topic", ev.Topic, "partition", ev.Partition, "offset", ev.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
