package monitor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/monitor"
	"github.com/couchcryptid/coastal-threat-service/internal/observability"
)

// --- mocks ---

type mockSource struct {
	events []monitor.ReadingEvent
	errs   []error
	index  atomic.Int64
}

func (m *mockSource) Next(ctx context.Context) (monitor.ReadingEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i < len(m.errs) && m.errs[i] != nil {
		return monitor.ReadingEvent{}, m.errs[i]
	}
	if i >= len(m.events) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return monitor.ReadingEvent{}, ctx.Err()
	}
	return m.events[i], nil
}

type mockPublisher struct {
	published []monitor.AlertEvent
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, event monitor.AlertEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

// --- helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func measurement(v float64) *domain.Measurement {
	return &domain.Measurement{Value: &v}
}

func stormEvent(station string) monitor.ReadingEvent {
	return monitor.ReadingEvent{
		StationID: station,
		Reading: &domain.Reading{
			WindSpeed:  measurement(85),
			Pressure:   measurement(985),
			WaveHeight: measurement(4.5),
			SeaLevel:   measurement(2.5),
		},
	}
}

func calmEvent(station string) monitor.ReadingEvent {
	return monitor.ReadingEvent{
		StationID: station,
		Reading:   &domain.Reading{WindSpeed: measurement(10)},
	}
}

func newMonitor(src monitor.Source, pub monitor.AlertPublisher) *monitor.Monitor {
	scorer := domain.NewScorer(nil, testLogger())
	return monitor.New(src, pub, scorer, testLogger(), observability.NewMetricsForTesting(), 0, time.Second)
}

// --- tests ---

func TestMonitor_Run_PublishesAlertAboveGate(t *testing.T) {
	src := &mockSource{events: []monitor.ReadingEvent{stormEvent("st-1")}}
	pub := &mockPublisher{}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	event := pub.published[0]
	assert.Equal(t, "st-1", event.StationID)
	assert.True(t, event.Alert.ShouldGenerate)
	assert.Equal(t, "cyclone", event.Alert.Type)
	assert.Equal(t, domain.SeverityCritical, event.Alert.Severity)
	assert.NoError(t, m.CheckReadiness(ctx))
}

func TestMonitor_Run_SuppressesBelowGate(t *testing.T) {
	src := &mockSource{events: []monitor.ReadingEvent{calmEvent("st-1")}}
	pub := &mockPublisher{}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub.published)
	// Suppressed readings still count as processed.
	assert.NoError(t, m.CheckReadiness(ctx))
}

func TestMonitor_Run_ContextCancellation(t *testing.T) {
	src := &mockSource{} // no events, will block
	pub := &mockPublisher{}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub.published)
	assert.Error(t, m.CheckReadiness(context.Background()))
}

func TestMonitor_Run_SourceErrorBacksOffAndContinues(t *testing.T) {
	src := &mockSource{
		errs:   []error{errors.New("broker unavailable")},
		events: []monitor.ReadingEvent{{}, stormEvent("st-2")},
	}
	pub := &mockPublisher{}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "st-2", pub.published[0].StationID)
}

func TestMonitor_Run_CommitsAfterPublish(t *testing.T) {
	var committed atomic.Bool
	ev := stormEvent("st-1")
	ev.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	src := &mockSource{events: []monitor.ReadingEvent{ev}}
	pub := &mockPublisher{}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)
	assert.True(t, committed.Load())
}

func TestMonitor_Run_PublishErrorLeavesUncommitted(t *testing.T) {
	var committed atomic.Bool
	ev := stormEvent("st-1")
	ev.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	src := &mockSource{events: []monitor.ReadingEvent{ev}}
	pub := &mockPublisher{err: errors.New("write failed")}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)
	assert.False(t, committed.Load())
	assert.Error(t, m.CheckReadiness(ctx))
}

func TestMonitor_Run_AnomaliesAttachedToAlert(t *testing.T) {
	ev := monitor.ReadingEvent{
		StationID: "st-9",
		Reading: &domain.Reading{
			WindSpeed: measurement(110),
			Pressure:  measurement(970),
		},
	}

	src := &mockSource{events: []monitor.ReadingEvent{ev}}
	pub := &mockPublisher{}
	m := newMonitor(src, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	anomalies := pub.published[0].Anomalies
	require.Len(t, anomalies, 2)
	assert.Equal(t, "wind_speed", anomalies[0].Parameter)
	assert.Equal(t, "pressure", anomalies[1].Parameter)
}
