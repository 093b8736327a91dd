package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed atomic.Uint64
	cartAdds        atomic.Uint64
	linesRemoved    atomic.Uint64
	missedUpdates   atomic.Uint64
	errorsTotal     atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeSessions  atomic.Int64
	liveSubscribers atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEvent records an event processing with latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordCartAdd records one unit added to a cart.
func (m *Metrics) RecordCartAdd() {
	m.cartAdds.Add(1)
}

// RecordLineRemoved records a cart line leaving a cart.
func (m *Metrics) RecordLineRemoved() {
	m.linesRemoved.Add(1)
}

// RecordMissedUpdate records an update or removal aimed at an unknown line id.
func (m *Metrics) RecordMissedUpdate() {
	m.missedUpdates.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetActiveSessions sets the number of live storefront sessions.
func (m *Metrics) SetActiveSessions(count int) {
	m.activeSessions.Store(int64(count))
}

// IncrementSubscribers increments live feed subscribers by 1.
func (m *Metrics) IncrementSubscribers() {
	m.liveSubscribers.Add(1)
}

// DecrementSubscribers decrements live feed subscribers by 1.
func (m *Metrics) DecrementSubscribers() {
	m.liveSubscribers.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed uint64    `json:"events_processed"`
	CartAdds        uint64    `json:"cart_adds"`
	LinesRemoved    uint64    `json:"lines_removed"`
	MissedUpdates   uint64    `json:"missed_updates"`
	ErrorsTotal     uint64    `json:"errors_total"`
	AvgLatencyNs    int64     `json:"avg_latency_ns"`
	ActiveSessions  int64     `json:"active_sessions"`
	LiveSubscribers int32     `json:"live_subscribers"`
	Timestamp       time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsProcessed: m.eventsProcessed.Load(),
		CartAdds:        m.cartAdds.Load(),
		LinesRemoved:    m.linesRemoved.Load(),
		MissedUpdates:   m.missedUpdates.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		AvgLatencyNs:    avgLatency,
		ActiveSessions:  m.activeSessions.Load(),
		LiveSubscribers: m.liveSubscribers.Load(),
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.cartAdds.Store(0)
	m.linesRemoved.Store(0)
	m.missedUpdates.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeSessions.Store(0)
	m.liveSubscribers.Store(0)
}
