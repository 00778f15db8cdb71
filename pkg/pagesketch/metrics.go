package pagesketch

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics collects run statistics and exposes them through expvar, so
// they show up at /debug/vars when an HTTP server is running.
//
// Safe for concurrent use.
type Metrics struct {
	runs          atomic.Int64
	frames        atomic.Int64
	itemsPlaced   atomic.Int64
	reloads       atomic.Int64
	exports       atomic.Int64
	errorsTotal   atomic.Int64
	scriptErrors  atomic.Int64
	eventsEmitted atomic.Int64

	runLatencyNs      atomic.Int64
	runLatencyCount   atomic.Int64
	frameLatencyNs    atomic.Int64
	frameLatencyCount atomic.Int64
	exportLatencyNs   atomic.Int64
	exportCount       atomic.Int64
	lastRunNs         atomic.Int64

	running atomic.Int32

	registered atomic.Bool
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under pagesketch_* names.
// Safe to call multiple times; subsequent calls are no-ops.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	counter := func(v *atomic.Int64) expvar.Func {
		return func() any { return v.Load() }
	}
	expvar.Publish("pagesketch_runs_total", counter(&m.runs))
	expvar.Publish("pagesketch_frames_total", counter(&m.frames))
	expvar.Publish("pagesketch_items_placed_total", counter(&m.itemsPlaced))
	expvar.Publish("pagesketch_reloads_total", counter(&m.reloads))
	expvar.Publish("pagesketch_exports_total", counter(&m.exports))
	expvar.Publish("pagesketch_errors_total", counter(&m.errorsTotal))
	expvar.Publish("pagesketch_script_errors_total", counter(&m.scriptErrors))
	expvar.Publish("pagesketch_events_emitted_total", counter(&m.eventsEmitted))

	expvar.Publish("pagesketch_running", expvar.Func(func() any { return m.running.Load() }))
	expvar.Publish("pagesketch_last_run_ms", expvar.Func(func() any {
		return float64(m.lastRunNs.Load()) / 1e6
	}))
	expvar.Publish("pagesketch_run_latency_avg_ms", expvar.Func(func() any {
		return averageMillis(m.runLatencyNs.Load(), m.runLatencyCount.Load())
	}))
	expvar.Publish("pagesketch_frame_latency_avg_ms", expvar.Func(func() any {
		return averageMillis(m.frameLatencyNs.Load(), m.frameLatencyCount.Load())
	}))
	expvar.Publish("pagesketch_export_latency_avg_ms", expvar.Func(func() any {
		return averageMillis(m.exportLatencyNs.Load(), m.exportCount.Load())
	}))
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Runs:          m.runs.Load(),
		Frames:        m.frames.Load(),
		ItemsPlaced:   m.itemsPlaced.Load(),
		Reloads:       m.reloads.Load(),
		Exports:       m.exports.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		ScriptErrors:  m.scriptErrors.Load(),
		EventsEmitted: m.eventsEmitted.Load(),

		Running: m.running.Load() > 0,

		LastRun:          time.Duration(m.lastRunNs.Load()),
		RunLatencyAvg:    safeDivide(m.runLatencyNs.Load(), m.runLatencyCount.Load()),
		FrameLatencyAvg:  safeDivide(m.frameLatencyNs.Load(), m.frameLatencyCount.Load()),
		ExportLatencyAvg: safeDivide(m.exportLatencyNs.Load(), m.exportCount.Load()),
	}
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Runs          int64
	Frames        int64
	ItemsPlaced   int64
	Reloads       int64
	Exports       int64
	ErrorsTotal   int64
	ScriptErrors  int64
	EventsEmitted int64

	Running bool

	LastRun          time.Duration
	RunLatencyAvg    time.Duration
	FrameLatencyAvg  time.Duration
	ExportLatencyAvg time.Duration
}

// RecordRun records a finished run, its duration and the number of items
// in the resulting document.
func (m *Metrics) RecordRun(d time.Duration, items int) {
	m.runs.Add(1)
	m.itemsPlaced.Add(int64(items))
	m.runLatencyNs.Add(d.Nanoseconds())
	m.runLatencyCount.Add(1)
	m.lastRunNs.Store(d.Nanoseconds())
}

// RecordFrame records one setup() or draw() call.
func (m *Metrics) RecordFrame(d time.Duration) {
	m.frames.Add(1)
	m.frameLatencyNs.Add(d.Nanoseconds())
	m.frameLatencyCount.Add(1)
}

// RecordExport records a written document.
func (m *Metrics) RecordExport(d time.Duration) {
	m.exports.Add(1)
	m.exportLatencyNs.Add(d.Nanoseconds())
	m.exportCount.Add(1)
}

// IncrementReloads records a run started by a reload.
func (m *Metrics) IncrementReloads() {
	m.reloads.Add(1)
}

// IncrementErrors records an error occurrence.
func (m *Metrics) IncrementErrors() {
	m.errorsTotal.Add(1)
}

// IncrementScriptErrors records a run that ended with a script error.
func (m *Metrics) IncrementScriptErrors() {
	m.scriptErrors.Add(1)
}

// IncrementEventsEmitted records an event emission.
func (m *Metrics) IncrementEventsEmitted() {
	m.eventsEmitted.Add(1)
}

// SetRunning updates the running gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Store(1)
	} else {
		m.running.Store(0)
	}
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	for _, v := range []*atomic.Int64{
		&m.runs, &m.frames, &m.itemsPlaced, &m.reloads, &m.exports,
		&m.errorsTotal, &m.scriptErrors, &m.eventsEmitted,
		&m.runLatencyNs, &m.runLatencyCount, &m.frameLatencyNs,
		&m.frameLatencyCount, &m.exportLatencyNs, &m.exportCount, &m.lastRunNs,
	} {
		v.Store(0)
	}
	m.running.Store(0)
}

func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

func averageMillis(totalNs, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNs) / float64(count) / 1e6
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the process-wide Metrics instance.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
