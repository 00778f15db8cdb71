package pagesketch

import (
	"expvar"
	"testing"
	"time"
)

func TestMetricsRecording(t *testing.T) {
	m := NewMetrics()
	m.RecordRun(20*time.Millisecond, 5)
	m.RecordRun(40*time.Millisecond, 7)
	m.RecordFrame(2 * time.Millisecond)
	m.RecordFrame(4 * time.Millisecond)
	m.RecordExport(10 * time.Millisecond)
	m.IncrementReloads()
	m.IncrementErrors()
	m.IncrementScriptErrors()
	m.IncrementEventsEmitted()
	m.SetRunning(true)

	s := m.Snapshot()
	if s.Runs != 2 || s.ItemsPlaced != 12 || s.Frames != 2 || s.Exports != 1 {
		t.Errorf("counters = %+v", s)
	}
	if s.Reloads != 1 || s.ErrorsTotal != 1 || s.ScriptErrors != 1 || s.EventsEmitted != 1 {
		t.Errorf("counters = %+v", s)
	}
	if !s.Running {
		t.Error("Running = false after SetRunning(true)")
	}
	if s.LastRun != 40*time.Millisecond || s.RunLatencyAvg != 30*time.Millisecond {
		t.Errorf("run latency = %v last, %v avg", s.LastRun, s.RunLatencyAvg)
	}
	if s.FrameLatencyAvg != 3*time.Millisecond || s.ExportLatencyAvg != 10*time.Millisecond {
		t.Errorf("latency = %v frame, %v export", s.FrameLatencyAvg, s.ExportLatencyAvg)
	}

	m.SetRunning(false)
	if m.Snapshot().Running {
		t.Error("Running = true after SetRunning(false)")
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordRun(time.Second, 3)
	m.RecordFrame(time.Millisecond)
	m.SetRunning(true)
	m.Reset()

	if s := m.Snapshot(); s != (MetricsSnapshot{}) {
		t.Errorf("Snapshot() after Reset = %+v", s)
	}
}

func TestMetricsRegisterExpvar(t *testing.T) {
	m := NewMetrics()
	m.RegisterExpvar()
	// A second call must not panic on duplicate names.
	m.RegisterExpvar()

	m.RecordRun(time.Millisecond, 4)
	v := expvar.Get("pagesketch_items_placed_total")
	if v == nil {
		t.Fatal("pagesketch_items_placed_total not published")
	}
	if got := v.String(); got != "4" {
		t.Errorf("pagesketch_items_placed_total = %s, want 4", got)
	}
	if expvar.Get("pagesketch_run_latency_avg_ms") == nil {
		t.Error("latency not published")
	}
}

func TestAverageMillis(t *testing.T) {
	if got := averageMillis(0, 0); got != 0 {
		t.Errorf("averageMillis(0, 0) = %g", got)
	}
	if got := averageMillis(int64(3*time.Millisecond), 2); got != 1.5 {
		t.Errorf("averageMillis = %g, want 1.5", got)
	}
}

func TestDefaultMetrics(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics should return the same instance")
	}
}
