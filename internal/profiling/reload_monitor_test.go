package profiling

import (
	"strings"
	"testing"
)

// fakeReads returns snapshots with the given heap sizes in order.
func fakeReads(heaps []uint64, goroutines []int) func() MemorySnapshot {
	i := 0
	return func() MemorySnapshot {
		s := MemorySnapshot{HeapAlloc: heaps[i], GoroutineCount: 10}
		if goroutines != nil {
			s.GoroutineCount = goroutines[i]
		}
		i++
		return s
	}
}

func TestReloadMonitorDetectsSteadyGrowth(t *testing.T) {
	m := NewReloadMonitor(ReloadMonitorConfig{Window: 4, BytesPerRun: MB})
	m.read = fakeReads([]uint64{10 * MB, 12 * MB, 14 * MB, 16 * MB}, nil)

	for i := 0; i < 3; i++ {
		if g := m.RecordRun(); g != nil {
			t.Fatalf("RecordRun() #%d = %v, want nil before the window fills", i+1, g)
		}
	}
	g := m.RecordRun()
	if g == nil {
		t.Fatal("RecordRun() = nil with a full window")
	}
	if !g.PotentialLeak {
		t.Errorf("expected potential leak, got %s", g)
	}
	if g.Runs != 3 || g.HeapAllocDelta != 6*MB {
		t.Errorf("growth = %+v", *g)
	}
	if !strings.Contains(g.String(), "potential leak: heap grew by 2.00 MB per reload") {
		t.Errorf("String() = %q", g.String())
	}
}

func TestReloadMonitorIgnoresNoise(t *testing.T) {
	m := NewReloadMonitor(ReloadMonitorConfig{Window: 4, BytesPerRun: MB})
	m.read = fakeReads([]uint64{10 * MB, 18 * MB, 11 * MB, 16 * MB, 15 * MB}, nil)

	var g *MemoryGrowth
	for i := 0; i < 5; i++ {
		g = m.RecordRun()
	}
	if g == nil || g.PotentialLeak {
		t.Errorf("unexpected leak report: %v", g)
	}
	if n := len(m.Snapshots()); n != 4 {
		t.Errorf("Snapshots() has %d entries, want 4", n)
	}
	if !strings.Contains(g.String(), "no leak detected") {
		t.Errorf("String() = %q", g.String())
	}
}

func TestReloadMonitorGoroutines(t *testing.T) {
	m := NewReloadMonitor(ReloadMonitorConfig{Window: 2, GoroutineThreshold: 2})
	m.read = fakeReads([]uint64{MB, MB}, []int{5, 9})

	m.RecordRun()
	g := m.RecordRun()
	if g == nil || !g.PotentialLeak || !strings.Contains(g.LeakReason, "goroutine") {
		t.Errorf("expected goroutine leak, got %v", g)
	}

	m.Reset()
	if n := len(m.Snapshots()); n != 0 {
		t.Errorf("Snapshots() after Reset has %d entries", n)
	}
}

func TestNewReloadMonitorDefaults(t *testing.T) {
	m := NewReloadMonitor(ReloadMonitorConfig{})
	if m.config != DefaultReloadMonitorConfig() {
		t.Errorf("config = %+v, want defaults", m.config)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2 * KB, "2.00 KB"},
		{3 * MB / 2, "1.50 MB"},
		{5 * GB, "5.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
