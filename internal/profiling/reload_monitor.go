package profiling

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Byte size constants for memory formatting
const (
	KB = 1024
	MB = KB * 1024
	GB = MB * 1024
)

// MemorySnapshot is the memory state after one sketch run.
type MemorySnapshot struct {
	Timestamp      time.Time
	HeapAlloc      uint64 // Bytes of allocated heap objects
	HeapObjects    uint64 // Number of allocated heap objects
	GoroutineCount int
	NumGC          uint32
}

// MemoryGrowth summarizes memory growth across recorded runs.
type MemoryGrowth struct {
	Runs             int
	HeapAllocDelta   int64 // Positive means growth
	HeapObjectsDelta int64
	GoroutineDelta   int
	PotentialLeak    bool
	LeakReason       string
}

// ReloadMonitorConfig configures a ReloadMonitor.
type ReloadMonitorConfig struct {
	// Window is the number of runs compared. A leak is only reported once
	// the window is full.
	Window int
	// BytesPerRun is the average heap growth per run, after GC, that
	// counts as a leak.
	BytesPerRun int64
	// GoroutineThreshold is the net goroutine increase over the window
	// that counts as a leak.
	GoroutineThreshold int
}

// DefaultReloadMonitorConfig returns a ReloadMonitorConfig with sensible
// defaults.
func DefaultReloadMonitorConfig() ReloadMonitorConfig {
	return ReloadMonitorConfig{
		Window:             8,
		BytesPerRun:        512 * KB,
		GoroutineThreshold: 4,
	}
}

// ReloadMonitor records memory after each run of a hot-reloaded sketch.
// Every run builds a fresh document and Lua runtime, so heap that keeps
// growing from run to run points at something holding on to old ones.
type ReloadMonitor struct {
	config    ReloadMonitorConfig
	snapshots []MemorySnapshot
	mu        sync.Mutex
	read      func() MemorySnapshot
}

// NewReloadMonitor creates a monitor. Zero config fields take defaults.
func NewReloadMonitor(config ReloadMonitorConfig) *ReloadMonitor {
	def := DefaultReloadMonitorConfig()
	if config.Window < 2 {
		config.Window = def.Window
	}
	if config.BytesPerRun <= 0 {
		config.BytesPerRun = def.BytesPerRun
	}
	if config.GoroutineThreshold <= 0 {
		config.GoroutineThreshold = def.GoroutineThreshold
	}
	return &ReloadMonitor{
		config:    config,
		snapshots: make([]MemorySnapshot, 0, config.Window),
		read:      CurrentMemoryStats,
	}
}

// RecordRun takes a snapshot after a completed run and returns the
// growth over the window once it is full.
func (m *ReloadMonitor) RecordRun() *MemoryGrowth {
	runtime.GC()
	snap := m.read()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.snapshots) == m.config.Window {
		copy(m.snapshots, m.snapshots[1:])
		m.snapshots = m.snapshots[:len(m.snapshots)-1]
	}
	m.snapshots = append(m.snapshots, snap)
	if len(m.snapshots) < m.config.Window {
		return nil
	}
	return m.analyze()
}

func (m *ReloadMonitor) analyze() *MemoryGrowth {
	first, last := m.snapshots[0], m.snapshots[len(m.snapshots)-1]
	runs := len(m.snapshots) - 1
	growth := &MemoryGrowth{
		Runs:             runs,
		HeapAllocDelta:   int64(last.HeapAlloc) - int64(first.HeapAlloc),
		HeapObjectsDelta: int64(last.HeapObjects) - int64(first.HeapObjects),
		GoroutineDelta:   last.GoroutineCount - first.GoroutineCount,
	}

	// Only steady growth counts; one large run followed by a drop does not.
	monotonic := true
	for i := 1; i < len(m.snapshots); i++ {
		if m.snapshots[i].HeapAlloc < m.snapshots[i-1].HeapAlloc {
			monotonic = false
			break
		}
	}

	perRun := growth.HeapAllocDelta / int64(runs)
	switch {
	case monotonic && perRun > m.config.BytesPerRun:
		growth.PotentialLeak = true
		growth.LeakReason = fmt.Sprintf("heap grew by %s per reload over %d reloads",
			FormatBytes(uint64(perRun)), runs)
	case growth.GoroutineDelta > m.config.GoroutineThreshold:
		growth.PotentialLeak = true
		growth.LeakReason = fmt.Sprintf("goroutine count increased by %d over %d reloads",
			growth.GoroutineDelta, runs)
	}
	return growth
}

// Snapshots returns a copy of the recorded snapshots.
func (m *ReloadMonitor) Snapshots() []MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemorySnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// Reset forgets all recorded runs.
func (m *ReloadMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = m.snapshots[:0]
}

// CurrentMemoryStats returns the current memory statistics.
func CurrentMemoryStats() MemorySnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return MemorySnapshot{
		Timestamp:      time.Now(),
		HeapAlloc:      memStats.HeapAlloc,
		HeapObjects:    memStats.HeapObjects,
		GoroutineCount: runtime.NumGoroutine(),
		NumGC:          memStats.NumGC,
	}
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(bytes uint64) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// String returns a one-line summary of the growth.
func (g MemoryGrowth) String() string {
	status := "no leak detected"
	if g.PotentialLeak {
		status = "potential leak: " + g.LeakReason
	}
	sign := "+"
	delta := g.HeapAllocDelta
	if delta < 0 {
		sign, delta = "-", -delta
	}
	return fmt.Sprintf("heap %s%s, objects %+d, goroutines %+d over %d reloads (%s)",
		sign, FormatBytes(uint64(delta)), g.HeapObjectsDelta, g.GoroutineDelta, g.Runs, status)
}
