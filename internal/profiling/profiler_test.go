package profiling

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestProfilerStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	cpuPath := filepath.Join(tmpDir, "cpu.prof")
	memPath := filepath.Join(tmpDir, "mem.prof")

	p := New(Config{CPUProfilePath: cpuPath, MemProfilePath: memPath})

	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !p.IsRunning() {
		t.Error("IsRunning() should return true after Start()")
	}

	// Attempt to start again should fail
	if err := p.Start(); err == nil {
		t.Error("Start() should fail when already running")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if p.IsRunning() {
		t.Error("IsRunning() should return false after Stop()")
	}

	for _, path := range []string{cpuPath, memPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("%s was not created", filepath.Base(path))
		}
	}
}

func TestProfilerStopWithoutStart(t *testing.T) {
	p := New(Config{})

	if err := p.Stop(); err == nil {
		t.Error("Stop() should fail when profiler is not running")
	}
}

func TestProfilerNoProfiling(t *testing.T) {
	p := New(Config{})

	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !p.IsRunning() {
		t.Error("IsRunning() should return true even with no profiling configured")
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestWriteHeapProfile(t *testing.T) {
	memPath := filepath.Join(t.TempDir(), "snapshot.prof")

	if err := WriteHeapProfile(memPath); err != nil {
		t.Fatalf("WriteHeapProfile() failed: %v", err)
	}

	info, err := os.Stat(memPath)
	if err != nil {
		t.Fatalf("memory profile file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("memory profile file should not be empty")
	}
}

func TestProfilerConcurrency(t *testing.T) {
	p := New(Config{MemProfilePath: filepath.Join(t.TempDir(), "mem.prof")})

	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.IsRunning()
			}
		}()
	}
	wg.Wait()

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestProfilerInvalidPaths(t *testing.T) {
	p := New(Config{CPUProfilePath: "/nonexistent/directory/cpu.prof"})
	if err := p.Start(); err == nil {
		t.Error("Start() should fail with invalid path")
		p.Stop()
	}
	if p.IsRunning() {
		t.Error("failed Start() should leave the profiler stopped")
	}

	p = New(Config{MemProfilePath: "/nonexistent/directory/mem.prof"})
	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	err := p.Stop()
	if err == nil || !strings.Contains(err.Error(), "memory profile") {
		t.Errorf("Stop() = %v, want memory profile error", err)
	}
	if p.IsRunning() {
		t.Error("Stop() should stop the profiler even when writing fails")
	}
}

func TestConfigEnabled(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{"no profiling", Config{}, false},
		{"cpu only", Config{CPUProfilePath: "cpu.prof"}, true},
		{"memory only", Config{MemProfilePath: "mem.prof"}, true},
		{"both", Config{CPUProfilePath: "cpu.prof", MemProfilePath: "mem.prof"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
