package pagesketch

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogAdapter(slog.New(handler))

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "count", 42)
	logger.Warn("warn message")
	logger.Error("error message", "err", "boom")

	out := buf.String()
	for _, want := range []string{"debug message", "key=value", "count=42", "warn message", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil))).With("script", "grid.lua")
	logger.Info("run started")
	if !strings.Contains(buf.String(), "script=grid.lua") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewSlogAdapterNil(t *testing.T) {
	if NewSlogAdapter(nil).logger == nil {
		t.Error("nil logger should fall back to slog.Default()")
	}
}

func TestLevelLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LevelLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	JSONLogger(&buf, slog.LevelInfo).Info("exported", "path", "out.pdf")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "exported" || entry["path"] != "out.pdf" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}

func TestRunLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := WithRunID(context.Background(), "feedface")
	newRunLogger(ctx, base).Warn("memory keeps growing", "growth", "+2MB")
	if out := buf.String(); !strings.Contains(out, "run=feedface") || !strings.Contains(out, "growth=+2MB") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	newRunLogger(context.Background(), base).Info("plain")
	if strings.Contains(buf.String(), "run=") {
		t.Errorf("logger without run ID added one: %q", buf.String())
	}

	newRunLogger(ctx, nil).Error("discarded")
}

func TestRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if len(a) != 16 || a == b {
		t.Errorf("NewRunID() = %q, %q", a, b)
	}
	if a.String() != string(a) {
		t.Error("String() should return the ID")
	}

	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q", got)
	}
	//nolint:staticcheck // nil context is handled explicitly
	if got := RunIDFromContext(nil); got != "" {
		t.Errorf("RunIDFromContext(nil) = %q", got)
	}
	if got := RunIDFromContext(WithRunID(context.Background(), "")); len(got) != 16 {
		t.Errorf("WithRunID(\"\") stored %q, want a generated ID", got)
	}
	if got := RunIDFromContext(WithRunID(context.Background(), "abc")); got != "abc" {
		t.Errorf("RunIDFromContext = %q, want abc", got)
	}
}
