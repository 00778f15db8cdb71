package config

import (
	"strings"
	"testing"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

const posterTOML = `
[document]
width = 420.0
height = 595.0
units = "pt"
margins = { top = 36.0, left = 48.0, bottom = 36.0, right = 36.0 }
bleed = 9.0
facing = true
pages = 4

[sketch]
script = "poster.lua"
canvas_mode = "margin"
rect_mode = "corners"
frame_rate = 30.0
memory_limit = 1048576

[output]
path = "poster.pdf"
spreads = true

[preview]
enabled = true
scale = 1.5
`

func TestTOMLConfigParser(t *testing.T) {
	cfg, err := NewTOMLConfigParser().Parse([]byte(posterTOML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	d := cfg.Document
	if d.Width != 420 || d.Height != 595 || d.Units != document.Points {
		t.Errorf("page = %gx%g %v", d.Width, d.Height, d.Units)
	}
	if d.Margins != (layout.Insets{Top: 36, Left: 48, Bottom: 36, Right: 36}) {
		t.Errorf("Margins = %+v", d.Margins)
	}
	if d.Bleed != (layout.Insets{Top: 9, Left: 9, Bottom: 9, Right: 9}) {
		t.Errorf("Bleed = %+v", d.Bleed)
	}
	if !d.Facing || d.Pages != 4 {
		t.Errorf("Facing = %v, Pages = %d", d.Facing, d.Pages)
	}

	if cfg.Sketch.Script != "poster.lua" || cfg.Sketch.CanvasMode != layout.Margin || cfg.Sketch.RectMode != layout.Corners {
		t.Errorf("Sketch = %+v", cfg.Sketch)
	}
	if cfg.Sketch.EllipseMode != layout.Center {
		t.Errorf("unset ellipse_mode should keep its default, got %v", cfg.Sketch.EllipseMode)
	}
	if cfg.Sketch.FrameRate != 30 || cfg.Sketch.MemoryLimit != 1048576 || cfg.Sketch.CPULimit != DefaultCPULimit {
		t.Errorf("Sketch limits = %+v", cfg.Sketch)
	}

	if cfg.Output.Path != "poster.pdf" || cfg.Output.Format != FormatAuto || !cfg.Output.Spreads {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !cfg.Preview.Enabled || cfg.Preview.Scale != 1.5 || !cfg.Preview.Guides {
		t.Errorf("Preview = %+v", cfg.Preview)
	}
}

func TestTOMLConfigParserEmpty(t *testing.T) {
	cfg, err := NewTOMLConfigParser().Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defaults := DefaultConfig()
	if cfg.Document != defaults.Document || cfg.Sketch != defaults.Sketch || cfg.Output != defaults.Output {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestTOMLConfigParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"syntax error", "[document\nwidth = 1.0", "parse"},
		{"unknown key", "[document]\ncolour = \"red\"", "document.colour"},
		{"unknown section", "[window]\nwidth = 1.0", "window"},
		{"bad units", "[document]\nunits = \"furlong\"", "units"},
		{"bad canvas mode", "[sketch]\ncanvas_mode = \"poster\"", "canvas_mode"},
		{"bad format", "[output]\nformat = \"png\"", "format"},
		{"bad inset type", "[document]\nmargins = \"wide\"", "insets"},
		{"bad inset edge", "[document]\nbleed = { middle = 1.0 }", "edge"},
		{"wrong value type", "[document]\npages = \"four\"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTOMLConfigParser().Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestTOMLUnsupportedModeFailsValidation(t *testing.T) {
	// radius parses as a shape mode but images cannot use it
	cfg, err := NewTOMLConfigParser().Parse([]byte("[sketch]\nimage_mode = \"radius\""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Validate() == nil {
		t.Error("expected validation error for radius image mode")
	}
}
