package config

import (
	"strings"
	"testing"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

func newTestLuaParser(t *testing.T) *LuaConfigParser {
	t.Helper()
	parser, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser() error = %v", err)
	}
	t.Cleanup(func() { parser.Close() })
	return parser
}

func TestLuaConfigParserFull(t *testing.T) {
	parser := newTestLuaParser(t)

	cfg, err := parser.Parse([]byte(`
		sketch.config = {
			page_width = 148,
			page_height = 210,
			units = 'mm',
			margin = { top = 10, left = 12, bottom = 15, right = 10 },
			bleed = 3,
			facing_pages = true,
			pages = 4,
			script = 'zine.lua',
			assets = 'img',
			canvas_mode = 'facing_pages',
			rect_mode = 'center',
			ellipse_mode = 'radius',
			image_mode = 'corners',
			frame_rate = 12.5,
			cpu_limit = 1000000,
			output = 'zine.svg',
			output_format = 'svg',
			spreads = 'yes',
			preview = true,
			preview_scale = 2,
			always_on_top = true,
			guides = false,
		}
	`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	d := cfg.Document
	if d.Width != 148 || d.Height != 210 || d.Units != document.Millimeters {
		t.Errorf("page = %gx%g %v", d.Width, d.Height, d.Units)
	}
	if d.Margins != (layout.Insets{Top: 10, Left: 12, Bottom: 15, Right: 10}) {
		t.Errorf("Margins = %+v", d.Margins)
	}
	if d.Bleed != (layout.Insets{Top: 3, Left: 3, Bottom: 3, Right: 3}) {
		t.Errorf("Bleed = %+v", d.Bleed)
	}
	if !d.Facing || d.Pages != 4 {
		t.Errorf("Facing = %v, Pages = %d", d.Facing, d.Pages)
	}

	s := cfg.Sketch
	if s.Script != "zine.lua" || s.Assets != "img" {
		t.Errorf("Script = %q, Assets = %q", s.Script, s.Assets)
	}
	if s.CanvasMode != layout.FacingPages {
		t.Errorf("CanvasMode = %v", s.CanvasMode)
	}
	if s.RectMode != layout.Center || s.EllipseMode != layout.Radius || s.ImageMode != layout.Corners {
		t.Errorf("modes = %v/%v/%v", s.RectMode, s.EllipseMode, s.ImageMode)
	}
	if s.FrameRate != 12.5 || s.CPULimit != 1000000 || s.MemoryLimit != DefaultMemoryLimit {
		t.Errorf("FrameRate = %v, CPULimit = %d, MemoryLimit = %d", s.FrameRate, s.CPULimit, s.MemoryLimit)
	}

	if cfg.Output.Path != "zine.svg" || cfg.Output.Format != FormatSVG || !cfg.Output.Spreads {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !cfg.Preview.Enabled || cfg.Preview.Scale != 2 || !cfg.Preview.AlwaysOnTop || cfg.Preview.Guides {
		t.Errorf("Preview = %+v", cfg.Preview)
	}
}

func TestLuaConfigParserDefaults(t *testing.T) {
	parser := newTestLuaParser(t)

	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"empty table", "sketch.config = {}"},
		{"config replaced by non-table", "sketch.config = 3"},
		{"no sketch global", "sketch = nil"},
	}

	defaults := DefaultConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parser.Parse([]byte(tt.code))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.Document != defaults.Document || cfg.Sketch != defaults.Sketch {
				t.Errorf("expected defaults, got %+v", cfg)
			}
		})
	}
}

func TestLuaConfigParserReuse(t *testing.T) {
	parser := newTestLuaParser(t)

	if _, err := parser.Parse([]byte(`sketch.config = { canvas_mode = 'bleed' }`)); err != nil {
		t.Fatal(err)
	}
	cfg, err := parser.Parse([]byte(`sketch.config = { pages = 2 }`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sketch.CanvasMode != layout.Paper {
		t.Errorf("settings leaked between parses: CanvasMode = %v", cfg.Sketch.CanvasMode)
	}
}

func TestLuaConfigParserErrors(t *testing.T) {
	parser := newTestLuaParser(t)

	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{"syntax error", "sketch.config = {", "compile"},
		{"runtime error", "error('nope')", "execute"},
		{"sketch not a table", "sketch = 'x'", "not a table"},
		{"bad units", "sketch.config = { units = 'furlong' }", "units"},
		{"bad canvas mode", "sketch.config = { canvas_mode = 'poster' }", "canvas_mode"},
		{"bad rect mode", "sketch.config = { rect_mode = 'middle' }", "rect_mode"},
		{"bad output format", "sketch.config = { output_format = 'png' }", "format"},
		{"bad margin", "sketch.config = { margin = 'wide' }", "margin"},
		{"bad margin edge", "sketch.config = { margin = { top = 'x' } }", "margin.top"},
		{"negative cpu limit", "sketch.config = { cpu_limit = -1 }", "cpu_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.code))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLuaConfigParserComputedValues(t *testing.T) {
	parser := newTestLuaParser(t)

	cfg, err := parser.Parse([]byte(`
		local inch = 72
		sketch.config = {
			page_width = 8.5 * inch,
			page_height = 11 * inch,
			margin = inch / 2,
		}
	`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Document.Width != 612 || cfg.Document.Height != 792 || cfg.Document.Margins.Left != 36 {
		t.Errorf("Document = %+v", cfg.Document)
	}
}
