package config

import (
	"testing"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

func TestOutputFormatString(t *testing.T) {
	tests := []struct {
		format   OutputFormat
		expected string
	}{
		{FormatAuto, "auto"},
		{FormatPDF, "pdf"},
		{FormatSVG, "svg"},
		{OutputFormat(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.format.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected OutputFormat
		wantErr  bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"pdf", FormatPDF, false},
		{"PDF", FormatPDF, false},
		{"svg", FormatSVG, false},
		{"png", FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseOutputFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolvedFormat(t *testing.T) {
	tests := []struct {
		name     string
		output   OutputConfig
		expected OutputFormat
		wantErr  bool
	}{
		{"pdf extension", OutputConfig{Path: "out/poster.pdf"}, FormatPDF, false},
		{"svg extension upper case", OutputConfig{Path: "poster.SVG"}, FormatSVG, false},
		{"explicit format wins", OutputConfig{Path: "poster.out", Format: FormatSVG}, FormatSVG, false},
		{"unknown extension", OutputConfig{Path: "poster.png"}, FormatAuto, true},
		{"no path", OutputConfig{}, FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.output.ResolvedFormat()
			if (err != nil) != tt.wantErr {
				t.Errorf("ResolvedFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ResolvedFormat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Document.Units != document.Points {
		t.Errorf("Units = %v, want pt", cfg.Document.Units)
	}
	if cfg.Document.Pages != 1 {
		t.Errorf("Pages = %d, want 1", cfg.Document.Pages)
	}
	if cfg.Sketch.CanvasMode != layout.Paper {
		t.Errorf("CanvasMode = %v, want paper", cfg.Sketch.CanvasMode)
	}
	if cfg.Sketch.RectMode != layout.Corner || cfg.Sketch.EllipseMode != layout.Center || cfg.Sketch.ImageMode != layout.Corner {
		t.Errorf("shape modes = %v/%v/%v", cfg.Sketch.RectMode, cfg.Sketch.EllipseMode, cfg.Sketch.ImageMode)
	}
	if cfg.Sketch.FrameRate != DefaultMaxFrameRate {
		t.Errorf("FrameRate = %v, want %v", cfg.Sketch.FrameRate, DefaultMaxFrameRate)
	}
	if cfg.Preview.Scale != DefaultPreviewScale || !cfg.Preview.Guides {
		t.Errorf("Preview = %+v", cfg.Preview)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestDocumentSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Document.Width = 100
	cfg.Document.Height = 50
	cfg.Document.Units = document.Millimeters
	cfg.Document.Facing = true
	cfg.Document.Pages = 3

	s := cfg.Document.Settings()
	if s.Width != 100 || s.Height != 50 || s.Units != document.Millimeters || !s.Facing || s.Pages != 3 {
		t.Errorf("Settings() = %+v", s)
	}
	if _, err := document.New(s); err != nil {
		t.Errorf("document.New(Settings()) error = %v", err)
	}
}
