package config

import (
	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// Default values for configuration options.
const (
	// DefaultMaxFrameRate is the highest draw rate a looping sketch gets.
	DefaultMaxFrameRate = 60.0
	// DefaultPreviewScale is the preview zoom in pixels per point.
	DefaultPreviewScale = 1.0
	// DefaultCPULimit bounds the Lua instructions of a single script call.
	DefaultCPULimit = 50_000_000
	// DefaultMemoryLimit bounds the Lua memory of a single script call.
	DefaultMemoryLimit = 100 * 1024 * 1024
)

// DefaultConfig returns a Config with sensible default values: a single
// A4 page in points, paper canvas, Processing's shape modes and no export.
func DefaultConfig() Config {
	page := document.DefaultSettings()
	return Config{
		Document: DocumentConfig{
			Width:   page.Width,
			Height:  page.Height,
			Units:   page.Units,
			Margins: page.Margins,
			Bleed:   page.Bleed,
			Facing:  page.Facing,
			Pages:   page.Pages,
		},
		Sketch: SketchConfig{
			CanvasMode:  layout.Paper,
			RectMode:    layout.Corner,
			EllipseMode: layout.Center,
			ImageMode:   layout.Corner,
			FrameRate:   DefaultMaxFrameRate,
			CPULimit:    DefaultCPULimit,
			MemoryLimit: DefaultMemoryLimit,
		},
		Output: OutputConfig{
			Format: FormatAuto,
		},
		Preview: PreviewConfig{
			Scale:  DefaultPreviewScale,
			Guides: true,
		},
	}
}
