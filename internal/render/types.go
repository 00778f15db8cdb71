// Package render provides the Ebiten preview window for pagesketch. It
// draws the sheet that holds the current page, with bleed and margin
// guides, and redraws whenever the running sketch publishes a new frame.
package render

import (
	"fmt"
	"image/color"
)

// Config holds the preview options.
type Config struct {
	// Title is the window title.
	Title string
	// Scale is the number of screen pixels per point.
	Scale float64
	// AlwaysOnTop keeps the window above other windows.
	AlwaysOnTop bool
	// Guides draws the bleed box and the page margins.
	Guides bool
	// Spreads shows facing pages side by side.
	Spreads bool

	// BackgroundColor fills the area around the sheet.
	BackgroundColor color.RGBA
	// PaperColor fills each page's trim box.
	PaperColor color.RGBA
	// StrokeColor outlines items.
	StrokeColor color.RGBA
	// FillColor fills closed items.
	FillColor color.RGBA
	// MarginColor draws margin guides.
	MarginColor color.RGBA
	// BleedColor draws the bleed box.
	BleedColor color.RGBA
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Title:           "pagesketch",
		Scale:           1,
		Guides:          true,
		BackgroundColor: color.RGBA{R: 96, G: 96, B: 96, A: 255},
		PaperColor:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		StrokeColor:     color.RGBA{R: 0, G: 0, B: 0, A: 255},
		FillColor:       color.RGBA{R: 0, G: 0, B: 0, A: 24},
		MarginColor:     color.RGBA{R: 214, G: 40, B: 214, A: 255},
		BleedColor:      color.RGBA{R: 230, G: 40, B: 40, A: 255},
	}
}

// Validate checks if the Config has valid values.
func (c Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	return nil
}
