// Package config provides configuration data structures for pagesketch.
// A configuration describes the document a sketch draws into, the modes
// the sketch starts with, where the result is written and how the live
// preview behaves. It can be written as a Lua table or as TOML.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// Config represents the complete pagesketch configuration.
type Config struct {
	// Document describes the page layout document.
	Document DocumentConfig
	// Sketch holds the script and its initial drawing modes.
	Sketch SketchConfig
	// Output controls where the finished document is written.
	Output OutputConfig
	// Preview controls the live preview window.
	Preview PreviewConfig
}

// DocumentConfig holds the page setup. Lengths are in Units.
type DocumentConfig struct {
	// Width and Height are the trimmed page size.
	Width, Height float64
	// Units is the measurement unit for every length in the document.
	Units document.Units
	// Margins are the page margins.
	Margins layout.Insets
	// Bleed extends the page beyond its trim edge.
	Bleed layout.Insets
	// Facing lays pages out as left/right spreads.
	Facing bool
	// Pages is the initial page count.
	Pages int
}

// Settings converts the page setup to document settings.
func (d DocumentConfig) Settings() document.Settings {
	return document.Settings{
		Width:   d.Width,
		Height:  d.Height,
		Margins: d.Margins,
		Bleed:   d.Bleed,
		Facing:  d.Facing,
		Pages:   d.Pages,
		Units:   d.Units,
	}
}

// SketchConfig holds the script and the modes it starts with.
type SketchConfig struct {
	// Script is the path of the Lua sketch.
	Script string
	// Assets is the directory image names are resolved against.
	// Empty means the script's directory.
	Assets string
	// CanvasMode is the initial canvas mode.
	CanvasMode layout.CanvasMode
	// RectMode, EllipseMode and ImageMode are the initial shape modes.
	RectMode, EllipseMode, ImageMode layout.ShapeMode
	// FrameRate caps draw() calls per second for looping sketches.
	FrameRate float64
	// CPULimit and MemoryLimit bound a single script call.
	CPULimit    uint64
	MemoryLimit uint64
}

// OutputConfig controls document export.
type OutputConfig struct {
	// Path is the file written after the sketch finishes. Empty disables
	// export.
	Path string
	// Format selects the writer. FormatAuto picks it from Path.
	Format OutputFormat
	// Spreads exports facing pages side by side.
	Spreads bool
}

// PreviewConfig controls the live preview window.
type PreviewConfig struct {
	// Enabled opens the preview window.
	Enabled bool
	// Scale is the number of screen pixels per point.
	Scale float64
	// AlwaysOnTop asks the window manager to keep the window above others.
	AlwaysOnTop bool
	// Guides draws margin and bleed guides.
	Guides bool
}

// OutputFormat selects the export writer.
type OutputFormat int

const (
	// FormatAuto picks the writer from the output path's extension.
	FormatAuto OutputFormat = iota
	// FormatPDF writes a PDF document.
	FormatPDF
	// FormatSVG writes one SVG drawing per page or spread.
	FormatSVG
)

// String returns the string representation of an OutputFormat.
func (f OutputFormat) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatPDF:
		return "pdf"
	case FormatSVG:
		return "svg"
	default:
		return "unknown"
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	default:
		return FormatAuto, fmt.Errorf("unknown output format: %s", s)
	}
}

// FormatForPath returns the format implied by a file extension.
func FormatForPath(path string) (OutputFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, true
	case ".svg":
		return FormatSVG, true
	default:
		return FormatAuto, false
	}
}

// ResolvedFormat returns the writer used for the output, resolving
// FormatAuto from the path.
func (o OutputConfig) ResolvedFormat() (OutputFormat, error) {
	if o.Format != FormatAuto {
		return o.Format, nil
	}
	f, ok := FormatForPath(o.Path)
	if !ok {
		return FormatAuto, fmt.Errorf("cannot infer output format from %q", o.Path)
	}
	return f, nil
}

// Validate checks if the Config has valid values using the comprehensive validator.
// It returns the first validation error found, or nil if the config is valid.
// For detailed validation results including warnings, use NewValidator().Validate().
func (c *Config) Validate() error {
	return ValidateConfig(c)
}
