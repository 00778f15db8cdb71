package layout

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// CanvasMode selects which page region defines the logical drawing area.
type CanvasMode int

const (
	// Paper uses the trimmed page.
	Paper CanvasMode = iota
	// Margin uses the area inside the page margins.
	Margin
	// Bleed uses the page plus its bleed.
	Bleed
	// FacingPages uses a two-page spread.
	FacingPages
)

var canvasModeNames = map[CanvasMode]string{
	Paper:       "paper",
	Margin:      "margin",
	Bleed:       "bleed",
	FacingPages: "facing_pages",
}

// String returns the script name of the mode.
func (m CanvasMode) String() string {
	if name, ok := canvasModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("CanvasMode(%d)", int(m))
}

// ParseCanvasMode converts a script or config name to a CanvasMode.
func ParseCanvasMode(s string) (CanvasMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	for mode, n := range canvasModeNames {
		if n == name {
			return mode, nil
		}
	}
	return 0, &ConfigError{Setting: "canvas mode", Value: s}
}

// PageSide is the position of a page within its spread.
type PageSide int

const (
	SideSingle PageSide = iota
	SideLeft
	SideRight
)

// String returns the side name.
func (s PageSide) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "single"
	}
}

// Insets holds per-edge distances.
type Insets struct {
	Top, Left, Bottom, Right float64
}

// PageGeometry is the read-only page description the canvas resolver
// needs. All values are in the document's current units.
type PageGeometry struct {
	Bounds  geom.Bounds
	Margins Insets
	Bleed   Insets
	Name    string
	Side    PageSide
}

// Canvas is the logical drawing area for one canvas mode.
type Canvas struct {
	Width, Height float64
	// Baseline is the transform the live matrix starts from.
	Baseline geom.Matrix
}

// ResolveCanvas computes the drawing area and baseline transform of mode
// on the page described by g.
func ResolveCanvas(mode CanvasMode, g PageGeometry) (Canvas, error) {
	w := g.Bounds.Width()
	h := g.Bounds.Height()
	c := Canvas{Baseline: geom.Identity()}

	switch mode {
	case Paper:
		c.Width, c.Height = w, h
	case Margin:
		c.Width = w - g.Margins.Left - g.Margins.Right
		c.Height = h - g.Margins.Top - g.Margins.Bottom
		c.Baseline.Translate(g.Margins.Left, g.Margins.Top)
	case Bleed:
		c.Width = w + g.Bleed.Left + g.Bleed.Right
		c.Height = h + g.Bleed.Top + g.Bleed.Bottom
		c.Baseline.Translate(-g.Bleed.Left, -g.Bleed.Top)
	case FacingPages:
		c.Width, c.Height = 2*w, h
		if g.Name == "1" {
			c.Width = w
		} else if g.Side == SideRight {
			c.Baseline.Translate(-w, 0)
		}
	default:
		return Canvas{}, &ConfigError{
			Setting: "canvas mode",
			Value:   mode.String(),
			Hint:    "use one of paper, margin, bleed, facing_pages",
		}
	}
	return c, nil
}
