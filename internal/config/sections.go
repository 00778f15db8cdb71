package config

import (
	"fmt"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// fileConfig is the settings shape both file formats decode into. Unset
// fields keep the defaults they are applied over.
type fileConfig struct {
	Document documentSection `toml:"document"`
	Sketch   sketchSection   `toml:"sketch"`
	Output   outputSection   `toml:"output"`
	Preview  previewSection  `toml:"preview"`
}

type documentSection struct {
	Width   *float64    `toml:"width"`
	Height  *float64    `toml:"height"`
	Units   *string     `toml:"units"`
	Margins insetsValue `toml:"margins"`
	Bleed   insetsValue `toml:"bleed"`
	Facing  *bool       `toml:"facing"`
	Pages   *int        `toml:"pages"`
}

type sketchSection struct {
	Script      *string  `toml:"script"`
	Assets      *string  `toml:"assets"`
	CanvasMode  *string  `toml:"canvas_mode"`
	RectMode    *string  `toml:"rect_mode"`
	EllipseMode *string  `toml:"ellipse_mode"`
	ImageMode   *string  `toml:"image_mode"`
	FrameRate   *float64 `toml:"frame_rate"`
	CPULimit    *int64   `toml:"cpu_limit"`
	MemoryLimit *int64   `toml:"memory_limit"`
}

type outputSection struct {
	Path    *string `toml:"path"`
	Format  *string `toml:"format"`
	Spreads *bool   `toml:"spreads"`
}

type previewSection struct {
	Enabled     *bool    `toml:"enabled"`
	Scale       *float64 `toml:"scale"`
	AlwaysOnTop *bool    `toml:"always_on_top"`
	Guides      *bool    `toml:"guides"`
}

// insetsValue accepts either one number for all four edges or a table
// with top, left, bottom and right keys. Missing keys are zero.
type insetsValue struct {
	set    bool
	insets layout.Insets
}

// UnmarshalTOML implements toml.Unmarshaler.
func (v *insetsValue) UnmarshalTOML(data any) error {
	if n, ok := toFloat(data); ok {
		v.setUniform(n)
		return nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("insets must be a number or a table, got %T", data)
	}
	var in layout.Insets
	for key, raw := range m {
		n, ok := toFloat(raw)
		if !ok {
			return fmt.Errorf("insets.%s must be a number, got %T", key, raw)
		}
		if err := setEdge(&in, key, n); err != nil {
			return err
		}
	}
	v.set = true
	v.insets = in
	return nil
}

func (v *insetsValue) setUniform(n float64) {
	v.set = true
	v.insets = layout.Insets{Top: n, Left: n, Bottom: n, Right: n}
}

func setEdge(in *layout.Insets, key string, n float64) error {
	switch key {
	case "top":
		in.Top = n
	case "left", "inside":
		in.Left = n
	case "bottom":
		in.Bottom = n
	case "right", "outside":
		in.Right = n
	default:
		return fmt.Errorf("unknown inset edge: %s", key)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// apply copies every set field onto cfg, parsing enumerations.
func (fc *fileConfig) apply(cfg *Config) error {
	if err := fc.Document.apply(&cfg.Document); err != nil {
		return err
	}
	if err := fc.Sketch.apply(&cfg.Sketch); err != nil {
		return err
	}
	if err := fc.Output.apply(&cfg.Output); err != nil {
		return err
	}
	fc.Preview.apply(&cfg.Preview)
	return nil
}

func (s *documentSection) apply(dc *DocumentConfig) error {
	setFloat(&dc.Width, s.Width)
	setFloat(&dc.Height, s.Height)
	if s.Units != nil {
		u, err := document.ParseUnits(*s.Units)
		if err != nil {
			return fmt.Errorf("invalid units: %w", err)
		}
		dc.Units = u
	}
	if s.Margins.set {
		dc.Margins = s.Margins.insets
	}
	if s.Bleed.set {
		dc.Bleed = s.Bleed.insets
	}
	setBool(&dc.Facing, s.Facing)
	if s.Pages != nil {
		dc.Pages = *s.Pages
	}
	return nil
}

func (s *sketchSection) apply(sc *SketchConfig) error {
	setString(&sc.Script, s.Script)
	setString(&sc.Assets, s.Assets)
	if s.CanvasMode != nil {
		m, err := layout.ParseCanvasMode(*s.CanvasMode)
		if err != nil {
			return fmt.Errorf("invalid canvas_mode: %w", err)
		}
		sc.CanvasMode = m
	}
	for _, f := range []struct {
		key    string
		value  *string
		target *layout.ShapeMode
	}{
		{"rect_mode", s.RectMode, &sc.RectMode},
		{"ellipse_mode", s.EllipseMode, &sc.EllipseMode},
		{"image_mode", s.ImageMode, &sc.ImageMode},
	} {
		if f.value == nil {
			continue
		}
		m, err := layout.ParseShapeMode(*f.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.target = m
	}
	setFloat(&sc.FrameRate, s.FrameRate)
	if s.CPULimit != nil {
		if *s.CPULimit < 0 {
			return fmt.Errorf("invalid cpu_limit: %d", *s.CPULimit)
		}
		sc.CPULimit = uint64(*s.CPULimit)
	}
	if s.MemoryLimit != nil {
		if *s.MemoryLimit < 0 {
			return fmt.Errorf("invalid memory_limit: %d", *s.MemoryLimit)
		}
		sc.MemoryLimit = uint64(*s.MemoryLimit)
	}
	return nil
}

func (s *outputSection) apply(oc *OutputConfig) error {
	setString(&oc.Path, s.Path)
	if s.Format != nil {
		f, err := ParseOutputFormat(*s.Format)
		if err != nil {
			return fmt.Errorf("invalid output format: %w", err)
		}
		oc.Format = f
	}
	setBool(&oc.Spreads, s.Spreads)
	return nil
}

func (s *previewSection) apply(pc *PreviewConfig) {
	setBool(&pc.Enabled, s.Enabled)
	setFloat(&pc.Scale, s.Scale)
	setBool(&pc.AlwaysOnTop, s.AlwaysOnTop)
	setBool(&pc.Guides, s.Guides)
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
