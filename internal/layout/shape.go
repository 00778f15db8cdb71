// Package layout turns declarative drawing arguments into page geometry.
// It holds two pure resolvers: one maps (x, y, w, h) plus a shape mode to
// canonical bounds, the other derives the logical canvas size and baseline
// transform for a canvas mode.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// ErrNoShape is returned when the requested shape has no area. Callers
// skip drawing instead of treating it as a failure.
var ErrNoShape = errors.New("shape has zero width or height")

// ShapeMode selects how the four numeric drawing arguments are read.
type ShapeMode int

const (
	// Corner reads (x, y) as the top-left corner and (w, h) as the size.
	Corner ShapeMode = iota
	// Corners reads (x, y) and (w, h) as two opposite corners.
	Corners
	// Center reads (x, y) as the center and (w, h) as the size.
	Center
	// Radius reads (x, y) as the center and (w, h) as half the size.
	Radius
)

var shapeModeNames = map[ShapeMode]string{
	Corner:  "corner",
	Corners: "corners",
	Center:  "center",
	Radius:  "radius",
}

// String returns the script name of the mode.
func (m ShapeMode) String() string {
	if name, ok := shapeModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ShapeMode(%d)", int(m))
}

// ParseShapeMode converts a script name to a ShapeMode.
func ParseShapeMode(s string) (ShapeMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for mode, n := range shapeModeNames {
		if n == name {
			return mode, nil
		}
	}
	return 0, &ConfigError{Setting: "shape mode", Value: s}
}

// Anchor names the reference point a transform pivots around.
type Anchor int

const (
	// AnchorTopLeft pivots around the top-left corner of the bounds.
	AnchorTopLeft Anchor = iota
	// AnchorCenter pivots around the center of the bounds.
	AnchorCenter
)

// String returns a readable anchor name.
func (a Anchor) String() string {
	if a == AnchorCenter {
		return "center"
	}
	return "top-left"
}

// Point returns the anchor's position within b.
func (a Anchor) Point(b geom.Bounds) geom.Vector {
	if a == AnchorCenter {
		return b.Center()
	}
	return b.TopLeft()
}

// ShapeKind identifies the drawing call a mode is used with.
type ShapeKind int

const (
	KindRect ShapeKind = iota
	KindEllipse
	KindImage
)

var supportedModes = map[ShapeKind][]ShapeMode{
	KindRect:    {Corner, Corners, Center},
	KindEllipse: {Corner, Corners, Center, Radius},
	KindImage:   {Corner, Corners, Center},
}

// String returns the drawing call name for the kind.
func (k ShapeKind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindEllipse:
		return "ellipse"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Supports reports whether mode is valid for the kind.
func (k ShapeKind) Supports(mode ShapeMode) bool {
	for _, m := range supportedModes[k] {
		if m == mode {
			return true
		}
	}
	return false
}

// CheckMode returns a ConfigError when mode is not valid for the kind.
func (k ShapeKind) CheckMode(mode ShapeMode) error {
	if k.Supports(mode) {
		return nil
	}
	return &ConfigError{Setting: k.String() + " mode", Value: mode.String()}
}

// Shape is the tagged placement of one shape. Exactly one of the concrete
// types below implements it.
type Shape interface {
	Mode() ShapeMode
	resolve() (geom.Bounds, error)
}

// CornerShape places a shape by its top-left corner and size.
type CornerShape struct {
	X, Y, Width, Height float64
}

// CornersShape places a shape by two opposite corners in absolute
// coordinates.
type CornersShape struct {
	X, Y, SecondX, SecondY float64
}

// CenterShape places a shape by its center and full size.
type CenterShape struct {
	X, Y, Width, Height float64
}

// RadiusShape places a shape by its center and half size.
type RadiusShape struct {
	X, Y, RadiusX, RadiusY float64
}

func (CornerShape) Mode() ShapeMode  { return Corner }
func (CornersShape) Mode() ShapeMode { return Corners }
func (CenterShape) Mode() ShapeMode  { return Center }
func (RadiusShape) Mode() ShapeMode  { return Radius }

func (s CornerShape) resolve() (geom.Bounds, error) {
	if s.Width == 0 || s.Height == 0 {
		return geom.Bounds{}, ErrNoShape
	}
	return geom.Bounds{Top: s.Y, Left: s.X, Bottom: s.Y + s.Height, Right: s.X + s.Width}, nil
}

func (s CornersShape) resolve() (geom.Bounds, error) {
	if s.SecondX == s.X || s.SecondY == s.Y {
		return geom.Bounds{}, ErrNoShape
	}
	return geom.Bounds{Top: s.Y, Left: s.X, Bottom: s.SecondY, Right: s.SecondX}, nil
}

func (s CenterShape) resolve() (geom.Bounds, error) {
	if s.Width == 0 || s.Height == 0 {
		return geom.Bounds{}, ErrNoShape
	}
	return geom.Bounds{
		Top:    s.Y - s.Height/2,
		Left:   s.X - s.Width/2,
		Bottom: s.Y + s.Height/2,
		Right:  s.X + s.Width/2,
	}, nil
}

func (s RadiusShape) resolve() (geom.Bounds, error) {
	if s.RadiusX == 0 || s.RadiusY == 0 {
		return geom.Bounds{}, ErrNoShape
	}
	return geom.Bounds{
		Top:    s.Y - s.RadiusY,
		Left:   s.X - s.RadiusX,
		Bottom: s.Y + s.RadiusY,
		Right:  s.X + s.RadiusX,
	}, nil
}

// ShapeFromArgs builds the tagged shape for positional script arguments.
// In Corners mode w and h are the second corner's coordinates.
func ShapeFromArgs(mode ShapeMode, x, y, w, h float64) (Shape, error) {
	switch mode {
	case Corner:
		return CornerShape{X: x, Y: y, Width: w, Height: h}, nil
	case Corners:
		return CornersShape{X: x, Y: y, SecondX: w, SecondY: h}, nil
	case Center:
		return CenterShape{X: x, Y: y, Width: w, Height: h}, nil
	case Radius:
		return RadiusShape{X: x, Y: y, RadiusX: w, RadiusY: h}, nil
	default:
		return nil, &ConfigError{Setting: "shape mode", Value: mode.String()}
	}
}

// Resolve returns the canonical bounds of s and the anchor the live
// transform pivots around. Zero-area shapes return ErrNoShape. Corners
// bounds keep the argument order, so they may be flipped.
func Resolve(s Shape) (geom.Bounds, Anchor, error) {
	if s == nil {
		return geom.Bounds{}, AnchorTopLeft, &ConfigError{Setting: "shape", Value: "<nil>"}
	}
	b, err := s.resolve()
	if err != nil {
		return geom.Bounds{}, AnchorTopLeft, err
	}
	return b, AnchorFor(s.Mode()), nil
}

// ResolveArgs is ShapeFromArgs followed by Resolve. A zero w or h yields
// ErrNoShape in every mode, including Corners where they are coordinates.
func ResolveArgs(mode ShapeMode, x, y, w, h float64) (geom.Bounds, Anchor, error) {
	if w == 0 || h == 0 {
		return geom.Bounds{}, AnchorFor(mode), ErrNoShape
	}
	s, err := ShapeFromArgs(mode, x, y, w, h)
	if err != nil {
		return geom.Bounds{}, AnchorTopLeft, err
	}
	return Resolve(s)
}

// AnchorFor returns the pivot used for shapes drawn in mode.
func AnchorFor(mode ShapeMode) Anchor {
	if mode == Center || mode == Radius {
		return AnchorCenter
	}
	return AnchorTopLeft
}
