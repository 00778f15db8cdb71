package document

import (
	"math"

	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// Snapshot is an immutable copy of a document in points, used by export
// and preview.
type Snapshot struct {
	Width, Height float64
	Bleed         layout.Insets
	Facing        bool
	Pages         []PageSnapshot
}

// PageSnapshot is one page of a Snapshot.
type PageSnapshot struct {
	Name    string
	Side    layout.PageSide
	Margins layout.Insets
	Items   []ItemSnapshot
}

// ItemSnapshot is one item of a PageSnapshot. Matrix maps Base into page
// space.
type ItemSnapshot struct {
	ID     int
	Kind   Kind
	Base   geom.Bounds
	Matrix geom.Matrix
	Bounds geom.Bounds
	Text   string
	Align  Justification
	VAlign VerticalJustification
	Image  *ImageInfo
}

// Snapshot copies the current document state.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Snapshot{
		Width:  d.width,
		Height: d.height,
		Bleed:  d.bleed,
		Facing: d.facing,
		Pages:  make([]PageSnapshot, 0, len(d.pages)),
	}
	for _, p := range d.pages {
		ps := PageSnapshot{
			Name:    p.nameLocked(),
			Side:    p.sideLocked(),
			Margins: p.margins,
			Items:   make([]ItemSnapshot, 0, len(p.items)),
		}
		for _, it := range p.items {
			is := ItemSnapshot{
				ID:     it.id,
				Kind:   it.kind,
				Base:   it.base,
				Matrix: it.m,
				Bounds: it.boundsLocked(),
				Text:   it.text,
				Align:  it.align,
				VAlign: it.valign,
			}
			if it.image != nil {
				info := *it.image
				is.Image = &info
			}
			ps.Items = append(ps.Items, is)
		}
		s.Pages = append(s.Pages, ps)
	}
	return s
}

// Outline returns the transformed outline of the item as a closed polygon
// in points. Ellipses are approximated with segments; lines return their
// two endpoints.
func (is ItemSnapshot) Outline(segments int) []geom.Vector {
	switch is.Kind {
	case KindLine:
		return []geom.Vector{
			is.Matrix.Mult(geom.Vector{X: is.Base.Left, Y: is.Base.Top}),
			is.Matrix.Mult(geom.Vector{X: is.Base.Right, Y: is.Base.Bottom}),
		}
	case KindEllipse:
		return ellipseOutline(is.Base, is.Matrix, segments)
	default:
		return corners(is.Base, is.Matrix)
	}
}

func ellipseOutline(b geom.Bounds, m geom.Matrix, segments int) []geom.Vector {
	if segments < 8 {
		segments = 8
	}
	c := b.Center()
	rx, ry := b.Width()/2, b.Height()/2
	pts := make([]geom.Vector, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = m.Mult(geom.Vector{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)})
	}
	return pts
}
