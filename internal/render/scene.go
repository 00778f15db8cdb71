package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// ErrNoPage is returned when a scene is requested for a page the snapshot
// does not have.
var ErrNoPage = errors.New("page not in snapshot")

const ellipseSegments = 64

// scenePadding is the screen margin around the sheet, in pixels.
const scenePadding = 16

// GuideKind identifies a guide rectangle.
type GuideKind int

const (
	GuideBleed GuideKind = iota
	GuideMargin
)

// Guide is an axis-aligned guide rectangle in screen pixels.
type Guide struct {
	Kind   GuideKind
	Bounds geom.Bounds
}

// Shape is one item ready to draw. Matrix maps the item's base shape to
// screen pixels and Points is its outline under that matrix.
type Shape struct {
	Item   document.ItemSnapshot
	Matrix geom.Matrix
	Points []geom.Vector
	Closed bool
}

// Scene is the screen-space content of one sheet.
type Scene struct {
	Width, Height int
	Paper         []geom.Bounds
	Guides        []Guide
	Shapes        []Shape
}

// BuildScene lays out the sheet holding page index page. The sheet
// always includes the bleed so bleed guides and items in the bleed are
// visible.
func BuildScene(snap document.Snapshot, page int, cfg Config) (Scene, error) {
	if page < 0 || page >= len(snap.Pages) {
		return Scene{}, fmt.Errorf("%w: %d of %d", ErrNoPage, page+1, len(snap.Pages))
	}
	if err := cfg.Validate(); err != nil {
		return Scene{}, err
	}

	var sheet document.Sheet
	for _, s := range snap.Sheets(cfg.Spreads, true) {
		for _, placed := range s.Pages {
			if placed.Page == &snap.Pages[page] {
				sheet = s
			}
		}
	}

	k := cfg.Scale
	view := geom.NewMatrix(k, 0, scenePadding, 0, k, scenePadding)
	toScreen := func(b geom.Bounds) geom.Bounds {
		return b.Scale(k).Translate(scenePadding, scenePadding)
	}
	scene := Scene{
		Width:  int(math.Ceil(sheet.Width*k)) + 2*scenePadding,
		Height: int(math.Ceil(sheet.Height*k)) + 2*scenePadding,
	}
	if cfg.Guides && snap.Bleed != (layout.Insets{}) {
		bleed := geom.Bounds{Bottom: sheet.Height, Right: sheet.Width}
		scene.Guides = append(scene.Guides, Guide{Kind: GuideBleed, Bounds: toScreen(bleed)})
	}

	for _, placed := range sheet.Pages {
		ox, oy := placed.Offset[0], placed.Offset[1]
		trim := geom.Bounds{Top: oy, Left: ox, Bottom: oy + snap.Height, Right: ox + snap.Width}
		scene.Paper = append(scene.Paper, toScreen(trim))

		if cfg.Guides {
			m := placed.Page.Margins
			margin := geom.Bounds{
				Top:    trim.Top + m.Top,
				Left:   trim.Left + m.Left,
				Bottom: trim.Bottom - m.Bottom,
				Right:  trim.Right - m.Right,
			}
			scene.Guides = append(scene.Guides, Guide{Kind: GuideMargin, Bounds: toScreen(margin)})
		}

		offset := geom.NewMatrix(1, 0, ox, 0, 1, oy)
		for _, it := range placed.Page.Items {
			scene.Shapes = append(scene.Shapes, shapeOf(it, geom.Multiply(view, geom.Multiply(offset, it.Matrix))))
		}
	}
	return scene, nil
}

func shapeOf(it document.ItemSnapshot, m geom.Matrix) Shape {
	screen := it
	screen.Matrix = m
	return Shape{
		Item:   it,
		Matrix: m,
		Points: screen.Outline(ellipseSegments),
		Closed: it.Kind != document.KindLine,
	}
}
