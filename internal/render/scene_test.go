package render

import (
	"errors"
	"math"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/tdewolff/test"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func testSnapshot() document.Snapshot {
	margins := layout.Insets{Top: 10, Left: 10, Bottom: 10, Right: 10}
	return document.Snapshot{
		Width:  100,
		Height: 200,
		Bleed:  layout.Insets{Top: 5, Left: 5, Bottom: 5, Right: 5},
		Facing: true,
		Pages: []document.PageSnapshot{
			{Name: "1", Side: layout.SideRight, Margins: margins, Items: []document.ItemSnapshot{
				{ID: 1, Kind: document.KindRect, Base: geom.Bounds{Top: 0, Left: 0, Bottom: 20, Right: 40}, Matrix: geom.Identity()},
			}},
			{Name: "2", Side: layout.SideLeft, Margins: margins, Items: []document.ItemSnapshot{
				{ID: 2, Kind: document.KindLine, Base: geom.Bounds{Top: 0, Left: 0, Bottom: 10, Right: 10}, Matrix: geom.Identity()},
			}},
			{Name: "3", Side: layout.SideRight, Margins: margins, Items: []document.ItemSnapshot{
				{ID: 3, Kind: document.KindEllipse, Base: geom.Bounds{Top: -5, Left: -5, Bottom: 5, Right: 5}, Matrix: geom.NewMatrix(1, 0, 50, 0, 1, 50)},
			}},
		},
	}
}

func TestBuildScene(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = 2

	scene, err := BuildScene(testSnapshot(), 0, cfg)
	test.Error(t, err)

	test.T(t, scene.Width, 2*110+2*scenePadding)
	test.T(t, scene.Height, 2*210+2*scenePadding)
	test.T(t, len(scene.Paper), 1)

	p := float64(scenePadding)
	if diff := cmp.Diff(geom.Bounds{Top: p + 10, Left: p + 10, Bottom: p + 410, Right: p + 210}, scene.Paper[0], approx); diff != "" {
		t.Errorf("paper mismatch (-want +got):\n%s", diff)
	}

	wantGuides := []Guide{
		{Kind: GuideBleed, Bounds: geom.Bounds{Top: p, Left: p, Bottom: p + 420, Right: p + 220}},
		{Kind: GuideMargin, Bounds: geom.Bounds{Top: p + 30, Left: p + 30, Bottom: p + 390, Right: p + 190}},
	}
	if diff := cmp.Diff(wantGuides, scene.Guides, approx); diff != "" {
		t.Errorf("guides mismatch (-want +got):\n%s", diff)
	}

	test.T(t, len(scene.Shapes), 1)
	rect := scene.Shapes[0]
	test.That(t, rect.Closed, "rectangles are closed")
	if diff := cmp.Diff(geom.Vector{X: p + 10, Y: p + 10}, rect.Points[0], approx); diff != "" {
		t.Errorf("rect origin mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Vector{X: p + 90, Y: p + 50}, rect.Points[2], approx); diff != "" {
		t.Errorf("rect corner mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSceneSpreads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Spreads = true
	cfg.Guides = false

	// page index 2 is the right half of the 2-3 spread
	scene, err := BuildScene(testSnapshot(), 2, cfg)
	test.Error(t, err)

	test.T(t, len(scene.Paper), 2)
	test.T(t, len(scene.Guides), 0)
	test.T(t, scene.Width, 210+2*scenePadding)
	test.T(t, len(scene.Shapes), 2)

	line, ellipse := scene.Shapes[0], scene.Shapes[1]
	test.That(t, !line.Closed, "lines are open")
	test.T(t, len(line.Points), 2)
	test.T(t, len(ellipse.Points), ellipseSegments)

	// ellipse center is at (50, 50) on the second page of the spread
	c := geom.Vector{X: float64(scenePadding) + 5 + 100 + 50, Y: float64(scenePadding) + 5 + 50}
	for _, pt := range ellipse.Points {
		test.Float(t, math.Round(pt.Sub(c).Len()*1e6)/1e6, 5)
	}
}

func TestBuildSceneErrors(t *testing.T) {
	_, err := BuildScene(testSnapshot(), 3, DefaultConfig())
	test.That(t, errors.Is(err, ErrNoPage), "expected ErrNoPage, got", err)

	cfg := DefaultConfig()
	cfg.Scale = 0
	_, err = BuildScene(testSnapshot(), 0, cfg)
	test.That(t, err != nil, "expected error for zero scale")
}

func TestTessellation(t *testing.T) {
	square := []geom.Vector{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	vs, is := fillTriangles(square)
	test.That(t, len(vs) >= 4, "fill produced", len(vs), "vertices")
	test.That(t, len(is) >= 6 && len(is)%3 == 0, "fill produced", len(is), "indices")

	vs, is = strokeTriangles(square, true, 1)
	test.That(t, len(vs) > 0 && len(is)%3 == 0, "stroke produced", len(vs), "vertices")

	vs, is = fillTriangles(square[:2])
	test.T(t, len(vs)+len(is), 0)
	vs, is = strokeTriangles(square[:1], false, 1)
	test.T(t, len(vs)+len(is), 0)
}

func TestGeoM(t *testing.T) {
	m := geom.Identity()
	m.Translate(3, 4)
	m.Rotate(0.3)
	m.Scale(2, 0.5)

	g := geoM(m)
	for _, p := range []geom.Vector{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: -3, Y: 5}} {
		x, y := g.Apply(p.X, p.Y)
		want := m.Mult(p)
		test.Float(t, x, want.X)
		test.Float(t, y, want.Y)
	}
}

func TestTextOrigin(t *testing.T) {
	it := document.ItemSnapshot{Base: geom.Bounds{Top: 10, Left: 20, Bottom: 50, Right: 120}}

	x, y, h, v := textOrigin(it)
	test.Float(t, x, 20)
	test.Float(t, y, 10)
	test.T(t, h, text.AlignStart)
	test.T(t, v, text.AlignStart)

	it.Align, it.VAlign = document.CenterJustified, document.BottomAlign
	x, y, h, v = textOrigin(it)
	test.Float(t, x, 70)
	test.Float(t, y, 50)
	test.T(t, h, text.AlignCenter)
	test.T(t, v, text.AlignEnd)
}

func TestPlaceholderDiagonals(t *testing.T) {
	pts := []geom.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	d := placeholderDiagonals(pts)
	test.T(t, len(d), 2)
	test.T(t, d[0][1], geom.Vector{X: 1, Y: 1})
	test.T(t, len(placeholderDiagonals(pts[:2])), 0)
}

func TestConfigValidate(t *testing.T) {
	test.Error(t, DefaultConfig().Validate())
	cfg := DefaultConfig()
	cfg.Scale = -1
	test.That(t, cfg.Validate() != nil, "negative scale accepted")
}

func TestImageCacheFailures(t *testing.T) {
	cache := NewImageCache(fstest.MapFS{"bad.png": {Data: []byte("not an image")}})

	_, err := cache.Load("bad.png")
	test.That(t, err != nil, "expected decode error")
	_, err = cache.Load("missing.png")
	test.That(t, err != nil, "expected open error")
	test.T(t, cache.Size(), 0)

	_, err = NewImageCache(nil).Load("any.png")
	test.That(t, err != nil, "expected error without assets")
}

func TestPreviewShow(t *testing.T) {
	p := &Preview{config: DefaultConfig(), images: NewImageCache(nil)}

	w, h := p.Layout(800, 600)
	test.T(t, w, emptySize)
	test.T(t, h, emptySize)

	test.Error(t, p.Show(testSnapshot(), 1))
	scene, ok := p.Scene()
	test.That(t, ok, "scene not set")
	w, h = p.Layout(800, 600)
	test.T(t, w, scene.Width)
	test.T(t, h, scene.Height)

	test.That(t, p.Show(testSnapshot(), 7) != nil, "expected error for missing page")
	test.That(t, !p.IsRunning(), "preview should not be running")
}
