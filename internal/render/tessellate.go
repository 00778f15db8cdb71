package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/opd-ai/go-pagesketch/internal/geom"
)

const strokeWidth = 1

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// whitePixel returns a 1x1 white source image for DrawTriangles.
func whitePixel() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// polygonPath builds a vector path through pts.
func polygonPath(pts []geom.Vector, closed bool) *vector.Path {
	var path vector.Path
	for i, p := range pts {
		if i == 0 {
			path.MoveTo(float32(p.X), float32(p.Y))
		} else {
			path.LineTo(float32(p.X), float32(p.Y))
		}
	}
	if closed && len(pts) > 2 {
		path.Close()
	}
	return &path
}

// fillTriangles tessellates the interior of pts.
func fillTriangles(pts []geom.Vector) ([]ebiten.Vertex, []uint16) {
	if len(pts) < 3 {
		return nil, nil
	}
	return polygonPath(pts, true).AppendVerticesAndIndicesForFilling(nil, nil)
}

// strokeTriangles tessellates the outline of pts.
func strokeTriangles(pts []geom.Vector, closed bool, width float32) ([]ebiten.Vertex, []uint16) {
	if len(pts) < 2 {
		return nil, nil
	}
	op := &vector.StrokeOptions{
		Width:      width,
		LineJoin:   vector.LineJoinMiter,
		LineCap:    vector.LineCapButt,
		MiterLimit: 4,
	}
	return polygonPath(pts, closed).AppendVerticesAndIndicesForStroke(nil, nil, op)
}

func drawTriangles(dst *ebiten.Image, vs []ebiten.Vertex, is []uint16, clr color.RGBA, fillRule ebiten.FillRule) {
	if len(is) == 0 {
		return
	}
	r, g, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		// color.RGBA is already alpha-premultiplied, as Ebiten expects.
		vs[i].ColorR = r
		vs[i].ColorG = g
		vs[i].ColorB = b
		vs[i].ColorA = a
	}
	op := &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		FillRule:  fillRule,
	}
	dst.DrawTriangles(vs, is, whitePixel(), op)
}

// drawShape fills closed outlines, then strokes them.
func drawShape(dst *ebiten.Image, s Shape, fill, stroke color.RGBA) {
	if s.Closed {
		vs, is := fillTriangles(s.Points)
		drawTriangles(dst, vs, is, fill, ebiten.FillRuleNonZero)
	}
	vs, is := strokeTriangles(s.Points, s.Closed, strokeWidth)
	drawTriangles(dst, vs, is, stroke, ebiten.FillRuleNonZero)
}

// strokeBounds outlines an axis-aligned rectangle.
func strokeBounds(dst *ebiten.Image, b geom.Bounds, clr color.RGBA) {
	vector.StrokeRect(dst, float32(b.Left), float32(b.Top), float32(b.Width()), float32(b.Height()), strokeWidth, clr, true)
}

// fillBounds fills an axis-aligned rectangle.
func fillBounds(dst *ebiten.Image, b geom.Bounds, clr color.RGBA) {
	vector.DrawFilledRect(dst, float32(b.Left), float32(b.Top), float32(b.Width()), float32(b.Height()), clr, true)
}
