package export

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/tdewolff/test"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

func testSnapshot() document.Snapshot {
	rotated := geom.Identity()
	rotated.Translate(50, 50)
	rotated.Rotate(math.Pi / 6)

	return document.Snapshot{
		Width:  200,
		Height: 100,
		Bleed:  layout.Insets{Top: 5, Left: 5, Bottom: 5, Right: 5},
		Pages: []document.PageSnapshot{
			{
				Name: "1",
				Items: []document.ItemSnapshot{
					{ID: 1, Kind: document.KindRect, Base: geom.Bounds{Top: 10, Left: 10, Bottom: 30, Right: 60}, Matrix: geom.Identity()},
					{ID: 2, Kind: document.KindEllipse, Base: geom.Bounds{Top: -10, Left: -20, Bottom: 10, Right: 20}, Matrix: rotated},
					{ID: 3, Kind: document.KindLine, Base: geom.Bounds{Top: 90, Left: 0, Bottom: 0, Right: 200}, Matrix: geom.Identity()},
				},
			},
			{
				Name: "2",
				Items: []document.ItemSnapshot{
					{ID: 4, Kind: document.KindText, Text: "a&b", Base: geom.Bounds{Top: 10, Left: 10, Bottom: 40, Right: 110},
						Align: document.CenterAlign, Matrix: geom.NewMatrix(1, 0, 10, 0, 1, 0)},
					{ID: 5, Kind: document.KindImage, Base: geom.Bounds{Top: 50, Left: 10, Bottom: 90, Right: 50}, Matrix: geom.Identity(),
						Image: &document.ImageInfo{Source: "img/dot.png", PixelWidth: 4, PixelHeight: 4, Format: "png"}},
				},
			},
		},
	}
}

func testAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return fstest.MapFS{"img/dot.png": {Data: buf.Bytes()}}
}

func TestPDFMatrix(t *testing.T) {
	const h = 100.0
	test.T(t, pdfMatrix(geom.Identity(), h).E, 0.0)
	test.T(t, pdfMatrix(geom.Identity(), h).F, 0.0)

	m := geom.Identity()
	m.Translate(10, 20)
	m.Rotate(0.4)
	m.Scale(2, 3)
	tm := pdfMatrix(m, h)

	// The content stream flips y; tm must act on flipped points the way m
	// acts on y-down points.
	for _, p := range []geom.Vector{{X: 0, Y: 0}, {X: 7, Y: 3}, {X: -4, Y: 12}} {
		fx, fy := p.X, h-p.Y
		gx := tm.A*fx + tm.C*fy + tm.E
		gy := tm.B*fx + tm.D*fy + tm.F

		want := m.Mult(p)
		test.Float(t, gx, want.X)
		test.Float(t, gy, h-want.Y)
	}
}

func TestWritePDF(t *testing.T) {
	var plain, embedded bytes.Buffer
	test.Error(t, WritePDF(&plain, testSnapshot(), Options{Title: "poster"}))
	test.Error(t, WritePDF(&embedded, testSnapshot(), Options{Assets: testAssets(t), Bleed: true}))

	test.That(t, strings.HasPrefix(plain.String(), "%PDF-"), "missing PDF header")
	test.That(t, strings.Contains(strings.TrimSpace(plain.String()), "%%EOF"), "missing PDF trailer")
	test.That(t, !strings.Contains(plain.String(), "/Subtype /Image"), "image embedded without assets")
	test.That(t, strings.Contains(embedded.String(), "/Subtype /Image"), "image not embedded")
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	test.Error(t, WriteSVG(&buf, testSnapshot(), Options{Assets: testAssets(t)}))
	out := buf.String()

	for _, want := range []string{
		"<svg",
		`viewBox="0 0 20000 22400"`,
		`<g transform="matrix(1 0 0 1 0 0)">`,
		`<g transform="matrix(1 0 0 1 1000 12400)">`,
		"a&amp;b",
		"text-anchor:middle",
		"data:image/png;base64,",
		"</svg>",
	} {
		test.That(t, strings.Contains(out, want), "missing", want)
	}
}

func TestWriteSVGLinksMissingAssets(t *testing.T) {
	var buf bytes.Buffer
	test.Error(t, WriteSVG(&buf, testSnapshot(), Options{}))
	test.That(t, strings.Contains(buf.String(), "img/dot.png"), "image should link to its source")
}

func TestImagePlacedInShape(t *testing.T) {
	snap := document.Snapshot{
		Width:  100,
		Height: 100,
		Pages: []document.PageSnapshot{{
			Name: "1",
			Items: []document.ItemSnapshot{
				{ID: 1, Kind: document.KindEllipse, Base: geom.Bounds{Top: 10, Left: 10, Bottom: 50, Right: 90}, Matrix: geom.Identity(),
					Image: &document.ImageInfo{Source: "img/dot.png", PixelWidth: 4, PixelHeight: 4, Format: "png"}},
			},
		}},
	}

	var svg bytes.Buffer
	test.Error(t, WriteSVG(&svg, snap, Options{Assets: testAssets(t)}))
	test.That(t, strings.Contains(svg.String(), "<image"), "placed image missing")
	test.That(t, strings.Contains(svg.String(), "<ellipse"), "frame outline missing")

	var pdf bytes.Buffer
	test.Error(t, WritePDF(&pdf, snap, Options{Assets: testAssets(t)}))
	test.That(t, strings.Contains(pdf.String(), "/Subtype /Image"), "placed image not embedded")
}

func TestSVGSpreads(t *testing.T) {
	snap := testSnapshot()
	snap.Facing = true
	snap.Pages = append(snap.Pages, document.PageSnapshot{Name: "3", Side: layout.SideRight})
	snap.Pages[0].Side = layout.SideRight
	snap.Pages[1].Side = layout.SideLeft

	var buf bytes.Buffer
	test.Error(t, WriteSVG(&buf, snap, Options{Spreads: true}))
	// two sheets: page 1 alone, then pages 2 and 3 side by side
	test.That(t, strings.Contains(buf.String(), `viewBox="0 0 40000 22400"`), "unexpected sheet layout")
}

func TestTextAnchor(t *testing.T) {
	it := document.ItemSnapshot{Base: geom.Bounds{Top: 0, Left: 0, Bottom: 100, Right: 50}}

	x, y, anchor := textAnchor(it)
	test.Float(t, x, 0)
	test.Float(t, y, fontSize)
	test.String(t, anchor, "start")

	it.Align, it.VAlign = document.RightJustified, document.BottomAlign
	x, y, anchor = textAnchor(it)
	test.Float(t, x, 50)
	test.Float(t, y, 100-fontSize*0.25)
	test.String(t, anchor, "end")
}

func TestPDFAlign(t *testing.T) {
	test.String(t, pdfAlign(document.LeftAlign, document.TopAlign), "LT")
	test.String(t, pdfAlign(document.CenterJustified, document.CenterVertical), "CM")
	test.String(t, pdfAlign(document.RightAlign, document.BottomAlign), "RB")
	test.String(t, pdfAlign(document.FullyJustified, document.JustifyVertical), "LT")
}

func TestFormatForPath(t *testing.T) {
	test.String(t, FormatForPath("out/poster.PDF"), "pdf")
	test.String(t, FormatForPath("poster.svg"), "svg")
	test.String(t, FormatForPath("poster.png"), "")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "poster.svg")
	test.Error(t, Export(testSnapshot(), path, Options{}))
	data, err := os.ReadFile(path)
	test.Error(t, err)
	test.That(t, bytes.Contains(data, []byte("<svg")), "not an SVG file")

	path = filepath.Join(dir, "poster.out")
	test.Error(t, Export(testSnapshot(), path, Options{Format: "pdf"}))
	data, err = os.ReadFile(path)
	test.Error(t, err)
	test.That(t, bytes.HasPrefix(data, []byte("%PDF-")), "not a PDF file")

	path = filepath.Join(dir, "poster.png")
	err = Export(testSnapshot(), path, Options{})
	test.That(t, errors.Is(err, ErrUnknownFormat), "expected ErrUnknownFormat, got", err)
	_, err = os.Stat(path)
	test.That(t, os.IsNotExist(err), "file created for unknown format")
}

func TestWriteEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, document.Snapshot{Width: 10, Height: 10}, "pdf", Options{}); err == nil {
		t.Error("expected error for document without pages")
	}
	if err := Write(&buf, testSnapshot(), "eps", Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(eps) = %v", err)
	}
}
