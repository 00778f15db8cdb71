package export

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// svgo takes integer coordinates, so SVG output works in hundredths of a
// point.
const svgScale = 100

// sheetGap separates stacked sheets in the SVG output.
const sheetGap = 24.0

const (
	pageStyle  = "fill:white;stroke:#999999;stroke-width:50"
	shapeStyle = "fill:none;stroke:black;stroke-width:50"
)

// WriteSVG writes all sheets into a single SVG image, stacked top to
// bottom.
func WriteSVG(w io.Writer, snap document.Snapshot, opts Options) error {
	sheets := snap.Sheets(opts.Spreads, opts.Bleed)
	if len(sheets) == 0 {
		return fmt.Errorf("document has no pages")
	}

	var width, height float64
	for i, s := range sheets {
		width = max(width, s.Width)
		height += s.Height
		if i > 0 {
			height += sheetGap
		}
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startraw(
		fmt.Sprintf(`width="%gpt"`, width),
		fmt.Sprintf(`height="%gpt"`, height),
		fmt.Sprintf(`viewBox="0 0 %d %d"`, cp(width), cp(height)),
	)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	sw := &svgWriter{canvas: canvas, assets: opts}
	var y float64
	for _, sheet := range sheets {
		sw.sheet(sheet, y)
		y += sheet.Height + sheetGap
	}
	canvas.End()
	return ew.err
}

type svgWriter struct {
	canvas *svg.SVG
	assets Options
}

func (sw *svgWriter) sheet(sheet document.Sheet, y float64) {
	c := sw.canvas
	c.Rect(0, cp(y), cp(sheet.Width), cp(sheet.Height), pageStyle)
	for _, placed := range sheet.Pages {
		offset := geom.NewMatrix(1, 0, placed.Offset[0], 0, 1, y+placed.Offset[1])
		for _, it := range placed.Page.Items {
			m := geom.Multiply(offset, it.Matrix)
			c.Gtransform(svgMatrix(m))
			sw.item(it)
			c.Gend()
		}
	}
}

func (sw *svgWriter) item(it document.ItemSnapshot) {
	c := sw.canvas
	b := it.Base
	switch it.Kind {
	case document.KindRect:
		sw.placed(it)
		c.Rect(cp(b.Left), cp(b.Top), cp(b.Width()), cp(b.Height()), shapeStyle)
	case document.KindEllipse:
		sw.placed(it)
		ctr := b.Center()
		c.Ellipse(cp(ctr.X), cp(ctr.Y), cp(b.Width()/2), cp(b.Height()/2), shapeStyle)
	case document.KindLine:
		c.Line(cp(b.Left), cp(b.Top), cp(b.Right), cp(b.Bottom), shapeStyle)
	case document.KindText:
		x, y, anchor := textAnchor(it)
		c.Text(cp(x), cp(y), it.Text,
			fmt.Sprintf("font-family:Helvetica,sans-serif;font-size:%d;text-anchor:%s", cp(fontSize), anchor))
	case document.KindImage:
		href := sw.href(it.Image)
		if href == "" {
			c.Rect(cp(b.Left), cp(b.Top), cp(b.Width()), cp(b.Height()), shapeStyle)
			c.Line(cp(b.Left), cp(b.Top), cp(b.Right), cp(b.Bottom), shapeStyle)
			c.Line(cp(b.Left), cp(b.Bottom), cp(b.Right), cp(b.Top), shapeStyle)
			return
		}
		c.Image(cp(b.Left), cp(b.Top), cp(b.Width()), cp(b.Height()), href, `preserveAspectRatio="none"`)
	}
}

// placed draws image content put into a rectangle or oval.
func (sw *svgWriter) placed(it document.ItemSnapshot) {
	href := sw.href(it.Image)
	if href == "" {
		return
	}
	b := it.Base
	sw.canvas.Image(cp(b.Left), cp(b.Top), cp(b.Width()), cp(b.Height()), href, `preserveAspectRatio="none"`)
}

// href embeds readable assets as data URIs and links the rest by source
// name. It returns "" when there is nothing to link.
func (sw *svgWriter) href(info *document.ImageInfo) string {
	if info == nil || info.Source == "" {
		return ""
	}
	data := readAsset(sw.assets.Assets, info)
	if data == nil {
		return info.Source
	}
	mt := mime.TypeByExtension("." + strings.ToLower(info.Format))
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// textAnchor returns the baseline origin and text-anchor for a text frame.
func textAnchor(it document.ItemSnapshot) (x, y float64, anchor string) {
	b := it.Base
	switch it.Align {
	case document.CenterAlign, document.CenterJustified:
		x, anchor = b.Center().X, "middle"
	case document.RightAlign, document.RightJustified:
		x, anchor = b.Right, "end"
	default:
		x, anchor = b.Left, "start"
	}
	switch it.VAlign {
	case document.CenterVertical:
		y = b.Center().Y + fontSize*0.35
	case document.BottomAlign:
		y = b.Bottom - fontSize*0.25
	default:
		y = b.Top + fontSize
	}
	return x, y, anchor
}

// svgMatrix renders m for a group whose content is in centi-points. The
// linear part is unit free; only the translation is scaled.
func svgMatrix(m geom.Matrix) string {
	return fmt.Sprintf("matrix(%g %g %g %g %g %g)",
		m.A, m.D, m.B, m.E, m.C*svgScale, m.F*svgScale)
}

func cp(v float64) int {
	if v < 0 {
		return int(v*svgScale - 0.5)
	}
	return int(v*svgScale + 0.5)
}

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
