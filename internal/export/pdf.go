package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// WritePDF writes one PDF page per sheet. Coordinates are points.
func WritePDF(w io.Writer, snap document.Snapshot, opts Options) error {
	sheets := snap.Sheets(opts.Spreads, opts.Bleed)
	if len(sheets) == 0 {
		return fmt.Errorf("document has no pages")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: sheets[0].Width, Ht: sheets[0].Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("pagesketch", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}

	pw := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		assets: opts,
		images: make(map[string]string),
	}
	for _, sheet := range sheets {
		pw.sheet(sheet)
		if pdf.Err() {
			return pdf.Error()
		}
	}
	return pdf.Output(w)
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	assets Options
	// images maps a source to its registered fpdf image type, or "" when it
	// could not be embedded.
	images map[string]string
}

func (pw *pdfWriter) sheet(sheet document.Sheet) {
	pdf := pw.pdf
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: sheet.Width, Ht: sheet.Height})
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetLineWidth(strokeWidth)
	pdf.SetFont("Helvetica", "", fontSize)

	for _, placed := range sheet.Pages {
		offset := geom.NewMatrix(1, 0, placed.Offset[0], 0, 1, placed.Offset[1])
		for _, it := range placed.Page.Items {
			m := geom.Multiply(offset, it.Matrix)
			pdf.TransformBegin()
			pdf.Transform(pdfMatrix(m, sheet.Height))
			pw.item(it)
			pdf.TransformEnd()
		}
	}
}

func (pw *pdfWriter) item(it document.ItemSnapshot) {
	pdf := pw.pdf
	b := it.Base
	switch it.Kind {
	case document.KindRect:
		pw.placed(it)
		pdf.Rect(b.Left, b.Top, b.Width(), b.Height(), "D")
	case document.KindEllipse:
		pw.placed(it)
		c := b.Center()
		pdf.Ellipse(c.X, c.Y, b.Width()/2, b.Height()/2, 0, "D")
	case document.KindLine:
		pdf.Line(b.Left, b.Top, b.Right, b.Bottom)
	case document.KindText:
		pdf.SetXY(b.Left, b.Top)
		pdf.CellFormat(b.Width(), b.Height(), pw.tr(it.Text), "", 0,
			pdfAlign(it.Align, it.VAlign), false, 0, "")
	case document.KindImage:
		pw.image(it)
	}
}

func (pw *pdfWriter) image(it document.ItemSnapshot) {
	if !pw.placed(it) {
		placeholder(pw.pdf, it.Base)
	}
}

// placed draws the item's image content over its base box and reports
// whether there was anything to draw.
func (pw *pdfWriter) placed(it document.ItemSnapshot) bool {
	imageType := pw.register(it.Image)
	if imageType == "" {
		return false
	}
	b := it.Base
	opts := fpdf.ImageOptions{ImageType: imageType, AllowNegativePosition: true}
	pw.pdf.ImageOptions(it.Image.Source, b.Left, b.Top, b.Width(), b.Height(), false, opts, 0, "")
	return true
}

// register embeds an image source once and returns its fpdf type.
func (pw *pdfWriter) register(info *document.ImageInfo) string {
	if info == nil {
		return ""
	}
	if t, ok := pw.images[info.Source]; ok {
		return t
	}
	t := pdfImageType(info.Format)
	if t != "" {
		data := readAsset(pw.assets.Assets, info)
		if data == nil {
			t = ""
		} else {
			pw.pdf.RegisterImageOptionsReader(info.Source, fpdf.ImageOptions{ImageType: t}, bytes.NewReader(data))
			if pw.pdf.Err() {
				// A broken image is not worth losing the whole document.
				pw.pdf.ClearError()
				t = ""
			}
		}
	}
	pw.images[info.Source] = t
	return t
}

// placeholder draws an empty image frame with crossed diagonals.
func placeholder(pdf *fpdf.Fpdf, b geom.Bounds) {
	pdf.Rect(b.Left, b.Top, b.Width(), b.Height(), "D")
	pdf.Line(b.Left, b.Top, b.Right, b.Bottom)
	pdf.Line(b.Left, b.Bottom, b.Right, b.Top)
}

func pdfImageType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "JPG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	}
	return ""
}

func pdfAlign(h document.Justification, v document.VerticalJustification) string {
	var s string
	switch h {
	case document.CenterAlign, document.CenterJustified:
		s = "C"
	case document.RightAlign, document.RightJustified:
		s = "R"
	default:
		s = "L"
	}
	switch v {
	case document.CenterVertical:
		s += "M"
	case document.BottomAlign:
		s += "B"
	default:
		s += "T"
	}
	return s
}

// pdfMatrix converts a y-down item matrix into the content stream matrix
// fpdf expects for a page of height h. fpdf flips user coordinates with
// (x, h-y) on output, so the result is flip * m * flip.
func pdfMatrix(m geom.Matrix, h float64) fpdf.TransformMatrix {
	return fpdf.TransformMatrix{
		A: m.A,
		B: -m.D,
		C: -m.B,
		D: m.E,
		E: m.B*h + m.C,
		F: h - m.E*h - m.F,
	}
}
