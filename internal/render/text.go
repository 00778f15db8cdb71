package render

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// defaultFontSize is the text frame font size in points.
const defaultFontSize = 12.0

// TextRenderer draws text frame content with the embedded Go font.
type TextRenderer struct {
	fontSource *text.GoTextFaceSource
	fontSize   float64
	mu         sync.RWMutex
}

// NewTextRenderer creates a new TextRenderer with the Go sans font.
func NewTextRenderer() *TextRenderer {
	fontSource, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		// This should never fail with the embedded font
		panic("failed to load embedded font: " + err.Error())
	}

	return &TextRenderer{
		fontSource: fontSource,
		fontSize:   defaultFontSize,
	}
}

// SetFontSize sets the font size in points.
func (tr *TextRenderer) SetFontSize(size float64) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.fontSize = size
}

// FontSize returns the current font size.
func (tr *TextRenderer) FontSize() float64 {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.fontSize
}

// DrawFrame renders the content of a text frame through the frame's
// screen matrix, aligned inside its base box.
func (tr *TextRenderer) DrawFrame(screen *ebiten.Image, s Shape, clr color.RGBA) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	face := &text.GoTextFace{
		Source: tr.fontSource,
		Size:   tr.fontSize,
	}

	x, y, primary, secondary := textOrigin(s.Item)
	op := &text.DrawOptions{}
	op.LineSpacing = tr.fontSize * 1.2
	op.PrimaryAlign = primary
	op.SecondaryAlign = secondary
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(geoM(s.Matrix))
	op.ColorScale.ScaleWithColor(clr)

	text.Draw(screen, s.Item.Text, face, op)
}

// textOrigin returns the anchor point of a text frame's content in base
// coordinates and the alignments that hang the text off it.
func textOrigin(it document.ItemSnapshot) (x, y float64, primary, secondary text.Align) {
	b := it.Base
	switch it.Align {
	case document.CenterAlign, document.CenterJustified:
		x, primary = b.Center().X, text.AlignCenter
	case document.RightAlign, document.RightJustified:
		x, primary = b.Right, text.AlignEnd
	default:
		x, primary = b.Left, text.AlignStart
	}
	switch it.VAlign {
	case document.CenterVertical:
		y, secondary = b.Center().Y, text.AlignCenter
	case document.BottomAlign:
		y, secondary = b.Bottom, text.AlignEnd
	default:
		y, secondary = b.Top, text.AlignStart
	}
	return x, y, primary, secondary
}

// geoM converts an affine matrix to Ebiten's GeoM.
func geoM(m geom.Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m.A)
	g.SetElement(0, 1, m.B)
	g.SetElement(0, 2, m.C)
	g.SetElement(1, 0, m.D)
	g.SetElement(1, 1, m.E)
	g.SetElement(1, 2, m.F)
	return g
}
