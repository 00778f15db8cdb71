package document

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// Kind identifies the shape of a page item.
type Kind int

const (
	KindRect Kind = iota
	KindEllipse
	KindLine
	KindText
	KindImage
)

// String returns the item kind name.
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rectangle"
	case KindEllipse:
		return "oval"
	case KindLine:
		return "line"
	case KindText:
		return "text frame"
	case KindImage:
		return "image frame"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FitOption records how image content relates to its frame.
type FitOption int

const (
	FitNone FitOption = iota
	FitContentToFrame
	FitFrameToContent
	FitCenterContent
)

// ImageInfo describes placed image content.
type ImageInfo struct {
	Source      string
	PixelWidth  int
	PixelHeight int
	Format      string
	Fit         FitOption
}

// Item is a shape placed on a page.
//
// An item keeps its untransformed base shape and the affine map from base
// space to page space, both in points. For lines the base bounds hold the
// two endpoints as (y1, x1, y2, x2) without normalization.
type Item struct {
	id      int
	kind    Kind
	page    *Page
	base    geom.Bounds
	m       geom.Matrix
	removed bool

	text   string
	align  Justification
	valign VerticalJustification
	image  *ImageInfo
}

func (p *Page) addItem(kind Kind, b geom.Bounds) (*Item, error) {
	d := p.doc
	if !d.ownsLocked(p) {
		return nil, ErrPageNotFound
	}
	d.nextID++
	it := &Item{
		id:   d.nextID,
		kind: kind,
		page: p,
		base: b.Scale(d.units.PointsPer()),
		m:    geom.Identity(),
	}
	p.items = append(p.items, it)
	return it, nil
}

// AddRect creates a rectangle with bounds b in current units.
func (p *Page) AddRect(b geom.Bounds) (*Item, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.addItem(KindRect, b)
}

// AddEllipse creates an oval inscribed in b.
func (p *Page) AddEllipse(b geom.Bounds) (*Item, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.addItem(KindEllipse, b)
}

// AddLine creates a straight line from (x1, y1) to (x2, y2).
func (p *Page) AddLine(x1, y1, x2, y2 float64) (*Item, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.addItem(KindLine, geom.Bounds{Top: y1, Left: x1, Bottom: y2, Right: x2})
}

// AddText creates a text frame holding content.
func (p *Page) AddText(content string, b geom.Bounds, align Justification, valign VerticalJustification) (*Item, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	it, err := p.addItem(KindText, b)
	if err != nil {
		return nil, err
	}
	it.text = content
	it.align = align
	it.valign = valign
	return it, nil
}

// AddImage creates an image frame with bounds b showing info.
func (p *Page) AddImage(info ImageInfo, b geom.Bounds) (*Item, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	it, err := p.addItem(KindImage, b)
	if err != nil {
		return nil, err
	}
	it.image = &info
	return it, nil
}

// PlaceImage puts info into an existing rectangle, oval or image frame.
// The item keeps its kind and bounds; the content is not fitted.
func (it *Item) PlaceImage(info ImageInfo) error {
	if it == nil || it.page == nil {
		return ErrInvalidItem
	}
	d := it.page.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if !it.validLocked() {
		return ErrInvalidItem
	}
	switch it.kind {
	case KindRect, KindEllipse, KindImage:
	default:
		return ErrNotFrame
	}
	info.Fit = FitNone
	it.image = &info
	return nil
}

// ID returns a document-unique item number.
func (it *Item) ID() int { return it.id }

// Kind returns the item's shape kind.
func (it *Item) Kind() Kind { return it.kind }

// Page returns the page the item is placed on.
func (it *Item) Page() *Page { return it.page }

// Text returns the contents of a text frame.
func (it *Item) Text() string { return it.text }

// Image returns the placed image description, or nil when nothing is
// placed.
func (it *Item) Image() *ImageInfo {
	if it.image == nil {
		return nil
	}
	info := *it.image
	return &info
}

// Valid reports whether the item still exists in its document.
func (it *Item) Valid() bool {
	if it == nil || it.page == nil {
		return false
	}
	d := it.page.doc
	d.mu.RLock()
	defer d.mu.RUnlock()
	return it.validLocked()
}

func (it *Item) validLocked() bool {
	return !it.removed && it.page.doc.ownsLocked(it.page)
}

// Remove deletes the item from its page.
func (it *Item) Remove() error {
	if it == nil || it.page == nil {
		return ErrInvalidItem
	}
	d := it.page.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if !it.validLocked() {
		return ErrInvalidItem
	}
	items := it.page.items
	for i, other := range items {
		if other == it {
			it.page.items = append(items[:i], items[i+1:]...)
			break
		}
	}
	it.removed = true
	return nil
}

// GeometricBounds returns the axis-aligned bounds of the transformed shape
// in current units.
func (it *Item) GeometricBounds() (geom.Bounds, error) {
	if it == nil || it.page == nil {
		return geom.Bounds{}, ErrInvalidItem
	}
	d := it.page.doc
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !it.validLocked() {
		return geom.Bounds{}, ErrInvalidItem
	}
	return it.boundsLocked().Scale(1 / d.units.PointsPer()), nil
}

// boundsLocked returns the page-space bounds in points.
func (it *Item) boundsLocked() geom.Bounds {
	return itemBounds(it.kind, it.base, it.m)
}

func itemBounds(kind Kind, base geom.Bounds, m geom.Matrix) geom.Bounds {
	switch kind {
	case KindEllipse:
		c := m.Mult(base.Center())
		rx, ry := base.Width()/2, base.Height()/2
		hx := math.Hypot(m.A*rx, m.B*ry)
		hy := math.Hypot(m.D*rx, m.E*ry)
		return geom.Bounds{Top: c.Y - hy, Left: c.X - hx, Bottom: c.Y + hy, Right: c.X + hx}
	case KindLine:
		return geom.Enclose(
			m.Mult(geom.Vector{X: base.Left, Y: base.Top}),
			m.Mult(geom.Vector{X: base.Right, Y: base.Bottom}),
		)
	default:
		return geom.Enclose(corners(base, m)...)
	}
}

func corners(b geom.Bounds, m geom.Matrix) []geom.Vector {
	return []geom.Vector{
		m.Mult(geom.Vector{X: b.Left, Y: b.Top}),
		m.Mult(geom.Vector{X: b.Right, Y: b.Top}),
		m.Mult(geom.Vector{X: b.Right, Y: b.Bottom}),
		m.Mult(geom.Vector{X: b.Left, Y: b.Bottom}),
	}
}

// SetGeometricBounds stretches the item so its bounds become b, given in
// current units. An axis with zero current extent keeps its scale.
func (it *Item) SetGeometricBounds(b geom.Bounds) error {
	if it == nil || it.page == nil {
		return ErrInvalidItem
	}
	d := it.page.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if !it.validLocked() {
		return ErrInvalidItem
	}
	it.setBoundsLocked(b.Scale(d.units.PointsPer()))
	return nil
}

func (it *Item) setBoundsLocked(target geom.Bounds) {
	old := it.boundsLocked()
	sx, sy := 1.0, 1.0
	if w := old.Width(); w != 0 {
		sx = target.Width() / w
	}
	if h := old.Height(); h != 0 {
		sy = target.Height() / h
	}
	s := geom.Identity()
	s.Translate(target.Left, target.Top)
	s.Scale(sx, sy)
	s.Translate(-old.Left, -old.Top)
	it.m.PreApply(s)
}

// Move shifts the item by (dx, dy) in current units.
func (it *Item) Move(dx, dy float64) error {
	if it == nil || it.page == nil {
		return ErrInvalidItem
	}
	d := it.page.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if !it.validLocked() {
		return ErrInvalidItem
	}
	k := d.units.PointsPer()
	it.m.PreApply(geom.NewMatrix(1, 0, dx*k, 0, 1, dy*k))
	return nil
}

// Transform applies an affine map given in host order (a, d, b, e, c, f)
// around anchor. The linear part pivots around the anchor point of the
// current bounds and the translation part, in current units, offsets the
// result: p' = L(p - o) + o + t.
func (it *Item) Transform(anchor layout.Anchor, host [6]float64) error {
	if it == nil || it.page == nil {
		return ErrInvalidItem
	}
	d := it.page.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if !it.validLocked() {
		return ErrInvalidItem
	}

	m := geom.MatrixFromHostOrder(host)
	k := d.units.PointsPer()
	o := anchor.Point(it.boundsLocked())

	g := geom.Identity()
	g.Translate(o.X+m.C*k, o.Y+m.F*k)
	g.Apply(m.Linear())
	g.Translate(-o.X, -o.Y)
	it.m.PreApply(g)
	return nil
}

// FitFrameToContent resizes an image frame to the image's pixel size,
// one pixel per point, keeping its top-left corner.
func (it *Item) FitFrameToContent() error {
	return it.fit(FitFrameToContent)
}

// FitContentToFrame stretches the image to fill its frame.
func (it *Item) FitContentToFrame() error {
	return it.fit(FitContentToFrame)
}

// CenterContent centers the image in its frame without scaling.
func (it *Item) CenterContent() error {
	return it.fit(FitCenterContent)
}

func (it *Item) fit(opt FitOption) error {
	if it == nil || it.page == nil {
		return ErrInvalidItem
	}
	d := it.page.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if !it.validLocked() {
		return ErrInvalidItem
	}
	if it.image == nil {
		return ErrNotImage
	}
	it.image.Fit = opt
	if opt == FitFrameToContent && it.image.PixelWidth > 0 && it.image.PixelHeight > 0 {
		b := it.boundsLocked()
		it.setBoundsLocked(geom.Bounds{
			Top:    b.Top,
			Left:   b.Left,
			Bottom: b.Top + float64(it.image.PixelHeight),
			Right:  b.Left + float64(it.image.PixelWidth),
		})
	}
	return nil
}
