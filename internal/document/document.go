// Package document implements an in-memory page layout document: pages
// with margins and bleed, measurement units, and page items placed through
// an affine transform primitive.
//
// Geometry is stored in points. Every exported getter and setter speaks the
// document's current measurement units, so scripts can switch units at any
// time without touching existing items.
//
// A Document is safe for concurrent use: the sketch goroutine mutates it
// while preview and export read consistent Snapshots.
package document

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// Settings describes a new document. Lengths are in Units.
type Settings struct {
	Width, Height float64
	Margins       layout.Insets
	Bleed         layout.Insets
	Facing        bool
	Pages         int
	Units         Units
}

// DefaultSettings returns an A4 single-page document in points with
// 36 pt margins.
func DefaultSettings() Settings {
	return Settings{
		Width:   595.276,
		Height:  841.89,
		Margins: layout.Insets{Top: 36, Left: 36, Bottom: 36, Right: 36},
		Pages:   1,
		Units:   Points,
	}
}

// Location is where AddPage inserts a page.
type Location int

const (
	AtEnd Location = iota
	AtBeginning
	Before
	After
)

// ParseLocation converts a script name to a Location.
func ParseLocation(s string) (Location, error) {
	switch s {
	case "at_end", "end":
		return AtEnd, nil
	case "at_beginning", "beginning":
		return AtBeginning, nil
	case "before":
		return Before, nil
	case "after":
		return After, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
}

// Document is a paged layout document.
type Document struct {
	mu sync.RWMutex

	width, height float64 // points
	margins       layout.Insets
	bleed         layout.Insets
	facing        bool
	units         Units

	pages  []*Page
	nextID int
}

// New creates a document from s.
func New(s Settings) (*Document, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: page size %gx%g", ErrInvalidSettings, s.Width, s.Height)
	}
	if _, ok := unitNames[s.Units]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownUnits, s.Units)
	}
	pages := s.Pages
	if pages < 1 {
		pages = 1
	}

	k := s.Units.PointsPer()
	d := &Document{
		width:   s.Width * k,
		height:  s.Height * k,
		margins: scaleInsets(s.Margins, k),
		bleed:   scaleInsets(s.Bleed, k),
		facing:  s.Facing,
		units:   s.Units,
	}
	for i := 0; i < pages; i++ {
		d.pages = append(d.pages, d.newPage())
	}
	d.renumber()
	return d, nil
}

func scaleInsets(in layout.Insets, k float64) layout.Insets {
	return layout.Insets{Top: in.Top * k, Left: in.Left * k, Bottom: in.Bottom * k, Right: in.Right * k}
}

func (d *Document) newPage() *Page {
	return &Page{doc: d, margins: d.margins}
}

func (d *Document) renumber() {
	for i, p := range d.pages {
		p.index = i
	}
}

// Units returns the current measurement units.
func (d *Document) Units() Units {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.units
}

// SetUnits changes the measurement units used by every getter and setter.
func (d *Document) SetUnits(u Units) error {
	if _, ok := unitNames[u]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownUnits, u)
	}
	d.mu.Lock()
	d.units = u
	d.mu.Unlock()
	return nil
}

// Facing reports whether pages are arranged in spreads.
func (d *Document) Facing() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.facing
}

// PageSize returns the trimmed page size in current units.
func (d *Document) PageSize() (w, h float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.units.FromPoints(d.width), d.units.FromPoints(d.height)
}

// Bleed returns the document bleed in current units.
func (d *Document) Bleed() layout.Insets {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return scaleInsets(d.bleed, 1/d.units.PointsPer())
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.pages)
}

// Page returns the page with 1-based number n. Numbers below 1 select the
// first page.
func (d *Document) Page(n int) (*Page, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n < 1 {
		n = 1
	}
	if n > len(d.pages) {
		return nil, fmt.Errorf("%w: page %d", ErrPageNotFound, n)
	}
	return d.pages[n-1], nil
}

// Pages returns the pages in order.
func (d *Document) Pages() []*Page {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Page, len(d.pages))
	copy(out, d.pages)
	return out
}

// AddPage inserts a new page. ref is required for Before and After.
func (d *Document) AddPage(loc Location, ref *Page) (*Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.newPage()
	var at int
	switch loc {
	case AtEnd:
		at = len(d.pages)
	case AtBeginning:
		at = 0
	case Before, After:
		if !d.ownsLocked(ref) {
			return nil, fmt.Errorf("%w: reference page missing", ErrInvalidLocation)
		}
		at = ref.index
		if loc == After {
			at++
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidLocation, int(loc))
	}

	d.pages = append(d.pages, nil)
	copy(d.pages[at+1:], d.pages[at:])
	d.pages[at] = p
	d.renumber()
	return p, nil
}

// RemovePage deletes p and its items. The last remaining page cannot be
// removed.
func (d *Document) RemovePage(p *Page) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ownsLocked(p) {
		return fmt.Errorf("%w: page already removed", ErrPageNotFound)
	}
	if len(d.pages) == 1 {
		return ErrLastPage
	}
	i := p.index
	d.pages = append(d.pages[:i], d.pages[i+1:]...)
	for _, it := range p.items {
		it.removed = true
	}
	p.items = nil
	p.removed = true
	d.renumber()
	return nil
}

// Next returns the page after p, or p itself when it is the last page.
func (d *Document) Next(p *Page) *Page {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.ownsLocked(p) || p.index+1 >= len(d.pages) {
		return p
	}
	return d.pages[p.index+1]
}

// Previous returns the page before p, or p itself when it is the first page.
func (d *Document) Previous(p *Page) *Page {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.ownsLocked(p) || p.index == 0 {
		return p
	}
	return d.pages[p.index-1]
}

func (d *Document) ownsLocked(p *Page) bool {
	return p != nil && p.doc == d && !p.removed && p.index < len(d.pages) && d.pages[p.index] == p
}

// Geometry returns the canvas resolver's view of p in current units.
func (d *Document) Geometry(p *Page) (layout.PageGeometry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.ownsLocked(p) {
		return layout.PageGeometry{}, ErrPageNotFound
	}
	k := 1 / d.units.PointsPer()
	return layout.PageGeometry{
		Bounds:  geom.Bounds{Bottom: d.height * k, Right: d.width * k},
		Margins: scaleInsets(p.margins, k),
		Bleed:   scaleInsets(d.bleed, k),
		Name:    p.nameLocked(),
		Side:    p.sideLocked(),
	}, nil
}

// Page is one page of a Document.
type Page struct {
	doc     *Document
	index   int
	margins layout.Insets // points
	items   []*Item
	removed bool
}

// Name returns the page's 1-based number as text.
func (p *Page) Name() string {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	return p.nameLocked()
}

func (p *Page) nameLocked() string {
	return strconv.Itoa(p.index + 1)
}

// Number returns the page's 1-based position.
func (p *Page) Number() int {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	return p.index + 1
}

// Side returns the page's side within its spread. Facing documents start
// with a right-hand page.
func (p *Page) Side() layout.PageSide {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	return p.sideLocked()
}

func (p *Page) sideLocked() layout.PageSide {
	if !p.doc.facing {
		return layout.SideSingle
	}
	if p.index%2 == 0 {
		return layout.SideRight
	}
	return layout.SideLeft
}

// Margins returns the page margins in current units.
func (p *Page) Margins() layout.Insets {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	return scaleInsets(p.margins, 1/p.doc.units.PointsPer())
}

// SetMargins replaces the page margins, given in current units.
func (p *Page) SetMargins(m layout.Insets) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	p.margins = scaleInsets(m, p.doc.units.PointsPer())
}

// Bounds returns the page rectangle in current units.
func (p *Page) Bounds() geom.Bounds {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	k := 1 / p.doc.units.PointsPer()
	return geom.Bounds{Bottom: p.doc.height * k, Right: p.doc.width * k}
}

// Items returns the page's items in stacking order.
func (p *Page) Items() []*Item {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	out := make([]*Item, len(p.items))
	copy(out, p.items)
	return out
}

// Valid reports whether p still belongs to its document.
func (p *Page) Valid() bool {
	if p == nil {
		return false
	}
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	return p.doc.ownsLocked(p)
}
