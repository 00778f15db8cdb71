package sketch

import (
	"reflect"

	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// itemPrecision is the number of decimals item geometry is rounded to.
const itemPrecision = 5

// Item is anything with geometric bounds that can be moved and resized.
type Item interface {
	GeometricBounds() (geom.Bounds, error)
	SetGeometricBounds(geom.Bounds) error
}

// Extent is the bounds record returned to scripts.
type Extent struct {
	Width, Height            float64
	Left, Right, Top, Bottom float64
}

// ExtentOf describes b as an Extent.
func ExtentOf(b geom.Bounds) Extent {
	return Extent{
		Width:  b.Width(),
		Height: b.Height(),
		Left:   b.Left,
		Right:  b.Right,
		Top:    b.Top,
		Bottom: b.Bottom,
	}
}

func round(v float64) float64 {
	return geom.Precision(v, itemPrecision)
}

func isNil(it Item) bool {
	if it == nil {
		return true
	}
	v := reflect.ValueOf(it)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func bounds(op string, it Item) (geom.Bounds, error) {
	if isNil(it) {
		return geom.Bounds{}, invalidItem(op)
	}
	b, err := it.GeometricBounds()
	if err != nil {
		return geom.Bounds{}, invalidItem(op)
	}
	return b, nil
}

func setBounds(op string, it Item, b geom.Bounds) error {
	b = geom.Bounds{Top: round(b.Top), Left: round(b.Left), Bottom: round(b.Bottom), Right: round(b.Right)}
	if err := it.SetGeometricBounds(b); err != nil {
		return invalidItem(op)
	}
	return nil
}

func invalidItem(op string) error {
	return &FatalError{Op: op, Err: &ContractError{Op: op, Msg: "item has to be a valid page item"}}
}

// ItemX returns the left edge of it.
func ItemX(it Item) (float64, error) {
	b, err := bounds("itemX", it)
	return round(b.Left), err
}

// SetItemX moves it horizontally so its left edge is x.
func SetItemX(it Item, x float64) error {
	b, err := bounds("itemX", it)
	if err != nil {
		return err
	}
	return setPosition("itemX", it, b, x, b.Top)
}

// ItemY returns the top edge of it.
func ItemY(it Item) (float64, error) {
	b, err := bounds("itemY", it)
	return round(b.Top), err
}

// SetItemY moves it vertically so its top edge is y.
func SetItemY(it Item, y float64) error {
	b, err := bounds("itemY", it)
	if err != nil {
		return err
	}
	return setPosition("itemY", it, b, b.Left, y)
}

// ItemWidth returns the width of it.
func ItemWidth(it Item) (float64, error) {
	b, err := bounds("itemWidth", it)
	return round(b.Width()), err
}

// SetItemWidth resizes it to width w, keeping its height and top-left.
func SetItemWidth(it Item, w float64) error {
	b, err := bounds("itemWidth", it)
	if err != nil {
		return err
	}
	return setSize("itemWidth", it, b, w, b.Height())
}

// ItemHeight returns the height of it.
func ItemHeight(it Item) (float64, error) {
	b, err := bounds("itemHeight", it)
	return round(b.Height()), err
}

// SetItemHeight resizes it to height h, keeping its width and top-left.
func SetItemHeight(it Item, h float64) error {
	b, err := bounds("itemHeight", it)
	if err != nil {
		return err
	}
	return setSize("itemHeight", it, b, b.Width(), h)
}

// ItemPosition returns the top-left corner of it.
func ItemPosition(it Item) (x, y float64, err error) {
	b, err := bounds("itemPosition", it)
	return round(b.Left), round(b.Top), err
}

// SetItemPosition moves it so its top-left corner is (x, y), keeping its
// size.
func SetItemPosition(it Item, x, y float64) error {
	b, err := bounds("itemPosition", it)
	if err != nil {
		return err
	}
	return setPosition("itemPosition", it, b, x, y)
}

func setPosition(op string, it Item, b geom.Bounds, x, y float64) error {
	w, h := b.Width(), b.Height()
	return setBounds(op, it, geom.Bounds{Top: y, Left: x, Bottom: y + h, Right: x + w})
}

// ItemSize returns the width and height of it.
func ItemSize(it Item) (w, h float64, err error) {
	b, err := bounds("itemSize", it)
	return round(b.Width()), round(b.Height()), err
}

// SetItemSize resizes it to w by h, keeping its top-left corner.
func SetItemSize(it Item, w, h float64) error {
	b, err := bounds("itemSize", it)
	if err != nil {
		return err
	}
	return setSize("itemSize", it, b, w, h)
}

func setSize(op string, it Item, b geom.Bounds, w, h float64) error {
	return setBounds(op, it, geom.Bounds{Top: b.Top, Left: b.Left, Bottom: b.Top + h, Right: b.Left + w})
}

// ItemBounds returns the full bounds record of it.
func ItemBounds(it Item) (Extent, error) {
	b, err := bounds("bounds", it)
	if err != nil {
		return Extent{}, err
	}
	return ExtentOf(b), nil
}
