package geom

import "math"

// Vector is a point or direction. Z is carried for script compatibility
// and is never used by the 2D transforms.
type Vector struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Len returns the 2D length of v.
func (v Vector) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Bounds is an axis-aligned rectangle stored in the host document's
// (y1, x1, y2, x2) order.
type Bounds struct {
	Top, Left, Bottom, Right float64
}

// BoundsFromArray reads a (y1, x1, y2, x2) slice.
func BoundsFromArray(v []float64) (Bounds, bool) {
	if len(v) != 4 {
		return Bounds{}, false
	}
	return Bounds{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}, true
}

// Array returns the bounds as (y1, x1, y2, x2).
func (b Bounds) Array() []float64 {
	return []float64{b.Top, b.Left, b.Bottom, b.Right}
}

// Width returns Right - Left.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns Bottom - Top.
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

// TopLeft returns the (Left, Top) corner.
func (b Bounds) TopLeft() Vector { return Vector{X: b.Left, Y: b.Top} }

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Vector {
	return Vector{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Translate returns b shifted by (dx, dy).
func (b Bounds) Translate(dx, dy float64) Bounds {
	return Bounds{Top: b.Top + dy, Left: b.Left + dx, Bottom: b.Bottom + dy, Right: b.Right + dx}
}

// Scale returns b with every edge multiplied by k.
func (b Bounds) Scale(k float64) Bounds {
	return Bounds{Top: b.Top * k, Left: b.Left * k, Bottom: b.Bottom * k, Right: b.Right * k}
}

// Normalize returns b with Top <= Bottom and Left <= Right.
func (b Bounds) Normalize() Bounds {
	if b.Top > b.Bottom {
		b.Top, b.Bottom = b.Bottom, b.Top
	}
	if b.Left > b.Right {
		b.Left, b.Right = b.Right, b.Left
	}
	return b
}

// Enclose returns the smallest bounds containing all points.
// It returns the zero Bounds for an empty slice.
func Enclose(pts ...Vector) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{Top: pts[0].Y, Left: pts[0].X, Bottom: pts[0].Y, Right: pts[0].X}
	for _, p := range pts[1:] {
		b.Top = math.Min(b.Top, p.Y)
		b.Bottom = math.Max(b.Bottom, p.Y)
		b.Left = math.Min(b.Left, p.X)
		b.Right = math.Max(b.Right, p.X)
	}
	return b
}
