// Package geom provides the affine transform and point types shared by the
// sketch engine, the host document and the output writers.
//
// The matrix is represented as:
//
//	| a  b |   | x |   | c |
//	| d  e | * | y | + | f |
//
// Page space grows downward, so a positive rotation angle turns shapes
// clockwise on the page.
package geom

import "math"

// singularEpsilon is the smallest determinant magnitude Invert accepts.
const singularEpsilon = 1e-12

// Matrix is a 2D affine transformation.
type Matrix struct {
	A, B, C float64 // x' = A*x + B*y + C
	D, E, F float64 // y' = D*x + E*y + F
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// NewMatrix builds a matrix from its six coefficients.
func NewMatrix(a, b, c, d, e, f float64) Matrix {
	return Matrix{A: a, B: b, C: c, D: d, E: e, F: f}
}

// MatrixFromArray builds a matrix from a six element slice laid out as
// (a, b, c, d, e, f). It reports false when the slice has the wrong length.
func MatrixFromArray(v []float64) (Matrix, bool) {
	if len(v) != 6 {
		return Matrix{}, false
	}
	return Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}, true
}

// Reset sets the matrix to identity.
func (m *Matrix) Reset() {
	*m = Identity()
}

// Set overwrites all six coefficients.
func (m *Matrix) Set(a, b, c, d, e, f float64) {
	*m = Matrix{A: a, B: b, C: c, D: d, E: e, F: f}
}

// SetMatrix copies the coefficients of src into m.
func (m *Matrix) SetMatrix(src Matrix) {
	*m = src
}

// SetArray copies a six element (a, b, c, d, e, f) slice into m.
// Slices of any other length leave m unchanged and report false.
func (m *Matrix) SetArray(v []float64) bool {
	src, ok := MatrixFromArray(v)
	if ok {
		*m = src
	}
	return ok
}

// Get returns an independent copy of the matrix.
func (m *Matrix) Get() Matrix {
	return *m
}

// Array returns the coefficients as (a, b, c, d, e, f).
func (m Matrix) Array() []float64 {
	return []float64{m.A, m.B, m.C, m.D, m.E, m.F}
}

// HostOrder returns the coefficients in the host document's ordering
// (a, d, b, e, c, f).
func (m Matrix) HostOrder() [6]float64 {
	return [6]float64{m.A, m.D, m.B, m.E, m.C, m.F}
}

// MatrixFromHostOrder is the inverse of HostOrder.
func MatrixFromHostOrder(h [6]float64) Matrix {
	return Matrix{A: h[0], D: h[1], B: h[2], E: h[3], C: h[4], F: h[5]}
}

// Translate composes a translation in the current local frame.
func (m *Matrix) Translate(tx, ty float64) {
	m.C += tx*m.A + ty*m.B
	m.F += tx*m.D + ty*m.E
}

// InvTranslate undoes Translate(tx, ty).
func (m *Matrix) InvTranslate(tx, ty float64) {
	m.Translate(-tx, -ty)
}

// Scale composes a non-uniform scale. A zero factor would collapse the
// matrix and is ignored.
func (m *Matrix) Scale(sx, sy float64) {
	if sx == 0 || sy == 0 {
		return
	}
	m.A *= sx
	m.B *= sy
	m.D *= sx
	m.E *= sy
}

// ScaleUniform scales both axes by s.
func (m *Matrix) ScaleUniform(s float64) {
	m.Scale(s, s)
}

// InvScale undoes Scale(sx, sy).
func (m *Matrix) InvScale(sx, sy float64) {
	if sx == 0 || sy == 0 {
		return
	}
	m.Scale(1/sx, 1/sy)
}

// Rotate composes a rotation of angle radians.
func (m *Matrix) Rotate(angle float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)
	a, b := m.A, m.B
	m.A = c*a + s*b
	m.B = -s*a + c*b
	d, e := m.D, m.E
	m.D = c*d + s*e
	m.E = -s*d + c*e
}

// InvRotate undoes Rotate(angle).
func (m *Matrix) InvRotate(angle float64) {
	m.Rotate(-angle)
}

// Determinant returns a*e - b*d.
func (m Matrix) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invertible reports whether the determinant is finite and not degenerate.
func (m Matrix) Invertible() bool {
	det := m.Determinant()
	return !math.IsNaN(det) && !math.IsInf(det, 0) && math.Abs(det) >= singularEpsilon
}

// Invert replaces m with its inverse. It reports false and leaves m
// untouched when the matrix is singular or not finite.
func (m *Matrix) Invert() bool {
	if !m.Invertible() {
		return false
	}
	det := m.Determinant()
	old := *m
	m.A = old.E / det
	m.D = -old.D / det
	m.B = -old.B / det
	m.E = old.A / det
	m.C = (old.B*old.F - old.E*old.C) / det
	m.F = (old.D*old.C - old.A*old.F) / det
	return true
}

// Inverse returns the inverse of m without modifying it.
func (m Matrix) Inverse() (Matrix, bool) {
	inv := m
	ok := inv.Invert()
	return inv, ok
}

// Apply post-multiplies m by src, so src acts first on points:
// m = m * src.
func (m *Matrix) Apply(src Matrix) {
	*m = Multiply(*m, src)
}

// ApplyArray is Apply with a six element (a, b, c, d, e, f) slice.
func (m *Matrix) ApplyArray(v []float64) bool {
	src, ok := MatrixFromArray(v)
	if ok {
		m.Apply(src)
	}
	return ok
}

// PreApply pre-multiplies m by src, so src acts last on points:
// m = src * m.
func (m *Matrix) PreApply(src Matrix) {
	*m = Multiply(src, *m)
}

// PreApplyArray is PreApply with a six element slice.
func (m *Matrix) PreApplyArray(v []float64) bool {
	src, ok := MatrixFromArray(v)
	if ok {
		m.PreApply(src)
	}
	return ok
}

// Multiply returns the 2x3 product l * r with an implicit (0, 0, 1) third
// row. Applying the result to a point applies r first, then l.
func Multiply(l, r Matrix) Matrix {
	return Matrix{
		A: l.A*r.A + l.B*r.D,
		B: l.A*r.B + l.B*r.E,
		C: l.A*r.C + l.B*r.F + l.C,
		D: l.D*r.A + l.E*r.D,
		E: l.D*r.B + l.E*r.E,
		F: l.D*r.C + l.E*r.F + l.F,
	}
}

// MultX returns the transformed x coordinate of (x, y).
func (m Matrix) MultX(x, y float64) float64 {
	return x*m.A + y*m.B + m.C
}

// MultY returns the transformed y coordinate of (x, y).
func (m Matrix) MultY(x, y float64) float64 {
	return x*m.D + y*m.E + m.F
}

// Transform maps the point (x, y).
func (m Matrix) Transform(x, y float64) (float64, float64) {
	return m.MultX(x, y), m.MultY(x, y)
}

// Mult maps v and returns a new vector with Z set to 0.
func (m Matrix) Mult(v Vector) Vector {
	var out Vector
	m.MultInto(v, &out)
	return out
}

// MultInto maps src and writes the result to dst. Z is ignored on input
// and set to 0 on output.
func (m Matrix) MultInto(src Vector, dst *Vector) {
	x, y := src.X, src.Y
	dst.X = m.MultX(x, y)
	dst.Y = m.MultY(x, y)
	dst.Z = 0
}

// MultArray maps the point held in src[0], src[1] into dst. A nil or
// short dst is replaced by a new two element slice.
func (m Matrix) MultArray(src, dst []float64) []float64 {
	if len(src) < 2 {
		return dst
	}
	if len(dst) < 2 {
		dst = make([]float64, 2)
	}
	x, y := src[0], src[1]
	dst[0] = m.MultX(x, y)
	dst[1] = m.MultY(x, y)
	return dst
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Equal reports whether every coefficient of m and o differs by at most tol.
func (m Matrix) Equal(o Matrix, tol float64) bool {
	a, b := m.Array(), o.Array()
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// Linear returns m without its translation part.
func (m Matrix) Linear() Matrix {
	m.C, m.F = 0, 0
	return m
}
