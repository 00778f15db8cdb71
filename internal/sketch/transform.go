package sketch

import (
	"fmt"

	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// Matrix returns a copy of the live transform.
func (s *Session) Matrix() geom.Matrix {
	return s.matrix.Get()
}

// StackDepth returns the number of unpopped pushMatrix calls.
func (s *Session) StackDepth() int {
	return s.stack.Len()
}

// PushMatrix saves the live transform.
func (s *Session) PushMatrix() {
	s.stack.Push(s.matrix.Get())
}

// PopMatrix restores the most recently pushed transform. An empty stack is
// fatal.
func (s *Session) PopMatrix() error {
	m, err := s.stack.Pop()
	if err != nil {
		return fatal("popMatrix", err)
	}
	s.matrix.SetMatrix(m)
	return nil
}

// ResetMatrix drops every pushed transform and sets the live transform to
// identity. In margin and bleed mode this also drops the canvas offset.
func (s *Session) ResetMatrix() {
	s.stack.Reset()
	s.matrix.Reset()
}

// ApplyMatrix post-multiplies the live transform by m. A product that is
// not invertible is fatal and leaves the live transform unchanged.
func (s *Session) ApplyMatrix(m geom.Matrix) error {
	next := geom.Multiply(s.matrix, m)
	if !next.Invertible() {
		return fatal("applyMatrix", &ContractError{
			Op:  "applyMatrix",
			Msg: fmt.Sprintf("resulting matrix %v is not invertible", next.Array()),
		})
	}
	s.matrix = next
	return nil
}

// Translate moves the origin by (tx, ty) in the current frame.
func (s *Session) Translate(tx, ty float64) {
	s.matrix.Translate(tx, ty)
}

// Rotate turns the current frame by angle radians, clockwise on the page.
func (s *Session) Rotate(angle float64) {
	s.matrix.Rotate(angle)
}

// Scale scales the current frame. Zero factors are ignored.
func (s *Session) Scale(sx, sy float64) {
	s.matrix.Scale(sx, sy)
}

// PrintMatrix writes the live transform to the script output.
func (s *Session) PrintMatrix() {
	fmt.Fprintln(s.out, s.matrix.String())
}
