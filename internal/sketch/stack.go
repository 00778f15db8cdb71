package sketch

import "github.com/opd-ai/go-pagesketch/internal/geom"

// Stack is a LIFO of saved matrices. Entries are values, so a pushed
// snapshot never aliases the live matrix.
type Stack struct {
	items []geom.Matrix
}

// Push saves a copy of m.
func (s *Stack) Push(m geom.Matrix) {
	s.items = append(s.items, m)
}

// Pop removes and returns the most recent snapshot.
func (s *Stack) Pop() (geom.Matrix, error) {
	if len(s.items) == 0 {
		return geom.Matrix{}, &UnbalancedStackError{}
	}
	last := len(s.items) - 1
	m := s.items[last]
	s.items = s.items[:last]
	return m, nil
}

// Len returns the number of saved snapshots.
func (s *Stack) Len() int {
	return len(s.items)
}

// Reset drops every snapshot.
func (s *Stack) Reset() {
	s.items = s.items[:0]
}
