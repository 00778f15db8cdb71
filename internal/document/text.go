package document

import (
	"fmt"
	"strings"
)

// Justification is the horizontal paragraph alignment of a text frame.
type Justification int

const (
	LeftAlign Justification = iota
	CenterAlign
	RightAlign
	LeftJustified
	CenterJustified
	RightJustified
	FullyJustified
)

var justificationNames = map[Justification]string{
	LeftAlign:       "left_align",
	CenterAlign:     "center_align",
	RightAlign:      "right_align",
	LeftJustified:   "left_justified",
	CenterJustified: "center_justified",
	RightJustified:  "right_justified",
	FullyJustified:  "fully_justified",
}

func (j Justification) String() string {
	if name, ok := justificationNames[j]; ok {
		return name
	}
	return fmt.Sprintf("Justification(%d)", int(j))
}

// Centered reports whether text frames with j pivot around their center.
func (j Justification) Centered() bool {
	return j == CenterAlign || j == CenterJustified
}

// ParseJustification converts a name such as "center_align" or "center".
func ParseJustification(s string) (Justification, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for j, n := range justificationNames {
		if n == name || strings.TrimSuffix(n, "_align") == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("unknown text alignment %q", s)
}

// VerticalJustification is the vertical placement of text in its frame.
type VerticalJustification int

const (
	TopAlign VerticalJustification = iota
	CenterVertical
	BottomAlign
	JustifyVertical
)

var verticalNames = map[VerticalJustification]string{
	TopAlign:        "top",
	CenterVertical:  "center",
	BottomAlign:     "bottom",
	JustifyVertical: "justify",
}

func (v VerticalJustification) String() string {
	if name, ok := verticalNames[v]; ok {
		return name
	}
	return fmt.Sprintf("VerticalJustification(%d)", int(v))
}

// ParseVerticalJustification converts "top", "center", "bottom" or
// "justify", with an optional "_align" suffix.
func ParseVerticalJustification(s string) (VerticalJustification, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_align")
	for v, n := range verticalNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown vertical alignment %q", s)
}
