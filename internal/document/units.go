package document

import (
	"fmt"
	"strings"
)

// Units is a measurement unit for document geometry.
type Units int

const (
	Points Units = iota
	Pixels
	Centimeters
	Millimeters
	Inches
)

var unitNames = map[Units]string{
	Points:      "pt",
	Pixels:      "px",
	Centimeters: "cm",
	Millimeters: "mm",
	Inches:      "in",
}

// String returns the unit abbreviation.
func (u Units) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("Units(%d)", int(u))
}

// ParseUnits converts an abbreviation such as "mm" to Units.
func ParseUnits(s string) (Units, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for u, n := range unitNames {
		if n == name {
			return u, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnits, s)
}

// PointsPer returns how many points one unit spans. A pixel is one point,
// matching a 72 dpi layout grid.
func (u Units) PointsPer() float64 {
	switch u {
	case Centimeters:
		return 72 / 2.54
	case Millimeters:
		return 72 / 25.4
	case Inches:
		return 72
	default:
		return 1
	}
}

// ToPoints converts v from u to points.
func (u Units) ToPoints(v float64) float64 {
	return v * u.PointsPer()
}

// FromPoints converts v from points to u.
func (u Units) FromPoints(v float64) float64 {
	return v / u.PointsPer()
}
