package document

import "github.com/opd-ai/go-pagesketch/internal/layout"

// Sheet is one output surface: a single page, or a left/right spread.
// Sizes are in points.
type Sheet struct {
	Width, Height float64
	Pages         []PlacedPage
}

// PlacedPage positions a page's trim box on a sheet.
type PlacedPage struct {
	Page   *PageSnapshot
	Offset [2]float64
}

// Sheets groups the snapshot's pages for output. With spreads, a left
// page and the right page after it share a sheet; the first page and
// unpaired pages stand alone. With bleed, every sheet grows by the bleed
// on all sides.
func (s Snapshot) Sheets(spreads, bleed bool) []Sheet {
	var pad layout.Insets
	if bleed {
		pad = s.Bleed
	}

	var sheets []Sheet
	for i := 0; i < len(s.Pages); i++ {
		group := []*PageSnapshot{&s.Pages[i]}
		if spreads && s.Facing && s.Pages[i].Side == layout.SideLeft && i+1 < len(s.Pages) &&
			s.Pages[i+1].Side == layout.SideRight {
			group = append(group, &s.Pages[i+1])
			i++
		}

		sheet := Sheet{
			Width:  float64(len(group))*s.Width + pad.Left + pad.Right,
			Height: s.Height + pad.Top + pad.Bottom,
		}
		for j, p := range group {
			sheet.Pages = append(sheet.Pages, PlacedPage{
				Page:   p,
				Offset: [2]float64{pad.Left + float64(j)*s.Width, pad.Top},
			})
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}
