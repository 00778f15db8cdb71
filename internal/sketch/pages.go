package sketch

import (
	"fmt"

	"github.com/opd-ai/go-pagesketch/internal/document"
)

// CurrentPage returns the page new items are placed on.
func (s *Session) CurrentPage() *document.Page {
	return s.page
}

// SetPage makes page number n current. Numbers below 1 select the first
// page.
func (s *Session) SetPage(n int) error {
	p, err := s.doc.Page(n)
	if err != nil {
		return fatal("page", fmt.Errorf("page %d does not exist", n))
	}
	return s.SetPageTo(p)
}

// SetPageTo makes p current.
func (s *Session) SetPageTo(p *document.Page) error {
	if !p.Valid() {
		return fatal("page", &ContractError{Op: "page", Msg: "page is not part of the document"})
	}
	s.page = p
	return fatal("page", s.updateCanvas())
}

// AddPage inserts a page relative to the current one and makes it current.
func (s *Session) AddPage(loc document.Location) (*document.Page, error) {
	p, err := s.doc.AddPage(loc, s.page)
	if err != nil {
		return nil, fatal("addPage", err)
	}
	// inserting before the current page renumbers it
	if err := s.SetPageTo(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemovePage deletes page number n. When it was current, the first page
// becomes current.
func (s *Session) RemovePage(n int) error {
	p, err := s.doc.Page(n)
	if err != nil {
		return fatal("removePage", err)
	}
	if err := s.doc.RemovePage(p); err != nil {
		return fatal("removePage", err)
	}
	if p == s.page {
		first, _ := s.doc.Page(1)
		return s.SetPageTo(first)
	}
	return fatal("removePage", s.updateCanvas())
}

// NextPage moves to the following page, staying on the last one.
func (s *Session) NextPage() (*document.Page, error) {
	p := s.doc.Next(s.page)
	return p, s.SetPageTo(p)
}

// PreviousPage moves to the preceding page, staying on the first one.
func (s *Session) PreviousPage() (*document.Page, error) {
	p := s.doc.Previous(s.page)
	return p, s.SetPageTo(p)
}

// PageCount returns the number of pages.
func (s *Session) PageCount() int {
	return s.doc.PageCount()
}

// PageNumber returns the current page's 1-based number.
func (s *Session) PageNumber() int {
	return s.page.Number()
}
