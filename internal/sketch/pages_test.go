package sketch

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

func TestPageNavigation(t *testing.T) {
	s, _ := newTestSession(t, square(100, 10))

	p, err := s.AddPage(document.AtEnd)
	test.Error(t, err)
	test.T(t, s.PageCount(), 2)
	test.T(t, s.PageNumber(), 2)
	test.T(t, s.CurrentPage(), p)

	_, err = s.NextPage()
	test.Error(t, err)
	test.T(t, s.PageNumber(), 2)

	_, err = s.PreviousPage()
	test.Error(t, err)
	test.T(t, s.PageNumber(), 1)

	_, err = s.PreviousPage()
	test.Error(t, err)
	test.T(t, s.PageNumber(), 1)

	test.Error(t, s.SetPage(0))
	test.T(t, s.PageNumber(), 1)

	err = s.SetPage(7)
	test.That(t, IsFatal(err), "missing page should be fatal")
}

func TestAddPageBeforeRenumbers(t *testing.T) {
	s, _ := newTestSession(t, square(100, 10))
	first := s.CurrentPage()

	p, err := s.AddPage(document.Before)
	test.Error(t, err)
	test.T(t, p.Number(), 1)
	test.T(t, first.Number(), 2)
	test.T(t, s.PageNumber(), 1)
}

func TestRemovePage(t *testing.T) {
	s, _ := newTestSession(t, square(100, 10))
	_, err := s.AddPage(document.AtEnd)
	test.Error(t, err)

	test.Error(t, s.RemovePage(2))
	test.T(t, s.PageCount(), 1)
	test.T(t, s.PageNumber(), 1)

	err = s.RemovePage(1)
	test.That(t, errors.Is(err, document.ErrLastPage), "want ErrLastPage, got", err)
}

func TestPageChangeResetsTransform(t *testing.T) {
	s, _ := newTestSession(t, square(100, 10))
	test.Error(t, s.SetCanvasMode(layout.Margin))
	_, err := s.AddPage(document.AtEnd)
	test.Error(t, err)

	s.Translate(30, 30)
	_, err = s.PreviousPage()
	test.Error(t, err)
	test.Float(t, s.Matrix().C, 10)
	test.Float(t, s.Matrix().F, 10)
	test.Float(t, s.Width(), 80)
}
