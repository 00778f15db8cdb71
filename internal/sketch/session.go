// Package sketch implements a drawing session over a layout document.
//
// A Session owns the live transform, its push/pop stack, the canvas mode
// and the per-shape placement modes. Drawing calls resolve declarative
// (x, y, w, h) arguments to canonical bounds, create the page item, then
// hand the live transform to the item in the host's element order.
//
// A Session is not safe for concurrent use; scripts drive it from a single
// goroutine.
package sketch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// Logger receives session diagnostics. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Options configures a Session.
type Options struct {
	// Output receives println and printMatrix text. Defaults to os.Stdout.
	Output io.Writer
	// Logger receives diagnostics. Nil disables logging.
	Logger Logger
	// Assets resolves image names. Nil disables image placement.
	Assets fs.FS
	// Sleep implements delay. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// CanvasMode is the initial canvas mode.
	CanvasMode layout.CanvasMode
	// RectMode, EllipseMode and ImageMode are the initial shape modes.
	RectMode, EllipseMode, ImageMode layout.ShapeMode
}

// DefaultOptions returns the modes a fresh sketch starts with.
func DefaultOptions() Options {
	return Options{
		CanvasMode:  layout.Paper,
		RectMode:    layout.Corner,
		EllipseMode: layout.Center,
		ImageMode:   layout.Corner,
	}
}

// Session is the drawing state bound to one document.
type Session struct {
	doc  *document.Document
	page *document.Page

	matrix geom.Matrix
	stack  Stack

	canvas        layout.CanvasMode
	width, height float64

	rectMode, ellipseMode, imageMode layout.ShapeMode
	align                            document.Justification
	valign                           document.VerticalJustification

	out      io.Writer
	logger   Logger
	assets   fs.FS
	sleep    func(time.Duration)
	onChange []func(width, height float64)
}

// NewSession binds a session to the first page of doc.
func NewSession(doc *document.Document, opts Options) (*Session, error) {
	if doc == nil {
		return nil, &ContractError{Op: "NewSession", Msg: "document is nil"}
	}
	for _, check := range []struct {
		kind layout.ShapeKind
		mode layout.ShapeMode
	}{
		{layout.KindRect, opts.RectMode},
		{layout.KindEllipse, opts.EllipseMode},
		{layout.KindImage, opts.ImageMode},
	} {
		if err := check.kind.CheckMode(check.mode); err != nil {
			return nil, fatal("NewSession", err)
		}
	}

	s := &Session{
		doc:         doc,
		canvas:      opts.CanvasMode,
		rectMode:    opts.RectMode,
		ellipseMode: opts.EllipseMode,
		imageMode:   opts.ImageMode,
		out:         opts.Output,
		logger:      opts.Logger,
		assets:      opts.Assets,
		sleep:       opts.Sleep,
		matrix:      geom.Identity(),
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}

	page, err := doc.Page(1)
	if err != nil {
		return nil, err
	}
	s.page = page
	if err := s.updateCanvas(); err != nil {
		return nil, fatal("NewSession", err)
	}
	return s, nil
}

// Document returns the bound document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// OnChange registers fn to be called with the new width and height after
// every canvas recomputation.
func (s *Session) OnChange(fn func(width, height float64)) {
	s.onChange = append(s.onChange, fn)
}

// Width returns the logical canvas width in current units.
func (s *Session) Width() float64 { return s.width }

// Height returns the logical canvas height in current units.
func (s *Session) Height() float64 { return s.height }

// updateCanvas recomputes width, height and the baseline transform for
// the current mode, page and units. Unpopped snapshots are discarded.
func (s *Session) updateCanvas() error {
	g, err := s.doc.Geometry(s.page)
	if err != nil {
		return err
	}
	c, err := layout.ResolveCanvas(s.canvas, g)
	if err != nil {
		return err
	}
	if n := s.stack.Len(); n > 0 {
		s.Warn(fmt.Sprintf("canvas reset discards %d unmatched pushMatrix() call(s)", n))
	}
	s.stack.Reset()
	s.matrix = c.Baseline
	s.width, s.height = c.Width, c.Height

	s.logger.Debug("canvas updated",
		"mode", s.canvas.String(),
		"page", g.Name,
		"width", s.width,
		"height", s.height)
	for _, fn := range s.onChange {
		fn(s.width, s.height)
	}
	return nil
}

// CanvasMode returns the current canvas mode.
func (s *Session) CanvasMode() layout.CanvasMode {
	return s.canvas
}

// SetCanvasMode switches the canvas mode and resets the transform to the
// mode's baseline.
func (s *Session) SetCanvasMode(m layout.CanvasMode) error {
	prev := s.canvas
	s.canvas = m
	if err := s.updateCanvas(); err != nil {
		s.canvas = prev
		return fatal("canvasMode", err)
	}
	return nil
}

// Units returns the document's measurement units.
func (s *Session) Units() document.Units {
	return s.doc.Units()
}

// SetUnits changes the measurement units and recomputes the canvas.
func (s *Session) SetUnits(u document.Units) error {
	prev := s.doc.Units()
	if err := s.doc.SetUnits(u); err != nil {
		return fatal("units", err)
	}
	if err := s.updateCanvas(); err != nil {
		_ = s.doc.SetUnits(prev)
		return fatal("units", err)
	}
	return nil
}

// Warn prints a prefixed warning to the script output and logs it.
func (s *Session) Warn(msg string) {
	fmt.Fprintln(s.out, WarningPrefix+msg)
	s.logger.Warn(msg)
}

// Println writes its arguments separated by spaces to the script output.
func (s *Session) Println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

// Delay blocks the script for ms milliseconds.
func (s *Session) Delay(ms float64) {
	if ms <= 0 {
		return
	}
	s.sleep(time.Duration(ms * float64(time.Millisecond)))
}
