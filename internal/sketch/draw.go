package sketch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// RectMode returns the placement mode used by Rect.
func (s *Session) RectMode() layout.ShapeMode { return s.rectMode }

// SetRectMode sets the placement mode used by Rect.
func (s *Session) SetRectMode(m layout.ShapeMode) error {
	if err := layout.KindRect.CheckMode(m); err != nil {
		return fatal("rectMode", err)
	}
	s.rectMode = m
	return nil
}

// EllipseMode returns the placement mode used by Ellipse.
func (s *Session) EllipseMode() layout.ShapeMode { return s.ellipseMode }

// SetEllipseMode sets the placement mode used by Ellipse.
func (s *Session) SetEllipseMode(m layout.ShapeMode) error {
	if err := layout.KindEllipse.CheckMode(m); err != nil {
		return fatal("ellipseMode", err)
	}
	s.ellipseMode = m
	return nil
}

// ImageMode returns the placement mode used by Image.
func (s *Session) ImageMode() layout.ShapeMode { return s.imageMode }

// SetImageMode sets the placement mode used by Image.
func (s *Session) SetImageMode(m layout.ShapeMode) error {
	if err := layout.KindImage.CheckMode(m); err != nil {
		return fatal("imageMode", err)
	}
	s.imageMode = m
	return nil
}

// TextAlign returns the alignment applied to new text frames.
func (s *Session) TextAlign() (document.Justification, document.VerticalJustification) {
	return s.align, s.valign
}

// SetTextAlign sets the alignment applied to new text frames.
func (s *Session) SetTextAlign(j document.Justification, v document.VerticalJustification) {
	s.align = j
	s.valign = v
}

// place hands the live transform to a freshly created item.
func (s *Session) place(op string, it *document.Item, anchor layout.Anchor) (*document.Item, error) {
	if err := it.Transform(anchor, s.matrix.HostOrder()); err != nil {
		return nil, fatal(op, err)
	}
	return it, nil
}

// Rect draws a rectangle. It returns a nil item when w or h is zero.
func (s *Session) Rect(x, y, w, h float64) (*document.Item, error) {
	b, anchor, err := layout.ResolveArgs(s.rectMode, x, y, w, h)
	if errors.Is(err, layout.ErrNoShape) {
		return nil, nil
	}
	if err != nil {
		return nil, fatal("rect", err)
	}
	it, err := s.page.AddRect(b)
	if err != nil {
		return nil, fatal("rect", err)
	}
	return s.place("rect", it, anchor)
}

// Ellipse draws an oval. It returns a nil item when w or h is zero.
func (s *Session) Ellipse(x, y, w, h float64) (*document.Item, error) {
	b, anchor, err := layout.ResolveArgs(s.ellipseMode, x, y, w, h)
	if errors.Is(err, layout.ErrNoShape) {
		return nil, nil
	}
	if err != nil {
		return nil, fatal("ellipse", err)
	}
	it, err := s.page.AddEllipse(b)
	if err != nil {
		return nil, fatal("ellipse", err)
	}
	return s.place("ellipse", it, anchor)
}

// Line draws a line from (x1, y1) to (x2, y2), pivoting around the
// top-left corner of its bounds.
func (s *Session) Line(x1, y1, x2, y2 float64) (*document.Item, error) {
	it, err := s.page.AddLine(x1, y1, x2, y2)
	if err != nil {
		return nil, fatal("line", err)
	}
	return s.place("line", it, layout.AnchorTopLeft)
}

// Text draws a text frame at (x, y) sized w by h. Centered alignments
// pivot around the frame center.
func (s *Session) Text(txt string, x, y, w, h float64) (*document.Item, error) {
	b := geom.Bounds{Top: y, Left: x, Bottom: y + h, Right: x + w}
	it, err := s.page.AddText(txt, b, s.align, s.valign)
	if err != nil {
		return nil, fatal("text", err)
	}
	anchor := layout.AnchorTopLeft
	if s.align.Centered() {
		anchor = layout.AnchorCenter
	}
	return s.place("text", it, anchor)
}

// Image places the image src. When w and h are both non-zero the content
// is fitted into that frame, otherwise the frame takes the image size. In
// Corners mode w and h are the opposite corner.
func (s *Session) Image(src string, x, y, w, h float64) (*document.Item, error) {
	info, err := s.loadImage(src)
	if err != nil {
		return nil, fatal("image", err)
	}

	width, height := 1.0, 1.0
	fit := document.FitFrameToContent
	switch {
	case s.imageMode == layout.Corners:
		width, height = w-x, h-y
		fit = document.FitContentToFrame
	case w != 0 && h != 0:
		width, height = w, h
		fit = document.FitContentToFrame
	}

	it, err := s.page.AddImage(info, geom.Bounds{Top: y, Left: x, Bottom: y + height, Right: x + width})
	if err != nil {
		return nil, fatal("image", err)
	}
	if fit == document.FitFrameToContent {
		err = it.FitFrameToContent()
	} else {
		err = it.FitContentToFrame()
	}
	if err != nil {
		return nil, fatal("image", err)
	}
	return s.placeImage(it)
}

// ImageFrame places src into an existing rectangle, oval or image frame.
// The frame keeps its size and is then transformed like a new image.
func (s *Session) ImageFrame(src string, frame *document.Item) (*document.Item, error) {
	if !frame.Valid() {
		return nil, fatal("image", &ContractError{Op: "image", Msg: "frame has to be a valid rectangle or oval"})
	}
	info, err := s.loadImage(src)
	if err != nil {
		return nil, fatal("image", err)
	}
	if err := frame.PlaceImage(info); err != nil {
		return nil, fatal("image", err)
	}
	return s.placeImage(frame)
}

// placeImage applies the image mode anchor and the live transform.
func (s *Session) placeImage(it *document.Item) (*document.Item, error) {
	if s.imageMode != layout.Center {
		return s.place("image", it, layout.AnchorTopLeft)
	}
	b, err := it.GeometricBounds()
	if err != nil {
		return nil, fatal("image", err)
	}
	if err := it.Move(-b.Width()/2, -b.Height()/2); err != nil {
		return nil, fatal("image", err)
	}
	return s.place("image", it, layout.AnchorCenter)
}

// TransformImage moves and resizes an image frame and stretches its
// content to the new frame. The live transform is not applied.
func (s *Session) TransformImage(it *document.Item, x, y, w, h float64) error {
	if !it.Valid() || it.Image() == nil {
		return fatal("transformImage", &ContractError{Op: "transformImage", Msg: "item has to be a valid image frame"})
	}
	if err := it.SetGeometricBounds(geom.Bounds{Top: y, Left: x, Bottom: y + h, Right: x + w}); err != nil {
		return fatal("transformImage", err)
	}
	if s.imageMode == layout.Center {
		if err := it.Move(-w/2, -h/2); err != nil {
			return fatal("transformImage", err)
		}
	}
	if err := it.CenterContent(); err != nil {
		return fatal("transformImage", err)
	}
	return fatal("transformImage", it.FitContentToFrame())
}

// loadImage finds src under data/ first, then relative to the asset root.
// Absolute paths are read from disk.
func (s *Session) loadImage(src string) (document.ImageInfo, error) {
	if filepath.IsAbs(src) {
		dir, name := filepath.Split(src)
		info, err := document.LoadImageInfo(os.DirFS(dir), name)
		if err == nil {
			info.Source = src
		}
		return info, err
	}
	if s.assets == nil {
		return document.ImageInfo{}, fmt.Errorf("no asset directory to load %q from", src)
	}
	name := filepath.ToSlash(src)
	for _, candidate := range []string{path.Join("data", name), name} {
		if _, err := fs.Stat(s.assets, candidate); err == nil {
			return document.LoadImageInfo(s.assets, candidate)
		}
	}
	return document.ImageInfo{}, fmt.Errorf("image %q not found in data/ or the sketch folder", src)
}
