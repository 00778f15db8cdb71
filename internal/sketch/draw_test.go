package sketch

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/layout"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func extentOf(t *testing.T, it *document.Item) Extent {
	t.Helper()
	if it == nil {
		t.Fatal("item is nil")
	}
	e, err := ItemBounds(it)
	if err != nil {
		t.Fatalf("ItemBounds() error = %v", err)
	}
	return e
}

func TestRectModes(t *testing.T) {
	tests := []struct {
		mode       layout.ShapeMode
		x, y, w, h float64
		want       Extent
	}{
		{layout.Corner, 10, 20, 30, 40, Extent{Width: 30, Height: 40, Left: 10, Right: 40, Top: 20, Bottom: 60}},
		{layout.Corners, 10, 20, 30, 40, Extent{Width: 20, Height: 20, Left: 10, Right: 30, Top: 20, Bottom: 40}},
		{layout.Center, 50, 50, 20, 10, Extent{Width: 20, Height: 10, Left: 40, Right: 60, Top: 45, Bottom: 55}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s, _ := newTestSession(t, square(200, 0))
			if err := s.SetRectMode(tt.mode); err != nil {
				t.Fatal(err)
			}
			it, err := s.Rect(tt.x, tt.y, tt.w, tt.h)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, extentOf(t, it), approx); diff != "" {
				t.Errorf("Rect() bounds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEllipseRadiusMode(t *testing.T) {
	s, _ := newTestSession(t, square(200, 0))
	if err := s.SetEllipseMode(layout.Radius); err != nil {
		t.Fatal(err)
	}
	it, err := s.Ellipse(50, 50, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 40, Height: 20, Left: 30, Right: 70, Top: 40, Bottom: 60}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("radius ellipse mismatch (-want +got):\n%s", diff)
	}
	if err := s.SetRectMode(layout.Radius); !IsFatal(err) {
		t.Errorf("SetRectMode(radius) error = %v, want fatal", err)
	}
}

func TestZeroSizeShapesAreSkipped(t *testing.T) {
	s, _ := newTestSession(t, square(200, 0))
	for _, mode := range []layout.ShapeMode{layout.Corner, layout.Corners, layout.Center, layout.Radius} {
		if err := s.SetEllipseMode(mode); err != nil {
			t.Fatal(err)
		}
		if mode != layout.Radius {
			if err := s.SetRectMode(mode); err != nil {
				t.Fatal(err)
			}
		}
		it, err := s.Rect(10, 10, 0, 5)
		if it != nil || err != nil {
			t.Errorf("%v: Rect with zero width = %v, %v", mode, it, err)
		}
		it, err = s.Ellipse(10, 10, 5, 0)
		if it != nil || err != nil {
			t.Errorf("%v: Ellipse with zero height = %v, %v", mode, it, err)
		}
	}
	p := s.CurrentPage()
	if n := len(p.Items()); n != 0 {
		t.Errorf("page has %d items, want 0", n)
	}
}

func TestRectUnderRotation(t *testing.T) {
	s, _ := newTestSession(t, square(200, 0))
	s.Translate(100, 100)
	s.Rotate(math.Pi / 2)

	it, err := s.Rect(0, 0, 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 20, Height: 10, Left: 80, Right: 100, Top: 100, Bottom: 110}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("rotated rect mismatch (-want +got):\n%s", diff)
	}
}

func TestEllipsePivotsAroundCenter(t *testing.T) {
	s, _ := newTestSession(t, square(200, 0))
	s.Scale(2, 2)

	it, err := s.Ellipse(50, 50, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 40, Height: 20, Left: 30, Right: 70, Top: 40, Bottom: 60}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("scaled ellipse mismatch (-want +got):\n%s", diff)
	}
}

func TestShapeModeValidation(t *testing.T) {
	s, _ := newTestSession(t, square(200, 0))
	if err := s.SetImageMode(layout.Radius); !IsFatal(err) {
		t.Errorf("SetImageMode(radius) error = %v, want fatal", err)
	}
	if s.ImageMode() != layout.Corner {
		t.Errorf("ImageMode() = %v after rejected change", s.ImageMode())
	}
	if err := s.SetEllipseMode(layout.Corners); err != nil {
		t.Errorf("SetEllipseMode(corners) error = %v", err)
	}
}

func TestLineAndText(t *testing.T) {
	s, _ := newTestSession(t, square(200, 0))
	s.Translate(10, 0)

	line, err := s.Line(0, 0, 30, 40)
	if err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 30, Height: 40, Left: 10, Right: 40, Top: 0, Bottom: 40}
	if diff := cmp.Diff(want, extentOf(t, line), approx); diff != "" {
		t.Errorf("line mismatch (-want +got):\n%s", diff)
	}

	s.ResetMatrix()
	s.SetTextAlign(document.CenterAlign, document.CenterVertical)
	s.Scale(2, 1)
	txt, err := s.Text("hello", 0, 0, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	if txt.Text() != "hello" {
		t.Errorf("Text() = %q", txt.Text())
	}
	// centered frames scale around their center
	want = Extent{Width: 40, Height: 10, Left: -10, Right: 30, Top: 0, Bottom: 10}
	if diff := cmp.Diff(want, extentOf(t, txt), approx); diff != "" {
		t.Errorf("text frame mismatch (-want +got):\n%s", diff)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newImageSession(t *testing.T) *Session {
	t.Helper()
	doc, err := document.New(square(400, 0))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Output = &bytes.Buffer{}
	opts.Assets = fstest.MapFS{
		"data/pic.png": {Data: pngBytes(t, 40, 20)},
		"logo.png":     {Data: pngBytes(t, 8, 8)},
	}
	s, err := NewSession(doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestImagePlacement(t *testing.T) {
	s := newImageSession(t)

	it, err := s.Image("pic.png", 10, 10, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 40, Height: 20, Left: 10, Right: 50, Top: 10, Bottom: 30}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("natural size mismatch (-want +got):\n%s", diff)
	}
	if it.Image().Fit != document.FitFrameToContent {
		t.Errorf("Fit = %v, want FitFrameToContent", it.Image().Fit)
	}
	if it.Image().Source != "data/pic.png" {
		t.Errorf("Source = %q, want data/pic.png", it.Image().Source)
	}

	it, err = s.Image("logo.png", 0, 0, 100, 50)
	if err != nil {
		t.Fatal(err)
	}
	want = Extent{Width: 100, Height: 50, Left: 0, Right: 100, Top: 0, Bottom: 50}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("framed size mismatch (-want +got):\n%s", diff)
	}
	if it.Image().Fit != document.FitContentToFrame {
		t.Errorf("Fit = %v, want FitContentToFrame", it.Image().Fit)
	}
}

func TestImageCenterAndCorners(t *testing.T) {
	s := newImageSession(t)
	if err := s.SetImageMode(layout.Center); err != nil {
		t.Fatal(err)
	}
	it, err := s.Image("pic.png", 100, 100, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 40, Height: 20, Left: 80, Right: 120, Top: 90, Bottom: 110}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("center mode mismatch (-want +got):\n%s", diff)
	}

	if err := s.SetImageMode(layout.Corners); err != nil {
		t.Fatal(err)
	}
	it, err = s.Image("pic.png", 10, 20, 110, 70)
	if err != nil {
		t.Fatal(err)
	}
	want = Extent{Width: 100, Height: 50, Left: 10, Right: 110, Top: 20, Bottom: 70}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("corners mode mismatch (-want +got):\n%s", diff)
	}
}

func TestImageIntoFrame(t *testing.T) {
	s := newImageSession(t)
	oval, err := s.Ellipse(0, 0, 60, 30)
	if err != nil {
		t.Fatal(err)
	}

	s.Translate(10, 5)
	it, err := s.ImageFrame("pic.png", oval)
	if err != nil {
		t.Fatal(err)
	}
	if it != oval || it.Kind() != document.KindEllipse {
		t.Fatalf("ImageFrame() returned %v, want the oval itself", it.Kind())
	}
	if it.Image() == nil || it.Image().Source != "data/pic.png" || it.Image().Fit != document.FitNone {
		t.Errorf("Image() = %+v", it.Image())
	}
	// the frame keeps its size and follows the live transform
	want := Extent{Width: 60, Height: 30, Left: 10, Right: 70, Top: 5, Bottom: 35}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}

	line, _ := s.Line(0, 0, 10, 10)
	if _, err := s.ImageFrame("pic.png", line); !errors.Is(err, document.ErrNotFrame) || !IsFatal(err) {
		t.Errorf("ImageFrame into a line error = %v, want fatal ErrNotFrame", err)
	}
	var ce *ContractError
	if _, err := s.ImageFrame("pic.png", nil); !errors.As(err, &ce) {
		t.Errorf("ImageFrame into nil error = %v, want ContractError", err)
	}
}

func TestImageMissing(t *testing.T) {
	s := newImageSession(t)
	_, err := s.Image("nope.png", 0, 0, 0, 0)
	if !IsFatal(err) {
		t.Errorf("missing image error = %v, want fatal", err)
	}

	bare, _ := newTestSession(t, square(100, 0))
	if _, err := bare.Image("pic.png", 0, 0, 0, 0); err == nil {
		t.Error("image without an asset root should fail")
	}
}

func TestTransformImage(t *testing.T) {
	s := newImageSession(t)
	it, err := s.Image("pic.png", 0, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.TransformImage(it, 5, 5, 60, 30); err != nil {
		t.Fatal(err)
	}
	want := Extent{Width: 60, Height: 30, Left: 5, Right: 65, Top: 5, Bottom: 35}
	if diff := cmp.Diff(want, extentOf(t, it), approx); diff != "" {
		t.Errorf("TransformImage mismatch (-want +got):\n%s", diff)
	}

	rect, _ := s.Rect(0, 0, 10, 10)
	if err := s.TransformImage(rect, 0, 0, 1, 1); !IsFatal(err) {
		t.Errorf("TransformImage on a rect error = %v, want fatal", err)
	}
	var ce *ContractError
	if err := s.TransformImage(rect, 0, 0, 1, 1); !errors.As(err, &ce) {
		t.Errorf("want ContractError, got %v", err)
	}
}
