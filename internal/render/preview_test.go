//go:build !noebiten

package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
)

func TestPreviewUpdateContext(t *testing.T) {
	p := NewPreview(DefaultConfig(), nil)
	if err := p.Update(); err != nil {
		t.Fatalf("Update() = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.SetContext(ctx)
	cancel()
	if err := p.Update(); !errors.Is(err, ErrPreviewClosed) {
		t.Errorf("Update() after cancel = %v, want ErrPreviewClosed", err)
	}
}

func TestPreviewDraw(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	assets := fstest.MapFS{"dot.png": {Data: buf.Bytes()}}

	snap := testSnapshot()
	snap.Pages[0].Items = append(snap.Pages[0].Items,
		document.ItemSnapshot{ID: 10, Kind: document.KindText, Text: "hello",
			Base: geom.Bounds{Top: 50, Left: 10, Bottom: 80, Right: 90}, Matrix: geom.Identity()},
		document.ItemSnapshot{ID: 11, Kind: document.KindImage, Image: &document.ImageInfo{Source: "dot.png", Format: "png"},
			Base: geom.Bounds{Top: 90, Left: 10, Bottom: 110, Right: 30}, Matrix: geom.Identity()},
		document.ItemSnapshot{ID: 12, Kind: document.KindImage, Image: &document.ImageInfo{Source: "missing.png"},
			Base: geom.Bounds{Top: 120, Left: 10, Bottom: 140, Right: 30}, Matrix: geom.Identity()},
	)

	p := NewPreview(DefaultConfig(), assets)
	defer p.Close()

	screen := ebiten.NewImage(emptySize, emptySize)
	// Drawing before the first frame only clears the screen.
	p.Draw(screen)

	if err := p.Show(snap, 0); err != nil {
		t.Fatalf("Show() = %v", err)
	}
	w, h := p.Layout(0, 0)
	screen = ebiten.NewImage(w, h)
	p.Draw(screen)

	if got := p.images.Size(); got != 1 {
		t.Errorf("cached images = %d, want 1", got)
	}
}
