package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
)

// ErrPreviewClosed is returned when the preview loop is terminated via
// context cancellation.
var ErrPreviewClosed = errors.New("preview closed")

const (
	// emptySize is the window size before the first frame arrives.
	emptySize = 320
	// maxHintTries is the number of updates KeepAbove is attempted on.
	maxHintTries = 30
)

// ErrorHandler is a function type for handling errors during preview
// updates.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "preview error: %v\n", err)
}

// Preview implements ebiten.Game and shows the latest published frame.
type Preview struct {
	config       Config
	text         *TextRenderer
	images       *ImageCache
	errorHandler ErrorHandler
	scene        Scene
	hasScene     bool
	hintsApplied bool
	hintTries    int
	mu           sync.RWMutex
	running      bool
	ctx          context.Context
}

// NewPreview creates a preview window. Image frames are loaded from
// assets when it is not nil.
func NewPreview(config Config, assets fs.FS) *Preview {
	return &Preview{
		config:       config,
		text:         NewTextRenderer(),
		images:       NewImageCache(assets),
		errorHandler: DefaultErrorHandler,
	}
}

// SetErrorHandler sets a custom error handler for update errors.
// If nil is passed, errors will be silently ignored.
func (p *Preview) SetErrorHandler(handler ErrorHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorHandler = handler
}

// SetContext sets a context for the preview loop. When the context is
// cancelled, the loop terminates.
func (p *Preview) SetContext(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
}

// Show replaces the displayed frame with the sheet holding page index
// page of snap. It is safe to call from any goroutine.
func (p *Preview) Show(snap document.Snapshot, page int) error {
	p.mu.RLock()
	cfg := p.config
	p.mu.RUnlock()

	scene, err := BuildScene(snap, page, cfg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.scene = scene
	p.hasScene = true
	return nil
}

// Scene returns the scene currently displayed.
func (p *Preview) Scene() (Scene, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scene, p.hasScene
}

// Update implements ebiten.Game.Update.
func (p *Preview) Update() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		select {
		case <-p.ctx.Done():
			return ErrPreviewClosed
		default:
		}
	}

	// The window manager may list the window a few frames after it maps.
	if p.config.AlwaysOnTop && !p.hintsApplied && p.hintTries < maxHintTries {
		p.hintTries++
		err := KeepAbove(p.config.Title, true)
		switch {
		case err == nil:
			p.hintsApplied = true
		case p.hintTries == maxHintTries && p.errorHandler != nil:
			p.errorHandler(err)
		}
	}
	return nil
}

// Draw implements ebiten.Game.Draw.
func (p *Preview) Draw(screen *ebiten.Image) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	screen.Fill(p.config.BackgroundColor)
	if !p.hasScene {
		return
	}

	for _, paper := range p.scene.Paper {
		fillBounds(screen, paper, p.config.PaperColor)
	}
	for _, s := range p.scene.Shapes {
		p.drawItem(screen, s)
	}
	for _, g := range p.scene.Guides {
		clr := p.config.MarginColor
		if g.Kind == GuideBleed {
			clr = p.config.BleedColor
		}
		strokeBounds(screen, g.Bounds, clr)
	}
}

func (p *Preview) drawItem(screen *ebiten.Image, s Shape) {
	switch s.Item.Kind {
	case document.KindText:
		p.text.DrawFrame(screen, s, p.config.StrokeColor)
	case document.KindImage:
		if s.Item.Image != nil {
			if img, err := p.images.Load(s.Item.Image.Source); err == nil {
				drawImage(screen, img, s)
				return
			}
		}
		drawShape(screen, s, p.config.FillColor, p.config.StrokeColor)
		for _, diag := range placeholderDiagonals(s.Points) {
			drawShape(screen, Shape{Points: diag[:]}, p.config.FillColor, p.config.StrokeColor)
		}
	default:
		drawShape(screen, s, p.config.FillColor, p.config.StrokeColor)
		if s.Item.Image != nil {
			if img, err := p.images.Load(s.Item.Image.Source); err == nil {
				drawImage(screen, img, s)
			}
		}
	}
}

// drawImage stretches img over the shape's base box.
func drawImage(screen, img *ebiten.Image, s Shape) {
	b := s.Item.Base
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(b.Width()/float64(w), b.Height()/float64(h))
	op.GeoM.Translate(b.Left, b.Top)
	op.GeoM.Concat(geoM(s.Matrix))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

// placeholderDiagonals returns the two diagonals of a four point frame
// outline.
func placeholderDiagonals(pts []geom.Vector) [][2]geom.Vector {
	if len(pts) != 4 {
		return nil
	}
	return [][2]geom.Vector{{pts[0], pts[2]}, {pts[1], pts[3]}}
}

// Layout implements ebiten.Game.Layout.
func (p *Preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.hasScene {
		return emptySize, emptySize
	}
	return p.scene.Width, p.scene.Height
}

// Config returns the current configuration.
func (p *Preview) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// Run starts the Ebiten loop. It must be called from the main goroutine
// and blocks until the window is closed or the context is cancelled.
func (p *Preview) Run() error {
	w, h := p.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(p.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	err := ebiten.RunGame(p)

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	if errors.Is(err, ErrPreviewClosed) {
		return nil
	}
	return err
}

// IsRunning returns whether the preview loop is currently running.
func (p *Preview) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Close releases cached images and window hint resources.
func (p *Preview) Close() {
	p.images.Clear()
	CloseWindowHints()
}
