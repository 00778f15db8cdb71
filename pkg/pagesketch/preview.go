//go:build !noebiten

package pagesketch

import (
	"context"
	"path/filepath"

	"github.com/opd-ai/go-pagesketch/internal/render"
)

// previewConfig maps the sketch configuration onto the window settings.
func (s *sketchImpl) previewConfig() render.Config {
	cfg := s.config()
	rc := render.DefaultConfig()
	rc.Title = "pagesketch - " + filepath.Base(s.src.script)
	if cfg.Preview.Scale > 0 {
		rc.Scale = cfg.Preview.Scale
	}
	rc.AlwaysOnTop = cfg.Preview.AlwaysOnTop
	rc.Guides = cfg.Preview.Guides
	rc.Spreads = cfg.Output.Spreads
	return rc
}

// runPreview opens the preview window and blocks until it is closed or
// ctx is cancelled.
func (s *sketchImpl) runPreview(ctx context.Context) error {
	p := render.NewPreview(s.previewConfig(), s.src.assets(s.config()))
	p.SetContext(ctx)
	p.SetErrorHandler(func(err error) {
		s.notifyError(NewCategorizedError(err, ErrorCategoryPreview, SeverityWarning))
	})

	s.attach(p)
	defer func() {
		s.attach(nil)
		p.Close()
	}()
	return p.Run()
}
