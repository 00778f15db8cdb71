//go:build noebiten

package pagesketch

import (
	"context"
	"errors"
)

// errNoPreview is returned when a preview is requested from a build
// without the preview window.
var errNoPreview = errors.New("preview is not available in noebiten builds")

func (s *sketchImpl) runPreview(ctx context.Context) error {
	return errNoPreview
}
