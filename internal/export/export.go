// Package export writes document snapshots to PDF (via fpdf) and SVG (via
// svgo). Items are drawn with a fixed hairline style; their affine map is
// applied as a transform so rotated and skewed items keep their shape.
package export

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/opd-ai/go-pagesketch/internal/document"
)

// ErrUnknownFormat is returned when no writer matches the requested format.
var ErrUnknownFormat = errors.New("unknown export format")

const (
	strokeWidth = 0.5
	fontSize    = 12.0
)

// Options configures an export.
type Options struct {
	// Format is "pdf" or "svg". Empty picks the format from the path.
	Format string
	// Spreads puts facing pages side by side.
	Spreads bool
	// Bleed grows every sheet by the document bleed.
	Bleed bool
	// Assets resolves image sources for embedding. Images that cannot be
	// read are drawn as empty frames.
	Assets fs.FS
	// Title is stored in the document metadata.
	Title string
}

// FormatForPath returns "pdf" or "svg" from the path's extension, or "".
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf"
	case ".svg":
		return "svg"
	}
	return ""
}

// Export writes snap to path. The file is removed again when writing fails.
func Export(snap document.Snapshot, path string, opts Options) error {
	format := opts.Format
	if format == "" {
		format = FormatForPath(path)
	}
	if format != "pdf" && format != "svg" {
		return fmt.Errorf("%w: %q for %s", ErrUnknownFormat, format, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	werr := Write(f, snap, format, opts)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return fmt.Errorf("exporting %s: %w", path, werr)
	}
	return nil
}

// Write encodes snap in format to w.
func Write(w io.Writer, snap document.Snapshot, format string, opts Options) error {
	if len(snap.Pages) == 0 {
		return errors.New("document has no pages")
	}
	switch strings.ToLower(format) {
	case "pdf":
		return WritePDF(w, snap, opts)
	case "svg":
		return WriteSVG(w, snap, opts)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// readAsset returns the bytes of an image source, or nil when it cannot be
// read.
func readAsset(fsys fs.FS, info *document.ImageInfo) []byte {
	if fsys == nil || info == nil {
		return nil
	}
	data, err := fs.ReadFile(fsys, info.Source)
	if err != nil {
		return nil
	}
	return data
}
