package document

import (
	"fmt"
	"image"
	"io"
	"io/fs"

	// Registered decoders for placed images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImageInfo reads the header of an encoded image and returns its
// pixel size and format. source is recorded as given.
func DecodeImageInfo(r io.Reader, source string) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decoding image %s: %w", source, err)
	}
	return ImageInfo{
		Source:      source,
		PixelWidth:  cfg.Width,
		PixelHeight: cfg.Height,
		Format:      format,
	}, nil
}

// LoadImageInfo opens name in fsys and decodes its header.
func LoadImageInfo(fsys fs.FS, name string) (ImageInfo, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	return DecodeImageInfo(f, name)
}
