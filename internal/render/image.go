package render

import (
	"fmt"
	"image"
	"io/fs"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	// Register decoders for the formats image frames accept.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageCache loads placed images from an asset filesystem once.
type ImageCache struct {
	fsys  fs.FS
	cache map[string]*ebiten.Image
	// failed remembers sources that could not be loaded so they are not
	// retried every frame.
	failed map[string]error
	mu     sync.RWMutex
}

// NewImageCache creates a cache reading from fsys. A nil fsys caches
// nothing and every Load fails.
func NewImageCache(fsys fs.FS) *ImageCache {
	return &ImageCache{
		fsys:   fsys,
		cache:  make(map[string]*ebiten.Image),
		failed: make(map[string]error),
	}
}

// Load returns the image for source, decoding it on first use.
// Uses double-checked locking to prevent duplicate loads.
func (ic *ImageCache) Load(source string) (*ebiten.Image, error) {
	ic.mu.RLock()
	if img, ok := ic.cache[source]; ok {
		ic.mu.RUnlock()
		return img, nil
	}
	if err, ok := ic.failed[source]; ok {
		ic.mu.RUnlock()
		return nil, err
	}
	ic.mu.RUnlock()

	ic.mu.Lock()
	defer ic.mu.Unlock()

	if img, ok := ic.cache[source]; ok {
		return img, nil
	}
	if err, ok := ic.failed[source]; ok {
		return nil, err
	}

	img, err := decodeAsset(ic.fsys, source)
	if err != nil {
		ic.failed[source] = err
		return nil, err
	}
	ebitenImg := ebiten.NewImageFromImage(img)
	ic.cache[source] = ebitenImg
	return ebitenImg, nil
}

// decodeAsset reads and decodes one image from fsys.
func decodeAsset(fsys fs.FS, source string) (image.Image, error) {
	if fsys == nil {
		return nil, fmt.Errorf("no asset directory for %s", source)
	}
	f, err := fsys.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", source, err)
	}
	return img, nil
}

// Clear removes all images from the cache and deallocates them.
func (ic *ImageCache) Clear() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	for _, img := range ic.cache {
		img.Deallocate()
	}
	ic.cache = make(map[string]*ebiten.Image)
	ic.failed = make(map[string]error)
}

// Size returns the number of images in the cache.
func (ic *ImageCache) Size() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return len(ic.cache)
}
