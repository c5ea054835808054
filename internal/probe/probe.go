package probe

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// SizeResolver resolves the pixel dimensions of an image file.
//
// Implementations return an error when the size cannot be determined; the
// caller decides whether that is fatal.
type SizeResolver interface {
	Size(path string) (Dimensions, error)
}

// DecodeResolver determines image sizes by decoding file headers.
//
// It supports every extension the converter discovers: JPEG, PNG, GIF, BMP,
// and TIFF. Only the image config is decoded, not the pixel data, so probing
// large files stays cheap.
type DecodeResolver struct{}

// Size implements SizeResolver.
func (DecodeResolver) Size(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
