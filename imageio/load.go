// Package imageio loads source sheets and writes processed images, palettes
// and manifests to disk.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrMissingAsset is returned when a source image does not exist.
var ErrMissingAsset = errors.New("missing asset")

// Check verifies that path names an existing regular file.
func Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w %q: %w", ErrMissingAsset, path, err)
		}
		return fmt.Errorf("cannot stat source file %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file %q: %s", path, info.Mode().String())
	}
	return nil
}

// Load decodes the image at path and returns it with its format name.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w %q: %w", ErrMissingAsset, path, err)
		}
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close image", "file", path, "error", closeErr)
		}
	}()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, "", fmt.Errorf("image %q has no pixels", path)
	}

	return img, format, nil
}
