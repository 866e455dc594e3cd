package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Formats lists the output formats that can carry transparency.
var Formats = []string{"png", "gif", "bmp", "tiff"}

var ErrExists = errors.New("destination file already exists")

// WriteFile creates dir/name through a temporary file in the same folder,
// renaming it into place only once write succeeded. An existing file is
// replaced only when overwrite is set.
func WriteFile(dir, name string, overwrite bool, write func(io.Writer) error) (err error) {
	dest := filepath.Join(dir, name)
	if err := checkDest(dest, overwrite); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", dir, err)
	}

	outFile, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", name, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", name, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", name, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(outFile.Name())
		}
	}()

	if err = write(outFile); err != nil {
		return err
	}

	canRename = true
	return nil
}

// Save encodes img in the given format as dir/name, replacing the extension
// of name with the format. It returns the path written.
func Save(img image.Image, format, dir, name string, overwrite bool) (string, error) {
	destName := fmt.Sprintf("%s.%s", strings.TrimSuffix(name, filepath.Ext(name)), format)

	var encode func(io.Writer) error
	switch format {
	case "png":
		encode = func(w io.Writer) error {
			enc := png.Encoder{
				CompressionLevel: png.BestCompression,
				BufferPool:       pngPool,
			}
			if err := enc.Encode(w, img); err != nil {
				return fmt.Errorf("could not encode PNG destination %q: %w", destName, err)
			}
			return nil
		}
	case "gif":
		encode = func(w io.Writer) error {
			if err := gif.Encode(w, toPaletted(img), nil); err != nil {
				return fmt.Errorf("could not encode GIF destination %q: %w", destName, err)
			}
			return nil
		}
	case "bmp":
		encode = func(w io.Writer) error {
			if err := bmp.Encode(w, img); err != nil {
				return fmt.Errorf("could not encode BMP destination %q: %w", destName, err)
			}
			return nil
		}
	case "tiff":
		encode = func(w io.Writer) error {
			if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
				return fmt.Errorf("could not encode TIFF destination %q: %w", destName, err)
			}
			return nil
		}
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}

	if err := WriteFile(dir, destName, overwrite, encode); err != nil {
		return "", err
	}
	return filepath.Join(dir, destName), nil
}

func checkDest(dest string, overwrite bool) error {
	info, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot replace non-regular file %q: %s", dest, info.Mode().String())
	}
	if !overwrite {
		return fmt.Errorf("%w: %q", ErrExists, dest)
	}
	return nil
}

// gifPalette is the web-safe palette with index 0 reserved for transparency.
var gifPalette = append(color.Palette{color.Transparent}, palette.WebSafe...)

func toPaletted(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok {
		return p
	}

	b := img.Bounds()
	dest := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), gifPalette)
	draw.Draw(dest, dest.Rect, img, b.Min, draw.Src)
	return dest
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
