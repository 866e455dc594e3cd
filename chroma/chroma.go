// Package chroma removes a chroma-key background from an image.
//
// A pixel is background when the Chebyshev distance between its RGB channels
// and the key color, max(|r-kr|, |g-kg|, |b-kb|), is at most the tolerance.
// Background pixels become fully transparent; every other pixel is copied
// unchanged.
package chroma

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"spriteclean/parallel"

	"golang.org/x/image/draw"
)

// MaxTolerance is the largest accepted tolerance. At this value every pixel
// is keyed out.
const MaxTolerance = 255

var (
	ErrInvalidTolerance = errors.New("tolerance out of range [0,255]")
	ErrEmptyImage       = errors.New("image has no pixels")
)

// Magenta is the default key color.
var Magenta = color.NRGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}

type Keyer struct {
	Key       color.NRGBA
	Tolerance int
	// Workers is the number of goroutines sharing the rows of an image.
	// Values below one use one goroutine per CPU.
	Workers int
}

func New(key color.Color, tolerance int) (*Keyer, error) {
	if err := CheckTolerance(tolerance); err != nil {
		return nil, err
	}

	return &Keyer{
		Key:       color.NRGBAModel.Convert(key).(color.NRGBA),
		Tolerance: tolerance,
		Workers:   1,
	}, nil
}

// Extract keys img with a single goroutine.
func Extract(img image.Image, key color.Color, tolerance int) (*image.NRGBA, error) {
	k, err := New(key, tolerance)
	if err != nil {
		return nil, err
	}

	out, _, err := k.Extract(img)
	return out, err
}

func CheckTolerance(tolerance int) error {
	if tolerance < 0 || tolerance > MaxTolerance {
		return fmt.Errorf("%w: %d", ErrInvalidTolerance, tolerance)
	}
	return nil
}

// Extract returns a keyed copy of img anchored at (0,0) together with the
// number of pixels made transparent. img is never modified.
func (k *Keyer) Extract(img image.Image) (*image.NRGBA, int, error) {
	if err := CheckTolerance(k.Tolerance); err != nil {
		return nil, 0, err
	}
	if img.Bounds().Empty() {
		return nil, 0, ErrEmptyImage
	}

	out := toNRGBA(img)
	width := out.Rect.Dx() * 4

	var keyed atomic.Int64
	parallel.Rows(out.Rect.Dy(), k.Workers, func(y0, y1 int) {
		n := 0
		for y := y0; y < y1; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+width]
			for i := 0; i < len(row); i += 4 {
				if k.match(row[i], row[i+1], row[i+2]) {
					row[i], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
					n++
				}
			}
		}
		keyed.Add(int64(n))
	})

	return out, int(keyed.Load()), nil
}

// Mask reports, for every pixel of img, whether it would be keyed out.
// Keyed pixels are 0 in the mask, kept pixels 0xFF.
func (k *Keyer) Mask(img image.Image) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	src := toNRGBA(img)
	for y := range b.Dy() {
		for x := range b.Dx() {
			c := src.NRGBAAt(x, y)
			if !k.match(c.R, c.G, c.B) {
				mask.Pix[y*mask.Stride+x] = 0xFF
			}
		}
	}
	return mask
}

func (k *Keyer) match(r, g, b uint8) bool {
	return distance(r, g, b, k.Key) <= k.Tolerance
}

// Distance is the Chebyshev distance between the RGB channels of c and key.
// Alpha is ignored.
func Distance(c, key color.NRGBA) int {
	return distance(c.R, c.G, c.B, key)
}

// Matches reports whether c is background for the given key and tolerance.
// The boundary is inclusive.
func Matches(c, key color.NRGBA, tolerance int) bool {
	return Distance(c, key) <= tolerance
}

func distance(r, g, b uint8, key color.NRGBA) int {
	return max(absDiff(r, key.R), absDiff(g, key.G), absDiff(b, key.B))
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// toNRGBA copies img into a fresh NRGBA image anchored at (0,0).
// NRGBA sources are copied byte for byte so colors under partial or zero
// alpha keep their RGB values.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		width := b.Dx() * 4
		for y := range b.Dy() {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+width], src.Pix[i:i+width])
		}
		return out
	}

	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
