// Package crop trims transparent borders off images, rescales them to a
// target height and slices sprite sheets into frames.
package crop

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrEmptyContent is returned when an image has no pixel with alpha > 0.
	// Callers usually skip the frame or replace it with a placeholder.
	ErrEmptyContent = errors.New("no content")
	ErrEmptyImage   = errors.New("image has no pixels")
)

// Bounds returns the smallest rectangle holding every pixel of img with a
// non-zero alpha, in img's coordinate space. Disjoint islands of content
// share one rectangle. ok is false when there is no such pixel.
func Bounds(img image.Image) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	alpha := alphaAt(img)

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if alpha(x, y) == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// ToContent copies the content bounding box of img into a new image
// anchored at (0,0). The result never shares pixels with img.
func ToContent(img image.Image) (*image.NRGBA, error) {
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	r, ok := Bounds(img)
	if !ok {
		return nil, ErrEmptyContent
	}
	return Copy(img, r), nil
}

// Copy copies the r region of img into a new image anchored at (0,0).
func Copy(img image.Image, r image.Rectangle) *image.NRGBA {
	r = r.Intersect(img.Bounds())
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		width := r.Dx() * 4
		for y := range r.Dy() {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+width], src.Pix[i:i+width])
		}
		return out
	}

	draw.Draw(out, out.Rect, img, r.Min, draw.Src)
	return out
}

func alphaAt(img image.Image) func(x, y int) uint8 {
	switch src := img.(type) {
	case *image.NRGBA:
		return func(x, y int) uint8 {
			return src.Pix[src.PixOffset(x, y)+3]
		}
	case *image.RGBA:
		return func(x, y int) uint8 {
			return src.Pix[src.PixOffset(x, y)+3]
		}
	case *image.Alpha:
		return func(x, y int) uint8 {
			return src.Pix[src.PixOffset(x, y)]
		}
	}

	return func(x, y int) uint8 {
		_, _, _, a := img.At(x, y).RGBA()
		if a > 0 && a < 0x101 {
			// keep faint pixels countable after the 16 to 8 bit shift
			return 1
		}
		return uint8(a >> 8)
	}
}
