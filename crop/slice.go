package crop

import (
	"errors"
	"fmt"
	"image"
)

var ErrDegenerateSlice = errors.New("cannot slice image")

// Cells splits b into a cols x rows grid of equal cells, row-major.
// Each cell is b.Dx()/cols wide and b.Dy()/rows tall; pixels left over by
// the integer division are dropped from the last column and row.
func Cells(b image.Rectangle, cols, rows int) ([]image.Rectangle, error) {
	if cols < 1 || rows < 1 || cols > b.Dx() || rows > b.Dy() {
		return nil, fmt.Errorf("%w: %dx%d frames from %dx%d pixels", ErrDegenerateSlice, cols, rows, b.Dx(), b.Dy())
	}

	fw, fh := b.Dx()/cols, b.Dy()/rows
	cells := make([]image.Rectangle, 0, cols*rows)
	for row := range rows {
		for col := range cols {
			x, y := b.Min.X+col*fw, b.Min.Y+row*fh
			cells = append(cells, image.Rect(x, y, x+fw, y+fh))
		}
	}
	return cells, nil
}

// Remainder returns how many columns and rows of pixels Cells drops.
func Remainder(b image.Rectangle, cols, rows int) image.Point {
	if cols < 1 || rows < 1 {
		return image.Point{}
	}
	return image.Pt(b.Dx()%cols, b.Dy()%rows)
}

// Grid slices img into cols x rows frames, row-major. Frames share pixels
// with img when it supports SubImage.
func Grid(img image.Image, cols, rows int) ([]image.Image, error) {
	cells, err := Cells(img.Bounds(), cols, rows)
	if err != nil {
		return nil, err
	}

	frames := make([]image.Image, len(cells))
	for i, r := range cells {
		frames[i] = subImage(img, r)
	}
	return frames, nil
}

// Slice cuts img into n equal-width, full-height frames.
func Slice(img image.Image, n int) ([]image.Image, error) {
	return Grid(img, n, 1)
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

func subImage(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	return Copy(img, r)
}
