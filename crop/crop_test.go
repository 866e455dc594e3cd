package crop

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

var opaque = color.NRGBA{R: 20, G: 120, B: 40, A: 255}

func blob(w, h int, r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want image.Rectangle
	}{
		{"single pixel", blob(10, 10, image.Rect(4, 5, 5, 6), opaque), image.Rect(4, 5, 5, 6)},
		{"full", blob(3, 2, image.Rect(0, 0, 3, 2), opaque), image.Rect(0, 0, 3, 2)},
		{"block", blob(20, 10, image.Rect(2, 3, 8, 9), opaque), image.Rect(2, 3, 8, 9)},
		{"faint alpha", blob(5, 5, image.Rect(1, 1, 2, 2), color.NRGBA{R: 9, A: 1}), image.Rect(1, 1, 2, 2)},
	}
	for _, tt := range tests {
		got, ok := Bounds(tt.img)
		if !ok {
			t.Errorf("%s: Bounds found no content", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: Bounds = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBoundsUnionsIslands(t *testing.T) {
	img := blob(30, 30, image.Rect(2, 2, 5, 5), opaque)
	for y := 20; y < 25; y++ {
		for x := 22; x < 27; x++ {
			img.SetNRGBA(x, y, opaque)
		}
	}

	got, ok := Bounds(img)
	if !ok {
		t.Fatal("Bounds found no content")
	}
	if want := image.Rect(2, 2, 27, 25); got != want {
		t.Errorf("Bounds = %v, want %v", got, want)
	}
}

func TestBoundsSubImageCoordinates(t *testing.T) {
	img := blob(40, 20, image.Rect(25, 4, 30, 10), opaque)
	sub := img.SubImage(image.Rect(20, 0, 40, 20))

	got, ok := Bounds(sub)
	if !ok {
		t.Fatal("Bounds found no content")
	}
	if want := image.Rect(25, 4, 30, 10); got != want {
		t.Errorf("Bounds = %v, want %v", got, want)
	}
}

func TestBoundsRGBAAndGeneric(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 6, 6))
	rgba.SetRGBA(2, 3, color.RGBA{R: 10, A: 10})
	if got, ok := Bounds(rgba); !ok || got != image.Rect(2, 3, 3, 4) {
		t.Errorf("Bounds(RGBA) = %v, %v", got, ok)
	}

	gray := image.NewGray(image.Rect(0, 0, 3, 3))
	if got, ok := Bounds(gray); !ok || got != gray.Bounds() {
		t.Errorf("Bounds(Gray) = %v, %v, want whole image", got, ok)
	}
}

func TestToContentTight(t *testing.T) {
	img := blob(50, 40, image.Rect(10, 5, 30, 35), opaque)
	out, err := ToContent(img)
	if err != nil {
		t.Fatalf("ToContent: %v", err)
	}

	b := out.Bounds()
	if want := image.Rect(0, 0, 20, 30); b != want {
		t.Fatalf("bounds = %v, want %v", b, want)
	}

	edgeHasContent := func(xs, ys []int) bool {
		for _, y := range ys {
			for _, x := range xs {
				if out.NRGBAAt(x, y).A > 0 {
					return true
				}
			}
		}
		return false
	}
	span := func(n int) []int {
		s := make([]int, n)
		for i := range s {
			s[i] = i
		}
		return s
	}
	if !edgeHasContent(span(b.Dx()), []int{0}) {
		t.Error("top row has no content")
	}
	if !edgeHasContent(span(b.Dx()), []int{b.Dy() - 1}) {
		t.Error("bottom row has no content")
	}
	if !edgeHasContent([]int{0}, span(b.Dy())) {
		t.Error("left column has no content")
	}
	if !edgeHasContent([]int{b.Dx() - 1}, span(b.Dy())) {
		t.Error("right column has no content")
	}
}

func TestToContentPreservesPixels(t *testing.T) {
	img := blob(8, 8, image.Rect(2, 2, 6, 6), opaque)
	marked := color.NRGBA{R: 1, G: 2, B: 3, A: 77}
	img.SetNRGBA(3, 4, marked)

	out, err := ToContent(img)
	if err != nil {
		t.Fatalf("ToContent: %v", err)
	}
	if got := out.NRGBAAt(1, 2); got != marked {
		t.Errorf("pixel = %v, want %v", got, marked)
	}
}

func TestToContentDoesNotAlias(t *testing.T) {
	img := blob(8, 8, image.Rect(0, 0, 8, 8), opaque)
	out, err := ToContent(img)
	if err != nil {
		t.Fatalf("ToContent: %v", err)
	}
	img.SetNRGBA(0, 0, color.NRGBA{})
	if got := out.NRGBAAt(0, 0); got != opaque {
		t.Errorf("crop changed with source: %v", got)
	}
}

func TestToContentEmpty(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	out, err := ToContent(img)
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("ToContent(transparent) error = %v, want ErrEmptyContent", err)
	}
	if out != nil {
		t.Errorf("ToContent(transparent) = %v, want nil", out.Bounds())
	}

	if _, err := ToContent(image.NewNRGBA(image.Rectangle{})); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("ToContent(zero area) error = %v, want ErrEmptyImage", err)
	}
}
