package crop

import (
	"image"
	"testing"
)

func TestScaledWidth(t *testing.T) {
	tests := []struct {
		w, h, height, want int
	}{
		{40, 60, 70, 47},
		{100, 100, 70, 70},
		{3, 2, 1, 2},
		{1, 1000, 10, 1},
		{60, 40, 70, 105},
	}
	for _, tt := range tests {
		if got := ScaledWidth(tt.w, tt.h, tt.height); got != tt.want {
			t.Errorf("ScaledWidth(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.height, got, tt.want)
		}
	}
}

func TestScaleToHeightDimensions(t *testing.T) {
	sizes := []image.Point{{40, 60}, {17, 9}, {1, 1}, {200, 33}, {7, 140}}
	for _, f := range []Filter{Nearest, Bilinear, CatmullRom} {
		for _, s := range sizes {
			img := blob(s.X, s.Y, image.Rect(0, 0, s.X, s.Y), opaque)
			out, err := ScaleToHeight(img, 70, f)
			if err != nil {
				t.Fatalf("%v %v: ScaleToHeight: %v", f, s, err)
			}
			if got := out.Bounds().Dy(); got != 70 {
				t.Errorf("%v %v: height = %d, want 70", f, s, got)
			}

			ideal := 70 * float64(s.X) / float64(s.Y)
			if got := float64(out.Bounds().Dx()); got < ideal-1 || got > ideal+1 {
				t.Errorf("%v %v: width = %v, want within 1 of %.2f", f, s, got, ideal)
			}
		}
	}
}

func TestScaleToHeightNearestKeepsColors(t *testing.T) {
	img := blob(4, 4, image.Rect(0, 0, 2, 4), opaque)
	out, err := ScaleToHeight(img, 8, Nearest)
	if err != nil {
		t.Fatalf("ScaleToHeight: %v", err)
	}
	for y := range 8 {
		for x := range 8 {
			got := out.NRGBAAt(x, y)
			if x < 4 && got != opaque {
				t.Errorf("(%d,%d) = %v, want %v", x, y, got, opaque)
			}
			if x >= 4 && got.A != 0 {
				t.Errorf("(%d,%d) alpha = %d, want 0", x, y, got.A)
			}
		}
	}
}

func TestScaleToHeightDeterministic(t *testing.T) {
	img := blob(13, 21, image.Rect(3, 3, 9, 17), opaque)
	a, err := ScaleToHeight(img, 70, Bilinear)
	if err != nil {
		t.Fatalf("ScaleToHeight: %v", err)
	}
	b, err := ScaleToHeight(img, 70, Bilinear)
	if err != nil {
		t.Fatalf("ScaleToHeight: %v", err)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs between runs", i)
		}
	}
}

func TestScaleToHeightInvalid(t *testing.T) {
	img := blob(4, 4, image.Rect(0, 0, 4, 4), opaque)
	for _, h := range []int{0, -5} {
		if _, err := ScaleToHeight(img, h, Nearest); err == nil {
			t.Errorf("ScaleToHeight(%d) succeeded, want error", h)
		}
	}
	if _, err := ScaleToHeight(image.NewNRGBA(image.Rectangle{}), 10, Nearest); err == nil {
		t.Error("ScaleToHeight(empty) succeeded, want error")
	}
}

func TestScaleToHeightSameSizeCopies(t *testing.T) {
	img := blob(5, 7, image.Rect(0, 0, 5, 7), opaque)
	out, err := ScaleToHeight(img, 7, Nearest)
	if err != nil {
		t.Fatalf("ScaleToHeight: %v", err)
	}
	if &out.Pix[0] == &img.Pix[0] {
		t.Error("ScaleToHeight returned the source buffer")
	}
}

func TestParseFilter(t *testing.T) {
	for _, f := range []Filter{Nearest, Bilinear, CatmullRom} {
		got, err := ParseFilter(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFilter(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFilter("lanczos"); err == nil {
		t.Error("ParseFilter(lanczos) succeeded, want error")
	}
}
