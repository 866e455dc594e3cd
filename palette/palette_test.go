package palette

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

var testPalette = color.Palette{
	color.RGBA{R: 0, G: 0, B: 0, A: 255},
	color.RGBA{R: 255, G: 255, B: 255, A: 255},
	color.RGBA{R: 200, G: 40, B: 40, A: 255},
}

func TestWriteThenLoad(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteTo(&buf, []color.Palette{testPalette[:2], testPalette[2:]})
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 3 {
		t.Errorf("WriteTo wrote %d colors, want 3", n)
	}

	path := filepath.Join(t.TempDir(), "test.pal")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pal, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pal) != len(testPalette) {
		t.Fatalf("Load = %d colors, want %d", len(pal), len(testPalette))
	}
	for i := range pal {
		if pal[i] != testPalette[i] {
			t.Errorf("color %d = %v, want %v", i, pal[i], testPalette[i])
		}
	}
}

func TestReadFromRejectsOtherForms(t *testing.T) {
	data := []byte("RIFF\x04\x00\x00\x00WAVE")
	if _, err := ReadFrom(bytes.NewReader(data)); err == nil {
		t.Error("ReadFrom(WAVE) succeeded, want error")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.pal")); err == nil {
		t.Error("Load(missing) succeeded, want error")
	}
}

func TestMatcherIndex(t *testing.T) {
	m := NewMatcher(testPalette)
	tests := []struct {
		c    color.Color
		want int
	}{
		{color.RGBA{R: 10, G: 10, B: 10, A: 255}, 0},
		{color.RGBA{R: 240, G: 250, B: 245, A: 255}, 1},
		{color.RGBA{R: 180, G: 30, B: 50, A: 255}, 2},
		{testPalette[2], 2},
	}
	for _, tt := range tests {
		if got := m.Index(tt.c); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestQuantizeKeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 190, G: 50, B: 45, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 250, G: 250, B: 250, A: 100})

	out := Quantize(img, testPalette)
	tests := []struct {
		x    int
		want color.NRGBA
	}{
		{0, color.NRGBA{R: 200, G: 40, B: 40, A: 255}},
		{1, color.NRGBA{R: 255, G: 255, B: 255, A: 100}},
		{2, color.NRGBA{}},
	}
	for _, tt := range tests {
		if got := out.NRGBAAt(tt.x, 0); got != tt.want {
			t.Errorf("pixel %d = %v, want %v", tt.x, got, tt.want)
		}
	}
	if got := img.NRGBAAt(0, 0); got.R != 190 {
		t.Errorf("source modified: %v", got)
	}
}

func TestDitherMixesAndKeepsAlpha(t *testing.T) {
	bw := color.Palette{color.Black, color.White}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, G: 128, B: 128, A: 0xFF})
		}
	}
	img.SetNRGBA(3, 3, color.NRGBA{})
	img.SetNRGBA(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 60})

	out := Dither(img, bw)

	var black, white int
	for y := range 8 {
		for x := range 8 {
			c := out.NRGBAAt(x, y)
			switch {
			case x == 3 && y == 3:
				if c != (color.NRGBA{}) {
					t.Errorf("transparent pixel = %v, want zero", c)
				}
				continue
			case x == 4 && y == 4:
				if c.A != 60 {
					t.Errorf("alpha = %d, want 60", c.A)
				}
			}

			switch {
			case c.R == 0 && c.G == 0 && c.B == 0:
				black++
			case c.R == 0xFF && c.G == 0xFF && c.B == 0xFF:
				white++
			default:
				t.Errorf("pixel (%d,%d) = %v, not in palette", x, y, c)
			}
		}
	}
	if black == 0 || white == 0 {
		t.Errorf("black = %d, white = %d, want a mix", black, white)
	}
}

func TestDitherLargePalette(t *testing.T) {
	pal := make(color.Palette, 0, 300)
	for i := range 256 {
		pal = append(pal, color.NRGBA{B: uint8(i), A: 0xFF})
	}
	red := color.NRGBA{R: 0xFF, A: 0xFF}
	pal = append(pal, red)
	for i := range 43 {
		pal = append(pal, color.NRGBA{G: uint8(i * 5), A: 0xFF})
	}

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetNRGBA(x, y, red)
		}
	}

	dithered := Dither(img, pal)
	quantized := Quantize(img, pal)
	for y := range 2 {
		for x := range 2 {
			if got := dithered.NRGBAAt(x, y); got != red {
				t.Errorf("Dither pixel (%d,%d) = %v, want %v", x, y, got, red)
			}
			if got := quantized.NRGBAAt(x, y); got != red {
				t.Errorf("Quantize pixel (%d,%d) = %v, want %v", x, y, got, red)
			}
		}
	}
}
