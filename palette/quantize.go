package palette

import (
	"image"
	"image/color"

	"spriteclean/okcolor"

	"golang.org/x/image/draw"
)

// Matcher finds the perceptually closest palette entry for a color.
type Matcher struct {
	pal color.Palette
	lab []okcolor.Lab
}

func NewMatcher(pal color.Palette) *Matcher {
	m := &Matcher{
		pal: pal,
		lab: make([]okcolor.Lab, len(pal)),
	}
	for i, c := range pal {
		m.lab[i] = okcolor.FromColor(c)
	}
	return m
}

// Index returns the index of the palette entry closest to c in OKLab.
// Alpha takes no part in the match.
func (m *Matcher) Index(c color.Color) int {
	lc := okcolor.FromColor(c)
	ret, best := 0, -1.0
	for i, v := range m.lab {
		d := okcolor.Distance(lc, v)
		if best < 0 || d < best {
			if d == 0 {
				return i
			}
			ret, best = i, d
		}
	}
	return ret
}

// Quantize returns a copy of img whose visible pixels are replaced by their
// closest palette color. Alpha is kept, so transparent pixels stay
// transparent and the palette never has to hold a transparent entry.
func Quantize(img *image.NRGBA, pal color.Palette) *image.NRGBA {
	out := clone(img)
	if len(pal) == 0 {
		return out
	}

	m := NewMatcher(pal)
	cache := make(map[[3]uint8]color.NRGBA)
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := out.Pix[out.PixOffset(b.Min.X, y):out.PixOffset(b.Min.X, y)+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				continue
			}

			key := [3]uint8{row[i], row[i+1], row[i+2]}
			c, ok := cache[key]
			if !ok {
				c = color.NRGBAModel.Convert(pal[m.Index(color.NRGBA{R: key[0], G: key[1], B: key[2], A: 0xFF})]).(color.NRGBA)
				cache[key] = c
			}
			row[i], row[i+1], row[i+2] = c.R, c.G, c.B
		}
	}
	return out
}

// maxDitherColors is the most colors an image.Paletted can index.
const maxDitherColors = 256

// Dither is Quantize with Floyd-Steinberg error diffusion. Error only
// spreads between visible pixels, and alpha is kept. Palettes larger than
// an indexed image can address are quantized without dithering.
func Dither(img *image.NRGBA, pal color.Palette) *image.NRGBA {
	if len(pal) > maxDitherColors {
		return Quantize(img, pal)
	}

	out := clone(img)
	if len(pal) == 0 {
		return out
	}

	b := img.Rect
	opaque := clone(img)
	for i := 3; i < len(opaque.Pix); i += 4 {
		if opaque.Pix[i] != 0 {
			opaque.Pix[i] = 0xFF
		}
	}

	dst := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(dst, b, opaque, b.Min)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := out.PixOffset(x, y)
			if out.Pix[i+3] == 0 {
				continue
			}
			c := color.NRGBAModel.Convert(pal[dst.ColorIndexAt(x, y)]).(color.NRGBA)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c.R, c.G, c.B
		}
	}
	return out
}

func clone(img *image.NRGBA) *image.NRGBA {
	b := img.Rect
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		copy(out.Pix[out.PixOffset(b.Min.X, y):], img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)])
	}
	return out
}
