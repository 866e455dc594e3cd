package chroma

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/cenkalti/dominantcolor"
)

// Source selects where the key color comes from.
type Source int

const (
	// SourceColor uses the color given by the caller.
	SourceColor Source = iota
	// SourceCorner uses the top-left pixel of the sheet.
	SourceCorner
	// SourceDominant uses the most common color of the sheet.
	SourceDominant
)

func (s Source) String() string {
	switch s {
	case SourceCorner:
		return "corner"
	case SourceDominant:
		return "dominant"
	default:
		return "color"
	}
}

func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "", "color":
		return SourceColor, nil
	case "corner":
		return SourceCorner, nil
	case "dominant":
		return SourceDominant, nil
	}
	return SourceColor, fmt.Errorf("unsupported key source: %q", s)
}

// Detect resolves the key color for img.
func Detect(img image.Image, src Source, explicit color.NRGBA) color.NRGBA {
	switch src {
	case SourceCorner:
		return Corner(img)
	case SourceDominant:
		return Dominant(img)
	default:
		return explicit
	}
}

// Corner returns the top-left pixel of img, fully opaque.
func Corner(img image.Image) color.NRGBA {
	b := img.Bounds()
	if b.Empty() {
		return Magenta
	}
	c := color.NRGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.NRGBA)
	c.A = 0xFF
	return c
}

// Dominant returns the heaviest dominant color of img. Sheets drawn on a
// key background are mostly background, so this is usually the key.
func Dominant(img image.Image) color.NRGBA {
	candidates := dominantcolor.FindWeight(img, 4)
	if len(candidates) == 0 {
		return Corner(img)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Weight > best.Weight {
			best = c
		}
	}
	return color.NRGBA{R: best.RGBA.R, G: best.RGBA.G, B: best.RGBA.B, A: 0xFF}
}

// ParseColor reads #RGB, #RGBA, #RRGGBB, #RRGGBBAA or a decimal "r,g,b"
// triple. Colors without an alpha component are opaque.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	c := color.NRGBA{A: 0xFF}

	if strings.Contains(s, ",") {
		fields := strings.Split(s, ",")
		if len(fields) != 3 {
			return c, fmt.Errorf("invalid color %q, want 3 fields, got %d", s, len(fields))
		}
		var rgb [3]uint8
		for i, f := range fields {
			v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
			if err != nil {
				return c, fmt.Errorf("could not read color %q: %w", s, err)
			}
			rgb[i] = uint8(v)
		}
		c.R, c.G, c.B = rgb[0], rgb[1], rgb[2]
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return c, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB, #RRGGBBAA or r,g,b", s)
	}

	var format string
	args := []any{&c.R, &c.G, &c.B}
	switch len(hex) {
	case 3:
		format = "%1x%1x%1x"
	case 4:
		format = "%1x%1x%1x%1x"
		args = append(args, &c.A)
	case 6:
		format = "%2x%2x%2x"
	case 8:
		format = "%2x%2x%2x%2x"
		args = append(args, &c.A)
	default:
		return c, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB, #RRGGBBAA or r,g,b", s)
	}

	n, err := fmt.Sscanf(hex, format, args...)
	if err != nil {
		return c, fmt.Errorf("could not read color %q: %w", s, err)
	} else if n < len(args) {
		return c, fmt.Errorf("insufficient color fields in %q: %d", s, n)
	}

	if len(hex) <= 4 {
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		if len(args) == 4 {
			c.A |= c.A << 4
		}
	}

	return c, nil
}

// Hex formats c as #RRGGBB, adding the alpha byte when c is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
