package crop

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

type Filter int

const (
	Nearest Filter = iota
	Bilinear
	CatmullRom
)

func (f Filter) String() string {
	switch f {
	case Bilinear:
		return "bilinear"
	case CatmullRom:
		return "catmullrom"
	default:
		return "nearest"
	}
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	case "catmullrom":
		return CatmullRom, nil
	}
	return Nearest, fmt.Errorf("unsupported filter: %q", s)
}

func (f Filter) interpolator() draw.Interpolator {
	switch f {
	case Bilinear:
		return draw.BiLinear
	case CatmullRom:
		return draw.CatmullRom
	default:
		return draw.NearestNeighbor
	}
}

// ScaledWidth is the width that keeps the w:h aspect ratio at the given
// height, rounded to the nearest pixel and never below one.
func ScaledWidth(w, h, height int) int {
	if h <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(height)*float64(w)/float64(h))))
}

// ScaleToHeight resizes img to exactly height pixels tall, keeping its
// aspect ratio. The result is a new image anchored at (0,0).
func ScaleToHeight(img image.Image, height int, f Filter) (*image.NRGBA, error) {
	if height <= 0 {
		return nil, fmt.Errorf("invalid target height: %d", height)
	}

	sr := img.Bounds()
	if sr.Empty() {
		return nil, ErrEmptyImage
	}

	width := ScaledWidth(sr.Dx(), sr.Dy(), height)
	if width == sr.Dx() && height == sr.Dy() {
		return Copy(img, sr), nil
	}

	dest := image.NewNRGBA(image.Rect(0, 0, width, height))
	f.interpolator().Scale(dest, dest.Rect, img, sr, draw.Src, nil)
	return dest, nil
}
