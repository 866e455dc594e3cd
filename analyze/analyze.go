// Package analyze inspects a raw sprite sheet and suggests keying
// parameters: the likely key color, how the sheet's colors spread around it
// and which colors the sprites are made of.
package analyze

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"spriteclean/chroma"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"
)

// maxSamples bounds the pixels fed to the statistics and to k-means.
const maxSamples = 12000

type Stats struct {
	Mean   float64
	StdDev float64
	P10    float64
	Median float64
	P90    float64
}

type Swatch struct {
	Color color.NRGBA
	// Share is the fraction of sampled sprite pixels in this cluster.
	Share float64
	// KeyDistance is the CIELAB distance to the key color.
	KeyDistance float64
}

type Report struct {
	Width  int
	Height int
	Model  string
	// Corners are the top-left, top-right, bottom-left and bottom-right
	// pixels.
	Corners  [4]color.NRGBA
	Dominant color.NRGBA

	Key        color.NRGBA
	Tolerance  int
	Keyed      int
	KeyedShare float64
	// Distance describes the Chebyshev distance of sampled pixels to the key.
	Distance Stats
	// Gap is the smallest distance above the tolerance among sampled
	// pixels, or -1 when every sample is keyed.
	Gap int

	Palette []Swatch

	SuggestedFrames int
	SuggestedFrame  image.Point
}

// Analyze builds a report for img keyed with key and tolerance. colors is
// the number of sprite colors to cluster; zero skips clustering.
func Analyze(img image.Image, key color.NRGBA, tolerance, colors, frames int) (*Report, error) {
	if err := chroma.CheckTolerance(tolerance); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, chroma.ErrEmptyImage
	}
	if frames < 1 {
		frames = 1
	}

	r := &Report{
		Width:           b.Dx(),
		Height:          b.Dy(),
		Model:           modelName(img),
		Dominant:        chroma.Dominant(img),
		Key:             key,
		Tolerance:       tolerance,
		Gap:             -1,
		SuggestedFrames: frames,
		SuggestedFrame:  image.Pt(b.Dx()/frames, b.Dy()),
	}
	for i, p := range []image.Point{
		b.Min,
		{X: b.Max.X - 1, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Max.Y - 1},
		b.Max.Sub(image.Pt(1, 1)),
	} {
		r.Corners[i] = color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA)
	}

	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/float64(maxSamples))) + 1
	}

	var distances []float64
	var sprite clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			d := chroma.Distance(c, key)
			if d <= tolerance {
				r.Keyed++
			}

			if (x-b.Min.X)%step != 0 || (y-b.Min.Y)%step != 0 {
				continue
			}
			distances = append(distances, float64(d))
			if d > tolerance {
				if r.Gap < 0 || d < r.Gap {
					r.Gap = d
				}
				if c.A > 0 {
					sprite = append(sprite, clusters.Coordinates{
						float64(c.R) / 0xFF,
						float64(c.G) / 0xFF,
						float64(c.B) / 0xFF,
					})
				}
			}
		}
	}
	r.KeyedShare = float64(r.Keyed) / float64(b.Dx()*b.Dy())
	r.Distance = describe(distances)

	if colors > 0 && len(sprite) > 0 {
		pal, err := cluster(sprite, min(colors, len(sprite)), key)
		if err != nil {
			return nil, err
		}
		r.Palette = pal
	}

	return r, nil
}

// Colors returns the clustered sprite colors as a palette.
func (r *Report) Colors() color.Palette {
	pal := make(color.Palette, len(r.Palette))
	for i, s := range r.Palette {
		pal[i] = s.Color
	}
	return pal
}

func describe(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}

	slices.Sort(xs)
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return Stats{
		Mean:   mean,
		StdDev: std,
		P10:    stat.Quantile(0.1, stat.Empirical, xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, xs, nil),
	}
}

func cluster(obs clusters.Observations, k int, key color.NRGBA) ([]Swatch, error) {
	km := kmeans.New()
	cc, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("could not cluster sprite colors: %w", err)
	}

	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	keyColor, _ := colorful.MakeColor(key)
	swatches := make([]Swatch, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}

		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, b := col.RGB255()
		swatches = append(swatches, Swatch{
			Color:       color.NRGBA{R: r, G: g, B: b, A: 0xFF},
			Share:       float64(len(c.Observations)) / float64(len(obs)),
			KeyDistance: col.DistanceLab(keyColor),
		})
	}
	return swatches, nil
}

func modelName(img image.Image) string {
	switch img.(type) {
	case *image.RGBA:
		return "RGBA"
	case *image.RGBA64:
		return "RGBA64"
	case *image.NRGBA:
		return "NRGBA"
	case *image.NRGBA64:
		return "NRGBA64"
	case *image.Paletted:
		return "P"
	case *image.Gray:
		return "L"
	case *image.Gray16:
		return "L16"
	case *image.YCbCr:
		return "YCbCr"
	case *image.CMYK:
		return "CMYK"
	}
	return fmt.Sprintf("%T", img)
}
