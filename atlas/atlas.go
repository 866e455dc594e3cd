// Package atlas packs processed frames into a single strip image and
// describes it with a TexturePacker JSON (hash format) manifest, which most
// 2D engines can load directly.
package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"

	"spriteclean/sheet"

	"golang.org/x/image/draw"
)

type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Entry describes one frame. SpriteSourceSize locates the trimmed sprite
// inside its untrimmed SourceSize cell, both at output scale.
type Entry struct {
	Frame            Rect `json:"frame"`
	Rotated          bool `json:"rotated"`
	Trimmed          bool `json:"trimmed"`
	SpriteSourceSize Rect `json:"spriteSourceSize"`
	SourceSize       Size `json:"sourceSize"`
	Duration         int  `json:"duration,omitempty"`
}

type Meta struct {
	App    string `json:"app"`
	Image  string `json:"image"`
	Format string `json:"format"`
	Size   Size   `json:"size"`
	Scale  string `json:"scale"`
}

type Manifest struct {
	Frames map[string]Entry `json:"frames"`
	Meta   Meta             `json:"meta"`
}

type Options struct {
	// Image is the file name of the packed strip, recorded in the manifest.
	Image string
	// Prefix and Format name frames as <prefix>_<index>.<format>.
	Prefix string
	// Format is the file extension of the frames, png when empty.
	Format string
	// Padding is the number of transparent pixels between frames.
	Padding int
	// Duration is the per-frame duration in milliseconds, omitted when zero.
	Duration int
}

// FrameName is the file name and manifest key of frame i.
func FrameName(prefix string, i int, format string) string {
	if format == "" {
		format = "png"
	}
	return fmt.Sprintf("%s_%02d.%s", prefix, i, format)
}

// Pack lays frames out left to right, top aligned, in one image.
func Pack(frames []sheet.Frame, opts Options) (*image.NRGBA, *Manifest, error) {
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no frames to pack")
	}
	if opts.Padding < 0 {
		return nil, nil, fmt.Errorf("invalid padding: %d", opts.Padding)
	}

	var size image.Point
	for i, f := range frames {
		b := f.Image.Bounds()
		if i > 0 {
			size.X += opts.Padding
		}
		size.X += b.Dx()
		size.Y = max(size.Y, b.Dy())
	}

	strip := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	m := &Manifest{
		Frames: make(map[string]Entry, len(frames)),
		Meta: Meta{
			App:    "spriteclean",
			Image:  opts.Image,
			Format: "RGBA8888",
			Size:   Size{W: size.X, H: size.Y},
			Scale:  "1",
		},
	}

	x := 0
	for _, f := range frames {
		b := f.Image.Bounds()
		dr := image.Rect(x, 0, x+b.Dx(), b.Dy())
		draw.Draw(strip, dr, f.Image, b.Min, draw.Src)

		e := entry(f, dr)
		e.Duration = opts.Duration
		m.Frames[FrameName(opts.Prefix, f.Index, opts.Format)] = e

		x += b.Dx() + opts.Padding
	}

	return strip, m, nil
}

func entry(f sheet.Frame, dr image.Rectangle) Entry {
	e := Entry{
		Frame:            Rect{X: dr.Min.X, Y: dr.Min.Y, W: dr.Dx(), H: dr.Dy()},
		SpriteSourceSize: Rect{W: dr.Dx(), H: dr.Dy()},
		SourceSize:       Size{W: dr.Dx(), H: dr.Dy()},
	}
	if f.Empty || f.Content.Empty() {
		return e
	}

	s := f.Scale()
	scaled := func(v int) int {
		return int(math.Round(float64(v) * s))
	}

	e.SpriteSourceSize.X = scaled(f.Content.Min.X - f.Source.Min.X)
	e.SpriteSourceSize.Y = scaled(f.Content.Min.Y - f.Source.Min.Y)
	e.SourceSize = Size{
		W: max(scaled(f.Source.Dx()), e.SpriteSourceSize.X+dr.Dx()),
		H: max(scaled(f.Source.Dy()), e.SpriteSourceSize.Y+dr.Dy()),
	}
	e.Trimmed = f.Content != f.Source
	return e
}

func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("could not encode manifest: %w", err)
	}
	return nil
}
