package imageio

import (
	"fmt"
	"image"
	"image/gif"
	"io"

	"golang.org/x/image/draw"
)

// SaveAnimation writes frames as a looping GIF. Frames are centered
// horizontally and aligned to the bottom of a canvas large enough for the
// biggest frame, so a sprite standing on the ground stays put. delay is in
// hundredths of a second.
func SaveAnimation(frames []image.Image, delay int, dir, name string, overwrite bool) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to animate")
	}

	var canvas image.Point
	for _, f := range frames {
		b := f.Bounds()
		canvas.X = max(canvas.X, b.Dx())
		canvas.Y = max(canvas.Y, b.Dy())
	}

	anim := &gif.GIF{
		Config: image.Config{
			ColorModel: gifPalette,
			Width:      canvas.X,
			Height:     canvas.Y,
		},
	}
	for _, f := range frames {
		b := f.Bounds()
		dest := image.NewPaletted(image.Rect(0, 0, canvas.X, canvas.Y), gifPalette)
		at := image.Pt((canvas.X-b.Dx())/2, canvas.Y-b.Dy())
		draw.Draw(dest, image.Rectangle{Min: at, Max: at.Add(b.Size())}, f, b.Min, draw.Src)

		anim.Image = append(anim.Image, dest)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	return WriteFile(dir, name, overwrite, func(w io.Writer) error {
		if err := gif.EncodeAll(w, anim); err != nil {
			return fmt.Errorf("could not encode animation %q: %w", name, err)
		}
		return nil
	})
}
