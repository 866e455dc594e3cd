package analyze

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"

	"spriteclean/chroma"
	"spriteclean/imageio"
	"spriteclean/palette"

	"github.com/alecthomas/kong"
	"github.com/lucasb-eyer/go-colorful"
)

type CLICmd struct {
	Input string `arg:"" help:"Sprite sheet to analyze"`
	chroma.Flags
	Frames      int    `help:"Expected number of frames per row, used for the suggested frame size" default:"3"`
	Colors      int    `help:"Number of sprite colors to cluster, 0 to skip" default:"6"`
	SavePalette string `help:"Write the sprite colors to this RIFF PAL file" type:"path"`
	SaveMask    string `help:"Write the keying mask to this PNG file, opaque where pixels are kept" type:"path"`
	Overwrite   bool   `help:"Replace existing output files" default:"false"`

	key    color.NRGBA   `kong:"-"`
	source chroma.Source `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := imageio.Check(c.Input); err != nil {
		return err
	}

	var err error
	if c.key, c.source, err = c.Resolve(); err != nil {
		return err
	}

	switch {
	case c.Frames < 1:
		return fmt.Errorf("invalid frame count: %d", c.Frames)
	case c.Colors < 0:
		return fmt.Errorf("invalid color count: %d", c.Colors)
	case c.SavePalette != "" && c.Colors == 0:
		return fmt.Errorf("cannot save a palette without clustering colors")
	}
	return nil
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.Input)

	img, format, err := imageio.Load(c.Input)
	if err != nil {
		return err
	}

	key := chroma.Detect(img, c.source, c.key)
	r, err := Analyze(img, key, c.Tolerance, c.Colors, c.Frames)
	if err != nil {
		return fmt.Errorf("could not analyze %q: %w", c.Input, err)
	}

	logger.Info("image", "format", format, "model", r.Model, "width", r.Width, "height", r.Height)
	logger.Info("corners",
		"top_left", chroma.Hex(r.Corners[0]), "top_right", chroma.Hex(r.Corners[1]),
		"bottom_left", chroma.Hex(r.Corners[2]), "bottom_right", chroma.Hex(r.Corners[3]))
	logger.Info("key", "source", c.source, "color", chroma.Hex(r.Key), "dominant", chroma.Hex(r.Dominant),
		"tolerance", r.Tolerance, "keyed", r.Keyed, "share", fmt.Sprintf("%.1f%%", 100*r.KeyedShare))
	logger.Info("distance", "mean", fmt.Sprintf("%.1f", r.Distance.Mean), "stddev", fmt.Sprintf("%.1f", r.Distance.StdDev),
		"p10", r.Distance.P10, "median", r.Distance.Median, "p90", r.Distance.P90, "gap", r.Gap)
	if r.Gap >= 0 && r.Gap-r.Tolerance < 8 {
		logger.Warn("sprite colors are close to the key color, consider a lower tolerance", "gap", r.Gap)
	}
	for i, s := range r.Palette {
		col, _ := colorful.MakeColor(s.Color)
		logger.Info("swatch", "index", i, "color", col.Hex(),
			"share", fmt.Sprintf("%.1f%%", 100*s.Share), "key_distance", fmt.Sprintf("%.3f", s.KeyDistance))
	}
	logger.Info("suggested frame", "frames", r.SuggestedFrames,
		"width", r.SuggestedFrame.X, "height", r.SuggestedFrame.Y)

	if c.SavePalette != "" && len(r.Palette) > 0 {
		dir, name := filepath.Dir(c.SavePalette), filepath.Base(c.SavePalette)
		err := imageio.WriteFile(dir, name, c.Overwrite, func(w io.Writer) error {
			_, err := palette.WriteTo(w, []color.Palette{r.Colors()})
			return err
		})
		if err != nil {
			return fmt.Errorf("could not save palette %q: %w", c.SavePalette, err)
		}
		logger.Info("palette saved", "path", c.SavePalette, "colors", len(r.Palette))
	}

	if c.SaveMask != "" {
		keyer, err := chroma.New(key, c.Tolerance)
		if err != nil {
			return err
		}
		path, err := imageio.Save(keyer.Mask(img), "png", filepath.Dir(c.SaveMask), filepath.Base(c.SaveMask), c.Overwrite)
		if err != nil {
			return fmt.Errorf("could not save mask %q: %w", c.SaveMask, err)
		}
		logger.Info("mask saved", "path", path, "kept", r.Width*r.Height-r.Keyed)
	}
	return nil
}
