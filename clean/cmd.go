// Package clean implements the command that only removes the key color
// from a sheet, leaving slicing to a later step.
package clean

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"spriteclean/chroma"
	"spriteclean/crop"
	"spriteclean/imageio"
	"spriteclean/parallel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Input string `arg:"" help:"Sprite sheet to clean"`
	Out   string `short:"o" help:"Output file. Defaults to <input>_clean next to the input" type:"path"`
	chroma.Flags
	Frames    int    `help:"Expected number of frames per row, used for the suggested frame size" default:"3"`
	Crop      bool   `help:"Crop the cleaned sheet to its content" default:"false"`
	Format    string `help:"Output format" enum:"png,gif,bmp,tiff" default:"png" env:"SPRITECLEAN_FORMAT"`
	Overwrite bool   `help:"Replace an existing output file" default:"false"`

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

	if c.Frames < 1 {
		return fmt.Errorf("invalid frame count: %d", c.Frames)
	}
	if !slices.Contains(imageio.Formats, c.Format) {
		return fmt.Errorf("unsupported output format: %q", c.Format)
	}

	if c.Out == "" {
		base := filepath.Base(c.Input)
		c.Out = filepath.Join(filepath.Dir(c.Input), strings.TrimSuffix(base, filepath.Ext(base))+"_clean."+c.Format)
	}
	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	logger := slog.Default().With("file", c.Input)

	img, _, err := imageio.Load(c.Input)
	if err != nil {
		return err
	}

	keyer := &chroma.Keyer{
		Key:       chroma.Detect(img, c.source, c.key),
		Tolerance: c.Tolerance,
		Workers:   pool.Workers(),
	}
	keyed, n, err := keyer.Extract(img)
	if err != nil {
		return fmt.Errorf("could not clean %q: %w", c.Input, err)
	}
	logger.Info("keyed", "key", chroma.Hex(keyer.Key), "source", c.source, "tolerance", c.Tolerance,
		"pixels", n, "total", keyed.Rect.Dx()*keyed.Rect.Dy())

	var out image.Image = keyed
	if c.Crop {
		cropped, err := crop.ToContent(keyed)
		if err != nil {
			return fmt.Errorf("could not crop %q: %w", c.Input, err)
		}
		logger.Info("cropped", "width", cropped.Rect.Dx(), "height", cropped.Rect.Dy())
		out = cropped
	}

	path, err := imageio.Save(out, c.Format, filepath.Dir(c.Out), filepath.Base(c.Out), c.Overwrite)
	if err != nil {
		return fmt.Errorf("could not save %q: %w", c.Out, err)
	}

	b := out.Bounds()
	logger.Info("saved", "path", path, "width", b.Dx(), "height", b.Dy())
	logger.Info("suggested frame", "frames", c.Frames, "width", b.Dx()/c.Frames, "height", b.Dy())
	return nil
}
