// Package frames implements the full pipeline command: key, slice, crop and
// scale every input sheet and write the frames, with an optional atlas and
// animated preview.
package frames

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"spriteclean/atlas"
	"spriteclean/chroma"
	"spriteclean/crop"
	"spriteclean/imageio"
	"spriteclean/palette"
	"spriteclean/parallel"
	"spriteclean/sheet"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Inputs []string `arg:"" help:"Sprite sheets to process"`
	Out    string   `short:"o" help:"Destination folder. Each input gets its own subfolder when several are given" default:"frames" type:"path"`
	Prefix string   `help:"File name prefix of the frames" default:"frame"`
	chroma.Flags
	Cols   int    `name:"frames" help:"Number of frames per row" default:"3" env:"SPRITECLEAN_FRAMES" group:"slice"`
	Rows   int    `help:"Number of frame rows" default:"1" group:"slice"`
	Height int    `help:"Output frame height, 0 keeps the cropped size" default:"70" env:"SPRITECLEAN_HEIGHT" group:"slice"`
	Filter string `help:"Scaling filter" enum:"nearest,bilinear,catmullrom" default:"nearest" group:"slice"`
	Empty  string `help:"What to do with frames without content" enum:"skip,placeholder,fail" default:"skip" group:"slice"`

	Format    string `help:"Output format of the frames" enum:"png,gif,bmp,tiff" default:"png" env:"SPRITECLEAN_FORMAT" group:"output"`
	Palette   string `help:"RIFF PAL file to quantize the frames with" type:"existingfile" group:"output"`
	Dither    bool   `help:"Dither when quantizing to the palette" default:"false" group:"output"`
	SaveSheet bool   `help:"Also write the keyed sheet" default:"false" group:"output"`
	Atlas     bool   `help:"Also write a packed strip with a JSON manifest" default:"false" group:"output"`
	Padding   int    `help:"Pixels between frames in the atlas strip" default:"2" group:"output"`
	Preview   bool   `help:"Also write an animated GIF preview" default:"false" group:"output"`
	Delay     int    `help:"Preview and atlas frame delay in hundredths of a second" default:"15" group:"output"`
	Overwrite bool   `help:"Replace existing output files" default:"false" group:"output"`

	opts sheet.Options `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	dests := make(map[string]string, len(c.Inputs))
	for _, in := range c.Inputs {
		if err := imageio.Check(in); err != nil {
			return err
		}
		if len(c.Inputs) > 1 {
			name := stem(in)
			if prev, ok := dests[name]; ok {
				return fmt.Errorf("inputs %q and %q would both be written to %q", prev, in, filepath.Join(c.Out, name))
			}
			dests[name] = in
		}
	}
	if !slices.Contains(imageio.Formats, c.Format) {
		return fmt.Errorf("unsupported output format: %q", c.Format)
	}

	opts := sheet.DefaultOptions()
	var err error
	if opts.Key, opts.KeySource, err = c.Resolve(); err != nil {
		return err
	}
	if opts.Filter, err = crop.ParseFilter(c.Filter); err != nil {
		return err
	}
	if opts.Empty, err = sheet.ParseEmptyPolicy(c.Empty); err != nil {
		return err
	}
	opts.Tolerance = c.Tolerance
	opts.Cols, opts.Rows, opts.Height = c.Cols, c.Rows, c.Height
	opts.Dither = c.Dither
	if err := opts.Validate(); err != nil {
		return err
	}

	if c.Palette != "" {
		if opts.Palette, err = palette.Load(c.Palette); err != nil {
			return err
		}
	}

	switch {
	case c.Padding < 0:
		return fmt.Errorf("invalid atlas padding: %d", c.Padding)
	case c.Delay < 0:
		return fmt.Errorf("invalid frame delay: %d", c.Delay)
	case c.Prefix == "" || strings.ContainsAny(c.Prefix, `/\`):
		return fmt.Errorf("invalid frame prefix: %q", c.Prefix)
	}

	c.opts = opts
	return nil
}

func (c *CLICmd) Run(ctx context.Context, pool *parallel.Pool) error {
	opts := c.opts
	if len(c.Inputs) > 1 {
		opts.Workers = 1
	} else {
		opts.Workers = pool.Workers()
	}

	var processedCount, errCount, frameCount atomic.Uint64
	for _, in := range c.Inputs {
		pool.Do(func() {
			logger := slog.Default().With("file", in)

			dest := c.Out
			if len(c.Inputs) > 1 {
				dest = filepath.Join(c.Out, stem(in))
			}

			n, err := c.process(ctx, logger, in, dest, opts)
			if err != nil {
				errCount.Add(1)
				logger.Error("could not process sheet", "error", err)
				return
			}
			frameCount.Add(uint64(n))
			processedCount.Add(1)
		})
	}

	pool.Wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "frames", frameCount.Load(), "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d sheets", errors)
	}
	return nil
}

// process runs one sheet through the pipeline and writes its outputs to
// dest. It returns the number of frames written.
func (c *CLICmd) process(ctx context.Context, logger *slog.Logger, in, dest string, opts sheet.Options) (int, error) {
	img, _, err := imageio.Load(in)
	if err != nil {
		return 0, err
	}

	res, err := sheet.Process(ctx, img, opts, logger)
	if err != nil {
		return 0, err
	}

	if c.SaveSheet {
		path, err := imageio.Save(res.Sheet, c.Format, dest, c.Prefix+"_sheet", c.Overwrite)
		if err != nil {
			return 0, err
		}
		logger.Debug("saved sheet", "path", path)
	}

	images := make([]image.Image, 0, len(res.Frames))
	for _, f := range res.Frames {
		path, err := imageio.Save(f.Image, c.Format, dest, atlas.FrameName(c.Prefix, f.Index, c.Format), c.Overwrite)
		if err != nil {
			return 0, err
		}
		logger.Debug("saved frame", "path", path, "frame", f.Index, "empty", f.Empty,
			"width", f.Image.Rect.Dx(), "height", f.Image.Rect.Dy())
		images = append(images, f.Image)
	}

	if len(res.Frames) == 0 {
		logger.Warn("sheet has no frames with content")
		return 0, nil
	}

	if c.Atlas {
		if err := c.writeAtlas(logger, res.Frames, dest); err != nil {
			return 0, err
		}
	}

	if c.Preview {
		name := c.Prefix + "_preview.gif"
		if err := imageio.SaveAnimation(images, c.Delay, dest, name, c.Overwrite); err != nil {
			return 0, err
		}
		logger.Info("saved preview", "path", filepath.Join(dest, name), "frames", len(images))
	}

	logger.Info("processed", "key", chroma.Hex(res.Key), "frames", len(res.Frames), "skipped", res.Skipped,
		"dest", dest)
	return len(res.Frames), nil
}

func (c *CLICmd) writeAtlas(logger *slog.Logger, frames []sheet.Frame, dest string) error {
	strip, m, err := atlas.Pack(frames, atlas.Options{
		Image:    c.Prefix + "_atlas.png",
		Prefix:   c.Prefix,
		Format:   c.Format,
		Padding:  c.Padding,
		Duration: c.Delay * 10,
	})
	if err != nil {
		return fmt.Errorf("could not pack atlas: %w", err)
	}

	if _, err := imageio.Save(strip, "png", dest, m.Meta.Image, c.Overwrite); err != nil {
		return err
	}

	name := c.Prefix + "_atlas.json"
	if err := imageio.WriteFile(dest, name, c.Overwrite, func(w io.Writer) error {
		return m.Encode(w)
	}); err != nil {
		return fmt.Errorf("could not save atlas manifest %q: %w", name, err)
	}

	logger.Info("saved atlas", "image", filepath.Join(dest, m.Meta.Image), "manifest", filepath.Join(dest, name),
		"width", strip.Rect.Dx(), "height", strip.Rect.Dy())
	return nil
}

// stem is the input file name without its extension. It names the output
// subfolder of an input when several are processed.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
