// Package sheet turns a raw sprite sheet into clean per-frame sprites:
// the background is keyed out, the sheet is cut into a grid of frames and
// every frame is cropped to its content and rescaled.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"spriteclean/chroma"
	"spriteclean/crop"
	"spriteclean/palette"
	"spriteclean/parallel"
)

type Frame struct {
	Index int
	Col   int
	Row   int
	// Source is the grid cell of the frame within the sheet.
	Source image.Rectangle
	// Content is the bounding box of the frame content within the sheet.
	// It is empty for placeholder frames.
	Content image.Rectangle
	Image   *image.NRGBA
	Empty   bool
}

// Scale is the factor applied to the cropped content to get Image.
func (f Frame) Scale() float64 {
	if f.Content.Empty() || f.Image == nil {
		return 1
	}
	return float64(f.Image.Rect.Dy()) / float64(f.Content.Dy())
}

type Result struct {
	Key   color.NRGBA
	Keyed int
	// Sheet is the keyed sheet before slicing.
	Sheet  *image.NRGBA
	Frames []Frame
	// Remainder counts the pixel columns and rows dropped by the grid.
	Remainder image.Point
	Skipped   int
}

// Process runs the whole pipeline over img. Frames are processed
// concurrently and returned in grid order.
func Process(ctx context.Context, img image.Image, opts Options, logger *slog.Logger) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	key := chroma.Detect(img, opts.KeySource, opts.Key)
	keyer := &chroma.Keyer{
		Key:       key,
		Tolerance: opts.Tolerance,
		Workers:   opts.Workers,
	}

	logger.Debug("keying", "key", chroma.Hex(key), "source", opts.KeySource, "tolerance", opts.Tolerance)
	keyed, n, err := keyer.Extract(img)
	if err != nil {
		return nil, fmt.Errorf("could not key sheet: %w", err)
	}

	res := &Result{
		Key:       key,
		Keyed:     n,
		Sheet:     keyed,
		Remainder: crop.Remainder(keyed.Rect, opts.Cols, opts.Rows),
	}
	logger.Info("keyed", "key", chroma.Hex(key), "pixels", n, "total", keyed.Rect.Dx()*keyed.Rect.Dy())

	cells, err := crop.Cells(keyed.Rect, opts.Cols, opts.Rows)
	if err != nil {
		return nil, err
	}
	if res.Remainder != (image.Point{}) {
		logger.Warn("frame grid does not divide sheet, dropping remainder",
			"width", keyed.Rect.Dx(), "height", keyed.Rect.Dy(),
			"cols", opts.Cols, "rows", opts.Rows,
			"dropped_x", res.Remainder.X, "dropped_y", res.Remainder.Y)
	}

	frames := make([]Frame, len(cells))
	errs := make([]error, len(cells))
	pool := parallel.Start(min(parallel.Workers(opts.Workers), len(cells)))
	for i, cell := range cells {
		pool.Do(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			frames[i], errs[i] = processFrame(keyed, cell, opts)
			frames[i].Index, frames[i].Col, frames[i].Row = i, i%opts.Cols, i/opts.Cols
		})
	}
	pool.Wait(true)

	for i, err := range errs {
		if err == nil {
			res.Frames = append(res.Frames, frames[i])
			continue
		}
		if !errors.Is(err, crop.ErrEmptyContent) {
			return nil, fmt.Errorf("could not process frame %d: %w", i, err)
		}

		switch opts.Empty {
		case FailEmpty:
			return nil, fmt.Errorf("frame %d: %w", i, err)
		case PlaceholderEmpty:
			logger.Warn("frame has no content, using placeholder", "frame", i)
			res.Frames = append(res.Frames, placeholder(i, cells[i], opts))
		default:
			logger.Warn("frame has no content, skipping", "frame", i)
			res.Skipped++
		}
	}

	return res, nil
}

func processFrame(keyed *image.NRGBA, cell image.Rectangle, opts Options) (Frame, error) {
	content, ok := crop.Bounds(keyed.SubImage(cell))
	if !ok {
		return Frame{Source: cell}, crop.ErrEmptyContent
	}

	img := crop.Copy(keyed, content)
	if opts.Height > 0 {
		var err error
		if img, err = crop.ScaleToHeight(img, opts.Height, opts.Filter); err != nil {
			return Frame{Source: cell}, err
		}
	}
	switch {
	case len(opts.Palette) == 0:
	case opts.Dither:
		img = palette.Dither(img, opts.Palette)
	default:
		img = palette.Quantize(img, opts.Palette)
	}

	return Frame{
		Source:  cell,
		Content: content,
		Image:   img,
	}, nil
}

func placeholder(i int, cell image.Rectangle, opts Options) Frame {
	w, h := cell.Dx(), cell.Dy()
	if opts.Height > 0 {
		w, h = crop.ScaledWidth(w, h, opts.Height), opts.Height
	}

	return Frame{
		Index:  i,
		Col:    i % opts.Cols,
		Row:    i / opts.Cols,
		Source: cell,
		Image:  image.NewNRGBA(image.Rect(0, 0, w, h)),
		Empty:  true,
	}
}
