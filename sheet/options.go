package sheet

import (
	"fmt"
	"image/color"
	"strings"

	"spriteclean/chroma"
	"spriteclean/crop"
)

// EmptyPolicy decides what happens to a frame without any content.
type EmptyPolicy int

const (
	// SkipEmpty drops the frame from the result.
	SkipEmpty EmptyPolicy = iota
	// PlaceholderEmpty keeps a fully transparent frame in its place.
	PlaceholderEmpty
	// FailEmpty aborts the whole sheet.
	FailEmpty
)

func (p EmptyPolicy) String() string {
	switch p {
	case PlaceholderEmpty:
		return "placeholder"
	case FailEmpty:
		return "fail"
	default:
		return "skip"
	}
}

func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch strings.ToLower(s) {
	case "", "skip":
		return SkipEmpty, nil
	case "placeholder":
		return PlaceholderEmpty, nil
	case "fail":
		return FailEmpty, nil
	}
	return SkipEmpty, fmt.Errorf("unsupported empty frame policy: %q", s)
}

type Options struct {
	Key       color.NRGBA
	KeySource chroma.Source
	Tolerance int

	// Cols and Rows describe the frame grid of the sheet.
	Cols int
	Rows int

	// Height is the output frame height. Zero keeps the cropped size.
	Height int
	Filter crop.Filter
	Empty  EmptyPolicy

	// Palette, when set, is applied to every output frame.
	Palette color.Palette
	Dither  bool

	Workers int
}

func DefaultOptions() Options {
	return Options{
		Key:       chroma.Magenta,
		KeySource: chroma.SourceColor,
		Tolerance: 50,
		Cols:      3,
		Rows:      1,
		Height:    70,
		Filter:    crop.Nearest,
		Empty:     SkipEmpty,
	}
}

func (o Options) Validate() error {
	if err := chroma.CheckTolerance(o.Tolerance); err != nil {
		return err
	}

	switch {
	case o.Cols < 1:
		return fmt.Errorf("invalid frame columns: %d", o.Cols)
	case o.Rows < 1:
		return fmt.Errorf("invalid frame rows: %d", o.Rows)
	case o.Height < 0:
		return fmt.Errorf("invalid frame height: %d", o.Height)
	}
	return nil
}
