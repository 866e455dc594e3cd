package chroma

import (
	"fmt"
	"image/color"
)

// Flags are the command line options selecting the key color. They are
// embedded into every command that keys a sheet.
type Flags struct {
	Key       string `help:"Key color as #RGB, #RRGGBB or r,g,b" default:"#FF00FF" env:"SPRITECLEAN_KEY" group:"key"`
	KeySource string `help:"Where the key color comes from" enum:"color,corner,dominant" default:"color" env:"SPRITECLEAN_KEY_SOURCE" group:"key"`
	Tolerance int    `help:"Maximum per-channel distance to the key color, 0 to 255" default:"50" env:"SPRITECLEAN_TOLERANCE" group:"key"`
}

// Resolve parses and checks the flags.
func (f Flags) Resolve() (color.NRGBA, Source, error) {
	if err := CheckTolerance(f.Tolerance); err != nil {
		return color.NRGBA{}, SourceColor, err
	}

	src, err := ParseSource(f.KeySource)
	if err != nil {
		return color.NRGBA{}, SourceColor, err
	}

	key, err := ParseColor(f.Key)
	if err != nil {
		return color.NRGBA{}, SourceColor, fmt.Errorf("invalid key color %q: %w", f.Key, err)
	}
	return key, src, nil
}
