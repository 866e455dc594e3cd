package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"spriteclean/analyze"
	"spriteclean/clean"
	"spriteclean/frames"
	"spriteclean/parallel"

	"github.com/alecthomas/kong"
)

const description = `Turn sprite sheets painted over a chroma key background into clean,
transparent, tightly cropped frames.`

type cli struct {
	LogLevel  string          `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"SPRITECLEAN_LOG_LEVEL"`
	LogFormat string          `help:"Log format" enum:"text,json" default:"text" env:"SPRITECLEAN_LOG_FORMAT"`
	Workers   int             `help:"Number of workers, 0 for one per CPU" default:"0" env:"SPRITECLEAN_WORKERS"`
	Config    kong.ConfigFlag `help:"JSON file with flag defaults"`

	Clean   clean.CLICmd   `cmd:"" help:"Remove the key color from a sheet"`
	Frames  frames.CLICmd  `cmd:"" help:"Key, slice, crop and scale sheets into frames"`
	Analyze analyze.CLICmd `cmd:"" help:"Report colors and suggested keying parameters of a sheet"`
}

func (c *cli) AfterApply() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(c.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var conf cli
	kctx := kong.Parse(&conf,
		kong.Name("spriteclean"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/spriteclean.json", ".spriteclean.json"),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	pool := parallel.Start(conf.Workers)
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	err := kctx.Run(pool)
	pool.Cancel()
	kctx.FatalIfErrorf(err)
}
