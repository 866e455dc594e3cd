package clean

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"spriteclean/chroma"
	"spriteclean/imageio"
	"spriteclean/parallel"
)

func writeSheet(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 90, 40))
	for y := range 40 {
		for x := range 90 {
			c := chroma.Magenta
			if x >= 30 && x < 50 && y >= 10 && y < 25 {
				c = color.NRGBA{R: 90, G: 60, B: 30, A: 0xFF}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	path, err := imageio.Save(img, "png", dir, "sheet", false)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}

func newCmd(in string) *CLICmd {
	return &CLICmd{
		Input:  in,
		Flags:  chroma.Flags{Key: "#FF00FF", KeySource: "color", Tolerance: 50},
		Frames: 3,
		Format: "png",
	}
}

func TestRunDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	c := newCmd(writeSheet(t, dir))
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if want := filepath.Join(dir, "sheet_clean.png"); c.Out != want {
		t.Errorf("Out = %q, want %q", c.Out, want)
	}
	if err := c.Run(parallel.Start(2)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	img, _, err := imageio.Load(c.Out)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(90, 40) {
		t.Errorf("size = %v, want (90,40)", got)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("background alpha = %d, want 0", a)
	}
	if _, _, _, a := img.At(35, 15).RGBA(); a != 0xFFFF {
		t.Errorf("sprite alpha = %d, want opaque", a)
	}
}

func TestRunCrop(t *testing.T) {
	dir := t.TempDir()
	c := newCmd(writeSheet(t, dir))
	c.Crop = true
	c.Out = filepath.Join(dir, "out", "cropped.png")
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := c.Run(parallel.Start(1)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	img, _, err := imageio.Load(c.Out)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(20, 15) {
		t.Errorf("size = %v, want (20,15)", got)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	in := writeSheet(t, dir)

	c := newCmd(filepath.Join(dir, "missing.png"))
	if err := c.Validate(nil); !errors.Is(err, imageio.ErrMissingAsset) {
		t.Errorf("Validate() error = %v, want ErrMissingAsset", err)
	}

	c = newCmd(in)
	c.Tolerance = -1
	if err := c.Validate(nil); !errors.Is(err, chroma.ErrInvalidTolerance) {
		t.Errorf("Validate() error = %v, want ErrInvalidTolerance", err)
	}

	c = newCmd(in)
	c.Frames = 0
	if err := c.Validate(nil); err == nil {
		t.Error("Validate() accepted zero frames")
	}

	c = newCmd(in)
	c.Format = "jpeg"
	if err := c.Validate(nil); err == nil {
		t.Error("Validate() accepted jpeg, which has no alpha")
	}
}
