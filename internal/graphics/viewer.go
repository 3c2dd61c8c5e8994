// Package graphics displays EFB copy results while a run is in progress.
package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"hwtests/internal/input"
	"hwtests/internal/model"
)

// ErrClosed is returned by Show after Close.
var ErrClosed = errors.New("viewer closed")

// Frame is one readback buffer.
type Frame struct {
	Width   int
	Height  int
	Pixels  []model.Sample
	Caption string
}

// At returns the pixel at x, y.
func (f Frame) At(x, y int) model.Sample {
	return f.Pixels[y*f.Width+x]
}

// Validate checks that the pixel slice covers the frame.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame has no area: %dx%d", f.Width, f.Height)
	}
	if len(f.Pixels) < f.Width*f.Height {
		return fmt.Errorf("frame %dx%d has only %d pixels", f.Width, f.Height, len(f.Pixels))
	}
	return nil
}

// RGBA converts the frame into an image, alpha forced opaque so the colors
// stay visible.
func (f Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			s := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: s.R, G: s.G, B: s.B, A: 255})
		}
	}
	return img
}

// Viewer shows frames.
type Viewer interface {
	// Show replaces the displayed frame.
	Show(f Frame) error

	// Close releases the viewer. Further Show calls fail.
	Close() error

	// Name returns the viewer name for identification.
	Name() string
}

// Runner is a viewer that must own the main goroutine while it is open.
type Runner interface {
	Viewer
	Run() error
}

// Config contains configuration for viewers.
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int

	// DumpDir receives headless frame dumps. Empty disables them.
	DumpDir string

	// Pad receives Home presses from window keys.
	Pad *input.Pad

	Debug bool
}

// ViewerType selects a viewer implementation.
type ViewerType string

const (
	ViewerEbitengine ViewerType = "ebitengine"
	ViewerHeadless   ViewerType = "headless"
	ViewerTerminal   ViewerType = "terminal"
	ViewerNone       ViewerType = "none"
)

// NewViewer creates a viewer of the given type.
func NewViewer(kind ViewerType, cfg Config) (Viewer, error) {
	switch kind {
	case ViewerEbitengine:
		v, err := NewEbitengineViewer(cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ViewerHeadless:
		return NewHeadlessViewer(cfg.DumpDir), nil
	case ViewerTerminal:
		return NewTerminalViewer(nil), nil
	case ViewerNone, "":
		return NullViewer{}, nil
	}
	return nil, fmt.Errorf("unknown viewer %q", kind)
}

// NullViewer discards frames.
type NullViewer struct{}

func (NullViewer) Show(Frame) error { return nil }
func (NullViewer) Close() error     { return nil }
func (NullViewer) Name() string     { return "None" }
