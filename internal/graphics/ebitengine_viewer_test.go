//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitengineViewer_DefaultsConfig(t *testing.T) {
	v, err := NewEbitengineViewer(Config{})
	if err != nil {
		t.Fatalf("NewEbitengineViewer failed: %v", err)
	}
	if v.config.WindowWidth != 640 || v.config.WindowHeight != 480 {
		t.Errorf("window size = %dx%d, want 640x480", v.config.WindowWidth, v.config.WindowHeight)
	}
	if v.config.WindowTitle != "hwtests" {
		t.Errorf("title = %q", v.config.WindowTitle)
	}
}

func TestEbitengineViewer_ShowCountsFrames(t *testing.T) {
	v, _ := NewEbitengineViewer(Config{})
	if err := v.Show(gradientFrame(4, 4)); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if err := v.Show(Frame{Width: 4, Height: 4}); err == nil {
		t.Error("expected error for frame without pixels")
	}
	if v.Shown() != 1 {
		t.Errorf("Shown = %d, want 1", v.Shown())
	}
}

func TestEbitengineViewer_UpdateTerminatesAfterClose(t *testing.T) {
	v, _ := NewEbitengineViewer(Config{})
	v.Close()
	if err := v.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update after Close = %v, want ebiten.Termination", err)
	}
	if err := v.Show(gradientFrame(2, 2)); !errors.Is(err, ErrClosed) {
		t.Errorf("Show after Close = %v, want ErrClosed", err)
	}
}

func TestEbitengineViewer_LayoutFollowsWindow(t *testing.T) {
	v, _ := NewEbitengineViewer(Config{})
	w, h := v.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Errorf("Layout = %dx%d", w, h)
	}
}
