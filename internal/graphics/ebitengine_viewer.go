//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"hwtests/internal/input"
)

// Height of the status line under the frame.
const statusHeight = 16

// EbitengineViewer shows the latest frame in a window. Show may be called
// from any goroutine; Run must own the main goroutine.
type EbitengineViewer struct {
	config Config

	mu     sync.Mutex
	frame  Frame
	dirty  bool
	shown  int
	closed bool

	image *ebiten.Image
}

// NewEbitengineViewer creates a window viewer. The window opens on Run.
func NewEbitengineViewer(cfg Config) (*EbitengineViewer, error) {
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 640
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 480
	}
	if cfg.WindowTitle == "" {
		cfg.WindowTitle = "hwtests"
	}
	return &EbitengineViewer{config: cfg}, nil
}

// Show replaces the displayed frame.
func (v *EbitengineViewer) Show(f Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.frame = f
	v.dirty = true
	v.shown++
	return nil
}

// Run opens the window and blocks until it is closed or Close is called.
func (v *EbitengineViewer) Run() error {
	ebiten.SetWindowSize(v.config.WindowWidth, v.config.WindowHeight)
	ebiten.SetWindowTitle(v.config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("ebitengine viewer: %w", err)
	}
	return nil
}

// Close makes Run return at the next update.
func (v *EbitengineViewer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// Name returns the viewer name.
func (v *EbitengineViewer) Name() string {
	return "Ebitengine"
}

// Update implements ebiten.Game.
func (v *EbitengineViewer) Update() error {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		if v.config.Pad != nil {
			v.config.Pad.Press(input.ButtonHome)
		}
		if v.config.Debug {
			log.Printf("[VIEWER] home requested from window")
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (v *EbitengineViewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	v.mu.Lock()
	f, dirty, shown := v.frame, v.dirty, v.shown
	v.dirty = false
	v.mu.Unlock()

	if shown == 0 {
		text.Draw(screen, "waiting for first copy", basicfont.Face7x13, 8, 20, color.White)
		return
	}

	if v.image == nil || v.image.Bounds().Dx() != f.Width || v.image.Bounds().Dy() != f.Height {
		if v.image != nil {
			v.image.Deallocate()
		}
		v.image = ebiten.NewImage(f.Width, f.Height)
		dirty = true
	}
	if dirty {
		v.image.WritePixels(f.RGBA().Pix)
	}

	screenWidth := screen.Bounds().Dx()
	screenHeight := screen.Bounds().Dy() - statusHeight

	// Scale to fit while preserving aspect ratio
	scaleX := float64(screenWidth) / float64(f.Width)
	scaleY := float64(screenHeight) / float64(f.Height)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	scaledWidth := float64(f.Width) * scale
	scaledHeight := float64(f.Height) * scale
	offsetX := (float64(screenWidth) - scaledWidth) / 2
	offsetY := (float64(screenHeight) - scaledHeight) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(v.image, op)

	status := fmt.Sprintf("#%d %dx%d %s", shown, f.Width, f.Height, f.Caption)
	text.Draw(screen, status, basicfont.Face7x13, 4, screen.Bounds().Dy()-4, color.White)
}

// Layout implements ebiten.Game.
func (v *EbitengineViewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Shown returns the number of frames shown.
func (v *EbitengineViewer) Shown() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shown
}
