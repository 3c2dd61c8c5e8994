package graphics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// HeadlessViewer keeps the last frame and optionally saves every frame as a
// PPM image.
type HeadlessViewer struct {
	mu         sync.Mutex
	outputPath string
	frameCount int
	last       Frame
	closed     bool
}

// NewHeadlessViewer creates a headless viewer. An empty dir disables dumps.
func NewHeadlessViewer(dir string) *HeadlessViewer {
	return &HeadlessViewer{outputPath: dir}
}

// Show records f and dumps it when an output path is set.
func (v *HeadlessViewer) Show(f Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.frameCount++
	v.last = f
	if v.outputPath == "" {
		return nil
	}
	return v.saveFrameAsPPM(f, fmt.Sprintf("frame_%04d.ppm", v.frameCount))
}

func (v *HeadlessViewer) saveFrameAsPPM(f Frame, filename string) error {
	if err := os.MkdirAll(v.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	file, err := os.Create(filepath.Join(v.outputPath, filename))
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if f.Caption != "" {
		fmt.Fprintf(w, "P3\n# %s\n%d %d\n255\n", f.Caption, f.Width, f.Height)
	} else {
		fmt.Fprintf(w, "P3\n%d %d\n255\n", f.Width, f.Height)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			s := f.At(x, y)
			fmt.Fprintf(w, "%d %d %d ", s.R, s.G, s.B)
		}
		fmt.Fprintf(w, "\n")
	}
	return w.Flush()
}

// Close stops accepting frames.
func (v *HeadlessViewer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// Name returns the viewer name.
func (v *HeadlessViewer) Name() string {
	return "Headless"
}

// FrameCount returns the number of frames shown.
func (v *HeadlessViewer) FrameCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameCount
}

// LastFrame returns the most recent frame.
func (v *HeadlessViewer) LastFrame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}
