package graphics

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Luminance ramp from dark to bright.
const asciiRamp = " .:-=+*#%@"

// TerminalViewer renders frames as coarse ASCII art.
type TerminalViewer struct {
	out     io.Writer
	columns int
	closed  bool
}

// NewTerminalViewer draws to out, or stdout when out is nil.
func NewTerminalViewer(out io.Writer) *TerminalViewer {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalViewer{out: out, columns: 64}
}

// Show clears the screen and draws f.
func (v *TerminalViewer) Show(f Frame) error {
	if v.closed {
		return ErrClosed
	}
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := io.WriteString(v.out, "\033[2J\033[H"+v.render(f))
	return err
}

func (v *TerminalViewer) render(f Frame) string {
	stepX := max(f.Width/v.columns, 1)
	// Terminal cells are about twice as tall as wide.
	stepY := stepX * 2

	var b strings.Builder
	if f.Caption != "" {
		fmt.Fprintf(&b, "%s\n", f.Caption)
	}
	for y := 0; y < f.Height; y += stepY {
		for x := 0; x < f.Width; x += stepX {
			s := f.At(x, y)
			lum := (int(s.R)*299 + int(s.G)*587 + int(s.B)*114) / 1000
			b.WriteByte(asciiRamp[lum*(len(asciiRamp)-1)/255])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Close stops accepting frames.
func (v *TerminalViewer) Close() error {
	v.closed = true
	return nil
}

// Name returns the viewer name.
func (v *TerminalViewer) Name() string {
	return "Terminal"
}
