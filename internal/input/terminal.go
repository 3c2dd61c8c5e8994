package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

// Home key escape sequences sent by common terminals.
var homeSequences = [][]byte{
	[]byte("\x1b[H"),
	[]byte("\x1bOH"),
	[]byte("\x1b[1~"),
	[]byte("\x1b[7~"),
}

// Terminal watches a keyboard stream and taps Home on the pad for q, Esc,
// Ctrl-C or the Home key.
type Terminal struct {
	pad  *Pad
	in   io.Reader
	fd   int
	raw  *term.State
	done chan struct{}
	once sync.Once

	rawMode atomic.Bool
}

// NewTerminal watches in. When in is a terminal it is switched to raw mode
// on Start so single keys arrive without Enter.
func NewTerminal(pad *Pad, in io.Reader) *Terminal {
	return &Terminal{pad: pad, in: in, fd: -1, done: make(chan struct{})}
}

// Start begins reading in a goroutine.
func (t *Terminal) Start() error {
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		state, err := term.MakeRaw(t.fd)
		if err != nil {
			close(t.done)
			return fmt.Errorf("terminal raw mode: %w", err)
		}
		t.raw = state
		t.rawMode.Store(true)
	}
	go t.run()
	return nil
}

func (t *Terminal) run() {
	defer close(t.done)
	buf := make([]byte, 16)
	for {
		n, err := t.in.Read(buf)
		if n > 0 && homeKey(buf[:n]) {
			t.pad.Press(ButtonHome)
		}
		if err != nil {
			return
		}
	}
}

// homeKey reports whether one read chunk holds an abort key.
func homeKey(chunk []byte) bool {
	if len(chunk) == 1 && chunk[0] == 0x1b {
		return true
	}
	for _, seq := range homeSequences {
		if bytes.Contains(chunk, seq) {
			return true
		}
	}
	if chunk[0] == 0x1b {
		return false
	}
	return bytes.ContainsAny(chunk, "qQ\x03")
}

// Done is closed when the reader reaches end of input.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Stop restores the terminal mode. A read blocked on a real terminal ends
// with the process.
func (t *Terminal) Stop() {
	t.once.Do(func() {
		if t.raw != nil {
			t.rawMode.Store(false)
			_ = term.Restore(t.fd, t.raw)
			t.raw = nil
		}
	})
}

// Output wraps w for log output. Raw mode also turns off output processing,
// so while it is on each LF written is sent as CR LF.
func (t *Terminal) Output(w io.Writer) io.Writer {
	return &rawOutput{t: t, w: w}
}

type rawOutput struct {
	t *Terminal
	w io.Writer
}

func (o *rawOutput) Write(p []byte) (int, error) {
	if !o.t.rawMode.Load() {
		return o.w.Write(p)
	}
	if _, err := o.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
