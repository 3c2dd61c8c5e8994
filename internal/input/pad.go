// Package input implements the harness's abort input: a remote-style button
// pad with edge detection and the sources that feed it.
package input

import (
	"log"
	"sync"
)

// Button is one pad button.
type Button uint16

const (
	ButtonTwo Button = 1 << iota
	ButtonOne
	ButtonB
	ButtonA
	ButtonMinus
	ButtonHome
	ButtonLeft
	ButtonRight
	ButtonDown
	ButtonUp
	ButtonPlus
)

var buttonNames = map[Button]string{
	ButtonTwo: "2", ButtonOne: "1", ButtonB: "B", ButtonA: "A",
	ButtonMinus: "-", ButtonHome: "HOME", ButtonLeft: "LEFT", ButtonRight: "RIGHT",
	ButtonDown: "DOWN", ButtonUp: "UP", ButtonPlus: "+",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return "buttons"
}

// Pad holds button state. Host input (window keys, terminal) sets buttons
// from its own goroutine; the test loop calls Scan between iterations and
// reads the buttons that went down since the previous scan.
type Pad struct {
	mu sync.Mutex

	buttons uint16 // held now
	pressed uint16 // went down at some point since the last scan
	last    uint16 // held at the last scan
	down    uint16 // result of the last scan

	scanCount    uint64
	debugEnabled bool
}

// NewPad returns a pad with no buttons held.
func NewPad() *Pad {
	return &Pad{}
}

// SetButton holds or releases a button.
func (p *Pad) SetButton(b Button, held bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.buttons
	if held {
		p.buttons |= uint16(b)
		p.pressed |= uint16(b) &^ old
	} else {
		p.buttons &^= uint16(b)
	}
	if p.debugEnabled {
		log.Printf("[PAD] SetButton: button=%v, held=%t, buttons=0x%04X->0x%04X", b, held, old, p.buttons)
	}
}

// Press taps a button: it reads as down on the next scan without being
// held afterwards.
func (p *Pad) Press(b Button) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pressed |= uint16(b)
	if p.debugEnabled {
		log.Printf("[PAD] Press: button=%v", b)
	}
}

// IsPressed reports whether b is held.
func (p *Pad) IsPressed(b Button) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buttons&uint16(b) != 0
}

// Scan latches the pad state.
func (p *Pad) Scan() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = p.buttons&^p.last | p.pressed
	p.last = p.buttons
	p.pressed = 0
	p.scanCount++
}

// ButtonsDown returns the buttons that went down before the last scan.
func (p *Pad) ButtonsDown() Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Button(p.down)
}

// Reset releases everything.
func (p *Pad) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buttons, p.pressed, p.last, p.down = 0, 0, 0, 0
	p.scanCount = 0
}

// EnableDebug enables debug logging for this pad.
func (p *Pad) EnableDebug(enable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debugEnabled = enable
}

// ScanCount returns the number of scans (for testing).
func (p *Pad) ScanCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scanCount
}
