package gpu

import "hwtests/internal/model"

// CommandSink accepts register writes for the BP and CP banks.
type CommandSink interface {
	LoadBPReg(addr uint8, value uint32)
	LoadCPReg(index uint8, value uint32)
}

// Synchronizer blocks until the pipeline is idle. There is no timeout: a
// stalled device hangs the caller.
type Synchronizer interface {
	WaitForGPUIdle()
}

// Readback reads the test buffer the last EFB copy wrote.
type Readback interface {
	ReadTestBuffer(x, y, stride int) model.Sample
}

// Poker writes EFB pixels directly from the CPU.
type Poker interface {
	PokeARGB(x, y int, s model.Sample)
}

// FrameAborter resets the command FIFO. Optional: devices without it skip
// the reset checks.
type FrameAborter interface {
	AbortFrame()
}

// Device is everything the scenario driver needs from the hardware.
type Device interface {
	CommandSink
	Synchronizer
	Readback
	Poker
}

type boundDevice struct {
	CommandSink
	Synchronizer
	Readback
	Poker
}

// Bind assembles a Device from separate collaborators, e.g. a FIFO feeding
// the write pipe plus the pipe's own sync and readback paths.
func Bind(cmd CommandSink, sync Synchronizer, rb Readback, poke Poker) Device {
	return boundDevice{CommandSink: cmd, Synchronizer: sync, Readback: rb, Poker: poke}
}

// EFB dimensions.
const (
	EFBWidth  = 640
	EFBHeight = 528
)

type abortableDevice struct {
	Device
	FrameAborter
}

// WithAborter attaches a FIFO reset path to d.
func WithAborter(d Device, a FrameAborter) Device {
	return abortableDevice{Device: d, FrameAborter: a}
}
