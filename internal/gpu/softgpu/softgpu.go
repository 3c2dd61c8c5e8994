// Package softgpu is a software stand-in for the graphics processor. It
// decodes the command stream the FIFO emits, keeps BP register state and an
// EFB stored at each pixel format's real depth, and performs clears and EFB
// copies with its own integer arithmetic.
//
// Commands are received through a write-gather pipe and executed on
// WaitForGPUIdle, so readback without a sync observes the previous copy, as
// on hardware.
package softgpu

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"hwtests/internal/gpu"
	"hwtests/internal/model"
)

// Fault deliberately mis-models one hardware behavior.
type Fault uint8

const (
	// FaultNone is the faithful device.
	FaultNone Fault = 0
	// FaultSaturatingFilter clamps the filter accumulator instead of
	// wrapping it at 9 bits.
	FaultSaturatingFilter Fault = 1
	// FaultFloatIntensity truncates a floating point BT.601 conversion.
	FaultFloatIntensity Fault = 2
	// FaultIgnoreGamma skips the gamma table.
	FaultIgnoreGamma Fault = 4
)

// ParseFault maps a config name to a fault.
func ParseFault(name string) (Fault, error) {
	switch name {
	case "", "none":
		return FaultNone, nil
	case "saturating-filter":
		return FaultSaturatingFilter, nil
	case "float-intensity":
		return FaultFloatIntensity, nil
	case "ignore-gamma":
		return FaultIgnoreGamma, nil
	}
	return FaultNone, fmt.Errorf("unknown fault %q", name)
}

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultSaturatingFilter:
		return "saturating-filter"
	case FaultFloatIntensity:
		return "float-intensity"
	case FaultIgnoreGamma:
		return "ignore-gamma"
	}
	return fmt.Sprintf("fault(%#x)", uint8(f))
}

// Option configures a GPU.
type Option func(*GPU)

// WithFault injects faults.
func WithFault(f Fault) Option {
	return func(g *GPU) { g.fault |= f }
}

// WithLogger enables command tracing.
func WithLogger(l *log.Logger) Option {
	return func(g *GPU) { g.log = l }
}

// gatherBurst is the write-gather pipe's transfer size.
const gatherBurst = 32

type bpWrite struct {
	addr  uint8
	value uint32
}

// Stats counts work done by the device.
type Stats struct {
	Commands uint64
	Copies   uint64
	Clears   uint64
	Syncs    uint64
}

// GPU is the software device. It implements gpu.Device, gpu.FrameAborter
// and io.Writer (the write-gather pipe), and is safe for concurrent use.
type GPU struct {
	mu sync.Mutex

	bp     [256]uint32
	bpMask uint32
	cp     [256]uint32
	xf     map[uint16]uint32

	gather  []byte
	partial []byte
	queue   []bpWrite
	hung    error

	efb     []uint32
	testBuf []model.Sample

	gammaLUT [4][256]uint8
	fault    Fault
	log      *log.Logger
	stats    Stats
}

// New returns an idle device with a zeroed EFB in RGB8_Z24 and a unit copy
// filter.
func New(opts ...Option) *GPU {
	g := &GPU{
		bpMask: gpu.BPValueMask,
		xf:     make(map[uint16]uint32),
		efb:    make([]uint32, gpu.EFBWidth*gpu.EFBHeight),
		log:    log.New(io.Discard, "", 0),
	}
	g.bp[gpu.BPCopyFilter0], g.bp[gpu.BPCopyFilter1] = gpu.CoefficientsFor(model.IdentityFilter).Values()
	for _, gm := range model.Gammas {
		g.gammaLUT[gm] = gammaTable(gm)
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// FIFO returns a command emitter connected to this device's pipe.
func (g *GPU) FIFO() *gpu.FIFO {
	return gpu.NewFIFO(g)
}

// Device binds a FIFO on this device's pipe with its sync, readback and
// reset paths.
func (g *GPU) Device() gpu.Device {
	return gpu.WithAborter(gpu.Bind(g.FIFO(), g, g, g), g)
}

// Write feeds the write-gather pipe. Bytes reach the command processor in
// 32-byte bursts; a sync flushes the rest. Once the processor has seen an
// unknown opcode it is hung and every write fails until AbortFrame.
func (g *GPU) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hung != nil {
		return 0, g.hung
	}
	g.gather = append(g.gather, p...)
	n := len(g.gather) / gatherBurst * gatherBurst
	if n > 0 {
		g.feed(g.gather[:n])
		g.gather = append(g.gather[:0], g.gather[n:]...)
	}
	if g.hung != nil {
		return 0, g.hung
	}
	return len(p), nil
}

func (g *GPU) feed(p []byte) {
	if g.hung != nil {
		return
	}
	g.partial = append(g.partial, p...)
	buf := g.partial
	for len(buf) > 0 {
		n, err := g.decode(buf)
		if err != nil {
			g.log.Printf("command processor hung: %v", err)
			g.hung = err
			g.partial = g.partial[:0]
			return
		}
		if n == 0 {
			break
		}
		buf = buf[n:]
	}
	g.partial = append(g.partial[:0], buf...)
}

// AbortFrame resets the FIFO: bytes still in the gather pipe and any
// partially received command are dropped, and a hang is cleared. Commands
// already received still execute.
func (g *GPU) AbortFrame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := len(g.gather) + len(g.partial); n > 0 {
		g.log.Printf("fifo reset dropped %d bytes", n)
	}
	g.gather = g.gather[:0]
	g.partial = g.partial[:0]
	g.hung = nil
}

// Hung returns the error that stopped the command processor, if any.
func (g *GPU) Hung() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hung
}

// decode consumes one command from buf and returns its length, or 0 when buf
// holds only part of a command.
func (g *GPU) decode(buf []byte) (int, error) {
	switch op := buf[0]; op {
	case gpu.OpNop:
		return 1, nil
	case gpu.OpLoadBP:
		if len(buf) < 5 {
			return 0, nil
		}
		w := binary.BigEndian.Uint32(buf[1:5])
		g.queue = append(g.queue, bpWrite{addr: uint8(w >> 24), value: w & gpu.BPValueMask})
		g.stats.Commands++
		return 5, nil
	case gpu.OpLoadCP:
		if len(buf) < 6 {
			return 0, nil
		}
		g.cp[buf[1]] = binary.BigEndian.Uint32(buf[2:6])
		g.stats.Commands++
		return 6, nil
	case gpu.OpLoadXF:
		if len(buf) < 5 {
			return 0, nil
		}
		hdr := binary.BigEndian.Uint32(buf[1:5])
		count := int(hdr>>16) + 1
		total := 5 + 4*count
		if len(buf) < total {
			return 0, nil
		}
		base := uint16(hdr)
		for i := 0; i < count; i++ {
			g.xf[base+uint16(i)] = binary.BigEndian.Uint32(buf[5+4*i:])
		}
		g.stats.Commands++
		return total, nil
	default:
		return 0, fmt.Errorf("softgpu: unknown opcode %#02x", op)
	}
}

// LoadBPReg queues a BP write directly, bypassing the pipe.
func (g *GPU) LoadBPReg(addr uint8, value uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, bpWrite{addr: addr, value: value & gpu.BPValueMask})
	g.stats.Commands++
}

// LoadCPReg writes a CP register directly.
func (g *GPU) LoadCPReg(index uint8, value uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cp[index] = value
	g.stats.Commands++
}

// WaitForGPUIdle flushes the gather pipe and executes every received
// command. Nothing is received after a hang.
func (g *GPU) WaitForGPUIdle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.feed(g.gather)
	g.gather = g.gather[:0]
	for _, w := range g.queue {
		g.execBP(w)
	}
	g.queue = g.queue[:0]
	g.stats.Syncs++
}

func (g *GPU) execBP(w bpWrite) {
	if w.addr == gpu.BPMask {
		g.bpMask = w.value
		return
	}
	old := g.bp[w.addr]
	g.bp[w.addr] = old&^g.bpMask | w.value&g.bpMask
	g.bpMask = gpu.BPValueMask

	switch w.addr {
	case gpu.BPZCompare:
		g.log.Printf("pixel format %v", g.pixelFormat())
	case gpu.BPTriggerEFBCopy:
		g.copyEFB(gpu.DecodeCopyParams(g.bp[w.addr]))
	}
}

// BPReg returns the applied value of a BP register.
func (g *GPU) BPReg(addr uint8) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bp[addr]
}

// CPReg returns a CP register.
func (g *GPU) CPReg(index uint8) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cp[index]
}

// XFReg returns an XF register.
func (g *GPU) XFReg(addr uint16) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.xf[addr]
}

// Gathered is the number of bytes waiting in the gather pipe.
func (g *GPU) Gathered() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.gather)
}

// Pending is the number of received BP writes not yet executed.
func (g *GPU) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Stats returns the work counters.
func (g *GPU) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

func (g *GPU) pixelFormat() model.PixelFormat {
	return gpu.DecodePEControl(g.bp[gpu.BPZCompare]).PixelFormat
}
