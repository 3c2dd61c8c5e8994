package gpu

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Command opcodes of the graphics FIFO.
const (
	OpNop    uint8 = 0x00
	OpLoadCP uint8 = 0x08
	OpLoadXF uint8 = 0x10
	OpLoadBP uint8 = 0x61
)

// FIFO emits commands into the write-gather pipe. Writes to the pipe are
// not expected to fail; the first error is kept and every later command is
// dropped.
type FIFO struct {
	w     io.Writer
	buf   []byte
	err   error
	count uint64
}

// NewFIFO returns an emitter writing to pipe.
func NewFIFO(pipe io.Writer) *FIFO {
	return &FIFO{w: pipe, buf: make([]byte, 0, 64)}
}

// LoadBPReg writes a BP register.
func (f *FIFO) LoadBPReg(addr uint8, value uint32) {
	f.buf = append(f.buf[:0], OpLoadBP)
	f.buf = binary.BigEndian.AppendUint32(f.buf, BPWord(addr, value))
	f.flush()
}

// LoadCPReg writes a CP register.
func (f *FIFO) LoadCPReg(index uint8, value uint32) {
	f.buf = append(f.buf[:0], OpLoadCP, index)
	f.buf = binary.BigEndian.AppendUint32(f.buf, value)
	f.flush()
}

// LoadXFRegs writes consecutive XF registers starting at base.
func (f *FIFO) LoadXFRegs(base uint16, values ...uint32) {
	if len(values) == 0 {
		return
	}
	if len(values) > 0x10000 {
		f.setErr(fmt.Errorf("xf load of %d registers exceeds 16-bit count", len(values)))
		return
	}
	f.buf = append(f.buf[:0], OpLoadXF)
	f.buf = binary.BigEndian.AppendUint32(f.buf, uint32(len(values)-1)<<16|uint32(base))
	for _, v := range values {
		f.buf = binary.BigEndian.AppendUint32(f.buf, v)
	}
	f.flush()
}

// Nop writes n padding bytes.
func (f *FIFO) Nop(n int) {
	f.buf = f.buf[:0]
	for i := 0; i < n; i++ {
		f.buf = append(f.buf, OpNop)
	}
	f.flush()
}

func (f *FIFO) flush() {
	if f.err != nil {
		return
	}
	if _, err := f.w.Write(f.buf); err != nil {
		f.setErr(fmt.Errorf("fifo write after %d commands: %w", f.count, err))
		return
	}
	f.count++
}

func (f *FIFO) setErr(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Err returns the first write error.
func (f *FIFO) Err() error {
	return f.err
}

// Count is the number of commands written.
func (f *FIFO) Count() uint64 {
	return f.count
}
