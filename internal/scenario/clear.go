package scenario

import (
	"hwtests/internal/gpu"
	"hwtests/internal/model"
)

// ClearProgram is the FIFO smoke test: clear colors written through the
// command pipe must show up in order, and a FIFO reset must drop bytes
// still waiting in the write-gather pipe.
type ClearProgram struct{}

func (ClearProgram) Name() string { return "fifo" }

func (ClearProgram) setClearRed(d *Driver, r uint8) {
	d.dev.LoadBPReg(gpu.BPClearAR, uint32(r))
}

func (ClearProgram) checkClearRed(d *Driver) uint8 {
	d.Sync()
	// The first copy clears the EFB to the clear color, the second reads it.
	clearing := gpu.DefaultCopyParams()
	clearing.Clear = true
	d.Trigger(smallRect, clearing)
	d.Trigger(smallRect, gpu.DefaultCopyParams())
	d.Sync()
	return d.Readback(0, 0, smallStride).R
}

func (c ClearProgram) Run(d *Driver) error {
	d.Begin()
	defer d.End()

	d.SetPixelFormat(model.RGB8_Z24)
	d.SetCopyFilter(model.IdentityFilter)

	c.setClearRed(d, 4)
	result := c.checkClearRed(d)
	d.Expect(result == 4, "Initial clear should result in red=4, not %d", result)

	c.setClearRed(d, 5)
	result = c.checkClearRed(d)
	d.Expect(result == 5, "Second clear should result in red=5, not %d", result)

	aborter, ok := d.dev.(gpu.FrameAborter)
	if !ok {
		d.log.Printf("[DRIVER] device cannot reset its FIFO, skipping reset checks")
		return nil
	}

	c.setClearRed(d, 6)
	aborter.AbortFrame()
	result = c.checkClearRed(d)
	d.Expect(result == 5, "Third clear should not have had color change go through so red=5, not %d", result)

	aborter.AbortFrame()
	c.setClearRed(d, 7)
	result = c.checkClearRed(d)
	d.Expect(result == 7, "4th clear should have red=7, not %d", result)

	// 35 bytes: the last command is still in the gather pipe at the reset.
	aborter.AbortFrame()
	for r := uint8(8); r <= 14; r++ {
		c.setClearRed(d, r)
	}
	aborter.AbortFrame()
	result = c.checkClearRed(d)
	d.Expect(result == 13, "5th clear should have red=13, not %d", result)

	result = c.checkClearRed(d)
	d.Expect(result == 13, "6th clear should have red=13, not %d", result)
	return nil
}
