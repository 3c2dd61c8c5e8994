// Package scenario drives copy scenarios against a device and checks the
// readback against the prediction model.
//
// Every scenario follows the same cycle: configure registers, trigger an
// EFB copy, wait for the GPU, read the test buffer, predict, and record one
// subtest per compared channel in the ledger.
package scenario

import (
	"errors"
	"io"
	"log"
	"time"

	"hwtests/internal/debug"
	"hwtests/internal/gpu"
	"hwtests/internal/graphics"
	"hwtests/internal/input"
	"hwtests/internal/ledger"
	"hwtests/internal/model"
)

// ErrAborted is returned when the abort source fired during a program.
var ErrAborted = errors.New("aborted by user")

// Tracer receives failed predictions.
type Tracer interface {
	Record(m debug.Mismatch)
}

// Display shows readback buffers while the run is in progress.
type Display interface {
	Show(f graphics.Frame) error
}

// Option configures a Driver.
type Option func(*Driver)

// WithAbort sets the source polled between iterations.
func WithAbort(a input.AbortSource) Option {
	return func(d *Driver) { d.abort = a }
}

// WithFormats overrides format models used for prediction.
func WithFormats(t model.FormatTable) Option {
	return func(d *Driver) { d.formats = t }
}

// WithTracer records the pipeline stages of every mismatch.
func WithTracer(t Tracer) Option {
	return func(d *Driver) { d.tracer = t }
}

// WithDisplay shows full readback buffers on a viewer.
func WithDisplay(v Display) Option {
	return func(d *Driver) { d.display = v }
}

// WithLogger enables driver logging.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// Driver owns the device and the ledger for the duration of a run. It is
// not safe for concurrent use.
type Driver struct {
	dev     gpu.Device
	ledger  *ledger.Ledger
	abort   input.AbortSource
	formats model.FormatTable
	tracer  Tracer
	display Display
	log     *log.Logger

	program string
	format  model.PixelFormat
	filter  model.CopyFilter
}

// NewDriver creates a driver issuing commands to dev and recording results
// in l.
func NewDriver(dev gpu.Device, l *ledger.Ledger, opts ...Option) *Driver {
	d := &Driver{
		dev:    dev,
		ledger: l,
		abort:  input.Never,
		log:    log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Ledger returns the ledger results are recorded in.
func (d *Driver) Ledger() *ledger.Ledger {
	return d.ledger
}

// Device returns the device under test.
func (d *Driver) Device() gpu.Device {
	return d.dev
}

// Aborted polls the abort source.
func (d *Driver) Aborted() bool {
	if d.abort.AbortRequested() {
		d.log.Printf("[DRIVER] abort requested during %s", d.program)
		return true
	}
	return false
}

// Configure sets the pixel format and copy filter.
func (d *Driver) Configure(f model.PixelFormat, filter model.CopyFilter) {
	d.SetPixelFormat(f)
	d.SetCopyFilter(filter)
}

// SetPixelFormat writes the PE control register with a linear depth format
// and early z disabled.
func (d *Driver) SetPixelFormat(f model.PixelFormat) {
	d.format = f
	d.dev.LoadBPReg(gpu.BPZCompare, gpu.PEControl{PixelFormat: f, ZFormat: gpu.ZLinear}.Hex())
}

// SetCopyFilter writes both copy filter registers.
func (d *Driver) SetCopyFilter(f model.CopyFilter) {
	d.filter = f
	reg0, reg1 := gpu.CoefficientsFor(f).Values()
	d.dev.LoadBPReg(gpu.BPCopyFilter0, reg0)
	d.dev.LoadBPReg(gpu.BPCopyFilter1, reg1)
}

// SetClearColor writes the clear color registers.
func (d *Driver) SetClearColor(s model.Sample) {
	ar, gb := gpu.ClearColorValues(s)
	d.dev.LoadBPReg(gpu.BPClearAR, ar)
	d.dev.LoadBPReg(gpu.BPClearGB, gb)
}

// SetSourceRect writes the EFB copy source rectangle.
func (d *Driver) SetSourceRect(r gpu.EFBRect) {
	tl, wh := r.Values()
	d.dev.LoadBPReg(gpu.BPEFBTopLeft, tl)
	d.dev.LoadBPReg(gpu.BPEFBSize, wh)
}

// Trigger queues an EFB copy of r into the test buffer.
func (d *Driver) Trigger(r gpu.EFBRect, p gpu.CopyParams) {
	d.SetSourceRect(r)
	d.dev.LoadBPReg(gpu.BPTriggerEFBCopy, p.Hex())
}

// Sync blocks until every queued command has executed.
func (d *Driver) Sync() {
	d.dev.WaitForGPUIdle()
}

// Fill sets the pixel format and clears r to s with a clearing copy.
func (d *Driver) Fill(f model.PixelFormat, s model.Sample, r gpu.EFBRect) {
	d.SetPixelFormat(f)
	d.SetClearColor(s)
	p := gpu.DefaultCopyParams()
	p.Clear = true
	d.Trigger(r, p)
}

// Poke writes w x h pixels from fn through CPU EFB access.
func (d *Driver) Poke(w, h int, fn func(x, y int) model.Sample) {
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			d.dev.PokeARGB(x, y, fn(x, y))
		}
	}
}

// Readback reads one test buffer pixel.
func (d *Driver) Readback(x, y, stride int) model.Sample {
	return d.dev.ReadTestBuffer(x, y, stride)
}

// ReadFrame reads a whole w x h test buffer.
func (d *Driver) ReadFrame(w, h int) []model.Sample {
	out := make([]model.Sample, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = d.dev.ReadTestBuffer(x, y, w)
		}
	}
	return out
}

// Context returns the prediction context for a copy with p under the
// current pixel format and filter.
func (d *Driver) Context(p gpu.CopyParams) model.Context {
	return model.Context{
		Format:          d.format,
		Filter:          d.filter,
		Gamma:           p.Gamma,
		YUV:             p.YUV,
		IntensityFormat: p.IntensityFormat,
		AutoConversion:  p.AutoConversion,
		Formats:         d.formats,
	}
}

// Predict traces one pixel through the model.
func (d *Driver) Predict(ctx model.Context, prev, cur, next model.Sample) model.Stages {
	return model.Trace(ctx, prev, cur, next)
}

// Begin opens a test attributed to the caller.
func (d *Driver) Begin() {
	d.ledger.BeginAt(ledger.Caller(1))
}

// End closes the current test.
func (d *Driver) End() ledger.Entry {
	e := d.ledger.End()
	d.log.Printf("[DRIVER] %s test %d: %d/%d subtests passed", d.program, e.Test, e.Passes, e.Subtests)
	return e
}

// Expect records one subtest attributed to the caller.
func (d *Driver) Expect(cond bool, format string, args ...any) bool {
	return d.ledger.CheckAt(ledger.Caller(1), cond, format, args...)
}

// Mismatch hands a failed prediction to the tracer.
func (d *Driver) Mismatch(x, y int, point string, ctx model.Context, st model.Stages, got model.Sample) {
	if d.tracer == nil {
		return
	}
	d.tracer.Record(debug.Mismatch{
		Timestamp: time.Now(),
		Program:   d.program,
		Test:      d.ledger.Current().Test,
		X:         x,
		Y:         y,
		Point:     point,
		Context:   ctx,
		Stages:    st,
		Got:       got,
	})
}

// Show displays a readback buffer when a display is attached.
func (d *Driver) Show(caption string, w, h int, pixels []model.Sample) {
	if d.display == nil {
		return
	}
	if err := d.display.Show(graphics.Frame{Width: w, Height: h, Pixels: pixels, Caption: caption}); err != nil {
		d.log.Printf("[DRIVER] display: %v", err)
	}
}
