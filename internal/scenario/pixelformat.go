package scenario

import (
	"hwtests/internal/model"
)

// PixelFormatProgram clears the EFB to each value in each pixel format and
// checks the bit reduction the copy reads back. One test per format.
type PixelFormatProgram struct {
	Formats []model.PixelFormat
	Values  []uint8
}

// NewPixelFormatProgram sweeps the formats with a trusted model.
func NewPixelFormatProgram() *PixelFormatProgram {
	return &PixelFormatProgram{Formats: ReliableFormats(), Values: AllValues()}
}

func (p *PixelFormatProgram) Name() string { return "pixelformat" }

// clearSample spreads v over the channels so each one sees a different
// bit pattern.
func clearSample(v uint8) model.Sample {
	return model.RGBA(v, ^v, v^0x5A, v)
}

func (p *PixelFormatProgram) Run(d *Driver) error {
	for _, f := range p.Formats {
		if d.Aborted() {
			return ErrAborted
		}
		d.Begin()
		d.SetCopyFilter(model.IdentityFilter)
		err := Sweep{Formats: []model.PixelFormat{f}, Values: p.Values}.Each(d.abort, func(pt Point) error {
			p.check(d, pt)
			return nil
		})
		d.End()
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *PixelFormatProgram) check(d *Driver, pt Point) {
	fill := clearSample(pt.Value)
	d.Fill(pt.Format, fill, smallRect)
	params := pt.Params()
	d.Trigger(smallRect, params)
	d.Sync()
	got := d.Readback(probeX, probeY, smallStride)

	ctx := d.Context(params)
	st := d.Predict(ctx, fill, fill, fill)
	ok := true
	for ch := 0; ch < model.NumChannels; ch++ {
		want, have := st.Output.Channel(ch), got.Channel(ch)
		ok = d.Expect(have == want, "Wrong %s value for format %v input %d: expected %d, was %d",
			model.ChannelName(ch, false), pt.Format, pt.Value, want, have) && ok
	}
	if !ok {
		d.Mismatch(probeX, probeY, pt.String(), ctx, st, got)
	}
}
