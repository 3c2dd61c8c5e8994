package scenario

import (
	"hwtests/internal/gpu"
	"hwtests/internal/model"
)

// Source rectangle and readback position used by the copy filter and clear
// programs.
var smallRect = gpu.EFBRect{Left: 0, Top: 0, Width: 200, Height: 50}

const (
	smallStride = 200
	probeX      = 4
	probeY      = 4
)

// CopyFilterProgram fills the EFB red channel with each value and sweeps
// the copy filter sum and gamma, one test per value.
type CopyFilterProgram struct {
	Values       []uint8
	MaxFilterSum int
	Gammas       []model.Gamma
}

// NewCopyFilterProgram returns the default sweep: every value, filter sums
// 0..64, linear gamma only.
func NewCopyFilterProgram() *CopyFilterProgram {
	return &CopyFilterProgram{
		Values:       AllValues(),
		MaxFilterSum: model.NominalFilterSum,
		Gammas:       []model.Gamma{model.Gamma1_0},
	}
}

func (p *CopyFilterProgram) Name() string { return "copyfilter" }

func (p *CopyFilterProgram) Run(d *Driver) error {
	inner := Sweep{FilterSums: FilterSums(p.MaxFilterSum), Gammas: p.Gammas}
	for _, v := range p.Values {
		if d.Aborted() {
			return ErrAborted
		}
		fill := model.RGBA(v, 0, 0, 0)
		d.Fill(model.RGB8_Z24, fill, smallRect)

		d.Begin()
		err := inner.Each(nil, func(pt Point) error {
			pt.Format, pt.Value = model.RGB8_Z24, v
			d.SetCopyFilter(model.SplitFilterSum(pt.FilterSum))
			p.check(d, pt, fill)
			return nil
		})
		d.End()
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *CopyFilterProgram) check(d *Driver, pt Point, fill model.Sample) {
	params := pt.Params()
	d.Trigger(smallRect, params)
	d.Sync()
	got := d.Readback(probeX, probeY, smallStride)

	ctx := d.Context(params)
	st := d.Predict(ctx, fill, fill, fill)
	want := st.Output.R
	exact := model.ApplyGammaFloat(st.Filtered.R, pt.Gamma)
	if !d.Expect(got.R == want, "Predicted wrong value for color %d copy filter %d gamma %d: expected %d (%f), was %d",
		pt.Value, pt.FilterSum, uint8(pt.Gamma), want, exact, got.R) {
		d.Mismatch(probeX, probeY, pt.String(), ctx, st, got)
	}
}
