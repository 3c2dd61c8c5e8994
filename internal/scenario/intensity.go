package scenario

import (
	"fmt"

	"hwtests/internal/gpu"
	"hwtests/internal/model"
)

const gradientSize = 256

var gradientRect = gpu.EFBRect{Left: 0, Top: 0, Width: gradientSize, Height: gradientSize}

// IntensityProgram pokes an R/G gradient with a fixed blue and copies it
// with every combination of the conversion bits, checking all four channels
// of every pixel.
type IntensityProgram struct {
	Blues       []uint8
	Conversions []Conversion
}

// NewIntensityProgram returns the default sweep over every blue value.
func NewIntensityProgram() *IntensityProgram {
	return &IntensityProgram{Blues: AllValues(), Conversions: Conversions()}
}

func (p *IntensityProgram) Name() string { return "intensity" }

func gradient(blue uint8) func(x, y int) model.Sample {
	return func(x, y int) model.Sample {
		return model.RGBA(uint8(x), uint8(y), blue, 255)
	}
}

func (p *IntensityProgram) Run(d *Driver) error {
	for _, blue := range p.Blues {
		d.SetPixelFormat(model.RGB8_Z24)
		d.SetCopyFilter(model.IdentityFilter)
		d.Sync()
		d.Poke(gradientSize, gradientSize, gradient(blue))

		err := Sweep{Conversions: p.Conversions}.Each(d.abort, func(pt Point) error {
			p.check(d, blue, pt.Conversion)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *IntensityProgram) check(d *Driver, blue uint8, c Conversion) {
	d.Begin()
	defer d.End()

	params := c.Apply(gpu.DefaultCopyParams())
	d.Trigger(gradientRect, params)
	d.Sync()

	ctx := d.Context(params)
	src := gradient(blue)
	frame := d.ReadFrame(gradientSize, gradientSize)
	for x := 0; x < gradientSize; x++ {
		for y := 0; y < gradientSize; y++ {
			got := frame[y*gradientSize+x]
			prev := src(x, max(y-1, 0))
			next := src(x, min(y+1, gradientSize-1))
			st := d.Predict(ctx, prev, src(x, y), next)
			want := st.Output

			ok := d.Expect(got.R == want.R, "Got wrong red   / y value for x %d y %d blue %d, %v: expected %d, was %d", x, y, blue, c, want.R, got.R)
			ok = d.Expect(got.G == want.G, "Got wrong green / u value for x %d y %d blue %d, %v: expected %d, was %d", x, y, blue, c, want.G, got.G) && ok
			ok = d.Expect(got.B == want.B, "Got wrong blue  / v value for x %d y %d blue %d, %v: expected %d, was %d", x, y, blue, c, want.B, got.B) && ok
			ok = d.Expect(got.A == want.A, "Got wrong alpha     value for x %d y %d blue %d, %v: expected %d, was %d", x, y, blue, c, want.A, got.A) && ok
			if !ok {
				d.Mismatch(x, y, fmt.Sprintf("blue %d conv %v", blue, c), ctx, st, got)
			}
		}
	}
	d.Show(fmt.Sprintf("intensity blue %d conv %v", blue, c), gradientSize, gradientSize, frame)
}
