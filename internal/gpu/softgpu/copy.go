package softgpu

import (
	"math"

	"hwtests/internal/gpu"
	"hwtests/internal/model"
)

func gammaTable(gm model.Gamma) (t [256]uint8) {
	if gm == model.Gamma1_0 {
		for v := range t {
			t[v] = uint8(v)
		}
		return t
	}
	exp := 1 / float32(2.2)
	if gm == model.Gamma1_7 {
		exp = 1 / float32(1.7)
	}
	for v := range t {
		x := float32(v) / 255
		x = float32(math.Pow(float64(x), float64(exp))) * 255
		if x > 255 {
			x = 255
		}
		t[v] = uint8(math.Round(float64(x)))
	}
	return t
}

// Rows of the seven filter taps relative to the current line.
var tapRows = [7]int{-1, -1, 0, 0, 0, 1, 1}

func (g *GPU) filter(rows [3]model.Sample, coef gpu.CopyFilterCoefficients, ch int) uint8 {
	sum := 0
	for i, w := range coef {
		sum += int(rows[tapRows[i]+1].Channel(ch)) * int(w)
	}
	acc := sum >> 6
	if g.fault&FaultSaturatingFilter == 0 {
		acc &= 0x1FF
	}
	if acc > 255 {
		return 255
	}
	return uint8(acc)
}

func yuvInt(r, g, b uint8, cr, cg, cb, offset int) uint8 {
	return uint8((cr*int(r) + cg*int(g) + cb*int(b) + offset<<8 + 128) >> 8)
}

func yuvFloat(r, g, b uint8, cr, cg, cb float64, offset float64) uint8 {
	return uint8(cr*float64(r) + cg*float64(g) + cb*float64(b) + offset)
}

func (g *GPU) intensity(s model.Sample) model.Sample {
	if g.fault&FaultFloatIntensity != 0 {
		return model.RGBA(
			yuvFloat(s.R, s.G, s.B, 0.257, 0.504, 0.098, 16),
			yuvFloat(s.R, s.G, s.B, -0.148, -0.291, 0.439, 128),
			yuvFloat(s.R, s.G, s.B, 0.439, -0.368, -0.071, 128),
			s.A)
	}
	return model.RGBA(
		yuvInt(s.R, s.G, s.B, 66, 129, 25, 16),
		yuvInt(s.R, s.G, s.B, -38, -74, 112, 128),
		yuvInt(s.R, s.G, s.B, 112, -94, -18, 128),
		s.A)
}

// copyEFB runs the copy pipeline over the source rectangle into the test
// buffer, then clears the rectangle if requested.
func (g *GPU) copyEFB(p gpu.CopyParams) {
	r := gpu.DecodeEFBRect(g.bp[gpu.BPEFBTopLeft], g.bp[gpu.BPEFBSize])
	coef := gpu.DecodeCopyFilter(g.bp[gpu.BPCopyFilter0], g.bp[gpu.BPCopyFilter1])
	lut := &g.gammaLUT[p.Gamma]
	if g.fault&FaultIgnoreGamma != 0 {
		lut = &g.gammaLUT[model.Gamma1_0]
	}
	convert := p.IntensityFormat && p.AutoConversion

	if p.HalfScale || p.ScaleInvert || p.CopyToXFB || p.FrameToField != gpu.Progressive {
		g.log.Printf("copy options half=%t invert=%t xfb=%t field=%d not modeled", p.HalfScale, p.ScaleInvert, p.CopyToXFB, p.FrameToField)
	}

	out := make([]model.Sample, r.Width*r.Height)
	bottom := r.Top + r.Height - 1
	for dy := 0; dy < r.Height; dy++ {
		y := r.Top + dy
		up, down := y-1, y+1
		if p.ClampTop && up < r.Top {
			up = y
		}
		if p.ClampBottom && down > bottom {
			down = y
		}
		for dx := 0; dx < r.Width; dx++ {
			x := r.Left + dx
			rows := [3]model.Sample{g.efbAt(x, up), g.efbAt(x, y), g.efbAt(x, down)}
			s := model.RGBA(
				lut[g.filter(rows, coef, 0)],
				lut[g.filter(rows, coef, 1)],
				lut[g.filter(rows, coef, 2)],
				rows[1].A)
			if convert {
				s = g.intensity(s)
			}
			out[dy*r.Width+dx] = s
		}
	}
	g.testBuf = out
	g.stats.Copies++
	g.log.Printf("copy %dx%d at %d,%d format %v gamma %v intensity %t", r.Width, r.Height, r.Left, r.Top, g.pixelFormat(), p.Gamma, convert)

	if p.Clear {
		g.clearRect(r, gpu.DecodeClearColor(g.bp[gpu.BPClearAR], g.bp[gpu.BPClearGB]))
	}
}
