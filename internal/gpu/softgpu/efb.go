package softgpu

import (
	"hwtests/internal/gpu"
	"hwtests/internal/model"
)

// Pixels are stored packed the way each format lays them out, so changing
// the pixel format reinterprets existing contents.

func expand6(c uint32) uint8 { return uint8(c<<2 | c>>4) }
func expand5(c uint32) uint8 { return uint8(c<<3 | c>>2) }

func bit1(v uint8) uint32 { return uint32(v >> 7) }

func expand1(c uint32) uint8 {
	if c&1 != 0 {
		return 0xFF
	}
	return 0
}

func pack(f model.PixelFormat, s model.Sample) uint32 {
	switch f {
	case model.RGBA6_Z24:
		return uint32(s.R>>2)<<18 | uint32(s.G>>2)<<12 | uint32(s.B>>2)<<6 | uint32(s.A>>2)
	case model.RGB565_Z16:
		return uint32(s.R>>3)<<11 | uint32(s.G>>2)<<5 | uint32(s.B>>3)
	case model.U8, model.V8:
		return bit1(s.R)<<2 | bit1(s.G)<<1 | bit1(s.B)
	default:
		return uint32(s.R)<<16 | uint32(s.G)<<8 | uint32(s.B)
	}
}

func unpack(f model.PixelFormat, p uint32) model.Sample {
	switch f {
	case model.RGBA6_Z24:
		return model.RGBA(expand6(p>>18&0x3F), expand6(p>>12&0x3F), expand6(p>>6&0x3F), expand6(p&0x3F))
	case model.RGB565_Z16:
		return model.RGBA(expand5(p>>11&0x1F), expand6(p>>5&0x3F), expand5(p&0x1F), 0xFF)
	case model.U8, model.V8:
		return model.RGBA(expand1(p>>2), expand1(p>>1), expand1(p), 0xFF)
	default:
		return model.RGBA(uint8(p>>16), uint8(p>>8), uint8(p), 0xFF)
	}
}

func clampCoord(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *GPU) efbAt(x, y int) model.Sample {
	x = clampCoord(x, gpu.EFBWidth-1)
	y = clampCoord(y, gpu.EFBHeight-1)
	return unpack(g.pixelFormat(), g.efb[y*gpu.EFBWidth+x])
}

// PokeARGB writes one EFB pixel in the current pixel format. Writes outside
// the EFB are dropped.
func (g *GPU) PokeARGB(x, y int, s model.Sample) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if x < 0 || y < 0 || x >= gpu.EFBWidth || y >= gpu.EFBHeight {
		g.log.Printf("poke outside efb at %d,%d", x, y)
		return
	}
	g.efb[y*gpu.EFBWidth+x] = pack(g.pixelFormat(), s)
}

// PeekARGB reads one EFB pixel as the CPU would see it.
func (g *GPU) PeekARGB(x, y int) model.Sample {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.efbAt(x, y)
}

func (g *GPU) clearRect(r gpu.EFBRect, color model.Sample) {
	f := g.pixelFormat()
	p := pack(f, color)
	for y := r.Top; y < r.Top+r.Height && y < gpu.EFBHeight; y++ {
		for x := r.Left; x < r.Left+r.Width && x < gpu.EFBWidth; x++ {
			g.efb[y*gpu.EFBWidth+x] = p
		}
	}
	g.stats.Clears++
}

// ReadTestBuffer reads from the buffer the last executed copy wrote.
// Reads outside it return zero.
func (g *GPU) ReadTestBuffer(x, y, stride int) model.Sample {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := y*stride + x
	if x < 0 || y < 0 || i >= len(g.testBuf) {
		g.log.Printf("readback outside test buffer at %d,%d stride %d", x, y, stride)
		return model.Sample{}
	}
	return g.testBuf[i]
}

// TestBuffer returns a copy of the last copy destination.
func (g *GPU) TestBuffer() []model.Sample {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.Sample(nil), g.testBuf...)
}
