// Package gpu holds the interfaces the harness drives hardware through, the
// register value encoders, and the command-stream emitter.
package gpu

import (
	"hwtests/internal/model"
)

// BP (blitting processor) register addresses used by the harness.
const (
	BPGenMode        uint8 = 0x00
	BPZMode          uint8 = 0x40
	BPBlendMode      uint8 = 0x41
	BPZCompare       uint8 = 0x43 // PE control: pixel and depth format
	BPEFBTopLeft     uint8 = 0x49
	BPEFBSize        uint8 = 0x4A
	BPEFBCopyAddr    uint8 = 0x4B
	BPMipmapStride   uint8 = 0x4D
	BPCopyYScale     uint8 = 0x4E
	BPClearAR        uint8 = 0x4F
	BPClearGB        uint8 = 0x50
	BPClearZ         uint8 = 0x51
	BPTriggerEFBCopy uint8 = 0x52
	BPCopyFilter0    uint8 = 0x53
	BPCopyFilter1    uint8 = 0x54
	BPScissorOffset  uint8 = 0x59
	BPMask           uint8 = 0xFE
)

// BPValueMask is the payload width of a BP register.
const BPValueMask = 0x00FFFFFF

// BPWord builds the 32-bit word the BP load command carries.
func BPWord(addr uint8, value uint32) uint32 {
	return uint32(addr)<<24 | value&BPValueMask
}

// DepthFormat is the z-buffer encoding in the PE control register.
type DepthFormat uint8

const (
	ZLinear DepthFormat = iota
	ZNear
	ZMid
	ZFar
)

// PEControl is the pixel engine control register.
type PEControl struct {
	PixelFormat model.PixelFormat
	ZFormat     DepthFormat
	EarlyZTest  bool
}

// Hex encodes the register payload.
func (c PEControl) Hex() uint32 {
	v := uint32(c.PixelFormat)&7 | (uint32(c.ZFormat)&7)<<3
	if c.EarlyZTest {
		v |= 1 << 6
	}
	return v
}

// DecodePEControl is the inverse of Hex.
func DecodePEControl(v uint32) PEControl {
	return PEControl{
		PixelFormat: model.PixelFormat(v & 7),
		ZFormat:     DepthFormat((v >> 3) & 7),
		EarlyZTest:  v&(1<<6) != 0,
	}
}

// CopyFormat is the texture format an EFB copy writes.
type CopyFormat uint8

const (
	CopyR4 CopyFormat = iota
	CopyR8_1
	CopyRA4
	CopyRA8
	CopyRGB565
	CopyRGB5A3
	CopyRGBA8
	CopyA8
	CopyR8
	CopyG8
	CopyB8
	CopyRG8
	CopyGB8
)

// FrameToField selects interlaced field output for XFB copies.
type FrameToField uint8

const (
	Progressive    FrameToField = 0
	InterlacedEven FrameToField = 2
	InterlacedOdd  FrameToField = 3
)

// CopyParams is the payload of the copy trigger register.
type CopyParams struct {
	ClampTop        bool
	ClampBottom     bool
	YUV             bool
	TargetFormat    CopyFormat
	Gamma           model.Gamma
	HalfScale       bool
	ScaleInvert     bool
	Clear           bool
	FrameToField    FrameToField
	CopyToXFB       bool
	IntensityFormat bool
	AutoConversion  bool
}

// DefaultCopyParams mirrors the defaults test programs start from: clamp
// both edges, RGBA8 target, linear gamma.
func DefaultCopyParams() CopyParams {
	return CopyParams{ClampTop: true, ClampBottom: true, TargetFormat: CopyRGBA8, Gamma: model.Gamma1_0}
}

// The 4-bit target format field stores the format rotated right by one bit.
func encodeCopyFormat(f CopyFormat) uint32 {
	v := uint32(f) & 0xF
	return (v&7)<<1 | v>>3
}

func decodeCopyFormat(v uint32) CopyFormat {
	return CopyFormat(v/2 + (v&1)*8)
}

func bit(b bool, shift uint) uint32 {
	if b {
		return 1 << shift
	}
	return 0
}

// Hex encodes the register payload.
func (p CopyParams) Hex() uint32 {
	return bit(p.ClampTop, 0) |
		bit(p.ClampBottom, 1) |
		bit(p.YUV, 2) |
		encodeCopyFormat(p.TargetFormat)<<3 |
		(uint32(p.Gamma)&3)<<7 |
		bit(p.HalfScale, 9) |
		bit(p.ScaleInvert, 10) |
		bit(p.Clear, 11) |
		(uint32(p.FrameToField)&3)<<12 |
		bit(p.CopyToXFB, 14) |
		bit(p.IntensityFormat, 15) |
		bit(p.AutoConversion, 16)
}

// DecodeCopyParams is the inverse of Hex.
func DecodeCopyParams(v uint32) CopyParams {
	return CopyParams{
		ClampTop:        v&(1<<0) != 0,
		ClampBottom:     v&(1<<1) != 0,
		YUV:             v&(1<<2) != 0,
		TargetFormat:    decodeCopyFormat((v >> 3) & 0xF),
		Gamma:           model.Gamma((v >> 7) & 3),
		HalfScale:       v&(1<<9) != 0,
		ScaleInvert:     v&(1<<10) != 0,
		Clear:           v&(1<<11) != 0,
		FrameToField:    FrameToField((v >> 12) & 3),
		CopyToXFB:       v&(1<<14) != 0,
		IntensityFormat: v&(1<<15) != 0,
		AutoConversion:  v&(1<<16) != 0,
	}
}

// CopyFilterCoefficients are the seven 6-bit taps of the copy filter.
// Taps 0-1 weight the row above, 2-4 the current row, 5-6 the row below.
type CopyFilterCoefficients [7]uint8

// CoefficientsFor spreads each row weight of f over the taps of its row,
// filling taps in order up to 63 each. Weight beyond a row's capacity is
// dropped.
func CoefficientsFor(f model.CopyFilter) CopyFilterCoefficients {
	var c CopyFilterCoefficients
	spread(c[0:2], f.Prev)
	spread(c[2:5], f.Cur)
	spread(c[5:7], f.Next)
	return c
}

func spread(taps []uint8, w uint8) {
	left := int(w)
	for i := range taps {
		taps[i] = uint8(min(left, model.MaxTapWeight))
		left -= int(taps[i])
	}
}

// Rows sums the taps per row.
func (c CopyFilterCoefficients) Rows() model.CopyFilter {
	return model.CopyFilter{
		Prev: c[0] + c[1],
		Cur:  c[2] + c[3] + c[4],
		Next: c[5] + c[6],
	}
}

// Values returns the payloads of the two copy filter registers.
func (c CopyFilterCoefficients) Values() (reg0, reg1 uint32) {
	for i := 0; i < 4; i++ {
		reg0 |= uint32(c[i]&0x3F) << (6 * i)
	}
	for i := 4; i < 7; i++ {
		reg1 |= uint32(c[i]&0x3F) << (6 * (i - 4))
	}
	return reg0, reg1
}

// DecodeCopyFilter rebuilds the taps from the two register payloads.
func DecodeCopyFilter(reg0, reg1 uint32) CopyFilterCoefficients {
	var c CopyFilterCoefficients
	for i := 0; i < 4; i++ {
		c[i] = uint8(reg0>>(6*i)) & 0x3F
	}
	for i := 4; i < 7; i++ {
		c[i] = uint8(reg1>>(6*(i-4))) & 0x3F
	}
	return c
}

// EFBRect is the source rectangle of an EFB copy.
type EFBRect struct {
	Left, Top, Width, Height int
}

// Values encodes the top-left and size registers (10 bits per axis, size
// stored minus one).
func (r EFBRect) Values() (topLeft, size uint32) {
	topLeft = uint32(r.Left)&0x3FF | (uint32(r.Top)&0x3FF)<<10
	size = uint32(r.Width-1)&0x3FF | (uint32(r.Height-1)&0x3FF)<<10
	return topLeft, size
}

// DecodeEFBRect is the inverse of Values.
func DecodeEFBRect(topLeft, size uint32) EFBRect {
	return EFBRect{
		Left:   int(topLeft & 0x3FF),
		Top:    int((topLeft >> 10) & 0x3FF),
		Width:  int(size&0x3FF) + 1,
		Height: int((size>>10)&0x3FF) + 1,
	}
}

// ClearColorValues encodes a clear color into the AR and GB registers.
func ClearColorValues(s model.Sample) (ar, gb uint32) {
	return uint32(s.A)<<8 | uint32(s.R), uint32(s.G)<<8 | uint32(s.B)
}

// DecodeClearColor is the inverse of ClearColorValues.
func DecodeClearColor(ar, gb uint32) model.Sample {
	return model.Sample{A: uint8(ar >> 8), R: uint8(ar), G: uint8(gb >> 8), B: uint8(gb)}
}
