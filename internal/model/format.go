package model

import "fmt"

// PixelFormat is the EFB pixel format as encoded in the PE control register.
type PixelFormat uint8

const (
	RGB8_Z24 PixelFormat = iota
	RGBA6_Z24
	RGB565_Z16
	Z24
	Y8
	U8
	V8
	YUV420
)

// PixelFormats lists every encoding.
var PixelFormats = []PixelFormat{RGB8_Z24, RGBA6_Z24, RGB565_Z16, Z24, Y8, U8, V8, YUV420}

// Confidence grades how well a format model is backed by hardware data.
type Confidence uint8

const (
	// ConfidenceDerived follows directly from the stored bit widths.
	ConfidenceDerived Confidence = iota
	// ConfidenceEmpirical was confirmed by testing, not derived.
	ConfidenceEmpirical
	// ConfidenceLow is a known-incomplete model. Expect failures.
	ConfidenceLow
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceDerived:
		return "derived"
	case ConfidenceEmpirical:
		return "empirical"
	case ConfidenceLow:
		return "low"
	}
	return fmt.Sprintf("confidence(%d)", uint8(c))
}

// Reducer maps a conceptually 8-bit sample to the value the hardware reads
// back after storing it in a narrower format.
type Reducer func(Sample) Sample

// FormatModel describes how one pixel format stores and reconstructs pixels.
type FormatModel struct {
	Name       string
	Depth      bool // channel set is depth written as color
	Confidence Confidence
	Reduce     Reducer
}

// FormatTable maps formats to their models. A Context may carry its own
// table to override individual formats.
type FormatTable map[PixelFormat]FormatModel

// DefaultFormats returns a fresh copy of the built-in format models.
func DefaultFormats() FormatTable {
	return FormatTable{
		RGB8_Z24:   {Name: "RGB8_Z24", Confidence: ConfidenceDerived, Reduce: ReduceRGB8},
		RGBA6_Z24:  {Name: "RGBA6_Z24", Confidence: ConfidenceDerived, Reduce: ReduceRGBA6},
		RGB565_Z16: {Name: "RGB565_Z16", Confidence: ConfidenceDerived, Reduce: ReduceRGB565},
		Z24:        {Name: "Z24", Depth: true, Confidence: ConfidenceLow, Reduce: ReduceZ24},
		Y8:         {Name: "Y8", Confidence: ConfidenceLow, Reduce: ReduceY8},
		U8:         {Name: "U8", Confidence: ConfidenceEmpirical, Reduce: ReduceU8},
		V8:         {Name: "V8", Confidence: ConfidenceLow, Reduce: ReduceV8},
		YUV420:     {Name: "YUV420", Confidence: ConfidenceLow, Reduce: ReduceYUV420},
	}
}

var defaultFormats = DefaultFormats()

// Lookup returns the model for f, falling back to the defaults for
// formats t does not override. Unknown formats reduce as RGB8.
func (t FormatTable) Lookup(f PixelFormat) FormatModel {
	if m, ok := t[f]; ok && m.Reduce != nil {
		return m
	}
	if m, ok := defaultFormats[f]; ok {
		return m
	}
	return FormatModel{Name: fmt.Sprintf("format(%d)", uint8(f)), Confidence: ConfidenceLow, Reduce: ReduceRGB8}
}

func (f PixelFormat) String() string {
	return defaultFormats.Lookup(f).Name
}

// FormatInfo returns the built-in model for f.
func FormatInfo(f PixelFormat) FormatModel {
	return defaultFormats.Lookup(f)
}

// Reduce applies the built-in reduction for f.
func Reduce(f PixelFormat, s Sample) Sample {
	return defaultFormats.Lookup(f).Reduce(s)
}

// Replicate6 reconstructs an 8-bit value from the top 6 bits of v. The two
// dropped bits are refilled from the two highest bits.
func Replicate6(v uint8) uint8 {
	return (v & 0xFC) | ((v & 0xC0) >> 6)
}

// Replicate5 reconstructs an 8-bit value from the top 5 bits of v. The
// three dropped bits are refilled from the three highest bits.
func Replicate5(v uint8) uint8 {
	return (v & 0xF8) | ((v & 0xE0) >> 5)
}

// Step thresholds v at the midpoint: 0xFF for v >= 0x80, else 0.
func Step(v uint8) uint8 {
	if v >= 0x80 {
		return 0xFF
	}
	return 0
}

// ReduceRGB8 stores color at full precision. There is no alpha storage, so
// alpha always reads back as 0xFF.
func ReduceRGB8(s Sample) Sample {
	s.A = 0xFF
	return s
}

// ReduceRGBA6 stores each channel, alpha included, at 6 bits.
func ReduceRGBA6(s Sample) Sample {
	return Sample{R: Replicate6(s.R), G: Replicate6(s.G), B: Replicate6(s.B), A: Replicate6(s.A)}
}

// ReduceRGB565 stores 5-bit red and blue, 6-bit green and no alpha.
func ReduceRGB565(s Sample) Sample {
	return Sample{R: Replicate5(s.R), G: Replicate6(s.G), B: Replicate5(s.B), A: 0xFF}
}

// ReduceZ24 models a color copy from the depth-only format. Low confidence:
// dunno what the color path reads here, assumed to behave like RGB8.
func ReduceZ24(s Sample) Sample {
	return ReduceRGB8(s)
}

// ReduceY8 is low confidence: doesn't work on hardware for most inputs,
// kept as pass-through until there is data.
func ReduceY8(s Sample) Sample {
	return ReduceRGB8(s)
}

// ReduceU8 thresholds every color channel. Confirmed by testing, not
// derived.
func ReduceU8(s Sample) Sample {
	s = s.MapColor(Step)
	s.A = 0xFF
	return s
}

// ReduceV8 is low confidence: assumed to match U8, dunno.
func ReduceV8(s Sample) Sample {
	return ReduceU8(s)
}

// ReduceYUV420 is low confidence: doesn't work, kept as pass-through.
func ReduceYUV420(s Sample) Sample {
	return ReduceRGB8(s)
}
