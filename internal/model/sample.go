// Package model predicts the pixel values the GPU pixel pipeline produces
// for a given register configuration.
//
// Everything in this package is pure: the same Context and input samples
// always give the same prediction. The functions reproduce fixed-function
// hardware arithmetic step by step, including the places where the hardware
// wraps, saturates or thresholds in ways that do not follow from any general
// formula. Those quirks are kept as separate named functions so each one can
// be tested and replaced on its own when new hardware data shows up.
package model

import "fmt"

// Sample is one pixel as read from the test buffer: three color channels
// (R, G, B or Y, U, V) plus alpha.
type Sample struct {
	R, G, B, A uint8
}

// NumChannels is the number of channels in a Sample.
const NumChannels = 4

// RGBA builds a Sample.
func RGBA(r, g, b, a uint8) Sample {
	return Sample{R: r, G: g, B: b, A: a}
}

// Channel returns channel i (0=R/Y, 1=G/U, 2=B/V, 3=A).
func (s Sample) Channel(i int) uint8 {
	switch i {
	case 0:
		return s.R
	case 1:
		return s.G
	case 2:
		return s.B
	case 3:
		return s.A
	}
	panic(fmt.Sprintf("model: channel index %d out of range", i))
}

// Channels returns all four channels in R, G, B, A order.
func (s Sample) Channels() [NumChannels]uint8 {
	return [NumChannels]uint8{s.R, s.G, s.B, s.A}
}

// MapColor applies fn to the three color channels and leaves alpha alone.
func (s Sample) MapColor(fn func(uint8) uint8) Sample {
	return Sample{R: fn(s.R), G: fn(s.G), B: fn(s.B), A: s.A}
}

// Pack returns the sample as 0xAARRGGBB.
func (s Sample) Pack() uint32 {
	return uint32(s.A)<<24 | uint32(s.R)<<16 | uint32(s.G)<<8 | uint32(s.B)
}

// Unpack is the inverse of Pack.
func Unpack(argb uint32) Sample {
	return Sample{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}

func (s Sample) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", s.R, s.G, s.B, s.A)
}

// ChannelName names channel i for failure messages. When yuv is set the
// color channels are reported as luma/chroma.
func ChannelName(i int, yuv bool) string {
	if yuv {
		return [...]string{"y", "u", "v", "alpha"}[i]
	}
	return [...]string{"red", "green", "blue", "alpha"}[i]
}
