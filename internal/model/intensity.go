package model

import "math"

// BT.601 integer coefficients out of 256. The float constants give
// different results by one on some inputs, and the hardware matches these.
const (
	yR, yG, yB = 66, 129, 25
	uR, uG, uB = -38, -74, 112
	vR, vG, vB = 112, -94, -18

	lumaOffset   = 16
	chromaOffset = 128
)

func bt601(r, g, b uint8, cr, cg, cb, offset int) uint8 {
	sum := cr*int(r) + cg*int(g) + cb*int(b)
	return uint8(math.Round(float64(sum)/256.0 + float64(offset)))
}

// Luma returns Y for an RGB triple.
func Luma(r, g, b uint8) uint8 {
	return bt601(r, g, b, yR, yG, yB, lumaOffset)
}

// ChromaU returns U (Cb) for an RGB triple.
func ChromaU(r, g, b uint8) uint8 {
	return bt601(r, g, b, uR, uG, uB, chromaOffset)
}

// ChromaV returns V (Cr) for an RGB triple.
func ChromaV(r, g, b uint8) uint8 {
	return bt601(r, g, b, vR, vG, vB, chromaOffset)
}

// ToIntensity converts the color channels of s to Y, U, V. Alpha is kept.
func ToIntensity(s Sample) Sample {
	return Sample{
		R: Luma(s.R, s.G, s.B),
		G: ChromaU(s.R, s.G, s.B),
		B: ChromaV(s.R, s.G, s.B),
		A: s.A,
	}
}

// UsesIntensity reports whether a copy with ctx's flags produces Y/U/V.
// Observed on hardware: only the intensity format bit combined with
// automatic conversion converts; the yuv bit alone leaves RGB in place.
func UsesIntensity(ctx Context) bool {
	return ctx.IntensityFormat && ctx.AutoConversion
}
