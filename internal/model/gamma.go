package model

import (
	"fmt"
	"math"
)

// Gamma is the tone curve selected by the copy register's 2-bit gamma field.
type Gamma uint8

const (
	Gamma1_0 Gamma = iota
	Gamma1_7
	Gamma2_2
	// Invalid2_2 is the unnamed fourth encoding. Hardware applies the 2.2
	// curve for it.
	Invalid2_2
)

// Gammas lists every encoding.
var Gammas = []Gamma{Gamma1_0, Gamma1_7, Gamma2_2, Invalid2_2}

func (g Gamma) String() string {
	switch g {
	case Gamma1_0:
		return "1.0"
	case Gamma1_7:
		return "1.7"
	case Gamma2_2:
		return "2.2"
	case Invalid2_2:
		return "invalid(2.2)"
	}
	return fmt.Sprintf("gamma(%d)", uint8(g))
}

// IsLinear reports whether g leaves values untouched.
func (g Gamma) IsLinear() bool {
	return g == Gamma1_0
}

// GammaExponent returns the power the curve raises normalized values to.
// The 2-bit field only has four encodings; anything else is treated like
// the top encoding.
func GammaExponent(g Gamma) float32 {
	switch g {
	case Gamma1_0:
		return 1
	case Gamma1_7:
		return 1 / float32(1.7)
	default:
		return 1 / float32(2.2)
	}
}

// ApplyGammaFloat returns the unrounded curve output on the [0, 255] scale.
// It is kept separate from ApplyGamma so failure messages can show it.
func ApplyGammaFloat(v uint8, g Gamma) float32 {
	x := float32(v)
	if g.IsLinear() {
		return x
	}
	x /= 255
	x = float32(math.Pow(float64(x), float64(GammaExponent(g))))
	return x * 255
}

// ApplyGamma applies the curve to one filtered 8-bit channel value.
// The linear curve is skipped entirely.
func ApplyGamma(v uint8, g Gamma) uint8 {
	if g.IsLinear() {
		return v
	}
	return uint8(math.Round(float64(min(ApplyGammaFloat(v, g), 255))))
}
