package scenario

import (
	"fmt"

	"hwtests/internal/gpu"
	"hwtests/internal/input"
	"hwtests/internal/model"
)

// Conversion is one combination of the copy register's color conversion
// bits.
type Conversion struct {
	YUV       bool
	Intensity bool
	Auto      bool
}

// ConversionFromIndex decodes c as yuv=bit0, intensity=bit1, auto=bit2.
func ConversionFromIndex(c int) Conversion {
	return Conversion{YUV: c&1 != 0, Intensity: c&2 != 0, Auto: c&4 != 0}
}

// Conversions lists all eight combinations in index order.
func Conversions() []Conversion {
	out := make([]Conversion, 8)
	for c := range out {
		out[c] = ConversionFromIndex(c)
	}
	return out
}

// Apply sets the conversion bits on p.
func (c Conversion) Apply(p gpu.CopyParams) gpu.CopyParams {
	p.YUV = c.YUV
	p.IntensityFormat = c.Intensity
	p.AutoConversion = c.Auto
	return p
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c Conversion) String() string {
	return fmt.Sprintf("%d %d %d", b2i(c.YUV), b2i(c.Intensity), b2i(c.Auto))
}

// Point is one iteration of a sweep.
type Point struct {
	Format     model.PixelFormat
	FilterSum  int
	Gamma      model.Gamma
	Conversion Conversion
	Value      uint8
}

func (p Point) String() string {
	return fmt.Sprintf("format %v filter %d gamma %v conv %v value %d", p.Format, p.FilterSum, p.Gamma, p.Conversion, p.Value)
}

// Params returns the copy parameters for p with clamping on and no clear.
func (p Point) Params() gpu.CopyParams {
	cp := gpu.DefaultCopyParams()
	cp.Gamma = p.Gamma
	return p.Conversion.Apply(cp)
}

// Sweep is the cross product of its dimensions, iterated with Formats
// outermost and Values innermost. An empty dimension contributes its zero
// value once.
type Sweep struct {
	Formats     []model.PixelFormat
	FilterSums  []int
	Gammas      []model.Gamma
	Conversions []Conversion
	Values      []uint8
}

// FilterSums returns 0..n.
func FilterSums(n int) []int {
	out := make([]int, n+1)
	for i := range out {
		out[i] = i
	}
	return out
}

// AllValues returns 0..255.
func AllValues() []uint8 {
	out := make([]uint8, 256)
	for i := range out {
		out[i] = uint8(i)
	}
	return out
}

// ReliableFormats returns the formats whose model is not flagged low
// confidence.
func ReliableFormats() []model.PixelFormat {
	var out []model.PixelFormat
	for _, f := range model.PixelFormats {
		if model.FormatInfo(f).Confidence != model.ConfidenceLow {
			out = append(out, f)
		}
	}
	return out
}

func orZero[T any](s []T) []T {
	if len(s) == 0 {
		return make([]T, 1)
	}
	return s
}

// Count returns the number of points.
func (s Sweep) Count() int {
	return len(orZero(s.Formats)) * len(orZero(s.FilterSums)) * len(orZero(s.Gammas)) *
		len(orZero(s.Conversions)) * len(orZero(s.Values))
}

// Each calls fn for every point in order. abort is polled before each
// point; Each returns ErrAborted when it fires, or the first error from fn.
func (s Sweep) Each(abort input.AbortSource, fn func(Point) error) error {
	if abort == nil {
		abort = input.Never
	}
	for _, f := range orZero(s.Formats) {
		for _, sum := range orZero(s.FilterSums) {
			for _, g := range orZero(s.Gammas) {
				for _, c := range orZero(s.Conversions) {
					for _, v := range orZero(s.Values) {
						if abort.AbortRequested() {
							return ErrAborted
						}
						if err := fn(Point{Format: f, FilterSum: sum, Gamma: g, Conversion: c, Value: v}); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}
