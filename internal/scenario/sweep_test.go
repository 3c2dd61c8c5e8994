package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwtests/internal/input"
	"hwtests/internal/model"
)

func TestConversions(t *testing.T) {
	cs := Conversions()
	require.Len(t, cs, 8)
	assert.Equal(t, Conversion{}, cs[0])
	assert.Equal(t, Conversion{YUV: true}, cs[1])
	assert.Equal(t, Conversion{Intensity: true}, cs[2])
	assert.Equal(t, Conversion{YUV: true, Intensity: true, Auto: true}, cs[7])
	assert.Equal(t, "1 0 1", cs[5].String())
}

func TestSweep_OrderAndCount(t *testing.T) {
	s := Sweep{
		Formats:    []model.PixelFormat{model.RGB8_Z24, model.RGBA6_Z24},
		FilterSums: []int{0, 64},
		Values:     []uint8{1, 2, 3},
	}
	var got []Point
	err := s.Each(nil, func(p Point) error {
		got = append(got, p)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 12, s.Count())
	require.Len(t, got, 12)
	assert.Equal(t, Point{Format: model.RGB8_Z24, FilterSum: 0, Value: 1}, got[0])
	assert.Equal(t, Point{Format: model.RGB8_Z24, FilterSum: 0, Value: 2}, got[1])
	assert.Equal(t, Point{Format: model.RGB8_Z24, FilterSum: 64, Value: 1}, got[3])
	assert.Equal(t, Point{Format: model.RGBA6_Z24, FilterSum: 64, Value: 3}, got[11])
}

func TestSweep_EmptyDimensionsRunOnce(t *testing.T) {
	n := 0
	err := Sweep{}.Each(nil, func(p Point) error {
		n++
		assert.Equal(t, Point{}, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, Sweep{}.Count())
}

func TestSweep_AbortBetweenPoints(t *testing.T) {
	calls := 0
	abort := input.AbortFunc(func() bool { return calls == 3 })
	err := Sweep{Values: AllValues()}.Each(abort, func(Point) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 3, calls)
}

func TestSweep_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Sweep{Values: AllValues()}.Each(nil, func(Point) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestPoint_ParamsCarryConversionAndGamma(t *testing.T) {
	p := Point{Gamma: model.Gamma2_2, Conversion: ConversionFromIndex(3)}.Params()
	assert.True(t, p.ClampTop)
	assert.True(t, p.ClampBottom)
	assert.False(t, p.Clear)
	assert.Equal(t, model.Gamma2_2, p.Gamma)
	assert.True(t, p.YUV)
	assert.True(t, p.IntensityFormat)
	assert.False(t, p.AutoConversion)
}

func TestFilterSumsAndValues(t *testing.T) {
	assert.Len(t, FilterSums(model.MaxFilterSum), model.MaxFilterSum+1)
	vals := AllValues()
	assert.Len(t, vals, 256)
	assert.Equal(t, uint8(255), vals[255])
}
