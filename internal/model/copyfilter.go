package model

// MaxTapWeight is the largest value a single copy filter coefficient holds
// (6-bit field).
const MaxTapWeight = 63

// NominalFilterSum is the weight sum under which the filter behaves as a
// plain weighted average.
const NominalFilterSum = 64

// MaxFilterSum is the largest weight sum the registers can express with the
// three row weights each at MaxTapWeight.
const MaxFilterSum = 3 * MaxTapWeight

// accumulatorMask keeps the 9 bits the copy filter accumulator holds after
// the divide by 64.
const accumulatorMask = 0x1FF

// CopyFilter holds the row weights of the 3-tap vertical filter applied
// during an EFB copy. Prev and Next each span two 6-bit hardware taps and
// Cur spans three, so Cur may hold up to 3*63; sweeps built by
// SplitFilterSum keep every weight in [0, 63].
type CopyFilter struct {
	Prev uint8 // row above
	Cur  uint8 // current row
	Next uint8 // row below
}

// Sum is the effective multiplier (out of 64) the filter applies to a
// uniform image.
func (f CopyFilter) Sum() int {
	return int(f.Prev) + int(f.Cur) + int(f.Next)
}

// IdentityFilter copies the current row unchanged. Its Cur weight of 64
// takes two of the current row's taps.
var IdentityFilter = CopyFilter{Cur: NominalFilterSum}

// SplitFilterSum distributes sum over the three weights, filling Cur first,
// then Prev, then Next, 63 at a time. Sums above MaxFilterSum are capped.
func SplitFilterSum(sum int) CopyFilter {
	if sum < 0 {
		sum = 0
	}
	var f CopyFilter
	f.Cur = uint8(min(sum, MaxTapWeight))
	if sum > MaxTapWeight {
		f.Prev = uint8(min(sum-MaxTapWeight, MaxTapWeight))
	}
	if sum > 2*MaxTapWeight {
		f.Next = uint8(min(sum-2*MaxTapWeight, MaxTapWeight))
	}
	return f
}

// FilterAccumulate returns the raw accumulator value for one channel:
// the weighted sum divided by 64 and masked to 9 bits. Weighted sums past
// 511 wrap here instead of saturating.
func FilterAccumulate(prev, cur, next uint8, f CopyFilter) int {
	sum := int(prev)*int(f.Prev) + int(cur)*int(f.Cur) + int(next)*int(f.Next)
	return (sum >> 6) & accumulatorMask
}

// ClampAccumulator clamps a 9-bit accumulator value to the 8-bit range.
func ClampAccumulator(acc int) uint8 {
	if acc > 255 {
		return 255
	}
	return uint8(acc)
}

// FilterChannel runs one color channel through the copy filter.
func FilterChannel(prev, cur, next uint8, f CopyFilter) uint8 {
	return ClampAccumulator(FilterAccumulate(prev, cur, next, f))
}

// ApplyCopyFilter filters the color channels of cur using its vertical
// neighbours. Alpha is never filtered; it is taken from cur unchanged.
func ApplyCopyFilter(prev, cur, next Sample, f CopyFilter) Sample {
	return Sample{
		R: FilterChannel(prev.R, cur.R, next.R, f),
		G: FilterChannel(prev.G, cur.G, next.G, f),
		B: FilterChannel(prev.B, cur.B, next.B, f),
		A: cur.A,
	}
}
