package model

// Context is the full hardware configuration one prediction depends on.
type Context struct {
	Format PixelFormat
	Filter CopyFilter
	Gamma  Gamma

	YUV             bool
	IntensityFormat bool
	AutoConversion  bool

	// Formats overrides individual format models. Nil uses the defaults.
	Formats FormatTable
}

// FormatModel returns the format model ctx predicts with.
func (ctx Context) FormatModel() FormatModel {
	return ctx.Formats.Lookup(ctx.Format)
}

// Stages records the value after every step of the pipeline.
type Stages struct {
	Input     [3]Sample // prev, cur, next as written
	Stored    [3]Sample // after format reduction
	Filtered  Sample
	Corrected Sample // after gamma
	Output    Sample
	Intensity bool
}

// Trace runs the copy pipeline for one pixel and returns every stage.
// prev and next are the vertical neighbours of cur in the EFB.
func Trace(ctx Context, prev, cur, next Sample) Stages {
	st := Stages{Input: [3]Sample{prev, cur, next}}
	reduce := ctx.FormatModel().Reduce
	for i, s := range st.Input {
		st.Stored[i] = reduce(s)
	}
	st.Filtered = ApplyCopyFilter(st.Stored[0], st.Stored[1], st.Stored[2], ctx.Filter)
	st.Corrected = st.Filtered.MapColor(func(v uint8) uint8 { return ApplyGamma(v, ctx.Gamma) })
	st.Output = st.Corrected
	if UsesIntensity(ctx) {
		st.Intensity = true
		st.Output = ToIntensity(st.Corrected)
	}
	return st
}

// Predict returns the expected test buffer value for cur.
func Predict(ctx Context, prev, cur, next Sample) Sample {
	return Trace(ctx, prev, cur, next).Output
}

// PredictUniform predicts a pixel of an EFB filled with a single color, so
// all three filter rows see the same sample.
func PredictUniform(ctx Context, s Sample) Sample {
	return Predict(ctx, s, s, s)
}
