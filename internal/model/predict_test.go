package model

import "testing"

func TestPredictZeroFilterSum(t *testing.T) {
	for _, format := range []PixelFormat{RGB8_Z24, RGBA6_Z24, RGB565_Z16} {
		for _, g := range Gammas {
			ctx := Context{Format: format, Gamma: g}
			in := RGBA(200, 100, 50, 0x40)
			got := PredictUniform(ctx, in)
			wantAlpha := Reduce(format, in).A
			if got != RGBA(0, 0, 0, wantAlpha) {
				t.Errorf("format %v gamma %v: got %v, want (0, 0, 0, %d)", format, g, got, wantAlpha)
			}
		}
	}
}

func TestPredictOrderFilterThenGamma(t *testing.T) {
	ctx := Context{Format: RGB8_Z24, Filter: SplitFilterSum(32), Gamma: Gamma2_2}
	got := PredictUniform(ctx, RGBA(255, 0, 0, 0))
	// 255*32/64 = 127, then gamma; gamma first would give 255 -> 127.
	want := ApplyGamma(127, Gamma2_2)
	if got.R != want {
		t.Errorf("R = %d, want %d", got.R, want)
	}
	if got.R == 127 {
		t.Error("gamma was not applied after the filter")
	}
}

func TestPredictIntensity(t *testing.T) {
	ctx := Context{
		Format:          RGB8_Z24,
		Filter:          SplitFilterSum(64),
		IntensityFormat: true,
		AutoConversion:  true,
	}
	if got := PredictUniform(ctx, RGBA(0, 0, 0, 255)); got != RGBA(16, 128, 128, 255) {
		t.Errorf("black = %v", got)
	}
	if got := PredictUniform(ctx, RGBA(255, 255, 255, 255)); got != RGBA(235, 128, 128, 255) {
		t.Errorf("white = %v", got)
	}

	ctx.AutoConversion = false
	ctx.YUV = true
	if got := PredictUniform(ctx, RGBA(12, 34, 56, 255)); got != RGBA(12, 34, 56, 255) {
		t.Errorf("non-converting copy = %v", got)
	}
}

func TestTraceStages(t *testing.T) {
	ctx := Context{Format: RGBA6_Z24, Filter: SplitFilterSum(64), Gamma: Gamma1_7, IntensityFormat: true, AutoConversion: true}
	st := Trace(ctx, RGBA(1, 2, 3, 4), RGBA(253, 128, 64, 200), RGBA(9, 9, 9, 9))

	if st.Stored[1] != RGBA(255, 130, 65, 203) {
		t.Errorf("stored = %v", st.Stored[1])
	}
	// Cur=63 and Prev=1: the row above leaks in by 1/64.
	wantR := FilterChannel(0, 255, 8, ctx.Filter)
	if st.Filtered.R != wantR {
		t.Errorf("filtered R = %d, want %d", st.Filtered.R, wantR)
	}
	if st.Filtered.A != 203 {
		t.Errorf("filtered alpha = %d, want 203", st.Filtered.A)
	}
	if st.Corrected.R != ApplyGamma(st.Filtered.R, Gamma1_7) {
		t.Errorf("corrected R = %d", st.Corrected.R)
	}
	if !st.Intensity || st.Output != ToIntensity(st.Corrected) {
		t.Errorf("output = %v, intensity = %v", st.Output, st.Intensity)
	}
	if Predict(ctx, st.Input[0], st.Input[1], st.Input[2]) != st.Output {
		t.Error("Predict disagrees with Trace")
	}
}
