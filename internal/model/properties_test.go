package model

import (
	"testing"

	"pgregory.net/rapid"
)

func genSample(t *rapid.T, label string) Sample {
	return Sample{
		R: rapid.Uint8().Draw(t, label+".r"),
		G: rapid.Uint8().Draw(t, label+".g"),
		B: rapid.Uint8().Draw(t, label+".b"),
		A: rapid.Uint8().Draw(t, label+".a"),
	}
}

func genContext(t *rapid.T) Context {
	return Context{
		Format: rapid.SampledFrom(PixelFormats).Draw(t, "format"),
		Filter: CopyFilter{
			Prev: rapid.Uint8Range(0, MaxTapWeight).Draw(t, "prev"),
			Cur:  rapid.Uint8Range(0, MaxTapWeight).Draw(t, "cur"),
			Next: rapid.Uint8Range(0, MaxTapWeight).Draw(t, "next"),
		},
		Gamma:           rapid.SampledFrom(Gammas).Draw(t, "gamma"),
		YUV:             rapid.Bool().Draw(t, "yuv"),
		IntensityFormat: rapid.Bool().Draw(t, "intensity"),
		AutoConversion:  rapid.Bool().Draw(t, "autoconv"),
	}
}

func TestPropertyFilterNoWrapAtOrBelowNominal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sum := rapid.IntRange(0, NominalFilterSum).Draw(t, "sum")
		v := rapid.Uint8().Draw(t, "value")
		f := SplitFilterSum(sum)

		got := FilterChannel(v, v, v, f)
		want := int(v) * sum / 64
		if int(got) != want {
			t.Fatalf("sum %d value %d: got %d, want %d", sum, v, got, want)
		}
		if got > v {
			t.Fatalf("sum %d value %d: output %d brighter than input", sum, v, got)
		}
	})
}

func TestPropertyFilterArbitraryRows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := genContext(t)
		p := rapid.Uint8().Draw(t, "p")
		c := rapid.Uint8().Draw(t, "c")
		n := rapid.Uint8().Draw(t, "n")

		raw := (int(p)*int(ctx.Filter.Prev) + int(c)*int(ctx.Filter.Cur) + int(n)*int(ctx.Filter.Next)) / 64
		want := raw % 512
		if want > 255 {
			want = 255
		}
		if got := FilterChannel(p, c, n, ctx.Filter); int(got) != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	})
}

func TestPropertyZeroFilterBlanksColor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := genContext(t)
		ctx.Filter = CopyFilter{}
		ctx.IntensityFormat = false
		in := genSample(t, "in")

		got := PredictUniform(ctx, in)
		if got.R != 0 || got.G != 0 || got.B != 0 {
			t.Fatalf("color survived a zero filter: %v", got)
		}
		if got.A != ctx.FormatModel().Reduce(in).A {
			t.Fatalf("alpha %d, want stored alpha %d", got.A, ctx.FormatModel().Reduce(in).A)
		}
	})
}

func TestPropertyGammaAlias(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := genContext(t)
		prev, cur, next := genSample(t, "prev"), genSample(t, "cur"), genSample(t, "next")

		ctx.Gamma = Gamma2_2
		a := Predict(ctx, prev, cur, next)
		ctx.Gamma = Invalid2_2
		b := Predict(ctx, prev, cur, next)
		if a != b {
			t.Fatalf("gamma 2.2 %v != invalid gamma %v", a, b)
		}
	})
}

func TestPropertyPredictIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := genContext(t)
		prev, cur, next := genSample(t, "prev"), genSample(t, "cur"), genSample(t, "next")

		first := Predict(ctx, prev, cur, next)
		// Interleave an unrelated prediction to catch carried state.
		_ = Predict(genContext(t), next, prev, cur)
		if again := Predict(ctx, prev, cur, next); again != first {
			t.Fatalf("prediction changed between calls: %v then %v", first, again)
		}
	})
}

func TestPropertyAlphaNeverFiltered(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := genContext(t)
		prev, cur, next := genSample(t, "prev"), genSample(t, "cur"), genSample(t, "next")

		got := Predict(ctx, prev, cur, next)
		if want := ctx.FormatModel().Reduce(cur).A; got.A != want {
			t.Fatalf("alpha %d, want %d", got.A, want)
		}
	})
}
