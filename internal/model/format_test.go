package model

import "testing"

func TestReplicate6EdgeValues(t *testing.T) {
	// 252 and 255 share the same 6-bit code, which reads back as 255. A
	// stated property of 252 -> 252 is unreachable for any 6-bit store; keep
	// 252 -> 255.
	want := map[uint8]uint8{0: 0, 3: 0, 4: 4, 128: 130, 252: 255, 255: 255}
	for in, out := range want {
		if got := Replicate6(in); got != out {
			t.Errorf("Replicate6(%d) = %d, want %d", in, got, out)
		}
	}
}

func TestReplicate5EdgeValues(t *testing.T) {
	want := map[uint8]uint8{0: 0, 7: 0, 8: 8, 0x80: 0x84, 248: 255, 255: 255}
	for in, out := range want {
		if got := Replicate5(in); got != out {
			t.Errorf("Replicate5(%d) = %d, want %d", in, got, out)
		}
	}
}

func TestReplicateIsIdempotent(t *testing.T) {
	for v := 0; v < 256; v++ {
		r6 := Replicate6(uint8(v))
		if Replicate6(r6) != r6 {
			t.Fatalf("Replicate6 not idempotent at %d", v)
		}
		r5 := Replicate5(uint8(v))
		if Replicate5(r5) != r5 {
			t.Fatalf("Replicate5 not idempotent at %d", v)
		}
	}
}

func TestStep(t *testing.T) {
	for v := 0; v < 256; v++ {
		want := uint8(0)
		if v >= 0x80 {
			want = 0xFF
		}
		if got := Step(uint8(v)); got != want {
			t.Fatalf("Step(%d) = %d, want %d", v, got, want)
		}
	}
}

func TestReduceFormats(t *testing.T) {
	in := RGBA(0x87, 0x45, 0xFE, 0x21)
	tests := []struct {
		format PixelFormat
		want   Sample
	}{
		{RGB8_Z24, RGBA(0x87, 0x45, 0xFE, 0xFF)},
		{RGBA6_Z24, RGBA(0x86, 0x45, 0xFF, 0x20)},
		{RGB565_Z16, RGBA(0x84, 0x45, 0xFF, 0xFF)},
		{Z24, RGBA(0x87, 0x45, 0xFE, 0xFF)},
		{Y8, RGBA(0x87, 0x45, 0xFE, 0xFF)},
		{U8, RGBA(0xFF, 0x00, 0xFF, 0xFF)},
		{V8, RGBA(0xFF, 0x00, 0xFF, 0xFF)},
		{YUV420, RGBA(0x87, 0x45, 0xFE, 0xFF)},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := Reduce(tt.format, in); got != tt.want {
				t.Errorf("Reduce(%v, %v) = %v, want %v", tt.format, in, got, tt.want)
			}
		})
	}
}

func TestFormatInfo(t *testing.T) {
	if !FormatInfo(Z24).Depth {
		t.Error("Z24 should be depth-as-color")
	}
	if FormatInfo(RGB8_Z24).Depth {
		t.Error("RGB8_Z24 is a color format")
	}
	if FormatInfo(U8).Confidence != ConfidenceEmpirical {
		t.Errorf("U8 confidence = %v", FormatInfo(U8).Confidence)
	}
	for _, f := range []PixelFormat{Z24, Y8, V8, YUV420} {
		if FormatInfo(f).Confidence != ConfidenceLow {
			t.Errorf("%v should be flagged low confidence", f)
		}
	}
	if name := PixelFormat(42).String(); name != "format(42)" {
		t.Errorf("unknown format name = %q", name)
	}
}

func TestFormatTableOverride(t *testing.T) {
	table := FormatTable{
		Y8: {Name: "Y8", Confidence: ConfidenceEmpirical, Reduce: func(s Sample) Sample {
			return s.MapColor(Step)
		}},
	}
	ctx := Context{Format: Y8, Filter: SplitFilterSum(64), Formats: table}
	got := PredictUniform(ctx, RGBA(0x90, 0x10, 0x80, 5))
	if got != RGBA(0xFF, 0x00, 0xFF, 5) {
		t.Errorf("override not applied: %v", got)
	}
	// Formats the table does not name keep the defaults.
	ctx.Format = RGBA6_Z24
	if got := PredictUniform(ctx, RGBA(252, 4, 0, 255)); got != RGBA(255, 4, 0, 255) {
		t.Errorf("default fallback = %v", got)
	}
}
