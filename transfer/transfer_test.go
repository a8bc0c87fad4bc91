package transfer

import (
	"errors"
	"math"
	"testing"
)

func floatNear(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// exact lists every function with a faithful implementation.
func exact() []Function {
	var out []Function
	for _, f := range All() {
		if f.Implemented() {
			out = append(out, f)
		}
	}
	return out
}

func TestRoundTripUnitInterval(t *testing.T) {
	for _, f := range exact() {
		t.Run(f.String(), func(t *testing.T) {
			for i := 0; i <= 100; i++ {
				x := float64(i) / 100
				if got := f.Decode(f.Encode(x)); !floatNear(got, x, 1e-5) {
					t.Errorf("Decode(Encode(%v)) = %v", x, got)
				}
				if got := f.Encode(f.Decode(x)); !floatNear(got, x, 1e-5) {
					t.Errorf("Encode(Decode(%v)) = %v", x, got)
				}
			}
		})
	}
}

func TestRoundTripSigned(t *testing.T) {
	for _, f := range []Function{Srgb, Bt709} {
		t.Run(f.String(), func(t *testing.T) {
			for i := -100; i <= 100; i++ {
				x := float64(i) / 100
				if got := f.Decode(f.Encode(x)); !floatNear(got, x, 1e-5) {
					t.Errorf("Decode(Encode(%v)) = %v", x, got)
				}
				if got := f.Encode(f.Decode(x)); !floatNear(got, x, 1e-5) {
					t.Errorf("Encode(Decode(%v)) = %v", x, got)
				}
			}
		})
	}
}

// TestKneeContinuity measures the step at each linear/power knee. sRGB is
// continuous. BT.709 and SMPTE 240M publish their constants rounded to
// three or four digits, so their segments miss each other by a small,
// standard-inherent step; maxJump bounds that step just above its value.
func TestKneeContinuity(t *testing.T) {
	const eps = 1e-9
	tests := []struct {
		name    string
		fn      func(float64) float64
		knee    float64
		maxJump float64
	}{
		{"srgb encode", Srgb.Encode, 0.0031308, 1e-8},
		{"srgb decode", Srgb.Decode, 0.04045, 1e-8},
		{"bt709 encode", Bt709.Encode, 0.018, 2.5e-4},
		{"bt709 decode", Bt709.Decode, bt709Knee, 5.6e-5},
		{"smpte240 encode", Smpte240.Encode, 0.0228, 6e-5},
		{"smpte240 decode", Smpte240.Decode, 0.0913, 1.5e-5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			below, above := tt.fn(tt.knee-eps), tt.fn(tt.knee+eps)
			if jump := math.Abs(above - below); jump > tt.maxJump {
				t.Errorf("jump at %v = %.3g (%v -> %v), want <= %.3g", tt.knee, jump, below, above, tt.maxJump)
			}
		})
	}
}

func TestReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
		tol  float64
	}{
		{"srgb decode 128", Srgb.Decode(128.0 / 255), 0.2158605, 1e-6},
		{"srgb encode mid", Srgb.Encode(0.5), 0.7353570, 1e-6},
		{"srgb white", Srgb.Encode(1), 1, 1e-12},
		{"bt709 linear segment", Bt709.Encode(0.01), 0.045, 1e-12},
		{"bt709 white", Bt709.Encode(1), 1, 1e-12},
		{"bt470m mid", Bt470M.Decode(0.5), math.Pow(0.5, 2.2), 1e-12},
		{"smpte240 white", Smpte240.Encode(1), 1, 1e-12},
		{"pq 100 nits", Smpte2084.Encode(0.01), 0.5081, 1e-3},
		{"pq peak", Smpte2084.Decode(1), 1, 1e-9},
		{"pq black", Smpte2084.Encode(0), 0, 1e-5},
		{"bt2100pq ootf white", Bt2100Pq.Decode(Bt2100Pq.Encode(1)), 1, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !floatNear(tt.got, tt.want, tt.tol) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestOddSymmetry(t *testing.T) {
	for _, f := range []Function{Bt470M, Srgb, Smpte2084} {
		for _, x := range []float64{0.1, 0.25, 0.5, 0.9} {
			if got, want := f.Encode(-x), -f.Encode(x); !floatNear(got, want, 1e-12) {
				t.Errorf("%v.Encode(%v) = %v, want %v", f, -x, got, want)
			}
			if got, want := f.Decode(-x), -f.Decode(x); !floatNear(got, want, 1e-12) {
				t.Errorf("%v.Decode(%v) = %v, want %v", f, -x, got, want)
			}
		}
	}
}

func TestBt601SwapsBt709(t *testing.T) {
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		if Bt601.Encode(x) != Bt709.Decode(x) {
			t.Errorf("Bt601.Encode(%v) != Bt709.Decode(%v)", x, x)
		}
		if Bt601.Decode(x) != Bt709.Encode(x) {
			t.Errorf("Bt601.Decode(%v) != Bt709.Encode(%v)", x, x)
		}
	}
}

func TestBt2020DelegatesToBt709(t *testing.T) {
	for _, f := range []Function{Bt2020_10bit, Bt2020_12bit} {
		for _, x := range []float64{0, 0.01, 0.3, 1} {
			if f.Encode(x) != Bt709.Encode(x) || f.Decode(x) != Bt709.Decode(x) {
				t.Errorf("%v differs from Bt709 at %v", f, x)
			}
		}
	}
}

func TestHLGIsIdentityStub(t *testing.T) {
	if Bt2100Hlg.Implemented() {
		t.Fatal("Bt2100Hlg.Implemented() = true")
	}
	for _, x := range []float64{-0.5, 0, 0.25, 1, 4} {
		if got := Bt2100Hlg.Encode(x); got != x {
			t.Errorf("Encode(%v) = %v", x, got)
		}
		if got := Bt2100Hlg.Decode(x); got != x {
			t.Errorf("Decode(%v) = %v", x, got)
		}
	}
	if got := len(exact()); got != int(functionCount)-1 {
		t.Errorf("implemented count = %d, want %d", got, functionCount-1)
	}
}

func TestUnknownFunction(t *testing.T) {
	f := Function(200)
	if f.IsValid() || f.Implemented() {
		t.Error("Function(200) reported valid")
	}
	if f.Encode(0.3) != 0.3 || f.Decode(0.3) != 0.3 {
		t.Error("unknown function should be identity")
	}
	if got := f.String(); got != "Function(200)" {
		t.Errorf("String() = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Function
	}{
		{"Srgb", Srgb},
		{"SRGB", Srgb},
		{"bt2020-10bit", Bt2020_10bit},
		{"BT2020_12BIT", Bt2020_12bit},
		{" pq ", Smpte2084},
		{"hlg", Bt2100Hlg},
		{"LinearScene", LinearScene},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Parse("gamma9"); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("Parse(gamma9) error = %v", err)
	}

	for _, f := range All() {
		got, err := Parse(f.String())
		if err != nil || got != f {
			t.Errorf("Parse(%q) = %v, %v", f.String(), got, err)
		}
	}
}

func TestCICP(t *testing.T) {
	for _, f := range All() {
		code, ok := f.CICP()
		if f == LinearScene {
			if ok {
				t.Errorf("LinearScene has code %d", code)
			}
			continue
		}
		if !ok {
			t.Errorf("%v has no code", f)
			continue
		}
		back, ok := FromCICP(code)
		if !ok {
			t.Errorf("FromCICP(%d) failed", code)
			continue
		}
		if back != f && !(f == Bt2100Pq && back == Smpte2084) {
			t.Errorf("FromCICP(%d) = %v, want %v", code, back, f)
		}
	}
	if _, ok := FromCICP(2); ok {
		t.Error("FromCICP(2) should be unspecified")
	}
}

func BenchmarkSrgbDecode(b *testing.B) {
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += Srgb.Decode(float64(i&255) / 255)
	}
	_ = sink
}
