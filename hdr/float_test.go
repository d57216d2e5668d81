package hdr

import (
	"math"
	"math/big"
	"testing"
)

var samples = []float64{
	1, -1, 0.5, 3.141592653589793, -2.718281828459045, 1e-10, 1e10,
	123456.789, -0.000123456789, 1e-300, 1e300, 0.1, 1.0 / 3.0,
}

func closeRel(got, want, rel float64) bool {
	if want == 0 {
		return math.Abs(got) <= rel
	}
	return math.Abs(got-want) <= rel*math.Abs(want)
}

func checkNormalized(t *testing.T, f Float) {
	t.Helper()
	if f.Head == 0 {
		if f.Tail != 0 || f.Exp != 0 {
			t.Fatalf("zero not canonical: %+v", f)
		}
		return
	}
	h := math.Abs(float64(f.Head))
	if h < 0.5 || h >= 1 {
		t.Fatalf("head %v not in [0.5, 1): %+v", h, f)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, d := range samples {
		f := FromFloat64(d)
		checkNormalized(t, f)
		if got := f.Float64(); !closeRel(got, d, 1e-14) {
			t.Errorf("FromFloat64(%v).Float64() = %v", d, got)
		}
	}
}

func TestZero(t *testing.T) {
	if !FromFloat64(0).IsZero() {
		t.Fatal("FromFloat64(0) not zero")
	}
	x := FromFloat64(42)
	if got := Zero.Add(x); got != x {
		t.Errorf("0 + x = %+v, want %+v", got, x)
	}
	if got := x.Sub(x); !got.IsZero() {
		t.Errorf("x - x = %+v, want zero", got)
	}
	checkNormalized(t, x.Sub(x))
	if got := x.Mul(Zero); !got.IsZero() {
		t.Errorf("x * 0 = %+v", got)
	}
}

func TestMorePrecisionThanFloat32(t *testing.T) {
	d := 1.0 + 1e-10
	naive := math.Abs(float64(float32(d)) - d)
	ext := math.Abs(FromFloat64(d).Float64() - d)
	if ext >= naive {
		t.Fatalf("extended error %g not below float32 error %g", ext, naive)
	}
	if ext > 1e-14 {
		t.Fatalf("extended error %g too large", ext)
	}
}

func TestArithmeticMatchesFloat64(t *testing.T) {
	pairs := [][2]float64{
		{1.5, 2.25}, {3.141592653589793, 2.718281828459045}, {-7.25, 0.001},
		{1e-5, 3e-5}, {123.456, -654.321}, {0.1, 0.2}, {1e20, 1e-20},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		fa, fb := FromFloat64(a), FromFloat64(b)
		scale := math.Abs(a) + math.Abs(b)

		if got := fa.Add(fb).Float64(); math.Abs(got-(a+b)) > 1e-13*scale {
			t.Errorf("%v + %v = %v, want %v", a, b, got, a+b)
		}
		if got := fa.Sub(fb).Float64(); math.Abs(got-(a-b)) > 1e-13*scale {
			t.Errorf("%v - %v = %v, want %v", a, b, got, a-b)
		}
		if got := fa.Mul(fb).Float64(); !closeRel(got, a*b, 1e-13) {
			t.Errorf("%v * %v = %v, want %v", a, b, got, a*b)
		}
		if got := fa.Square().Float64(); !closeRel(got, a*a, 1e-13) {
			t.Errorf("%v² = %v, want %v", a, got, a*a)
		}
		if got := fa.MulFloat64(b).Float64(); !closeRel(got, a*b, 1e-13) {
			t.Errorf("%v * %v (f64) = %v, want %v", a, b, got, a*b)
		}
		checkNormalized(t, fa.Add(fb))
		checkNormalized(t, fa.Mul(fb))
	}
}

func TestAddDropsBelowMantissa(t *testing.T) {
	one := FromFloat64(1)
	tiny := FromFloat64(math.Ldexp(1, -60))
	if got := one.Add(tiny); got != one {
		t.Fatalf("1 + 2^-60 = %+v, want %+v", got, one)
	}
	small := FromFloat64(math.Ldexp(1, -40))
	if got := one.Add(small).Float64(); got != 1+math.Ldexp(1, -40) {
		t.Fatalf("1 + 2^-40 = %v", got)
	}
}

func TestFromBigBeyondFloat64(t *testing.T) {
	x, _, err := big.ParseFloat("1e-3000", 10, 256, big.ToNearestEven)
	if err != nil {
		t.Fatal(err)
	}
	f := FromBig(x)
	want := -3000 * math.Log2(10)
	if got := f.Log2(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("log2 = %v, want %v", got, want)
	}
	if f.Float64() != 0 {
		t.Fatalf("expected float64 underflow, got %v", f.Float64())
	}
	sq := f.Square()
	if got := sq.Log2(); math.Abs(got-2*want) > 1e-9 {
		t.Fatalf("log2(x²) = %v, want %v", got, 2*want)
	}
	if r := sq.Sqrt(); math.Abs(r.Log2()-want) > 1e-9 {
		t.Fatalf("sqrt(x²) log2 = %v", r.Log2())
	}
}

func TestCmpAndSqrt(t *testing.T) {
	a, b := FromFloat64(2), FromFloat64(3)
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Fatal("Cmp ordering broken")
	}
	if !a.Neg().Less(a) {
		t.Fatal("-2 < 2 expected")
	}
	if got := FromFloat64(16).Sqrt().Float64(); got != 4 {
		t.Fatalf("sqrt(16) = %v", got)
	}
	if got := FromFloat64(2).Sqrt().Float64(); !closeRel(got, math.Sqrt2, 1e-14) {
		t.Fatalf("sqrt(2) = %v", got)
	}
}

func TestComplex(t *testing.T) {
	c := complex(0.3, -1.2)
	d := complex(-2.5, 0.75)
	hc, hd := FromComplex128(c), FromComplex128(d)

	cases := []struct {
		name string
		got  complex128
		want complex128
	}{
		{"add", hc.Add(hd).Complex128(), c + d},
		{"sub", hc.Sub(hd).Complex128(), c - d},
		{"mul", hc.Mul(hd).Complex128(), c * d},
		{"square", hc.Square().Complex128(), c * c},
		{"mul128", hc.MulComplex128(d).Complex128(), c * d},
		{"ldexp", hc.Ldexp(1).Complex128(), 2 * c},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !closeRel(real(tc.got), real(tc.want), 1e-13) || !closeRel(imag(tc.got), imag(tc.want), 1e-13) {
				t.Fatalf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
	if got, want := hc.NormSq().Float64(), real(c)*real(c)+imag(c)*imag(c); !closeRel(got, want, 1e-13) {
		t.Fatalf("normsq = %v, want %v", got, want)
	}
}

func TestExp(t *testing.T) {
	for _, a := range samples {
		x := ExpFromFloat64(a)
		if got := x.Float64(); got != a {
			t.Errorf("ExpFromFloat64(%v) round trip = %v", a, got)
		}
		if got := x.Float().Float64(); !closeRel(got, a, 1e-14) {
			t.Errorf("Exp(%v).Float() = %v", a, got)
		}
	}
	x, y := ExpFromFloat64(3), ExpFromFloat64(4)
	if got := x.Mul(x).Add(y.Mul(y)).Sqrt().Float64(); got != 5 {
		t.Fatalf("hypot(3,4) = %v", got)
	}
	if x.Cmp(y) != -1 || y.Sub(x).Float64() != 1 {
		t.Fatal("Exp ordering broken")
	}

	tiny, _, _ := big.ParseFloat("1e-5000", 10, 128, big.ToNearestEven)
	e := ExpFromBig(tiny)
	if got, want := e.Log2(), -5000*math.Log2(10); math.Abs(got-want) > 1e-9 {
		t.Fatalf("log2 = %v, want %v", got, want)
	}
	if got := e.Float().Log2(); math.Abs(got-e.Log2()) > 1e-9 {
		t.Fatalf("Float() log2 = %v, want %v", got, e.Log2())
	}
}

func TestQuoMinMax(t *testing.T) {
	if got := FromFloat64(1).Quo(FromFloat64(3)).Float64(); !closeRel(got, 1.0/3, 1e-15) {
		t.Fatalf("1/3 = %v", got)
	}
	tiny := FromFloat64(3).Ldexp(-5000)
	big := FromFloat64(1.5).Ldexp(4000)
	q := tiny.Quo(big)
	if got := q.Log2(); math.Abs(got-(1-9000)) > 1e-9 {
		t.Fatalf("log2(tiny/big) = %v", got)
	}
	if !Zero.Quo(big).IsZero() {
		t.Fatal("0/x != 0")
	}
	a, b := FromFloat64(-1), FromFloat64(2)
	if Max(a, b) != b || Min(a, b) != a {
		t.Fatal("min/max")
	}
}
