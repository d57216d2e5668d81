package viewport

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/marben/deepzoom/apfloat"
)

func view(t *testing.T, cx, cy, w, h string, prec uint) Viewport {
	t.Helper()
	parse := func(s string) apfloat.Float {
		f, err := apfloat.Parse(s, prec)
		if err != nil {
			t.Fatal(err)
		}
		return f
	}
	return Viewport{CenterX: parse(cx), CenterY: parse(cy), Width: parse(w), Height: parse(h)}
}

func TestValidate(t *testing.T) {
	good := Default()
	if err := good.Validate(); err != nil {
		t.Fatalf("default viewport: %v", err)
	}
	bad := []apfloat.Float{
		apfloat.New(0, 64),
		apfloat.New(-1, 64),
		apfloat.New(math.NaN(), 64),
		apfloat.New(math.Inf(1), 64),
	}
	for _, w := range bad {
		v := good
		v.Width = w
		if err := v.Validate(); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("width %s: err = %v", w, err)
		}
		v = good
		v.Height = w
		if err := v.Validate(); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("height %s: err = %v", w, err)
		}
	}
}

func TestPrecisionBitsMonotonic(t *testing.T) {
	widths := []string{"4", "4e-5", "4e-20", "1e-100", "1e-500", "1e-2000"}
	prev := uint(0)
	for _, w := range widths {
		v := view(t, "-0.5", "0", w, w, 8000)
		bits := PrecisionBits(v, 1920, 1080, MaxIter(v, 200, 2.5))
		if bits < MinPrecision {
			t.Fatalf("width %s: %d bits below floor", w, bits)
		}
		if bits&(bits-1) != 0 {
			t.Fatalf("width %s: %d not a power of two", w, bits)
		}
		if bits < prev {
			t.Fatalf("width %s: %d bits < previous %d", w, bits, prev)
		}
		prev = bits
	}
	if prev < 4096 {
		t.Fatalf("1e-2000 needs more than %d bits", prev)
	}
}

func TestPrecisionBitsShallow(t *testing.T) {
	bits := PrecisionBits(Default(), 3840, 2160, 1000)
	if bits < 64 || bits > 256 {
		t.Fatalf("bits = %d", bits)
	}
}

func TestMaxIter(t *testing.T) {
	if got := MaxIter(Default(), 200, 2.5); got != MinIterations {
		t.Fatalf("shallow = %d", got)
	}
	deep := view(t, "0", "0", "1e-300", "1e-300", 2048)
	if got := MaxIter(deep, 200, 2.5); got != MaxIterations {
		t.Fatalf("deep = %d", got)
	}
	mid := view(t, "0", "0", "4e-10", "4e-10", 128)
	want := uint32(200 * math.Pow(10, 2.5))
	if got := MaxIter(mid, 200, 2.5); got < want-1 || got > want+1 {
		t.Fatalf("mid = %d, want ~%d", got, want)
	}
}

func TestPixelToFractal(t *testing.T) {
	v := Default()
	cases := []struct {
		px, py float64
		x, y   float64
	}{
		{50, 50, -0.5, 0},
		{0, 0, -2.5, -2},
		{100, 100, 1.5, 2},
		{25, 75, -1.5, 1},
	}
	for _, tc := range cases {
		x, y := v.PixelToFractal(tc.px, tc.py, 100, 100)
		if x.Float64() != tc.x || y.Float64() != tc.y {
			t.Errorf("(%v,%v) -> (%v,%v), want (%v,%v)", tc.px, tc.py, x.Float64(), y.Float64(), tc.x, tc.y)
		}
	}
	dx, dy := v.PixelStep(100, 50)
	if dx.Float64() != 0.04 || dy.Float64() != 0.08 {
		t.Fatalf("step = (%v,%v)", dx.Float64(), dy.Float64())
	}
}

func TestPixelToFractalDeep(t *testing.T) {
	v := view(t, "-1.7490930456868902283497155284731", "0", "1e-25", "1e-25", 256)
	x0, _ := v.PixelToFractal(0, 0, 100, 100)
	x1, _ := v.PixelToFractal(1, 0, 100, 100)
	step := x1.Sub(x0)
	if got := step.Log2Approx(); math.Abs(got-math.Log2(1e-27)) > 1e-6 {
		t.Fatalf("pixel step log2 = %v", got)
	}
}

func TestDcMaxAndTileSize(t *testing.T) {
	v := Default()
	if got := v.DcMax().Float64(); math.Abs(got-math.Sqrt(8)) > 1e-12 {
		t.Fatalf("dcmax = %v", got)
	}
	deep := view(t, "0", "0", "1e-1000", "1e-1000", 4096)
	want := math.Log2(math.Sqrt2/2) - 1000*math.Log2(10)
	if got := deep.DcMax().Log2(); math.Abs(got-want) > 1e-6 {
		t.Fatalf("deep dcmax log2 = %v, want %v", got, want)
	}
	if TileSize(v) != 128 {
		t.Fatal("shallow tile size")
	}
	if TileSize(view(t, "0", "0", "4e-11", "4e-11", 128)) != 64 {
		t.Fatal("deep tile size")
	}
}

func TestResolve(t *testing.T) {
	v := view(t, "-0.5", "0", "1e-100", "1e-100", 80)
	r, maxIter := Resolve(v, 800, 600, 200, 2.5, 0)
	if maxIter != MaxIter(v, 200, 2.5) {
		t.Fatalf("maxIter = %d", maxIter)
	}
	if r.Prec() < PrecisionBits(v, 800, 600, maxIter) {
		t.Fatalf("prec = %d", r.Prec())
	}
	_, fixed := Resolve(v, 800, 600, 200, 2.5, 5000)
	if fixed != 5000 {
		t.Fatalf("override ignored: %d", fixed)
	}
}

const locationsYAML = `
- name: deep
  center_x: "-1.74909304568689022834971552847312345678901234567890"
  center_y: "0.000000000000000000000000000000000000000000000000001"
  width: "1e-40"
- name: flat
  center_x: "-0.5"
  center_y: "0"
  width: "4"
  height: "3"
`

func TestLocations(t *testing.T) {
	locs, err := LoadLocations(strings.NewReader(locationsYAML))
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 2 {
		t.Fatalf("got %d locations", len(locs))
	}
	v, err := locs[0].Viewport(200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if v.CenterY.Sign() != 1 || v.CenterY.Float64() == 0 {
		t.Fatalf("center_y lost: %s", v.CenterY)
	}
	if got := v.Height.Log2Approx() - v.Width.Log2Approx(); math.Abs(got+1) > 1e-9 {
		t.Fatalf("derived height ratio log2 = %v", got)
	}
	flat, err := locs[1].Viewport(200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if flat.Height.Float64() != 3 {
		t.Fatalf("height = %v", flat.Height.Float64())
	}

	var buf bytes.Buffer
	if err := SaveLocations(&buf, locs); err != nil {
		t.Fatal(err)
	}
	again, err := LoadLocations(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if again[0] != locs[0] {
		t.Fatalf("round trip: %+v != %+v", again[0], locs[0])
	}

	bad := Location{Name: "bad", CenterX: "0", CenterY: "0", Width: "-1"}
	if _, err := bad.Viewport(10, 10); !errors.Is(err, ErrInvalidViewport) {
		t.Fatalf("err = %v", err)
	}
}
