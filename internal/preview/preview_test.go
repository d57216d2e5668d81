package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	mandel "github.com/marben/deepzoom"
)

func grid() []mandel.PixelResult {
	return []mandel.PixelResult{
		{Iterations: 100, MaxIterations: 100},
		{Iterations: 5, MaxIterations: 100, Escaped: true, FinalZNormSq: 1e5, FinalZ: 300},
		{Iterations: 9, MaxIterations: 100, Escaped: true, FinalZNormSq: 7e4, FinalZ: 260},
		{Iterations: 100, MaxIterations: 100},
	}
}

func TestImage(t *testing.T) {
	img := Image(grid(), 2, 2)
	if img.RGBAAt(0, 0) != (color.RGBA{A: 255}) || img.RGBAAt(1, 1) != (color.RGBA{A: 255}) {
		t.Fatal("interior pixels not black")
	}
	if img.RGBAAt(1, 0) == img.RGBAAt(0, 1) {
		t.Fatal("different escape counts share a color")
	}
	for _, c := range []color.RGBA{img.RGBAAt(1, 0), img.RGBAAt(0, 1)} {
		if c.A != 255 || c == (color.RGBA{A: 255}) {
			t.Fatalf("escaped pixel %v", c)
		}
	}
}

func TestHSV(t *testing.T) {
	cases := []struct {
		h    float64
		want color.RGBA
	}{
		{0, color.RGBA{255, 0, 0, 255}},
		{0.5, color.RGBA{0, 255, 255, 255}},
		{0.75, color.RGBA{127, 0, 255, 255}},
		{1, color.RGBA{255, 0, 0, 255}},
	}
	for _, tc := range cases {
		if got := hsv(tc.h, 1, 1); got != tc.want {
			t.Errorf("hsv(%v) = %v, want %v", tc.h, got, tc.want)
		}
	}
}

func TestScaleAndWrite(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	if got := Scale(src, 10).Bounds(); got != image.Rect(0, 0, 10, 5) {
		t.Fatalf("scaled bounds %v", got)
	}
	if got := Scale(src, 0).Bounds(); got != src.Bounds() {
		t.Fatalf("unscaled bounds %v", got)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, Scale(src, 10)); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 10 || cfg.Height != 5 {
		t.Fatalf("png %dx%d", cfg.Width, cfg.Height)
	}
}
