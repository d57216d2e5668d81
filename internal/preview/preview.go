// Package preview turns rendered pixel grids into PNG images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/perturb"
)

// light is the unit direction the escape-surface normals are lit from.
var light = complex(math.Sqrt2/2, math.Sqrt2/2)

// Image shades a row-major w × h grid. Pixels that never escaped are black.
func Image(pixels []mandel.PixelResult, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, shade(pixels[y*w+x]))
		}
	}
	return img
}

func shade(p mandel.PixelResult) color.RGBA {
	if !p.Escaped {
		return color.RGBA{A: 255}
	}
	mu := perturb.Smooth(p)
	v := 1.0
	if n := perturb.Normal(p); n != 0 {
		lambert := real(n)*real(light) + imag(n)*imag(light)
		v = 0.6 + 0.4*math.Max(lambert, 0)
	}
	return hsv(math.Mod(mu*0.02, 1), 1, v)
}

// Scale resizes img to width w, keeping the aspect ratio.
func Scale(img image.Image, w int) *image.RGBA {
	b := img.Bounds()
	if w <= 0 || w >= b.Dx() {
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	h := max(1, b.Dy()*w/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
