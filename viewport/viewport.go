// Package viewport maps pixels to fractal-space coordinates and sizes the
// numeric precision and iteration budget for a view.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/marben/deepzoom/apfloat"
	"github.com/marben/deepzoom/hdr"
)

// safetyBits are added on top of the bits needed to separate adjacent pixels.
const safetyBits = 64

// MinPrecision is the smallest precision ever returned by PrecisionBits.
const MinPrecision = 64

const (
	MinIterations = 1000
	MaxIterations = 10_000_000
)

var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport is the region of the complex plane shown on the canvas.
// Y grows downwards with the pixel row.
type Viewport struct {
	CenterX, CenterY apfloat.Float
	Width, Height    apfloat.Float
}

// Default is the whole set at native precision.
func Default() Viewport {
	return Viewport{
		CenterX: apfloat.New(-0.5, MinPrecision),
		CenterY: apfloat.New(0, MinPrecision),
		Width:   apfloat.New(4, MinPrecision),
		Height:  apfloat.New(4, MinPrecision),
	}
}

// Validate rejects non-finite or non-positive extents and non-finite centers.
func (v Viewport) Validate() error {
	if !v.Width.IsFinite() || v.Width.Sign() <= 0 {
		return fmt.Errorf("%w: width %s", ErrInvalidViewport, v.Width)
	}
	if !v.Height.IsFinite() || v.Height.Sign() <= 0 {
		return fmt.Errorf("%w: height %s", ErrInvalidViewport, v.Height)
	}
	if !v.CenterX.IsFinite() || !v.CenterY.IsFinite() {
		return fmt.Errorf("%w: center (%s, %s)", ErrInvalidViewport, v.CenterX, v.CenterY)
	}
	return nil
}

// Prec returns the widest precision among the viewport fields.
func (v Viewport) Prec() uint {
	return max(v.CenterX.Prec(), v.CenterY.Prec(), v.Width.Prec(), v.Height.Prec())
}

// WithPrec converts every field to prec.
func (v Viewport) WithPrec(prec uint) Viewport {
	return Viewport{
		CenterX: v.CenterX.WithPrec(prec),
		CenterY: v.CenterY.WithPrec(prec),
		Width:   v.Width.WithPrec(prec),
		Height:  v.Height.WithPrec(prec),
	}
}

// PixelToFractal maps a (possibly fractional) pixel position to the plane:
// center + (px/canvasW - 0.5) * width, likewise for y.
func (v Viewport) PixelToFractal(px, py float64, canvasW, canvasH int) (x, y apfloat.Float) {
	nx := px/float64(canvasW) - 0.5
	ny := py/float64(canvasH) - 0.5
	x = v.CenterX.Add(v.Width.MulFloat64(nx))
	y = v.CenterY.Add(v.Height.MulFloat64(ny))
	return x, y
}

// PixelStep returns the fractal-space distance between adjacent pixels.
func (v Viewport) PixelStep(canvasW, canvasH int) (dx, dy apfloat.Float) {
	return v.Width.MulFloat64(1 / float64(canvasW)), v.Height.MulFloat64(1 / float64(canvasH))
}

// ZoomLog10 returns log10(4 / width), computed through log2 so it stays
// finite for widths far below float64 range.
func (v Viewport) ZoomLog10() float64 {
	return (2 - v.Width.Log2Approx()) * math.Log10(2)
}

// DcMax is the largest pixel offset from the center: half the diagonal.
func (v Viewport) DcMax() hdr.Float {
	hw := v.Width.Exp().Mul(hdr.ExpFromFloat64(0.5))
	hh := v.Height.Exp().Mul(hdr.ExpFromFloat64(0.5))
	return hw.Mul(hw).Add(hh.Mul(hh)).Sqrt().Float()
}

// PrecisionBits returns the mantissa bits needed to separate adjacent
// pixels at this view and to survive maxIter iterations of error growth.
// The result is a power of two, at least MinPrecision.
func PrecisionBits(v Viewport, canvasW, canvasH int, maxIter uint32) uint {
	log2Width := v.Width.Log2Approx()
	log2Height := v.Height.Log2Approx()

	log2MinDelta := math.Min(
		log2Width-math.Log2(float64(canvasW)),
		log2Height-math.Log2(float64(canvasH)),
	)

	log2MX := math.Max(v.CenterX.Abs().Log2Approx(), log2Width-1) + 1
	log2MY := math.Max(v.CenterY.Abs().Log2Approx(), log2Height-1) + 1
	log2M := math.Max(log2MX, log2MY)

	ratioBits := uint64(math.Max(math.Ceil(log2M-log2MinDelta), 0))
	var iterBits uint64
	if maxIter > 1 {
		iterBits = uint64(math.Ceil(math.Log2(float64(maxIter))))
	}
	return uint(max(nextPow2(ratioBits+iterBits+safetyBits), MinPrecision))
}

// MaxIter returns multiplier * zoomExp^power clamped to
// [MinIterations, MaxIterations], with zoomExp = log10(4/width).
func MaxIter(v Viewport, multiplier, power float64) uint32 {
	z := v.ZoomLog10()
	if z <= 0 || math.IsNaN(z) {
		return MinIterations
	}
	n := multiplier * math.Pow(z, power)
	switch {
	case math.IsNaN(n) || n < MinIterations:
		return MinIterations
	case n > MaxIterations:
		return MaxIterations
	}
	return uint32(n)
}

// TileSize returns the CPU tile edge for the view: smaller tiles at deep
// zoom where each pixel costs more.
func TileSize(v Viewport) int {
	if v.ZoomLog10() >= 10 {
		return 64
	}
	return 128
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Resolve picks the iteration budget (override when non-zero, otherwise
// MaxIter) and converts v to the precision that budget requires. The
// precision never drops below what v already carries.
func Resolve(v Viewport, canvasW, canvasH int, multiplier, power float64, override uint32) (Viewport, uint32) {
	maxIter := override
	if maxIter == 0 {
		maxIter = MaxIter(v, multiplier, power)
	}
	bits := PrecisionBits(v, canvasW, canvasH, maxIter)
	return v.WithPrec(max(bits, v.Prec())), maxIter
}
