package session

import (
	"image"
	"sync"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/viewport"
)

// Dataset is the pixel grid of one render. It fills in as tiles arrive and
// glitched pixels are replaced as resolution passes complete.
type Dataset struct {
	Generation mandel.Generation
	Viewport   viewport.Viewport
	Width      int
	Height     int
	MaxIter    uint32

	mu     sync.RWMutex
	pixels []mandel.PixelResult
	failed []image.Rectangle
}

func newDataset(gen mandel.Generation, v viewport.Viewport, w, h int, maxIter uint32) *Dataset {
	return &Dataset{
		Generation: gen,
		Viewport:   v,
		Width:      w,
		Height:     h,
		MaxIter:    maxIter,
		pixels:     make([]mandel.PixelResult, w*h),
	}
}

func (d *Dataset) Bounds() image.Rectangle { return image.Rect(0, 0, d.Width, d.Height) }

func (d *Dataset) At(x, y int) mandel.PixelResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pixels[y*d.Width+x]
}

// Pixels returns a row-major copy of the grid.
func (d *Dataset) Pixels() []mandel.PixelResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]mandel.PixelResult, len(d.pixels))
	copy(out, d.pixels)
	return out
}

// Glitched counts pixels still flagged.
func (d *Dataset) Glitched() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, p := range d.pixels {
		if p.Glitched {
			n++
		}
	}
	return n
}

// Failed lists the tiles no unit could render.
func (d *Dataset) Failed() []image.Rectangle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]image.Rectangle(nil), d.failed...)
}

func (d *Dataset) fail(r image.Rectangle) {
	d.mu.Lock()
	d.failed = append(d.failed, r)
	d.mu.Unlock()
}

// put copies the tile into the grid and returns the bounding box of the
// glitched pixels it wrote. With onlyGlitched set, pixels that are already
// clean are kept.
func (d *Dataset) put(tr mandel.TileResult, onlyGlitched bool) image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	var box image.Rectangle
	r := tr.Tile.Intersect(d.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := y*d.Width + x
			if onlyGlitched && !d.pixels[i].Glitched {
				continue
			}
			p := tr.At(x, y)
			d.pixels[i] = p
			if p.Glitched {
				box = box.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return box
}
