package glitch

import (
	"context"
	"fmt"
	"image"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
)

// ReferenceFunc computes the orbit for a reference placed at the pixel
// position (px, py); positions are pixel centers and may be fractional.
type ReferenceFunc func(ctx context.Context, px, py float64) (*orbit.Orbit, error)

// CellOrbit is a secondary reference owned by one leaf.
type CellOrbit struct {
	ID     mandel.OrbitID
	Rect   image.Rectangle
	PX, PY float64
	Orbit  *orbit.Orbit
}

// Target is a region to re-render with a cell's orbit.
type Target struct {
	Cell *CellOrbit
	Rect image.Rectangle
}

// PassResult summarizes one resolution pass.
type PassResult struct {
	Subdivided int
	Orbits     []*CellOrbit
	Targets    []Target
}

// Resolver owns the quadtree and the cell orbits of one render. It is not
// safe for concurrent use; it is mutated only between passes.
type Resolver struct {
	tree     *Tree
	glitched []image.Rectangle
	cells    map[image.Rectangle]*CellOrbit
	nextID   mandel.OrbitID
	passes   int
}

// NewResolver starts a resolver for the canvas.
func NewResolver(canvas image.Rectangle, maxDepth, minCellSize int) *Resolver {
	return &Resolver{
		tree:   NewTree(canvas, maxDepth, minCellSize),
		cells:  make(map[image.Rectangle]*CellOrbit),
		nextID: mandel.FirstCellOrbit,
	}
}

// Tree exposes the quadtree for inspection.
func (r *Resolver) Tree() *Tree { return r.tree }

// Record notes a region (a tile or block) that held at least one glitched
// pixel in the current pass.
func (r *Resolver) Record(region image.Rectangle) {
	if region.Empty() {
		return
	}
	r.glitched = append(r.glitched, region)
}

// Pending is the number of regions recorded since the last pass.
func (r *Resolver) Pending() int { return len(r.glitched) }

// Passes is the number of passes run so far.
func (r *Resolver) Passes() int { return r.passes }

// MaxPasses bounds the passes a render needs: every pass that computes an
// orbit splits or fills a leaf, and leaves stop splitting at MaxDepth.
func (r *Resolver) MaxPasses() int { return r.tree.MaxDepth + 1 }

// Pass refines the tree by one level over the recorded regions, computes
// orbits for overlapping leaves that have none, and returns the regions to
// re-render. Recorded regions are consumed. With nothing recorded it does
// no work.
func (r *Resolver) Pass(ctx context.Context, ref ReferenceFunc) (PassResult, error) {
	var res PassResult
	if len(r.glitched) == 0 {
		return res, nil
	}
	regions := r.glitched
	r.glitched = nil
	r.passes++

	res.Subdivided = r.tree.Subdivide(regions)

	for _, leaf := range r.tree.Leaves() {
		if !overlapsAny(leaf.Rect, regions) {
			continue
		}
		if _, ok := r.cells[leaf.Rect]; ok {
			continue
		}
		px := float64(leaf.Rect.Min.X) + float64(leaf.Rect.Dx())/2
		py := float64(leaf.Rect.Min.Y) + float64(leaf.Rect.Dy())/2
		o, err := ref(ctx, px, py)
		if err != nil {
			return res, fmt.Errorf("cell %s orbit: %w", leaf.Rect, err)
		}
		co := &CellOrbit{ID: r.nextID, Rect: leaf.Rect, PX: px, PY: py, Orbit: o}
		r.nextID++
		r.cells[leaf.Rect] = co
		res.Orbits = append(res.Orbits, co)

		for _, g := range regions {
			if is := leaf.Rect.Intersect(g); !is.Empty() {
				res.Targets = append(res.Targets, Target{Cell: co, Rect: is})
			}
		}
	}

	logging.Logger().Debug("glitch pass",
		"pass", r.passes,
		"regions", len(regions),
		"subdivided", res.Subdivided,
		"orbits", len(res.Orbits))
	return res, nil
}

// OrbitFor returns the orbit of the leaf containing (x, y), if it has one.
func (r *Resolver) OrbitFor(x, y int) (*CellOrbit, bool) {
	leaf := r.tree.Leaf(x, y)
	if leaf == nil {
		return nil, false
	}
	co, ok := r.cells[leaf.Rect]
	return co, ok
}

// Orbits returns the orbits owned by the current leaves.
func (r *Resolver) Orbits() []*CellOrbit {
	out := make([]*CellOrbit, 0, len(r.cells))
	for _, leaf := range r.tree.Leaves() {
		if co, ok := r.cells[leaf.Rect]; ok {
			out = append(out, co)
		}
	}
	return out
}
