// Package glitch re-references regions whose pixels failed the glitch
// test. A quadtree over the canvas is refined one level per pass where
// glitches were reported, and each refined leaf gets its own orbit.
package glitch

import "image"

const (
	DefaultMaxDepth    = 10
	DefaultMinCellSize = 16
)

// Cell is a quadtree node. Children are ordered top-left, top-right,
// bottom-left, bottom-right.
type Cell struct {
	Rect     image.Rectangle
	Depth    int
	Children []*Cell
}

func (c *Cell) IsLeaf() bool { return len(c.Children) == 0 }

// Tree is the quadtree over a canvas. Cells are split, never merged.
type Tree struct {
	Root        *Cell
	MaxDepth    int
	MinCellSize int
}

// NewTree returns a single-leaf tree spanning canvas. Non-positive limits
// take the defaults.
func NewTree(canvas image.Rectangle, maxDepth, minCellSize int) *Tree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if minCellSize <= 0 {
		minCellSize = DefaultMinCellSize
	}
	return &Tree{
		Root:        &Cell{Rect: canvas},
		MaxDepth:    maxDepth,
		MinCellSize: minCellSize,
	}
}

func (t *Tree) canSubdivide(c *Cell) bool {
	if c.Depth >= t.MaxDepth {
		return false
	}
	return c.Rect.Dx()/2 >= t.MinCellSize && c.Rect.Dy()/2 >= t.MinCellSize
}

// split divides a leaf at its midpoint. Odd sizes give the extra pixel
// to the right and bottom children.
func (t *Tree) split(c *Cell) bool {
	if !c.IsLeaf() || !t.canSubdivide(c) {
		return false
	}
	r := c.Rect
	mx := r.Min.X + r.Dx()/2
	my := r.Min.Y + r.Dy()/2
	d := c.Depth + 1
	c.Children = []*Cell{
		{Rect: image.Rect(r.Min.X, r.Min.Y, mx, my), Depth: d},
		{Rect: image.Rect(mx, r.Min.Y, r.Max.X, my), Depth: d},
		{Rect: image.Rect(r.Min.X, my, mx, r.Max.Y), Depth: d},
		{Rect: image.Rect(mx, my, r.Max.X, r.Max.Y), Depth: d},
	}
	return true
}

// Subdivide splits, by one level, every leaf that overlaps any of regions.
// It returns the number of leaves split.
func (t *Tree) Subdivide(regions []image.Rectangle) int {
	if len(regions) == 0 {
		return 0
	}
	n := 0
	var walk func(c *Cell)
	walk = func(c *Cell) {
		if !overlapsAny(c.Rect, regions) {
			return
		}
		if c.IsLeaf() {
			if t.split(c) {
				n++
			}
			return
		}
		for _, ch := range c.Children {
			walk(ch)
		}
	}
	walk(t.Root)
	return n
}

// Leaves returns the leaves in depth-first order.
func (t *Tree) Leaves() []*Cell {
	var out []*Cell
	var walk func(c *Cell)
	walk = func(c *Cell) {
		if c.IsLeaf() {
			out = append(out, c)
			return
		}
		for _, ch := range c.Children {
			walk(ch)
		}
	}
	walk(t.Root)
	return out
}

// Leaf returns the leaf containing pixel (x, y), or nil outside the canvas.
func (t *Tree) Leaf(x, y int) *Cell {
	p := image.Pt(x, y)
	c := t.Root
	if !p.In(c.Rect) {
		return nil
	}
	for !c.IsLeaf() {
		for _, ch := range c.Children {
			if p.In(ch.Rect) {
				c = ch
				break
			}
		}
	}
	return c
}

func overlapsAny(r image.Rectangle, regions []image.Rectangle) bool {
	for _, g := range regions {
		if r.Overlaps(g) {
			return true
		}
	}
	return false
}
