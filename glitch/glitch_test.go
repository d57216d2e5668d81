package glitch

import (
	"context"
	"errors"
	"image"
	"testing"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/orbit"
)

func TestSubdivisionConservesArea(t *testing.T) {
	sizes := []image.Point{{32, 32}, {33, 33}, {64, 65}, {100, 101}, {602, 559}}
	for _, sz := range sizes {
		tree := NewTree(image.Rect(0, 0, sz.X, sz.Y), 0, 0)
		if n := tree.Subdivide([]image.Rectangle{tree.Root.Rect}); n != 1 {
			t.Fatalf("%v: subdivided %d", sz, n)
		}
		area := 0
		for _, c := range tree.Root.Children {
			area += c.Rect.Dx() * c.Rect.Dy()
			if c.Depth != 1 {
				t.Fatalf("%v: child depth %d", sz, c.Depth)
			}
		}
		if area != sz.X*sz.Y {
			t.Fatalf("%v: children cover %d pixels", sz, area)
		}
		for y := 0; y < sz.Y; y++ {
			for x := 0; x < sz.X; x++ {
				in := 0
				for _, c := range tree.Root.Children {
					if image.Pt(x, y).In(c.Rect) {
						in++
					}
				}
				if in != 1 {
					t.Fatalf("%v: (%d,%d) in %d children", sz, x, y, in)
				}
			}
		}
	}
}

func TestChildOrder(t *testing.T) {
	tree := NewTree(image.Rect(0, 0, 64, 64), 0, 0)
	tree.Subdivide([]image.Rectangle{image.Rect(0, 0, 1, 1)})
	want := []image.Rectangle{
		image.Rect(0, 0, 32, 32),
		image.Rect(32, 0, 64, 32),
		image.Rect(0, 32, 32, 64),
		image.Rect(32, 32, 64, 64),
	}
	for i, c := range tree.Root.Children {
		if c.Rect != want[i] {
			t.Fatalf("child %d = %v, want %v", i, c.Rect, want[i])
		}
	}
	// only the top-left leaf overlaps the next region
	if n := tree.Subdivide([]image.Rectangle{image.Rect(0, 0, 1, 1)}); n != 1 {
		t.Fatalf("second level split %d leaves", n)
	}
	if got := len(tree.Leaves()); got != 7 {
		t.Fatalf("leaves = %d", got)
	}
	if l := tree.Leaf(5, 5); l.Rect != image.Rect(0, 0, 16, 16) {
		t.Fatalf("leaf(5,5) = %v", l.Rect)
	}
	if tree.Leaf(100, 5) != nil {
		t.Fatal("leaf outside canvas")
	}
}

func TestLimits(t *testing.T) {
	tree := NewTree(image.Rect(0, 0, 31, 64), 0, 16)
	if tree.Subdivide([]image.Rectangle{tree.Root.Rect}) != 0 {
		t.Fatal("split below min cell size")
	}
	deep := NewTree(image.Rect(0, 0, 4096, 4096), 2, 16)
	all := []image.Rectangle{deep.Root.Rect}
	for range 5 {
		deep.Subdivide(all)
	}
	for _, l := range deep.Leaves() {
		if l.Depth != 2 {
			t.Fatalf("leaf depth %d", l.Depth)
		}
	}
}

type refRecorder struct {
	calls int
	at    [][2]float64
}

func (r *refRecorder) ref(_ context.Context, px, py float64) (*orbit.Orbit, error) {
	r.calls++
	r.at = append(r.at, [2]float64{px, py})
	return &orbit.Orbit{Z: []complex128{0}, Der: []complex128{0}, EscapedAt: orbit.NotEscaped}, nil
}

func TestNoGlitchesNoWork(t *testing.T) {
	r := NewResolver(image.Rect(0, 0, 800, 600), 0, 0)
	var rec refRecorder
	res, err := r.Pass(context.Background(), rec.ref)
	if err != nil {
		t.Fatal(err)
	}
	if res.Subdivided != 0 || len(res.Orbits) != 0 || rec.calls != 0 || r.Passes() != 0 {
		t.Fatalf("result %+v, %d orbit calls", res, rec.calls)
	}
	if len(r.Tree().Leaves()) != 1 {
		t.Fatal("tree changed")
	}
}

func TestPassAssignsCellOrbits(t *testing.T) {
	r := NewResolver(image.Rect(0, 0, 256, 256), 0, 0)
	var rec refRecorder
	r.Record(image.Rect(0, 0, 64, 64))
	r.Record(image.Rectangle{})
	if r.Pending() != 1 {
		t.Fatalf("pending = %d", r.Pending())
	}
	res, err := r.Pass(context.Background(), rec.ref)
	if err != nil {
		t.Fatal(err)
	}
	if res.Subdivided != 1 || len(res.Orbits) != 1 {
		t.Fatalf("result %+v", res)
	}
	co := res.Orbits[0]
	if co.ID != mandel.FirstCellOrbit || co.Rect != image.Rect(0, 0, 128, 128) {
		t.Fatalf("cell orbit %+v", co)
	}
	if co.PX != 64 || co.PY != 64 {
		t.Fatalf("reference at (%v,%v)", co.PX, co.PY)
	}
	if len(res.Targets) != 1 || res.Targets[0].Rect != image.Rect(0, 0, 64, 64) {
		t.Fatalf("targets %+v", res.Targets)
	}
	if got, ok := r.OrbitFor(10, 10); !ok || got != co {
		t.Fatal("OrbitFor missed the cell")
	}
	if _, ok := r.OrbitFor(200, 200); ok {
		t.Fatal("OrbitFor found an orbit in a clean cell")
	}
	if r.Pending() != 0 {
		t.Fatal("regions not consumed")
	}

	r.Record(image.Rect(0, 0, 8, 8))
	res, err = r.Pass(context.Background(), rec.ref)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Orbits) != 1 || res.Orbits[0].ID != mandel.FirstCellOrbit+1 {
		t.Fatalf("second pass %+v", res)
	}
	if len(r.Orbits()) != 1 {
		t.Fatalf("leaf orbits = %d", len(r.Orbits()))
	}
}

func TestPersistentGlitchConverges(t *testing.T) {
	r := NewResolver(image.Rect(0, 0, 1024, 1024), 10, 16)
	var rec refRecorder
	for {
		if r.Passes() > r.MaxPasses() {
			t.Fatalf("no convergence after %d passes", r.Passes())
		}
		r.Record(image.Rect(500, 500, 501, 501))
		res, err := r.Pass(context.Background(), rec.ref)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Orbits) == 0 {
			if res.Subdivided != 0 {
				t.Fatalf("subdivided %d without new orbits", res.Subdivided)
			}
			break
		}
	}
	if got := r.Tree().Leaf(500, 500); got.Rect.Dx() != 16 {
		t.Fatalf("final leaf %v", got.Rect)
	}
	if r.Passes() != 7 {
		t.Fatalf("passes = %d", r.Passes())
	}
}

func TestReferenceError(t *testing.T) {
	r := NewResolver(image.Rect(0, 0, 64, 64), 0, 0)
	r.Record(image.Rect(0, 0, 64, 64))
	boom := errors.New("boom")
	_, err := r.Pass(context.Background(), func(context.Context, float64, float64) (*orbit.Orbit, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
