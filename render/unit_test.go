package render

import (
	"context"
	"errors"
	"image"
	"testing"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/apfloat"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	u := NewUnit("local-0")
	req := mandel.OrbitRequest{CenterX: apfloat.New(-0.5, 128), CenterY: apfloat.New(0, 128), MaxIter: 500}

	if _, err := u.ComputeReferenceOrbit(ctx, req); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("uninitialized compute: %v", err)
	}
	if err := u.Initialize(ctx, "fractal-flame"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("bad kind: %v", err)
	}
	if err := u.Initialize(ctx, mandel.KindPerturbation); err != nil {
		t.Fatal(err)
	}
	o, err := u.ComputeReferenceOrbit(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if o.Len() != 500 || o.Escaped() {
		t.Fatalf("orbit len %d", o.Len())
	}

	wu := mandel.WorkUnit{
		Generation:  1,
		Orbit:       mandel.PrimaryOrbit,
		Tile:        image.Rect(0, 0, 4, 4),
		DeltaOrigin: hdr.FromComplex128(complex(-1e-30, -1e-30)),
		Step:        hdr.FromComplex128(complex(1e-31, 1e-31)),
		MaxIter:     500,
	}
	if _, err := u.RenderTile(ctx, wu); !errors.Is(err, ErrOrbitNotStored) {
		t.Fatalf("render before store: %v", err)
	}
	opts := mandel.StoreOptions{BLA: true, DcMax: hdr.FromFloat64(1e-29)}
	if err := u.StoreReferenceOrbit(ctx, mandel.PrimaryOrbit, o, opts); err != nil {
		t.Fatal(err)
	}
	tr, err := u.RenderTile(ctx, wu)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Unit != "local-0" || tr.Generation != 1 || len(tr.Pixels) != 16 {
		t.Fatalf("tile = %+v", tr)
	}
	for i, p := range tr.Pixels {
		if p.Escaped || p.Iterations != 500 {
			t.Fatalf("pixel %d = %+v", i, p)
		}
	}

	if err := u.DiscardOrbit(ctx, mandel.PrimaryOrbit); err != nil {
		t.Fatal(err)
	}
	if u.Stored(mandel.PrimaryOrbit) {
		t.Fatal("orbit survived discard")
	}
}

func TestDirectKind(t *testing.T) {
	ctx := context.Background()
	u := NewUnit("direct")
	if err := u.Initialize(ctx, mandel.KindDirect); err != nil {
		t.Fatal(err)
	}
	o := &orbit.Orbit{C: 0, Z: []complex128{0}, Der: []complex128{0}, EscapedAt: orbit.NotEscaped}
	if err := u.StoreReferenceOrbit(ctx, 5, o, mandel.StoreOptions{}); err != nil {
		t.Fatal(err)
	}
	tr, err := u.RenderTile(ctx, mandel.WorkUnit{
		Orbit:       5,
		Tile:        image.Rect(0, 0, 2, 1),
		DeltaOrigin: hdr.FromComplex128(0),
		Step:        hdr.FromComplex128(3),
		MaxIter:     100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p := tr.At(0, 0); p.Escaped || p.Iterations != 100 {
		t.Fatalf("c=0: %+v", p)
	}
	if p := tr.At(1, 0); !p.Escaped || p.Iterations != 4 {
		t.Fatalf("c=3: %+v", p)
	}
}
