package orbit

import (
	"context"
	"errors"
	"testing"

	"github.com/marben/deepzoom/apfloat"
)

func compute(t *testing.T, cx, cy float64, prec uint, maxIter uint32) *Orbit {
	t.Helper()
	o, err := Compute(context.Background(), apfloat.New(cx, prec), apfloat.New(cy, prec), maxIter, DefaultEscapeRadiusSq)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestOriginNeverEscapes(t *testing.T) {
	for _, prec := range []uint{64, 256} {
		o := compute(t, 0, 0, prec, 500)
		if o.Escaped() || o.Len() != 500 {
			t.Fatalf("prec %d: escaped=%v len=%d", prec, o.Escaped(), o.Len())
		}
		for i, z := range o.Z {
			if z != 0 {
				t.Fatalf("Z[%d] = %v", i, z)
			}
		}
	}
}

func TestEscapingReference(t *testing.T) {
	o := compute(t, 3, 0, 64, 1000)
	want := []complex128{0, 3, 12, 147, 21612}
	if !o.Escaped() || o.EscapedAt != 4 || o.Len() != len(want) {
		t.Fatalf("escapedAt=%d len=%d", o.EscapedAt, o.Len())
	}
	for i, z := range want {
		if o.Z[i] != z {
			t.Fatalf("Z[%d] = %v, want %v", i, o.Z[i], z)
		}
	}
	// Der_{n+1} = 2 Z_n Der_n + 1
	wantDer := []complex128{0, 1, 7, 169, 49687}
	for i, d := range wantDer {
		if o.Der[i] != d {
			t.Fatalf("Der[%d] = %v, want %v", i, o.Der[i], d)
		}
	}
}

func TestPeriodicReferenceAndWrap(t *testing.T) {
	o := compute(t, -1, 0, 128, 10)
	for i, z := range o.Z {
		want := complex128(0)
		if i%2 == 1 {
			want = -1
		}
		if z != want {
			t.Fatalf("Z[%d] = %v, want %v", i, z, want)
		}
	}
	z, _ := o.At(11)
	if z != -1 {
		t.Fatalf("At(11) = %v", z)
	}
	if o.C != -1 {
		t.Fatalf("C = %v", o.C)
	}
}

func TestDefaultEscapeRadius(t *testing.T) {
	for _, r := range []float64{0, -1} {
		o, err := Compute(context.Background(), apfloat.New(-0.5, 64), apfloat.Zero(64), 500, r)
		if err != nil {
			t.Fatal(err)
		}
		if o.Escaped() || o.Len() != 500 {
			t.Fatalf("radius² %v: escaped=%v len=%d", r, o.Escaped(), o.Len())
		}
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compute(ctx, apfloat.New(0, 64), apfloat.New(0, 64), 10, DefaultEscapeRadiusSq)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestHighPrecisionDiffersFromNative(t *testing.T) {
	// A point whose orbit is chaotic: differences below float64 resolution
	// in c grow until they are visible in the truncated orbit.
	cx, err := apfloat.Parse("-1.99999999999999999999999999999999999999", 256)
	if err != nil {
		t.Fatal(err)
	}
	deep, err := Compute(context.Background(), cx, apfloat.Zero(256), 200, DefaultEscapeRadiusSq)
	if err != nil {
		t.Fatal(err)
	}
	native := compute(t, -2, 0, 64, 200)
	differs := false
	for i := range min(deep.Len(), native.Len()) {
		if deep.Z[i] != native.Z[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatal("extended precision reference identical to float64 reference")
	}
}
