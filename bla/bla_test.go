package bla

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/marben/deepzoom/apfloat"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

func refOrbit(t *testing.T, c float64, maxIter uint32) *orbit.Orbit {
	t.Helper()
	o, err := orbit.Compute(context.Background(), apfloat.New(c, 64), apfloat.New(0, 64), maxIter, orbit.DefaultEscapeRadiusSq)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func near(a, b complex128, rel float64) bool {
	return cmplx.Abs(a-b) <= rel*math.Max(cmplx.Abs(b), 1e-300)
}

func TestLeaf(t *testing.T) {
	e := leaf(complex(1, 0.5), complex(3, -1), DefaultFraction)
	if e.A.Complex128() != complex(2, 1) || e.B.Complex128() != 1 || e.L != 1 {
		t.Fatalf("A=%v B=%v L=%d", e.A.Complex128(), e.B.Complex128(), e.L)
	}
	if e.D.Complex128() != complex(6, -2) || !e.E.IsZero() {
		t.Fatalf("D=%v E=%v", e.D.Complex128(), e.E.Complex128())
	}
	r := DefaultFraction * math.Sqrt(1.25)
	if got := e.RSq.Float64(); math.Abs(got-r*r) > 1e-12*r*r {
		t.Fatalf("rsq = %v, want %v", got, r*r)
	}
}

func TestMergeTwoSteps(t *testing.T) {
	x := leaf(1, 0, DefaultFraction)
	y := leaf(0.5, 0, DefaultFraction)
	m := merge(x, y, hdr.FromFloat64(0.001))
	if m.L != 2 {
		t.Fatalf("L = %d", m.L)
	}
	if m.A.Complex128() != 2 || m.B.Complex128() != 2 {
		t.Fatalf("A=%v B=%v", m.A.Complex128(), m.B.Complex128())
	}
	if !m.RSq.Less(x.RSq) && m.RSq != x.RSq {
		t.Fatal("merged radius larger than first step")
	}
}

func TestLayout(t *testing.T) {
	tab := Build(refOrbit(t, -0.5, 10), hdr.FromFloat64(1e-10), 0)
	wantOffsets := []int{0, 10, 15, 17}
	if tab.Levels() != len(wantOffsets) {
		t.Fatalf("levels = %d, offsets %v", tab.Levels(), tab.Offsets())
	}
	for i, off := range wantOffsets {
		if tab.Offsets()[i] != off {
			t.Fatalf("offsets = %v, want %v", tab.Offsets(), wantOffsets)
		}
	}
	if n := len(tab.Entries()); n != 18 || n > 2*tab.OrbitLen() {
		t.Fatalf("entries = %d", n)
	}
	for k := range tab.Levels() {
		for j, e := range tab.Level(k) {
			if e.L != 1<<k {
				t.Fatalf("level %d entry %d: L = %d", k, j, e.L)
			}
		}
	}
}

// Composed entries must agree with applying the single-step maps in order.
func TestComposedMatchesSequential(t *testing.T) {
	o := refOrbit(t, -0.5, 64)
	tab := Build(o, hdr.FromFloat64(1e-12), 0)

	dz0, drho0, dc := complex(1e-9, 2e-9), complex(-3e-8, 1e-8), complex(4e-12, -1e-12)
	for k := 1; k < tab.Levels(); k++ {
		for j, e := range tab.Level(k) {
			dz, drho := dz0, drho0
			for i := j << k; i < (j+1)<<k; i++ {
				z, der := o.Z[i], o.Der[i]
				drho = 2*z*drho + 2*der*dz
				dz = 2*z*dz + dc
			}
			gotZ := e.A.Complex128()*dz0 + e.B.Complex128()*dc
			gotRho := e.A.Complex128()*drho0 + e.D.Complex128()*dz0 + e.E.Complex128()*dc
			if !near(gotZ, dz, 1e-9) || !near(gotRho, drho, 1e-9) {
				t.Fatalf("level %d entry %d: dz %v vs %v, drho %v vs %v", k, j, gotZ, dz, gotRho, drho)
			}
		}
	}
}

func TestRadiusMonotone(t *testing.T) {
	tab := Build(refOrbit(t, -0.5, 256), hdr.FromFloat64(1e-30), 0)
	for k := 1; k < tab.Levels(); k++ {
		for j, e := range tab.Level(k) {
			child := tab.Level(k - 1)[2*j]
			if child.RSq.Less(e.RSq) {
				t.Fatalf("level %d entry %d: radius grew", k, j)
			}
		}
	}
}

func TestFind(t *testing.T) {
	tab := Build(refOrbit(t, -0.5, 64), hdr.FromFloat64(1).Ldexp(-3000), 0)
	tiny := hdr.FromFloat64(1).Ldexp(-4000)

	cases := []struct {
		name      string
		m         int
		dz        hdr.Float
		remaining uint32
		want      uint32
	}{
		{"origin has zero radius", 0, tiny, 1000, 0},
		{"aligned to eight", 8, tiny, 1000, 8},
		{"odd index", 9, tiny, 1000, 1},
		{"budget", 8, tiny, 3, 2},
		{"orbit end", 56, tiny, 1000, 4},
		{"delta too large", 8, hdr.One, 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := tab.Find(tc.m, tc.dz, tc.remaining)
			var got uint32
			if e != nil {
				got = e.L
			}
			if got != tc.want {
				t.Fatalf("L = %d, want %d", got, tc.want)
			}
		})
	}
}
