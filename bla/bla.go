// Package bla builds bivariate linear approximation tables over a
// reference orbit. An entry of level k maps a pixel's delta across 2^k
// iterations in one step while the delta stays inside its validity radius:
//
//	δz' = A·δz + B·δc
//	δρ' = A·δρ + D·δz + E·δc
package bla

import (
	"math"

	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
)

// DefaultFraction is the relative error tolerated by a single-step entry.
var DefaultFraction = math.Ldexp(1, -53)

// Entry is one linear map.
type Entry struct {
	A, B hdr.Complex
	D, E hdr.Complex
	// RSq is the squared validity radius for |δz|.
	RSq hdr.Float
	// L is the number of iterations skipped, a power of two.
	L uint32
}

// Table holds every level in one slice; level k starts at Offsets()[k].
// Level k entry j covers orbit indices [j·2^k, (j+1)·2^k). A Table is
// read-only after Build and safe to share.
type Table struct {
	entries  []Entry
	offsets  []int
	orbitLen int
}

// leaf linearizes one step around Z with derivative Der.
func leaf(z, der complex128, fraction float64) Entry {
	zz := hdr.FromComplex128(z)
	r := zz.Abs().MulFloat64(fraction)
	return Entry{
		A:   zz.Ldexp(1),
		B:   hdr.Complex{Re: hdr.One},
		D:   hdr.FromComplex128(der).Ldexp(1),
		RSq: r.Square(),
		L:   1,
	}
}

// merge composes x followed by y. The radius is the smaller of x's own
// and the largest δz whose image under x still lands inside y's radius.
func merge(x, y Entry, dcMax hdr.Float) Entry {
	ry := y.RSq.Sqrt()
	slack := hdr.Max(ry.Sub(x.B.Abs().Mul(dcMax)), hdr.Zero)
	r := slack.Quo(x.A.Abs())
	return Entry{
		A:   y.A.Mul(x.A),
		B:   y.A.Mul(x.B).Add(y.B),
		D:   y.A.Mul(x.D).Add(y.D.Mul(x.A)),
		E:   y.A.Mul(x.E).Add(y.D.Mul(x.B)).Add(y.E),
		RSq: hdr.Min(x.RSq, r.Square()),
		L:   x.L + y.L,
	}
}

// Build creates the table for o. dcMax bounds |δc| over all pixels that
// will use the table; fraction scales the single-step radii (zero means
// DefaultFraction). Levels are added while the previous level has at
// least two entries.
func Build(o *orbit.Orbit, dcMax hdr.Float, fraction float64) *Table {
	if fraction <= 0 {
		fraction = DefaultFraction
	}
	n := o.Len()
	t := &Table{
		entries:  make([]Entry, 0, 2*n),
		offsets:  []int{0},
		orbitLen: n,
	}
	for i := range n {
		t.entries = append(t.entries, leaf(o.Z[i], o.Der[i], fraction))
	}

	prev, count := 0, n
	for count >= 2 {
		start := len(t.entries)
		for j := 0; j+1 < count; j += 2 {
			t.entries = append(t.entries, merge(t.entries[prev+j], t.entries[prev+j+1], dcMax))
		}
		t.offsets = append(t.offsets, start)
		prev, count = start, len(t.entries)-start
	}

	logging.Logger().Debug("bla table built",
		"orbit_len", n,
		"levels", len(t.offsets),
		"entries", len(t.entries))
	return t
}

// Levels is the number of levels including level 0.
func (t *Table) Levels() int { return len(t.offsets) }

// Offsets returns the start index of each level in Entries.
func (t *Table) Offsets() []int { return t.offsets }

// Entries returns the flat entry slice.
func (t *Table) Entries() []Entry { return t.entries }

// OrbitLen is the length of the orbit the table was built from.
func (t *Table) OrbitLen() int { return t.orbitLen }

// Level returns the entries of level k.
func (t *Table) Level(k int) []Entry {
	end := len(t.entries)
	if k+1 < len(t.offsets) {
		end = t.offsets[k+1]
	}
	return t.entries[t.offsets[k]:end]
}

// Find returns the coarsest entry usable at orbit index m for a delta with
// |δz|² = dzNormSq, skipping at most remaining iterations, or nil. Levels
// are tried from the finest up: radii never grow with level, so the first
// failing level ends the search.
func (t *Table) Find(m int, dzNormSq hdr.Float, remaining uint32) *Entry {
	var best *Entry
	for k := range t.offsets {
		step := 1 << k
		if m%step != 0 {
			break
		}
		lvl := t.Level(k)
		j := m >> k
		if j >= len(lvl) {
			break
		}
		e := &lvl[j]
		if e.L > remaining || m+int(e.L) >= t.orbitLen {
			break
		}
		if !dzNormSq.Less(e.RSq) {
			break
		}
		best = e
	}
	return best
}
