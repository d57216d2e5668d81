// Package perturb evaluates pixels as deltas from a reference orbit.
//
// Each step applies δz ← 2·Z_m·δz + δz² + δc, or a BLA skip when one is
// valid. The delta is kept in hdr precision throughout; magnitudes are
// compared in float64 since they stay below the escape radius.
package perturb

import (
	"context"
	"time"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

const (
	// DefaultTauSq is the Pauldelbrot glitch threshold τ².
	DefaultTauSq = 1e-6

	// minRefNormSq is the smallest |Z_m|² at which the glitch test applies.
	minRefNormSq = 1e-20
)

// State is the resumable per-pixel evaluation state.
type State struct {
	Dz   hdr.Complex // δz
	Drho hdr.Complex // δρ, derivative delta
	M    int         // orbit index
	N    uint32      // iteration count

	Glitched bool
	Escaped  bool
	Done     bool

	FinalZNormSq float64
	FinalZ       complex128
	FinalDer     hdr.Complex

	// Skipped counts iterations covered by BLA entries.
	Skipped uint32
	Rebases uint32
}

// NewState returns the state of a pixel before its first iteration.
func NewState() State {
	return State{}
}

// Result converts a state into the delivered record.
func (s *State) Result(maxIter uint32) mandel.PixelResult {
	return mandel.PixelResult{
		Iterations:      s.N,
		MaxIterations:   maxIter,
		Escaped:         s.Escaped,
		Glitched:        s.Glitched,
		FinalZNormSq:    s.FinalZNormSq,
		FinalZ:          s.FinalZ,
		FinalDerivative: s.FinalDer,
	}
}

// Evaluator runs pixels against one orbit. It holds no per-pixel state and
// may be shared by goroutines.
type Evaluator struct {
	Orbit *orbit.Orbit
	// Table is optional.
	Table *bla.Table

	MaxIter        uint32
	TauSq          float64
	EscapeRadiusSq float64
}

// NewEvaluator fills zero parameters with their defaults.
func NewEvaluator(o *orbit.Orbit, t *bla.Table, maxIter uint32, tauSq, escapeRadiusSq float64) *Evaluator {
	if tauSq <= 0 {
		tauSq = DefaultTauSq
	}
	if escapeRadiusSq <= 0 {
		escapeRadiusSq = orbit.DefaultEscapeRadiusSq
	}
	return &Evaluator{
		Orbit:          o,
		Table:          t,
		MaxIter:        maxIter,
		TauSq:          tauSq,
		EscapeRadiusSq: escapeRadiusSq,
	}
}

// Advance continues s for pixel offset dc until it terminates or at least
// budget more iterations have run. A BLA skip may carry N past the budget
// boundary; skips are bounded only by MaxIter and the orbit end, so
// splitting a run into chunks never changes its outcome. Reports whether
// s is terminal.
func (ev *Evaluator) Advance(s *State, dc hdr.Complex, budget uint32) bool {
	stop := ev.MaxIter
	if s.N < ev.MaxIter && budget < ev.MaxIter-s.N {
		stop = s.N + budget
	}
	for !s.Done {
		if s.N >= ev.MaxIter {
			s.Done = true
			break
		}
		if s.N >= stop {
			break
		}
		ev.step(s, dc)
	}
	return s.Done
}

func (ev *Evaluator) step(s *State, dc hdr.Complex) {
	o := ev.Orbit
	if o.Len() == 0 {
		s.Glitched = true
		s.Done = true
		return
	}
	if o.Escaped() && s.M >= o.Len() {
		s.Glitched = true
	}
	zm, derm := o.At(s.M)

	hz := hdr.FromComplex128(zm)
	z := hz.Add(s.Dz)
	zNorm := z.NormSq()
	zNormSq := zNorm.Float64()

	if zNormSq > ev.EscapeRadiusSq {
		s.Escaped = true
		s.Done = true
		s.FinalZNormSq = zNormSq
		s.FinalZ = z.Complex128()
		s.FinalDer = hdr.FromComplex128(derm).Add(s.Drho)
		return
	}

	zmNormSq := real(zm)*real(zm) + imag(zm)*imag(zm)
	if zmNormSq > minRefNormSq && zNormSq < ev.TauSq*zmNormSq {
		s.Glitched = true
	}

	dzNorm := s.Dz.NormSq()
	if zNorm.Less(dzNorm) {
		s.Dz = z
		s.Drho = hdr.FromComplex128(derm).Add(s.Drho)
		s.M = 0
		s.Rebases++
		return
	}

	if ev.Table != nil {
		if e := ev.Table.Find(s.M, dzNorm, ev.MaxIter-s.N); e != nil {
			dz := s.Dz
			s.Dz = e.A.Mul(dz).Add(e.B.Mul(dc))
			s.Drho = e.A.Mul(s.Drho).Add(e.D.Mul(dz)).Add(e.E.Mul(dc))
			s.M += int(e.L)
			s.N += e.L
			s.Skipped += e.L
			return
		}
	}

	dz := s.Dz
	twoZ := hz.Ldexp(1)
	s.Dz = twoZ.Mul(dz).Add(dz.Square()).Add(dc)
	hder := hdr.FromComplex128(derm)
	s.Drho = twoZ.Mul(s.Drho).
		Add(dz.Mul(hder).Ldexp(1)).
		Add(dz.Mul(s.Drho).Ldexp(1))
	s.M++
	s.N++
}

// Run evaluates one pixel to completion.
func (ev *Evaluator) Run(dc hdr.Complex) mandel.PixelResult {
	s := NewState()
	ev.Advance(&s, dc, ev.MaxIter)
	return s.Result(ev.MaxIter)
}

// RenderTile evaluates every pixel of wu.Tile. The evaluator's MaxIter
// applies; wu supplies the offsets. ctx is checked between rows.
func (ev *Evaluator) RenderTile(ctx context.Context, wu mandel.WorkUnit) (mandel.TileResult, error) {
	start := time.Now()
	r := wu.Tile
	pixels := make([]mandel.PixelResult, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return mandel.TileResult{}, err
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			pixels = append(pixels, ev.Run(wu.Delta(x, y)))
		}
	}
	return mandel.TileResult{
		Generation: wu.Generation,
		Orbit:      wu.Orbit,
		Tile:       r,
		Pixels:     pixels,
		Elapsed:    time.Since(start),
	}, nil
}
