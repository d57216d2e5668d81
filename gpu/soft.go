package gpu

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
	"github.com/marben/deepzoom/perturb"
)

// SoftDevice runs the kernel on the CPU: one goroutine per workgroup of
// WorkgroupSize pixels, state kept in memory between dispatches. It uses
// the BLA table when one is loaded.
type SoftDevice struct {
	orbit *orbit.Orbit
	table *bla.Table

	dcs    []hdr.Complex
	states []perturb.State

	// Dispatches counts Dispatch calls since the last Begin.
	Dispatches int
}

var _ Device = (*SoftDevice)(nil)

func NewSoftDevice() *SoftDevice { return &SoftDevice{} }

func (d *SoftDevice) Name() string { return "soft" }

func (d *SoftDevice) LoadOrbit(o *orbit.Orbit, t *bla.Table) error {
	d.orbit, d.table = o, t
	return nil
}

func (d *SoftDevice) Begin(dcs []hdr.Complex) error {
	d.dcs = append(d.dcs[:0], dcs...)
	d.states = make([]perturb.State, len(dcs))
	d.Dispatches = 0
	return nil
}

func (d *SoftDevice) Dispatch(p Params, budget uint32) error {
	if d.orbit == nil {
		return ErrNoOrbit
	}
	d.Dispatches++
	ev := perturb.NewEvaluator(d.orbit, d.table, p.MaxIter, p.TauSq, p.EscapeRadiusSq)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < len(d.states); lo += WorkgroupSize {
		hi := min(lo+WorkgroupSize, len(d.states))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				ev.Advance(&d.states[i], d.dcs[i], budget)
			}
			return nil
		})
	}
	return g.Wait()
}

func (d *SoftDevice) Read(p Params) ([]mandel.PixelResult, error) {
	out := make([]mandel.PixelResult, len(d.states))
	for i := range d.states {
		out[i] = d.states[i].Result(p.MaxIter)
	}
	return out, nil
}

func (d *SoftDevice) Close() error { return nil }
