// Package gpu drives the perturbation kernel on a compute device. The
// canvas is split into interleaved row-sets and each row-set's iteration
// budget into chunks; pixel state stays on the device between chunks.
package gpu

import (
	"errors"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

var (
	ErrNoDevice = errors.New("gpu: no device")
	ErrNoOrbit  = errors.New("gpu: orbit not uploaded")
	// ErrStale is returned by Render when its generation was superseded.
	ErrStale = errors.New("gpu: generation superseded")
)

// Params are the per-render kernel parameters.
type Params struct {
	MaxIter        uint32
	TauSq          float64
	EscapeRadiusSq float64
}

// Device runs the kernel. Calls are made from one goroutine at a time.
type Device interface {
	Name() string
	// LoadOrbit makes o the orbit subsequent dispatches iterate against.
	// Devices without BLA support ignore t.
	LoadOrbit(o *orbit.Orbit, t *bla.Table) error
	// Begin resets the resident pixel state to fresh pixels at dcs.
	Begin(dcs []hdr.Complex) error
	// Dispatch advances every live pixel by up to budget iterations and
	// returns once the device finished.
	Dispatch(p Params, budget uint32) error
	// Read copies the resident pixel state back.
	Read(p Params) ([]mandel.PixelResult, error)
	Close() error
}
