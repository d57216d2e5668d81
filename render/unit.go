// Package render implements an in-process compute unit: it stores
// broadcast orbits, builds their BLA tables and evaluates tiles.
package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
	"github.com/marben/deepzoom/perturb"
)

var (
	ErrNotInitialized = errors.New("render: unit not initialized")
	ErrOrbitNotStored = errors.New("render: orbit not stored")
	ErrUnknownKind    = errors.New("render: unknown renderer kind")
)

type stored struct {
	orbit *orbit.Orbit
	table *bla.Table
}

// Unit is a compute unit running in this process. It is safe for
// concurrent use; tiles against stored orbits render in parallel.
type Unit struct {
	name string

	mu     sync.RWMutex
	kind   mandel.RendererKind
	orbits map[mandel.OrbitID]stored
}

var _ mandel.Renderer = (*Unit)(nil)

func NewUnit(name string) *Unit {
	return &Unit{
		name:   name,
		orbits: make(map[mandel.OrbitID]stored),
	}
}

func (u *Unit) Name() string { return u.name }

func (u *Unit) Initialize(_ context.Context, kind mandel.RendererKind) error {
	switch kind {
	case mandel.KindPerturbation, mandel.KindDirect:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	u.mu.Lock()
	u.kind = kind
	u.mu.Unlock()
	logging.Logger().Debug("unit initialized", "unit", u.name, "kind", kind)
	return nil
}

func (u *Unit) initialized() (mandel.RendererKind, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.kind == "" {
		return "", ErrNotInitialized
	}
	return u.kind, nil
}

func (u *Unit) ComputeReferenceOrbit(ctx context.Context, req mandel.OrbitRequest) (*orbit.Orbit, error) {
	if _, err := u.initialized(); err != nil {
		return nil, err
	}
	start := time.Now()
	o, err := orbit.Compute(ctx, req.CenterX, req.CenterY, req.MaxIter, req.EscapeRadiusSq)
	if err != nil {
		return nil, fmt.Errorf("reference orbit: %w", err)
	}
	logging.Logger().Debug("orbit computed", "unit", u.name, "len", o.Len(), "elapsed", time.Since(start))
	return o, nil
}

// StoreReferenceOrbit keeps o under id, building its BLA table first when
// opts ask for one. Storing an id again replaces the old orbit.
func (u *Unit) StoreReferenceOrbit(_ context.Context, id mandel.OrbitID, o *orbit.Orbit, opts mandel.StoreOptions) error {
	if _, err := u.initialized(); err != nil {
		return err
	}
	s := stored{orbit: o}
	if opts.BLA {
		s.table = bla.Build(o, opts.DcMax, opts.BLAFraction)
	}
	u.mu.Lock()
	u.orbits[id] = s
	u.mu.Unlock()
	logging.Logger().Debug("orbit stored", "unit", u.name, "orbit_id", id, "bla", s.table != nil)
	return nil
}

func (u *Unit) DiscardOrbit(_ context.Context, id mandel.OrbitID) error {
	u.mu.Lock()
	delete(u.orbits, id)
	u.mu.Unlock()
	return nil
}

// Stored reports whether id is held.
func (u *Unit) Stored(id mandel.OrbitID) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	_, ok := u.orbits[id]
	return ok
}

func (u *Unit) RenderTile(ctx context.Context, wu mandel.WorkUnit) (mandel.TileResult, error) {
	kind, err := u.initialized()
	if err != nil {
		return mandel.TileResult{}, err
	}
	u.mu.RLock()
	s, ok := u.orbits[wu.Orbit]
	u.mu.RUnlock()
	if !ok {
		return mandel.TileResult{}, fmt.Errorf("%w: %d", ErrOrbitNotStored, wu.Orbit)
	}

	var tr mandel.TileResult
	if kind == mandel.KindDirect {
		tr, err = renderDirect(ctx, s.orbit.C, wu)
	} else {
		ev := perturb.NewEvaluator(s.orbit, s.table, wu.MaxIter, wu.TauSq, wu.EscapeRadiusSq)
		tr, err = ev.RenderTile(ctx, wu)
	}
	if err != nil {
		return mandel.TileResult{}, err
	}
	tr.Unit = u.name
	return tr, nil
}

func renderDirect(ctx context.Context, c complex128, wu mandel.WorkUnit) (mandel.TileResult, error) {
	start := time.Now()
	r := wu.Tile
	pixels := make([]mandel.PixelResult, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return mandel.TileResult{}, err
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			pixels = append(pixels, perturb.Direct(c+wu.Delta(x, y).Complex128(), wu.MaxIter, wu.EscapeRadiusSq))
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
