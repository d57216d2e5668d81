// Package cpu schedules tiles over a pool of compute units. Units pull tiles
// one at a time, and a tile is only handed to a unit that has acknowledged
// storing the orbit the tile is evaluated against.
package cpu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
)

var (
	ErrNoUnits = errors.New("cpu: no compute units")
	// ErrStale is returned by Render when its generation was superseded.
	ErrStale = errors.New("cpu: generation superseded")
)

// UnitState is the lifecycle of a compute unit as seen by the coordinator.
type UnitState int

const (
	Uninitialized UnitState = iota
	Ready
	HasOrbit
	Busy
)

func (s UnitState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case HasOrbit:
		return "has-orbit"
	case Busy:
		return "busy"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type unit struct {
	name  string
	r     mandel.Renderer
	state UnitState
	acked map[mandel.OrbitID]bool
}

// Coordinator owns the compute units and the render generation counter.
type Coordinator struct {
	kind mandel.RendererKind

	// genMu orders deliveries against Cancel: nothing tagged with an old
	// generation reaches a sink once Cancel returned.
	genMu     sync.RWMutex
	gen       mandel.Generation
	genCtx    context.Context
	genCancel context.CancelFunc

	mu    sync.Mutex
	units []*unit
}

func NewCoordinator(kind mandel.RendererKind) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		kind:      kind,
		genCtx:    ctx,
		genCancel: cancel,
	}
}

// AddUnit initializes r with the coordinator's renderer kind and adds it
// to the pool. The unit receives tiles once it acknowledged an orbit.
func (c *Coordinator) AddUnit(ctx context.Context, name string, r mandel.Renderer) error {
	if err := r.Initialize(ctx, c.kind); err != nil {
		return fmt.Errorf("initialize unit %s: %w", name, err)
	}
	c.mu.Lock()
	c.units = append(c.units, &unit{
		name:  name,
		r:     r,
		state: Ready,
		acked: make(map[mandel.OrbitID]bool),
	})
	n := len(c.units)
	c.mu.Unlock()

	logging.Logger().Info("unit added", "unit", name, "units", n)
	return nil
}

// RemoveUnit drops a unit, e.g. after its connection closed. Tiles it is
// rendering finish or fail as usual.
func (c *Coordinator) RemoveUnit(name string) {
	c.mu.Lock()
	for i, u := range c.units {
		if u.name == name {
			c.units = append(c.units[:i], c.units[i+1:]...)
			break
		}
	}
	n := len(c.units)
	c.mu.Unlock()

	logging.Logger().Info("unit removed", "unit", name, "units", n)
}

// Units returns the number of units in the pool.
func (c *Coordinator) Units() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.units)
}

// State reports the lifecycle state of the named unit.
func (c *Coordinator) State(name string) (UnitState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.units {
		if u.name == name {
			return u.state, true
		}
	}
	return Uninitialized, false
}

func (c *Coordinator) snapshot() []*unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*unit(nil), c.units...)
}

func (c *Coordinator) setState(u *unit, s UnitState) {
	c.mu.Lock()
	u.state = s
	c.mu.Unlock()
}

func (c *Coordinator) hasOrbit(u *unit, id mandel.OrbitID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return u.acked[id]
}

func (c *Coordinator) Generation() mandel.Generation {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	return c.gen
}

// Cancel advances the generation and returns the new value. Renders of
// older generations stop handing out tiles and their results are dropped.
func (c *Coordinator) Cancel() mandel.Generation {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gen++
	c.genCancel()
	c.genCtx, c.genCancel = context.WithCancel(context.Background())
	logging.Logger().Debug("generation advanced", "generation", c.gen)
	return c.gen
}

// current runs fn while holding the generation read lock if gen is
// still current.
func (c *Coordinator) current(gen mandel.Generation, fn func()) bool {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	if gen != c.gen {
		return false
	}
	fn()
	return true
}

// Broadcast stores o under id on every unit in parallel and returns once
// each unit acknowledged or failed. Units that fail are left without the
// orbit and get no tiles using it. At least one unit must acknowledge.
func (c *Coordinator) Broadcast(ctx context.Context, id mandel.OrbitID, o *orbit.Orbit, opts mandel.StoreOptions) error {
	units := c.snapshot()
	if len(units) == 0 {
		return ErrNoUnits
	}
	start := time.Now()
	var (
		g     errgroup.Group
		acked atomic.Int32
	)
	for _, u := range units {
		g.Go(func() error {
			if err := u.r.StoreReferenceOrbit(ctx, id, o, opts); err != nil {
				logging.Logger().Warn("orbit store failed", "unit", u.name, "orbit_id", id, "err", err)
				return nil
			}
			c.mu.Lock()
			u.acked[id] = true
			if u.state == Ready {
				u.state = HasOrbit
			}
			c.mu.Unlock()
			acked.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if acked.Load() == 0 {
		return fmt.Errorf("%w: orbit %d stored nowhere", ErrNoUnits, id)
	}
	logging.Logger().Debug("orbit broadcast",
		"orbit_id", id,
		"acked", acked.Load(),
		"units", len(units),
		"elapsed", time.Since(start))
	return nil
}

// Discard drops the orbits from every unit. Failures are logged only.
func (c *Coordinator) Discard(ctx context.Context, ids ...mandel.OrbitID) {
	var g errgroup.Group
	for _, u := range c.snapshot() {
		g.Go(func() error {
			for _, id := range ids {
				if err := u.r.DiscardOrbit(ctx, id); err != nil {
					logging.Logger().Warn("orbit discard failed", "unit", u.name, "orbit_id", id, "err", err)
				}
				c.mu.Lock()
				delete(u.acked, id)
				if len(u.acked) == 0 && u.state == HasOrbit {
					u.state = Ready
				}
				c.mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
}

// eligible returns the units holding every orbit the batch uses.
func (c *Coordinator) eligible(b mandel.Batch) []*unit {
	need := make(map[mandel.OrbitID]bool)
	for _, wu := range b.Units {
		need[wu.Orbit] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*unit
	for _, u := range c.units {
		ok := true
		for id := range need {
			if !u.acked[id] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, u)
		}
	}
	return out
}

// Render evaluates the batch on every eligible unit and delivers results
// to sink as they arrive. It returns once every tile was delivered,
// possibly as failed, or when ctx ends or the generation is superseded.
func (c *Coordinator) Render(ctx context.Context, b mandel.Batch, sink mandel.ResultSink) error {
	c.genMu.RLock()
	if b.Generation != c.gen {
		c.genMu.RUnlock()
		return ErrStale
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.genCtx, cancel)
	c.genMu.RUnlock()
	defer stop()
	defer cancel()

	if len(b.Units) == 0 {
		return nil
	}
	workers := c.eligible(b)
	if len(workers) == 0 {
		return fmt.Errorf("%w holding the batch orbits", ErrNoUnits)
	}
	if b.Start.IsZero() {
		b.Start = time.Now()
	}

	s := newSchedule(c, b, sink)
	wake := context.AfterFunc(ctx, s.wake)
	defer wake()

	var g errgroup.Group
	for _, u := range workers {
		s.incActiveWorker()
		g.Go(func() error {
			s.render(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	if c.Generation() != b.Generation {
		return ErrStale
	}
	return ctx.Err()
}
