package gpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
	"github.com/marben/deepzoom/perturb"
)

const (
	DefaultRowSets               = 16
	DefaultIterationsPerDispatch = 100_000
)

type stored struct {
	orbit *orbit.Orbit
	table *bla.Table
}

// Coordinator schedules row-sets and iteration chunks on one device.
// Row-sets run strictly one after another; chunks of a row-set never
// overlap.
type Coordinator struct {
	dev         Device
	rowSets     int
	perDispatch uint32

	genMu sync.RWMutex
	gen   mandel.Generation

	// mu serializes device use.
	mu     sync.Mutex
	orbits map[mandel.OrbitID]stored
	loaded mandel.OrbitID
}

// NewCoordinator drives dev with rowSets interleaved row-sets and
// perDispatch iterations per chunk. Zero values select the defaults.
func NewCoordinator(dev Device, rowSets int, perDispatch uint32) *Coordinator {
	if rowSets <= 0 {
		rowSets = DefaultRowSets
	}
	if perDispatch == 0 {
		perDispatch = DefaultIterationsPerDispatch
	}
	return &Coordinator{
		dev:         dev,
		rowSets:     rowSets,
		perDispatch: perDispatch,
		orbits:      make(map[mandel.OrbitID]stored),
	}
}

func (c *Coordinator) Device() Device { return c.dev }

// UploadOrbit keeps o under id, building its BLA table when opts ask for
// one. The orbit is copied to the device when a work unit first uses it.
func (c *Coordinator) UploadOrbit(_ context.Context, id mandel.OrbitID, o *orbit.Orbit, opts mandel.StoreOptions) error {
	s := stored{orbit: o}
	if opts.BLA {
		s.table = bla.Build(o, opts.DcMax, opts.BLAFraction)
	}
	c.mu.Lock()
	c.orbits[id] = s
	if c.loaded == id {
		c.loaded = 0
	}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) Discard(_ context.Context, ids ...mandel.OrbitID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.orbits, id)
		if c.loaded == id {
			c.loaded = 0
		}
	}
}

func (c *Coordinator) Generation() mandel.Generation {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	return c.gen
}

// Cancel advances the generation. A row-set in flight finishes its current
// chunk and is then dropped.
func (c *Coordinator) Cancel() mandel.Generation {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gen++
	return c.gen
}

func (c *Coordinator) current(gen mandel.Generation, fn func()) bool {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	if gen != c.gen {
		return false
	}
	fn()
	return true
}

// RowSetRows returns the rows of tile in row-set i of n: i, i+n, i+2n...
// counted from tile.Min.Y.
func RowSetRows(tile image.Rectangle, i, n int) []int {
	var rows []int
	for y := tile.Min.Y + i; y < tile.Max.Y; y += n {
		rows = append(rows, y)
	}
	return rows
}

// ChunkCount is the number of dispatches that cover maxIter iterations.
func ChunkCount(maxIter, perDispatch uint32) int {
	if perDispatch == 0 || maxIter == 0 {
		return 1
	}
	return int((uint64(maxIter) + uint64(perDispatch) - 1) / uint64(perDispatch))
}

func params(wu mandel.WorkUnit) Params {
	p := Params{MaxIter: wu.MaxIter, TauSq: wu.TauSq, EscapeRadiusSq: wu.EscapeRadiusSq}
	if p.TauSq <= 0 {
		p.TauSq = perturb.DefaultTauSq
	}
	if p.EscapeRadiusSq <= 0 {
		p.EscapeRadiusSq = orbit.DefaultEscapeRadiusSq
	}
	return p
}

// Render evaluates every work unit of the batch row-set by row-set and
// delivers each finished row as a one-row TileResult. A failed row-set is
// retried once, then delivered as failed.
func (c *Coordinator) Render(ctx context.Context, b mandel.Batch, sink mandel.ResultSink) error {
	if c.Generation() != b.Generation {
		return ErrStale
	}
	if b.Start.IsZero() {
		b.Start = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, wu := range b.Units {
		total += min(c.rowSets, wu.Tile.Dy())
	}
	done := 0

	for _, wu := range b.Units {
		for i := range min(c.rowSets, wu.Tile.Dy()) {
			rows := RowSetRows(wu.Tile, i, c.rowSets)
			results, err := c.renderRowSet(ctx, b.Generation, wu, rows)
			if err != nil && !errors.Is(err, ErrStale) && ctx.Err() == nil {
				logging.Logger().Warn("row-set failed, retrying", "device", c.dev.Name(), "tile", wu.Tile, "row_set", i, "err", err)
				results, err = c.renderRowSet(ctx, b.Generation, wu, rows)
			}
			switch {
			case errors.Is(err, ErrStale):
				return ErrStale
			case ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				results = failedRows(wu, rows, c.dev.Name(), fmt.Errorf("row-set %d of %s: %w", i, wu.Tile, err))
			}
			done++
			delivered := c.current(b.Generation, func() {
				for _, tr := range results {
					sink.Deliver(tr)
				}
				sink.Progress(mandel.Progress{
					Generation: b.Generation,
					Phase:      b.Phase,
					Done:       done,
					Total:      total,
					Elapsed:    time.Since(b.Start),
				})
			})
			if !delivered {
				return ErrStale
			}
		}
	}
	return nil
}

func failedRows(wu mandel.WorkUnit, rows []int, dev string, err error) []mandel.TileResult {
	out := make([]mandel.TileResult, len(rows))
	for i, y := range rows {
		out[i] = mandel.TileResult{
			Generation: wu.Generation,
			Orbit:      wu.Orbit,
			Tile:       image.Rect(wu.Tile.Min.X, y, wu.Tile.Max.X, y+1),
			Unit:       dev,
			Err:        err,
		}
	}
	return out
}

func (c *Coordinator) load(id mandel.OrbitID) (*orbit.Orbit, error) {
	s, ok := c.orbits[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoOrbit, id)
	}
	if c.loaded != id {
		c.loaded = 0
		if err := c.dev.LoadOrbit(s.orbit, s.table); err != nil {
			return nil, fmt.Errorf("load orbit %d: %w", id, err)
		}
		c.loaded = id
	}
	return s.orbit, nil
}

// renderRowSet runs every chunk of one row-set and reads the rows back.
// The generation is checked after each chunk.
func (c *Coordinator) renderRowSet(ctx context.Context, gen mandel.Generation, wu mandel.WorkUnit, rows []int) ([]mandel.TileResult, error) {
	start := time.Now()
	if _, err := c.load(wu.Orbit); err != nil {
		return nil, err
	}

	w := wu.Tile.Dx()
	dcs := make([]hdr.Complex, 0, w*len(rows))
	for _, y := range rows {
		for x := wu.Tile.Min.X; x < wu.Tile.Max.X; x++ {
			dcs = append(dcs, wu.Delta(x, y))
		}
	}
	if err := c.dev.Begin(dcs); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	p := params(wu)
	chunks := ChunkCount(p.MaxIter, c.perDispatch)
	for k := range chunks {
		if err := c.dev.Dispatch(p, c.perDispatch); err != nil {
			return nil, fmt.Errorf("dispatch chunk %d/%d: %w", k+1, chunks, err)
		}
		if c.Generation() != gen {
			return nil, ErrStale
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	pixels, err := c.dev.Read(p)
	if err != nil {
		return nil, fmt.Errorf("read back: %w", err)
	}
	if len(pixels) != len(dcs) {
		return nil, fmt.Errorf("read back %d pixels, want %d", len(pixels), len(dcs))
	}
	elapsed := time.Since(start)
	out := make([]mandel.TileResult, len(rows))
	for i, y := range rows {
		out[i] = mandel.TileResult{
			Generation: wu.Generation,
			Orbit:      wu.Orbit,
			Tile:       image.Rect(wu.Tile.Min.X, y, wu.Tile.Max.X, y+1),
			Pixels:     pixels[i*w : (i+1)*w],
			Unit:       c.dev.Name(),
			Elapsed:    elapsed,
		}
	}
	logging.Logger().Debug("row-set done",
		"device", c.dev.Name(),
		"rows", len(rows),
		"chunks", chunks,
		"elapsed", elapsed)
	return out, nil
}
