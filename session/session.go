// Package session drives whole renders: it validates the view, computes the
// primary reference orbit, dispatches the first pass to a backend and then
// resolves glitches cell by cell until the quadtree converges.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/apfloat"
	"github.com/marben/deepzoom/glitch"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
	"github.com/marben/deepzoom/viewport"
)

var (
	ErrCanceled = errors.New("session: render canceled")
	ErrNoRender = errors.New("session: nothing started")
)

type run struct {
	gen    mandel.Generation
	start  time.Time
	data   *Dataset
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	mu       sync.Mutex
	progress mandel.Progress
}

// Session renders one view at a time. Starting a new view supersedes the
// one in flight.
type Session struct {
	cfg        Config
	backend    Backend
	onProgress func(mandel.Progress)

	mu  sync.Mutex
	cur *run
}

// New returns a session over b. onProgress, if not nil, receives every
// progress signal of the current render.
func New(cfg Config, b Backend, onProgress func(mandel.Progress)) *Session {
	return &Session{cfg: cfg.withDefaults(), backend: b, onProgress: onProgress}
}

func (s *Session) Config() Config { return s.cfg }

// Start validates the view synchronously and renders it on a w × h canvas
// in the background. Any render in flight is canceled.
func (s *Session) Start(ctx context.Context, v viewport.Viewport, w, h int) (mandel.Generation, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("%w: canvas %dx%d", viewport.ErrInvalidViewport, w, h)
	}
	vp, maxIter := viewport.Resolve(v, w, h, s.cfg.IterationMultiplier, s.cfg.IterationPower, s.cfg.MaxIterations)

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	if prev != nil {
		prev.cancel()
	}
	gen := s.backend.Cancel()
	ctx, cancel := context.WithCancel(ctx)
	r := &run{
		gen:    gen,
		start:  time.Now(),
		data:   newDataset(gen, vp, w, h, maxIter),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.cur = r

	logging.Logger().Info("render started",
		"generation", gen,
		"backend", s.backend.Name(),
		"canvas", image.Pt(w, h),
		"zoom_log10", vp.ZoomLog10(),
		"prec", vp.Prec(),
		"max_iter", maxIter)

	go func() {
		defer close(r.done)
		defer cancel()
		if prev != nil {
			// orbit ids are reused across renders
			<-prev.done
		}
		r.err = s.render(ctx, r)
	}()
	return gen, nil
}

// Wait blocks until the current render ends and returns its dataset.
func (s *Session) Wait() (*Dataset, error) {
	s.mu.Lock()
	r := s.cur
	s.mu.Unlock()
	if r == nil {
		return nil, ErrNoRender
	}
	<-r.done
	return r.data, r.err
}

// Cancel stops the current render. Results still in flight are dropped.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.cancel()
	}
	s.backend.Cancel()
}

// Dataset returns the grid of the current render, possibly incomplete.
func (s *Session) Dataset() *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	return s.cur.data
}

// Progress returns the last progress signal of the current render.
func (s *Session) Progress() mandel.Progress {
	s.mu.Lock()
	r := s.cur
	s.mu.Unlock()
	if r == nil {
		return mandel.Progress{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

func (s *Session) report(r *run, p mandel.Progress) {
	r.mu.Lock()
	r.progress = p
	r.mu.Unlock()
	if s.onProgress != nil {
		s.onProgress(p)
	}
}

func (s *Session) phase(ctx context.Context, r *run, ph mandel.Phase, done, total int) {
	if ctx.Err() != nil {
		return
	}
	s.report(r, mandel.Progress{
		Generation: r.gen,
		Phase:      ph,
		Done:       done,
		Total:      total,
		Elapsed:    time.Since(r.start),
	})
}

func canceled(ctx context.Context, err error) error {
	if errors.Is(err, ErrCanceled) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

func (s *Session) storeOptions(v viewport.Viewport) mandel.StoreOptions {
	dcMax := v.DcMax()
	return mandel.StoreOptions{
		BLA:         dcMax.Log2() < s.cfg.BLAMinLog2DcMax,
		DcMax:       dcMax,
		BLAFraction: s.cfg.BLAFraction,
	}
}

func (s *Session) tileSize(v viewport.Viewport) int {
	if s.cfg.TileSize > 0 {
		return s.cfg.TileSize
	}
	return viewport.TileSize(v)
}

// workUnit evaluates tile against the orbit referenced at (refX, refY).
// Offsets are taken at pixel centers.
func (s *Session) workUnit(r *run, tile image.Rectangle, id mandel.OrbitID, refX, refY apfloat.Float) mandel.WorkUnit {
	d := r.data
	x, y := d.Viewport.PixelToFractal(float64(tile.Min.X)+0.5, float64(tile.Min.Y)+0.5, d.Width, d.Height)
	dx, dy := d.Viewport.PixelStep(d.Width, d.Height)
	return mandel.WorkUnit{
		Generation:     r.gen,
		Orbit:          id,
		Tile:           tile,
		DeltaOrigin:    hdr.Complex{Re: x.Sub(refX).HDR(), Im: y.Sub(refY).HDR()},
		Step:           hdr.Complex{Re: dx.HDR(), Im: dy.HDR()},
		MaxIter:        d.MaxIter,
		TauSq:          s.cfg.TauSq,
		EscapeRadiusSq: s.cfg.EscapeRadiusSq,
	}
}

func (s *Session) render(ctx context.Context, r *run) error {
	d := r.data
	v := d.Viewport
	var stored []mandel.OrbitID
	defer func() {
		if len(stored) > 0 {
			s.backend.Discard(context.WithoutCancel(ctx), stored...)
		}
	}()

	s.phase(ctx, r, mandel.PhaseOrbit, 0, 1)
	o, err := orbit.Compute(ctx, v.CenterX, v.CenterY, d.MaxIter, s.cfg.EscapeRadiusSq)
	if err != nil {
		return canceled(ctx, fmt.Errorf("reference orbit: %w", err))
	}
	s.phase(ctx, r, mandel.PhaseOrbit, 1, 1)

	opts := s.storeOptions(v)
	if opts.BLA {
		s.phase(ctx, r, mandel.PhaseBLABuild, 0, 1)
	}
	if err := s.backend.Store(ctx, mandel.PrimaryOrbit, o, opts); err != nil {
		return canceled(ctx, fmt.Errorf("store primary orbit: %w", err))
	}
	stored = append(stored, mandel.PrimaryOrbit)
	if opts.BLA {
		s.phase(ctx, r, mandel.PhaseBLABuild, 1, 1)
	}

	var units []mandel.WorkUnit
	for _, tile := range s.backend.Split(d.Bounds(), s.tileSize(v)) {
		units = append(units, s.workUnit(r, tile, mandel.PrimaryOrbit, v.CenterX, v.CenterY))
	}
	sink := &passSink{s: s, r: r}
	b := mandel.Batch{Generation: r.gen, Phase: mandel.PhaseIterating, Units: units, Start: r.start}
	if err := s.backend.Render(ctx, b, sink); err != nil {
		return canceled(ctx, fmt.Errorf("render: %w", err))
	}

	res := glitch.NewResolver(d.Bounds(), s.cfg.Glitch.MaxDepth, s.cfg.Glitch.MinCellSize)
	maxPasses := res.MaxPasses()
	if s.cfg.Glitch.MaxPasses > 0 {
		maxPasses = min(maxPasses, s.cfg.Glitch.MaxPasses)
	}
	for _, box := range sink.regions {
		res.Record(box)
	}

	ref := func(ctx context.Context, px, py float64) (*orbit.Orbit, error) {
		x, y := v.PixelToFractal(px, py, d.Width, d.Height)
		return orbit.Compute(ctx, x, y, d.MaxIter, s.cfg.EscapeRadiusSq)
	}
	for res.Pending() > 0 && res.Passes() < maxPasses {
		pass, err := res.Pass(ctx, ref)
		if err != nil {
			return canceled(ctx, fmt.Errorf("glitch pass %d: %w", res.Passes(), err))
		}
		if len(pass.Orbits) == 0 {
			break
		}

		ids := make([]mandel.OrbitID, len(pass.Orbits))
		g, gctx := errgroup.WithContext(ctx)
		for i, co := range pass.Orbits {
			ids[i] = co.ID
			g.Go(func() error {
				return s.backend.Store(gctx, co.ID, co.Orbit, opts)
			})
		}
		stored = append(stored, ids...)
		if err := g.Wait(); err != nil {
			return canceled(ctx, fmt.Errorf("store cell orbits: %w", err))
		}

		sink := &passSink{s: s, r: r, resolve: true}
		b := mandel.Batch{Generation: r.gen, Phase: mandel.PhaseResolvingGlitches, Units: s.targetUnits(r, pass.Targets), Start: r.start}
		if err := s.backend.Render(ctx, b, sink); err != nil {
			return canceled(ctx, fmt.Errorf("glitch pass %d: %w", res.Passes(), err))
		}
		for _, box := range sink.regions {
			res.Record(box)
		}

		s.backend.Discard(ctx, ids...)
		stored = stored[:len(stored)-len(ids)]
	}

	s.phase(ctx, r, mandel.PhaseDone, 1, 1)
	logging.Logger().Info("render done",
		"generation", r.gen,
		"glitch_passes", res.Passes(),
		"glitched", d.Glitched(),
		"failed_tiles", len(d.Failed()),
		"elapsed", time.Since(r.start))
	if err := ctx.Err(); err != nil {
		return canceled(ctx, err)
	}
	return nil
}

// targetUnits merges the targets of each cell into one work unit covering
// their bounding box.
func (s *Session) targetUnits(r *run, targets []glitch.Target) []mandel.WorkUnit {
	var order []*glitch.CellOrbit
	boxes := make(map[*glitch.CellOrbit]image.Rectangle)
	for _, t := range targets {
		if _, ok := boxes[t.Cell]; !ok {
			order = append(order, t.Cell)
		}
		boxes[t.Cell] = boxes[t.Cell].Union(t.Rect)
	}
	d := r.data
	units := make([]mandel.WorkUnit, 0, len(order))
	for _, co := range order {
		refX, refY := d.Viewport.PixelToFractal(co.PX, co.PY, d.Width, d.Height)
		units = append(units, s.workUnit(r, boxes[co], co.ID, refX, refY))
	}
	return units
}

// passSink writes one pass into the dataset and collects the regions that
// still hold glitched pixels.
type passSink struct {
	s       *Session
	r       *run
	resolve bool

	mu      sync.Mutex
	regions []image.Rectangle
}

func (p *passSink) Deliver(tr mandel.TileResult) {
	if tr.Err != nil {
		logging.Logger().Warn("tile failed", "tile", tr.Tile, "orbit_id", tr.Orbit, "unit", tr.Unit, "err", tr.Err)
		if !p.resolve {
			p.r.data.fail(tr.Tile)
		}
		return
	}
	box := p.r.data.put(tr, p.resolve)
	if box.Empty() {
		return
	}
	p.mu.Lock()
	p.regions = append(p.regions, box)
	p.mu.Unlock()
}

func (p *passSink) Progress(pr mandel.Progress) {
	p.s.report(p.r, pr)
}
