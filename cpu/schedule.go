package cpu

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"
	"time"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/logging"
)

// maxAttempts is one try plus one retry on a different unit.
const maxAttempts = 2

type job struct {
	wu       mandel.WorkUnit
	attempts int
	failedOn string
	err      error
}

// schedule hands out the tiles of one batch.
type schedule struct {
	c     *Coordinator
	batch mandel.Batch
	sink  mandel.ResultSink

	workers  int
	total    int
	finished int

	unstarted []*job
	inProcess map[*job]struct{}
	m         sync.Mutex
	cond      *sync.Cond
}

func newSchedule(c *Coordinator, b mandel.Batch, sink mandel.ResultSink) *schedule {
	s := &schedule{
		c:         c,
		batch:     b,
		sink:      sink,
		total:     len(b.Units),
		unstarted: make([]*job, 0, len(b.Units)),
		inProcess: make(map[*job]struct{}),
	}
	s.cond = sync.NewCond(&s.m)
	for _, wu := range b.Units {
		s.unstarted = append(s.unstarted, &job{wu: wu})
	}
	return s
}

func (s *schedule) wake() {
	s.m.Lock()
	s.cond.Broadcast()
	s.m.Unlock()
}

// popTile blocks until a tile u may take is queued. It returns false
// once nothing is left for u, or once the batch generation is superseded.
func (s *schedule) popTile(ctx context.Context, u *unit) (*job, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	for {
		if ctx.Err() != nil || s.stale() {
			return nil, false
		}
		for i, j := range s.unstarted {
			if j.failedOn == u.name || !s.c.hasOrbit(u, j.wu.Orbit) {
				continue
			}
			s.unstarted = slices.Delete(s.unstarted, i, i+1)
			s.inProcess[j] = struct{}{}
			return j, true
		}
		if len(s.unstarted) == 0 && len(s.inProcess) == 0 {
			return nil, false
		}
		// Only tiles this unit already failed are left, and nobody else
		// can pick them up.
		if len(s.inProcess) == 0 && s.workers == 1 {
			return nil, false
		}
		s.cond.Wait()
	}
}

// stale reports whether Cancel moved past the batch generation. The
// render ctx follows the generation asynchronously, so it is checked here
// as well.
func (s *schedule) stale() bool {
	return s.c.Generation() != s.batch.Generation
}

func (s *schedule) tileFinished(j *job, tr mandel.TileResult) {
	s.m.Lock()
	delete(s.inProcess, j)
	s.finished++
	done := s.finished
	s.cond.Broadcast()
	s.m.Unlock()

	if tr.Generation != s.batch.Generation {
		logging.Logger().Debug("stale tile dropped", "tile", tr.Tile, "generation", tr.Generation)
		return
	}
	s.deliver(tr, done)
}

// tileFailed requeues j for another unit once, then delivers it as failed.
func (s *schedule) tileFailed(j *job, u *unit, err error) {
	s.m.Lock()
	delete(s.inProcess, j)
	j.attempts++
	j.err = err
	retry := j.attempts < maxAttempts && s.workers > 1
	if retry {
		j.failedOn = u.name
		s.unstarted = append(s.unstarted, j)
	} else {
		s.finished++
	}
	done := s.finished
	s.cond.Broadcast()
	s.m.Unlock()

	if retry {
		logging.Logger().Info("tile requeued", "tile", j.wu.Tile, "failed_on", u.name)
		return
	}
	s.deliver(failedResult(j, u.name), done)
}

// abandon returns a tile interrupted by cancellation without a result.
func (s *schedule) abandon(j *job) {
	s.m.Lock()
	delete(s.inProcess, j)
	s.cond.Broadcast()
	s.m.Unlock()
}

func failedResult(j *job, unitName string) mandel.TileResult {
	return mandel.TileResult{
		Generation: j.wu.Generation,
		Orbit:      j.wu.Orbit,
		Tile:       j.wu.Tile,
		Unit:       unitName,
		Err:        fmt.Errorf("tile %s after %d attempts: %w", j.wu.Tile, j.attempts, j.err),
	}
}

func (s *schedule) deliver(tr mandel.TileResult, done int) {
	s.c.current(s.batch.Generation, func() {
		s.sink.Deliver(tr)
		s.sink.Progress(mandel.Progress{
			Generation: s.batch.Generation,
			Phase:      s.batch.Phase,
			Done:       done,
			Total:      s.total,
			Elapsed:    time.Since(s.batch.Start),
		})
	})
}

func (s *schedule) incActiveWorker() {
	s.m.Lock()
	s.workers++
	w := s.workers
	s.m.Unlock()

	logging.Logger().Info("workers", "active", w)
}

func (s *schedule) decActiveWorkers(ctx context.Context) {
	s.m.Lock()
	s.workers--
	w := s.workers
	var left []*job
	if w == 0 && ctx.Err() == nil && !s.stale() {
		left, s.unstarted = s.unstarted, nil
		s.finished += len(left)
	}
	done := s.finished
	s.cond.Broadcast()
	s.m.Unlock()

	logging.Logger().Info("workers", "active", w)
	for _, j := range left {
		if j.err == nil {
			j.err = ErrNoUnits
		}
		s.deliver(failedResult(j, j.failedOn), done)
	}
}

// render pulls tiles for u until none are left. A unit that fails a tile
// leaves the batch; its tile goes to another unit.
// The caller counts u in with incActiveWorker first.
func (s *schedule) render(ctx context.Context, u *unit) {
	defer s.decActiveWorkers(ctx)

	for {
		j, found := s.popTile(ctx, u)
		if !found {
			return
		}
		s.c.setState(u, Busy)
		tr, err := u.r.RenderTile(ctx, j.wu)
		s.c.setState(u, HasOrbit)
		if err != nil {
			if ctx.Err() != nil {
				s.abandon(j)
				return
			}
			logging.Logger().Warn("render of tile failed", "tile", j.wu.Tile, "unit", u.name, "err", err)
			s.tileFailed(j, u, err)
			return
		}
		s.tileFinished(j, tr)
	}
}

// Tiles splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func Tiles(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)
		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)
			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}
