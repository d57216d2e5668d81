package session

import (
	"context"
	"errors"
	"fmt"
	"image"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/cpu"
	"github.com/marben/deepzoom/gpu"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
	"github.com/marben/deepzoom/render"
)

var ErrUnknownBackend = errors.New("session: unknown backend")

// Backend evaluates batches for a session: the cpu coordinator over its
// compute units or the gpu coordinator over one device.
type Backend interface {
	Name() string
	// Cancel supersedes the current generation and returns the new one.
	Cancel() mandel.Generation
	// Store makes o available to every later batch under id.
	Store(ctx context.Context, id mandel.OrbitID, o *orbit.Orbit, opts mandel.StoreOptions) error
	Discard(ctx context.Context, ids ...mandel.OrbitID)
	// Render returns ErrCanceled when the batch generation was superseded.
	Render(ctx context.Context, b mandel.Batch, sink mandel.ResultSink) error
	// Split cuts the canvas into work unit tiles.
	Split(canvas image.Rectangle, tileSize int) []image.Rectangle
	Close() error
}

type cpuBackend struct {
	*cpu.Coordinator
}

// CPU runs sessions on the compute units of c.
func CPU(c *cpu.Coordinator) Backend { return cpuBackend{c} }

func (cpuBackend) Name() string { return BackendCPU }

func (b cpuBackend) Store(ctx context.Context, id mandel.OrbitID, o *orbit.Orbit, opts mandel.StoreOptions) error {
	return b.Broadcast(ctx, id, o, opts)
}

func (b cpuBackend) Render(ctx context.Context, batch mandel.Batch, sink mandel.ResultSink) error {
	err := b.Coordinator.Render(ctx, batch, sink)
	if errors.Is(err, cpu.ErrStale) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

func (cpuBackend) Split(canvas image.Rectangle, tileSize int) []image.Rectangle {
	return cpu.Tiles(canvas, tileSize, tileSize)
}

func (cpuBackend) Close() error { return nil }

type gpuBackend struct {
	*gpu.Coordinator
}

// GPU runs sessions on the device of c.
func GPU(c *gpu.Coordinator) Backend { return gpuBackend{c} }

func (b gpuBackend) Name() string { return BackendGPU + ":" + b.Device().Name() }

func (b gpuBackend) Store(ctx context.Context, id mandel.OrbitID, o *orbit.Orbit, opts mandel.StoreOptions) error {
	return b.UploadOrbit(ctx, id, o, opts)
}

func (b gpuBackend) Render(ctx context.Context, batch mandel.Batch, sink mandel.ResultSink) error {
	err := b.Coordinator.Render(ctx, batch, sink)
	if errors.Is(err, gpu.ErrStale) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

// Split keeps the canvas whole; the coordinator interleaves its rows.
func (gpuBackend) Split(canvas image.Rectangle, _ int) []image.Rectangle {
	return []image.Rectangle{canvas}
}

func (b gpuBackend) Close() error { return b.Device().Close() }

// NewBackend builds the backend named by cfg.Backend. The cpu backend gets
// cfg.Workers in-process units. The gpu backend falls back to the software
// device when no adapter is available.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	cfg = cfg.withDefaults()
	switch cfg.Backend {
	case BackendCPU:
		c := cpu.NewCoordinator(mandel.KindPerturbation)
		for i := range cfg.Workers {
			name := fmt.Sprintf("local-%d", i)
			if err := c.AddUnit(ctx, name, render.NewUnit(name)); err != nil {
				return nil, err
			}
		}
		return CPU(c), nil
	case BackendGPU:
		var dev gpu.Device
		wd, err := gpu.NewWGPUDevice()
		if err != nil {
			logging.Logger().Warn("gpu unavailable, using software device", "err", err)
			dev = gpu.NewSoftDevice()
		} else {
			dev = wd
		}
		return GPU(gpu.NewCoordinator(dev, cfg.RowSets, cfg.IterationsPerDispatch)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
