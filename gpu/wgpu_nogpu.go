//go:build nogpu

package gpu

import (
	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

// WGPUDevice is unavailable in nogpu builds.
type WGPUDevice struct{}

// NewWGPUDevice always fails in nogpu builds.
func NewWGPUDevice() (*WGPUDevice, error) { return nil, ErrNoDevice }

func (*WGPUDevice) Name() string { return "none" }
func (*WGPUDevice) LoadOrbit(*orbit.Orbit, *bla.Table) error { return ErrNoDevice }
func (*WGPUDevice) Begin([]hdr.Complex) error { return ErrNoDevice }
func (*WGPUDevice) Dispatch(Params, uint32) error { return ErrNoDevice }
func (*WGPUDevice) Read(Params) ([]mandel.PixelResult, error) { return nil, ErrNoDevice }
func (*WGPUDevice) Close() error { return nil }
