//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	// Register every available backend so RequestAdapter can pick one.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/internal/logging"
	"github.com/marben/deepzoom/orbit"
)

// readbackTimeout bounds the wait for a mapped staging buffer.
const readbackTimeout = 30 * time.Second

// WGPUDevice runs the WGSL kernel through wgpu. A loaded BLA table is
// copied to the device next to the orbit.
type WGPUDevice struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	name     string

	shader   *wgpu.ShaderModule
	bgLayout *wgpu.BindGroupLayout
	plLayout *wgpu.PipelineLayout
	pipeline *wgpu.ComputePipeline

	params  *wgpu.Buffer
	orbitB  *wgpu.Buffer
	blaB    *wgpu.Buffer
	offB    *wgpu.Buffer
	pixels  *wgpu.Buffer
	staging *wgpu.Buffer
	bind    *wgpu.BindGroup

	orbit     *orbit.Orbit
	blaLevels uint32
	count     int
}

var _ Device = (*WGPUDevice)(nil)

// NewWGPUDevice opens the default adapter and builds the kernel pipeline.
// Errors wrap ErrNoDevice when no adapter is available.
func NewWGPUDevice() (*WGPUDevice, error) {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrNoDevice, err)
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: request adapter: %v", ErrNoDevice, err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %v", ErrNoDevice, err)
	}
	d := &WGPUDevice{
		instance: instance,
		adapter:  adapter,
		device:   device,
		name:     adapter.Info().Name,
	}
	if err := d.createPipeline(); err != nil {
		d.Close()
		return nil, err
	}
	logging.Logger().Info("gpu device initialized", "adapter", d.name)
	return d, nil
}

func (d *WGPUDevice) Name() string { return d.name }

func (d *WGPUDevice) createPipeline() error {
	var err error
	d.shader, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "perturb", WGSL: KernelSource,
	})
	if err != nil {
		return fmt.Errorf("create shader: %w", err)
	}
	d.bgLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "perturb-bgl",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 4, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	d.plLayout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: "perturb-pl", BindGroupLayouts: []*wgpu.BindGroupLayout{d.bgLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	d.pipeline, err = d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "perturb-pipeline", Layout: d.plLayout, Module: d.shader, EntryPoint: "main",
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	d.params, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "params", Size: paramsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	return nil
}

func (d *WGPUDevice) LoadOrbit(o *orbit.Orbit, t *bla.Table) error {
	d.orbit = nil
	if err := d.upload(&d.orbitB, "orbit", packOrbit(o)); err != nil {
		return err
	}
	entries, offsets, levels := packBLA(t, o)
	if err := d.upload(&d.blaB, "bla", entries); err != nil {
		return err
	}
	if err := d.upload(&d.offB, "bla-offsets", offsets); err != nil {
		return err
	}
	d.orbit, d.blaLevels = o, levels
	return nil
}

// upload writes data to the storage buffer *buf, growing it first when
// needed.
func (d *WGPUDevice) upload(buf **wgpu.Buffer, label string, data []byte) error {
	if *buf == nil || (*buf).Size() < uint64(len(data)) {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
		b, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label, Size: uint64(len(data)),
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create %s buffer: %w", label, err)
		}
		*buf = b
		d.releaseBind()
	}
	if err := d.device.Queue().WriteBuffer(*buf, 0, data); err != nil {
		return fmt.Errorf("write %s buffer: %w", label, err)
	}
	return nil
}

func (d *WGPUDevice) Begin(dcs []hdr.Complex) error {
	size := uint64(max(len(dcs), 1) * pixelSize)
	if d.pixels == nil || d.pixels.Size() < size {
		d.releasePixels()
		var err error
		d.pixels, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "pixels", Size: size,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create pixel buffer: %w", err)
		}
		d.staging, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "staging", Size: size,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return fmt.Errorf("create staging buffer: %w", err)
		}
	}
	d.count = len(dcs)
	if d.count == 0 {
		return nil
	}
	if err := d.device.Queue().WriteBuffer(d.pixels, 0, packPixels(dcs)); err != nil {
		return fmt.Errorf("write pixel buffer: %w", err)
	}
	return nil
}

func (d *WGPUDevice) bindGroup() (*wgpu.BindGroup, error) {
	if d.bind != nil {
		return d.bind, nil
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label: "perturb-bg", Layout: d.bgLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.params, Size: paramsSize},
			{Binding: 1, Buffer: d.orbitB},
			{Binding: 2, Buffer: d.pixels},
			{Binding: 3, Buffer: d.blaB},
			{Binding: 4, Buffer: d.offB},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	d.bind = bg
	return bg, nil
}

func (d *WGPUDevice) Dispatch(p Params, budget uint32) error {
	if d.orbit == nil {
		return ErrNoOrbit
	}
	if d.count == 0 {
		return nil
	}
	if err := d.device.Queue().WriteBuffer(d.params, 0, packParams(p, budget, d.orbit, d.count, d.blaLevels)); err != nil {
		return fmt.Errorf("write params: %w", err)
	}
	bg, err := d.bindGroup()
	if err != nil {
		return err
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	pass, err := encoder.BeginComputePass(nil)
	if err != nil {
		return fmt.Errorf("begin compute pass: %w", err)
	}
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(uint32((d.count+WorkgroupSize-1)/WorkgroupSize), 1, 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("end compute pass: %w", err)
	}
	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	if _, err := d.device.Queue().Submit(cmd); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return d.device.WaitIdle()
}

func (d *WGPUDevice) Read(p Params) ([]mandel.PixelResult, error) {
	if d.count == 0 {
		return nil, nil
	}
	size := uint64(d.count * pixelSize)
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(d.pixels, 0, d.staging, 0, size)
	cmd, err := encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("finish encoder: %w", err)
	}
	if _, err := d.device.Queue().Submit(cmd); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), readbackTimeout)
	defer cancel()
	if err := d.staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	rng, err := d.staging.MappedRange(0, size)
	if err != nil {
		_ = d.staging.Unmap()
		return nil, fmt.Errorf("staging mapped range: %w", err)
	}
	out := unpackPixels(rng.Bytes(), d.count, p.MaxIter)
	if err := d.staging.Unmap(); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return out, nil
}

func (d *WGPUDevice) releaseBind() {
	if d.bind != nil {
		d.bind.Release()
		d.bind = nil
	}
}

func (d *WGPUDevice) releasePixels() {
	d.releaseBind()
	if d.staging != nil {
		d.staging.Release()
		d.staging = nil
	}
	if d.pixels != nil {
		d.pixels.Release()
		d.pixels = nil
	}
}

func (d *WGPUDevice) Close() error {
	d.releasePixels()
	for _, b := range []*wgpu.Buffer{d.orbitB, d.blaB, d.offB} {
		if b != nil {
			b.Release()
		}
	}
	if d.params != nil {
		d.params.Release()
	}
	if d.pipeline != nil {
		d.pipeline.Release()
	}
	if d.plLayout != nil {
		d.plLayout.Release()
	}
	if d.bgLayout != nil {
		d.bgLayout.Release()
	}
	if d.shader != nil {
		d.shader.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
	return nil
}
