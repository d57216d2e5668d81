package gpu

import (
	_ "embed"
	"encoding/binary"
	"math"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

// KernelSource is the WGSL perturbation kernel run by the wgpu device.
//
//go:embed perturb.wgsl
var KernelSource string

// WorkgroupSize matches @workgroup_size in the kernel.
const WorkgroupSize = 64

// Byte sizes of the kernel's storage structs.
const (
	floatSize      = 12
	complexSize    = 2 * floatSize
	pixelSize      = 3*complexSize + 6*4
	orbitPointSize = 4*4 + complexSize
	blaEntrySize   = 4*complexSize + floatSize + 4
	paramsSize     = 8 * 4
)

const (
	flagDone     = 1
	flagEscaped  = 2
	flagGlitched = 4
)

func putFloat(b []byte, f hdr.Float) []byte {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f.Head))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f.Tail))
	return binary.LittleEndian.AppendUint32(b, uint32(f.Exp))
}

func putComplex(b []byte, c hdr.Complex) []byte {
	return putFloat(putFloat(b, c.Re), c.Im)
}

func getFloat(b []byte) hdr.Float {
	return hdr.Float{
		Head: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Tail: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Exp:  int32(binary.LittleEndian.Uint32(b[8:])),
	}
}

func getComplex(b []byte) hdr.Complex {
	return hdr.Complex{Re: getFloat(b), Im: getFloat(b[floatSize:])}
}

// packPixels lays out fresh pixel states for the given offsets.
func packPixels(dcs []hdr.Complex) []byte {
	b := make([]byte, 0, len(dcs)*pixelSize)
	for _, dc := range dcs {
		b = putComplex(b, dc)
		b = append(b, make([]byte, pixelSize-complexSize)...)
	}
	return b
}

// unpackPixels reads kernel pixel states back into results.
func unpackPixels(b []byte, n int, maxIter uint32) []mandel.PixelResult {
	out := make([]mandel.PixelResult, n)
	for i := range out {
		p := b[i*pixelSize:]
		tail := p[3*complexSize:]
		flags := binary.LittleEndian.Uint32(tail[8:])
		r := mandel.PixelResult{
			Iterations:    binary.LittleEndian.Uint32(tail[4:]),
			MaxIterations: maxIter,
			Escaped:       flags&flagEscaped != 0,
			Glitched:      flags&flagGlitched != 0,
		}
		if r.Escaped {
			r.FinalZNormSq = float64(math.Float32frombits(binary.LittleEndian.Uint32(tail[12:])))
			r.FinalZ = complex(
				float64(math.Float32frombits(binary.LittleEndian.Uint32(tail[16:]))),
				float64(math.Float32frombits(binary.LittleEndian.Uint32(tail[20:]))),
			)
			r.FinalDerivative = getComplex(p[2*complexSize:])
		}
		out[i] = r
	}
	return out
}

// packOrbit splits each Z into an f32 pair and stores Der in hdr form.
func packOrbit(o *orbit.Orbit) []byte {
	b := make([]byte, 0, max(o.Len(), 1)*orbitPointSize)
	for i, z := range o.Z {
		re, im := float32(real(z)), float32(imag(z))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(re))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(real(z)-float64(re))))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(im))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(imag(z)-float64(im))))
		b = putComplex(b, hdr.FromComplex128(o.Der[i]))
	}
	if len(b) == 0 {
		// Zero-sized storage bindings are invalid.
		b = make([]byte, orbitPointSize)
	}
	return b
}

// packBLA flattens t into the kernel's entry array and a level offset
// array terminated by the entry count. A nil table, or one built for a
// different orbit, packs as zero levels.
func packBLA(t *bla.Table, o *orbit.Orbit) (entries, offsets []byte, levels uint32) {
	if t == nil || t.OrbitLen() != o.Len() {
		return make([]byte, blaEntrySize), make([]byte, 4), 0
	}
	all := t.Entries()
	entries = make([]byte, 0, max(len(all), 1)*blaEntrySize)
	for _, e := range all {
		entries = putComplex(entries, e.A)
		entries = putComplex(entries, e.B)
		entries = putComplex(entries, e.D)
		entries = putComplex(entries, e.E)
		entries = putFloat(entries, e.RSq)
		entries = binary.LittleEndian.AppendUint32(entries, e.L)
	}
	if len(entries) == 0 {
		entries = make([]byte, blaEntrySize)
	}
	offsets = make([]byte, 0, (t.Levels()+1)*4)
	for _, off := range t.Offsets() {
		offsets = binary.LittleEndian.AppendUint32(offsets, uint32(off))
	}
	offsets = binary.LittleEndian.AppendUint32(offsets, uint32(len(all)))
	return entries, offsets, uint32(t.Levels())
}

func packParams(p Params, budget uint32, o *orbit.Orbit, count int, blaLevels uint32) []byte {
	b := make([]byte, 0, paramsSize)
	b = binary.LittleEndian.AppendUint32(b, p.MaxIter)
	b = binary.LittleEndian.AppendUint32(b, budget)
	b = binary.LittleEndian.AppendUint32(b, uint32(o.Len()))
	b = binary.LittleEndian.AppendUint32(b, uint32(count))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(p.TauSq)))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(p.EscapeRadiusSq)))
	var escaped uint32
	if o.Escaped() {
		escaped = 1
	}
	b = binary.LittleEndian.AppendUint32(b, escaped)
	return binary.LittleEndian.AppendUint32(b, blaLevels)
}
