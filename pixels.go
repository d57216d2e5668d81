package mandel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/internal/compress"
)

var ErrMalformedPixels = errors.New("mandel: malformed pixel encoding")

// Pixels is a row-major run of per-pixel results. It has its own binary
// form so tile results cross the transport compressed and without rounding
// the hdr derivatives.
type Pixels []PixelResult

const (
	pixelEscaped  byte = 1 << 0
	pixelGlitched byte = 1 << 1
)

// maxPixels bounds decoded lengths against corrupt input.
const maxPixels = 1 << 26

func (px Pixels) MarshalBinary() ([]byte, error) {
	buf := binary.AppendUvarint(make([]byte, 0, 8+len(px)*48), uint64(len(px)))
	for _, p := range px {
		buf = binary.AppendUvarint(buf, uint64(p.Iterations))
		buf = binary.AppendUvarint(buf, uint64(p.MaxIterations))
		var flags byte
		if p.Escaped {
			flags |= pixelEscaped
		}
		if p.Glitched {
			flags |= pixelGlitched
		}
		buf = append(buf, flags)
		buf = appendFloat64(buf, p.FinalZNormSq)
		buf = appendFloat64(buf, real(p.FinalZ))
		buf = appendFloat64(buf, imag(p.FinalZ))
		buf = appendHdr(buf, p.FinalDerivative.Re)
		buf = appendHdr(buf, p.FinalDerivative.Im)
	}
	return compress.Pack(buf)
}

func (px *Pixels) UnmarshalBinary(data []byte) error {
	buf, err := compress.Unpack(data)
	if err != nil {
		return fmt.Errorf("pixels: %w", err)
	}
	r := pixelReader{buf: buf}
	n := r.uvarint()
	if r.err != nil || n > maxPixels {
		return ErrMalformedPixels
	}
	out := make(Pixels, n)
	for i := range out {
		p := &out[i]
		p.Iterations = uint32(r.uvarint())
		p.MaxIterations = uint32(r.uvarint())
		flags := r.u8()
		p.Escaped = flags&pixelEscaped != 0
		p.Glitched = flags&pixelGlitched != 0
		p.FinalZNormSq = r.f64()
		re := r.f64()
		p.FinalZ = complex(re, r.f64())
		p.FinalDerivative.Re = r.hdrFloat()
		p.FinalDerivative.Im = r.hdrFloat()
		if r.err != nil {
			return fmt.Errorf("%w: pixel %d of %d", ErrMalformedPixels, i, n)
		}
	}
	if len(r.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedPixels, len(r.buf))
	}
	*px = out
	return nil
}

func appendFloat64(buf []byte, f float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
}

func appendHdr(buf []byte, f hdr.Float) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f.Head))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f.Tail))
	return binary.LittleEndian.AppendUint32(buf, uint32(f.Exp))
}

// pixelReader records the first short read and returns zeros after it.
type pixelReader struct {
	buf []byte
	err error
}

func (r *pixelReader) take(n int) []byte {
	if r.err != nil || len(r.buf) < n {
		r.err = ErrMalformedPixels
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *pixelReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.err = ErrMalformedPixels
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *pixelReader) u8() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *pixelReader) f64() float64 {
	if b := r.take(8); b != nil {
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

func (r *pixelReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *pixelReader) hdrFloat() hdr.Float {
	head := math.Float32frombits(r.u32())
	tail := math.Float32frombits(r.u32())
	return hdr.Float{Head: head, Tail: tail, Exp: int32(r.u32())}
}
