package orbit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/marben/deepzoom/internal/compress"
)

var ErrMalformed = errors.New("orbit: malformed encoding")

// maxPoints bounds decoded orbit lengths against corrupt input.
const maxPoints = 1 << 28

// MarshalBinary encodes the orbit losslessly. Long orbits are zstd
// compressed.
func (o Orbit) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 32+len(o.Z)*32)
	buf = appendComplex(buf, o.C)
	buf = binary.AppendVarint(buf, int64(o.EscapedAt))
	buf = binary.AppendUvarint(buf, uint64(len(o.Z)))
	for i := range o.Z {
		buf = appendComplex(buf, o.Z[i])
		buf = appendComplex(buf, o.Der[i])
	}
	return compress.Pack(buf)
}

func (o *Orbit) UnmarshalBinary(data []byte) error {
	buf, err := compress.Unpack(data)
	if err != nil {
		return fmt.Errorf("orbit: %w", err)
	}
	if len(buf) < 16 {
		return ErrMalformed
	}
	c := readComplex(buf)
	buf = buf[16:]
	escapedAt, n := binary.Varint(buf)
	if n <= 0 {
		return ErrMalformed
	}
	buf = buf[n:]
	count, n := binary.Uvarint(buf)
	if n <= 0 || count > maxPoints || uint64(len(buf)-n) != count*32 {
		return ErrMalformed
	}
	buf = buf[n:]

	*o = Orbit{
		C:         c,
		Z:         make([]complex128, count),
		Der:       make([]complex128, count),
		EscapedAt: int(escapedAt),
	}
	for i := range o.Z {
		o.Z[i] = readComplex(buf[i*32:])
		o.Der[i] = readComplex(buf[i*32+16:])
	}
	return nil
}

func appendComplex(buf []byte, c complex128) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(real(c)))
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(imag(c)))
}

func readComplex(b []byte) complex128 {
	re := math.Float64frombits(binary.LittleEndian.Uint64(b))
	im := math.Float64frombits(binary.LittleEndian.Uint64(b[8:]))
	return complex(re, im)
}
