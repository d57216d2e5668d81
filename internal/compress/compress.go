// Package compress frames binary payloads, zstd compressing the large ones.
// Orbits and tile results cross the transport through it.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Threshold is the payload size above which Pack tries zstd.
const Threshold = 4 << 10

const (
	flagRaw  byte = 0
	flagZstd byte = 1
)

var ErrMalformed = errors.New("compress: malformed payload")

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// Pack prefixes data with a flag byte, compressing it when that pays off.
func Pack(data []byte) ([]byte, error) {
	if len(data) > Threshold {
		z, err := compressZstd(data)
		if err != nil {
			return nil, fmt.Errorf("compress: %w", err)
		}
		if len(z) < len(data) {
			return append([]byte{flagZstd}, z...), nil
		}
	}
	return append([]byte{flagRaw}, data...), nil
}

// Unpack reverses Pack.
func Unpack(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, ErrMalformed
	}
	switch data[0] {
	case flagRaw:
		return data[1:], nil
	case flagZstd:
		out, err := decompressZstd(data[1:])
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: flag %d", ErrMalformed, data[0])
}

// Compressed reports whether a Pack result went through zstd.
func Compressed(packed []byte) bool {
	return len(packed) > 0 && packed[0] == flagZstd
}

func compressZstd(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	enc.Reset(&buf)

	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(dec); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
