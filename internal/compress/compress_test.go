package compress

import (
	"bytes"
	"errors"
	"testing"
)

func TestPackSmallStaysRaw(t *testing.T) {
	data := []byte("tile")
	p, err := Pack(data)
	if err != nil {
		t.Fatal(err)
	}
	if Compressed(p) {
		t.Fatal("small payload compressed")
	}
	got, err := Unpack(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q", got)
	}
}

func TestPackLargeCompresses(t *testing.T) {
	data := bytes.Repeat([]byte{0x3f, 0xd7, 0x0a, 0x3d}, 4*Threshold)
	p, err := Pack(data)
	if err != nil {
		t.Fatal(err)
	}
	if !Compressed(p) || len(p) >= len(data) {
		t.Fatalf("packed %d of %d bytes, compressed %v", len(p), len(data), Compressed(p))
	}
	got, err := Unpack(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("payload differs after unpack")
	}
}

func TestUnpackMalformed(t *testing.T) {
	if _, err := Unpack(nil); !errors.Is(err, ErrMalformed) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := Unpack([]byte{9, 1, 2}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("bad flag: %v", err)
	}
	if _, err := Unpack([]byte{flagZstd, 1, 2, 3}); err == nil {
		t.Fatal("garbage zstd accepted")
	}
}
