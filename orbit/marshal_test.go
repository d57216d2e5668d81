package orbit

import (
	"errors"
	"testing"

	"github.com/marben/deepzoom/internal/compress"
)

func TestMarshalKeepsEveryPoint(t *testing.T) {
	o := compute(t, -1.7548776662466927, 0, 128, 3000)
	b, err := o.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !compress.Compressed(b) {
		t.Fatal("long orbit not compressed")
	}
	var got Orbit
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if got.C != o.C || got.EscapedAt != o.EscapedAt || got.Len() != o.Len() {
		t.Fatalf("orbit c %v escaped %d len %d", got.C, got.EscapedAt, got.Len())
	}
	for i := range o.Z {
		if got.Z[i] != o.Z[i] || got.Der[i] != o.Der[i] {
			t.Fatalf("point %d differs", i)
		}
	}
}

func TestMarshalEscaped(t *testing.T) {
	o := compute(t, 1, 1, 64, 100)
	b, err := o.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Orbit
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if !got.Escaped() || got.EscapedAt != o.EscapedAt || got.Len() != o.Len() {
		t.Fatalf("escaped at %d, want %d", got.EscapedAt, o.EscapedAt)
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	o := compute(t, -0.5, 0, 64, 10)
	b, err := o.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Orbit
	if err := got.UnmarshalBinary(b[:len(b)-5]); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v", err)
	}
}
