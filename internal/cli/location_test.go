package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/viewport"
)

func TestResolveLocation(t *testing.T) {
	l, err := ResolveLocation("deep-seahorse", "")
	if err != nil {
		t.Fatal(err)
	}
	if l != mandel.DeepSeahorse {
		t.Fatalf("got %+v", l)
	}
	if _, err := ResolveLocation("atlantis", ""); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("err = %v", err)
	}

	path := filepath.Join(t.TempDir(), "locations.yaml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []viewport.Location{
		{Name: "a", CenterX: "-0.5", CenterY: "0", Width: "4"},
		{Name: "b", CenterX: "-1.25", CenterY: "0", Width: "1e-3"},
	}
	if err := viewport.SaveLocations(f, want); err != nil {
		t.Fatal(err)
	}
	f.Close()

	first, err := ResolveLocation("", path)
	if err != nil || first != want[0] {
		t.Fatalf("first = %+v, %v", first, err)
	}
	b, err := ResolveLocation("b", path)
	if err != nil || b != want[1] {
		t.Fatalf("b = %+v, %v", b, err)
	}
	if _, err := ResolveLocation("c", path); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("err = %v", err)
	}
}
