package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/viewport"
)

func TestCompareGrids(t *testing.T) {
	x := []mandel.PixelResult{
		{Iterations: 10, Escaped: true},
		{Iterations: 100},
		{Iterations: 50, Escaped: true},
		{Iterations: 7, Escaped: true},
	}
	y := []mandel.PixelResult{
		{Iterations: 11, Escaped: true},
		{Iterations: 100},
		{Iterations: 58, Escaped: true},
		{Iterations: 7},
	}
	a := compareGrids(x, y, 1)
	if a.pixels != 4 || a.mismatched != 2 || a.maxDelta != 8 {
		t.Fatalf("agreement %+v", a)
	}
	if a.fraction() != 0.5 {
		t.Fatalf("fraction %v", a.fraction())
	}
	if compareGrids(nil, nil, 0).fraction() != 0 {
		t.Fatal("empty grids disagree")
	}
}

func TestLocationsCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"locations"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	locs, err := viewport.LoadLocations(&out)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != len(mandel.Landmarks()) || locs[0] != mandel.SeahorseValley {
		t.Fatalf("locations %+v", locs)
	}
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	root := newRootCmd()
	root.SetArgs([]string{
		"render",
		"--location", mandel.ElephantValley.Name,
		"--width", "32", "--height", "24",
		"--max-iterations", "200",
		"--workers", "2",
		"--tile-size", "16",
		"--log-level", "warn",
		"--out", path,
	})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 24 {
		t.Fatalf("png %dx%d", cfg.Width, cfg.Height)
	}
}
