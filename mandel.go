// Package mandel holds the types shared by the deep zoom coordinators and
// their compute units: work units, per-pixel results and progress.
package mandel

import (
	"fmt"
	"image"
	"time"

	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/viewport"
)

// Generation identifies one render. Advancing it invalidates every
// outstanding work unit tagged with an older value.
type Generation uint64

// OrbitID names a reference orbit stored on the compute units.
type OrbitID uint32

const (
	// PrimaryOrbit is the orbit at the viewport center.
	PrimaryOrbit OrbitID = 1
	// FirstCellOrbit is the first id handed to glitch-resolution orbits.
	FirstCellOrbit OrbitID = 1000
)

// WorkUnit is one rectangular tile of the canvas evaluated against a
// stored orbit. Offsets are relative to the orbit's reference point.
type WorkUnit struct {
	Generation Generation
	Orbit      OrbitID
	Tile       image.Rectangle

	// DeltaOrigin is δc of the pixel at Tile.Min.
	DeltaOrigin hdr.Complex
	// Step.Re is the δc increment per column, Step.Im per row.
	Step hdr.Complex

	MaxIter        uint32
	TauSq          float64
	EscapeRadiusSq float64
}

func (wu WorkUnit) String() string {
	return fmt.Sprintf("gen %d orbit %d tile %s", wu.Generation, wu.Orbit, wu.Tile)
}

// PixelResult is the outcome of evaluating one pixel.
type PixelResult struct {
	Iterations    uint32
	MaxIterations uint32
	Escaped       bool
	Glitched      bool
	FinalZNormSq  float64
	// FinalZ is z at escape, used for shading.
	FinalZ complex128
	// FinalDerivative is dz/dc at escape.
	FinalDerivative hdr.Complex
}

// TileResult carries the pixels of a tile, row-major over Tile.
// Err is set when the tile could not be rendered even after a retry.
type TileResult struct {
	Generation Generation
	Orbit      OrbitID
	Tile       image.Rectangle
	Pixels     Pixels
	Unit       string
	Elapsed    time.Duration
	Err        error
}

// At returns the result for the canvas pixel (x, y), which must lie in Tile.
func (tr TileResult) At(x, y int) PixelResult {
	return tr.Pixels[(y-tr.Tile.Min.Y)*tr.Tile.Dx()+(x-tr.Tile.Min.X)]
}

// Glitched counts pixels flagged for resolution.
func (tr TileResult) Glitched() int {
	n := 0
	for _, p := range tr.Pixels {
		if p.Glitched {
			n++
		}
	}
	return n
}

// Phase is the stage a render is in.
type Phase int

const (
	PhaseOrbit Phase = iota
	PhaseBLABuild
	PhaseIterating
	PhaseResolvingGlitches
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseOrbit:
		return "orbit"
	case PhaseBLABuild:
		return "bla-build"
	case PhaseIterating:
		return "iterating"
	case PhaseResolvingGlitches:
		return "resolving-glitches"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Progress is the render-progress signal. Done and Total count work
// units of the current phase.
type Progress struct {
	Generation Generation
	Phase      Phase
	Done       int
	Total      int
	Elapsed    time.Duration
}

// Batch is a set of work units of one generation dispatched together.
type Batch struct {
	Generation Generation
	Phase      Phase
	Units      []WorkUnit
	// Start is when the render began; progress reports time since.
	Start time.Time
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley: dense filaments and repeating "seahorse" curls
	SeahorseValley = viewport.Location{Name: "seahorse-valley", CenterX: "-0.75", CenterY: "0.1", Width: "0.1", Height: "0.1"}

	// Elephant Valley: large bulb with trunk-like tendrils
	ElephantValley = viewport.Location{Name: "elephant-valley", CenterX: "-1.8", CenterY: "-0.06", Width: "0.1", Height: "0.08"}

	// Spiral Minibrot: small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = viewport.Location{Name: "spiral-minibrot", CenterX: "-0.74275", CenterY: "0.13175", Width: "0.0015", Height: "0.0015"}

	// Triple Spiral: threefold symmetric spiral structure
	TripleSpiral = viewport.Location{Name: "triple-spiral", CenterX: "-0.7465", CenterY: "0.0965", Width: "0.003", Height: "0.003"}

	// Valley of the Dragon: deep, highly detailed spiral filaments
	ValleyOfTheDragon = viewport.Location{Name: "valley-of-the-dragon", CenterX: "-0.7375", CenterY: "0.1825", Width: "0.005", Height: "0.005"}

	// Minibrot in a Mini-Spiral: self-similar copy inside a spiral arm
	MinibrotInMiniSpiral = viewport.Location{Name: "minibrot-in-mini-spiral", CenterX: "-1.73825", CenterY: "-0.02275", Width: "0.0015", Height: "0.0015"}

	// Deep Seahorse: far past float64 resolution, needs perturbation
	DeepSeahorse = viewport.Location{
		Name:    "deep-seahorse",
		CenterX: "-0.743643887037158704752191506114774",
		CenterY: "0.131825904205311970493132056385139",
		Width:   "1e-30",
	}
)

// Landmarks lists the built-in locations.
func Landmarks() []viewport.Location {
	return []viewport.Location{
		SeahorseValley,
		ElephantValley,
		SpiralMinibrot,
		TripleSpiral,
		ValleyOfTheDragon,
		MinibrotInMiniSpiral,
		DeepSeahorse,
	}
}

// Landmark looks up a built-in location by name.
func Landmark(name string) (viewport.Location, bool) {
	for _, l := range Landmarks() {
		if l.Name == name {
			return l, true
		}
	}
	return viewport.Location{}, false
}

// Delta returns δc of the canvas pixel (x, y), which must lie in wu.Tile.
func (wu WorkUnit) Delta(x, y int) hdr.Complex {
	return hdr.Complex{
		Re: wu.DeltaOrigin.Re.Add(wu.Step.Re.MulFloat64(float64(x - wu.Tile.Min.X))),
		Im: wu.DeltaOrigin.Im.Add(wu.Step.Im.MulFloat64(float64(y - wu.Tile.Min.Y))),
	}
}
