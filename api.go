package mandel

import (
	"context"

	"github.com/marben/deepzoom/apfloat"
	"github.com/marben/deepzoom/hdr"
	"github.com/marben/deepzoom/orbit"
)

// RendererKind selects how a compute unit evaluates pixels.
type RendererKind string

const (
	// KindPerturbation evaluates deltas against a stored reference orbit.
	KindPerturbation RendererKind = "perturbation"
	// KindDirect iterates c = C_ref + δc in float64. Only valid at
	// shallow zoom where float64 resolves adjacent pixels.
	KindDirect RendererKind = "direct"
)

// OrbitRequest asks a unit to compute a reference orbit at full precision.
type OrbitRequest struct {
	CenterX, CenterY apfloat.Float
	MaxIter          uint32
	EscapeRadiusSq   float64
}

// StoreOptions accompany an orbit broadcast.
type StoreOptions struct {
	// BLA enables building the approximation table on store.
	BLA bool
	// DcMax bounds |δc| over every pixel that will use the orbit.
	DcMax       hdr.Float
	BLAFraction float64
}

// Renderer is a compute unit. Units may live in this process or behind an
// irpc endpoint (see api_irpc.go); every method may block until the unit
// answers.
//
//go:generate go run github.com/marben/irpc/cmd/irpc@v0.0.0-20260109104542-2d3fde99869b
type Renderer interface {
	Initialize(ctx context.Context, kind RendererKind) error
	ComputeReferenceOrbit(ctx context.Context, req OrbitRequest) (*orbit.Orbit, error)
	// StoreReferenceOrbit returns once the unit acknowledged storing the orbit.
	StoreReferenceOrbit(ctx context.Context, id OrbitID, o *orbit.Orbit, opts StoreOptions) error
	RenderTile(ctx context.Context, wu WorkUnit) (TileResult, error)
	DiscardOrbit(ctx context.Context, id OrbitID) error
}
