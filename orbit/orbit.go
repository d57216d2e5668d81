// Package orbit computes high precision reference orbits.
package orbit

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/marben/deepzoom/apfloat"
	"github.com/marben/deepzoom/internal/logging"
)

// DefaultEscapeRadiusSq is the squared escape radius used for reference
// and perturbed iteration. A large radius keeps smooth shading accurate.
const DefaultEscapeRadiusSq = 65536.0

// NotEscaped marks an orbit that ran to its full budget.
const NotEscaped = -1

// ctxCheckEvery is how often Compute polls its context.
const ctxCheckEvery = 1024

// Orbit is a reference orbit truncated to float64. Orbit values stay
// below the escape radius, so float64 loses no range. Immutable once built.
type Orbit struct {
	C   complex128   // reference point, truncated
	Z   []complex128 // Z_0 .. Z_{n-1}
	Der []complex128 // dZ_n/dc, parallel to Z

	// EscapedAt is the index at which the reference escaped (the last
	// stored point), or NotEscaped.
	EscapedAt int
}

func (o *Orbit) Len() int { return len(o.Z) }

func (o *Orbit) Escaped() bool { return o.EscapedAt != NotEscaped }

// At returns Z and Der at index m, wrapping around the orbit length.
func (o *Orbit) At(m int) (z, der complex128) {
	i := m % len(o.Z)
	return o.Z[i], o.Der[i]
}

// Compute iterates z <- z² + c at the precision of cx/cy for up to maxIter
// steps, recording each Z_n and its derivative. It stops after recording
// the first point with |Z|² > escapeRadiusSq, or when the float64
// derivative overflows. A non-positive escapeRadiusSq means
// DefaultEscapeRadiusSq. Cancellation is checked periodically.
func Compute(ctx context.Context, cx, cy apfloat.Float, maxIter uint32, escapeRadiusSq float64) (*Orbit, error) {
	if !(escapeRadiusSq > 0) {
		escapeRadiusSq = DefaultEscapeRadiusSq
	}
	prec := max(cx.Prec(), cy.Prec())
	o := &Orbit{
		C:         complex(cx.Float64(), cy.Float64()),
		Z:         make([]complex128, 0, min(maxIter, 1<<20)),
		Der:       make([]complex128, 0, min(maxIter, 1<<20)),
		EscapedAt: NotEscaped,
	}

	x, y := apfloat.Zero(prec), apfloat.Zero(prec)
	var der complex128

	for n := uint32(0); n < maxIter; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if cmplx.IsInf(der) || cmplx.IsNaN(der) {
			o.EscapedAt = int(n)
			break
		}
		z := complex(x.Float64(), y.Float64())
		o.Z = append(o.Z, z)
		o.Der = append(o.Der, der)

		xx, yy := x.Mul(x), y.Mul(y)
		if normSq := xx.Add(yy).Float64(); normSq > escapeRadiusSq || math.IsInf(normSq, 0) {
			o.EscapedAt = int(n)
			break
		}

		der = 2*z*der + 1
		nx := xx.Sub(yy).Add(cx)
		y = x.Mul(y).MulFloat64(2).Add(cy)
		x = nx
	}

	logging.Logger().Debug("reference orbit computed",
		"len", len(o.Z),
		"escaped_at", o.EscapedAt,
		"prec", prec)
	return o, nil
}
