package perturb

import (
	"math"
	"math/cmplx"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/hdr"
)

// Direct iterates z ← z² + c in float64 with no reference orbit. It is
// exact enough while float64 resolves adjacent pixels and serves as the
// shallow-zoom path and as a check on the perturbed result.
func Direct(c complex128, maxIter uint32, escapeRadiusSq float64) mandel.PixelResult {
	if escapeRadiusSq <= 0 {
		escapeRadiusSq = 65536
	}
	var z, der complex128
	for i := range maxIter {
		normSq := real(z)*real(z) + imag(z)*imag(z)
		if normSq > escapeRadiusSq {
			return mandel.PixelResult{
				Iterations:      i,
				MaxIterations:   maxIter,
				Escaped:         true,
				FinalZNormSq:    normSq,
				FinalZ:          z,
				FinalDerivative: hdr.FromComplex128(der),
			}
		}
		der = 2*z*der + 1
		z = z*z + c
	}
	return mandel.PixelResult{Iterations: maxIter, MaxIterations: maxIter}
}

// Smooth returns the continuous escape count of r, or the iteration
// budget for pixels that never escaped.
func Smooth(r mandel.PixelResult) float64 {
	if !r.Escaped || r.FinalZNormSq <= 1 {
		return float64(r.Iterations)
	}
	return float64(r.Iterations) + 1 - math.Log2(math.Log(math.Sqrt(r.FinalZNormSq)))
}

// Normal returns the unit surface direction z/ρ at escape, or 0.
func Normal(r mandel.PixelResult) complex128 {
	rho := r.FinalDerivative.Complex128()
	if !r.Escaped || rho == 0 || cmplx.IsInf(rho) {
		return 0
	}
	u := r.FinalZ / rho
	if a := cmplx.Abs(u); a > 0 && !math.IsInf(a, 0) {
		return u / complex(a, 0)
	}
	return 0
}
