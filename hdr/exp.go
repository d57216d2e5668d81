package hdr

import (
	"math"
	"math/big"
)

// Exp is a float64 mantissa with an int64 exponent. It is cheaper than
// Float on the CPU and is used for scalar bookkeeping (viewport extents,
// radii) where GPU portability does not matter.
type Exp struct {
	M float64 // normalized to [0.5, 1) or zero
	E int64
}

func ExpFromFloat64(d float64) Exp {
	if d == 0 {
		return Exp{}
	}
	m, e := math.Frexp(d)
	return Exp{M: m, E: int64(e)}
}

func ExpFromBig(x *big.Float) Exp {
	if x == nil || x.Sign() == 0 {
		return Exp{}
	}
	var mant big.Float
	e := x.MantExp(&mant)
	m, _ := mant.Float64()
	return Exp{M: m, E: int64(e)}.norm()
}

func (x Exp) Float64() float64 {
	if x.M == 0 {
		return 0
	}
	switch {
	case x.E > math.MaxInt32:
		return math.Copysign(math.Inf(1), x.M)
	case x.E < math.MinInt32:
		return 0
	}
	return math.Ldexp(x.M, int(x.E))
}

// Float converts to the GPU-portable representation.
func (x Exp) Float() Float {
	if x.M == 0 {
		return Zero
	}
	f := FromFloat64(x.M)
	e := int64(f.Exp) + x.E
	if e > math.MaxInt32 || e < math.MinInt32 {
		return FromFloat64(x.Float64())
	}
	f.Exp = int32(e)
	return f
}

func (x Exp) Mul(y Exp) Exp {
	return Exp{M: x.M * y.M, E: x.E + y.E}.norm()
}

func (x Exp) Add(y Exp) Exp {
	if x.M == 0 {
		return y
	}
	if y.M == 0 {
		return x
	}
	if x.E < y.E {
		x, y = y, x
	}
	d := x.E - y.E
	if d > 64 {
		return x
	}
	return Exp{M: x.M + math.Ldexp(y.M, -int(d)), E: x.E}.norm()
}

func (x Exp) Sub(y Exp) Exp {
	return x.Add(Exp{M: -y.M, E: y.E})
}

func (x Exp) Sqrt() Exp {
	if x.M <= 0 {
		return Exp{}
	}
	m, e := x.M, x.E
	if e&1 != 0 {
		m *= 2
		e--
	}
	return Exp{M: math.Sqrt(m), E: e / 2}.norm()
}

// Log2 returns log2|x|, -Inf for zero.
func (x Exp) Log2() float64 {
	if x.M == 0 {
		return math.Inf(-1)
	}
	return math.Log2(math.Abs(x.M)) + float64(x.E)
}

func (x Exp) Cmp(y Exp) int {
	d := x.Sub(y)
	switch {
	case d.M > 0:
		return 1
	case d.M < 0:
		return -1
	}
	return 0
}

func (x Exp) norm() Exp {
	if x.M == 0 {
		return Exp{}
	}
	m, e := math.Frexp(x.M)
	return Exp{M: m, E: x.E + int64(e)}
}
