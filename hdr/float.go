// Package hdr implements high dynamic range floats used for per-pixel deltas
// at magnifications far beyond the range of float64.
//
// A Float stores (Head + Tail) × 2^Exp where Head and Tail are float32.
// The pair carries roughly 48 bits of mantissa and maps directly onto
// GPU-side storage (three 32-bit words per value).
package hdr

import (
	"math"
	"math/big"
)

// alignLimit is the largest exponent difference at which Add still
// considers the smaller operand. Beyond it the smaller value is below
// the mantissa width and is dropped.
const alignLimit = 48

// Float is a double-single float with a wide binary exponent.
// Head is normalized to [0.5, 1) and |Tail| <= ulp(Head)/2.
// Zero is Head == 0 with Tail == 0 and Exp == 0.
type Float struct {
	Head float32
	Tail float32
	Exp  int32
}

// Zero is the additive identity.
var Zero = Float{}

// One is 1.0.
var One = Float{Head: 0.5, Exp: 1}

func (f Float) IsZero() bool {
	return f.Head == 0
}

// FromFloat64 splits d into head and tail so that the 24 bits lost by a
// plain float32 cast are kept in Tail.
func FromFloat64(d float64) Float {
	if d == 0 || math.IsNaN(d) {
		return Zero
	}
	if math.IsInf(d, 0) {
		return Float{Head: float32(math.Copysign(0.5, d)), Exp: math.MaxInt32}
	}
	m, e := math.Frexp(d)
	head := float32(m)
	tail := float32(m - float64(head))
	return Float{Head: head, Tail: tail, Exp: int32(e)}.normalize()
}

// FromBig converts x using its own binary exponent, so values far outside
// the float64 range convert without underflow.
func FromBig(x *big.Float) Float {
	if x == nil || x.Sign() == 0 {
		return Zero
	}
	var mant big.Float
	e := x.MantExp(&mant)
	m, _ := mant.Float64()
	f := FromFloat64(m)
	return f.Ldexp(e)
}

// Float64 converts to float64. Values outside float64 range saturate
// to ±Inf or flush to zero.
func (f Float) Float64() float64 {
	if f.Head == 0 {
		return 0
	}
	return math.Ldexp(float64(f.Head)+float64(f.Tail), int(f.Exp))
}

// Ldexp returns f × 2^n.
func (f Float) Ldexp(n int) Float {
	if f.Head == 0 {
		return f
	}
	e := int64(f.Exp) + int64(n)
	switch {
	case e > math.MaxInt32:
		e = math.MaxInt32
	case e < math.MinInt32:
		return Zero
	}
	f.Exp = int32(e)
	return f
}

func (f Float) Neg() Float {
	return Float{Head: -f.Head, Tail: -f.Tail, Exp: f.Exp}
}

func (f Float) Abs() Float {
	if f.Head < 0 {
		return f.Neg()
	}
	return f
}

// Sign returns -1, 0 or +1.
func (f Float) Sign() int {
	switch {
	case f.Head > 0:
		return 1
	case f.Head < 0:
		return -1
	}
	return 0
}

func (f Float) Add(g Float) Float {
	if f.Head == 0 {
		return g
	}
	if g.Head == 0 {
		return f
	}
	if f.Exp < g.Exp {
		f, g = g, f
	}
	d := f.Exp - g.Exp
	if d > alignLimit {
		return f
	}
	gh := ldexp32(g.Head, -int(d))
	gt := ldexp32(g.Tail, -int(d))

	s := f.Head + gh
	err := twoSumErr(f.Head, gh, s)
	t := float32(float32(f.Tail+gt) + err)
	return Float{Head: s, Tail: t, Exp: f.Exp}.normalize()
}

func (f Float) Sub(g Float) Float {
	return f.Add(g.Neg())
}

func (f Float) Mul(g Float) Float {
	if f.Head == 0 || g.Head == 0 {
		return Zero
	}
	p, err := twoProd(f.Head, g.Head)
	cross := float32(float32(f.Head*g.Tail) + float32(f.Tail*g.Head))
	t := float32(err + cross)
	return Float{Head: p, Tail: t, Exp: addExp(f.Exp, g.Exp)}.normalize()
}

// Square is Mul(f, f) with the symmetric cross term folded once.
func (f Float) Square() Float {
	if f.Head == 0 {
		return Zero
	}
	p, err := twoProd(f.Head, f.Head)
	cross := float32(2 * float32(f.Head*f.Tail))
	t := float32(err + cross)
	return Float{Head: p, Tail: t, Exp: addExp(f.Exp, f.Exp)}.normalize()
}

func (f Float) MulFloat64(d float64) Float {
	return f.Mul(FromFloat64(d))
}

// Quo returns f / g. The quotient carries float64 precision, which is
// plenty for validity radii and scale factors. Division by zero yields
// the saturated infinity.
func (f Float) Quo(g Float) Float {
	if f.Head == 0 {
		return Zero
	}
	if g.Head == 0 {
		return Float{Head: float32(math.Copysign(0.5, float64(f.Head))), Exp: math.MaxInt32}
	}
	q := (float64(f.Head) + float64(f.Tail)) / (float64(g.Head) + float64(g.Tail))
	return FromFloat64(q).Ldexp(int(f.Exp) - int(g.Exp))
}

// Cmp compares f and g and returns -1, 0 or +1.
func (f Float) Cmp(g Float) int {
	return f.Sub(g).Sign()
}

// Less reports f < g.
func (f Float) Less(g Float) bool {
	return f.Cmp(g) < 0
}

// Max returns the larger of f and g.
func Max(f, g Float) Float {
	if f.Less(g) {
		return g
	}
	return f
}

// Min returns the smaller of f and g.
func Min(f, g Float) Float {
	if g.Less(f) {
		return g
	}
	return f
}

// Sqrt returns the square root of f. Negative values return zero.
func (f Float) Sqrt() Float {
	if f.Head <= 0 {
		return Zero
	}
	m := float64(f.Head) + float64(f.Tail)
	e := int(f.Exp)
	if e&1 != 0 {
		m *= 2
		e--
	}
	return FromFloat64(math.Sqrt(m)).Ldexp(e / 2)
}

// Log2 returns log2|f|, -Inf for zero.
func (f Float) Log2() float64 {
	if f.Head == 0 {
		return math.Inf(-1)
	}
	return math.Log2(math.Abs(float64(f.Head)+float64(f.Tail))) + float64(f.Exp)
}

func (f Float) normalize() Float {
	if f.Head == 0 {
		if f.Tail == 0 {
			return Zero
		}
		f.Head, f.Tail = f.Tail, 0
	}
	// fold tail so |tail| <= ulp(head)/2
	s := f.Head + f.Tail
	t := twoSumErr(f.Head, f.Tail, s)
	if s == 0 {
		return Zero
	}
	m, e := math.Frexp(float64(s))
	return Float{
		Head: float32(m),
		Tail: ldexp32(t, -e),
		Exp:  addExp(f.Exp, int32(e)),
	}
}

// twoSumErr returns the rounding error of s = a + b (Knuth).
func twoSumErr(a, b, s float32) float32 {
	bb := float32(s - a)
	return float32(float32(a-float32(s-bb)) + float32(b-bb))
}

// twoProd returns p = fl(a*b) and the exact error a*b - p. The float64
// product of two float32 values is exact, so the difference is too.
func twoProd(a, b float32) (p, err float32) {
	exact := float64(a) * float64(b)
	p = float32(exact)
	return p, float32(exact - float64(p))
}

func ldexp32(x float32, n int) float32 {
	if x == 0 || n == 0 {
		return x
	}
	return float32(math.Ldexp(float64(x), n))
}

func addExp(a, b int32) int32 {
	e := int64(a) + int64(b)
	switch {
	case e > math.MaxInt32:
		return math.MaxInt32
	case e < math.MinInt32:
		return math.MinInt32
	}
	return int32(e)
}
