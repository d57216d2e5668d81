// Package apfloat provides an arbitrary precision float whose backing is
// chosen from the requested precision: a plain float64 when 53 bits or
// fewer are asked for, math/big otherwise. Callers never see which one is
// in use.
package apfloat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/marben/deepzoom/hdr"
)

// NativeLimit is the largest precision served by the float64 backing: the
// float64 mantissa width. Anything wider goes to big.Float so no requested
// bit is dropped.
const NativeLimit = 53

var ErrMalformed = errors.New("apfloat: malformed encoding")

// Float is an immutable value with an explicit precision in bits.
// Arithmetic results carry the larger precision of the operands.
type Float struct {
	prec uint
	f    float64
	b    *big.Float // non-nil iff prec > NativeLimit
}

// New returns v at the given precision.
func New(v float64, prec uint) Float {
	if prec <= NativeLimit {
		return Float{prec: prec, f: v}
	}
	return Float{prec: prec, b: new(big.Float).SetPrec(prec).SetFloat64(v)}
}

// Zero returns 0 at prec.
func Zero(prec uint) Float { return New(0, prec) }

// Parse reads a decimal (or hex, with 0x prefix) number at prec.
// Digits beyond float64 precision are kept when prec > NativeLimit.
func Parse(s string, prec uint) (Float, error) {
	if prec <= NativeLimit {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Float{}, fmt.Errorf("apfloat: parse %q: %w", s, err)
		}
		return Float{prec: prec, f: v}, nil
	}
	b, _, err := big.ParseFloat(s, 0, prec, big.ToNearestEven)
	if err != nil {
		return Float{}, fmt.Errorf("apfloat: parse %q: %w", s, err)
	}
	return Float{prec: prec, b: b}, nil
}

// FromBig copies x at prec.
func FromBig(x *big.Float, prec uint) Float {
	if prec <= NativeLimit {
		v, _ := x.Float64()
		return Float{prec: prec, f: v}
	}
	return Float{prec: prec, b: new(big.Float).SetPrec(prec).Set(x)}
}

func (x Float) Prec() uint { return x.prec }

// IsNative reports whether x is backed by float64.
func (x Float) IsNative() bool { return x.b == nil }

// WithPrec returns x converted to prec. Narrowing is explicit here and
// nowhere else.
func (x Float) WithPrec(prec uint) Float {
	if prec == x.prec {
		return x
	}
	if x.b == nil {
		return New(x.f, prec)
	}
	return FromBig(x.b, prec)
}

// Big returns x as a new big.Float at x's precision (at least 53 bits).
func (x Float) Big() *big.Float {
	if x.b != nil {
		return new(big.Float).Copy(x.b)
	}
	return new(big.Float).SetPrec(max(x.prec, 53)).SetFloat64(x.f)
}

func (x Float) Float64() float64 {
	if x.b == nil {
		return x.f
	}
	v, _ := x.b.Float64()
	return v
}

// HDR converts to the extended-exponent float used by the evaluators.
func (x Float) HDR() hdr.Float {
	if x.b == nil {
		return hdr.FromFloat64(x.f)
	}
	return hdr.FromBig(x.b)
}

// Exp converts to the float64-mantissa extended type.
func (x Float) Exp() hdr.Exp {
	if x.b == nil {
		return hdr.ExpFromFloat64(x.f)
	}
	return hdr.ExpFromBig(x.b)
}

// Log2Approx returns log2|x| from the binary exponent and the leading
// mantissa bits. It stays finite for magnitudes far outside float64 range.
func (x Float) Log2Approx() float64 {
	if x.b == nil {
		if x.f == 0 {
			return math.Inf(-1)
		}
		return math.Log2(math.Abs(x.f))
	}
	if x.b.Sign() == 0 {
		return math.Inf(-1)
	}
	var mant big.Float
	e := x.b.MantExp(&mant)
	m, _ := mant.Float64()
	return math.Log2(math.Abs(m)) + float64(e)
}

func (x Float) Sign() int {
	if x.b == nil {
		switch {
		case x.f > 0:
			return 1
		case x.f < 0:
			return -1
		}
		return 0
	}
	return x.b.Sign()
}

func (x Float) Cmp(y Float) int {
	if x.b == nil && y.b == nil {
		switch {
		case x.f < y.f:
			return -1
		case x.f > y.f:
			return 1
		}
		return 0
	}
	return x.Big().Cmp(y.Big())
}

// IsFinite reports whether x is neither infinite nor NaN.
func (x Float) IsFinite() bool {
	if x.b == nil {
		return !math.IsInf(x.f, 0) && !math.IsNaN(x.f)
	}
	return !x.b.IsInf()
}

func (x Float) Neg() Float {
	if x.b == nil {
		return Float{prec: x.prec, f: -x.f}
	}
	return Float{prec: x.prec, b: new(big.Float).Neg(x.b)}
}

func (x Float) Abs() Float {
	if x.Sign() < 0 {
		return x.Neg()
	}
	return x
}

func (x Float) Add(y Float) Float {
	return binop(x, y, func(a, b float64) float64 { return a + b }, (*big.Float).Add)
}

func (x Float) Sub(y Float) Float {
	return binop(x, y, func(a, b float64) float64 { return a - b }, (*big.Float).Sub)
}

func (x Float) Mul(y Float) Float {
	return binop(x, y, func(a, b float64) float64 { return a * b }, (*big.Float).Mul)
}

// Quo returns x / y.
func (x Float) Quo(y Float) Float {
	return binop(x, y, func(a, b float64) float64 { return a / b }, (*big.Float).Quo)
}

// MulFloat64 multiplies by a native factor at x's precision.
func (x Float) MulFloat64(v float64) Float {
	return x.Mul(New(v, x.prec))
}

func (x Float) Sqrt() Float {
	if x.b == nil {
		return Float{prec: x.prec, f: math.Sqrt(x.f)}
	}
	if x.b.Sign() < 0 {
		return Zero(x.prec)
	}
	return Float{prec: x.prec, b: new(big.Float).SetPrec(x.prec).Sqrt(x.b)}
}

func binop(x, y Float, native func(a, b float64) float64, wide func(z, a, b *big.Float) *big.Float) Float {
	prec := max(x.prec, y.prec)
	if prec <= NativeLimit {
		return Float{prec: prec, f: native(x.f, y.f)}
	}
	a, b := x.WithPrec(prec), y.WithPrec(prec)
	z := new(big.Float).SetPrec(prec)
	wide(z, a.b, b.b)
	return Float{prec: prec, b: z}
}

// Text formats x in decimal with enough digits to round trip.
func (x Float) Text() string {
	if x.b == nil {
		return strconv.FormatFloat(x.f, 'g', -1, 64)
	}
	return x.b.Text('g', -1)
}

func (x Float) String() string { return x.Text() }

const (
	tagNative byte = 1
	tagBig    byte = 2
)

// MarshalBinary encodes x without loss: precision, backing tag, then
// either the float64 bits or the big.Float gob form.
func (x Float) MarshalBinary() ([]byte, error) {
	buf := binary.BigEndian.AppendUint32(nil, uint32(x.prec))
	if x.b == nil {
		buf = append(buf, tagNative)
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(x.f)), nil
	}
	g, err := x.b.GobEncode()
	if err != nil {
		return nil, fmt.Errorf("apfloat: encode: %w", err)
	}
	buf = append(buf, tagBig)
	return append(buf, g...), nil
}

func (x *Float) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return ErrMalformed
	}
	prec := uint(binary.BigEndian.Uint32(data))
	switch data[4] {
	case tagNative:
		if len(data) != 13 {
			return ErrMalformed
		}
		*x = Float{prec: prec, f: math.Float64frombits(binary.BigEndian.Uint64(data[5:]))}
		return nil
	case tagBig:
		b := new(big.Float)
		if err := b.GobDecode(data[5:]); err != nil {
			return fmt.Errorf("apfloat: decode: %w", err)
		}
		*x = Float{prec: prec, b: b.SetPrec(prec)}
		return nil
	}
	return ErrMalformed
}
