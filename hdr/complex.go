package hdr

// Complex is a complex number with Float parts.
type Complex struct {
	Re, Im Float
}

func FromComplex128(c complex128) Complex {
	return Complex{Re: FromFloat64(real(c)), Im: FromFloat64(imag(c))}
}

func (c Complex) Complex128() complex128 {
	return complex(c.Re.Float64(), c.Im.Float64())
}

func (c Complex) IsZero() bool {
	return c.Re.IsZero() && c.Im.IsZero()
}

func (c Complex) Add(d Complex) Complex {
	return Complex{Re: c.Re.Add(d.Re), Im: c.Im.Add(d.Im)}
}

func (c Complex) Sub(d Complex) Complex {
	return Complex{Re: c.Re.Sub(d.Re), Im: c.Im.Sub(d.Im)}
}

func (c Complex) Mul(d Complex) Complex {
	return Complex{
		Re: c.Re.Mul(d.Re).Sub(c.Im.Mul(d.Im)),
		Im: c.Re.Mul(d.Im).Add(c.Im.Mul(d.Re)),
	}
}

// MulComplex128 multiplies by a native complex value, typically an orbit point.
func (c Complex) MulComplex128(z complex128) Complex {
	return c.Mul(FromComplex128(z))
}

func (c Complex) Square() Complex {
	return Complex{
		Re: c.Re.Square().Sub(c.Im.Square()),
		Im: c.Re.Mul(c.Im).Ldexp(1),
	}
}

// Scale multiplies both parts by a real factor.
func (c Complex) Scale(f Float) Complex {
	return Complex{Re: c.Re.Mul(f), Im: c.Im.Mul(f)}
}

func (c Complex) Ldexp(n int) Complex {
	return Complex{Re: c.Re.Ldexp(n), Im: c.Im.Ldexp(n)}
}

// NormSq returns |c|².
func (c Complex) NormSq() Float {
	return c.Re.Square().Add(c.Im.Square())
}

// Abs returns |c|.
func (c Complex) Abs() Float {
	return c.NormSq().Sqrt()
}
