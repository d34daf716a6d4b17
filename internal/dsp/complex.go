// SPDX-License-Identifier: MIT
package dsp

import "math"

// Complex is the sample and spectrum value type shared by both engines.
type Complex struct {
	Re float64
	Im float64
}

// FromPolar builds a Complex from a magnitude and an angle in radians.
func FromPolar(r, theta float64) Complex {
	sin, cos := math.Sincos(theta)
	return Complex{Re: r * cos, Im: r * sin}
}

func (c Complex) Add(o Complex) Complex {
	return Complex{Re: c.Re + o.Re, Im: c.Im + o.Im}
}

func (c Complex) Sub(o Complex) Complex {
	return Complex{Re: c.Re - o.Re, Im: c.Im - o.Im}
}

func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Re: c.Re*o.Re - c.Im*o.Im,
		Im: c.Re*o.Im + c.Im*o.Re,
	}
}

// Abs returns the magnitude |c|.
func (c Complex) Abs() float64 {
	return math.Sqrt(c.Re*c.Re + c.Im*c.Im)
}

// Complex128 converts to the builtin type, mostly for comparisons in tests.
func (c Complex) Complex128() complex128 {
	return complex(c.Re, c.Im)
}
