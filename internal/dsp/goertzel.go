// SPDX-License-Identifier: MIT
package dsp

import "math"

// GoertzelBank runs one second-order resonator per canonical DTMF frequency
// over the first GoertzelWindow samples of a Frame. Each resonator is tuned to
// the integer bin k = round(window*f/sampleRate), which keeps the coefficient
// on an exact DFT bin of the 508-sample window.
type GoertzelBank struct {
	window int
	bins   [ToneCount]int
	coeffs [ToneCount]float64 // 2*cos(2πk/window)
}

// NewGoertzelBank tunes the eight resonators for the fixed sample rate and
// window length.
func NewGoertzelBank() *GoertzelBank {
	g := &GoertzelBank{window: GoertzelWindow}
	for i, freq := range Frequencies {
		k := int(math.Round(float64(g.window) * float64(freq) / SampleRate))
		g.bins[i] = k
		g.coeffs[i] = 2 * math.Cos(2*math.Pi*float64(k)/float64(g.window))
	}
	return g
}

// Window returns the number of samples each resonator consumes.
func (g *GoertzelBank) Window() int {
	return g.window
}

// Bin returns the integer bin index the i-th resonator is tuned to.
func (g *GoertzelBank) Bin(i int) int {
	return g.bins[i]
}

// Coefficient returns the recurrence coefficient of the i-th resonator.
func (g *GoertzelBank) Coefficient(i int) float64 {
	return g.coeffs[i]
}

// Energies writes the magnitude squared seen by each resonator into out, in
// Frequencies order. Only the real part of the input is used; samples past
// the window are ignored.
func (g *GoertzelBank) Energies(x []Complex, out *[ToneCount]float64) {
	var q1, q2 [ToneCount]float64

	for _, s := range x[:g.window] {
		for j := range q1 {
			q0 := g.coeffs[j]*q1[j] - q2[j] + s.Re
			q2[j] = q1[j]
			q1[j] = q0
		}
	}

	for j := range out {
		out[j] = magnitudeSquared(q1[j], q2[j], g.coeffs[j])
	}
}

// magnitudeSquared is the closed form |X(k)|² = q1² + q2² - q1*q2*coeff.
func magnitudeSquared(q1, q2, coeff float64) float64 {
	return q1*q1 + q2*q2 - q1*q2*coeff
}
