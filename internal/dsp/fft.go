// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"fmt"
	"math"

	"dtmf/pkg/bitint"
)

// ErrNotPowerOfTwo is returned by NewFFT for sizes the radix-2 transform
// cannot handle.
var ErrNotPowerOfTwo = errors.New("fft size must be a power of 2")

// FFT is a radix-2 iterative transform with pre-allocated twiddles and work
// buffers. Each stage reads from one buffer and writes the other, so no stage
// ever reads an element it has already overwritten; the ping-pong starts on
// whichever buffer makes the final stage land in out.
//
// An FFT is not safe for concurrent use: Transform returns a view of its
// internal output buffer which is overwritten by the next call.
type FFT struct {
	n        int
	stages   int
	twiddles []Complex // e^{-2πik/n} for k in [0, n)
	scratch  []Complex
	out      []Complex
}

// NewFFT pre-computes the twiddle factors and allocates the work buffers
// for an n-point transform.
func NewFFT(n int) (*FFT, error) {
	if !bitint.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w, got %d", ErrNotPowerOfTwo, n)
	}

	twiddles := make([]Complex, n)
	for k := range n {
		twiddles[k] = FromPolar(1, -2*math.Pi*float64(k)/float64(n))
	}

	return &FFT{
		n:        n,
		stages:   bitint.Log2(n),
		twiddles: twiddles,
		scratch:  make([]Complex, n),
		out:      make([]Complex, n),
	}, nil
}

// Size returns the number of points of the transform.
func (f *FFT) Size() int {
	return f.n
}

// Stages returns log2(Size()), the number of butterfly passes per transform.
func (f *FFT) Stages() int {
	return f.stages
}

// Transform computes the spectrum of the first Size() elements of x. The input
// is only read. The returned slice is the engine's output buffer, bin i
// corresponds to i*sampleRate/Size() Hz, bins above Size()/2 are the mirrored
// negative frequencies.
func (f *FFT) Transform(x []Complex) []Complex {
	n := f.n
	x = x[:n]

	if n == 1 {
		f.out[0] = x[0]
		return f.out
	}

	// An odd number of stages starts on out, an even number on scratch,
	// so the last pass always writes out.
	toOut := f.stages%2 == 1
	src := x
	half := n / 2

	for span := 1; span < n; span *= 2 {
		dst := f.scratch
		if toOut {
			dst = f.out
		}
		skip := n / (2 * span)
		p := 0
		e := 0

		for k := 0; k < span; k++ {
			w := f.twiddles[k*skip]

			for m := 0; m < skip; m++ {
				d := src[e+skip].Mul(w)
				dst[p] = src[e].Add(d)
				dst[p+half] = src[e].Sub(d)
				p++
				e++
			}

			e += skip
		}

		src = dst
		toOut = !toOut
	}

	return f.out
}

// BinFrequency returns the frequency in Hz of bin i for the given sample rate.
func (f *FFT) BinFrequency(i int, sampleRate float64) float64 {
	return sampleRate * float64(i) / float64(f.n)
}
