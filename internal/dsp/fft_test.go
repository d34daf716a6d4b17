// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
	"pgregory.net/rapid"
)

func TestNewFFT(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		stages  int
		wantErr bool
	}{
		{"Single Point", 1, 0, false},
		{"Two Points", 2, 1, false},
		{"Frame Size", FrameSize, 9, false},
		{"Zero", 0, 0, true},
		{"Negative", -8, 0, true},
		{"Not Power Of Two", 500, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFFT(tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotPowerOfTwo))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, f.Size())
			assert.Equal(t, tt.stages, f.Stages())
		})
	}
}

func TestFFTImpulse(t *testing.T) {
	f, err := NewFFT(16)
	require.NoError(t, err)

	x := make([]Complex, 16)
	x[0] = Complex{Re: 1}

	for i, v := range f.Transform(x) {
		assert.InDelta(t, 1, v.Re, 1e-12, "bin %d", i)
		assert.InDelta(t, 0, v.Im, 1e-12, "bin %d", i)
	}
}

func TestFFTSinglePoint(t *testing.T) {
	f, err := NewFFT(1)
	require.NoError(t, err)

	out := f.Transform([]Complex{{Re: 7, Im: -1}})
	assert.Equal(t, Complex{Re: 7, Im: -1}, out[0])
}

func TestFFTPureToneLandsOnBin(t *testing.T) {
	f, err := NewFFT(FrameSize)
	require.NoError(t, err)

	const bin = 40 // 625 Hz, an exact bin of the 512-point frame
	x := make([]Complex, FrameSize)
	for i := range x {
		x[i] = Complex{Re: math.Cos(2 * math.Pi * bin * float64(i) / FrameSize)}
	}

	out := f.Transform(x)
	assert.InDelta(t, FrameSize/2, out[bin].Abs(), 1e-6)
	assert.InDelta(t, FrameSize/2, out[FrameSize-bin].Abs(), 1e-6)
	assert.InDelta(t, 625.0, f.BinFrequency(bin, SampleRate), 1e-12)

	for i, v := range out {
		if i == bin || i == FrameSize-bin {
			continue
		}
		assert.InDelta(t, 0, v.Abs(), 1e-6, "bin %d", i)
	}
}

// TestFFTMatchesReference checks the transform against gonum's complex FFT
// on arbitrary inputs and power-of-two sizes.
func TestFFTMatchesReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := 1 << rapid.IntRange(1, 9).Draw(t, "log2n")
		re := rapid.SliceOfN(rapid.Float64Range(-4000, 4000), n, n).Draw(t, "re")
		im := rapid.SliceOfN(rapid.Float64Range(-4000, 4000), n, n).Draw(t, "im")

		x := make([]Complex, n)
		ref := make([]complex128, n)
		for i := range x {
			x[i] = Complex{Re: re[i], Im: im[i]}
			ref[i] = complex(re[i], im[i])
		}

		f, err := NewFFT(n)
		if err != nil {
			t.Fatalf("NewFFT(%d): %v", n, err)
		}
		got := f.Transform(x)
		want := fourier.NewCmplxFFT(n).Coefficients(nil, ref)

		for i := range want {
			if d := cmplx.Abs(got[i].Complex128() - want[i]); d > 1e-6*float64(n)*4000 {
				t.Fatalf("bin %d: got %v, want %v (diff %g)", i, got[i], want[i], d)
			}
		}
	})
}

func TestFFTDoesNotModifyInput(t *testing.T) {
	f, err := NewFFT(8)
	require.NoError(t, err)

	x := []Complex{{Re: 1}, {Re: 2}, {Re: 3}, {Re: 4}, {Re: 5}, {Re: 6}, {Re: 7}, {Re: 8}}
	orig := append([]Complex(nil), x...)
	f.Transform(x)
	assert.Equal(t, orig, x)
}

func TestFFTZeroAllocations(t *testing.T) {
	f, err := NewFFT(FrameSize)
	require.NoError(t, err)
	var frame Frame

	allocs := testing.AllocsPerRun(100, func() {
		f.Transform(frame[:])
	})

	if allocs > 0 {
		t.Errorf("FFT.Transform allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkFFT(b *testing.B) {
	f, err := NewFFT(FrameSize)
	if err != nil {
		b.Fatal(err)
	}
	var frame Frame
	for i := range frame {
		frame[i] = Complex{Re: math.Sin(float64(i))}
	}

	b.ReportAllocs()
	for b.Loop() {
		f.Transform(frame[:])
	}
}
