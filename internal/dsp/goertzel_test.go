// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoertzelBins(t *testing.T) {
	g := NewGoertzelBank()
	want := [ToneCount]int{44, 49, 54, 60, 77, 85, 94, 104}

	assert.Equal(t, GoertzelWindow, g.Window())
	for i := range want {
		assert.Equal(t, want[i], g.Bin(i), "bin for %d Hz", Frequencies[i])
		assert.InDelta(t,
			2*math.Cos(2*math.Pi*float64(want[i])/GoertzelWindow),
			g.Coefficient(i), 1e-15)
	}
}

func TestGoertzelPeaksOnTunedResonator(t *testing.T) {
	g := NewGoertzelBank()

	for i, freq := range Frequencies {
		var frame Frame
		for n := range frame {
			frame[n] = Complex{Re: 1000 * math.Sin(2*math.Pi*float64(freq)*float64(n)/SampleRate)}
		}

		var energies [ToneCount]float64
		g.Energies(frame[:], &energies)

		peak := 0
		for j := range energies {
			if energies[j] > energies[peak] {
				peak = j
			}
		}
		assert.Equal(t, i, peak, "%d Hz should peak on resonator %d", freq, i)
	}
}

func TestGoertzelMatchesDFTBin(t *testing.T) {
	g := NewGoertzelBank()

	var frame Frame
	for n := range frame {
		frame[n] = Complex{Re: math.Cos(float64(n)*0.37) * 300}
	}

	var energies [ToneCount]float64
	g.Energies(frame[:], &energies)

	for i := range energies {
		var re, im float64
		k := float64(g.Bin(i))
		for n := 0; n < GoertzelWindow; n++ {
			s, c := math.Sincos(-2 * math.Pi * k * float64(n) / GoertzelWindow)
			re += frame[n].Re * c
			im += frame[n].Re * s
		}
		want := re*re + im*im
		assert.InDelta(t, want, energies[i], 1e-6*math.Max(want, 1))
	}
}

func TestGoertzelIgnoresTrailingSamples(t *testing.T) {
	g := NewGoertzelBank()

	var a, b Frame
	for n := range a {
		a[n] = Complex{Re: 1000 * math.Sin(2*math.Pi*941*float64(n)/SampleRate)}
	}
	b = a
	for n := GoertzelWindow; n < FrameSize; n++ {
		b[n] = Complex{Re: 1e9}
	}

	var ea, eb [ToneCount]float64
	g.Energies(a[:], &ea)
	g.Energies(b[:], &eb)
	assert.Equal(t, ea, eb)
}

func TestGoertzelZeroAllocations(t *testing.T) {
	g := NewGoertzelBank()
	var frame Frame
	var energies [ToneCount]float64

	allocs := testing.AllocsPerRun(100, func() {
		g.Energies(frame[:], &energies)
	})

	if allocs > 0 {
		t.Errorf("GoertzelBank.Energies allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func TestFrequencyGroups(t *testing.T) {
	assert.Equal(t, [GroupSize]int{697, 770, 852, 941}, LowFrequencies())
	assert.Equal(t, [GroupSize]int{1209, 1336, 1477, 1633}, HighFrequencies())
}
