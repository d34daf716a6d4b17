// SPDX-License-Identifier: MIT
package detect

import (
	"fmt"
	"math"

	"dtmf/internal/dsp"
)

const (
	// FFTTolerance is how far (Hz) a bin may sit from a canonical frequency
	// and still count for it. Bins are 15.625 Hz wide at 512 points.
	FFTTolerance = 30.0
	// FFTThreshold is the minimum bin magnitude of a candidate.
	FFTThreshold = 40000.0
)

// FFTDetector runs the radix-2 transform and scans the positive half of the
// spectrum for DTMF candidates.
type FFTDetector struct {
	fft    *dsp.FFT
	levels [dsp.ToneCount]float64
}

func NewFFTDetector() (*FFTDetector, error) {
	f, err := dsp.NewFFT(dsp.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create fft engine: %w", err)
	}
	return &FFTDetector{fft: f}, nil
}

func (d *FFTDetector) Algorithm() Algorithm {
	return FFT
}

func (d *FFTDetector) Detect(frame *dsp.Frame) Pair {
	spectrum := d.fft.Transform(frame[:])
	d.captureLevels(spectrum)
	return ReduceSpectrum(spectrum, dsp.SampleRate)
}

func (d *FFTDetector) Levels(out *[dsp.ToneCount]float64) {
	*out = d.levels
}

// captureLevels keeps the magnitude of the bin nearest each canonical frequency.
func (d *FFTDetector) captureLevels(spectrum []dsp.Complex) {
	n := float64(len(spectrum))
	for i, freq := range dsp.Frequencies {
		bin := int(math.Round(float64(freq) * n / dsp.SampleRate))
		d.levels[i] = spectrum[bin].Abs()
	}
}

// ReduceSpectrum applies the FFT tone rule to bins [0, len/2) of spectrum.
// Bins are visited in increasing frequency and each group keeps a running
// held frequency and maximum amplitude:
//
//   - a candidate is taken when nothing is held yet, or when it is louder
//     than the held maximum and within tolerance of the held frequency
//   - a candidate for another canonical frequency lying farther than the
//     tolerance from the held one makes the group ambiguous
//
// Once ambiguous, a group stays ambiguous for the rest of the scan.
func ReduceSpectrum(spectrum []dsp.Complex, sampleRate float64) Pair {
	n := len(spectrum)
	low, high := dsp.LowFrequencies(), dsp.HighFrequencies()
	var lowHeld, highHeld int
	var lowMax, highMax float64

	for i := 0; i < n/2; i++ {
		freq := sampleRate * float64(i) / float64(n)
		amp := spectrum[i].Abs()

		lowHeld, lowMax = scanGroup(&low, freq, amp, lowHeld, lowMax)
		highHeld, highMax = scanGroup(&high, freq, amp, highHeld, highMax)
	}

	return Pair{Low: FromSentinel(lowHeld), High: FromSentinel(highHeld)}
}

// scanGroup updates one group's held sentinel (0, -1 or a frequency) and
// maximum for a single bin.
func scanGroup(group *[dsp.GroupSize]int, freq, amp float64, held int, maxAmp float64) (int, float64) {
	for _, f := range group {
		if math.Abs(freq-float64(f)) > FFTTolerance || amp <= FFTThreshold {
			continue
		}

		switch {
		case held == SilenceSentinel || (amp > maxAmp && math.Abs(freq-float64(held)) <= FFTTolerance):
			maxAmp = amp
			held = f
		case held != f && math.Abs(freq-float64(held)) > FFTTolerance:
			held = AmbiguousSentinel
		}
	}
	return held, maxAmp
}
