// SPDX-License-Identifier: MIT
/*
Package dsp holds the fixed signal-processing constants of the decoder and the
two spectral engines that run on a completed Frame:

- FFT: radix-2 iterative transform producing the full N-point spectrum
- GoertzelBank: eight second-order resonators tuned to the DTMF frequencies

Both engines pre-allocate everything at construction time; neither allocates,
locks or blocks once built, so they can run once per Frame on the main loop
without touching the garbage collector.
*/
package dsp

const (
	SampleRate     = 8000 // Hz, fixed by the acquisition tick
	FrameSize      = 512  // Samples per Frame (64ms at 8kHz)
	GoertzelWindow = 508  // Samples used by the Goertzel bank, the last 4 are discarded
	ToneCount      = 8    // Canonical DTMF frequencies, 4 low + 4 high
	GroupSize      = ToneCount / 2
)

// Frequencies lists the canonical DTMF frequencies in Hz, low group first.
// Engines and detectors index their outputs in this order.
var Frequencies = [ToneCount]int{697, 770, 852, 941, 1209, 1336, 1477, 1633}

// LowFrequencies returns the row (low group) frequencies.
func LowFrequencies() [GroupSize]int {
	return [GroupSize]int(Frequencies[:GroupSize])
}

// HighFrequencies returns the column (high group) frequencies.
func HighFrequencies() [GroupSize]int {
	return [GroupSize]int(Frequencies[GroupSize:])
}

// Frame is one full sampling window of calibrated voltages. Acquired samples
// always carry Im == 0.
type Frame [FrameSize]Complex
