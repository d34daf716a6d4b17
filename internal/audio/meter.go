// SPDX-License-Identifier: MIT
package audio

import "math"

// peakAmplitude returns the largest absolute sample without branching in
// the loop. MinInt32 saturates to MaxInt32.
func peakAmplitude(buffer []int32) int32 {
	var peak int32
	for _, sample := range buffer {
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		amplitude ^= amplitude >> 31
		diff := amplitude - peak
		peak += diff &^ (diff >> 31)
	}
	return peak
}

// InputPeak returns the peak level of the last input buffer in [0, 1].
func (e *Engine) InputPeak() float64 {
	return float64(e.peak.Load()) / float64(math.MaxInt32)
}

// InputPeakDBFS returns the peak level of the last input buffer in dBFS.
func (e *Engine) InputPeakDBFS() float64 {
	peak := e.InputPeak()
	if peak == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(peak)
}
