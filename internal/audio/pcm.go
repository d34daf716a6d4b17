// SPDX-License-Identifier: MIT
package audio

import (
	"math"

	"dtmf/internal/dsp"
)

const (
	// SampleRate is the only rate the decoder accepts.
	SampleRate = dsp.SampleRate
	// Channels is the number of input channels opened on the device.
	Channels = 1
)

// RawFromPCM maps a full-range signed 32-bit sample onto a raw reading in
// [0, fullScale], the way an unsigned converter of fullScale+1 steps would
// see it. Zero lands on the midpoint. fullScale must not exceed
// acquire.MaxRawFullScale.
func RawFromPCM(sample int32, fullScale int) int {
	return int((int64(sample) - math.MinInt32) * int64(fullScale+1) >> 32)
}

// PCMFromRaw is the inverse of RawFromPCM: it returns the lowest sample
// mapping onto raw.
func PCMFromRaw(raw, fullScale int) int32 {
	raw = min(max(raw, 0), fullScale)
	scale := int64(fullScale + 1)
	return int32((int64(raw)<<32+scale-1)/scale + math.MinInt32)
}

// widen scales a decoded sample of bitDepth bits to 32 bits. 8-bit WAV data
// is unsigned.
func widen(v, bitDepth int) int32 {
	if bitDepth == 8 {
		v -= 128
	}
	return int32(v << (32 - bitDepth))
}

// narrow is the inverse of widen for signed depths.
func narrow(sample int32, bitDepth int) int {
	return int(sample >> (32 - bitDepth))
}
