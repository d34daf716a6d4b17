// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"

	"dtmf/internal/dsp"
)

// RecordingTransport implements the Transport interface for testing. Every
// payload passed to Send is kept for later inspection instead of transmitted.
type RecordingTransport struct {
	mu     sync.Mutex
	sent   []any
	closed bool
}

// Send stores the payload.
func (r *RecordingTransport) Send(data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, data)
	return nil
}

// Close marks the transport closed.
func (r *RecordingTransport) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Sent returns a copy of every payload received so far.
func (r *RecordingTransport) Sent() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.sent))
	copy(out, r.sent)
	return out
}

// Closed reports whether Close was called.
func (r *RecordingTransport) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// GenerateDualTone returns size samples of low+high Hz sine waves, each with
// the given peak amplitude.
func GenerateDualTone(size int, sampleRate, low, high, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude*math.Sin(2*math.Pi*low*t) +
			amplitude*math.Sin(2*math.Pi*high*t)
	}
	return buffer
}

// GenerateSineWave returns size samples of a single sine wave.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// DualToneFrame synthesizes one Frame at the decoder sample rate.
func DualToneFrame(low, high, amplitude float64) *dsp.Frame {
	var frame dsp.Frame
	for i, v := range GenerateDualTone(dsp.FrameSize, dsp.SampleRate, low, high, amplitude) {
		frame[i] = dsp.Complex{Re: v}
	}
	return &frame
}

// ToRaw maps voltages back onto raw ADC readings so that the sampler's
// conversion raw*maxAmplitude/fullScale - maxAmplitude/2 recovers them.
// Readings are clamped to [0, fullScale].
func ToRaw(voltages []float64, maxAmplitude float64, fullScale int) []int {
	raw := make([]int, len(voltages))
	half := maxAmplitude / 2
	for i, v := range voltages {
		r := int(math.Round((v + half) * float64(fullScale) / maxAmplitude))
		raw[i] = min(max(r, 0), fullScale)
	}
	return raw
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
