// SPDX-License-Identifier: MIT
package detect

import (
	"fmt"

	"dtmf/internal/dsp"
)

// Detector turns one completed Frame into a tone pair.
type Detector interface {
	Algorithm() Algorithm
	Detect(frame *dsp.Frame) Pair
	// Levels copies the per-frequency strength measured by the last Detect,
	// in dsp.Frequencies order. Units depend on the engine.
	Levels(out *[dsp.ToneCount]float64)
}

// New builds the detector variant for algo. The selection is made once; the
// returned detector never consults the other engine.
func New(algo Algorithm) (Detector, error) {
	switch algo {
	case FFT:
		return NewFFTDetector()
	case Goertzel:
		return NewGoertzelDetector(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(algo))
	}
}
