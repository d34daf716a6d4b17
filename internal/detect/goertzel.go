// SPDX-License-Identifier: MIT
package detect

import "dtmf/internal/dsp"

// GoertzelThreshold is the minimum resonator energy of a present tone.
const GoertzelThreshold = 1.2e9

// GoertzelDetector runs the eight-resonator bank and accepts at most one
// frequency per group.
type GoertzelDetector struct {
	bank     *dsp.GoertzelBank
	energies [dsp.ToneCount]float64
}

func NewGoertzelDetector() *GoertzelDetector {
	return &GoertzelDetector{bank: dsp.NewGoertzelBank()}
}

func (d *GoertzelDetector) Algorithm() Algorithm {
	return Goertzel
}

func (d *GoertzelDetector) Detect(frame *dsp.Frame) Pair {
	d.bank.Energies(frame[:], &d.energies)
	return ReduceEnergies(&d.energies)
}

func (d *GoertzelDetector) Levels(out *[dsp.ToneCount]float64) {
	*out = d.energies
}

// ReduceEnergies maps eight energies, low group first, to a pair. A second
// over-threshold entry in either group makes the whole pair ambiguous.
func ReduceEnergies(energies *[dsp.ToneCount]float64) Pair {
	var low, high Tone

	for i := range dsp.GroupSize {
		if energies[i] > GoertzelThreshold {
			if !low.IsSilence() {
				return Pair{Low: Ambiguous(), High: Ambiguous()}
			}
			low = Detected(dsp.Frequencies[i])
		}
		if energies[dsp.GroupSize+i] > GoertzelThreshold {
			if !high.IsSilence() {
				return Pair{Low: Ambiguous(), High: Ambiguous()}
			}
			high = Detected(dsp.Frequencies[dsp.GroupSize+i])
		}
	}

	return Pair{Low: low, High: high}
}
