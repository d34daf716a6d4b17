// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dtmf/internal/acquire"
	"dtmf/internal/decoder"
	"dtmf/internal/dsp"
)

// MinGap is the shortest pause that always leaves one silent Frame between
// two tones, so repeated keys are not merged by the debounce.
var MinGap = time.Duration(2*dsp.FrameSize) * time.Second / SampleRate

// ErrGapTooShort is returned by Sequence.Raw for gaps below MinGap.
var ErrGapTooShort = errors.New("gap between tones is too short")

// Sequence describes a DTMF test signal.
type Sequence struct {
	Keys      string        // Keypad symbols to dial
	Tone      time.Duration // Duration of each tone
	Gap       time.Duration // Silence after each tone
	LeadIn    time.Duration // Silence before the first tone
	Amplitude float64       // Peak amplitude of each sine, in volts
}

// DefaultSequence returns a signal both detectors decode reliably.
func DefaultSequence(keys string) Sequence {
	return Sequence{
		Keys:      keys,
		Tone:      150 * time.Millisecond,
		Gap:       150 * time.Millisecond,
		LeadIn:    200 * time.Millisecond,
		Amplitude: 1000,
	}
}

func samples(d time.Duration) int {
	return int(d * SampleRate / time.Second)
}

// Raw synthesizes the signal as raw readings for settings.
func (s Sequence) Raw(settings acquire.Settings) ([]int, error) {
	if s.Tone <= 0 {
		return nil, fmt.Errorf("tone duration must be positive, got %s", s.Tone)
	}
	if s.Gap < MinGap {
		return nil, fmt.Errorf("%w: %s < %s", ErrGapTooShort, s.Gap, MinGap)
	}
	if s.LeadIn < 0 {
		return nil, fmt.Errorf("lead-in must not be negative, got %s", s.LeadIn)
	}
	if s.Amplitude <= 0 || 2*s.Amplitude > settings.MaxAmplitude/2 {
		return nil, fmt.Errorf("amplitude %.1f does not fit in ±%.1f", s.Amplitude, settings.MaxAmplitude/2)
	}

	tone, gap, lead := samples(s.Tone), samples(s.Gap), samples(s.LeadIn)
	raws := make([]int, 0, lead+len(s.Keys)*(tone+gap))
	quiet := rawOf(settings, 0)

	for range lead {
		raws = append(raws, quiet)
	}
	for i := 0; i < len(s.Keys); i++ {
		low, high, ok := decoder.Frequencies(s.Keys[i])
		if !ok {
			return nil, fmt.Errorf("%q is not a keypad symbol", s.Keys[i])
		}
		for n := range tone {
			t := float64(n) / SampleRate
			v := s.Amplitude*math.Sin(2*math.Pi*float64(low)*t) +
				s.Amplitude*math.Sin(2*math.Pi*float64(high)*t)
			raws = append(raws, rawOf(settings, v))
		}
		for range gap {
			raws = append(raws, quiet)
		}
	}
	return raws, nil
}

// rawOf inverts Settings.Voltage, clamped to the converter range.
func rawOf(settings acquire.Settings, voltage float64) int {
	r := int(math.Round((voltage + settings.MaxAmplitude/2) * float64(settings.RawFullScale) / settings.MaxAmplitude))
	return min(max(r, 0), settings.RawFullScale)
}
