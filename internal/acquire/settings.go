// SPDX-License-Identifier: MIT
/*
Package acquire turns raw ADC readings into calibrated Frames.

The Sampler is driven by a tick context (the audio callback or a synchronous
feeder) that must never block, and is drained by a single main loop. The two
sides share a two-slot Frame arena and one atomic state word; they never own
the same slot at the same time.

Before capture starts the Calibrator observes every reading to estimate the
midpoint of the input line and waits for an external confirmation.
*/
package acquire

import (
	"errors"
	"fmt"
)

// MaxRawFullScale bounds RawFullScale so that PCM samples scaled onto the
// raw range stay within int64.
const MaxRawFullScale = 1 << 24

// Settings holds the fixed conversion and calibration parameters.
type Settings struct {
	// RawFullScale is the largest raw reading (4095 for a 12-bit ADC).
	RawFullScale int
	// MaxAmplitude is the peak-to-peak voltage range mapped onto the raw scale.
	MaxAmplitude float64
	// StraddleSpan bounds the zero-crossing check of the calibrator.
	StraddleSpan float64
	// ConfirmTicks is how many ticks a confirmation must persist before
	// the next tick without a report finalizes.
	ConfirmTicks int
	// AutoConfirm raises the confirmation at construction.
	AutoConfirm bool
}

func DefaultSettings() Settings {
	return Settings{
		RawFullScale: 4095,
		MaxAmplitude: 8000,
		StraddleSpan: 300,
		ConfirmTicks: 400,
	}
}

func (s Settings) halfAmplitude() float64 {
	return s.MaxAmplitude / 2
}

// Voltage converts a raw reading.
func (s Settings) Voltage(raw int) float64 {
	return float64(raw)*s.MaxAmplitude/float64(s.RawFullScale) - s.halfAmplitude()
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	if s.RawFullScale <= 0 {
		return fmt.Errorf("raw full scale must be positive, got %d", s.RawFullScale)
	}
	if s.RawFullScale > MaxRawFullScale {
		return fmt.Errorf("raw full scale must be at most %d, got %d", MaxRawFullScale, s.RawFullScale)
	}
	if s.MaxAmplitude <= 0 {
		return fmt.Errorf("max amplitude must be positive, got %f", s.MaxAmplitude)
	}
	if s.StraddleSpan < 0 {
		return errors.New("straddle span cannot be negative")
	}
	if s.ConfirmTicks < 0 {
		return errors.New("confirm ticks cannot be negative")
	}
	return nil
}
