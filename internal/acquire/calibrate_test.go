// SPDX-License-Identifier: MIT
package acquire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// observeMask feeds a reading whose estimate is exactly 2*raw/v = mask with
// the default settings.
func observeMask(c *Calibrator, mask float64) Step {
	return c.Observe(1, 2/mask)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mask float64
		want Band
	}{
		{-1, 0},
		{-2, 0},
		{-3, 1},
		{-5, 1},
		{-40, 2},
		{-100, 3},
		{-200, BandNone},
		{-320, BandNone},
		{-321, BandCentre},
		{321, BandCentre},
		{math.Inf(1), BandCentre},
		{200, BandNone},
		{100, 5},
		{51, 5},
		{50, 6},
		{8, 6},
		{7, 7},
		{4, 8},
		{2.5, 8},
		{2, BandNone},
		{0, BandNone},
		{math.NaN(), BandNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.mask), "Classify(%v)", tt.mask)
	}
}

func TestSettingsVoltage(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, -4000.0, s.Voltage(0))
	assert.InDelta(t, 4000.0, s.Voltage(4095), 1e-9)
	assert.InDelta(t, 0.9768, s.Voltage(2048), 1e-4)
	assert.NoError(t, s.Validate())

	s.RawFullScale = 0
	assert.Error(t, s.Validate())

	s.RawFullScale = MaxRawFullScale
	assert.NoError(t, s.Validate())
	s.RawFullScale = MaxRawFullScale + 1
	assert.ErrorContains(t, s.Validate(), "at most")
}

func TestCalibratorStraddle(t *testing.T) {
	c := NewCalibrator(DefaultSettings())

	// The previous estimate starts at zero, so a first reading inside the
	// span counts as crossing.
	assert.Equal(t, StepStraddle, c.Observe(100, 1))
	assert.Equal(t, StepStraddle, c.Observe(100, -1))
	assert.Equal(t, uint64(2), c.Straddles())
	assert.Equal(t, BandNone, c.Band())
	assert.True(t, math.IsNaN(c.Mask()))

	assert.Equal(t, StepBand, c.Observe(100, 0.5))
	assert.Equal(t, BandCentre, c.Band())
	assert.InDelta(t, 400, c.Mask(), 1e-9)
}

func TestCalibratorBandEdges(t *testing.T) {
	c := NewCalibrator(DefaultSettings())

	steps := []struct {
		mask float64
		want Step
		band Band
	}{
		{1000, StepBand, BandCentre},
		{1000, StepIdle, BandCentre},
		{-1000, StepIdle, BandCentre}, // both centre sides share one latch
		{-75, StepBand, 3},
		{-75, StepIdle, 3},
		{-200, StepIdle, 3}, // gap keeps the latch
		{-75, StepIdle, 3},
		{-3, StepBand, 1},
		{3, StepStraddle, 1},
		{-75, StepStraddle, 1},
		{-75, StepBand, 3},
	}

	for i, s := range steps {
		assert.Equal(t, s.want, observeMask(c, s.mask), "step %d (mask %v)", i, s.mask)
		assert.Equal(t, s.band, c.Band(), "step %d", i)
	}
	assert.Equal(t, uint64(4), c.Reports())
}

func TestCalibratorConfirmDebounce(t *testing.T) {
	settings := DefaultSettings()
	settings.ConfirmTicks = 3
	c := NewCalibrator(settings)

	require.Equal(t, StepBand, c.Observe(2048, settings.Voltage(2048)))

	// Without a confirmation nothing finalizes.
	for range 10 {
		require.Equal(t, StepIdle, c.Observe(2048, settings.Voltage(2048)))
	}
	assert.False(t, c.Calibrated())

	// Reports during the debounce count towards it.
	c.Confirm()
	assert.True(t, c.Confirming())
	assert.Equal(t, StepBand, observeMask(c, 100))
	assert.Equal(t, StepStraddle, observeMask(c, -100))
	assert.Equal(t, StepBand, observeMask(c, -1000))

	// The debounce has elapsed; each report defers finalization by one tick.
	assert.Equal(t, StepBand, observeMask(c, -100))
	assert.Equal(t, StepStraddle, observeMask(c, 100))
	assert.Equal(t, StepBand, observeMask(c, 1000))
	assert.Equal(t, StepCalibrated, observeMask(c, 1000))

	assert.True(t, c.Calibrated())
	assert.False(t, c.Confirming())
	assert.InDelta(t, 1000, c.Mask(), 1e-9)

	// Calibration is final.
	assert.Equal(t, StepIdle, observeMask(c, 3))
	assert.InDelta(t, 1000, c.Mask(), 1e-9)
}

func TestCalibratorFinalizesOnBusyLine(t *testing.T) {
	settings := DefaultSettings()
	c := NewCalibrator(settings)
	c.Confirm()

	// A quiet line with a blip every 300 ticks, shorter than the debounce.
	quiet := settings.Voltage(2048)
	calibratedAt := -1
	for i := 0; i < 5*settings.ConfirmTicks && calibratedAt < 0; i++ {
		var step Step
		switch i % 300 {
		case 0:
			step = c.Observe(3000, settings.Voltage(3000))
		case 1:
			step = c.Observe(1000, settings.Voltage(1000))
		default:
			step = c.Observe(2048, quiet)
		}
		if step == StepCalibrated {
			calibratedAt = i
		}
	}

	require.True(t, c.Calibrated(), "confirmed calibrator never finalized (%d straddles)", c.Straddles())
	assert.Greater(t, c.Straddles(), uint64(0))
	assert.GreaterOrEqual(t, calibratedAt, settings.ConfirmTicks-1)
	assert.Less(t, calibratedAt, settings.ConfirmTicks+300)
}

func TestCalibratorCancelConfirm(t *testing.T) {
	settings := DefaultSettings()
	settings.ConfirmTicks = 4
	c := NewCalibrator(settings)

	c.Confirm()
	observeMask(c, 1000)
	observeMask(c, 1000)
	c.CancelConfirm()
	for range 5 {
		observeMask(c, 1000)
	}
	assert.False(t, c.Calibrated())
}

func TestCalibratorAutoConfirm(t *testing.T) {
	settings := DefaultSettings()
	settings.AutoConfirm = true
	settings.ConfirmTicks = 1
	c := NewCalibrator(settings)

	assert.Equal(t, StepBand, observeMask(c, 1000))
	assert.Equal(t, StepCalibrated, observeMask(c, 1000))
}

func TestIndicator(t *testing.T) {
	tests := []struct {
		mask float64
		want string
	}{
		{-1, "*    O     "},
		{-3, " *   O     "},
		{-120, "   * O     "},
		{-300, "    *O     "},
		{5000, "     *     "},
		{-5000, "     *     "},
		{300, "     O*    "},
		{100, "     O *   "},
		{20, "     O  *  "},
		{6, "     O   * "},
		{1, "     O    *"},
		{0, "     O     "},
		{math.NaN(), "     O     "},
	}

	for _, tt := range tests {
		got := Indicator(tt.mask)
		assert.Equal(t, tt.want, got, "Indicator(%v)", tt.mask)
		assert.Len(t, got, IndicatorWidth)
	}
}
