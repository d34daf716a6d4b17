// SPDX-License-Identifier: MIT
package acquire

import (
	"math"
	"sync/atomic"
)

// Band is a coarse position of the midpoint estimate. Reports are
// edge-triggered on band changes; readings between bands report nothing.
type Band int8

const (
	BandNone Band = -1
	// BandCentre covers both |mask| > 320 sides; the estimate only grows
	// that large when the reading sits close to the midpoint.
	BandCentre Band = 4
)

// bandEdges lists the ten calibration bands in display order. Bands 4 and 5
// both resolve to BandCentre.
var bandEdges = [...]struct {
	contains func(m float64) bool
	band     Band
}{
	{func(m float64) bool { return m < 0 && m >= -2 }, 0},
	{func(m float64) bool { return m < -2 && m >= -5 }, 1},
	{func(m float64) bool { return m < -5 && m >= -50 }, 2},
	{func(m float64) bool { return m < -50 && m >= -100 }, 3},
	{func(m float64) bool { return m < -320 }, BandCentre},
	{func(m float64) bool { return m > 320 }, BandCentre},
	{func(m float64) bool { return m > 50 && m <= 100 }, 5},
	{func(m float64) bool { return m > 7 && m <= 50 }, 6},
	{func(m float64) bool { return m > 4 && m <= 7 }, 7},
	{func(m float64) bool { return m > 2 && m <= 4 }, 8},
}

// Classify returns the band containing mask, BandNone for gaps and NaN.
func Classify(mask float64) Band {
	for _, e := range bandEdges {
		if e.contains(mask) {
			return e.band
		}
	}
	return BandNone
}

// Step is the outcome of one calibration tick.
type Step uint8

const (
	StepIdle Step = iota
	StepBand
	StepStraddle
	StepCalibrated
)

// Calibrator estimates the midpoint mask before capture starts. Observe runs
// on the tick goroutine only; every accessor is safe from any goroutine.
type Calibrator struct {
	settings Settings

	// Tick-owned.
	lastMask     float64
	latched      Band
	confirmTicks int

	confirm    atomic.Bool
	calibrated atomic.Bool
	band       atomic.Int32
	mask       atomic.Uint64 // float64 bits of the last reported estimate
	straddles  atomic.Uint64
	reports    atomic.Uint64
}

func NewCalibrator(settings Settings) *Calibrator {
	c := &Calibrator{settings: settings, latched: BandNone}
	c.band.Store(int32(BandNone))
	c.mask.Store(math.Float64bits(math.NaN()))
	if settings.AutoConfirm {
		c.confirm.Store(true)
	}
	return c
}

// Estimate computes the midpoint mask of one reading.
func (c *Calibrator) Estimate(raw int, voltage float64) float64 {
	return c.settings.MaxAmplitude * float64(raw) / (c.settings.halfAmplitude() * voltage)
}

// Observe feeds one reading. A reading whose estimate crosses zero within
// the straddle span from the previous one means the line is still carrying
// a signal: it is reported and nothing else happens on that tick. Otherwise
// a band change is reported. A confirmation is debounced by counting ticks
// since it was raised, straddles included; once the count is reached the
// first tick that reports nothing finalizes.
func (c *Calibrator) Observe(raw int, voltage float64) Step {
	if c.calibrated.Load() {
		return StepIdle
	}

	if !c.confirm.Load() {
		c.confirmTicks = 0
	} else if c.confirmTicks < c.settings.ConfirmTicks {
		c.confirmTicks++
	}

	m := c.Estimate(raw, voltage)
	span := c.settings.StraddleSpan
	last := c.lastMask

	if (last >= 0 && last <= span && m <= 0 && m >= -span) ||
		(last <= 0 && last >= -span && m >= 0 && m <= span) {
		c.lastMask = m
		c.straddles.Add(1)
		return StepStraddle
	}
	c.lastMask = m

	if b := Classify(m); b != BandNone && b != c.latched {
		c.latched = b
		c.mask.Store(math.Float64bits(m))
		c.band.Store(int32(b))
		c.reports.Add(1)
		return StepBand
	}

	if !c.confirm.Load() || c.confirmTicks < c.settings.ConfirmTicks {
		return StepIdle
	}

	c.mask.Store(math.Float64bits(m))
	c.calibrated.Store(true)
	return StepCalibrated
}

// Confirm raises the external confirmation. It takes effect after the
// configured number of ticks, on the first one without a report.
func (c *Calibrator) Confirm() {
	c.confirm.Store(true)
}

// CancelConfirm drops a pending confirmation that has not completed yet.
func (c *Calibrator) CancelConfirm() {
	c.confirm.Store(false)
}

func (c *Calibrator) Confirming() bool {
	return c.confirm.Load() && !c.calibrated.Load()
}

func (c *Calibrator) Calibrated() bool {
	return c.calibrated.Load()
}

// Band returns the last reported band.
func (c *Calibrator) Band() Band {
	return Band(c.band.Load())
}

// Mask returns the last reported estimate, or the final midpoint mask once
// calibrated. NaN until the first report.
func (c *Calibrator) Mask() float64 {
	return math.Float64frombits(c.mask.Load())
}

// Straddles returns how many straddle warnings have been raised.
func (c *Calibrator) Straddles() uint64 {
	return c.straddles.Load()
}

// Reports returns how many band changes have been reported.
func (c *Calibrator) Reports() uint64 {
	return c.reports.Load()
}

// IndicatorWidth is the number of cells rendered by Indicator.
const IndicatorWidth = 11

// Indicator renders the estimate as an 11-cell gauge with the midpoint O
// fixed in the centre and * marking the estimate. A centred estimate
// replaces the O.
func Indicator(mask float64) string {
	cells := []byte("     O     ")
	pos := -1

	switch {
	case mask < 0 && mask >= -2:
		pos = 0
	case mask < -2 && mask >= -5:
		pos = 1
	case mask < -5 && mask >= -50:
		pos = 2
	case mask < -50 && mask >= -150:
		pos = 3
	case mask < -150 && mask >= -400:
		pos = 4
	case mask < -400 || mask > 400:
		pos = 5
	case mask > 150 && mask <= 400:
		pos = 6
	case mask > 50 && mask <= 150:
		pos = 7
	case mask > 4 && mask <= 7:
		pos = 9
	case mask > 5 && mask <= 50:
		pos = 8
	case mask > 0 && mask <= 4:
		pos = 10
	}

	if pos < 0 {
		return string(cells)
	}
	cells[pos] = '*'
	return string(cells)
}
