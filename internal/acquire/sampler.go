// SPDX-License-Identifier: MIT
package acquire

import (
	"sync/atomic"

	"dtmf/internal/dsp"
)

// Hand-off state word layout.
const (
	readyBit   = 1 << 0
	slotBit    = 1 << 1
	genShift   = 2
	slotShift  = 1
	slotsCount = 2
)

// View identifies one published Frame. It is obtained from Acquire and must
// be handed back to Release.
type View struct {
	Slot       int
	Generation uint64
	state      uint64
}

// Sampler fills one Frame of the arena while the main loop owns the other.
//
// The tick side writes only the active slot and publishes a completed Frame
// by storing the ready bit, the slot and a new generation in one atomic
// word. The consumer clears the ready bit when done. If the tick side
// completes a Frame while the previous one is still held, the new one is
// dropped and its slot is refilled, so the held Frame is never touched.
type Sampler struct {
	settings Settings
	cal      *Calibrator
	frames   [slotsCount]dsp.Frame

	// Tick-owned.
	active int
	fill   int

	state   atomic.Uint64
	ticks   atomic.Uint64
	dropped atomic.Uint64
	paused  atomic.Bool
	restart atomic.Bool
}

// NewSampler creates a sampler that routes readings through cal until it is
// calibrated.
func NewSampler(settings Settings, cal *Calibrator) *Sampler {
	return &Sampler{settings: settings, cal: cal}
}

// Tick consumes one raw reading. It never blocks, allocates or fails.
func (s *Sampler) Tick(raw int) {
	s.ticks.Add(1)
	if s.paused.Load() {
		return
	}
	if s.restart.Load() && s.restart.CompareAndSwap(true, false) {
		s.fill = 0
	}

	v := s.settings.Voltage(raw)
	if !s.cal.Calibrated() {
		s.cal.Observe(raw, v)
		return
	}

	s.frames[s.active][s.fill] = dsp.Complex{Re: v}
	s.fill++
	if s.fill >= dsp.FrameSize {
		s.publish()
	}
}

// publish hands the active Frame to the consumer and moves to the other slot
// as one atomic store.
func (s *Sampler) publish() {
	s.fill = 0

	cur := s.state.Load()
	if cur&readyBit != 0 {
		s.dropped.Add(1)
		return
	}

	gen := cur>>genShift + 1
	s.state.Store(gen<<genShift | uint64(s.active)<<slotShift | readyBit)
	s.active ^= 1
}

// Ready reports whether a Frame is waiting for the consumer.
func (s *Sampler) Ready() bool {
	return s.state.Load()&readyBit != 0
}

// Acquire returns the ready Frame, if any. The Frame stays owned by the
// caller until Release.
func (s *Sampler) Acquire() (View, *dsp.Frame, bool) {
	cur := s.state.Load()
	if cur&readyBit == 0 {
		return View{}, nil, false
	}
	slot := int(cur&slotBit) >> slotShift
	v := View{Slot: slot, Generation: cur >> genShift, state: cur}
	return v, &s.frames[slot], true
}

// Release returns the Frame of v to the sampler. It reports false for a
// view that is not the current ready Frame.
func (s *Sampler) Release(v View) bool {
	if v.state&readyBit == 0 {
		return false
	}
	return s.state.CompareAndSwap(v.state, v.state&^readyBit)
}

// Pause drops incoming readings until Resume.
func (s *Sampler) Pause() {
	s.paused.Store(true)
}

// Resume restarts acquisition on an empty Frame, whether or not a tick
// arrived while paused. The fill counter is reset by the next tick, which
// is its only writer.
func (s *Sampler) Resume() {
	s.restart.Store(true)
	s.paused.Store(false)
}

func (s *Sampler) Paused() bool {
	return s.paused.Load()
}

// Ticks returns the number of readings offered, including paused ones.
func (s *Sampler) Ticks() uint64 {
	return s.ticks.Load()
}

// Dropped returns how many completed Frames were discarded because the
// consumer still held the previous one.
func (s *Sampler) Dropped() uint64 {
	return s.dropped.Load()
}

// Generation returns the generation of the most recently published Frame.
func (s *Sampler) Generation() uint64 {
	return s.state.Load() >> genShift
}

// Calibrator returns the calibrator the sampler feeds.
func (s *Sampler) Calibrator() *Calibrator {
	return s.cal
}

// Settings returns the conversion parameters.
func (s *Sampler) Settings() Settings {
	return s.settings
}
