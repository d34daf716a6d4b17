// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"time"
)

const (
	// ScrollWidth is the number of symbols shown at once.
	ScrollWidth = 16
	// ScrollGuard is the minimum time between two honoured scroll presses.
	ScrollGuard = 333 * time.Millisecond
	// ScrollResume is how long a manual position is kept before the view
	// follows the newest symbols again.
	ScrollResume = 3 * time.Second
)

// ErrOutOfBounds is returned when scrolling past either end of the sequence.
var ErrOutOfBounds = errors.New("scroll out of bounds")

// Scroller keeps a ScrollWidth window over the sequence. By default the
// window follows the tail; left and right presses pin it until ScrollResume
// passes without a press.
type Scroller struct {
	offset    int
	manual    bool
	lastPress time.Time
}

// Window returns the visible part of seq.
func (s *Scroller) Window(seq string, now time.Time) string {
	if !s.pinned(now) {
		return seq[max(0, len(seq)-ScrollWidth):]
	}
	start := min(s.offset, max(0, len(seq)-ScrollWidth))
	return seq[start:min(len(seq), start+ScrollWidth)]
}

// Offset returns the index of the first visible symbol.
func (s *Scroller) Offset(length int, now time.Time) int {
	if !s.pinned(now) {
		return max(0, length-ScrollWidth)
	}
	return min(s.offset, max(0, length-ScrollWidth))
}

// Pinned reports whether a manual position is in effect.
func (s *Scroller) Pinned(now time.Time) bool {
	return s.pinned(now)
}

func (s *Scroller) pinned(now time.Time) bool {
	return s.manual && now.Sub(s.lastPress) < ScrollResume
}

// Left moves the window one symbol towards the start of a sequence of the
// given length. Presses inside ScrollGuard are ignored.
func (s *Scroller) Left(length int, now time.Time) error {
	return s.move(-1, length, now)
}

// Right moves the window one symbol towards the end.
func (s *Scroller) Right(length int, now time.Time) error {
	return s.move(1, length, now)
}

func (s *Scroller) move(delta, length int, now time.Time) error {
	if s.manual && now.Sub(s.lastPress) < ScrollGuard {
		return nil
	}

	current := s.Offset(length, now)
	s.manual = true
	s.lastPress = now
	s.offset = current

	next := current + delta
	if next < 0 || next > max(0, length-ScrollWidth) {
		return ErrOutOfBounds
	}
	s.offset = next
	return nil
}

// Reset drops any manual position.
func (s *Scroller) Reset() {
	*s = Scroller{}
}
