// SPDX-License-Identifier: MIT
/*
Package decoder turns validated tone pairs into keypad symbols.

A Decoder owns the bounded Sequence and the debounce cell. It is driven by a
single goroutine (the main loop) and is not safe for concurrent use.
*/
package decoder

import (
	"errors"

	"dtmf/internal/detect"
)

var (
	// ErrMultitone is returned when either group holds more than one tone.
	ErrMultitone = errors.New("multitone detected")
	// ErrOverflow is returned when an accepted key does not fit the sequence.
	ErrOverflow = errors.New("sequence overflow")
)

// Outcome classifies the result of decoding one pair.
type Outcome uint8

const (
	Noise Outcome = iota
	Held
	Accepted
	Multitone
	Overflow
)

func (o Outcome) String() string {
	switch o {
	case Noise:
		return "noise"
	case Held:
		return "held"
	case Accepted:
		return "accepted"
	case Multitone:
		return "multitone"
	case Overflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Decoder debounces keys and accumulates them into a Sequence.
type Decoder struct {
	seq  Sequence
	last byte
}

func New() *Decoder {
	return &Decoder{last: NoKey}
}

// Decode processes one pair. Noise and held keys are not errors; multitone
// and overflow return ErrMultitone and ErrOverflow alongside their Outcome.
// On overflow neither the sequence nor the debounce state changes, so the
// same key keeps overflowing until Reset.
func (d *Decoder) Decode(p detect.Pair) (Outcome, error) {
	if p.Low.IsSilence() || p.High.IsSilence() {
		d.last = NoKey
		return Noise, nil
	}

	if p.Low.IsAmbiguous() || p.High.IsAmbiguous() {
		d.last = NoKey
		return Multitone, ErrMultitone
	}

	key, ok := Lookup(p.Low.Frequency(), p.High.Frequency())
	if !ok {
		d.last = NoKey
		return Noise, nil
	}

	if key == d.last {
		return Held, nil
	}

	if !d.seq.Append(key) {
		return Overflow, ErrOverflow
	}
	d.last = key
	return Accepted, nil
}

// Sequence returns the accepted symbols. See Sequence.Bytes for aliasing.
func (d *Decoder) Sequence() []byte {
	return d.seq.Bytes()
}

func (d *Decoder) Len() int {
	return d.seq.Len()
}

// Last returns the debounce cell, NoKey when nothing is held.
func (d *Decoder) Last() byte {
	return d.last
}

// Reset clears the sequence and the debounce state. It is the recovery
// path after an overflow.
func (d *Decoder) Reset() {
	d.seq.Reset()
	d.last = NoKey
}
