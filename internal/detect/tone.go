// SPDX-License-Identifier: MIT
/*
Package detect reduces the output of a spectral engine to a pair of DTMF
tones, one per frequency group.

Each group resolves to exactly one of three states:

- Silence: nothing above threshold
- Ambiguous: more than one canonical frequency present (multitone)
- Detected: a single canonical frequency

Two interchangeable Detector variants exist, one per engine. Both are pure
functions of the Frame they are given and keep only pre-allocated scratch.
*/
package detect

import (
	"fmt"
	"strconv"
)

// Kind discriminates the state of a Tone.
type Kind uint8

const (
	KindSilence Kind = iota
	KindAmbiguous
	KindDetected
)

// Sentinel encodings used on the wire and in logs.
const (
	SilenceSentinel   = 0
	AmbiguousSentinel = -1
)

// Tone is the per-group detection result.
type Tone struct {
	kind Kind
	freq int
}

// Silence returns a Tone carrying no frequency.
func Silence() Tone {
	return Tone{kind: KindSilence}
}

// Ambiguous returns a Tone marking more than one frequency in the group.
func Ambiguous() Tone {
	return Tone{kind: KindAmbiguous}
}

// Detected returns a Tone for freq Hz.
func Detected(freq int) Tone {
	return Tone{kind: KindDetected, freq: freq}
}

// FromSentinel decodes the 0 / -1 / frequency encoding.
func FromSentinel(v int) Tone {
	switch {
	case v == SilenceSentinel:
		return Silence()
	case v < 0:
		return Ambiguous()
	default:
		return Detected(v)
	}
}

func (t Tone) Kind() Kind {
	return t.kind
}

// Frequency returns the detected frequency, or 0 for any other kind.
func (t Tone) Frequency() int {
	if t.kind != KindDetected {
		return 0
	}
	return t.freq
}

func (t Tone) IsSilence() bool {
	return t.kind == KindSilence
}

func (t Tone) IsAmbiguous() bool {
	return t.kind == KindAmbiguous
}

// Sentinel renders the tone as 0 (silence), -1 (ambiguous) or the frequency.
func (t Tone) Sentinel() int {
	switch t.kind {
	case KindAmbiguous:
		return AmbiguousSentinel
	case KindDetected:
		return t.freq
	default:
		return SilenceSentinel
	}
}

func (t Tone) String() string {
	switch t.kind {
	case KindAmbiguous:
		return "ambiguous"
	case KindDetected:
		return strconv.Itoa(t.freq) + "Hz"
	default:
		return "silence"
	}
}

// Pair is the low (row) and high (column) group result of one Frame.
type Pair struct {
	Low  Tone
	High Tone
}

// Sentinels returns the pair in its {low, high} integer encoding.
func (p Pair) Sentinels() (int, int) {
	return p.Low.Sentinel(), p.High.Sentinel()
}

func (p Pair) String() string {
	return fmt.Sprintf("{%s, %s}", p.Low, p.High)
}
