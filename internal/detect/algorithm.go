// SPDX-License-Identifier: MIT
package detect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned when parsing an algorithm name fails.
var ErrUnknownAlgorithm = errors.New("unknown detection algorithm")

// Algorithm selects the spectral engine and its detector.
type Algorithm uint8

const (
	FFT Algorithm = iota
	Goertzel
)

// Algorithms lists every selectable algorithm in menu order.
var Algorithms = []Algorithm{FFT, Goertzel}

func (a Algorithm) String() string {
	switch a {
	case FFT:
		return "fft"
	case Goertzel:
		return "goertzel"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// Valid reports whether a names a known algorithm.
func (a Algorithm) Valid() bool {
	return a == FFT || a == Goertzel
}

// ParseAlgorithm accepts the names printed by String, case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fft":
		return FFT, nil
	case "goertzel", "gtzl":
		return Goertzel, nil
	default:
		return FFT, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// MarshalText implements encoding.TextMarshaler so the algorithm is stored
// by name in YAML and JSON.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
