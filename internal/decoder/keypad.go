// SPDX-License-Identifier: MIT
package decoder

import "dtmf/internal/dsp"

// NoKey is the debounce value meaning "nothing held": set initially, on
// noise and on multitone.
const NoKey byte = 'N'

var keypad = [dsp.GroupSize][dsp.GroupSize]byte{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// Keys lists all sixteen symbols in row-major keypad order.
func Keys() []byte {
	keys := make([]byte, 0, dsp.GroupSize*dsp.GroupSize)
	for _, row := range keypad {
		keys = append(keys, row[:]...)
	}
	return keys
}

// Lookup maps a row and column frequency to its keypad symbol. Frequencies
// outside the canonical set report false.
func Lookup(low, high int) (byte, bool) {
	row, col := indexOf(dsp.LowFrequencies(), low), indexOf(dsp.HighFrequencies(), high)
	if row < 0 || col < 0 {
		return 0, false
	}
	return keypad[row][col], true
}

// Frequencies returns the row and column frequency of key.
func Frequencies(key byte) (low, high int, ok bool) {
	lows, highs := dsp.LowFrequencies(), dsp.HighFrequencies()
	for r, row := range keypad {
		for c, k := range row {
			if k == key {
				return lows[r], highs[c], true
			}
		}
	}
	return 0, 0, false
}

func indexOf(group [dsp.GroupSize]int, freq int) int {
	for i, f := range group {
		if f == freq {
			return i
		}
	}
	return -1
}
