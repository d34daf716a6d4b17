// SPDX-License-Identifier: MIT
package decoder

// Capacity is the number of symbols a Sequence holds before overflowing.
const Capacity = 98

// Sequence is the bounded, append-only symbol buffer. Its storage is fixed at
// Capacity so appending never allocates.
type Sequence struct {
	buf [Capacity]byte
	n   int
}

// Append adds key and reports whether there was room for it. A full
// Sequence is left untouched.
func (s *Sequence) Append(key byte) bool {
	if s.n >= Capacity {
		return false
	}
	s.buf[s.n] = key
	s.n++
	return true
}

func (s *Sequence) Len() int {
	return s.n
}

func (s *Sequence) Full() bool {
	return s.n >= Capacity
}

// Bytes returns a read-only view of the accepted symbols. The slice aliases
// the Sequence and is only valid until the next Append or Reset.
func (s *Sequence) Bytes() []byte {
	return s.buf[:s.n]
}

func (s *Sequence) String() string {
	return string(s.buf[:s.n])
}

func (s *Sequence) Reset() {
	s.n = 0
}
