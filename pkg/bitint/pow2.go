// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-2 helpers used to size and stage the
radix-2 FFT.

Design Principles:
- Zero Allocations: All operations use stack memory only
- Predictable Performance: O(1) constant time operations
- Real-Time Safe: No locks, syscalls, or blocking operations

Usage:

	// Verify the FFT size is valid
	if !bitint.IsPowerOfTwo(n) { ... }

	// Number of butterfly stages for an n-point transform
	stages := bitint.Log2(n) // 512 -> 9

----------------------------------------------------------------------

What this code does:

	IsPowerOfTwo relies on (n & (n-1)) == 0. A power of 2 has exactly
	one bit set, subtracting 1 sets every lower bit and clears that
	one, so the AND is zero only for powers of 2.

	Log2 returns the position of the highest set bit. For a power of
	2 this is exactly the exponent:

	- For input 512 (binary 10 0000 0000):
	  bits.Len(512) = 10
	  10 - 1 = 9 (512 = 2^9)

	For other values the result is floor(log2(n)), callers that need
	an exact stage count must check IsPowerOfTwo first.
*/
package bitint

import "math/bits"

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
//
// Examples:
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
//	-8     false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns floor(log2(n)) for n > 0 and -1 otherwise.
//
// Examples:
//
//	Input  Output
//	1      0
//	512    9
//	1000   9
//	0      -1
func Log2(n int) int {
	if n <= 0 {
		return -1
	}
	return bits.Len(uint(n)) - 1
}
