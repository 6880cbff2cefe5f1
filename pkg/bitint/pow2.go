// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size analysis
windows. Transform plans only exist for power-of-two lengths, so every
window size passes through IsPowerOfTwo before anything is allocated.

Usage:

	// Reject a window size the transform cannot plan for
	if !bitint.IsPowerOfTwo(size) {
		return fmt.Errorf("try %d", bitint.NextPowerOfTwo(size))
	}

	// Bins per analysis window
	bits := bitint.Log2(4096) // 12

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of two map to themselves: for 8, bits.Len(7) is 3 and 1<<3 is 8.
Without the subtraction 8 would be doubled to 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Non-positive
// sizes return 1.
//
//	Input  Output
//	4096   4096
//	5000   8192
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of two
// has one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the base-2 logarithm of a power of two. For other inputs it
// returns the floor of the logarithm; for n <= 0 it returns -1.
func Log2(n int) int {
	if n <= 0 {
		return -1
	}
	return bits.Len(uint(n)) - 1
}
