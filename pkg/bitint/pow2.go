// SPDX-License-Identifier: MIT

/*
Package bitint provides the power-of-2 helpers used to size FFTs and the
sample history rings. All functions are O(1), allocation free and safe to
call from the audio callback.

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of 2 map to themselves:

	size  size-1  bits.Len  result
	8     0111    3         8
	9     1000    4         16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Sizes below 1
// return 1.
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Mask returns size-1 for a power-of-2 size, for use as an index mask into a
// ring of that size. It panics if size is not a power of 2.
func Mask(size int) int {
	if !IsPowerOfTwo(size) {
		panic("bitint: ring size must be a power of 2")
	}
	return size - 1
}
