// Package cmn provides the configuration, error, and small shared-utility
// surface used across the simulator — geometry validation, typed errors,
// and address-math helpers that don't belong to any one protocol or
// component.
package cmn

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns floor(log2(n)) for a positive power-of-two n. Callers must
// check IsPowerOfTwo first; Log2 does not validate.
func Log2(n int) int {
	return bits.TrailingZeros(uint(n))
}
