package scan

import (
	"math"
)

// floatTolerance is the absolute tolerance used when matching float kinds.
// Operator-guessed quantities are often stored with noise; the fixed 1e-3
// is a UX choice, not a numerically justified one.
const floatTolerance = 1e-3

// Equal reports whether two values of the same kind match under the
// scanner's equality policy: bit-exact for integer kinds, absolute
// tolerance for float kinds. NaN never matches anything.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind.Float() {
		return math.Abs(a.Float()-b.Float()) <= floatTolerance
	}
	return a.bits == b.bits
}
