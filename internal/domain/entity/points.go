package entity

import "math"

// fixedPointScale keeps six decimal places; CBS reports one.
const fixedPointScale = 1e6

// Fixed converts points to a fixed-point integer so that totals summed from
// fractional values compare equal when they print equal.
func Fixed(points float64) int64 {
	return int64(math.Round(points * fixedPointScale))
}

// Equal reports whether two point values tie.
func Equal(a, b float64) bool { return Fixed(a) == Fixed(b) }
