package markdown

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/rd2weekly/internal/domain/entity"
)

// Ordinal spells a place in English: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

// Number formats a point value the way the weekly post always has: the
// shortest exact decimal, with at least one fractional digit ("12.0").
func Number(p float64) string {
	p = float64(entity.Fixed(p)) / 1e6
	if p == 0 {
		p = 0 // no "-0.0"
	}
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Points formats a value with its unit: "1.0 point", "12.5 points".
func Points(p float64) string {
	if entity.Equal(p, 1) {
		return Number(p) + " point"
	}
	return Number(p) + " points"
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
