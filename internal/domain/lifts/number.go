package lifts

import (
	"math"
	"strconv"
	"strings"
)

// ParseWeight reads a weight cell. Spaces anywhere in the text are dropped
// first, so grouped values like "1 002.5" parse. An empty cell is 0.
func ParseWeight(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotNumeric
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

// RoundHalfKg rounds v to the nearest 0.5, with exact halves going up
// (101.25 -> 101.5, -101.25 -> -101).
func RoundHalfKg(v float64) float64 {
	// Adding 0.5 before flooring would itself round for values just below a
	// half and for odd doubles past 2^52.
	x := 2 * v
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	r := f / 2
	if r == 0 {
		return 0 // drop the sign of negative zero
	}
	return r
}

// FormatKg renders a weight with the shortest exact decimal form:
// 100 -> "100", 101.5 -> "101.5".
func FormatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
