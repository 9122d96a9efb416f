package common

import (
	"strconv"
	"strings"
)

// Round1 rounds v to one decimal place. The decimal conversion rounds the
// exact binary value with ties to even, so 19.95 (stored just below) gives
// 19.9 rather than 20.
func Round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
