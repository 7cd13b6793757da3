package invoice

import (
	"strconv"
	"strings"
)

// The entry forms accept free-text numeric input and historically coerced
// anything unparseable to zero instead of rejecting it. That behavior is
// kept here as an explicit policy so it can be tightened in one place
// without touching the totals math.

// IntOrZero parses raw as a base-10 integer, returning 0 on empty or
// malformed input. Negative values parse successfully and are returned
// as-is.
func IntOrZero(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return value
}

// FloatOrZero parses raw as a float, returning 0 on empty or malformed
// input.
func FloatOrZero(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}
