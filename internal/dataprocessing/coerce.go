package dataprocessing

import (
	"strconv"
	"strings"
)

// CoerceNumber extracts a number from a loosely formatted cell.
// Every character other than a digit or a dot is dropped, so quotes, currency
// symbols, thousands separators, newlines and signs disappear before parsing.
// ok is false when nothing parseable remains.
func CoerceNumber(raw string) (value float64, ok bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; (c >= '0' && c <= '9') || c == '.' {
			b.WriteByte(c)
		}
	}

	digits := b.String()
	if digits == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// NumberOrZero is CoerceNumber with a fallback of zero
func NumberOrZero(raw string) float64 {
	value, _ := CoerceNumber(raw)
	return value
}

// CoerceText drops non-ASCII bytes and surrounding whitespace
func CoerceText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c < 0x80 {
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
