package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a money value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats a count
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptional renders a nil string as empty
func formatOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
