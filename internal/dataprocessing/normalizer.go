package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var nonWordRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NormalizeColumns maps raw header cells to unique identifier-safe names.
// The output has the same length and order as the input.
//
//	"Order ID "          → "order_id"
//	"Purchase Date(UTC)" → "purchase_date_utc"
//	"", "col1", "col1"   → "unnamed_0", "col1", "col1_0"
func NormalizeColumns(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	suffixes := make(map[string]int)
	unnamed := 0

	for i, name := range raw {
		clean := normalizeName(name)

		if clean == "" {
			clean = fmt.Sprintf("unnamed_%d", unnamed)
			unnamed++
			for taken[clean] {
				clean = fmt.Sprintf("unnamed_%d", unnamed)
				unnamed++
			}
		} else if taken[clean] {
			base := clean
			for taken[clean] {
				clean = fmt.Sprintf("%s_%d", base, suffixes[base])
				suffixes[base]++
			}
		}

		taken[clean] = true
		out[i] = clean
	}

	return out
}

func normalizeName(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for i := 0; i < len(decomposed); i++ {
		if c := decomposed[i]; c < 0x80 {
			b.WriteByte(c)
		}
	}

	clean := nonWordRun.ReplaceAllString(b.String(), "_")
	return strings.ToLower(strings.Trim(clean, "_"))
}
