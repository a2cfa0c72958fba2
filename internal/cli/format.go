// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// UsedFraction returns spent/budget clamped to [0, 1]. A non-positive budget
// counts as fully used once anything is spent.
func UsedFraction(spent, budgetAmount float64) float64 {
	if budgetAmount <= 0 {
		if spent > 0 {
			return 1
		}
		return 0
	}
	f := spent / budgetAmount
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
