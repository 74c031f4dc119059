// Package utils provides formatting helpers shared by the CLI and notifier.
package utils

import (
	"fmt"
	"strings"
)

// FormatMoney formats a signed money amount with two decimals and an
// explicit sign for positive values, e.g. "+1.60", "-2.00".
func FormatMoney(amount float64) string {
	if amount > 0 {
		return fmt.Sprintf("+%.2f", amount)
	}
	return fmt.Sprintf("%.2f", amount)
}

// FormatPercent formats a ratio as a percentage, e.g. 0.82 -> "82.0%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatWinRate renders wins/total as a percentage, "n/a" when no trades.
func FormatWinRate(wins, total int) string {
	if total == 0 {
		return "n/a"
	}
	return FormatPercent(float64(wins) / float64(total))
}

// Truncate shortens a string to at most n runes, appending an ellipsis.
func Truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
