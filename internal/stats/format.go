package stats

import (
	"fmt"
	"strings"
	"time"
)

// NotAvailable is the sentinel rendered for values that cannot be computed.
const NotAvailable = "N/A"

// FormatDuration renders a calendar duration as "Xd Yh Zm", keeping only
// non-zero units. Seconds are truncated. Zero is "0m", anything under a
// minute is "< 1m" and negative durations are "N/A".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return NotAvailable
	}
	seconds := int64(d / time.Second)
	if seconds == 0 {
		return "0m"
	}
	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "< 1m"
	}
	return strings.Join(parts, " ")
}

// FormatOptionalDuration is FormatDuration with "N/A" for a missing value.
func FormatOptionalDuration(d *time.Duration) string {
	if d == nil {
		return NotAvailable
	}
	return FormatDuration(*d)
}

// FormatSeconds formats a second count, as stored in report JSON.
func FormatSeconds(seconds float64) string {
	return FormatDuration(time.Duration(seconds * float64(time.Second)))
}

// Percent renders part/whole*100 with one decimal, or "N/A" when whole is 0.
func Percent(part, whole int) string {
	if whole <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(whole)*100)
}

// SatisfactionSummary is the share of ratings of 4 or 5.
func SatisfactionSummary(ratings []int) string {
	if len(ratings) == 0 {
		return NotAvailable
	}
	positive := 0
	for _, r := range ratings {
		if r >= 4 {
			positive++
		}
	}
	return fmt.Sprintf("%.1f%% Positive", float64(positive)/float64(len(ratings))*100)
}

// averageDuration divides total by count, returning nil for an empty set.
func averageDuration(total time.Duration, count int) *time.Duration {
	if count <= 0 {
		return nil
	}
	avg := total / time.Duration(count)
	return &avg
}
