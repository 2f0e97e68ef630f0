package flashcard

import (
	"fmt"
	"time"
)

// FormatInterval renders a duration in its largest whole unit, e.g. "12 hour(s)".
// Months are 30 days and years 12 months. Negative durations render as zero minutes.
func FormatInterval(d time.Duration) string {
	minutes := int(max(d, 0) / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%d minute(s)", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hour(s)", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d day(s)", days)
	}
	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%d month(s)", months)
	}
	return fmt.Sprintf("%d year(s)", months/12)
}

// FormatMinutes is FormatInterval for an interval in whole minutes.
func FormatMinutes(minutes int) string {
	return FormatInterval(time.Duration(minutes) * time.Minute)
}
