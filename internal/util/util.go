// Package util provides formatting helpers for commandhook log output.
package util

import (
	"fmt"
	"strings"
	"time"
)

// timeUnit represents a single unit of time with its value and labels.
type timeUnit struct {
	value    int64  // The numeric value of the unit (e.g., 2 for 2 minutes)
	singular string // The singular form of the unit (e.g., "minute")
	plural   string // The plural form of the unit (e.g., "minutes")
}

// FormatDuration converts a time.Duration into a human-readable string such as
// "1 minute, 30 seconds" or "500 milliseconds".
//
// Parameters:
//   - duration: The time.Duration to convert into a readable string.
//
// Returns:
//   - string: A formatted string representing the duration, always including at least "0 seconds".
func FormatDuration(duration time.Duration) string {
	const (
		minutesPerHour   = 60
		secondsPerMinute = 60
		millisPerSecond  = 1000
		timeUnitCount    = 4
	)

	units := []timeUnit{
		{int64(duration / time.Hour), "hour", "hours"},
		{int64(duration/time.Minute) % minutesPerHour, "minute", "minutes"},
		{int64(duration/time.Second) % secondsPerMinute, "second", "seconds"},
		{int64(duration/time.Millisecond) % millisPerSecond, "millisecond", "milliseconds"},
	}

	parts := make([]string, 0, timeUnitCount)
	for _, unit := range units {
		parts = append(parts, FormatTimeUnit(unit.value, unit.singular, unit.plural, false))
	}

	joined := strings.Join(FilterEmpty(parts), ", ")
	if joined == "" {
		return "0 seconds"
	}

	return joined
}

// FormatTimeUnit formats a single time unit, skipping zero values unless forced.
//
// Parameters:
//   - value: The numeric value of the unit.
//   - singular: The singular form of the unit.
//   - plural: The plural form of the unit.
//   - forceInclude: Include the unit even if zero.
//
// Returns:
//   - string: The formatted unit (e.g., "1 hour", "2 minutes") or empty string if skipped.
func FormatTimeUnit(value int64, singular, plural string, forceInclude bool) string {
	switch {
	case value == 1:
		return "1 " + singular
	case value > 1 || forceInclude:
		return fmt.Sprintf("%d %s", value, plural)
	default:
		return ""
	}
}

// FilterEmpty removes empty strings from a slice.
func FilterEmpty(parts []string) []string {
	var filtered []string

	for _, part := range parts {
		if part != "" {
			filtered = append(filtered, part)
		}
	}

	return filtered
}
