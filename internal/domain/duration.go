package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// FormatDuration renders d as "H hours, M min S sec", or "M min S sec" when
// under an hour. Sub-second remainders are truncated and negative values
// render as zero.
func FormatDuration(d time.Duration) string {
	total := max(int64(d/time.Second), 0)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d hours, %d min %d sec", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d min %d sec", minutes, seconds)
}

var durationPattern = regexp.MustCompile(`^(?:(\d+) hours, )?(\d+) min (\d+) sec$`)

// ParseDuration is the inverse of FormatDuration at second granularity.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid reading time %q", s)
	}

	var hours int64
	if m[1] != "" {
		h, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hours in %q: %w", s, err)
		}
		hours = h
	}
	minutes, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}
	seconds, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", s, err)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}
