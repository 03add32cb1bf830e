// Package slots provides pure time-of-day interval arithmetic for the
// meeting-room calendar: candidate slot generation and overlap testing.
// Times are "HH:MM" strings in 24-hour form on a single calendar day.
package slots

import (
	"fmt"
	"strconv"
	"strings"
)

// Generate returns every intervalMinutes-spaced time point from
// startHour:00 up to but not including endHour:00, ascending. When the
// granularity does not evenly divide the span, the last point before
// endHour is still included and nothing at or past endHour is produced.
func Generate(startHour, endHour, intervalMinutes int) []string {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}

	startMin := startHour * 60
	endMin := endHour * 60

	var out []string
	for cursor := startMin; cursor < endMin; cursor += intervalMinutes {
		out = append(out, Format(cursor))
	}
	return out
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Half-open semantics: touching endpoints do not overlap. Degenerate input
// (start >= end, or an unparseable time) is reported as overlapping so a
// bad candidate is always rejected downstream.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	as, err := Parse(aStart)
	if err != nil {
		return true
	}
	ae, err := Parse(aEnd)
	if err != nil {
		return true
	}
	bs, err := Parse(bStart)
	if err != nil {
		return true
	}
	be, err := Parse(bEnd)
	if err != nil {
		return true
	}

	if as >= ae || bs >= be {
		return true
	}

	return as < be && bs < ae
}

// Parse converts an "HH:MM" time of day to minutes since midnight.
func Parse(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %s", s)
	}

	return hour*60 + minute, nil
}

// Format converts minutes since midnight back to "HH:MM".
func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
