// Package timeslot parses the wall-clock representation used by room
// bookings: a calendar date (YYYY-MM-DD) plus a same-day half-open
// interval of HH:MM times, compared as minute offsets from midnight.
package timeslot

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Interval is [Start, End) in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// ParseClock converts "HH:MM" (00:00-23:59) to minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// NewInterval parses both ends. ok is false when start is not before end.
func NewInterval(start, end string) (iv Interval, ok bool, err error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, false, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, false, err
	}
	return Interval{Start: s, End: e}, s < e, nil
}

// Overlaps uses strict comparison on both sides, so back-to-back intervals
// (one ends exactly when the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}
