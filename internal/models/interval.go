package models

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange is returned when an interval ends at or before its start.
	ErrInvalidRange = errors.New("interval end must be after its start")
	// ErrInvalidDuration is returned when an interval is built from a duration shorter than one minute.
	ErrInvalidDuration = errors.New("interval duration must be at least one minute")
)

// Interval is a half-open time range [Start, End) kept in UTC.
type Interval struct {
	Start time.Time // Start is the first instant that belongs to the interval.
	End   time.Time // End is the first instant after the interval.
}

// Precision is the resolution at which instants are stored; PostgreSQL timestamptz keeps microseconds.
const Precision = time.Microsecond

// NewInterval builds an interval from two instants. Both are converted to UTC and truncated to
// Precision, so an interval reads back from the store exactly as it was built.
func NewInterval(start, end time.Time) (Interval, error) {
	start = start.UTC().Truncate(Precision)
	end = end.UTC().Truncate(Precision)
	if !end.After(start) {
		return Interval{}, ErrInvalidRange
	}

	return Interval{Start: start, End: end}, nil
}

// IntervalFromDuration builds an interval that starts at start and lasts the given number of minutes.
func IntervalFromDuration(start time.Time, minutes int) (Interval, error) {
	if minutes < 1 {
		return Interval{}, ErrInvalidDuration
	}

	return NewInterval(start, start.Add(time.Duration(minutes)*time.Minute))
}

// Overlaps reports whether two intervals share at least one instant.
// Intervals that only touch at an endpoint do not overlap, so back-to-back bookings are allowed.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
