// Package interval models closed calendar date ranges.
//
// Dates are time.Time values at midnight UTC; only the calendar day matters.
// Both ends of an Interval are inclusive, so a single-day booking has
// Start == End and spans one day.
package interval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

var ErrInvertedInterval = errors.New("interval start is after its end")

type Interval struct {
	Start time.Time
	End   time.Time
}

// New builds an interval from two dates, truncating them to calendar days.
func New(start, end time.Time) (Interval, error) {
	iv := Interval{Start: Date(start), End: Date(end)}
	if iv.Start.After(iv.End) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrInvertedInterval, Format(iv.Start), Format(iv.End))
	}
	return iv, nil
}

// Date drops the time of day, keeping the calendar date as seen in t's location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the server's local calendar date.
func Today(now time.Time) time.Time {
	return Date(now.Local())
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween is the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)) / day)
}

// Overlaps reports whether a and b share at least one day.
// It is symmetric and inclusive on both ends.
func Overlaps(a, b Interval) bool {
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// OverlapLength is the number of days in the intersection of a and b, zero when disjoint.
func OverlapLength(a, b Interval) int {
	start := maxDate(a.Start, b.Start)
	end := minDate(a.End, b.End)
	return max(0, DaysBetween(start, end)+1)
}

// SpanDays is the number of calendar days covered by a.
func SpanDays(a Interval) int {
	return DaysBetween(a.Start, a.End) + 1
}

func (iv Interval) Overlaps(other Interval) bool { return Overlaps(iv, other) }

func (iv Interval) Days() int { return SpanDays(iv) }

func (iv Interval) String() string {
	return Format(iv.Start) + ".." + Format(iv.End)
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
