// Package date holds the "no date" sentinel and the calendar arithmetic used
// for status derivation and effort aggregation.
package date

import (
	"fmt"
	"strings"
	"time"
)

// None is the sentinel for an unset date/time. It is the maximal representable
// value so that "earliest wins" folds and sort comparisons stay total without
// nil checks.
var None = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)

// Precision is the resolution of persisted timestamps and period boundaries.
const Precision = time.Microsecond

// IsSet reports whether t holds a real value.
func IsSet(t time.Time) bool {
	return !t.Equal(None)
}

// Min returns the earliest of the given times, or None when called without
// arguments.
func Min(times ...time.Time) time.Time {
	out := None
	for _, t := range times {
		if t.Before(out) {
			out = t
		}
	}
	return out
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-Precision)
}

// DueSoonHorizon returns the end of the due-soon window for now: the end of
// the day that lies days after today. days=1 means "today through tomorrow".
func DueSoonHorizon(now time.Time, days int) time.Time {
	if days < 0 {
		days = 0
	}
	return EndOfDay(now.AddDate(0, 0, days))
}

// Period is an aggregation granularity.
type Period int

const (
	Day Period = iota
	Week
	Month
)

// String returns the period name.
func (p Period) String() string {
	switch p {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return fmt.Sprintf("period(%d)", int(p))
	}
}

// ParsePeriod converts a name such as "week" into a Period.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	default:
		return Day, fmt.Errorf("unknown period %q", s)
	}
}

// PeriodStart returns the start of the period containing t. Weeks begin on
// weekStart.
func PeriodStart(t time.Time, p Period, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	switch p {
	case Week:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		return day.AddDate(0, 0, -offset)
	case Month:
		y, m, _ := day.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// NextPeriodStart returns the start of the period following the one that
// begins at start.
func NextPeriodStart(start time.Time, p Period) time.Time {
	switch p {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodEnd returns the last representable instant of the period starting at
// start. Windows are closed on both ends at this precision.
func PeriodEnd(start time.Time, p Period) time.Time {
	return NextPeriodStart(start, p).Add(-Precision)
}

// ParseWeekday accepts English weekday names ("monday", "Sun").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", s)
}
