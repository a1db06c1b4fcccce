package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
)

// RecurrenceUnit is the step of a recurrence.
type RecurrenceUnit string

const (
	RecurNone    RecurrenceUnit = ""
	RecurDaily   RecurrenceUnit = "daily"
	RecurWeekly  RecurrenceUnit = "weekly"
	RecurMonthly RecurrenceUnit = "monthly"
	RecurYearly  RecurrenceUnit = "yearly"
)

// ParseRecurrenceUnit accepts the unit names, case-insensitively.
func ParseRecurrenceUnit(s string) (RecurrenceUnit, error) {
	switch u := RecurrenceUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return u, nil
	default:
		return RecurNone, fmt.Errorf("unknown recurrence unit %q", s)
	}
}

// Recurrence describes how a task repeats.
type Recurrence struct {
	Unit   RecurrenceUnit
	Amount int
	// Max is the number of times the task recurs before a completion sticks.
	// Zero means forever.
	Max int
	// Count is the number of times the task has recurred so far.
	Count int
	// SameWeekday keeps monthly and yearly recurrences on the same
	// weekday-of-month ("second Tuesday") instead of the same day number.
	SameWeekday bool
}

// IsSet reports whether r actually recurs.
func (r Recurrence) IsSet() bool {
	return r.Unit != RecurNone
}

// Exhausted reports whether the task has recurred Max times.
func (r Recurrence) Exhausted() bool {
	return r.Max > 0 && r.Count >= r.Max
}

// Next returns t advanced by one recurrence step. Unset dates stay unset.
func (r Recurrence) Next(t time.Time) time.Time {
	if !date.IsSet(t) || !r.IsSet() {
		return t
	}
	amount := r.Amount
	if amount < 1 {
		amount = 1
	}

	switch r.Unit {
	case RecurDaily:
		return t.AddDate(0, 0, amount)
	case RecurWeekly:
		return t.AddDate(0, 0, 7*amount)
	case RecurMonthly:
		if r.SameWeekday {
			return sameWeekdayOfMonth(t, amount)
		}
		return addMonthsClamped(t, amount)
	case RecurYearly:
		if r.SameWeekday {
			return sameWeekdayOfMonth(t, 12*amount)
		}
		return addMonthsClamped(t, 12*amount)
	default:
		return t
	}
}

// addMonthsClamped adds months without spilling into the following month: Jan
// 31 plus one month is the last day of February.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// sameWeekdayOfMonth moves t to the same weekday occurrence ("nth Tuesday")
// months later. A fifth occurrence that does not exist falls back to the last
// one.
func sameWeekdayOfMonth(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	nth := (d - 1) / 7
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	offset := (int(t.Weekday()) - int(first.Weekday()) + 7) % 7
	out := first.AddDate(0, 0, offset+7*nth)
	for out.Month() != first.Month() {
		out = out.AddDate(0, 0, -7)
	}
	return out
}
