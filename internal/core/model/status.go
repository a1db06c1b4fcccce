package model

import (
	"fmt"
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
)

// Status is the derived state of a task. It is recomputed on every query.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusDueSoon   Status = "duesoon"
	StatusLate      Status = "late"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
)

// Statuses lists every status in decision order.
var Statuses = []Status{
	StatusCompleted,
	StatusOverdue,
	StatusDueSoon,
	StatusActive,
	StatusLate,
	StatusInactive,
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Status returns the task's status at the registry's current time.
func (t *Task) Status() Status {
	return t.StatusAt(t.reg.Now())
}

// StatusAt derives the status at now. The first matching rule wins:
//
//  1. a completion timestamp, past or future, means completed
//  2. due before now means overdue
//  3. due within the due-soon horizon means duesoon
//  4. actual start at or before now means active
//  5. planned start at or before now means late
//  6. anything else is inactive
//
// Prerequisites do not participate; see Blocked.
func (t *Task) StatusAt(now time.Time) Status {
	switch {
	case t.Completed():
		return StatusCompleted
	case date.IsSet(t.due) && t.due.Before(now):
		return StatusOverdue
	case date.IsSet(t.due) && !t.due.After(date.DueSoonHorizon(now, t.reg.Settings.DueSoonDays)):
		return StatusDueSoon
	case date.IsSet(t.actualStart) && !t.actualStart.After(now):
		return StatusActive
	case date.IsSet(t.plannedStart) && !t.plannedStart.After(now):
		return StatusLate
	default:
		return StatusInactive
	}
}

// Completed reports whether a completion timestamp is set.
func (t *Task) Completed() bool {
	return date.IsSet(t.completion)
}

func (t *Task) Overdue() bool  { return t.Status() == StatusOverdue }
func (t *Task) DueSoon() bool  { return t.Status() == StatusDueSoon }
func (t *Task) Active() bool   { return t.Status() == StatusActive }
func (t *Task) Late() bool     { return t.Status() == StatusLate }
func (t *Task) Inactive() bool { return t.Status() == StatusInactive }

// NextStatusChange returns the earliest instant after now at which StatusAt
// can return a different value, or date.None when the status is final until
// the task itself changes.
func (t *Task) NextStatusChange(now time.Time) time.Time {
	if t.Completed() {
		return date.None
	}

	candidates := []time.Time{}
	if date.IsSet(t.due) {
		// Entering the due-soon horizon happens at the start of the day that
		// lies DueSoonDays before the due date.
		days := t.reg.Settings.DueSoonDays
		if days < 0 {
			days = 0
		}
		candidates = append(candidates,
			date.StartOfDay(t.due.AddDate(0, 0, -days)),
			t.due.Add(date.Precision),
		)
	}
	if date.IsSet(t.actualStart) {
		candidates = append(candidates, t.actualStart)
	}
	if date.IsSet(t.plannedStart) {
		candidates = append(candidates, t.plannedStart)
	}

	next := date.None
	for _, c := range candidates {
		if c.After(now) && c.Before(next) {
			next = c
		}
	}
	return next
}
