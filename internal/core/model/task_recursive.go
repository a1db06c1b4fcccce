package model

import (
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
)

// Recursive attributes fold over the live subtree on every call. Dates take
// the earliest value of the task and its open subtasks, priority the highest;
// budget, fees, revenue and time spent sum over all subtasks.

func (t *Task) openChildren() []*Task {
	var out []*Task
	for _, c := range t.Children() {
		if !c.Completed() {
			out = append(out, c)
		}
	}
	return out
}

func (t *Task) recursiveMinTime(own func(*Task) time.Time) time.Time {
	out := own(t)
	for _, c := range t.openChildren() {
		out = date.Min(out, c.recursiveMinTime(own))
	}
	return out
}

// RecursiveDueDateTime is the earliest due date in the open subtree.
func (t *Task) RecursiveDueDateTime() time.Time {
	return t.recursiveMinTime((*Task).DueDateTime)
}

// RecursivePlannedStartDateTime is the earliest planned start in the open
// subtree.
func (t *Task) RecursivePlannedStartDateTime() time.Time {
	return t.recursiveMinTime((*Task).PlannedStartDateTime)
}

// RecursiveActualStartDateTime is the earliest actual start in the open
// subtree.
func (t *Task) RecursiveActualStartDateTime() time.Time {
	return t.recursiveMinTime((*Task).ActualStartDateTime)
}

// RecursivePriority is the highest priority in the open subtree.
func (t *Task) RecursivePriority() int {
	out := t.priority
	for _, c := range t.openChildren() {
		out = max(out, c.RecursivePriority())
	}
	return out
}

func (t *Task) RecursiveBudget() time.Duration {
	out := t.budget
	for _, c := range t.Children() {
		out += c.RecursiveBudget()
	}
	return out
}

func (t *Task) RecursiveFixedFee() float64 {
	out := t.fixedFee
	for _, c := range t.Children() {
		out += c.RecursiveFixedFee()
	}
	return out
}

// TimeSpent sums the task's own effort durations.
func (t *Task) TimeSpent() time.Duration {
	now := t.reg.Now()
	var out time.Duration
	for _, e := range t.efforts {
		out += e.DurationAt(now)
	}
	return out
}

// RecursiveTimeSpent sums the durations of all efforts in the subtree.
func (t *Task) RecursiveTimeSpent() time.Duration {
	out := t.TimeSpent()
	for _, c := range t.Children() {
		out += c.RecursiveTimeSpent()
	}
	return out
}

// Revenue is hours spent times the hourly fee plus the fixed fee.
func (t *Task) Revenue() float64 {
	return t.TimeSpent().Hours()*t.hourlyFee + t.fixedFee
}

// RecursiveRevenue adds the recursive revenue of all subtasks.
func (t *Task) RecursiveRevenue() float64 {
	out := t.Revenue()
	for _, c := range t.Children() {
		out += c.RecursiveRevenue()
	}
	return out
}

// BudgetLeft returns budget minus time spent. ok is false when no budget is
// set.
func (t *Task) BudgetLeft() (left time.Duration, ok bool) {
	if t.budget == 0 {
		return 0, false
	}
	return t.budget - t.TimeSpent(), true
}

// RecursiveBudgetLeft is BudgetLeft over the subtree.
func (t *Task) RecursiveBudgetLeft() (left time.Duration, ok bool) {
	budget := t.RecursiveBudget()
	if budget == 0 {
		return 0, false
	}
	return budget - t.RecursiveTimeSpent(), true
}

// RecursivePercentageComplete averages the percentage of t and all subtasks.
func (t *Task) RecursivePercentageComplete() int {
	sum, n := t.PercentageComplete(), 1
	for _, d := range t.Descendants() {
		sum += d.PercentageComplete()
		n++
	}
	return sum / n
}
