package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Tristate is an inheritable boolean setting.
type Tristate int8

const (
	Inherit Tristate = iota
	Enabled
	Disabled
)

func (s Tristate) String() string {
	switch s {
	case Enabled:
		return "true"
	case Disabled:
		return "false"
	default:
		return "inherit"
	}
}

// ParseTristate accepts "inherit", "true" and "false" (and "" as inherit).
func ParseTristate(s string) (Tristate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inherit":
		return Inherit, nil
	case "true", "yes":
		return Enabled, nil
	case "false", "no":
		return Disabled, nil
	default:
		return Inherit, fmt.Errorf("invalid tristate %q", s)
	}
}

// Task is the central entity: a categorizable node in the task tree with
// dates, money, efforts and prerequisites.
type Task struct {
	Base
	Membership

	plannedStart         time.Time
	actualStart          time.Time
	due                  time.Time
	completion           time.Time
	reminder             time.Time
	reminderBeforeSnooze time.Time
	recurrence           Recurrence
	budget               time.Duration
	hourlyFee            float64
	fixedFee             float64
	priority             int
	percentageComplete   int
	markParentCompleted  Tristate
	prerequisites        []tree.ID
	efforts              []*Effort
}

// NewTask creates a task bound to r with all dates unset.
func (r *Registry) NewTask(subject string) *Task {
	return r.newTask(tree.NewID(), subject)
}

func (r *Registry) newTask(id tree.ID, subject string) *Task {
	t := &Task{
		plannedStart:         date.None,
		actualStart:          date.None,
		due:                  date.None,
		completion:           date.None,
		reminder:             date.None,
		reminderBeforeSnooze: date.None,
	}
	t.Base.init(r, r.tasks.Insert(id, t), taskBase, t, subject)
	t.Membership.init(r, taskMembership, t)
	return t
}

func (t *Task) Type() Type { return TypeTask }

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s %q)", t.ID(), t.subject)
}

// Parent returns the parent task or nil.
func (t *Task) Parent() *Task {
	if p := t.node.Parent(); p != nil {
		if pt, ok := p.Owner().(*Task); ok {
			return pt
		}
	}
	return nil
}

func (t *Task) parentItem() Categorizable {
	if p := t.Parent(); p != nil {
		return p
	}
	return nil
}

// Children returns the immediate subtasks in insertion order.
func (t *Task) Children() []*Task {
	return nodeOwners[*Task](t.node.Children())
}

// Descendants returns all subtasks in pre-order.
func (t *Task) Descendants() []*Task {
	return nodeOwners[*Task](t.node.Descendants())
}

// Ancestors returns the chain from the root task down to t's parent.
func (t *Task) Ancestors() []*Task {
	return nodeOwners[*Task](t.node.Ancestors())
}

// AddChild makes child a subtask of t. Adding an existing child is a no-op.
func (t *Task) AddChild(child *Task) bool { return t.addChild(&child.Base) }

// RemoveChild detaches child from t. The child keeps its parent reference.
func (t *Task) RemoveChild(child *Task) bool { return t.removeChild(&child.Base) }

func (t *Task) PlannedStartDateTime() time.Time { return t.plannedStart }
func (t *Task) ActualStartDateTime() time.Time  { return t.actualStart }
func (t *Task) DueDateTime() time.Time          { return t.due }
func (t *Task) CompletionDateTime() time.Time   { return t.completion }

func (t *Task) SetPlannedStartDateTime(v time.Time) {
	setTime(&t.Base, &t.plannedStart, v, TaskPlannedStartDateTime)
}

func (t *Task) SetActualStartDateTime(v time.Time) {
	setTime(&t.Base, &t.actualStart, v, TaskActualStartDateTime)
}

func (t *Task) SetDueDateTime(v time.Time) {
	setTime(&t.Base, &t.due, v, TaskDueDateTime)
}

// SetCompletionDateTime completes (or with date.None reopens) the task.
//
// Completing a recurring task that has not exhausted its recurrence advances
// its dates instead. Completing a task completes its open subtasks and stops
// tracking; completing the last open subtask of a parent completes the
// parent when the parent's mark-parent-completed setting resolves to true.
// Reopening a subtask reopens a completed parent.
func (t *Task) SetCompletionDateTime(when time.Time) {
	if date.IsSet(when) && !t.Completed() && t.recurrence.IsSet() && !t.recurrence.Exhausted() {
		t.recur()
		return
	}
	if !setTime(&t.Base, &t.completion, when, TaskCompletionDateTime) {
		return
	}
	if date.IsSet(when) {
		t.completed(when)
	} else {
		t.reopened()
	}
}

// Complete marks the task completed now.
func (t *Task) Complete() {
	t.SetCompletionDateTime(t.reg.Now())
}

// Reopen clears the completion timestamp.
func (t *Task) Reopen() {
	t.SetCompletionDateTime(date.None)
}

func (t *Task) completed(when time.Time) {
	if t.reg.Settings.StopTrackingOnComplete {
		t.StopTracking()
	}
	if date.IsSet(t.reminder) {
		t.SetReminder(date.None)
	}
	for _, child := range t.Children() {
		if !child.Completed() {
			child.SetCompletionDateTime(when)
		}
	}
	if p := t.Parent(); p != nil && !p.Completed() && p.allChildrenCompleted() && p.ShouldMarkCompletedWhenAllChildrenCompleted() {
		p.SetCompletionDateTime(when)
	}
}

func (t *Task) reopened() {
	if p := t.Parent(); p != nil && p.Completed() {
		p.SetCompletionDateTime(date.None)
	}
}

func (t *Task) allChildrenCompleted() bool {
	children := t.Children()
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if !c.Completed() {
			return false
		}
	}
	return true
}

func (t *Task) recur() {
	rec := t.recurrence
	rec.Count++
	setAttr(&t.Base, &t.recurrence, rec, TaskRecurrence)
	t.shiftDates(rec)
}

// shiftDates moves the subtree one recurrence step ahead and reopens it.
func (t *Task) shiftDates(rec Recurrence) {
	setTime(&t.Base, &t.plannedStart, rec.Next(t.plannedStart), TaskPlannedStartDateTime)
	setTime(&t.Base, &t.due, rec.Next(t.due), TaskDueDateTime)
	setTime(&t.Base, &t.reminder, rec.Next(t.reminder), TaskReminder)
	setTime(&t.Base, &t.actualStart, date.None, TaskActualStartDateTime)
	setTime(&t.Base, &t.completion, date.None, TaskCompletionDateTime)
	setAttr(&t.Base, &t.percentageComplete, 0, TaskPercentageComplete)
	for _, child := range t.Children() {
		child.shiftDates(rec)
	}
}

func (t *Task) Recurrence() Recurrence { return t.recurrence }

func (t *Task) SetRecurrence(r Recurrence) {
	setAttr(&t.Base, &t.recurrence, r, TaskRecurrence)
}

// Reminder returns the reminder timestamp or date.None.
func (t *Task) Reminder() time.Time { return t.reminder }

// ReminderBeforeSnooze returns the reminder that was set before the first
// snooze, or date.None.
func (t *Task) ReminderBeforeSnooze() time.Time { return t.reminderBeforeSnooze }

// SetReminder sets the reminder and forgets any snooze history.
func (t *Task) SetReminder(when time.Time) {
	t.reminderBeforeSnooze = date.None
	setTime(&t.Base, &t.reminder, when, TaskReminder)
}

// SnoozeReminder moves the reminder to now+d, remembering the original. A
// non-positive d dismisses the reminder.
func (t *Task) SnoozeReminder(d time.Duration) {
	if d <= 0 {
		t.SetReminder(date.None)
		return
	}
	if !date.IsSet(t.reminderBeforeSnooze) {
		t.reminderBeforeSnooze = t.reminder
	}
	setTime(&t.Base, &t.reminder, t.reg.Now().Add(d), TaskReminder)
}

func (t *Task) Budget() time.Duration { return t.budget }
func (t *Task) HourlyFee() float64    { return t.hourlyFee }
func (t *Task) FixedFee() float64     { return t.fixedFee }
func (t *Task) Priority() int         { return t.priority }

func (t *Task) SetBudget(d time.Duration) { setAttr(&t.Base, &t.budget, d, TaskBudget) }
func (t *Task) SetHourlyFee(f float64)    { setAttr(&t.Base, &t.hourlyFee, f, TaskHourlyFee) }
func (t *Task) SetFixedFee(f float64)     { setAttr(&t.Base, &t.fixedFee, f, TaskFixedFee) }
func (t *Task) SetPriority(p int)         { setAttr(&t.Base, &t.priority, p, TaskPriority) }

// PercentageComplete returns the stored percentage, or 100 when completed.
func (t *Task) PercentageComplete() int {
	if t.Completed() {
		return 100
	}
	return t.percentageComplete
}

// SetPercentageComplete stores p clamped to [0, 100].
func (t *Task) SetPercentageComplete(p int) {
	p = max(0, min(100, p))
	setAttr(&t.Base, &t.percentageComplete, p, TaskPercentageComplete)
}

// MarkParentCompleted returns the task's own tri-state setting.
func (t *Task) MarkParentCompleted() Tristate { return t.markParentCompleted }

func (t *Task) SetMarkParentCompleted(s Tristate) {
	setAttr(&t.Base, &t.markParentCompleted, s, TaskMarkParentCompleted)
}

// ShouldMarkCompletedWhenAllChildrenCompleted resolves the tri-state through
// the ancestors and falls back to the registry default.
func (t *Task) ShouldMarkCompletedWhenAllChildrenCompleted() bool {
	for it := t; it != nil; it = it.Parent() {
		switch it.markParentCompleted {
		case Enabled:
			return true
		case Disabled:
			return false
		}
	}
	return t.reg.Settings.MarkParentCompleted
}

// Prerequisites returns the prerequisite tasks that still resolve.
func (t *Task) Prerequisites() []*Task {
	out := make([]*Task, 0, len(t.prerequisites))
	for _, id := range t.prerequisites {
		if p, ok := t.reg.Task(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// PrerequisiteIDs returns the raw prerequisite references.
func (t *Task) PrerequisiteIDs() []tree.ID {
	return slices.Clone(t.prerequisites)
}

func (t *Task) AddPrerequisite(p *Task) bool {
	if p == t || slices.Contains(t.prerequisites, p.ID()) {
		return false
	}
	t.setPrerequisites(append(slices.Clone(t.prerequisites), p.ID()))
	return true
}

func (t *Task) RemovePrerequisite(p *Task) bool {
	i := slices.Index(t.prerequisites, p.ID())
	if i < 0 {
		return false
	}
	t.setPrerequisites(slices.Delete(slices.Clone(t.prerequisites), i, i+1))
	return true
}

func (t *Task) setPrerequisites(ids []tree.ID) {
	t.prerequisites = ids
	t.touch()
	publishChange(t.reg, TaskPrerequisites, t, t.PrerequisiteIDs())
}

// PrerequisitesCompleted reports whether every prerequisite has a completion
// timestamp. Only the completion flag is inspected, so mutual prerequisites
// cannot recurse.
func (t *Task) PrerequisitesCompleted() bool {
	for _, p := range t.Prerequisites() {
		if !p.Completed() {
			return false
		}
	}
	return true
}

// Blocked reports whether an open task still waits for a prerequisite.
func (t *Task) Blocked() bool {
	return !t.Completed() && !t.PrerequisitesCompleted()
}

// Efforts returns the task's own efforts in insertion order.
func (t *Task) Efforts() []*Effort {
	return slices.Clone(t.efforts)
}

// RecursiveEfforts returns the efforts of t and all its subtasks.
func (t *Task) RecursiveEfforts() []*Effort {
	out := t.Efforts()
	for _, d := range t.Descendants() {
		out = append(out, d.efforts...)
	}
	return out
}

// AddEffort attaches e to t, detaching it from the task that owned it. An
// effort that starts before the task's actual start moves the actual start
// back to it.
func (t *Task) AddEffort(e *Effort) bool {
	if slices.Contains(t.efforts, e) {
		return false
	}
	if e.task != t.ID() {
		if old := e.Task(); old != nil {
			old.RemoveEffort(e)
		}
	}
	t.efforts = append(t.efforts, e)
	e.task = t.ID()
	t.reg.efforts[e.id] = e
	t.touch()
	publishLink(t.reg, TaskEffortAdd, t, e)
	if e.start.Before(t.actualStart) {
		t.SetActualStartDateTime(e.start)
	}
	return true
}

// RemoveEffort detaches e from t. The effort keeps pointing at t.
func (t *Task) RemoveEffort(e *Effort) bool {
	i := slices.Index(t.efforts, e)
	if i < 0 {
		return false
	}
	t.efforts = slices.Delete(t.efforts, i, i+1)
	t.touch()
	publishLink(t.reg, TaskEffortRemove, t, e)
	return true
}

// IsBeingTracked reports whether one of the task's own efforts is running.
func (t *Task) IsBeingTracked() bool {
	for _, e := range t.efforts {
		if e.IsBeingTracked() {
			return true
		}
	}
	return false
}

// RecursiveIsBeingTracked includes subtasks.
func (t *Task) RecursiveIsBeingTracked() bool {
	for _, e := range t.RecursiveEfforts() {
		if e.IsBeingTracked() {
			return true
		}
	}
	return false
}

// StartTracking creates, attaches and returns a running effort starting now.
func (t *Task) StartTracking() *Effort {
	e := t.reg.NewEffort(t, t.reg.Now(), date.None)
	t.AddEffort(e)
	return e
}

// StopTracking stops every running effort of t and returns them.
func (t *Task) StopTracking() []*Effort {
	var stopped []*Effort
	now := t.reg.Now()
	for _, e := range t.Efforts() {
		if e.IsBeingTracked() {
			e.SetStop(now)
			stopped = append(stopped, e)
		}
	}
	return stopped
}

// ResolvedForegroundColor applies the appearance inheritance rules.
func (t *Task) ResolvedForegroundColor() appearance.Color { return ResolvedForegroundColor(t) }

// ResolvedBackgroundColor applies the appearance inheritance rules.
func (t *Task) ResolvedBackgroundColor() appearance.Color { return ResolvedBackgroundColor(t) }

// RecursiveCategories returns t's categories plus those of its ancestors.
func (t *Task) RecursiveCategories() []*Category { return RecursiveCategories(t) }

// Copy returns a deep copy of t and its subtasks with fresh IDs. Dates,
// money, categories and prerequisites are copied; efforts are not.
func (t *Task) Copy() *Task {
	cp := t.reg.NewTask(t.subject)
	t.Base.copyInto(&cp.Base)
	cp.plannedStart = t.plannedStart
	cp.actualStart = t.actualStart
	cp.due = t.due
	cp.completion = t.completion
	cp.reminder = t.reminder
	cp.recurrence = t.recurrence
	cp.budget = t.budget
	cp.hourlyFee = t.hourlyFee
	cp.fixedFee = t.fixedFee
	cp.priority = t.priority
	cp.percentageComplete = t.percentageComplete
	cp.markParentCompleted = t.markParentCompleted
	cp.prerequisites = slices.Clone(t.prerequisites)
	for _, c := range t.categories {
		cp.Membership.link(c)
	}
	for _, child := range t.Children() {
		cp.node.AddChild(child.Copy().node)
	}
	return cp
}
