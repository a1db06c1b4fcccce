package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// BaseData is the persisted state shared by tasks, categories and notes.
type BaseData struct {
	ID          tree.ID
	ParentID    tree.ID
	Subject     string
	Description string
	Foreground  appearance.Color
	Background  appearance.Color
	Expanded    bool
	Attachments []Attachment
	Created     time.Time
	Modified    time.Time
}

// TaskData is the persisted state of a task.
type TaskData struct {
	BaseData
	CategoryIDs          []tree.ID
	PlannedStart         time.Time
	ActualStart          time.Time
	Due                  time.Time
	Completion           time.Time
	Reminder             time.Time
	ReminderBeforeSnooze time.Time
	Recurrence           Recurrence
	Budget               time.Duration
	HourlyFee            float64
	FixedFee             float64
	Priority             int
	PercentageComplete   int
	MarkParentCompleted  Tristate
	Prerequisites        []tree.ID
}

// CategoryData is the persisted state of a category.
type CategoryData struct {
	BaseData
	ExclusiveSubcategories bool
	Filtered               bool
}

// NoteData is the persisted state of a note.
type NoteData struct {
	BaseData
	CategoryIDs []tree.ID
}

// EffortData is the persisted state of an effort.
type EffortData struct {
	ID          tree.ID
	TaskID      tree.ID
	Start       time.Time
	Stop        time.Time
	Description string
	Created     time.Time
	Modified    time.Time
}

func (b *Base) data() BaseData {
	d := BaseData{
		ID:          b.ID(),
		ParentID:    b.node.ParentID(),
		Subject:     b.subject,
		Description: b.description,
		Foreground:  b.foreground,
		Background:  b.background,
		Expanded:    b.expanded,
		Attachments: slices.Clone(b.attachments),
		Created:     b.created,
		Modified:    b.modified,
	}
	// Only report a parent that still contains the node.
	if p := b.node.Parent(); p == nil || !p.HasChild(b.node) {
		d.ParentID = ""
	}
	return d
}

func (b *Base) restore(d BaseData) {
	b.description = d.Description
	b.foreground = d.Foreground
	b.background = d.Background
	b.expanded = d.Expanded
	b.attachments = slices.Clone(d.Attachments)
	if !d.Created.IsZero() {
		b.created = d.Created
	}
	if !d.Modified.IsZero() {
		b.modified = d.Modified
	}
}

func categoryIDs(cats []*Category) []tree.ID {
	out := make([]tree.ID, len(cats))
	for i, c := range cats {
		out[i] = c.ID()
	}
	return out
}

// Data captures the task's persisted state.
func (t *Task) Data() TaskData {
	return TaskData{
		BaseData:             t.Base.data(),
		CategoryIDs:          categoryIDs(t.categories),
		PlannedStart:         t.plannedStart,
		ActualStart:          t.actualStart,
		Due:                  t.due,
		Completion:           t.completion,
		Reminder:             t.reminder,
		ReminderBeforeSnooze: t.reminderBeforeSnooze,
		Recurrence:           t.recurrence,
		Budget:               t.budget,
		HourlyFee:            t.hourlyFee,
		FixedFee:             t.fixedFee,
		Priority:             t.priority,
		PercentageComplete:   t.percentageComplete,
		MarkParentCompleted:  t.markParentCompleted,
		Prerequisites:        slices.Clone(t.prerequisites),
	}
}

// Data captures the category's persisted state.
func (c *Category) Data() CategoryData {
	return CategoryData{
		BaseData:               c.Base.data(),
		ExclusiveSubcategories: c.exclusiveSubcategories,
		Filtered:               c.filtered,
	}
}

// Data captures the note's persisted state.
func (n *Note) Data() NoteData {
	return NoteData{
		BaseData:    n.Base.data(),
		CategoryIDs: categoryIDs(n.categories),
	}
}

// Data captures the effort's persisted state.
func (e *Effort) Data() EffortData {
	return EffortData{
		ID:          e.id,
		TaskID:      e.task,
		Start:       e.start,
		Stop:        e.stop,
		Description: e.description,
		Created:     e.created,
		Modified:    e.modified,
	}
}

// The Restore methods rebuild objects from persisted state without
// publishing events. Parents, categories and owning tasks must be restored
// first; references that do not resolve are dropped. Restored objects are
// then announced by adding the roots to their containers.

// RestoreCategory rebuilds a category.
func (r *Registry) RestoreCategory(d CategoryData) *Category {
	c := r.newCategory(d.ID, d.Subject)
	c.Base.restore(d.BaseData)
	c.exclusiveSubcategories = d.ExclusiveSubcategories
	c.filtered = d.Filtered
	if p, ok := r.Category(d.ParentID); ok && d.ParentID != "" {
		p.node.AddChild(c.node)
	}
	return c
}

// RestoreTask rebuilds a task.
func (r *Registry) RestoreTask(d TaskData) *Task {
	t := r.newTask(d.ID, d.Subject)
	t.Base.restore(d.BaseData)
	t.plannedStart = orNone(d.PlannedStart)
	t.actualStart = orNone(d.ActualStart)
	t.due = orNone(d.Due)
	t.completion = orNone(d.Completion)
	t.reminder = orNone(d.Reminder)
	t.reminderBeforeSnooze = orNone(d.ReminderBeforeSnooze)
	t.recurrence = d.Recurrence
	t.budget = d.Budget
	t.hourlyFee = d.HourlyFee
	t.fixedFee = d.FixedFee
	t.priority = d.Priority
	t.percentageComplete = max(0, min(100, d.PercentageComplete))
	t.markParentCompleted = d.MarkParentCompleted
	t.prerequisites = slices.Clone(d.Prerequisites)
	for _, id := range d.CategoryIDs {
		if c, ok := r.Category(id); ok {
			t.Membership.link(c)
		}
	}
	if p, ok := r.Task(d.ParentID); ok && d.ParentID != "" {
		p.node.AddChild(t.node)
	}
	return t
}

// RestoreNote rebuilds a note.
func (r *Registry) RestoreNote(d NoteData) *Note {
	n := r.newNote(d.ID, d.Subject)
	n.Base.restore(d.BaseData)
	for _, id := range d.CategoryIDs {
		if c, ok := r.Category(id); ok {
			n.Membership.link(c)
		}
	}
	if p, ok := r.Note(d.ParentID); ok && d.ParentID != "" {
		p.node.AddChild(n.node)
	}
	return n
}

// RestoreEffort rebuilds an effort and attaches it to its task.
func (r *Registry) RestoreEffort(d EffortData) (*Effort, error) {
	e, err := r.RestoreDetachedEffort(d)
	if err != nil {
		return nil, err
	}
	t, _ := r.Task(d.TaskID)
	t.efforts = append(t.efforts, e)
	return e, nil
}

// RestoreDetachedEffort rebuilds an effort without attaching it, so that it
// can join a live task through Task.AddEffort.
func (r *Registry) RestoreDetachedEffort(d EffortData) (*Effort, error) {
	t, ok := r.Task(d.TaskID)
	if !ok {
		return nil, fmt.Errorf("effort %s: task %s: %w", d.ID, d.TaskID, ErrNotFound)
	}
	e := r.newEffort(d.ID, t, d.Start, orNone(d.Stop))
	e.description = d.Description
	if !d.Created.IsZero() {
		e.created = d.Created
	}
	if !d.Modified.IsZero() {
		e.modified = d.Modified
	}
	return e, nil
}

func orNone(t time.Time) time.Time {
	if t.IsZero() {
		return date.None
	}
	return t
}
