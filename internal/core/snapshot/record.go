package snapshot

import (
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// BaseRecord is the persisted form of the state shared by tasks, categories
// and notes. Colors are hex strings; an empty string means no override.
type BaseRecord struct {
	ID          string             `json:"id"`
	Parent      string             `json:"parent,omitempty"`
	Subject     string             `json:"subject"`
	Description string             `json:"description,omitempty"`
	Foreground  string             `json:"foreground,omitempty"`
	Background  string             `json:"background,omitempty"`
	Expanded    bool               `json:"expanded,omitempty"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
	Created     time.Time          `json:"created"`
	Modified    time.Time          `json:"modified"`
}

func (b *BaseRecord) base() *BaseRecord { return b }

// RecurrenceRecord is the persisted form of model.Recurrence.
type RecurrenceRecord struct {
	Unit        string `json:"unit"`
	Amount      int    `json:"amount,omitempty"`
	Max         int    `json:"max,omitempty"`
	Count       int    `json:"count,omitempty"`
	SameWeekday bool   `json:"same_weekday,omitempty"`
}

// TaskRecord is the persisted form of a task. Absent dates are unset, and
// absent numbers are zero.
type TaskRecord struct {
	BaseRecord
	Categories           []string          `json:"categories,omitempty"`
	PlannedStart         *time.Time        `json:"planned_start,omitempty"`
	ActualStart          *time.Time        `json:"actual_start,omitempty"`
	Due                  *time.Time        `json:"due,omitempty"`
	Completion           *time.Time        `json:"completion,omitempty"`
	Reminder             *time.Time        `json:"reminder,omitempty"`
	ReminderBeforeSnooze *time.Time        `json:"reminder_before_snooze,omitempty"`
	Recurrence           *RecurrenceRecord `json:"recurrence,omitempty"`
	BudgetSeconds        int64             `json:"budget_seconds,omitempty"`
	HourlyFee            float64           `json:"hourly_fee,omitempty"`
	FixedFee             float64           `json:"fixed_fee,omitempty"`
	Priority             int               `json:"priority,omitempty"`
	PercentageComplete   int               `json:"percentage_complete,omitempty"`
	MarkParentCompleted  string            `json:"mark_parent_completed,omitempty"`
	Prerequisites        []string          `json:"prerequisites,omitempty"`
}

// CategoryRecord is the persisted form of a category.
type CategoryRecord struct {
	BaseRecord
	ExclusiveSubcategories bool `json:"exclusive_subcategories,omitempty"`
	Filtered               bool `json:"filtered,omitempty"`
}

// NoteRecord is the persisted form of a note.
type NoteRecord struct {
	BaseRecord
	Categories []string `json:"categories,omitempty"`
}

// EffortRecord is the persisted form of an effort. A missing stop means the
// effort is being tracked.
type EffortRecord struct {
	ID          string     `json:"id"`
	Task        string     `json:"task"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop,omitempty"`
	Description string     `json:"description,omitempty"`
	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
}

func optTime(t time.Time) *time.Time {
	if !date.IsSet(t) || t.IsZero() {
		return nil
	}
	return &t
}

func timeOrNone(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return date.None
	}
	return *t
}

func hex(c appearance.Color) string {
	if !c.IsSet() {
		return ""
	}
	return c.Hex()
}

// color parses a stored color. Unparseable values load as no override.
func color(s string) appearance.Color {
	if s == "" {
		return appearance.None
	}
	c, err := appearance.Hex(s)
	if err != nil {
		return appearance.None
	}
	return c
}

func ids(in []tree.ID) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = string(id)
	}
	return out
}

func treeIDs(in []string) []tree.ID {
	if len(in) == 0 {
		return nil
	}
	out := make([]tree.ID, len(in))
	for i, id := range in {
		out[i] = tree.ID(id)
	}
	return out
}

func baseRecord(d model.BaseData) BaseRecord {
	return BaseRecord{
		ID:          string(d.ID),
		Parent:      string(d.ParentID),
		Subject:     d.Subject,
		Description: d.Description,
		Foreground:  hex(d.Foreground),
		Background:  hex(d.Background),
		Expanded:    d.Expanded,
		Attachments: d.Attachments,
		Created:     d.Created,
		Modified:    d.Modified,
	}
}

func (r BaseRecord) data() model.BaseData {
	return model.BaseData{
		ID:          tree.ID(r.ID),
		ParentID:    tree.ID(r.Parent),
		Subject:     r.Subject,
		Description: r.Description,
		Foreground:  color(r.Foreground),
		Background:  color(r.Background),
		Expanded:    r.Expanded,
		Attachments: r.Attachments,
		Created:     r.Created,
		Modified:    r.Modified,
	}
}

// NewTaskRecord captures t.
func NewTaskRecord(t *model.Task) TaskRecord {
	d := t.Data()
	r := TaskRecord{
		BaseRecord:           baseRecord(d.BaseData),
		Categories:           ids(d.CategoryIDs),
		PlannedStart:         optTime(d.PlannedStart),
		ActualStart:          optTime(d.ActualStart),
		Due:                  optTime(d.Due),
		Completion:           optTime(d.Completion),
		Reminder:             optTime(d.Reminder),
		ReminderBeforeSnooze: optTime(d.ReminderBeforeSnooze),
		BudgetSeconds:        int64(d.Budget / time.Second),
		HourlyFee:            d.HourlyFee,
		FixedFee:             d.FixedFee,
		Priority:             d.Priority,
		PercentageComplete:   d.PercentageComplete,
		Prerequisites:        ids(d.Prerequisites),
	}
	if d.Recurrence.IsSet() {
		r.Recurrence = &RecurrenceRecord{
			Unit:        string(d.Recurrence.Unit),
			Amount:      d.Recurrence.Amount,
			Max:         d.Recurrence.Max,
			Count:       d.Recurrence.Count,
			SameWeekday: d.Recurrence.SameWeekday,
		}
	}
	if d.MarkParentCompleted != model.Inherit {
		r.MarkParentCompleted = d.MarkParentCompleted.String()
	}
	return r
}

func (r TaskRecord) recurrence() model.Recurrence {
	if r.Recurrence == nil {
		return model.Recurrence{}
	}
	unit, err := model.ParseRecurrenceUnit(r.Recurrence.Unit)
	if err != nil || unit == model.RecurNone {
		return model.Recurrence{}
	}
	return model.Recurrence{
		Unit:        unit,
		Amount:      max(1, r.Recurrence.Amount),
		Max:         r.Recurrence.Max,
		Count:       r.Recurrence.Count,
		SameWeekday: r.Recurrence.SameWeekday,
	}
}

func (r TaskRecord) markParentCompleted() model.Tristate {
	s, err := model.ParseTristate(r.MarkParentCompleted)
	if err != nil {
		return model.Inherit
	}
	return s
}

// Data converts the record, applying the tolerant defaults.
func (r TaskRecord) Data() model.TaskData {
	return model.TaskData{
		BaseData:             r.BaseRecord.data(),
		CategoryIDs:          treeIDs(r.Categories),
		PlannedStart:         timeOrNone(r.PlannedStart),
		ActualStart:          timeOrNone(r.ActualStart),
		Due:                  timeOrNone(r.Due),
		Completion:           timeOrNone(r.Completion),
		Reminder:             timeOrNone(r.Reminder),
		ReminderBeforeSnooze: timeOrNone(r.ReminderBeforeSnooze),
		Recurrence:           r.recurrence(),
		Budget:               time.Duration(r.BudgetSeconds) * time.Second,
		HourlyFee:            r.HourlyFee,
		FixedFee:             r.FixedFee,
		Priority:             r.Priority,
		PercentageComplete:   r.PercentageComplete,
		MarkParentCompleted:  r.markParentCompleted(),
		Prerequisites:        treeIDs(r.Prerequisites),
	}
}

// NewCategoryRecord captures c.
func NewCategoryRecord(c *model.Category) CategoryRecord {
	d := c.Data()
	return CategoryRecord{
		BaseRecord:             baseRecord(d.BaseData),
		ExclusiveSubcategories: d.ExclusiveSubcategories,
		Filtered:               d.Filtered,
	}
}

func (r CategoryRecord) Data() model.CategoryData {
	return model.CategoryData{
		BaseData:               r.BaseRecord.data(),
		ExclusiveSubcategories: r.ExclusiveSubcategories,
		Filtered:               r.Filtered,
	}
}

// NewNoteRecord captures n.
func NewNoteRecord(n *model.Note) NoteRecord {
	d := n.Data()
	return NoteRecord{BaseRecord: baseRecord(d.BaseData), Categories: ids(d.CategoryIDs)}
}

func (r NoteRecord) Data() model.NoteData {
	return model.NoteData{BaseData: r.BaseRecord.data(), CategoryIDs: treeIDs(r.Categories)}
}

// NewEffortRecord captures e.
func NewEffortRecord(e *model.Effort) EffortRecord {
	d := e.Data()
	return EffortRecord{
		ID:          string(d.ID),
		Task:        string(d.TaskID),
		Start:       d.Start,
		Stop:        optTime(d.Stop),
		Description: d.Description,
		Created:     d.Created,
		Modified:    d.Modified,
	}
}

func (r EffortRecord) Data() model.EffortData {
	return model.EffortData{
		ID:          tree.ID(r.ID),
		TaskID:      tree.ID(r.Task),
		Start:       r.Start,
		Stop:        timeOrNone(r.Stop),
		Description: r.Description,
		Created:     r.Created,
		Modified:    r.Modified,
	}
}
