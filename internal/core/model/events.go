package model

import (
	"strings"
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Touch names one persisted attribute of one object affected by an event.
type Touch struct {
	Object    Object
	Attribute string
}

// Toucher is implemented by the payload of every event that mutates persisted
// state. Generic observers such as the change monitor use it to attribute an
// event to objects without knowing the concrete payload type.
type Toucher interface {
	Touches() []Touch
}

// Changed is the payload of single-attribute events.
type Changed[T any] struct {
	Source    Object
	Attribute string
	Value     T
}

func (c Changed[T]) Touches() []Touch {
	return []Touch{{Object: c.Source, Attribute: c.Attribute}}
}

// ChildChanged is published when a child is added to or removed from a parent.
type ChildChanged struct {
	Parent Object
	Child  Object
}

func (c ChildChanged) Touches() []Touch {
	return []Touch{
		{Object: c.Parent, Attribute: "children"},
		{Object: c.Child, Attribute: "parent"},
	}
}

// CategoryLink is published when an item joins or leaves a category.
type CategoryLink struct {
	Item     Categorizable
	Category *Category
}

func (c CategoryLink) Touches() []Touch {
	return []Touch{{Object: c.Item, Attribute: "categories"}}
}

// EffortLink is published when an effort is attached to or detached from a task.
type EffortLink struct {
	Task   *Task
	Effort *Effort
}

func (e EffortLink) Touches() []Touch {
	return []Touch{{Object: e.Task, Attribute: "efforts"}}
}

// StatusChange reports a task whose derived status moved as time passed.
type StatusChange struct {
	Task     *Task
	Previous Status
	Current  Status
}

// Tick reports the running duration of a tracked effort.
type Tick struct {
	Effort   *Effort
	Duration time.Duration
}

var mutationEvents []eventbus.Event

// mutation declares a kind whose payload touches persisted attributes.
func mutation[P Toucher](name string) eventbus.Kind[P] {
	k := eventbus.NewKind[P](name)
	mutationEvents = append(mutationEvents, k.Event())
	return k
}

// MutationEvents lists every event that changes persisted state.
func MutationEvents() []eventbus.Event {
	out := make([]eventbus.Event, len(mutationEvents))
	copy(out, mutationEvents)
	return out
}

// Task events.
var (
	TaskSubject              = mutation[Changed[string]]("task.subject")
	TaskDescription          = mutation[Changed[string]]("task.description")
	TaskForegroundColor      = mutation[Changed[appearance.Color]]("task.foregroundColor")
	TaskBackgroundColor      = mutation[Changed[appearance.Color]]("task.backgroundColor")
	TaskExpanded             = mutation[Changed[bool]]("task.expanded")
	TaskAttachments          = mutation[Changed[[]Attachment]]("task.attachments")
	TaskAddChild             = mutation[ChildChanged]("task.addChild")
	TaskRemoveChild          = mutation[ChildChanged]("task.removeChild")
	TaskCategoryAdd          = mutation[CategoryLink]("task.category.add")
	TaskCategoryRemove       = mutation[CategoryLink]("task.category.remove")
	TaskPlannedStartDateTime = mutation[Changed[time.Time]]("task.plannedStartDateTime")
	TaskActualStartDateTime  = mutation[Changed[time.Time]]("task.actualStartDateTime")
	TaskDueDateTime          = mutation[Changed[time.Time]]("task.dueDateTime")
	TaskCompletionDateTime   = mutation[Changed[time.Time]]("task.completionDateTime")
	TaskReminder             = mutation[Changed[time.Time]]("task.reminder")
	TaskRecurrence           = mutation[Changed[Recurrence]]("task.recurrence")
	TaskBudget               = mutation[Changed[time.Duration]]("task.budget")
	TaskHourlyFee            = mutation[Changed[float64]]("task.hourlyFee")
	TaskFixedFee             = mutation[Changed[float64]]("task.fixedFee")
	TaskPriority             = mutation[Changed[int]]("task.priority")
	TaskPercentageComplete   = mutation[Changed[int]]("task.percentageComplete")
	TaskMarkParentCompleted  = mutation[Changed[Tristate]]("task.markParentCompleted")
	TaskPrerequisites        = mutation[Changed[[]tree.ID]]("task.prerequisites")
	TaskEffortAdd            = mutation[EffortLink]("task.effort.add")
	TaskEffortRemove         = mutation[EffortLink]("task.effort.remove")

	TaskStatus = eventbus.NewKind[StatusChange]("task.status")
)

// Category events.
var (
	CategorySubject                = mutation[Changed[string]]("category.subject")
	CategoryDescription            = mutation[Changed[string]]("category.description")
	CategoryForegroundColor        = mutation[Changed[appearance.Color]]("category.foregroundColor")
	CategoryBackgroundColor        = mutation[Changed[appearance.Color]]("category.backgroundColor")
	CategoryExpanded               = mutation[Changed[bool]]("category.expanded")
	CategoryAttachments            = mutation[Changed[[]Attachment]]("category.attachments")
	CategoryAddChild               = mutation[ChildChanged]("category.addChild")
	CategoryRemoveChild            = mutation[ChildChanged]("category.removeChild")
	CategoryExclusiveSubcategories = mutation[Changed[bool]]("category.exclusiveSubcategories")
	CategoryFiltered               = mutation[Changed[bool]]("category.filtered")
)

// Note events.
var (
	NoteSubject         = mutation[Changed[string]]("note.subject")
	NoteDescription     = mutation[Changed[string]]("note.description")
	NoteForegroundColor = mutation[Changed[appearance.Color]]("note.foregroundColor")
	NoteBackgroundColor = mutation[Changed[appearance.Color]]("note.backgroundColor")
	NoteExpanded        = mutation[Changed[bool]]("note.expanded")
	NoteAttachments     = mutation[Changed[[]Attachment]]("note.attachments")
	NoteAddChild        = mutation[ChildChanged]("note.addChild")
	NoteRemoveChild     = mutation[ChildChanged]("note.removeChild")
	NoteCategoryAdd     = mutation[CategoryLink]("note.category.add")
	NoteCategoryRemove  = mutation[CategoryLink]("note.category.remove")
)

// Effort events.
var (
	EffortStart       = mutation[Changed[time.Time]]("effort.start")
	EffortStop        = mutation[Changed[time.Time]]("effort.stop")
	EffortDescription = mutation[Changed[string]]("effort.description")
	EffortTask        = mutation[Changed[*Task]]("effort.task")

	EffortDuration = eventbus.NewKind[Tick]("effort.duration")
)

type baseKinds struct {
	subject     eventbus.Kind[Changed[string]]
	description eventbus.Kind[Changed[string]]
	foreground  eventbus.Kind[Changed[appearance.Color]]
	background  eventbus.Kind[Changed[appearance.Color]]
	expanded    eventbus.Kind[Changed[bool]]
	attachments eventbus.Kind[Changed[[]Attachment]]
	addChild    eventbus.Kind[ChildChanged]
	removeChild eventbus.Kind[ChildChanged]
}

type membershipKinds struct {
	add    eventbus.Kind[CategoryLink]
	remove eventbus.Kind[CategoryLink]
}

var (
	taskBase = &baseKinds{
		subject: TaskSubject, description: TaskDescription,
		foreground: TaskForegroundColor, background: TaskBackgroundColor,
		expanded: TaskExpanded, attachments: TaskAttachments,
		addChild: TaskAddChild, removeChild: TaskRemoveChild,
	}
	categoryBase = &baseKinds{
		subject: CategorySubject, description: CategoryDescription,
		foreground: CategoryForegroundColor, background: CategoryBackgroundColor,
		expanded: CategoryExpanded, attachments: CategoryAttachments,
		addChild: CategoryAddChild, removeChild: CategoryRemoveChild,
	}
	noteBase = &baseKinds{
		subject: NoteSubject, description: NoteDescription,
		foreground: NoteForegroundColor, background: NoteBackgroundColor,
		expanded: NoteExpanded, attachments: NoteAttachments,
		addChild: NoteAddChild, removeChild: NoteRemoveChild,
	}

	taskMembership = &membershipKinds{add: TaskCategoryAdd, remove: TaskCategoryRemove}
	noteMembership = &membershipKinds{add: NoteCategoryAdd, remove: NoteCategoryRemove}
)

// attributeName returns the attribute part of an event name: "task.subject"
// yields "subject".
func attributeName(ev eventbus.Event) string {
	_, attr, _ := strings.Cut(string(ev), ".")
	return attr
}

func publishChange[T any](r *Registry, k eventbus.Kind[Changed[T]], src Object, value T) {
	eventbus.Publish(r.Bus, k, Changed[T]{
		Source:    src,
		Attribute: attributeName(k.Event()),
		Value:     value,
	})
}
