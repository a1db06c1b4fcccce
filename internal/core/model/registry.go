// Package model holds the domain objects of the task manager: tasks,
// categories, notes and efforts, their composite hierarchy, derived status and
// recursive attributes.
//
// All objects are created through a Registry, which is the explicit
// application context: it owns the event bus, the clock, behavior settings and
// the arenas that resolve IDs to objects. Nothing in this package is global.
package model

import (
	"errors"
	"time"

	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// ErrNotFound is returned when an ID does not resolve to an object.
var ErrNotFound = errors.New("not found")

// Type identifies the kind of a domain object.
type Type string

const (
	TypeTask     Type = "task"
	TypeCategory Type = "category"
	TypeNote     Type = "note"
	TypeEffort   Type = "effort"
)

// Object is implemented by every domain object.
type Object interface {
	ID() tree.ID
	Subject() string
	Type() Type
}

// Settings are the behavior preferences consulted by the model.
type Settings struct {
	// MarkParentCompleted is the default for tasks whose own
	// mark-parent-completed setting is Inherit all the way up.
	MarkParentCompleted bool
	// DueSoonDays is the number of days after today covered by the due-soon
	// horizon.
	DueSoonDays int
	// WeekStart is the first day of a week for effort aggregation.
	WeekStart time.Weekday
	// StopTrackingOnComplete stops tracked efforts when a task completes.
	StopTrackingOnComplete bool
}

// DefaultSettings returns the stock behavior.
func DefaultSettings() Settings {
	return Settings{
		MarkParentCompleted:    true,
		DueSoonDays:            1,
		WeekStart:              time.Monday,
		StopTrackingOnComplete: true,
	}
}

// Registry is the context every domain object is bound to.
type Registry struct {
	Bus      *eventbus.Bus
	Clock    clock.Clock
	Settings Settings

	tasks      *tree.Forest
	categories *tree.Forest
	notes      *tree.Forest
	efforts    map[tree.ID]*Effort
}

// NewRegistry creates an empty registry. A nil clock selects the system clock.
func NewRegistry(bus *eventbus.Bus, clk clock.Clock, settings Settings) *Registry {
	if clk == nil {
		clk = clock.System{}
	}
	return &Registry{
		Bus:        bus,
		Clock:      clk,
		Settings:   settings,
		tasks:      tree.NewForest(),
		categories: tree.NewForest(),
		notes:      tree.NewForest(),
		efforts:    make(map[tree.ID]*Effort),
	}
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time {
	return r.Clock.Now()
}

// Task resolves a task ID.
func (r *Registry) Task(id tree.ID) (*Task, bool) {
	t, ok := r.tasks.Owner(id).(*Task)
	return t, ok
}

// Category resolves a category ID.
func (r *Registry) Category(id tree.ID) (*Category, bool) {
	c, ok := r.categories.Owner(id).(*Category)
	return c, ok
}

// Note resolves a note ID.
func (r *Registry) Note(id tree.ID) (*Note, bool) {
	n, ok := r.notes.Owner(id).(*Note)
	return n, ok
}

// Effort resolves an effort ID.
func (r *Registry) Effort(id tree.ID) (*Effort, bool) {
	e, ok := r.efforts[id]
	return e, ok
}

// Lookup resolves an ID of any object type.
func (r *Registry) Lookup(id tree.ID) (Object, bool) {
	if t, ok := r.Task(id); ok {
		return t, true
	}
	if c, ok := r.Category(id); ok {
		return c, true
	}
	if n, ok := r.Note(id); ok {
		return n, true
	}
	if e, ok := r.Effort(id); ok {
		return e, true
	}
	return nil, false
}

// Forget drops obj and, for tasks, its efforts from the arenas. Forgotten
// objects no longer resolve by ID; references held elsewhere stay valid.
func (r *Registry) Forget(obj Object) {
	switch o := obj.(type) {
	case *Task:
		for _, e := range o.efforts {
			delete(r.efforts, e.id)
		}
		r.tasks.Forget(o.ID())
	case *Category:
		r.categories.Forget(o.ID())
	case *Note:
		r.notes.Forget(o.ID())
	case *Effort:
		delete(r.efforts, o.id)
	}
}

// Counts reports how many objects of each type resolve.
func (r *Registry) Counts() map[Type]int {
	return map[Type]int{
		TypeTask:     r.tasks.Len(),
		TypeCategory: r.categories.Len(),
		TypeNote:     r.notes.Len(),
		TypeEffort:   len(r.efforts),
	}
}

func nodeOwners[T any](nodes []*tree.Node) []T {
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := n.Owner().(T); ok {
			out = append(out, v)
		}
	}
	return out
}
