// Package effort keeps the flat, always current view of all efforts of a task
// list and derives the aggregations built on it: time-spent totals, calendar
// windows and per-period groupings.
package effort

import (
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/pkg/kv"
)

var (
	EffortsAdd    = eventbus.NewKind[Change]("efforts.add")
	EffortsRemove = eventbus.NewKind[Change]("efforts.remove")
)

// Change lists efforts that entered or left a List.
type Change struct {
	Efforts []*model.Effort
}

type cacheKey struct {
	task      string
	recursive bool
}

// List mirrors the efforts of every task in a TaskList. It caches the closed
// part of TimeSpentForTask per (task, recursive); tracked efforts are measured
// at query time so the cache never goes stale while the clock runs.
type List struct {
	reg     *model.Registry
	tasks   *container.TaskList
	efforts []*model.Effort
	cache   *kv.Memo[cacheKey, time.Duration]
	log     zerolog.Logger
}

// NewList builds the effort list for tasks and starts following it.
func NewList(log zerolog.Logger, reg *model.Registry, tasks *container.TaskList) *List {
	l := &List{
		reg:   reg,
		tasks: tasks,
		cache: kv.New[cacheKey, time.Duration](),
		log:   log,
	}
	for _, t := range tasks.Items() {
		l.efforts = append(l.efforts, t.Efforts()...)
	}

	bus := reg.Bus
	eventbus.Subscribe(bus, container.TasksAdd, l, l.onTasksAdded)
	eventbus.Subscribe(bus, container.TasksRemove, l, l.onTasksRemoved)
	eventbus.Subscribe(bus, model.TaskEffortAdd, l, l.onEffortAdded)
	eventbus.Subscribe(bus, model.TaskEffortRemove, l, l.onEffortRemoved)
	eventbus.Subscribe(bus, model.EffortStart, l, l.onEffortChanged)
	eventbus.Subscribe(bus, model.EffortStop, l, l.onEffortChanged)
	eventbus.Subscribe(bus, model.TaskAddChild, l, l.onChildChanged)
	eventbus.Subscribe(bus, model.TaskRemoveChild, l, l.onChildChanged)
	return l
}

// Close stops following the task list.
func (l *List) Close() {
	l.reg.Bus.Unsubscribe(l)
}

func (l *List) Len() int { return len(l.efforts) }

// Efforts returns all efforts in the order they joined the list.
func (l *List) Efforts() []*model.Effort {
	return slices.Clone(l.efforts)
}

// Contains reports whether e is part of the list.
func (l *List) Contains(e *model.Effort) bool {
	return slices.Contains(l.efforts, e)
}

// CurrentlyTracked returns the efforts without a stop.
func (l *List) CurrentlyTracked() []*model.Effort {
	var out []*model.Effort
	for _, e := range l.efforts {
		if e.IsBeingTracked() {
			out = append(out, e)
		}
	}
	return out
}

// TimeSpentForTask sums the durations of task's efforts, including those of
// its subtasks when recursive is set.
func (l *List) TimeSpentForTask(task *model.Task, recursive bool) time.Duration {
	efforts := task.Efforts()
	if recursive {
		efforts = task.RecursiveEfforts()
	}

	key := cacheKey{task: string(task.ID()), recursive: recursive}
	closed := l.cache.GetOrCompute(key, func() time.Duration {
		var d time.Duration
		for _, e := range efforts {
			if !e.IsBeingTracked() {
				d += e.Duration()
			}
		}
		return d
	})

	total := closed
	now := l.reg.Now()
	for _, e := range efforts {
		if e.IsBeingTracked() {
			total += e.DurationAt(now)
		}
	}
	return total
}

// invalidate drops the entries that can include task's own efforts: task's
// own pair and the recursive entries of its ancestors.
func (l *List) invalidate(task *model.Task) {
	if task == nil {
		return
	}
	l.cache.Forget(cacheKey{task: string(task.ID())})
	l.invalidateRecursive(task)
}

func (l *List) invalidateRecursive(task *model.Task) {
	keys := []cacheKey{{task: string(task.ID()), recursive: true}}
	for _, a := range task.Ancestors() {
		keys = append(keys, cacheKey{task: string(a.ID()), recursive: true})
	}
	l.cache.Forget(keys...)
}

func (l *List) add(efforts []*model.Effort) {
	var added []*model.Effort
	for _, e := range efforts {
		if !slices.Contains(l.efforts, e) {
			l.efforts = append(l.efforts, e)
			added = append(added, e)
		}
	}
	if len(added) > 0 {
		eventbus.Publish(l.reg.Bus, EffortsAdd, Change{Efforts: added})
	}
}

func (l *List) remove(efforts []*model.Effort) {
	var removed []*model.Effort
	for _, e := range efforts {
		if i := slices.Index(l.efforts, e); i >= 0 {
			l.efforts = slices.Delete(l.efforts, i, i+1)
			removed = append(removed, e)
		}
	}
	if len(removed) > 0 {
		eventbus.Publish(l.reg.Bus, EffortsRemove, Change{Efforts: removed})
	}
}

func (l *List) onTasksAdded(ev container.Added[*model.Task]) {
	var efforts []*model.Effort
	for _, t := range ev.Items {
		efforts = append(efforts, t.Efforts()...)
		l.invalidate(t)
	}
	l.add(efforts)
}

func (l *List) onTasksRemoved(ev container.Removed[*model.Task]) {
	var efforts []*model.Effort
	for _, t := range ev.Items {
		efforts = append(efforts, t.Efforts()...)
		l.invalidate(t)
	}
	l.remove(efforts)
}

func (l *List) onEffortAdded(ev model.EffortLink) {
	l.invalidate(ev.Task)
	if !l.tasks.Contains(ev.Task) {
		return
	}
	l.log.Debug().Str("task", string(ev.Task.ID())).Str("effort", string(ev.Effort.ID())).Msg("effort added")
	l.add([]*model.Effort{ev.Effort})
}

func (l *List) onEffortRemoved(ev model.EffortLink) {
	l.invalidate(ev.Task)
	l.remove([]*model.Effort{ev.Effort})
}

func (l *List) onEffortChanged(ev model.Changed[time.Time]) {
	if e, ok := ev.Source.(*model.Effort); ok {
		l.invalidate(e.Task())
	}
}

func (l *List) onChildChanged(ev model.ChildChanged) {
	if t, ok := ev.Parent.(*model.Task); ok {
		l.invalidateRecursive(t)
	}
}
