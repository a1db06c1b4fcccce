package reminder

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// StatusKey is the scheduler key of the status watcher's job.
const StatusKey = "status:next"

// StatusWatcher publishes model.TaskStatus whenever a task's derived status
// differs from the last one it reported. It re-evaluates after date edits and
// at the next instant any task's status can change with time alone.
type StatusWatcher struct {
	reg   *model.Registry
	tasks *container.TaskList
	sched Scheduler
	log   zerolog.Logger
	last  map[tree.ID]model.Status
	next  time.Time
}

// NewStatusWatcher records the current statuses of tasks and schedules the
// first re-evaluation.
func NewStatusWatcher(log zerolog.Logger, reg *model.Registry, tasks *container.TaskList, sched Scheduler) *StatusWatcher {
	w := &StatusWatcher{
		reg:   reg,
		tasks: tasks,
		sched: sched,
		log:   log,
		last:  make(map[tree.ID]model.Status),
		next:  date.None,
	}
	for _, t := range tasks.Items() {
		w.last[t.ID()] = t.Status()
	}

	bus := reg.Bus
	eventbus.Subscribe(bus, container.TasksAdd, w, func(ev container.Added[*model.Task]) {
		for _, t := range ev.Items {
			w.last[t.ID()] = t.Status()
		}
		w.reschedule()
	})
	eventbus.Subscribe(bus, container.TasksRemove, w, func(ev container.Removed[*model.Task]) {
		for _, t := range ev.Items {
			delete(w.last, t.ID())
		}
		w.reschedule()
	})
	for _, k := range []eventbus.Kind[model.Changed[time.Time]]{
		model.TaskPlannedStartDateTime,
		model.TaskActualStartDateTime,
		model.TaskDueDateTime,
		model.TaskCompletionDateTime,
	} {
		eventbus.Subscribe(bus, k, w, func(model.Changed[time.Time]) { w.Check() })
	}

	w.reschedule()
	return w
}

// Close unschedules the watcher's job and stops following the list.
func (w *StatusWatcher) Close() {
	w.reg.Bus.Unsubscribe(w)
	w.sched.Unschedule(StatusKey)
}

// Next returns when the watcher will re-evaluate, or date.None.
func (w *StatusWatcher) Next() time.Time { return w.next }

// Check publishes a StatusChange for every task whose status moved since it
// was last seen and reschedules the watcher.
func (w *StatusWatcher) Check() {
	for _, t := range w.tasks.Items() {
		current := t.Status()
		previous, ok := w.last[t.ID()]
		w.last[t.ID()] = current
		if ok && previous != current {
			w.log.Debug().
				Str("task_id", string(t.ID())).
				Str("from", string(previous)).
				Str("to", string(current)).
				Msg("status changed")
			eventbus.Publish(w.reg.Bus, model.TaskStatus, model.StatusChange{Task: t, Previous: previous, Current: current})
		}
	}
	w.reschedule()
}

func (w *StatusWatcher) reschedule() {
	now := w.reg.Now()
	next := date.None
	for _, t := range w.tasks.Items() {
		next = date.Min(next, t.NextStatusChange(now))
	}
	if next.Equal(w.next) {
		return
	}
	w.next = next
	if !date.IsSet(next) {
		w.sched.Unschedule(StatusKey)
		return
	}
	if err := w.sched.ScheduleAt(StatusKey, next, w.Check); err != nil {
		w.log.Error().Err(err).Msg("schedule status watcher")
	}
}
