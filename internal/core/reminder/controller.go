// Package reminder turns task dates into scheduler jobs: reminders that fire
// once at their instant, and a status watcher that reports tasks whose
// derived status changes as time passes.
package reminder

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

// ReminderDue is published when a task's reminder fires.
var ReminderDue = eventbus.NewKind[Due]("reminder.due")

// Due is the payload of ReminderDue.
type Due struct {
	Task *model.Task
	At   time.Time
}

// Scheduler is the part of the scheduler used for one-shot jobs.
type Scheduler interface {
	ScheduleAt(key string, when time.Time, fn func()) error
	Unschedule(key string)
}

// Key returns the scheduler key of task's reminder.
func Key(task *model.Task) string { return "reminder:" + string(task.ID()) }

// Controller keeps exactly one pending reminder job per task of a task list.
// Reminders are rescheduled when they change and dropped when the task is
// completed or leaves the list. A fired reminder stays set on the task until
// it is snoozed or dismissed.
type Controller struct {
	reg   *model.Registry
	tasks *container.TaskList
	sched Scheduler
	log   zerolog.Logger
}

// NewController schedules the reminders already present in tasks and starts
// following changes.
func NewController(log zerolog.Logger, reg *model.Registry, tasks *container.TaskList, sched Scheduler) *Controller {
	c := &Controller{reg: reg, tasks: tasks, sched: sched, log: log}

	bus := reg.Bus
	eventbus.Subscribe(bus, container.TasksAdd, c, func(ev container.Added[*model.Task]) {
		for _, t := range ev.Items {
			c.sync(t)
		}
	})
	eventbus.Subscribe(bus, container.TasksRemove, c, func(ev container.Removed[*model.Task]) {
		for _, t := range ev.Items {
			c.sched.Unschedule(Key(t))
		}
	})
	eventbus.Subscribe(bus, model.TaskReminder, c, c.onTaskChanged)
	eventbus.Subscribe(bus, model.TaskCompletionDateTime, c, c.onTaskChanged)

	for _, t := range tasks.Items() {
		c.sync(t)
	}
	return c
}

// Close stops following the task list. Scheduled jobs are left in place.
func (c *Controller) Close() {
	c.reg.Bus.Unsubscribe(c)
}

// Snooze moves task's reminder d into the future.
func (c *Controller) Snooze(task *model.Task, d time.Duration) {
	task.SnoozeReminder(d)
}

// Dismiss clears task's reminder.
func (c *Controller) Dismiss(task *model.Task) {
	task.SetReminder(date.None)
}

func (c *Controller) onTaskChanged(ev model.Changed[time.Time]) {
	if t, ok := ev.Source.(*model.Task); ok {
		c.sync(t)
	}
}

func (c *Controller) sync(t *model.Task) {
	key := Key(t)
	when := t.Reminder()
	if !c.tasks.Contains(t) || !date.IsSet(when) || t.Completed() {
		c.sched.Unschedule(key)
		return
	}
	if err := c.sched.ScheduleAt(key, when, func() { c.fire(t, when) }); err != nil {
		c.log.Error().Err(err).Str("task_id", string(t.ID())).Msg("schedule reminder")
	}
}

func (c *Controller) fire(t *model.Task, at time.Time) {
	c.log.Info().Str("task_id", string(t.ID())).Str("subject", t.Subject()).Msg("reminder due")
	eventbus.Publish(c.reg.Bus, ReminderDue, Due{Task: t, At: at})
}
