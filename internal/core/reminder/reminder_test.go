package reminder

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/scheduler"
)

var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type fixture struct {
	bus   *testbus.Bus
	clock *clock.Fake
	reg   *model.Registry
	tasks *container.TaskList
	sched *scheduler.Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{bus: testbus.New(t), clock: clock.NewFake(testNow)}
	f.reg = model.NewRegistry(f.bus.Bus, f.clock, model.DefaultSettings())
	f.tasks = container.NewTaskList(f.reg)
	f.sched = scheduler.New(zerolog.Nop(), f.clock)
	t.Cleanup(f.sched.Stop)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.sched.RunDue()
}

func TestController_FiresReminder(t *testing.T) {
	f := newFixture(t)
	c := NewController(zerolog.Nop(), f.reg, f.tasks, f.sched)
	defer c.Close()
	task := f.reg.NewTask("call mom")
	f.tasks.Append(task)

	task.SetReminder(testNow.Add(time.Hour))
	assert.True(t, f.sched.IsScheduled(Key(task)))

	f.advance(59 * time.Minute)
	f.bus.AssertNotPublished(t, ReminderDue.Event())

	f.advance(time.Minute)
	due := testbus.Payloads(f.bus, ReminderDue)
	require.Len(t, due, 1)
	assert.Same(t, task, due[0].Task)
	assert.Equal(t, testNow.Add(time.Hour), due[0].At)
	assert.True(t, date.IsSet(task.Reminder()), "a fired reminder stays until dismissed")
	assert.False(t, f.sched.IsScheduled(Key(task)))
}

func TestController_SchedulesExistingAndAddedTasks(t *testing.T) {
	f := newFixture(t)
	existing := f.reg.NewTask("existing")
	existing.SetReminder(testNow.Add(time.Hour))
	f.tasks.Append(existing)
	later := f.reg.NewTask("later")
	later.SetReminder(testNow.Add(2 * time.Hour))

	c := NewController(zerolog.Nop(), f.reg, f.tasks, f.sched)
	defer c.Close()
	assert.True(t, f.sched.IsScheduled(Key(existing)))
	assert.False(t, f.sched.IsScheduled(Key(later)), "tasks outside the list are ignored")

	f.tasks.Append(later)
	assert.True(t, f.sched.IsScheduled(Key(later)))

	f.tasks.Remove(later)
	assert.False(t, f.sched.IsScheduled(Key(later)))
}

func TestController_SnoozeReschedules(t *testing.T) {
	f := newFixture(t)
	c := NewController(zerolog.Nop(), f.reg, f.tasks, f.sched)
	defer c.Close()
	task := f.reg.NewTask("task")
	task.SetReminder(testNow)
	f.tasks.Append(task)
	f.sched.RunDue()
	require.Len(t, testbus.Payloads(f.bus, ReminderDue), 1)

	c.Snooze(task, 10*time.Minute)
	next, ok := f.sched.Next(Key(task))
	require.True(t, ok)
	assert.Equal(t, testNow.Add(10*time.Minute), next)
	assert.Equal(t, testNow, task.ReminderBeforeSnooze())

	f.advance(10 * time.Minute)
	assert.Len(t, testbus.Payloads(f.bus, ReminderDue), 2)

	c.Dismiss(task)
	assert.False(t, date.IsSet(task.Reminder()))
	assert.False(t, f.sched.IsScheduled(Key(task)))
}

func TestController_CompletionClearsReminder(t *testing.T) {
	f := newFixture(t)
	c := NewController(zerolog.Nop(), f.reg, f.tasks, f.sched)
	defer c.Close()
	task := f.reg.NewTask("task")
	task.SetReminder(testNow.Add(time.Hour))
	f.tasks.Append(task)

	task.Complete()

	assert.False(t, f.sched.IsScheduled(Key(task)))
	f.advance(2 * time.Hour)
	f.bus.AssertNotPublished(t, ReminderDue.Event())
}

func TestStatusWatcher_ReportsTimeDrivenChanges(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	task.SetPlannedStartDateTime(testNow.Add(time.Hour))
	task.SetDueDateTime(testNow.Add(72 * time.Hour))
	f.tasks.Append(task)

	w := NewStatusWatcher(zerolog.Nop(), f.reg, f.tasks, f.sched)
	defer w.Close()
	assert.Equal(t, testNow.Add(time.Hour), w.Next())

	f.advance(time.Hour)
	changes := testbus.Payloads(f.bus, model.TaskStatus)
	require.Len(t, changes, 1)
	assert.Equal(t, model.StatusInactive, changes[0].Previous)
	assert.Equal(t, model.StatusLate, changes[0].Current)

	// Due in three days at noon; due soon starts two days from now at midnight.
	assert.Equal(t, date.StartOfDay(testNow.AddDate(0, 0, 2)), w.Next())
	f.clock.Set(w.Next())
	f.sched.RunDue()
	changes = testbus.Payloads(f.bus, model.TaskStatus)
	require.Len(t, changes, 2)
	assert.Equal(t, model.StatusDueSoon, changes[1].Current)

	f.clock.Set(w.Next())
	f.sched.RunDue()
	changes = testbus.Payloads(f.bus, model.TaskStatus)
	require.Len(t, changes, 3)
	assert.Equal(t, model.StatusOverdue, changes[2].Current)
	assert.False(t, date.IsSet(w.Next()))
	assert.False(t, f.sched.IsScheduled(StatusKey))
}

func TestStatusWatcher_ReportsEdits(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	f.tasks.Append(task)
	w := NewStatusWatcher(zerolog.Nop(), f.reg, f.tasks, f.sched)
	defer w.Close()
	assert.False(t, f.sched.IsScheduled(StatusKey))

	task.Complete()

	changes := testbus.Payloads(f.bus, model.TaskStatus)
	require.Len(t, changes, 1)
	assert.Equal(t, model.StatusCompleted, changes[0].Current)

	task.SetDueDateTime(testNow.Add(-time.Hour))
	assert.Len(t, testbus.Payloads(f.bus, model.TaskStatus), 1, "completed tasks stay completed")
}
