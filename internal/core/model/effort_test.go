package model

import (
	"testing"
	"time"

	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffort_DurationAndRemoval(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	start := time.Date(2004, time.January, 1, 10, 0, 0, 0, time.UTC)
	stop := time.Date(2004, time.January, 2, 10, 0, 0, 0, time.UTC)
	e := f.reg.NewEffort(task, start, stop)

	task.AddEffort(e)
	assert.Equal(t, 24*time.Hour, e.Duration())
	assert.Equal(t, 24*time.Hour, task.TimeSpent())

	task.RemoveEffort(e)
	assert.Zero(t, task.TimeSpent())
}

func TestEffort_TrackedDurationFollowsClock(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")

	e := task.StartTracking()
	require.True(t, e.IsBeingTracked())
	assert.True(t, task.IsBeingTracked())
	assert.Equal(t, testNow, task.ActualStartDateTime(), "tracking starts the task")

	f.clock.Advance(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, e.Duration())

	stopped := task.StopTracking()
	assert.Equal(t, []*Effort{e}, stopped)
	assert.False(t, task.IsBeingTracked())
}

func TestEffort_InvertedIntervalIsStored(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	e := f.reg.NewEffort(task, days(0), days(-1))

	assert.Equal(t, -24*time.Hour, e.Duration())
}

func TestEffort_SetTask(t *testing.T) {
	f := newFixture(t)
	from := f.reg.NewTask("from")
	to := f.reg.NewTask("to")
	e := f.reg.NewEffort(from, days(-1), days(-1).Add(time.Hour))
	from.AddEffort(e)
	f.bus.Reset()

	e.SetTask(to)

	assert.Empty(t, from.Efforts())
	assert.Equal(t, []*Effort{e}, to.Efforts())
	assert.Same(t, to, e.Task())
	assert.Equal(t, "to", e.Subject())
	assert.Equal(t, []string{
		string(TaskEffortRemove.Event()),
		string(TaskEffortAdd.Event()),
		string(TaskActualStartDateTime.Event()),
		string(EffortTask.Event()),
	}, eventNames(f.bus))
}

func TestTask_AddEffortMovesFromPreviousOwner(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	a := f.reg.NewTask("a")
	b := f.reg.NewTask("b")
	parent.AddChild(a)
	parent.AddChild(b)
	e := f.reg.NewEffort(a, days(-1), days(-1).Add(time.Hour))
	a.AddEffort(e)

	require.True(t, b.AddEffort(e))

	assert.Empty(t, a.Efforts())
	assert.Equal(t, []*Effort{e}, b.Efforts())
	assert.Same(t, b, e.Task())
	assert.Len(t, parent.RecursiveEfforts(), 1)
	assert.Equal(t, time.Hour, parent.RecursiveTimeSpent(), "the effort is counted once")
}

func TestEffort_RecursiveTracking(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	child := f.reg.NewTask("child")
	parent.AddChild(child)

	child.StartTracking()

	assert.False(t, parent.IsBeingTracked())
	assert.True(t, parent.RecursiveIsBeingTracked())
	assert.Len(t, parent.RecursiveEfforts(), 1)
}

func TestEffort_Revenue(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	task.SetHourlyFee(80)
	e := f.reg.NewEffort(task, days(-1), days(-1).Add(90*time.Minute))
	task.AddEffort(e)

	assert.InDelta(t, 120.0, e.Revenue(), 1e-9)
}

func eventNames(tb *testbus.Bus) []string {
	var out []string
	for _, ev := range tb.Names() {
		out = append(out, string(ev))
	}
	return out
}
