package effort

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

func TestList_PicksUpExistingEfforts(t *testing.T) {
	f := newFixture(t)
	task := f.task("write")
	e := f.effort(task, at(12, 9), time.Hour)

	list := NewList(zerolog.Nop(), f.reg, f.tasks)
	defer list.Close()

	assert.True(t, list.Contains(e))
	assert.Equal(t, 1, list.Len())
}

func TestList_FollowsTasksAndEfforts(t *testing.T) {
	f := newFixture(t)
	inList := f.task("in list")
	outside := f.reg.NewTask("outside")

	e1 := f.effort(inList, at(12, 9), time.Hour)
	e2 := f.effort(outside, at(12, 9), time.Hour)
	assert.Equal(t, 1, f.list.Len())
	assert.True(t, f.list.Contains(e1))
	assert.False(t, f.list.Contains(e2))

	f.tasks.Append(outside)
	assert.True(t, f.list.Contains(e2))

	added := testbus.Payloads(f.bus, EffortsAdd)
	require.Len(t, added, 2)
	assert.Equal(t, []*model.Effort{e2}, added[1].Efforts)

	f.tasks.Remove(inList)
	assert.Equal(t, []*model.Effort{e2}, f.list.Efforts())

	outside.RemoveEffort(e2)
	assert.Zero(t, f.list.Len())
}

func TestList_SubtaskEffortsFollowTheSubtree(t *testing.T) {
	f := newFixture(t)
	parent := f.task("parent")
	child := f.reg.NewTask("child")
	e := f.effort(child, at(12, 9), time.Hour)

	parent.AddChild(child)
	assert.True(t, f.list.Contains(e))

	f.tasks.Remove(parent)
	assert.False(t, f.list.Contains(e))
}

func TestList_MovingAnEffort(t *testing.T) {
	f := newFixture(t)
	a := f.task("a")
	b := f.task("b")
	e := f.effort(a, at(12, 9), 2*time.Hour)
	require.Equal(t, 2*time.Hour, f.list.TimeSpentForTask(a, false))
	require.Zero(t, f.list.TimeSpentForTask(b, false))

	e.SetTask(b)

	assert.Zero(t, f.list.TimeSpentForTask(a, false))
	assert.Equal(t, 2*time.Hour, f.list.TimeSpentForTask(b, false))
	assert.True(t, f.list.Contains(e))
}

func TestList_ScenarioD(t *testing.T) {
	f := newFixture(t)
	task := f.task("task")
	start := time.Date(2004, time.January, 1, 10, 0, 0, 0, time.UTC)
	stop := time.Date(2004, time.January, 2, 10, 0, 0, 0, time.UTC)
	e := f.reg.NewEffort(task, start, stop)
	task.AddEffort(e)

	assert.Equal(t, 24*time.Hour, e.Duration())
	assert.Equal(t, 24*time.Hour, f.list.TimeSpentForTask(task, false))

	task.RemoveEffort(e)

	assert.Zero(t, f.list.TimeSpentForTask(task, false))
	assert.Zero(t, task.TimeSpent())
}

func TestList_CacheInvalidationIsPrecise(t *testing.T) {
	f := newFixture(t)
	t1 := f.task("t1")
	t2 := f.task("t2")
	f.effort(t1, at(12, 9), time.Hour)
	e2 := f.effort(t2, at(12, 9), 2*time.Hour)

	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(t1, false))
	assert.Equal(t, 2*time.Hour, f.list.TimeSpentForTask(t2, false))
	require.True(t, f.cached(t1, false))
	require.True(t, f.cached(t2, false))

	e2.SetStop(e2.Start().Add(3 * time.Hour))

	assert.True(t, f.cached(t1, false), "unrelated entry survives")
	assert.False(t, f.cached(t2, false))
	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(t1, false))
	assert.Equal(t, 3*time.Hour, f.list.TimeSpentForTask(t2, false))

	f.effort(t2, at(13, 9), time.Hour)
	assert.True(t, f.cached(t1, false))
	assert.Equal(t, 4*time.Hour, f.list.TimeSpentForTask(t2, false))
}

func TestList_RecursiveInvalidation(t *testing.T) {
	f := newFixture(t)
	root := f.task("root")
	mid := f.reg.NewTask("mid")
	leaf := f.reg.NewTask("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)
	sibling := f.task("sibling")

	f.effort(root, at(12, 9), time.Hour)
	f.effort(mid, at(12, 9), time.Hour)
	f.effort(sibling, at(12, 9), time.Hour)

	assert.Equal(t, 2*time.Hour, f.list.TimeSpentForTask(root, true))
	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(root, false))
	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(mid, true))
	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(sibling, true))

	f.effort(leaf, at(12, 9), 30*time.Minute)

	assert.False(t, f.cached(root, true))
	assert.False(t, f.cached(mid, true))
	assert.True(t, f.cached(root, false), "own entry of an ancestor survives")
	assert.True(t, f.cached(sibling, true))
	assert.Equal(t, 150*time.Minute, f.list.TimeSpentForTask(root, true))
	assert.Equal(t, 90*time.Minute, f.list.TimeSpentForTask(mid, true))

	root.RemoveChild(mid)
	assert.False(t, f.cached(root, true))
	assert.True(t, f.cached(mid, true))
	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(root, true))
}

func TestList_TrackedEffortsAreMeasuredLive(t *testing.T) {
	f := newFixture(t)
	task := f.task("task")
	f.effort(task, at(12, 9), time.Hour)
	e := task.StartTracking()

	assert.Equal(t, []*model.Effort{e}, f.list.CurrentlyTracked())
	assert.Equal(t, time.Hour, f.list.TimeSpentForTask(task, false))

	f.clock.Advance(30 * time.Minute)
	assert.Equal(t, 90*time.Minute, f.list.TimeSpentForTask(task, false))

	task.StopTracking()
	f.clock.Advance(time.Hour)
	assert.Empty(t, f.list.CurrentlyTracked())
	assert.Equal(t, 90*time.Minute, f.list.TimeSpentForTask(task, false))
}
