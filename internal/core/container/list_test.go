package container

import (
	"testing"
	"time"

	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T) (*model.Registry, *testbus.Bus) {
	t.Helper()
	bus := testbus.New(t)
	return model.NewRegistry(bus.Bus, clock.NewFake(testNow), model.DefaultSettings()), bus
}

func TestTaskList_ExtendAddsSubtree(t *testing.T) {
	reg, bus := newRegistry(t)
	list := NewTaskList(reg)
	parent := reg.NewTask("parent")
	child := reg.NewTask("child")
	parent.AddChild(child)

	list.Extend(parent)

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, []*model.Task{parent}, list.RootItems())
	assert.True(t, list.Contains(child))

	added := testbus.Payloads(bus, TasksAdd)
	require.Len(t, added, 1)
	assert.Equal(t, []*model.Task{parent, child}, added[0].Items)
}

func TestTaskList_ExtendTwiceIsNoop(t *testing.T) {
	reg, bus := newRegistry(t)
	list := NewTaskList(reg)
	task := reg.NewTask("task")

	list.Append(task)
	list.Append(task)

	assert.Equal(t, 1, list.Len())
	assert.Equal(t, 1, bus.Count(TasksAdd.Event()))
}

func TestTaskList_AddChildToMemberJoinsList(t *testing.T) {
	reg, bus := newRegistry(t)
	list := NewTaskList(reg)
	parent := reg.NewTask("parent")
	list.Append(parent)
	bus.Reset()

	child := reg.NewTask("child")
	parent.AddChild(child)

	assert.True(t, list.Contains(child))
	assert.Equal(t, []*model.Task{parent}, list.RootItems())
	assert.Equal(t, 1, bus.Count(TasksAdd.Event()))
}

func TestTaskList_RemoveCascadesAndDetaches(t *testing.T) {
	reg, bus := newRegistry(t)
	list := NewTaskList(reg)
	root := reg.NewTask("root")
	mid := reg.NewTask("mid")
	leaf := reg.NewTask("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)
	list.Append(root)

	list.Remove(mid)

	assert.Equal(t, []*model.Task{root}, list.Items())
	assert.Empty(t, root.Children())
	assert.Same(t, root, mid.Parent(), "removed subtree keeps its parent reference")
	assert.Equal(t, []*model.Task{leaf}, mid.Children(), "the subtree itself is intact")

	removed := testbus.Payloads(bus, TasksRemove)
	require.Len(t, removed, 1)
	assert.Equal(t, []*model.Task{mid, leaf}, removed[0].Items)
}

func TestTaskList_ReaddRestoresPosition(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	root := reg.NewTask("root")
	child := reg.NewTask("child")
	root.AddChild(child)
	list.Append(root)
	list.Remove(child)

	list.Append(child)

	assert.Equal(t, []*model.Task{child}, root.Children())
	assert.Equal(t, []*model.Task{root}, list.RootItems())
}

func TestTaskList_ReaddWithoutParentBecomesRoot(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	root := reg.NewTask("root")
	child := reg.NewTask("child")
	root.AddChild(child)
	list.Append(root)
	list.Remove(root)

	list.Append(child)

	assert.Nil(t, child.Parent())
	assert.Empty(t, root.Children())
	assert.Equal(t, []*model.Task{child}, list.RootItems())
}

func TestTaskList_RemoveUnknownIsIgnored(t *testing.T) {
	reg, bus := newRegistry(t)
	list := NewTaskList(reg)

	list.Remove(reg.NewTask("stranger"))

	bus.AssertNotPublished(t, TasksRemove.Event())
}

func TestTaskList_RemoveDetachesCategoriesAndPrerequisites(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	cat := reg.NewCategory("cat")
	a := reg.NewTask("a")
	b := reg.NewTask("b")
	a.AddCategory(cat)
	b.AddPrerequisite(a)
	list.Extend(a, b)

	list.Remove(a)

	assert.Empty(t, cat.Categorizables())
	assert.True(t, a.HasCategory(cat), "the task keeps its own categories")
	assert.Empty(t, b.Prerequisites())

	list.Append(a)
	assert.Equal(t, []model.Categorizable{a}, cat.Categorizables())
}

func TestCategoryList_RemoveUnlinksItems(t *testing.T) {
	reg, _ := newRegistry(t)
	cats := NewCategoryList(reg)
	cat := reg.NewCategory("cat")
	cats.Append(cat)
	task := reg.NewTask("task")
	note := reg.NewNote("note")
	task.AddCategory(cat)
	note.AddCategory(cat)

	cats.Remove(cat)

	assert.Empty(t, task.Categories())
	assert.Empty(t, note.Categories())
}

func TestList_Find(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	a := reg.NewTask("Groceries")
	b := reg.NewTask("Taxes")
	list.Extend(a, b)

	got, err := list.Find(string(a.ID()))
	require.NoError(t, err)
	assert.Same(t, a, got)

	got, err = list.Find(string(b.ID())[:8])
	require.NoError(t, err)
	assert.Same(t, b, got)

	got, err = list.Find("groceries")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = list.Find("nothing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	list.Append(reg.NewTask("taxes"))
	_, err = list.Find("TAXES")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestList_Clear(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	parent := reg.NewTask("parent")
	parent.AddChild(reg.NewTask("child"))
	list.Extend(parent, reg.NewTask("other"))

	list.Clear()

	assert.Zero(t, list.Len())
}

func TestList_CloseStopsFollowingChildren(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	parent := reg.NewTask("parent")
	list.Append(parent)

	list.Close()
	parent.AddChild(reg.NewTask("child"))

	assert.Equal(t, 1, list.Len())
}
