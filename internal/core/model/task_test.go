package model

import (
	"testing"
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("write report")

	assert.NotEmpty(t, task.ID())
	assert.Equal(t, "write report", task.Subject())
	assert.Equal(t, TypeTask, task.Type())
	assert.False(t, date.IsSet(task.DueDateTime()))
	assert.False(t, date.IsSet(task.PlannedStartDateTime()))
	assert.False(t, date.IsSet(task.ActualStartDateTime()))
	assert.False(t, date.IsSet(task.Reminder()))
	assert.Equal(t, testNow, task.CreationDateTime())
	assert.Equal(t, StatusInactive, task.Status())

	got, ok := f.reg.Task(task.ID())
	require.True(t, ok)
	assert.Same(t, task, got)
}

func TestTask_SetterPublishesAndTouches(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	f.clock.Advance(time.Minute)

	task.SetDueDateTime(days(3))

	payloads := testbus.Payloads(f.bus, TaskDueDateTime)
	require.Len(t, payloads, 1)
	assert.Same(t, task, payloads[0].Source)
	assert.Equal(t, "dueDateTime", payloads[0].Attribute)
	assert.Equal(t, days(3), payloads[0].Value)
	assert.Equal(t, testNow.Add(time.Minute), task.ModificationDateTime())
}

func TestTask_NoOpSetterIsSilent(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	task.SetPriority(3)
	f.bus.Reset()

	task.SetPriority(3)
	task.SetSubject("task")
	task.RemoveCategory(f.reg.NewCategory("unrelated"))

	assert.Empty(t, f.bus.Events())
}

func TestTask_AddChildIdempotent(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	child := f.reg.NewTask("child")

	assert.True(t, parent.AddChild(child))
	assert.False(t, parent.AddChild(child))

	assert.Equal(t, []*Task{child}, parent.Children())
	assert.Same(t, parent, child.Parent())
	assert.Equal(t, 1, f.bus.Count(TaskAddChild.Event()))
}

func TestTask_RemoveChildKeepsParentReference(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	child := f.reg.NewTask("child")
	parent.AddChild(child)

	assert.True(t, parent.RemoveChild(child))

	assert.Empty(t, parent.Children())
	assert.Same(t, parent, child.Parent())
	f.bus.AssertPublished(t, TaskRemoveChild.Event())
}

func TestTask_DescendantsAndAncestors(t *testing.T) {
	f := newFixture(t)
	root := f.reg.NewTask("root")
	a := f.reg.NewTask("a")
	a1 := f.reg.NewTask("a1")
	b := f.reg.NewTask("b")
	root.AddChild(a)
	a.AddChild(a1)
	root.AddChild(b)

	assert.Equal(t, []*Task{a, a1, b}, root.Descendants())
	assert.Equal(t, []*Task{root, a}, a1.Ancestors())

	total := 0
	for _, c := range root.Children() {
		total += 1 + len(c.Descendants())
	}
	assert.Equal(t, total, len(root.Descendants()))
}

func TestTask_CompleteCascadesToChildren(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	c1 := f.reg.NewTask("c1")
	c2 := f.reg.NewTask("c2")
	parent.AddChild(c1)
	parent.AddChild(c2)

	parent.Complete()

	assert.True(t, c1.Completed())
	assert.True(t, c2.Completed())
	assert.Equal(t, testNow, c1.CompletionDateTime())
}

func TestTask_CompletingLastChildCompletesParent(t *testing.T) {
	tests := []struct {
		name       string
		defaultOn  bool
		parentMode Tristate
		rootMode   Tristate
		want       bool
	}{
		{name: "default on", defaultOn: true, want: true},
		{name: "default off", defaultOn: false, want: false},
		{name: "parent enabled overrides default", defaultOn: false, parentMode: Enabled, want: true},
		{name: "parent disabled overrides default", defaultOn: true, parentMode: Disabled, want: false},
		{name: "inherited from grandparent", defaultOn: false, rootMode: Enabled, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.reg.Settings.MarkParentCompleted = tt.defaultOn
			root := f.reg.NewTask("root")
			parent := f.reg.NewTask("parent")
			c1 := f.reg.NewTask("c1")
			c2 := f.reg.NewTask("c2")
			root.AddChild(parent)
			parent.AddChild(c1)
			parent.AddChild(c2)
			root.SetMarkParentCompleted(tt.rootMode)
			parent.SetMarkParentCompleted(tt.parentMode)

			c1.Complete()
			assert.False(t, parent.Completed(), "one open child remains")

			c2.Complete()
			assert.Equal(t, tt.want, parent.Completed())
		})
	}
}

func TestTask_ReopeningChildReopensParent(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	child := f.reg.NewTask("child")
	parent.AddChild(child)
	parent.Complete()
	require.True(t, child.Completed())

	child.Reopen()

	assert.False(t, child.Completed())
	assert.False(t, parent.Completed())
}

func TestTask_CompleteStopsTrackingAndClearsReminder(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	task.SetReminder(days(1))
	e := task.StartTracking()
	f.clock.Advance(time.Hour)

	task.Complete()

	assert.False(t, e.IsBeingTracked())
	assert.Equal(t, time.Hour, e.Duration())
	assert.False(t, date.IsSet(task.Reminder()))
}

func TestTask_RecurringCompletionAdvancesDates(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("weekly review")
	child := f.reg.NewTask("prepare")
	task.AddChild(child)
	task.SetPlannedStartDateTime(days(-1))
	task.SetDueDateTime(days(1))
	child.SetDueDateTime(days(0))
	task.SetRecurrence(Recurrence{Unit: RecurWeekly, Amount: 1, Max: 2})

	task.Complete()

	assert.False(t, task.Completed())
	assert.Equal(t, days(6), task.PlannedStartDateTime())
	assert.Equal(t, days(8), task.DueDateTime())
	assert.Equal(t, days(7), child.DueDateTime())
	assert.Equal(t, 1, task.Recurrence().Count)

	task.Complete()
	assert.False(t, task.Completed())
	assert.Equal(t, 2, task.Recurrence().Count)

	task.Complete()
	assert.True(t, task.Completed(), "recurrence exhausted")
}

func TestTask_SnoozeReminder(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	original := testNow.Add(-time.Minute)
	task.SetReminder(original)

	task.SnoozeReminder(5 * time.Minute)
	assert.Equal(t, testNow.Add(5*time.Minute), task.Reminder())
	assert.Equal(t, original, task.ReminderBeforeSnooze())

	f.clock.Advance(5 * time.Minute)
	task.SnoozeReminder(10 * time.Minute)
	assert.Equal(t, original, task.ReminderBeforeSnooze(), "first snooze is remembered")

	task.SnoozeReminder(0)
	assert.False(t, date.IsSet(task.Reminder()))
	assert.False(t, date.IsSet(task.ReminderBeforeSnooze()))
}

func TestTask_Prerequisites(t *testing.T) {
	f := newFixture(t)
	a := f.reg.NewTask("a")
	b := f.reg.NewTask("b")

	assert.False(t, a.AddPrerequisite(a), "self prerequisite is ignored")
	assert.True(t, a.AddPrerequisite(b))
	assert.False(t, a.AddPrerequisite(b))
	assert.Equal(t, []*Task{b}, a.Prerequisites())

	f.reg.Forget(b)
	assert.Empty(t, a.Prerequisites(), "forgotten prerequisites stop resolving")
	assert.True(t, a.PrerequisitesCompleted())

	assert.True(t, a.RemovePrerequisite(b))
	assert.Empty(t, a.PrerequisiteIDs())
}

func TestTask_PercentageComplete(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	child := f.reg.NewTask("child")
	parent.AddChild(child)
	parent.SetMarkParentCompleted(Disabled)

	parent.SetPercentageComplete(150)
	assert.Equal(t, 100, parent.PercentageComplete())
	parent.SetPercentageComplete(20)
	child.SetPercentageComplete(60)

	assert.Equal(t, 40, parent.RecursivePercentageComplete())

	child.Complete()
	assert.Equal(t, 60, parent.RecursivePercentageComplete())
}

func TestTask_Copy(t *testing.T) {
	f := newFixture(t)
	cat := f.reg.NewCategory("home")
	task := f.reg.NewTask("original")
	task.SetDescription("desc")
	task.SetForegroundColor(appearance.MustHex("#112233"))
	task.SetDueDateTime(days(2))
	task.SetPriority(4)
	task.AddCategory(cat)
	child := f.reg.NewTask("child")
	task.AddChild(child)
	task.AddEffort(f.reg.NewEffort(task, days(-1), days(-1).Add(time.Hour)))

	cp := task.Copy()

	assert.NotEqual(t, task.ID(), cp.ID())
	assert.Equal(t, "original", cp.Subject())
	assert.Equal(t, "desc", cp.Description())
	assert.True(t, cp.ForegroundColor().Equal(task.ForegroundColor()))
	assert.Equal(t, days(2), cp.DueDateTime())
	assert.Equal(t, 4, cp.Priority())
	assert.True(t, cp.HasCategory(cat))
	assert.Contains(t, cat.Categorizables(), Categorizable(cp))
	assert.Empty(t, cp.Efforts())

	require.Len(t, cp.Children(), 1)
	assert.NotEqual(t, child.ID(), cp.Children()[0].ID())
	assert.Equal(t, "child", cp.Children()[0].Subject())
	assert.Same(t, cp, cp.Children()[0].Parent())
}

func TestRecursiveAttributes(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	open := f.reg.NewTask("open")
	done := f.reg.NewTask("done")
	parent.AddChild(open)
	parent.AddChild(done)

	parent.SetDueDateTime(days(10))
	open.SetDueDateTime(days(5))
	done.SetDueDateTime(days(1))
	parent.SetPlannedStartDateTime(days(2))
	open.SetPlannedStartDateTime(days(1))
	parent.SetPriority(1)
	open.SetPriority(3)
	done.SetPriority(9)
	parent.SetBudget(hours(10))
	open.SetBudget(hours(2))
	done.SetBudget(hours(1))
	parent.SetFixedFee(100)
	done.SetFixedFee(50)
	done.Complete()

	assert.Equal(t, days(5), parent.RecursiveDueDateTime(), "completed children are ignored for dates")
	assert.Equal(t, days(1), parent.RecursivePlannedStartDateTime())
	assert.False(t, date.IsSet(parent.RecursiveActualStartDateTime()))
	assert.Equal(t, 3, parent.RecursivePriority(), "completed children are ignored for priority")
	assert.Equal(t, hours(13), parent.RecursiveBudget())
	assert.Equal(t, 150.0, parent.RecursiveFixedFee())
	assert.Equal(t, days(10), parent.DueDateTime(), "own value is unaffected")
}

func TestRevenueAndBudgetLeft(t *testing.T) {
	f := newFixture(t)
	parent := f.reg.NewTask("parent")
	child := f.reg.NewTask("child")
	parent.AddChild(child)
	parent.SetHourlyFee(100)
	parent.SetFixedFee(10)
	child.SetHourlyFee(50)
	parent.SetBudget(hours(5))

	parent.AddEffort(f.reg.NewEffort(parent, days(-1), days(-1).Add(hours(2))))
	child.AddEffort(f.reg.NewEffort(child, days(-1), days(-1).Add(hours(1))))

	assert.Equal(t, hours(2), parent.TimeSpent())
	assert.Equal(t, hours(3), parent.RecursiveTimeSpent())
	assert.InDelta(t, 210.0, parent.Revenue(), 1e-9)
	assert.InDelta(t, 260.0, parent.RecursiveRevenue(), 1e-9)

	left, ok := parent.BudgetLeft()
	require.True(t, ok)
	assert.Equal(t, hours(3), left)

	left, ok = parent.RecursiveBudgetLeft()
	require.True(t, ok)
	assert.Equal(t, hours(2), left)

	_, ok = child.BudgetLeft()
	assert.False(t, ok)
}

func TestTristateParse(t *testing.T) {
	for _, s := range []Tristate{Inherit, Enabled, Disabled} {
		got, err := ParseTristate(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseTristate("maybe")
	assert.Error(t, err)
}
