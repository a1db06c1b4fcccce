package model

import (
	"testing"
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/stretchr/testify/assert"
)

func TestStatus_DecisionTable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Task)
		want  Status
	}{
		{
			name:  "no dates",
			setup: func(*Task) {},
			want:  StatusInactive,
		},
		{
			name:  "planned start yesterday",
			setup: func(tk *Task) { tk.SetPlannedStartDateTime(days(-1)) },
			want:  StatusLate,
		},
		{
			name:  "due tomorrow",
			setup: func(tk *Task) { tk.SetDueDateTime(days(1)) },
			want:  StatusDueSoon,
		},
		{
			name:  "due end of tomorrow",
			setup: func(tk *Task) { tk.SetDueDateTime(date.EndOfDay(days(1))) },
			want:  StatusDueSoon,
		},
		{
			name:  "due the day after tomorrow",
			setup: func(tk *Task) { tk.SetDueDateTime(date.StartOfDay(days(2))) },
			want:  StatusInactive,
		},
		{
			name:  "due an hour ago",
			setup: func(tk *Task) { tk.SetDueDateTime(testNow.Add(-time.Hour)) },
			want:  StatusOverdue,
		},
		{
			name:  "due exactly now is not overdue",
			setup: func(tk *Task) { tk.SetDueDateTime(testNow) },
			want:  StatusDueSoon,
		},
		{
			name:  "actual start in the past",
			setup: func(tk *Task) { tk.SetActualStartDateTime(days(-2)) },
			want:  StatusActive,
		},
		{
			name: "actual start in the future with planned start in the past",
			setup: func(tk *Task) {
				tk.SetPlannedStartDateTime(days(-2))
				tk.SetActualStartDateTime(days(2))
			},
			want: StatusLate,
		},
		{
			name:  "planned start in the future",
			setup: func(tk *Task) { tk.SetPlannedStartDateTime(days(3)) },
			want:  StatusInactive,
		},
		{
			name: "overdue beats active",
			setup: func(tk *Task) {
				tk.SetActualStartDateTime(days(-5))
				tk.SetDueDateTime(days(-1))
			},
			want: StatusOverdue,
		},
		{
			name: "future completion still counts as completed",
			setup: func(tk *Task) {
				tk.SetDueDateTime(days(-1))
				tk.SetCompletionDateTime(days(10))
			},
			want: StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			task := f.reg.NewTask("task")
			tt.setup(task)

			assert.Equal(t, tt.want, task.Status())
		})
	}
}

func TestStatus_CompletedIffCompletionSet(t *testing.T) {
	f := newFixture(t)

	for _, when := range []time.Time{days(-30), testNow, days(30)} {
		task := f.reg.NewTask("task")
		assert.False(t, task.Completed())

		task.SetCompletionDateTime(when)
		assert.True(t, task.Completed())
		assert.Equal(t, StatusCompleted, task.Status())

		task.SetCompletionDateTime(date.None)
		assert.False(t, task.Completed())
	}
}

func TestStatus_ScenarioCompletedPrerequisiteStillLate(t *testing.T) {
	f := newFixture(t)
	a := f.reg.NewTask("A")
	b := f.reg.NewTask("B")
	a.AddPrerequisite(b)
	a.SetPlannedStartDateTime(days(-1))

	assert.Equal(t, StatusLate, a.Status())
	assert.True(t, a.Blocked())

	b.Complete()

	assert.Equal(t, StatusLate, a.Status(), "completing the prerequisite does not start the task")
	assert.False(t, a.Blocked())

	a.SetActualStartDateTime(testNow)
	assert.Equal(t, StatusActive, a.Status())
}

func TestStatus_MutualPrerequisitesAreInactive(t *testing.T) {
	f := newFixture(t)
	a := f.reg.NewTask("A")
	b := f.reg.NewTask("B")
	a.AddPrerequisite(b)
	b.AddPrerequisite(a)

	assert.Equal(t, StatusInactive, a.Status())
	assert.Equal(t, StatusInactive, b.Status())
	assert.True(t, a.Blocked())
	assert.True(t, b.Blocked())
}

func TestStatus_DueSoonDaysSetting(t *testing.T) {
	f := newFixture(t)
	f.reg.Settings.DueSoonDays = 3
	task := f.reg.NewTask("task")
	task.SetDueDateTime(days(3))

	assert.Equal(t, StatusDueSoon, task.Status())

	f.reg.Settings.DueSoonDays = 0
	assert.Equal(t, StatusInactive, task.Status())
}

func TestStatus_FollowsClock(t *testing.T) {
	f := newFixture(t)
	task := f.reg.NewTask("task")
	task.SetDueDateTime(days(5))

	assert.Equal(t, StatusInactive, task.Status())

	f.clock.Set(days(4))
	assert.Equal(t, StatusDueSoon, task.Status())

	f.clock.Set(days(6))
	assert.Equal(t, StatusOverdue, task.Status())
}

func TestNextStatusChange(t *testing.T) {
	f := newFixture(t)

	t.Run("due date", func(t *testing.T) {
		task := f.reg.NewTask("task")
		due := days(5)
		task.SetDueDateTime(due)

		next := task.NextStatusChange(testNow)
		assert.Equal(t, date.StartOfDay(days(4)), next)
		assert.Equal(t, StatusDueSoon, task.StatusAt(next))
		assert.Equal(t, StatusInactive, task.StatusAt(next.Add(-date.Precision)))

		after := task.NextStatusChange(next)
		assert.Equal(t, due.Add(date.Precision), after)
		assert.Equal(t, StatusOverdue, task.StatusAt(after))
	})

	t.Run("no dates", func(t *testing.T) {
		assert.Equal(t, date.None, f.reg.NewTask("task").NextStatusChange(testNow))
	})

	t.Run("completed", func(t *testing.T) {
		task := f.reg.NewTask("task")
		task.SetDueDateTime(days(1))
		task.Complete()
		assert.Equal(t, date.None, task.NextStatusChange(testNow))
	})
}
