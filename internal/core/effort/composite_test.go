package effort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/model"
)

func TestComposite_WindowBoundaries(t *testing.T) {
	f := newFixture(t)
	task := f.task("task")
	dayStart := at(13, 0)
	c := NewComposite(task, false, date.Day, dayStart)
	defer c.Close()

	assert.Equal(t, date.EndOfDay(dayStart), c.Stop())

	tests := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"window start", dayStart, true},
		{"midday", at(13, 12), true},
		{"last instant", c.Stop(), true},
		{"next day", at(14, 0), false},
		{"instant before", dayStart.Add(-date.Precision), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Contains(f.reg.NewEffort(task, tt.start, tt.start.Add(time.Hour))))
		})
	}
}

func TestComposite_FollowsEffortChanges(t *testing.T) {
	f := newFixture(t)
	task := f.task("task")
	c := NewComposite(task, false, date.Day, at(13, 0))
	defer c.Close()
	assert.Zero(t, c.Len())

	e := f.effort(task, at(13, 9), time.Hour)
	assert.Equal(t, []*model.Effort{e}, c.Efforts())
	assert.Equal(t, time.Hour, c.Duration())

	e.SetStop(at(13, 11))
	assert.Equal(t, 2*time.Hour, c.Duration())

	e.SetStart(at(12, 9))
	assert.Zero(t, c.Len())

	e.SetStart(at(13, 10))
	task.RemoveEffort(e)
	assert.Zero(t, c.Len())
}

func TestComposite_Recursive(t *testing.T) {
	f := newFixture(t)
	parent := f.task("parent")
	child := f.reg.NewTask("child")
	parent.AddChild(child)
	parent.SetHourlyFee(100)
	child.SetHourlyFee(50)

	own := NewComposite(parent, false, date.Week, at(11, 0))
	all := NewComposite(parent, true, date.Week, at(11, 0))
	defer own.Close()
	defer all.Close()

	f.effort(parent, at(11, 9), time.Hour)
	f.effort(child, at(17, 9), 2*time.Hour)
	f.effort(child, at(18, 9), time.Hour)

	assert.Equal(t, time.Hour, own.Duration())
	assert.Equal(t, 3*time.Hour, all.Duration())
	assert.InDelta(t, 200.0, all.Revenue(), 1e-9)

	grandchild := f.reg.NewTask("grandchild")
	f.effort(grandchild, at(12, 9), time.Hour)
	child.AddChild(grandchild)
	assert.Equal(t, 4*time.Hour, all.Duration())

	parent.RemoveChild(child)
	assert.Equal(t, time.Hour, all.Duration())
}

func TestComposite_Tracking(t *testing.T) {
	f := newFixture(t)
	task := f.task("task")
	c := NewComposite(task, false, date.Day, at(13, 0))
	defer c.Close()

	task.StartTracking()
	f.clock.Advance(15 * time.Minute)

	assert.True(t, c.IsBeingTracked())
	assert.Equal(t, 15*time.Minute, c.Duration())

	task.StopTracking()
	assert.False(t, c.IsBeingTracked())
}
