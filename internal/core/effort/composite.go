package effort

import (
	"fmt"
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

// Composite groups the efforts of a task, optionally with its subtasks, that
// start inside one calendar period. Membership is start <= effort.Start() <=
// Stop(), where Stop is the last instant of the period; an effort starting
// exactly on the boundary instant belongs to the period. Members are cached
// until a contributing task or effort changes.
type Composite struct {
	reg       *model.Registry
	task      *model.Task
	recursive bool
	period    date.Period
	start     time.Time
	stop      time.Time

	members []*model.Effort
	valid   bool
}

// NewComposite binds task to the period of kind p that begins at start.
func NewComposite(task *model.Task, recursive bool, p date.Period, start time.Time) *Composite {
	c := &Composite{
		reg:       task.Registry(),
		task:      task,
		recursive: recursive,
		period:    p,
		start:     start,
		stop:      date.PeriodEnd(start, p),
	}

	bus := c.reg.Bus
	eventbus.Subscribe(bus, model.TaskEffortAdd, c, c.onEffortLink)
	eventbus.Subscribe(bus, model.TaskEffortRemove, c, c.onEffortLink)
	eventbus.Subscribe(bus, model.EffortStart, c, c.onEffortChanged)
	eventbus.Subscribe(bus, model.EffortStop, c, c.onEffortChanged)
	eventbus.Subscribe(bus, model.TaskAddChild, c, c.onChildChanged)
	eventbus.Subscribe(bus, model.TaskRemoveChild, c, c.onChildChanged)
	return c
}

// Close releases the composite's subscriptions.
func (c *Composite) Close() {
	c.reg.Bus.Unsubscribe(c)
}

func (c *Composite) Task() *model.Task   { return c.task }
func (c *Composite) Recursive() bool     { return c.recursive }
func (c *Composite) Period() date.Period { return c.period }
func (c *Composite) Start() time.Time    { return c.start }
func (c *Composite) Stop() time.Time     { return c.stop }
func (c *Composite) Subject() string     { return c.task.Subject() }

func (c *Composite) String() string {
	return fmt.Sprintf("Composite(%s %s %s)", c.task.Subject(), c.period, c.start.Format(time.DateOnly))
}

// Contains reports whether e starts inside the window.
func (c *Composite) Contains(e *model.Effort) bool {
	s := e.Start()
	return !s.Before(c.start) && !s.After(c.stop)
}

// Efforts returns the member efforts.
func (c *Composite) Efforts() []*model.Effort {
	if !c.valid {
		c.members = c.members[:0]
		efforts := c.task.Efforts()
		if c.recursive {
			efforts = c.task.RecursiveEfforts()
		}
		for _, e := range efforts {
			if c.Contains(e) {
				c.members = append(c.members, e)
			}
		}
		c.valid = true
	}
	out := make([]*model.Effort, len(c.members))
	copy(out, c.members)
	return out
}

func (c *Composite) Len() int { return len(c.Efforts()) }

// Duration sums the member durations, measuring tracked efforts up to now.
func (c *Composite) Duration() time.Duration {
	var total time.Duration
	now := c.reg.Now()
	for _, e := range c.Efforts() {
		total += e.DurationAt(now)
	}
	return total
}

// Revenue sums the member revenues, each priced at its own task's fee.
func (c *Composite) Revenue() float64 {
	var total float64
	for _, e := range c.Efforts() {
		total += e.Revenue()
	}
	return total
}

// IsBeingTracked reports whether a member is running.
func (c *Composite) IsBeingTracked() bool {
	for _, e := range c.Efforts() {
		if e.IsBeingTracked() {
			return true
		}
	}
	return false
}

func (c *Composite) covers(t *model.Task) bool {
	if t == nil {
		return false
	}
	return t == c.task || (c.recursive && c.task.Node().IsAncestorOf(t.Node()))
}

func (c *Composite) onEffortLink(ev model.EffortLink) {
	if c.covers(ev.Task) {
		c.valid = false
	}
}

func (c *Composite) onEffortChanged(ev model.Changed[time.Time]) {
	if e, ok := ev.Source.(*model.Effort); ok && c.covers(e.Task()) {
		c.valid = false
	}
}

func (c *Composite) onChildChanged(ev model.ChildChanged) {
	if t, ok := ev.Parent.(*model.Task); ok && c.covers(t) {
		c.valid = false
	}
}
