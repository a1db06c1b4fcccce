package model

import (
	"fmt"
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Effort is a time-tracking record owned by exactly one task. A stop of
// date.None means the effort is being tracked. Inverted intervals are stored
// as given.
type Effort struct {
	reg         *Registry
	id          tree.ID
	task        tree.ID
	start       time.Time
	stop        time.Time
	description string
	created     time.Time
	modified    time.Time
}

// NewEffort creates an effort for task. The effort is not attached; call
// Task.AddEffort.
func (r *Registry) NewEffort(task *Task, start, stop time.Time) *Effort {
	return r.newEffort(tree.NewID(), task, start, stop)
}

func (r *Registry) newEffort(id tree.ID, task *Task, start, stop time.Time) *Effort {
	now := r.Now()
	e := &Effort{
		reg:      r,
		id:       id,
		start:    start,
		stop:     stop,
		created:  now,
		modified: now,
	}
	if task != nil {
		e.task = task.ID()
	}
	r.efforts[id] = e
	return e
}

func (e *Effort) ID() tree.ID { return e.id }
func (e *Effort) Type() Type  { return TypeEffort }

// Subject is the owning task's subject.
func (e *Effort) Subject() string {
	if t := e.Task(); t != nil {
		return t.Subject()
	}
	return ""
}

func (e *Effort) String() string {
	return fmt.Sprintf("Effort(%s %s..%s)", e.id, e.start.Format(time.RFC3339), e.stop.Format(time.RFC3339))
}

// Task resolves the owning task.
func (e *Effort) Task() *Task {
	t, _ := e.reg.Task(e.task)
	return t
}

// TaskID returns the owning task's ID.
func (e *Effort) TaskID() tree.ID { return e.task }

func (e *Effort) Start() time.Time                { return e.start }
func (e *Effort) Stop() time.Time                 { return e.stop }
func (e *Effort) Description() string             { return e.description }
func (e *Effort) CreationDateTime() time.Time     { return e.created }
func (e *Effort) ModificationDateTime() time.Time { return e.modified }

// IsBeingTracked reports whether the effort has no stop.
func (e *Effort) IsBeingTracked() bool {
	return !date.IsSet(e.stop)
}

// Duration returns stop-start, measuring tracked efforts up to the registry's
// current time.
func (e *Effort) Duration() time.Duration {
	return e.DurationAt(e.reg.Now())
}

// DurationAt returns the duration with tracked efforts measured up to now.
func (e *Effort) DurationAt(now time.Time) time.Duration {
	stop := e.stop
	if e.IsBeingTracked() {
		stop = now
	}
	return stop.Sub(e.start)
}

// Revenue is the duration in hours times the owning task's hourly fee.
func (e *Effort) Revenue() float64 {
	t := e.Task()
	if t == nil {
		return 0
	}
	return e.Duration().Hours() * t.HourlyFee()
}

func (e *Effort) SetStart(v time.Time) { e.setTime(&e.start, v, EffortStart) }
func (e *Effort) SetStop(v time.Time)  { e.setTime(&e.stop, v, EffortStop) }

func (e *Effort) SetDescription(s string) {
	if e.description == s {
		return
	}
	e.description = s
	e.modified = e.reg.Now()
	publishChange(e.reg, EffortDescription, Object(e), s)
}

// SetTask moves the effort to another task.
func (e *Effort) SetTask(t *Task) {
	if t == nil || e.task == t.ID() {
		return
	}
	if old := e.Task(); old != nil {
		old.RemoveEffort(e)
	}
	t.AddEffort(e)
	e.modified = e.reg.Now()
	publishChange(e.reg, EffortTask, Object(e), t)
}

func (e *Effort) setTime(field *time.Time, v time.Time, k eventbus.Kind[Changed[time.Time]]) {
	if field.Equal(v) {
		return
	}
	*field = v
	e.modified = e.reg.Now()
	publishChange(e.reg, k, Object(e), v)
}

func publishLink(r *Registry, k eventbus.Kind[EffortLink], t *Task, e *Effort) {
	eventbus.Publish(r.Bus, k, EffortLink{Task: t, Effort: e})
}
