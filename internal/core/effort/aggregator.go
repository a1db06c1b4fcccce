package effort

import (
	"cmp"
	"slices"
	"time"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

type groupKey struct {
	task  string
	start time.Time
}

// Total summarizes all efforts starting inside one period.
type Total struct {
	Start    time.Time
	Stop     time.Time
	Duration time.Duration
	Revenue  float64
	Efforts  int
	Tracking bool
}

// Aggregator groups the efforts of a List into one Composite per task and
// period. The grouping is rebuilt lazily from the flat list whenever the
// list or an effort's start changes; it never mutates stored efforts.
type Aggregator struct {
	list      *List
	period    date.Period
	weekStart time.Weekday

	groups map[groupKey]*Composite
	dirty  bool
}

// NewAggregator groups list by period p.
func NewAggregator(list *List, p date.Period) *Aggregator {
	a := &Aggregator{
		list:      list,
		period:    p,
		weekStart: list.reg.Settings.WeekStart,
		dirty:     true,
	}
	bus := list.reg.Bus
	eventbus.Subscribe(bus, EffortsAdd, a, func(Change) { a.dirty = true })
	eventbus.Subscribe(bus, EffortsRemove, a, func(Change) { a.dirty = true })
	eventbus.Subscribe(bus, model.EffortStart, a, func(model.Changed[time.Time]) { a.dirty = true })
	return a
}

// Close releases the aggregator and its composites.
func (a *Aggregator) Close() {
	a.list.reg.Bus.Unsubscribe(a)
	a.release()
}

func (a *Aggregator) Granularity() date.Period { return a.period }

// SetGranularity switches the period kind and rebuilds the grouping.
func (a *Aggregator) SetGranularity(p date.Period) {
	if p == a.period {
		return
	}
	a.period = p
	a.dirty = true
}

func (a *Aggregator) release() {
	for _, c := range a.groups {
		c.Close()
	}
	a.groups = nil
}

func (a *Aggregator) rebuild() {
	if !a.dirty {
		return
	}
	a.release()
	a.groups = make(map[groupKey]*Composite)
	for _, e := range a.list.Efforts() {
		t := e.Task()
		if t == nil {
			continue
		}
		start := date.PeriodStart(e.Start(), a.period, a.weekStart)
		key := groupKey{task: string(t.ID()), start: start}
		if _, ok := a.groups[key]; !ok {
			a.groups[key] = NewComposite(t, false, a.period, start)
		}
	}
	a.dirty = false
}

// Composites returns one composite per (task, period) that has efforts,
// ordered by period start and then task subject.
func (a *Aggregator) Composites() []*Composite {
	a.rebuild()
	out := make([]*Composite, 0, len(a.groups))
	for _, c := range a.groups {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y *Composite) int {
		if c := x.Start().Compare(y.Start()); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Subject(), y.Subject()); c != 0 {
			return c
		}
		return cmp.Compare(x.Task().ID(), y.Task().ID())
	})
	return out
}

// Totals folds the composites of each period into one row per period, in
// chronological order.
func (a *Aggregator) Totals() []Total {
	var out []Total
	for _, c := range a.Composites() {
		if n := len(out); n == 0 || !out[n-1].Start.Equal(c.Start()) {
			out = append(out, Total{Start: c.Start(), Stop: c.Stop()})
		}
		row := &out[len(out)-1]
		row.Duration += c.Duration()
		row.Revenue += c.Revenue()
		row.Efforts += c.Len()
		row.Tracking = row.Tracking || c.IsBeingTracked()
	}
	return out
}
