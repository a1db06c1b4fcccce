package effort

import (
	"time"

	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

// TickerKey is the scheduler key of the tracking refresh job.
const TickerKey = "effort:ticker"

// TickInterval is how often tracked efforts report their running duration.
const TickInterval = time.Second

// IntervalScheduler is the part of the scheduler the ticker needs.
type IntervalScheduler interface {
	ScheduleInterval(key string, every time.Duration, fn func()) error
	Unschedule(key string)
}

// Ticker publishes model.EffortDuration for every tracked effort once per
// TickInterval. The interval job only exists while something is tracked.
type Ticker struct {
	list      *List
	scheduler IntervalScheduler
	running   bool
}

// NewTicker starts following list and schedules the job if an effort is
// already being tracked.
func NewTicker(list *List, s IntervalScheduler) *Ticker {
	t := &Ticker{list: list, scheduler: s}
	bus := list.reg.Bus
	eventbus.Subscribe(bus, EffortsAdd, t, func(Change) { t.refresh() })
	eventbus.Subscribe(bus, EffortsRemove, t, func(Change) { t.refresh() })
	eventbus.Subscribe(bus, model.EffortStop, t, func(model.Changed[time.Time]) { t.refresh() })
	t.refresh()
	return t
}

// Running reports whether the interval job is scheduled.
func (t *Ticker) Running() bool { return t.running }

// Close unschedules the job and stops following the list.
func (t *Ticker) Close() {
	t.list.reg.Bus.Unsubscribe(t)
	if t.running {
		t.scheduler.Unschedule(TickerKey)
		t.running = false
	}
}

func (t *Ticker) refresh() {
	tracking := len(t.list.CurrentlyTracked()) > 0
	switch {
	case tracking && !t.running:
		if err := t.scheduler.ScheduleInterval(TickerKey, TickInterval, t.tick); err != nil {
			t.list.log.Error().Err(err).Msg("schedule effort ticker")
			return
		}
		t.running = true
	case !tracking && t.running:
		t.scheduler.Unschedule(TickerKey)
		t.running = false
	}
}

func (t *Ticker) tick() {
	now := t.list.reg.Now()
	for _, e := range t.list.CurrentlyTracked() {
		eventbus.Publish(t.list.reg.Bus, model.EffortDuration, model.Tick{Effort: e, Duration: e.DurationAt(now)})
	}
}
