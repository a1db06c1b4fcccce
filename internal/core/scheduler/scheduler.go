// Package scheduler fires callbacks at given instants or at fixed intervals.
//
// A single timer goroutine (Loop) polls the clock, claims due jobs and hands
// them to the main loop over the Fired channel; the main loop runs them with
// Execute, one after another, on its own goroutine. RunDue does both steps
// synchronously and is what tests drive with a fake clock.
package scheduler

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/clock"
)

var (
	ErrStopped         = errors.New("scheduler stopped")
	ErrInvalidInterval = errors.New("interval must be positive")
)

// DefaultPoll is the timer goroutine's polling period.
const DefaultPoll = 250 * time.Millisecond

type entry struct {
	key     string
	fn      func()
	next    time.Time
	every   time.Duration
	gen     uint64
	pending bool
}

// Due is a claimed job waiting to be executed.
type Due struct {
	Key string
	At  time.Time
	gen uint64
}

// Scheduler keeps one entry per key.
type Scheduler struct {
	mu      sync.Mutex
	clock   clock.Clock
	log     zerolog.Logger
	poll    time.Duration
	jobs    map[string]*entry
	gen     uint64
	stopped bool

	fired chan []Due
	done  chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPoll sets the polling period of Loop.
func WithPoll(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

// New creates a scheduler reading time from clk.
func New(log zerolog.Logger, clk clock.Clock, opts ...Option) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	s := &Scheduler{
		clock: clk,
		log:   log,
		poll:  DefaultPoll,
		jobs:  make(map[string]*entry),
		fired: make(chan []Due, 1),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleAt runs fn once at when. A when in the past fires on the next poll.
// Scheduling an existing key replaces its entry.
func (s *Scheduler) ScheduleAt(key string, when time.Time, fn func()) error {
	return s.put(&entry{key: key, fn: fn, next: when})
}

// ScheduleInterval runs fn every interval, first one interval from now.
func (s *Scheduler) ScheduleInterval(key string, every time.Duration, fn func()) error {
	if every <= 0 {
		return ErrInvalidInterval
	}
	return s.put(&entry{key: key, fn: fn, next: s.clock.Now().Add(every), every: every})
}

func (s *Scheduler) put(e *entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	s.gen++
	e.gen = s.gen
	s.jobs[e.key] = e
	scheduledJobs.Set(float64(len(s.jobs)))
	s.log.Debug().Str("key", e.key).Time("next", e.next).Dur("every", e.every).Msg("job scheduled")
	return nil
}

// Unschedule removes key. Unknown keys are ignored.
func (s *Scheduler) Unschedule(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[key]; ok {
		delete(s.jobs, key)
		scheduledJobs.Set(float64(len(s.jobs)))
	}
}

// IsScheduled reports whether key has a live entry.
func (s *Scheduler) IsScheduled(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

// Next returns the due time of key.
func (s *Scheduler) Next(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[key]
	if !ok {
		return time.Time{}, false
	}
	return e.next, true
}

// Keys returns the scheduled keys, sorted.
func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Stop cancels every entry and ends Loop. Nothing fires afterwards, including
// jobs already handed to the main loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	clear(s.jobs)
	scheduledJobs.Set(0)
	close(s.done)
}

// Fired delivers batches of claimed jobs to the main loop.
func (s *Scheduler) Fired() <-chan []Due { return s.fired }

// Loop polls the clock until ctx is done or the scheduler stops.
func (s *Scheduler) Loop(ctx context.Context) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-ticker.C:
			batch := s.claim(s.clock.Now())
			if len(batch) == 0 {
				continue
			}
			select {
			case s.fired <- batch:
			case <-ctx.Done():
				return nil
			case <-s.done:
				return nil
			}
		}
	}
}

// claim marks every due entry pending and returns them ordered by due time.
func (s *Scheduler) claim(now time.Time) []Due {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}

	var batch []Due
	for _, e := range s.jobs {
		if e.pending || e.next.After(now) {
			continue
		}
		e.pending = true
		batch = append(batch, Due{Key: e.key, At: e.next, gen: e.gen})
	}
	slices.SortFunc(batch, func(a, b Due) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return batch
}

// Execute runs the claimed jobs in order. Jobs that were unscheduled or
// rescheduled since they were claimed are skipped. Callback panics propagate.
func (s *Scheduler) Execute(batch []Due) int {
	ran := 0
	for _, d := range batch {
		fn, interval, ok := s.release(d)
		if !ok {
			continue
		}
		firedTotal.WithLabelValues(kindLabel(interval)).Inc()
		fireLag.Observe(s.clock.Now().Sub(d.At).Seconds())
		fn()
		ran++
	}
	return ran
}

// release advances or removes the entry behind d before its callback runs, so
// that the callback may reschedule its own key.
func (s *Scheduler) release(d Due) (func(), bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[d.Key]
	if s.stopped || !ok || e.gen != d.gen {
		return nil, false, false
	}

	if e.every > 0 {
		// Missed periods collapse into this single firing.
		now := s.clock.Now()
		for !e.next.After(now) {
			e.next = e.next.Add(e.every)
		}
		e.pending = false
	} else {
		delete(s.jobs, d.Key)
		scheduledJobs.Set(float64(len(s.jobs)))
	}
	return e.fn, e.every > 0, true
}

// RunDue claims and executes everything due at the clock's current time and
// returns how many callbacks ran.
func (s *Scheduler) RunDue() int {
	return s.Execute(s.claim(s.clock.Now()))
}
