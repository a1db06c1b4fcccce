// Package clock abstracts the wall clock so that status derivation, effort
// durations and the scheduler can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// Now returns time.Now truncated to microseconds, the precision persisted for
// every timestamp in the model.
func (System) Now() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// Fake is a manually driven clock. It is safe for concurrent use because the
// scheduler reads it from its timer goroutine.
type Fake struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFake returns a fake clock set to now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}
