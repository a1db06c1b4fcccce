package effort

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

// Wednesday.
var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type fixture struct {
	bus   *testbus.Bus
	clock *clock.Fake
	reg   *model.Registry
	tasks *container.TaskList
	list  *List
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{bus: testbus.New(t), clock: clock.NewFake(testNow)}
	f.reg = model.NewRegistry(f.bus.Bus, f.clock, model.DefaultSettings())
	f.tasks = container.NewTaskList(f.reg)
	f.list = NewList(zerolog.Nop(), f.reg, f.tasks)
	t.Cleanup(f.list.Close)
	return f
}

// task creates a task and appends it to the task list.
func (f *fixture) task(subject string) *model.Task {
	t := f.reg.NewTask(subject)
	f.tasks.Append(t)
	return t
}

// effort attaches a closed effort of length d starting at start.
func (f *fixture) effort(t *model.Task, start time.Time, d time.Duration) *model.Effort {
	e := f.reg.NewEffort(t, start, start.Add(d))
	t.AddEffort(e)
	return e
}

func (f *fixture) cached(t *model.Task, recursive bool) bool {
	_, ok := f.list.cache.Get(cacheKey{task: string(t.ID()), recursive: recursive})
	return ok
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

type scheduledJob struct {
	every time.Duration
	fn    func()
}

type fakeScheduler struct {
	jobs map[string]scheduledJob
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[string]scheduledJob{}}
}

func (s *fakeScheduler) ScheduleInterval(key string, every time.Duration, fn func()) error {
	s.jobs[key] = scheduledJob{every: every, fn: fn}
	return nil
}

func (s *fakeScheduler) Unschedule(key string) { delete(s.jobs, key) }
