package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/colonyops/taskcoach/internal/core/logging"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/scheduler"
	"github.com/colonyops/taskcoach/internal/profiler"
	"github.com/colonyops/taskcoach/internal/store/jsonfile"
)

// Scheduler keys of the jobs Run installs.
const (
	SaveJobKey  = "app:save"
	SweepJobKey = "app:kv-sweep"
	SyncJobKey  = "app:sync"
)

const (
	saveInterval  = 30 * time.Second
	sweepInterval = time.Hour
)

// Run keeps the document live until ctx is done: due scheduler jobs run on
// the calling goroutine, the document is saved periodically, and with sync
// enabled every change to the shared file triggers a synchronization. The
// document is saved once more before Run returns.
func (a *App) Run(ctx context.Context) error {
	var events <-chan jsonfile.Event
	if a.Syncer != nil {
		w, err := jsonfile.NewWatcher(a.Config.Sync.SharedFile, a.Config.Sync.Debounce, logging.Component("watcher"))
		if err != nil {
			return fmt.Errorf("watch shared file: %w", err)
		}
		defer func() { _ = w.Close() }()
		events = w.Watch(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)
	if err := a.installJobs(ctx); err != nil {
		return err
	}

	if addr := a.Config.Scheduler.MetricsAddr; addr != "" {
		srv := profiler.New(addr)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error { return a.Scheduler.Loop(ctx) })

	a.log.Info().Str("data_dir", a.Config.DataDir).Bool("sync", a.Syncer != nil).Msg("running")
	if a.Syncer != nil {
		a.syncLogged(ctx)
	}

	g.Go(func() error { return a.loop(ctx, events) })

	err := g.Wait()

	// ctx is done at this point.
	if saveErr := a.Save(context.WithoutCancel(ctx)); saveErr != nil {
		err = errors.Join(err, saveErr)
	}
	return err
}

type job struct {
	key   string
	every time.Duration
	fn    func()
}

func (a *App) installJobs(ctx context.Context) error {
	jobs := []job{
		{SaveJobKey, saveInterval, func() {
			if err := a.Save(ctx); err != nil {
				a.log.Error().Err(err).Msg("autosave failed")
			}
		}},
		{SweepJobKey, sweepInterval, func() {
			if err := a.KV.SweepExpired(ctx); err != nil {
				a.log.Debug().Err(err).Msg("kv sweep failed")
			}
		}},
	}
	if a.Syncer != nil && a.Config.Sync.Interval > 0 {
		jobs = append(jobs, job{SyncJobKey, a.Config.Sync.Interval, func() { a.syncLogged(ctx) }})
	}

	for _, j := range jobs {
		if err := a.Scheduler.ScheduleInterval(j.key, j.every, j.fn); err != nil {
			return fmt.Errorf("schedule %s: %w", j.key, err)
		}
	}
	return nil
}

// loop is the main loop. Everything that touches the document runs here.
func (a *App) loop(ctx context.Context, events <-chan jsonfile.Event) error {
	fired := a.Scheduler.Fired()
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-fired:
			a.execute(batch)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.log.Debug().Time("at", ev.Timestamp).Msg("shared file changed")
			a.syncLogged(ctx)
		}
	}
}

func (a *App) execute(batch []scheduler.Due) {
	n := a.Scheduler.Execute(batch)
	a.log.Trace().Int("jobs", n).Msg("ran due jobs")
}

func (a *App) syncLogged(ctx context.Context) {
	ctx = logging.WithDeviceID(ctx, a.DeviceID)
	res, err := a.Sync(ctx)
	if err != nil {
		a.log.Error().Ctx(ctx).Err(err).Msg("sync failed")
		return
	}
	for _, c := range res.Conflicts {
		ev := a.log.Warn().Ctx(ctx)
		if c.Type == model.TypeTask {
			ev = ev.Ctx(logging.WithTaskID(ctx, string(c.ID)))
		}
		ev.Str("id", string(c.ID)).
			Str("type", string(c.Type)).
			Str("subject", c.Subject).
			Str("kind", string(c.Kind)).
			Msg("sync conflict")
	}
}
