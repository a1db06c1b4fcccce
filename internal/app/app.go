// Package app assembles a document, its storage and its background jobs.
// Commands consume App instead of cherry-picking raw dependencies.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/changes"
	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/config"
	"github.com/colonyops/taskcoach/internal/core/effort"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/kv"
	"github.com/colonyops/taskcoach/internal/core/logging"
	"github.com/colonyops/taskcoach/internal/core/merge"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/reminder"
	"github.com/colonyops/taskcoach/internal/core/scheduler"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
	"github.com/colonyops/taskcoach/internal/data/db"
	"github.com/colonyops/taskcoach/internal/data/stores"
	"github.com/colonyops/taskcoach/internal/store/jsonfile"
)

// App is one open document with everything that keeps it current.
type App struct {
	Config    *config.Config
	DB        *db.DB
	Documents *stores.DocumentStore
	KV        *stores.KVStore

	Registry  *model.Registry
	Lists     snapshot.Lists
	Efforts   *effort.List
	Scheduler *scheduler.Scheduler
	Reminders *reminder.Controller
	Status    *reminder.StatusWatcher
	Ticker    *effort.Ticker

	// Syncer is nil unless a shared file is configured.
	Syncer   *jsonfile.Syncer
	DeviceID string

	reports   *kv.Slot[SyncReport]
	conflicts *kv.Slot[[]merge.Conflict]
	pending   *kv.Slot[merge.Delta]

	// owner is the subscription owner on the bus. It survives copies of App.
	owner       *App
	clock       clock.Clock
	log         zerolog.Logger
	saveMonitor *changes.Monitor
	syncMonitor *changes.Monitor
}

// Open opens the database in cfg.DataDir and loads its document.
func Open(ctx context.Context, cfg *config.Config, clk clock.Clock) (*App, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err != nil && stores.IsCorruptionError(err) {
		backup, recoverErr := stores.RecoverFromCorruption(cfg.DataDir, clk.Now())
		if recoverErr != nil {
			return nil, fmt.Errorf("open database: %w", errors.Join(err, recoverErr))
		}
		logging.Component("app").Warn().
			Err(err).
			Str("backup", backup).
			Msg("database corrupt, starting with an empty document")
		database, err = db.Open(cfg.DataDir, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a, err := New(ctx, cfg, database, clk)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// New builds an App on an already opened database.
func New(ctx context.Context, cfg *config.Config, database *db.DB, clk clock.Clock) (*App, error) {
	log := logging.Component("app")

	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, logging.Component("bus"))

	reg := model.NewRegistry(bus, clk, cfg.Settings())
	a := &App{
		Config:    cfg,
		DB:        database,
		Documents: stores.NewDocumentStore(database, logging.Component("store")),
		KV:        stores.NewKVStore(database, clk),
		Registry:  reg,
		Lists:     snapshot.NewLists(reg),
		clock:     clk,
		log:       log,
	}
	a.owner = a
	a.openReports()

	a.saveMonitor = changes.NewMonitor(bus)
	a.syncMonitor = changes.NewMonitor(bus)

	if err := a.Documents.Load(ctx, reg, a.Lists); err != nil {
		a.detach()
		return nil, fmt.Errorf("load document: %w", err)
	}
	a.saveMonitor.ResetAllChanges()
	a.syncMonitor.ResetAllChanges()

	a.Efforts = effort.NewList(logging.Component("effort"), reg, a.Lists.Tasks)
	a.Scheduler = scheduler.New(logging.Component("scheduler"), clk, scheduler.WithPoll(cfg.Scheduler.Poll))
	a.Reminders = reminder.NewController(logging.Component("reminder"), reg, a.Lists.Tasks, a.Scheduler)
	a.Status = reminder.NewStatusWatcher(logging.Component("status"), reg, a.Lists.Tasks, a.Scheduler)
	a.Ticker = effort.NewTicker(a.Efforts, a.Scheduler)

	eventbus.Subscribe(bus, reminder.ReminderDue, a.owner, func(d reminder.Due) {
		a.log.Info().
			Str("task_id", string(d.Task.ID())).
			Str("subject", d.Task.Subject()).
			Time("at", d.At).
			Msg("reminder")
	})

	if cfg.SyncEnabled() {
		if err := a.openSync(ctx); err != nil {
			a.detach()
			return nil, err
		}
	}

	log.Debug().
		Int("tasks", len(a.Lists.Tasks.Items())).
		Int("categories", len(a.Lists.Categories.Items())).
		Int("notes", len(a.Lists.Notes.Items())).
		Msg("document loaded")

	return a, nil
}

func (a *App) openSync(ctx context.Context) error {
	id := a.Config.Sync.DeviceID
	if id == "" {
		var err error
		if id, err = a.KV.DeviceID(ctx); err != nil {
			return fmt.Errorf("device id: %w", err)
		}
	}
	a.DeviceID = id

	syncer, err := jsonfile.NewSyncer(
		jsonfile.NewSharedFile(a.Config.Sync.SharedFile),
		id,
		a.clock,
		logging.Component("sync"),
		a.Registry,
		a.Lists,
		a.syncMonitor,
	)
	if err != nil {
		return fmt.Errorf("open shared file: %w", err)
	}
	a.Syncer = syncer
	return a.restorePending(ctx)
}

// Now returns the document's current time.
func (a *App) Now() time.Time { return a.clock.Now() }

// Dirty reports whether the document has unsaved changes.
func (a *App) Dirty() bool { return a.saveMonitor.IsDirty() }

// Save writes the objects changed since the last save. With sync enabled it
// also records what changed since the last synchronization.
func (a *App) Save(ctx context.Context) error {
	stats, err := a.Documents.Save(ctx, a.Lists, a.saveMonitor)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if a.Syncer != nil {
		if err := a.storePending(ctx); err != nil {
			return fmt.Errorf("save pending changes: %w", err)
		}
	}
	if stats.Written > 0 || stats.Deleted > 0 {
		a.log.Debug().Int("written", stats.Written).Int("deleted", stats.Deleted).Msg("saved")
	}
	return nil
}

// Close stops the background jobs and closes the database. Unsaved changes
// are lost; callers save first.
func (a *App) Close() error {
	a.Scheduler.Stop()
	a.Ticker.Close()
	a.Status.Close()
	a.Reminders.Close()
	a.Efforts.Close()
	a.detach()
	return a.DB.Close()
}

func (a *App) detach() {
	a.Registry.Bus.Unsubscribe(a.owner)
	a.saveMonitor.Close()
	a.syncMonitor.Close()
	a.Lists.Close()
}
