package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/taskcoach/internal/core/kv"
	"github.com/colonyops/taskcoach/internal/core/merge"
	"github.com/colonyops/taskcoach/internal/store/jsonfile"
)

// ErrSyncDisabled is returned by Sync when no shared file is configured.
var ErrSyncDisabled = errors.New("sync is not configured")

// ConflictTTL is how long the conflicts of a synchronization are kept.
const ConflictTTL = 7 * 24 * time.Hour

const syncScope = "sync"

// SyncReport summarizes the last synchronization.
type SyncReport struct {
	At        time.Time `json:"at"`
	DeviceID  string    `json:"device_id"`
	Joined    bool      `json:"joined"`
	Wrote     bool      `json:"wrote"`
	Applied   int       `json:"applied"`
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Conflicts int       `json:"conflicts"`
}

// Sync merges the shared file into the document, publishes the local changes
// and saves the result.
func (a *App) Sync(ctx context.Context) (jsonfile.SyncResult, error) {
	if a.Syncer == nil {
		return jsonfile.SyncResult{}, ErrSyncDisabled
	}

	res, err := a.Syncer.Sync(ctx)
	if err != nil {
		return res, err
	}

	report := SyncReport{
		At:        a.clock.Now(),
		DeviceID:  a.DeviceID,
		Joined:    res.Joined,
		Wrote:     res.Wrote,
		Applied:   res.Applied,
		Added:     res.Added,
		Removed:   res.Removed,
		Conflicts: len(res.Conflicts),
	}
	if err := a.reports.Store(ctx, report); err != nil {
		return res, fmt.Errorf("store sync report: %w", err)
	}
	if len(res.Conflicts) > 0 {
		if err := a.conflicts.StoreFor(ctx, res.Conflicts, ConflictTTL); err != nil {
			return res, fmt.Errorf("store sync conflicts: %w", err)
		}
	}

	return res, a.Save(ctx)
}

// LastSync returns the report of the last synchronization. ok is false when
// the document was never synchronized.
func (a *App) LastSync(ctx context.Context) (report SyncReport, ok bool, err error) {
	return a.reports.Load(ctx)
}

// RecentConflicts returns the conflicts of the last synchronization that
// had any, until they expire.
func (a *App) RecentConflicts(ctx context.Context) ([]merge.Conflict, error) {
	c, _, err := a.conflicts.Load(ctx)
	return c, err
}

func (a *App) openReports() {
	a.reports = kv.NewSlot[SyncReport](a.KV, syncScope, "last")
	a.conflicts = kv.NewSlot[[]merge.Conflict](a.KV, syncScope, "conflicts")
	a.pending = kv.NewSlot[merge.Delta](a.KV, syncScope, "pending")
}

// restorePending replays the changes made since the last synchronization,
// which a restart would otherwise forget.
func (a *App) restorePending(ctx context.Context) error {
	d, ok, err := a.pending.Load(ctx)
	if err != nil {
		return fmt.Errorf("read pending changes: %w", err)
	}
	if !ok {
		return nil
	}
	d.Replay(a.syncMonitor)
	return nil
}

func (a *App) storePending(ctx context.Context) error {
	d := merge.Collect(a.syncMonitor, a.Lists.Objects())
	if d.IsEmpty() {
		return a.pending.Clear(ctx)
	}
	return a.pending.Store(ctx, d)
}
