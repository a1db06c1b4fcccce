package jsonfile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/changes"
	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/merge"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
)

// ErrNoDeviceID is returned when a Syncer is created without a device ID.
var ErrNoDeviceID = errors.New("device id is required")

// SyncResult reports one synchronization.
type SyncResult struct {
	merge.Result
	// Joined is set when the device synchronized with the file for the first
	// time.
	Joined bool
	// Wrote is set when the shared file was rewritten.
	Wrote bool
}

// Syncer synchronizes a live document with a shared file.
//
// The monitor must be dedicated to synchronization: a sync resets it, so it
// cannot also drive incremental saves.
type Syncer struct {
	file     *SharedFile
	deviceID string
	clock    clock.Clock
	log      zerolog.Logger

	reg     *model.Registry
	lists   snapshot.Lists
	monitor *changes.Monitor
}

// NewSyncer binds the document made of reg and lists to file.
func NewSyncer(file *SharedFile, deviceID string, clk clock.Clock, log zerolog.Logger, reg *model.Registry, lists snapshot.Lists, monitor *changes.Monitor) (*Syncer, error) {
	if deviceID == "" {
		return nil, ErrNoDeviceID
	}
	return &Syncer{
		file:     file,
		deviceID: deviceID,
		clock:    clk,
		log:      log.With().Str("device_id", deviceID).Logger(),
		reg:      reg,
		lists:    lists,
		monitor:  monitor,
	}, nil
}

// Sync merges what the other devices changed into the document, then
// publishes the merged document and this device's changes to the file.
//
// A device joining the file treats every remote object as new, and every
// local object as new for the other devices. When nothing changed on either
// side the file is left untouched.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	err := s.file.Update(ctx, func(f *File) error {
		local := merge.Collect(s.monitor, s.lists.Objects())
		remote, registered := f.Deltas[s.deviceID]
		if !registered {
			res.Joined = true
			remote = merge.Delta{New: documentIDs(f.Snapshot)}
			local = merge.Delta{New: objectIDs(s.lists.Objects())}
		}

		if registered && remote.IsEmpty() && local.IsEmpty() {
			return errUnchanged
		}

		if !remote.IsEmpty() {
			merged, err := merge.New(s.log, s.reg, s.lists, s.monitor).Merge(f.Snapshot, remote)
			res.Result = merged
			if err != nil {
				s.log.Warn().Err(err).Msg("some remote objects could not be merged")
			}
		}

		f.Snapshot = snapshot.Capture(s.lists, s.deviceID, s.clock.Now())
		for device, d := range f.Deltas {
			if device == s.deviceID {
				continue
			}
			d.Add(local)
			f.Deltas[device] = d
		}
		f.Deltas[s.deviceID] = merge.Delta{}
		res.Wrote = true
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return res, nil
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync %s: %w", s.file.Path(), err)
	}

	s.monitor.ResetAllChanges()

	s.log.Info().
		Bool("joined", res.Joined).
		Int("applied", res.Applied).
		Int("added", res.Added).
		Int("removed", res.Removed).
		Int("conflicts", len(res.Conflicts)).
		Msg("synchronized")

	return res, nil
}

var errUnchanged = errors.New("unchanged")

func documentIDs(doc snapshot.Document) []string {
	var ids []string
	for _, r := range doc.Categories {
		ids = append(ids, r.ID)
	}
	for _, r := range doc.Tasks {
		ids = append(ids, r.ID)
	}
	for _, r := range doc.Notes {
		ids = append(ids, r.ID)
	}
	for _, r := range doc.Efforts {
		ids = append(ids, r.ID)
	}
	return ids
}

func objectIDs(objs []model.Object) []string {
	ids := make([]string, 0, len(objs))
	for _, obj := range objs {
		ids = append(ids, string(obj.ID()))
	}
	return ids
}
