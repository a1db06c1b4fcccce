package jsonfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcoach/internal/core/changes"
	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/merge"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type device struct {
	clock  *clock.Fake
	reg    *model.Registry
	lists  snapshot.Lists
	syncer *Syncer
}

func newDevice(t *testing.T, id string, file *SharedFile) *device {
	t.Helper()
	clk := clock.NewFake(testNow)
	reg := model.NewRegistry(eventbus.New(), clk, model.DefaultSettings())
	d := &device{clock: clk, reg: reg, lists: snapshot.NewLists(reg)}
	monitor := changes.NewMonitor(reg.Bus)
	t.Cleanup(func() {
		monitor.Close()
		d.lists.Close()
	})

	syncer, err := NewSyncer(file, id, clk, zerolog.Nop(), reg, d.lists, monitor)
	require.NoError(t, err)
	d.syncer = syncer
	return d
}

func (d *device) sync(t *testing.T) SyncResult {
	t.Helper()
	res, err := d.syncer.Sync(context.Background())
	require.NoError(t, err)
	return res
}

func (d *device) task(t *testing.T, id tree.ID) *model.Task {
	t.Helper()
	task, ok := d.lists.Tasks.Get(id)
	require.True(t, ok, "task %s not in list", id)
	return task
}

func TestNewSyncer_RequiresDeviceID(t *testing.T) {
	reg := model.NewRegistry(eventbus.New(), clock.NewFake(testNow), model.DefaultSettings())
	_, err := NewSyncer(NewSharedFile("x.json"), "", clock.NewFake(testNow), zerolog.Nop(), reg, snapshot.NewLists(reg), nil)
	assert.ErrorIs(t, err, ErrNoDeviceID)
}

func TestSyncer_TwoDevices(t *testing.T) {
	file := NewSharedFile(filepath.Join(t.TempDir(), "shared.json"))
	laptop := newDevice(t, "laptop", file)
	phone := newDevice(t, "phone", file)

	report := laptop.reg.NewTask("write report")
	laptop.lists.Tasks.Append(report)

	res := laptop.sync(t)
	assert.True(t, res.Joined)
	assert.True(t, res.Wrote)

	res = phone.sync(t)
	assert.True(t, res.Joined)
	assert.Equal(t, 1, res.Added)
	ptask := phone.task(t, report.ID())
	assert.Equal(t, "write report", ptask.Subject())

	phone.clock.Advance(time.Minute)
	ptask.SetSubject("write final report")
	groceries := phone.reg.NewTask("groceries")
	phone.lists.Tasks.Append(groceries)
	res = phone.sync(t)
	assert.False(t, res.Joined)
	assert.True(t, res.Wrote)

	res = laptop.sync(t)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, "write final report", report.Subject())
	laptop.task(t, groceries.ID())

	res = laptop.sync(t)
	assert.False(t, res.Wrote, "nothing changed on either side")

	f, err := file.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, f.Deltas["laptop"].IsEmpty())
	assert.True(t, f.Deltas["phone"].IsEmpty(), "the laptop had no changes of its own")
	assert.Len(t, f.Snapshot.Tasks, 2)
	assert.Equal(t, "laptop", f.Snapshot.DeviceID)
}

func TestSyncer_RemovalPropagates(t *testing.T) {
	file := NewSharedFile(filepath.Join(t.TempDir(), "shared.json"))
	laptop := newDevice(t, "laptop", file)
	phone := newDevice(t, "phone", file)

	done := laptop.reg.NewTask("done")
	kept := laptop.reg.NewTask("kept")
	laptop.lists.Tasks.Extend(done, kept)
	laptop.sync(t)
	phone.sync(t)

	laptop.lists.Tasks.Remove(done, kept)
	laptop.sync(t)

	f, err := file.Read(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{string(done.ID()), string(kept.ID())}, f.Deltas["phone"].Removed)

	phone.clock.Advance(time.Minute)
	phone.task(t, kept.ID()).SetPriority(3)

	res := phone.sync(t)
	assert.Equal(t, 1, res.Removed)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, merge.KeptLocalEdit, res.Conflicts[0].Kind)
	assert.Len(t, phone.lists.Tasks.Items(), 1)

	res = laptop.sync(t)
	assert.Len(t, res.Conflicts, 1, "the edit brings the task back on the laptop")
	assert.Equal(t, merge.RestoredRemoteEdit, res.Conflicts[0].Kind)
	assert.True(t, laptop.lists.Tasks.Contains(kept))
	assert.Equal(t, 3, kept.Priority())
}
