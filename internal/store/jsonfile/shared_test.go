package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcoach/internal/core/merge"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
)

func TestSharedFile_ReadMissing(t *testing.T) {
	file := NewSharedFile(filepath.Join(t.TempDir(), "shared.json"))

	f, err := file.Read(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, f.Deltas)
	assert.False(t, f.Registered("laptop"))
}

func TestSharedFile_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync", "shared.json")
	file := NewSharedFile(path)

	want := File{
		Snapshot: snapshot.Document{Version: snapshot.FormatVersion, DeviceID: "laptop", Tasks: []snapshot.TaskRecord{{BaseRecord: snapshot.BaseRecord{ID: "t1", Subject: "task"}}}},
		Deltas:   map[string]merge.Delta{"laptop": {}, "phone": {New: []string{"t1"}}},
	}
	require.NoError(t, file.Write(ctx, want))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "the temporary file is renamed into place")

	got, err := file.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "task", got.Snapshot.Tasks[0].Subject)
	assert.Equal(t, []string{"t1"}, got.Deltas["phone"].New)
	assert.True(t, got.Registered("laptop"))
}

func TestSharedFile_Update(t *testing.T) {
	ctx := context.Background()
	file := NewSharedFile(filepath.Join(t.TempDir(), "shared.json"))

	require.NoError(t, file.Update(ctx, func(f *File) error {
		f.Deltas["laptop"] = merge.Delta{}
		return nil
	}))

	boom := errors.New("boom")
	err := file.Update(ctx, func(f *File) error {
		f.Deltas["phone"] = merge.Delta{}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := file.Read(ctx)
	require.NoError(t, err)
	assert.True(t, got.Registered("laptop"))
	assert.False(t, got.Registered("phone"), "a failed update is not written")
}

func TestSharedFile_ReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewSharedFile(path).Read(context.Background())
	assert.Error(t, err)
}

func TestSharedFile_ReadMalformedAttribute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"snapshot": {"version": 1, "tasks": [{"id": "t1", "subject": "kept", "priority": "high"}]},
		"deltas": {"laptop": {}}
	}`), 0o644))

	f, err := NewSharedFile(path).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, f.Snapshot.Tasks, 1)
	assert.Equal(t, "kept", f.Snapshot.Tasks[0].Subject)
	assert.Zero(t, f.Snapshot.Tasks[0].Priority)
	assert.True(t, f.Registered("laptop"))
}
