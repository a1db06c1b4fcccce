package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/taskcoach/internal/core/merge"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
)

// File is the root JSON structure of a shared sync file: the latest merged
// document plus, per device, what the other devices changed since that device
// last synchronized.
type File struct {
	Snapshot snapshot.Document      `json:"snapshot"`
	Deltas   map[string]merge.Delta `json:"deltas"`
}

// Registered reports whether deviceID has synchronized with f before.
func (f File) Registered(deviceID string) bool {
	_, ok := f.Deltas[deviceID]
	return ok
}

// SharedFile reads and writes a sync file. Writes are atomic: readers on
// other devices see either the old or the new content.
type SharedFile struct {
	path string
	mu   sync.Mutex
}

// NewSharedFile creates a shared file store at the given path.
func NewSharedFile(path string) *SharedFile {
	return &SharedFile{path: path}
}

// Path returns the location of the file.
func (s *SharedFile) Path() string {
	return s.path
}

// Read returns the content of the file. A missing or empty file reads as an
// empty File.
func (s *SharedFile) Read(ctx context.Context) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Write replaces the content of the file.
func (s *SharedFile) Write(ctx context.Context, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(file)
}

// Update reads the file, applies fn and writes the result unless fn fails.
func (s *SharedFile) Update(ctx context.Context, fn func(*File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&file); err != nil {
		return err
	}
	return s.save(file)
}

func (s *SharedFile) load() (File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{Deltas: map[string]merge.Delta{}}, nil
		}
		return File{}, err
	}

	if len(data) == 0 {
		return File{Deltas: map[string]merge.Delta{}}, nil
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if file.Deltas == nil {
		file.Deltas = map[string]merge.Delta{}
	}

	return file, nil
}

// save writes the file to disk atomically.
func (s *SharedFile) save(file File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
