// Package merge folds the changes another replica made to a shared document
// into the live document.
//
// For objects both sides know, attributes only the remote changed are taken
// from the remote record, and attributes both sides changed go to the side
// that modified the object last (the local side on a tie). Objects only the
// remote has are added. Edit/delete conflicts never lose data: a local edit
// survives a remote removal, and a remote edit brings back an object removed
// locally. Both cases are reported as conflicts.
package merge

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/changes"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// ConflictKind classifies an edit/delete conflict.
type ConflictKind string

const (
	// KeptLocalEdit: the remote removed an object edited locally.
	KeptLocalEdit ConflictKind = "kept-local-edit"
	// RestoredRemoteEdit: the remote edited an object removed locally.
	RestoredRemoteEdit ConflictKind = "restored-remote-edit"
)

// Conflict is an edit/delete conflict resolved in favor of keeping data.
type Conflict struct {
	ID      tree.ID
	Type    model.Type
	Subject string
	Kind    ConflictKind
}

// Result summarizes a merge.
type Result struct {
	Applied   int // attributes taken from the remote
	Kept      int // attributes changed on both sides where the local value won
	Added     int
	Removed   int
	Conflicts []Conflict
}

// Merger merges remote changes into one live document.
type Merger struct {
	log     zerolog.Logger
	reg     *model.Registry
	lists   snapshot.Lists
	monitor *changes.Monitor

	fresh map[tree.ID]bool
}

// New creates a merger for the document made of reg and lists. monitor must
// hold the local changes since the last synchronization.
func New(log zerolog.Logger, reg *model.Registry, lists snapshot.Lists, monitor *changes.Monitor) *Merger {
	return &Merger{log: log, reg: reg, lists: lists, monitor: monitor}
}

type side[T container.Item[T], R any] struct {
	typ    model.Type
	list   *container.List[T]
	lookup func(tree.ID) (T, bool)
	base   func(R) snapshot.BaseRecord
	apply  func(T, R, string) bool
}

// Merge applies remote, the remote replica's latest document, given delta,
// what the remote changed since this replica last synchronized. The returned
// error reports remote records that could not be restored; the rest of the
// merge is still applied.
func (m *Merger) Merge(remote snapshot.Document, delta Delta) (Result, error) {
	var res Result
	m.fresh = make(map[tree.ID]bool)

	cats := side[*model.Category, snapshot.CategoryRecord]{
		typ:    model.TypeCategory,
		list:   m.lists.Categories.List,
		lookup: m.reg.Category,
		base:   func(r snapshot.CategoryRecord) snapshot.BaseRecord { return r.BaseRecord },
		apply:  snapshot.ApplyCategory,
	}
	tasks := side[*model.Task, snapshot.TaskRecord]{
		typ:    model.TypeTask,
		list:   m.lists.Tasks.List,
		lookup: m.reg.Task,
		base:   func(r snapshot.TaskRecord) snapshot.BaseRecord { return r.BaseRecord },
		apply:  snapshot.ApplyTask,
	}
	notes := side[*model.Note, snapshot.NoteRecord]{
		typ:    model.TypeNote,
		list:   m.lists.Notes.List,
		lookup: m.reg.Note,
		base:   func(r snapshot.NoteRecord) snapshot.BaseRecord { return r.BaseRecord },
		apply:  snapshot.ApplyNote,
	}

	// Additions first, so that updates can refer to remote-new objects.
	add := snapshot.Document{
		Categories: collectNew(m, cats, remote.Categories, delta, &res),
		Tasks:      collectNew(m, tasks, remote.Tasks, delta, &res),
		Notes:      collectNew(m, notes, remote.Notes, delta, &res),
	}
	add.Efforts = m.collectNewEfforts(remote.Efforts, add.Tasks, delta, &res)
	for _, r := range add.Categories {
		m.fresh[tree.ID(r.ID)] = true
	}
	for _, r := range add.Tasks {
		m.fresh[tree.ID(r.ID)] = true
	}
	for _, r := range add.Notes {
		m.fresh[tree.ID(r.ID)] = true
	}
	for _, r := range add.Efforts {
		m.fresh[tree.ID(r.ID)] = true
	}
	res.Added += len(m.fresh)
	restoreErr := snapshot.Restore(add, m.reg, m.lists)

	update(m, cats, remote.Categories, delta, &res)
	update(m, tasks, remote.Tasks, delta, &res)
	update(m, notes, remote.Notes, delta, &res)
	m.updateEfforts(remote.Efforts, delta, &res)

	m.removeEfforts(delta, &res)
	remove(m, notes, delta, &res)
	remove(m, tasks, delta, &res)
	remove(m, cats, delta, &res)

	m.log.Debug().
		Int("applied", res.Applied).
		Int("kept", res.Kept).
		Int("added", res.Added).
		Int("removed", res.Removed).
		Int("conflicts", len(res.Conflicts)).
		Msg("merged remote changes")

	if restoreErr != nil {
		return res, fmt.Errorf("restore remote objects: %w", restoreErr)
	}
	return res, nil
}

func (m *Merger) conflict(res *Result, obj model.Object, subject string, kind ConflictKind) {
	res.Conflicts = append(res.Conflicts, Conflict{ID: obj.ID(), Type: obj.Type(), Subject: subject, Kind: kind})
	m.log.Info().
		Str("id", string(obj.ID())).
		Str("type", string(obj.Type())).
		Str("kind", string(kind)).
		Msg("merge conflict")
}

// collectNew returns the remote records that must be restored locally.
// Objects removed locally but edited remotely that still resolve are put back
// in their list directly.
func collectNew[T container.Item[T], R any](m *Merger, s side[T, R], records []R, delta Delta, res *Result) []R {
	var out []R
	for _, r := range records {
		b := s.base(r)
		id := tree.ID(b.ID)
		if _, ok := s.list.Get(id); ok {
			continue
		}
		obj, known := s.lookup(id)
		if known || m.monitor.IsRemoved(id) {
			// Removed locally, in this window or an earlier one.
			if !delta.Touched(b.ID) {
				continue
			}
			if known {
				m.conflict(res, obj, b.Subject, RestoredRemoteEdit)
				s.list.Append(obj)
				continue
			}
			res.Conflicts = append(res.Conflicts, Conflict{ID: id, Type: s.typ, Subject: b.Subject, Kind: RestoredRemoteEdit})
		}
		out = append(out, r)
	}
	return out
}

func update[T container.Item[T], R any](m *Merger, s side[T, R], records []R, delta Delta, res *Result) {
	for _, r := range records {
		b := s.base(r)
		attrs := delta.Changed[b.ID]
		if len(attrs) == 0 || m.fresh[tree.ID(b.ID)] {
			continue
		}
		obj, ok := s.list.Get(tree.ID(b.ID))
		if !ok {
			continue
		}
		m.mergeAttrs(obj, modifiedAt(obj), b.Modified, attrs, func(attr string) bool { return s.apply(obj, r, attr) }, res)
	}
}

func modifiedAt(obj model.Object) time.Time {
	if m, ok := obj.(interface{ ModificationDateTime() time.Time }); ok {
		return m.ModificationDateTime()
	}
	return time.Time{}
}

func (m *Merger) mergeAttrs(obj model.Object, localModified, remoteModified time.Time, attrs []string, apply func(string) bool, res *Result) {
	local, tracked := m.monitor.Changes(obj.ID())
	for _, attr := range attrs {
		both := !tracked || local.Has(attr)
		if both && !remoteModified.After(localModified) {
			res.Kept++
			continue
		}
		if apply(attr) {
			res.Applied++
		}
	}
}

func remove[T container.Item[T], R any](m *Merger, s side[T, R], delta Delta, res *Result) {
	for _, id := range delta.Removed {
		obj, ok := s.list.Get(tree.ID(id))
		if !ok {
			continue
		}
		if m.editedLocally(obj) || slices.ContainsFunc(obj.Descendants(), func(d T) bool { return m.editedLocally(d) }) {
			m.conflict(res, obj, subjectOf(obj), KeptLocalEdit)
			continue
		}
		s.list.Remove(obj)
		res.Removed++
	}
}

// editedLocally reports whether obj, or for tasks one of its efforts, was
// created or changed since the last synchronization.
func (m *Merger) editedLocally(obj model.Object) bool {
	if m.changedLocally(obj.ID()) {
		return true
	}
	if t, ok := obj.(*model.Task); ok {
		for _, e := range t.Efforts() {
			if m.changedLocally(e.ID()) {
				return true
			}
		}
	}
	return false
}

func (m *Merger) changedLocally(id tree.ID) bool {
	if m.monitor.IsNew(id) {
		return true
	}
	set, ok := m.monitor.Changes(id)
	return ok && len(set) > 0
}

func subjectOf(obj model.Object) string {
	if s, ok := obj.(interface{ Subject() string }); ok {
		return s.Subject()
	}
	return ""
}

// liveEffort resolves id and reports whether the effort belongs to a task of
// the document.
func (m *Merger) liveEffort(id tree.ID) (*model.Effort, bool) {
	e, ok := m.reg.Effort(id)
	if !ok {
		return nil, false
	}
	t := e.Task()
	if t == nil || !m.lists.Tasks.Contains(t) || !slices.Contains(t.Efforts(), e) {
		return e, false
	}
	return e, true
}

func (m *Merger) collectNewEfforts(records []snapshot.EffortRecord, newTasks []snapshot.TaskRecord, delta Delta, res *Result) []snapshot.EffortRecord {
	var out []snapshot.EffortRecord
	for _, r := range records {
		id := tree.ID(r.ID)
		e, live := m.liveEffort(id)
		if live {
			continue
		}
		task, taskLive := m.lists.Tasks.Get(tree.ID(r.Task))
		if e != nil || m.monitor.IsRemoved(id) {
			if !delta.Touched(r.ID) {
				continue
			}
			if e != nil {
				if taskLive {
					m.conflict(res, e, r.Description, RestoredRemoteEdit)
					task.AddEffort(e)
				}
				continue
			}
			res.Conflicts = append(res.Conflicts, Conflict{ID: id, Type: model.TypeEffort, Subject: r.Description, Kind: RestoredRemoteEdit})
		}
		if !taskLive && !slices.ContainsFunc(newTasks, func(t snapshot.TaskRecord) bool { return t.ID == r.Task }) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *Merger) updateEfforts(records []snapshot.EffortRecord, delta Delta, res *Result) {
	for _, r := range records {
		attrs := delta.Changed[r.ID]
		if len(attrs) == 0 || m.fresh[tree.ID(r.ID)] {
			continue
		}
		e, live := m.liveEffort(tree.ID(r.ID))
		if !live {
			continue
		}
		m.mergeAttrs(e, e.ModificationDateTime(), r.Modified, attrs, func(attr string) bool { return snapshot.ApplyEffort(m.reg, e, r, attr) }, res)
	}
}

func (m *Merger) removeEfforts(delta Delta, res *Result) {
	for _, id := range delta.Removed {
		e, live := m.liveEffort(tree.ID(id))
		if !live {
			continue
		}
		if m.changedLocally(e.ID()) {
			m.conflict(res, e, e.Subject(), KeptLocalEdit)
			continue
		}
		e.Task().RemoveEffort(e)
		res.Removed++
	}
}
