// Package snapshot converts a document between its live object graph and a
// serializable form. Loading is tolerant: missing fields take their defaults,
// unparseable colors and settings are dropped, and references to objects that
// do not exist are ignored.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// FormatVersion is written into every document.
const FormatVersion = 1

// ErrDuplicateID reports a record whose ID is already in use.
var ErrDuplicateID = errors.New("duplicate id")

// Document is the serializable form of a whole document.
type Document struct {
	Version    int              `json:"version"`
	DeviceID   string           `json:"device_id,omitempty"`
	SavedAt    time.Time        `json:"saved_at"`
	Categories []CategoryRecord `json:"categories"`
	Tasks      []TaskRecord     `json:"tasks"`
	Notes      []NoteRecord     `json:"notes"`
	Efforts    []EffortRecord   `json:"efforts"`
}

// Lists bundles the three containers of a document.
type Lists struct {
	Tasks      *container.TaskList
	Categories *container.CategoryList
	Notes      *container.NoteList
}

// NewLists creates empty lists bound to reg.
func NewLists(reg *model.Registry) Lists {
	return Lists{
		Tasks:      container.NewTaskList(reg),
		Categories: container.NewCategoryList(reg),
		Notes:      container.NewNoteList(reg),
	}
}

// Close detaches the lists from the bus.
func (l Lists) Close() {
	l.Tasks.Close()
	l.Categories.Close()
	l.Notes.Close()
}

// Objects returns every object of the document: categories, tasks, notes and
// efforts, in that order.
func (l Lists) Objects() []model.Object {
	var out []model.Object
	for _, c := range l.Categories.Items() {
		out = append(out, c)
	}
	for _, t := range l.Tasks.Items() {
		out = append(out, t)
	}
	for _, n := range l.Notes.Items() {
		out = append(out, n)
	}
	for _, e := range l.Tasks.Efforts() {
		out = append(out, e)
	}
	return out
}

// Capture records the current state of lists.
func Capture(lists Lists, deviceID string, savedAt time.Time) Document {
	doc := Document{Version: FormatVersion, DeviceID: deviceID, SavedAt: savedAt}
	for _, c := range lists.Categories.Items() {
		doc.Categories = append(doc.Categories, NewCategoryRecord(c))
	}
	for _, t := range lists.Tasks.Items() {
		doc.Tasks = append(doc.Tasks, NewTaskRecord(t))
	}
	for _, n := range lists.Notes.Items() {
		doc.Notes = append(doc.Notes, NewNoteRecord(n))
	}
	for _, e := range lists.Tasks.Efforts() {
		doc.Efforts = append(doc.Efforts, NewEffortRecord(e))
	}
	return doc
}

// Restore rebuilds the objects of doc in reg and adds them to lists. Records
// are restored parents first, whatever their order in doc. Records that
// cannot be restored (duplicate IDs, efforts of unknown tasks) are skipped
// and reported in the returned error; everything else is still loaded.
//
// doc may also hold part of a document: records whose parent already lives in
// the lists are attached to it, and efforts of existing tasks are added
// through the task so that effort views see them.
func Restore(doc Document, reg *model.Registry, lists Lists) error {
	var errs []error

	cats := restoreTree(doc.Categories, func(r CategoryRecord) (*model.Category, error) {
		if _, ok := reg.Category(tree.ID(r.ID)); ok {
			return nil, fmt.Errorf("category %s: %w", r.ID, ErrDuplicateID)
		}
		return reg.RestoreCategory(r.Data()), nil
	}, &errs)

	tasks := restoreTree(doc.Tasks, func(r TaskRecord) (*model.Task, error) {
		if _, ok := reg.Task(tree.ID(r.ID)); ok {
			return nil, fmt.Errorf("task %s: %w", r.ID, ErrDuplicateID)
		}
		return reg.RestoreTask(r.Data()), nil
	}, &errs)

	notes := restoreTree(doc.Notes, func(r NoteRecord) (*model.Note, error) {
		if _, ok := reg.Note(tree.ID(r.ID)); ok {
			return nil, fmt.Errorf("note %s: %w", r.ID, ErrDuplicateID)
		}
		return reg.RestoreNote(r.Data()), nil
	}, &errs)

	restored := make(map[tree.ID]bool, len(tasks))
	for _, t := range tasks {
		restored[t.ID()] = true
	}
	for _, r := range doc.Efforts {
		if r.ID == "" {
			r.ID = string(tree.NewID())
		}
		if _, ok := reg.Effort(tree.ID(r.ID)); ok {
			errs = append(errs, fmt.Errorf("effort %s: %w", r.ID, ErrDuplicateID))
			continue
		}
		if restored[tree.ID(r.Task)] {
			if _, err := reg.RestoreEffort(r.Data()); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		e, err := reg.RestoreDetachedEffort(r.Data())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.Task().AddEffort(e)
	}

	lists.Categories.Extend(roots(cats)...)
	lists.Tasks.Extend(roots(tasks)...)
	lists.Notes.Extend(roots(notes)...)
	return errors.Join(errs...)
}

type parented[T any] interface {
	comparable
	Parent() T
}

// roots returns the items whose parent is not among items.
func roots[T parented[T]](items []T) []T {
	in := make(map[T]bool, len(items))
	for _, it := range items {
		in[it] = true
	}
	var out []T
	for _, it := range items {
		if !in[it.Parent()] {
			out = append(out, it)
		}
	}
	return out
}

type record[R any] interface {
	*R
	base() *BaseRecord
}

// restoreTree restores records so that every parent precedes its children.
// Records with an empty ID get a fresh one. Parent cycles are broken at the
// record where the cycle is detected.
func restoreTree[R any, PR record[R], T any](records []R, restore func(R) (T, error), errs *[]error) []T {
	byID := make(map[string]int, len(records))
	for i := range records {
		id := PR(&records[i]).base().ID
		if id == "" {
			continue
		}
		if _, dup := byID[id]; !dup {
			byID[id] = i
		}
	}

	const (
		pending = iota
		visiting
		done
	)
	state := make([]int, len(records))
	var out []T

	var visit func(i int)
	visit = func(i int) {
		if state[i] != pending {
			return
		}
		state[i] = visiting
		r := records[i]
		b := PR(&r).base()
		if b.Parent == b.ID {
			b.Parent = ""
		}
		if p, ok := byID[b.Parent]; ok {
			if state[p] == visiting {
				b.Parent = ""
			} else {
				visit(p)
			}
		}
		if b.ID == "" {
			b.ID = string(tree.NewID())
		}
		obj, err := restore(r)
		state[i] = done
		if err != nil {
			*errs = append(*errs, err)
			return
		}
		out = append(out, obj)
	}
	for i := range records {
		visit(i)
	}
	return out
}
