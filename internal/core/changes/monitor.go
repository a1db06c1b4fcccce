// Package changes records which persisted attributes of which objects changed
// since the document was last saved or synchronized, and which objects were
// removed in that window.
package changes

import (
	"cmp"
	"maps"
	"slices"

	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Set is a set of attribute names.
type Set map[string]struct{}

func (s Set) Has(attr string) bool {
	_, ok := s[attr]
	return ok
}

// Sorted returns the attribute names in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Tombstone identifies a removed object.
type Tombstone struct {
	ID   tree.ID
	Type model.Type
}


type objectSource interface {
	Objects() []model.Object
}

// Monitor follows the bus and keeps, per known object, the set of attributes
// changed since the last reset.
//
// An object becomes known when it enters a list (or, for efforts, a task).
// Until the first reset it has no change set and Changes reports ok=false:
// the object is new and must be written whole. Removing an object that was
// reset tombstones it and drops its change set; adding it back within the
// same window clears the tombstone and starts an empty change set. Removing a
// new object forgets it without a tombstone, so adding it back leaves it new.
type Monitor struct {
	bus     *eventbus.Bus
	known   map[tree.ID]model.Type
	changes map[tree.ID]Set
	removed map[tree.ID]model.Type
}

// NewMonitor creates a monitor subscribed to every mutation and list event on
// bus.
func NewMonitor(bus *eventbus.Bus) *Monitor {
	m := &Monitor{
		bus:     bus,
		known:   make(map[tree.ID]model.Type),
		changes: make(map[tree.ID]Set),
		removed: make(map[tree.ID]model.Type),
	}
	for _, ev := range model.MutationEvents() {
		bus.SubscribeEvent(ev, m, m.onMutation)
	}
	for _, ev := range container.AddEvents() {
		bus.SubscribeEvent(ev, m, m.onAdded)
	}
	for _, ev := range container.RemoveEvents() {
		bus.SubscribeEvent(ev, m, m.onRemoved)
	}
	return m
}

// Close stops monitoring.
func (m *Monitor) Close() {
	m.bus.Unsubscribe(m)
}

// Changes returns the attributes of id changed since the last reset. ok is
// false when id was never reset (a new object) or is unknown.
func (m *Monitor) Changes(id tree.ID) (Set, bool) {
	s, ok := m.changes[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(s), true
}

// IsNew reports whether id is known but was never reset.
func (m *Monitor) IsNew(id tree.ID) bool {
	_, known := m.known[id]
	_, tracked := m.changes[id]
	return known && !tracked
}

// IsRemoved reports whether id was removed since the last reset.
func (m *Monitor) IsRemoved(id tree.ID) bool {
	_, ok := m.removed[id]
	return ok
}

// Tombstones returns the removed objects ordered by ID.
func (m *Monitor) Tombstones() []Tombstone {
	out := make([]Tombstone, 0, len(m.removed))
	for id, typ := range m.removed {
		out = append(out, Tombstone{ID: id, Type: typ})
	}
	slices.SortFunc(out, func(a, b Tombstone) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// IsDirty reports whether anything needs saving: a new object, a changed
// attribute or a removal.
func (m *Monitor) IsDirty() bool {
	if len(m.removed) > 0 {
		return true
	}
	for id := range m.known {
		s, ok := m.changes[id]
		if !ok || len(s) > 0 {
			return true
		}
	}
	return false
}

// ResetChanges marks id as saved: its change set becomes empty and a
// tombstone for it is cleared.
func (m *Monitor) ResetChanges(id tree.ID) {
	delete(m.removed, id)
	if _, ok := m.known[id]; ok {
		m.changes[id] = Set{}
	}
}

// ResetAllChanges marks the whole document as saved.
func (m *Monitor) ResetAllChanges() {
	clear(m.removed)
	for id := range m.known {
		m.changes[id] = Set{}
	}
}

// MarkNew makes a known object new again, as if it was never reset.
func (m *Monitor) MarkNew(id tree.ID) {
	if _, ok := m.known[id]; ok {
		delete(m.changes, id)
	}
}

// MarkChanged adds attrs to the change set of id. New and unknown objects
// are left alone.
func (m *Monitor) MarkChanged(id tree.ID, attrs ...string) {
	s, ok := m.changes[id]
	if !ok {
		return
	}
	for _, attr := range attrs {
		s[attr] = struct{}{}
	}
}

// MarkRemoved tombstones id unless it is part of the document.
func (m *Monitor) MarkRemoved(id tree.ID, typ model.Type) {
	if _, ok := m.known[id]; ok {
		return
	}
	if _, ok := m.removed[id]; !ok {
		m.removed[id] = typ
	}
}

// Track registers objects that are already part of the document, for example
// right after a monitor is attached to a loaded document.
func (m *Monitor) Track(objs ...model.Object) {
	for _, obj := range objs {
		m.add(obj)
		if t, ok := obj.(*model.Task); ok {
			for _, e := range t.Efforts() {
				m.add(e)
			}
		}
	}
}

func (m *Monitor) add(obj model.Object) {
	id := obj.ID()
	m.known[id] = obj.Type()
	if _, ok := m.removed[id]; ok {
		delete(m.removed, id)
		m.changes[id] = Set{}
	}
}

func (m *Monitor) remove(obj model.Object) {
	id := obj.ID()
	if _, ok := m.known[id]; !ok {
		return
	}
	_, tracked := m.changes[id]
	delete(m.known, id)
	delete(m.changes, id)
	// Never saved, so there is nothing to delete.
	if tracked {
		m.removed[id] = obj.Type()
	}
}

func (m *Monitor) onMutation(env eventbus.Envelope) {
	if link, ok := env.Payload.(model.EffortLink); ok {
		switch env.Event {
		case model.TaskEffortAdd.Event():
			m.add(link.Effort)
		case model.TaskEffortRemove.Event():
			m.remove(link.Effort)
		}
	}

	t, ok := env.Payload.(model.Toucher)
	if !ok {
		return
	}
	for _, touch := range t.Touches() {
		if touch.Object == nil {
			continue
		}
		if s, ok := m.changes[touch.Object.ID()]; ok {
			s[touch.Attribute] = struct{}{}
		}
	}
}

func (m *Monitor) onAdded(env eventbus.Envelope) {
	src, ok := env.Payload.(objectSource)
	if !ok {
		return
	}
	m.Track(src.Objects()...)
}

func (m *Monitor) onRemoved(env eventbus.Envelope) {
	src, ok := env.Payload.(objectSource)
	if !ok {
		return
	}
	for _, obj := range src.Objects() {
		m.remove(obj)
		if t, ok := obj.(*model.Task); ok {
			for _, e := range t.Efforts() {
				m.remove(e)
			}
		}
	}
}
