package merge

import (
	"maps"
	"slices"

	"github.com/colonyops/taskcoach/internal/core/changes"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Delta is what one replica changed between two synchronizations: objects it
// created, attributes it changed on objects that existed before, and objects
// it removed. IDs are strings so the delta can be stored as is.
type Delta struct {
	New     []string            `json:"new,omitempty"`
	Changed map[string][]string `json:"changed,omitempty"`
	Removed []string            `json:"removed,omitempty"`
}

// Collect builds the delta recorded by m for objs, the live objects of the
// document, plus m's tombstones.
func Collect(m *changes.Monitor, objs []model.Object) Delta {
	var d Delta
	for _, obj := range objs {
		id := obj.ID()
		if m.IsNew(id) {
			d.New = append(d.New, string(id))
			continue
		}
		set, ok := m.Changes(id)
		if !ok || len(set) == 0 {
			continue
		}
		if d.Changed == nil {
			d.Changed = make(map[string][]string)
		}
		d.Changed[string(id)] = set.Sorted()
	}
	for _, ts := range m.Tombstones() {
		d.Removed = append(d.Removed, string(ts.ID))
	}
	return d
}

// Replay records d in m, for example to carry unsynchronized changes over a
// restart. IDs m does not know are skipped, except removals.
func (d Delta) Replay(m *changes.Monitor) {
	for _, id := range d.New {
		m.MarkNew(tree.ID(id))
	}
	for id, attrs := range d.Changed {
		m.MarkChanged(tree.ID(id), attrs...)
	}
	for _, id := range d.Removed {
		m.MarkRemoved(tree.ID(id), "")
	}
}

// IsEmpty reports whether d records nothing.
func (d Delta) IsEmpty() bool {
	return len(d.New) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Touched reports whether d created or changed id.
func (d Delta) Touched(id string) bool {
	if _, ok := d.Changed[id]; ok {
		return true
	}
	return slices.Contains(d.New, id)
}

// IsRemoved reports whether d removed id.
func (d Delta) IsRemoved(id string) bool {
	return slices.Contains(d.Removed, id)
}

// Add folds o, which happened after d, into d. An object created and removed
// within the combined window disappears from the delta entirely.
func (d *Delta) Add(o Delta) {
	for _, id := range o.Removed {
		delete(d.Changed, id)
		if i := slices.Index(d.New, id); i >= 0 {
			d.New = slices.Delete(d.New, i, i+1)
			continue
		}
		if !slices.Contains(d.Removed, id) {
			d.Removed = append(d.Removed, id)
		}
	}
	for _, id := range o.New {
		if i := slices.Index(d.Removed, id); i >= 0 {
			d.Removed = slices.Delete(d.Removed, i, i+1)
		}
		if !slices.Contains(d.New, id) {
			d.New = append(d.New, id)
		}
	}
	for id, attrs := range o.Changed {
		if slices.Contains(d.New, id) {
			continue
		}
		if d.Changed == nil {
			d.Changed = make(map[string][]string)
		}
		merged := append(slices.Clone(d.Changed[id]), attrs...)
		slices.Sort(merged)
		d.Changed[id] = slices.Compact(merged)
	}
}

// Clone returns a deep copy of d.
func (d Delta) Clone() Delta {
	out := Delta{New: slices.Clone(d.New), Removed: slices.Clone(d.Removed)}
	if d.Changed != nil {
		out.Changed = maps.Clone(d.Changed)
		for id, attrs := range out.Changed {
			out.Changed[id] = slices.Clone(attrs)
		}
	}
	return out
}
