package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelta_Add(t *testing.T) {
	d := Delta{New: []string{"a"}, Changed: map[string][]string{"b": {"subject"}}}

	d.Add(Delta{
		Changed: map[string][]string{"a": {"priority"}, "b": {"dueDateTime", "subject"}},
		Removed: []string{"c"},
	})
	assert.Equal(t, []string{"a"}, d.New)
	assert.Equal(t, map[string][]string{"b": {"dueDateTime", "subject"}}, d.Changed, "changes to new objects are implied")
	assert.Equal(t, []string{"c"}, d.Removed)

	d.Add(Delta{Removed: []string{"a", "b"}})
	assert.Empty(t, d.New, "created and removed in the same window")
	assert.Empty(t, d.Changed)
	assert.Equal(t, []string{"c", "b"}, d.Removed)

	d.Add(Delta{New: []string{"c"}})
	assert.Equal(t, []string{"b"}, d.Removed)
	assert.Equal(t, []string{"c"}, d.New)
	assert.True(t, d.Touched("c"))
	assert.True(t, d.IsRemoved("b"))
	assert.False(t, d.IsEmpty())
}

func TestDelta_Clone(t *testing.T) {
	d := Delta{Changed: map[string][]string{"a": {"subject"}}}
	c := d.Clone()
	c.Changed["a"][0] = "priority"
	c.Changed["b"] = nil

	assert.Equal(t, map[string][]string{"a": {"subject"}}, d.Changed)
}

func TestCollect(t *testing.T) {
	r := newReplica(t)
	known := r.reg.NewTask("known")
	edited := r.reg.NewTask("edited")
	removed := r.reg.NewTask("removed")
	r.lists.Tasks.Extend(known, edited, removed)
	r.monitor.ResetAllChanges()

	fresh := r.reg.NewTask("fresh")
	r.lists.Tasks.Append(fresh)
	edited.SetPriority(2)
	edited.SetSubject("renamed")
	r.lists.Tasks.Remove(removed)

	d := Collect(r.monitor, r.lists.Objects())

	assert.Equal(t, []string{string(fresh.ID())}, d.New)
	assert.Equal(t, map[string][]string{string(edited.ID()): {"priority", "subject"}}, d.Changed)
	assert.Equal(t, []string{string(removed.ID())}, d.Removed)
	assert.True(t, Delta{}.IsEmpty())
}

func TestDelta_ReplayRestoresWindow(t *testing.T) {
	r := newReplica(t)
	fresh := r.reg.NewTask("fresh")
	edited := r.reg.NewTask("edited")
	r.lists.Tasks.Extend(fresh, edited)
	r.monitor.ResetAllChanges()

	want := Delta{
		New:     []string{string(fresh.ID())},
		Changed: map[string][]string{string(edited.ID()): {"subject"}},
		Removed: []string{"removed-earlier"},
	}
	want.Replay(r.monitor)

	assert.Equal(t, want, Collect(r.monitor, r.lists.Objects()))
}
