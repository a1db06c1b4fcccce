package snapshot

import (
	"slices"
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/container"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// The Apply functions copy one attribute, named the way the change monitor
// names it, from a record onto a live object through its ordinary setters,
// so every change is published. They report false for attributes they do
// not know. "children" and "efforts" are derived from the other side's
// records and are accepted without effect.

type baseSetter interface {
	SetSubject(string)
	SetDescription(string)
	SetForegroundColor(appearance.Color)
	SetBackgroundColor(appearance.Color)
	SetExpanded(bool)
	SetAttachments([]model.Attachment)
}

func applyBase(obj baseSetter, r BaseRecord, attr string) bool {
	switch attr {
	case "subject":
		obj.SetSubject(r.Subject)
	case "description":
		obj.SetDescription(r.Description)
	case "foregroundColor":
		obj.SetForegroundColor(color(r.Foreground))
	case "backgroundColor":
		obj.SetBackgroundColor(color(r.Background))
	case "expanded":
		obj.SetExpanded(r.Expanded)
	case "attachments":
		obj.SetAttachments(r.Attachments)
	case "children":
	default:
		return false
	}
	return true
}

// applyParent moves obj under the object with parentID, or makes it a root
// when parentID is empty or unknown. Moves that would create a cycle leave
// obj a root.
func applyParent[T container.Item[T]](obj T, parentID string, lookup func(tree.ID) (T, bool)) {
	var zero T
	cur := obj.Parent()
	attached := cur != zero && cur.Node().HasChild(obj.Node())

	want, ok := zero, false
	if parentID != "" {
		want, ok = lookup(tree.ID(parentID))
	}
	if ok && (want == obj || obj.Node().IsAncestorOf(want.Node())) {
		ok = false
	}
	switch {
	case ok && attached && want == cur:
		return
	case !ok && !attached:
		obj.Node().Detach()
		return
	}
	if attached {
		cur.RemoveChild(obj)
	}
	if ok {
		want.AddChild(obj)
		return
	}
	obj.Node().Detach()
}

func applyCategories(reg *model.Registry, item model.Categorizable, ids []string) {
	want := make([]*model.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := reg.Category(tree.ID(id)); ok {
			want = append(want, c)
		}
	}
	for _, c := range item.Categories() {
		if !slices.Contains(want, c) {
			item.RemoveCategory(c)
		}
	}
	for _, c := range want {
		item.AddCategory(c)
	}
}

func applyPrerequisites(t *model.Task, ids []string) {
	reg := t.Registry()
	want := treeIDs(ids)
	for _, p := range t.Prerequisites() {
		if !slices.Contains(want, p.ID()) {
			t.RemovePrerequisite(p)
		}
	}
	for _, id := range want {
		if p, ok := reg.Task(id); ok {
			t.AddPrerequisite(p)
		}
	}
}

// ApplyTask copies attr from r onto t.
func ApplyTask(t *model.Task, r TaskRecord, attr string) bool {
	if applyBase(t, r.BaseRecord, attr) {
		return true
	}
	reg := t.Registry()
	switch attr {
	case "parent":
		applyParent(t, r.Parent, reg.Task)
	case "categories":
		applyCategories(reg, t, r.Categories)
	case "plannedStartDateTime":
		t.SetPlannedStartDateTime(timeOrNone(r.PlannedStart))
	case "actualStartDateTime":
		t.SetActualStartDateTime(timeOrNone(r.ActualStart))
	case "dueDateTime":
		t.SetDueDateTime(timeOrNone(r.Due))
	case "completionDateTime":
		t.SetCompletionDateTime(timeOrNone(r.Completion))
	case "reminder":
		t.SetReminder(timeOrNone(r.Reminder))
	case "recurrence":
		t.SetRecurrence(r.recurrence())
	case "budget":
		t.SetBudget(time.Duration(r.BudgetSeconds) * time.Second)
	case "hourlyFee":
		t.SetHourlyFee(r.HourlyFee)
	case "fixedFee":
		t.SetFixedFee(r.FixedFee)
	case "priority":
		t.SetPriority(r.Priority)
	case "percentageComplete":
		t.SetPercentageComplete(r.PercentageComplete)
	case "markParentCompleted":
		t.SetMarkParentCompleted(r.markParentCompleted())
	case "prerequisites":
		applyPrerequisites(t, r.Prerequisites)
	case "efforts":
	default:
		return false
	}
	return true
}

// ApplyCategory copies attr from r onto c.
func ApplyCategory(c *model.Category, r CategoryRecord, attr string) bool {
	if applyBase(c, r.BaseRecord, attr) {
		return true
	}
	switch attr {
	case "parent":
		applyParent(c, r.Parent, c.Registry().Category)
	case "exclusiveSubcategories":
		c.SetExclusiveSubcategories(r.ExclusiveSubcategories)
	case "filtered":
		c.SetFiltered(r.Filtered)
	default:
		return false
	}
	return true
}

// ApplyNote copies attr from r onto n.
func ApplyNote(n *model.Note, r NoteRecord, attr string) bool {
	if applyBase(n, r.BaseRecord, attr) {
		return true
	}
	switch attr {
	case "parent":
		applyParent(n, r.Parent, n.Registry().Note)
	case "categories":
		applyCategories(n.Registry(), n, r.Categories)
	default:
		return false
	}
	return true
}

// ApplyEffort copies attr from r onto e. Moving an effort to a task that does
// not exist is ignored.
func ApplyEffort(reg *model.Registry, e *model.Effort, r EffortRecord, attr string) bool {
	switch attr {
	case "start":
		e.SetStart(r.Start)
	case "stop":
		e.SetStop(timeOrNone(r.Stop))
	case "description":
		e.SetDescription(r.Description)
	case "task":
		if t, ok := reg.Task(tree.ID(r.Task)); ok {
			e.SetTask(t)
		}
	default:
		return false
	}
	return true
}
