package container

import (
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
)

var (
	TasksAdd         = eventbus.NewKind[Added[*model.Task]]("tasks.add")
	TasksRemove      = eventbus.NewKind[Removed[*model.Task]]("tasks.remove")
	CategoriesAdd    = eventbus.NewKind[Added[*model.Category]]("categories.add")
	CategoriesRemove = eventbus.NewKind[Removed[*model.Category]]("categories.remove")
	NotesAdd         = eventbus.NewKind[Added[*model.Note]]("notes.add")
	NotesRemove      = eventbus.NewKind[Removed[*model.Note]]("notes.remove")
)

// AddEvents lists the events published when objects enter a list.
func AddEvents() []eventbus.Event {
	return []eventbus.Event{TasksAdd.Event(), CategoriesAdd.Event(), NotesAdd.Event()}
}

// RemoveEvents lists the events published when objects leave a list.
func RemoveEvents() []eventbus.Event {
	return []eventbus.Event{TasksRemove.Event(), CategoriesRemove.Event(), NotesRemove.Event()}
}

// TaskList holds every task of a document.
type TaskList struct {
	*List[*model.Task]
}

// NewTaskList creates an empty task list. Removing tasks detaches them from
// their categories and from the prerequisites of the remaining tasks.
func NewTaskList(reg *model.Registry) *TaskList {
	l := &TaskList{List: newList(reg, TasksAdd, TasksRemove, model.TaskAddChild)}
	l.afterAdd = func(tasks []*model.Task) {
		for _, t := range tasks {
			t.AttachToCategories()
		}
	}
	l.afterRemove = func(tasks []*model.Task) {
		gone := make(map[*model.Task]bool, len(tasks))
		for _, t := range tasks {
			t.DetachFromCategories()
			gone[t] = true
		}
		for _, t := range l.items {
			for _, p := range t.Prerequisites() {
				if gone[p] {
					t.RemovePrerequisite(p)
				}
			}
		}
	}
	return l
}

// Efforts returns the efforts of every task in the list.
func (l *TaskList) Efforts() []*model.Effort {
	var out []*model.Effort
	for _, t := range l.items {
		out = append(out, t.Efforts()...)
	}
	return out
}

// CategoryList holds every category of a document.
type CategoryList struct {
	*List[*model.Category]
}

// NewCategoryList creates an empty category list. Removing a category removes
// it from every item that belongs to it.
func NewCategoryList(reg *model.Registry) *CategoryList {
	l := &CategoryList{List: newList(reg, CategoriesAdd, CategoriesRemove, model.CategoryAddChild)}
	l.afterRemove = func(cats []*model.Category) {
		for _, c := range cats {
			for _, item := range c.Categorizables() {
				item.RemoveCategory(c)
			}
		}
	}
	return l
}

// Filtered returns the categories selected for filtering.
func (l *CategoryList) Filtered() []*model.Category {
	var out []*model.Category
	for _, c := range l.items {
		if c.IsFiltered() {
			out = append(out, c)
		}
	}
	return out
}

// NoteList holds every note of a document.
type NoteList struct {
	*List[*model.Note]
}

// NewNoteList creates an empty note list.
func NewNoteList(reg *model.Registry) *NoteList {
	l := &NoteList{List: newList(reg, NotesAdd, NotesRemove, model.NoteAddChild)}
	l.afterAdd = func(notes []*model.Note) {
		for _, n := range notes {
			n.AttachToCategories()
		}
	}
	l.afterRemove = func(notes []*model.Note) {
		for _, n := range notes {
			n.DetachFromCategories()
		}
	}
	return l
}
