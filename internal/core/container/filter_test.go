package container

import (
	"testing"
	"time"

	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjects[T Item[T]](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Subject()
	}
	return out
}

func TestSearchFilter(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	project := reg.NewTask("Project")
	report := reg.NewTask("Write report")
	report.SetDescription("quarterly numbers")
	call := reg.NewTask("Call bank")
	project.AddChild(report)
	list.Extend(project, call)

	tests := []struct {
		name   string
		filter SearchFilter[*model.Task]
		want   []string
	}{
		{"empty query keeps all", SearchFilter[*model.Task]{}, []string{"Project", "Write report", "Call bank"}},
		{"substring ignores case", SearchFilter[*model.Task]{Query: "REPORT"}, []string{"Write report"}},
		{"match case", SearchFilter[*model.Task]{Query: "REPORT", MatchCase: true}, []string{}},
		{"glob", SearchFilter[*model.Task]{Query: "c*"}, []string{"Call bank"}},
		{"description", SearchFilter[*model.Task]{Query: "quarterly", SearchDescription: true}, []string{"Write report"}},
		{"tree mode keeps ancestors", SearchFilter[*model.Task]{Query: "report", TreeMode: true}, []string{"Project", "Write report"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjects(list.View(tt.filter)))
		})
	}
}

func TestCategoryFilter(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	work := reg.NewCategory("work")
	meetings := reg.NewCategory("meetings")
	home := reg.NewCategory("home")
	work.AddChild(meetings)

	standup := reg.NewTask("standup")
	standup.AddCategory(meetings)
	prep := reg.NewTask("prep")
	standup.AddChild(prep)
	laundry := reg.NewTask("laundry")
	laundry.AddCategory(home)
	both := reg.NewTask("both")
	both.AddCategory(work)
	both.AddCategory(home)
	list.Extend(standup, laundry, both)

	anyOf := CategoryFilter[*model.Task]{Categories: []*model.Category{work}}
	assert.Equal(t, []string{"standup", "prep", "both"}, subjects(list.View(anyOf)),
		"subcategories and ancestor categories count")

	all := CategoryFilter[*model.Task]{Categories: []*model.Category{work, home}, Match: MatchAll}
	assert.Equal(t, []string{"both"}, subjects(list.View(all)))

	none := CategoryFilter[*model.Task]{}
	assert.Len(t, list.View(none), 4)
}

func TestTaskViewFilter(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	done := reg.NewTask("done")
	done.Complete()
	blocked := reg.NewTask("blocked")
	blocked.AddPrerequisite(reg.NewTask("elsewhere"))
	parent := reg.NewTask("parent")
	late := reg.NewTask("late")
	late.SetPlannedStartDateTime(testNow.Add(-time.Hour))
	parent.AddChild(late)
	list.Extend(done, blocked, parent)

	assert.Equal(t, []string{"blocked", "parent", "late"}, subjects(list.View(HideCompleted())))

	f := TaskViewFilter{HideBlocked: true, HideCompositeTasks: true}
	assert.Equal(t, []string{"done", "late"}, subjects(list.View(f)))

	f = TaskViewFilter{HideStatuses: []model.Status{model.StatusInactive, model.StatusCompleted}, TreeMode: true}
	assert.Equal(t, []string{"parent", "late"}, subjects(list.View(f)))
}

func TestSorter(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	a := reg.NewTask("alpha")
	b := reg.NewTask("Bravo")
	c := reg.NewTask("charlie")
	a.SetPriority(1)
	b.SetPriority(5)
	c.SetPriority(5)
	a.SetDueDateTime(testNow.Add(48 * time.Hour))
	c.SetDueDateTime(testNow.Add(24 * time.Hour))
	list.Extend(c, a, b)

	assert.Equal(t, []string{"alpha", "Bravo", "charlie"}, subjects(list.View(BySubject[*model.Task]())))

	byPriority, err := TaskSorter("priority", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "charlie", "alpha"}, subjects(list.View(byPriority)))

	byDue, err := TaskSorter("due", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "alpha", "Bravo"}, subjects(list.View(byDue)), "unset due dates sort last")

	desc, err := TaskSorter("subject", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "Bravo", "alpha"}, subjects(list.View(desc)))

	_, err = TaskSorter("color", false)
	assert.Error(t, err)
}

func TestView_PipelineOrder(t *testing.T) {
	reg, _ := newRegistry(t)
	list := NewTaskList(reg)
	cat := reg.NewCategory("errands")
	for _, s := range []string{"buy milk", "buy bread", "sell car"} {
		task := reg.NewTask(s)
		task.AddCategory(cat)
		list.Append(task)
	}
	list.Append(reg.NewTask("buy stamps"))
	sorter, err := TaskSorter("subject", false)
	require.NoError(t, err)

	got := list.View(
		SearchFilter[*model.Task]{Query: "buy"},
		CategoryFilter[*model.Task]{Categories: []*model.Category{cat}},
		HideCompleted(),
		sorter,
	)

	assert.Equal(t, []string{"buy bread", "buy milk"}, subjects(got))
}
