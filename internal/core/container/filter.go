package container

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/taskcoach/internal/core/model"
)

// Stage is one step of a view pipeline.
type Stage[T any] interface {
	Apply(items []T) []T
}

// StageFunc adapts a function to Stage.
type StageFunc[T any] func([]T) []T

func (f StageFunc[T]) Apply(items []T) []T { return f(items) }

// View runs the list's items through stages in order. The canonical order is
// search filter, category filter, view filter, sorter.
func (l *List[T]) View(stages ...Stage[T]) []T {
	items := l.Items()
	for _, s := range stages {
		if s != nil {
			items = s.Apply(items)
		}
	}
	return items
}

// SearchFilter keeps items whose subject (and optionally description)
// matches Query. A query containing glob metacharacters is matched as a
// doublestar pattern against the whole text; anything else is a substring
// match. With TreeMode the ancestors of matching items are kept too.
type SearchFilter[T Item[T]] struct {
	Query             string
	MatchCase         bool
	SearchDescription bool
	TreeMode          bool
}

type describer interface {
	Description() string
}

func (f SearchFilter[T]) Apply(items []T) []T {
	if strings.TrimSpace(f.Query) == "" {
		return items
	}
	return keepMatching(items, f.TreeMode, f.matches)
}

func (f SearchFilter[T]) matches(item T) bool {
	texts := []string{item.Subject()}
	if d, ok := any(item).(describer); ok && f.SearchDescription {
		texts = append(texts, d.Description())
	}

	query := f.Query
	if !f.MatchCase {
		query = strings.ToLower(query)
	}
	glob := strings.ContainsAny(query, "*?[{")

	for _, text := range texts {
		if !f.MatchCase {
			text = strings.ToLower(text)
		}
		if glob {
			if ok, err := doublestar.Match(query, text); err == nil && ok {
				return true
			}
			continue
		}
		if strings.Contains(text, query) {
			return true
		}
	}
	return false
}

// CategoryMatch selects how several filter categories combine.
type CategoryMatch int

const (
	MatchAny CategoryMatch = iota
	MatchAll
)

// CategoryFilter keeps items that belong to the given categories. An item
// belongs to a category when it or one of its ancestors is in the category
// or in one of its subcategories. An empty category set keeps everything.
type CategoryFilter[T Item[T]] struct {
	Categories []*model.Category
	Match      CategoryMatch
}

func (f CategoryFilter[T]) Apply(items []T) []T {
	if len(f.Categories) == 0 {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(item T) bool {
		return !f.matches(item)
	})
}

func (f CategoryFilter[T]) matches(item T) bool {
	c, ok := any(item).(model.Categorizable)
	if !ok {
		return true
	}
	cats := model.RecursiveCategories(c)
	in := func(filter *model.Category) bool {
		for _, cat := range cats {
			if cat == filter || filter.Node().IsAncestorOf(cat.Node()) {
				return true
			}
		}
		return false
	}

	if f.Match == MatchAll {
		for _, fc := range f.Categories {
			if !in(fc) {
				return false
			}
		}
		return true
	}
	return slices.ContainsFunc(f.Categories, in)
}

// TaskViewFilter hides tasks by status and shape.
type TaskViewFilter struct {
	HideStatuses       []model.Status
	HideBlocked        bool
	HideCompositeTasks bool
	TreeMode           bool
}

// HideCompleted returns a filter hiding completed tasks.
func HideCompleted() TaskViewFilter {
	return TaskViewFilter{HideStatuses: []model.Status{model.StatusCompleted}}
}

func (f TaskViewFilter) Apply(items []*model.Task) []*model.Task {
	if len(f.HideStatuses) == 0 && !f.HideBlocked && !f.HideCompositeTasks {
		return items
	}
	return keepMatching(items, f.TreeMode, f.visible)
}

func (f TaskViewFilter) visible(t *model.Task) bool {
	if slices.Contains(f.HideStatuses, t.Status()) {
		return false
	}
	if f.HideBlocked && t.Blocked() {
		return false
	}
	if f.HideCompositeTasks && len(t.Children()) > 0 {
		return false
	}
	return true
}

// keepMatching filters items, keeping ancestors of matches in tree mode and
// preserving the input order.
func keepMatching[T Item[T]](items []T, treeMode bool, match func(T) bool) []T {
	keep := make(map[T]bool, len(items))
	for _, it := range items {
		if !match(it) {
			continue
		}
		keep[it] = true
		if treeMode {
			var zero T
			for p := it.Parent(); p != zero; p = p.Parent() {
				keep[p] = true
			}
		}
	}
	out := make([]T, 0, len(keep))
	for _, it := range items {
		if keep[it] {
			out = append(out, it)
		}
	}
	return out
}
