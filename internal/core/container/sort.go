package container

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/taskcoach/internal/core/model"
)

// Sorter orders items with Compare, breaking ties by subject. Sorting is
// stable.
type Sorter[T Item[T]] struct {
	Compare    func(a, b T) int
	Descending bool
}

func (s Sorter[T]) Apply(items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := 0
		if s.Compare != nil {
			c = s.Compare(a, b)
		}
		if c == 0 {
			c = strings.Compare(strings.ToLower(a.Subject()), strings.ToLower(b.Subject()))
		}
		if s.Descending {
			return -c
		}
		return c
	})
	return out
}

// BySubject sorts any list alphabetically.
func BySubject[T Item[T]]() Sorter[T] {
	return Sorter[T]{}
}

// TaskSortKeys maps the sort key names accepted by TaskSorter to their
// comparisons.
var TaskSortKeys = map[string]func(a, b *model.Task) int{
	"subject": nil,
	"due": func(a, b *model.Task) int {
		return a.RecursiveDueDateTime().Compare(b.RecursiveDueDateTime())
	},
	"plannedStart": func(a, b *model.Task) int {
		return a.RecursivePlannedStartDateTime().Compare(b.RecursivePlannedStartDateTime())
	},
	"priority": func(a, b *model.Task) int {
		// Highest priority first.
		return cmp.Compare(b.RecursivePriority(), a.RecursivePriority())
	},
	"status": func(a, b *model.Task) int {
		return cmp.Compare(statusRank(a.Status()), statusRank(b.Status()))
	},
	"timeSpent": func(a, b *model.Task) int {
		return cmp.Compare(a.RecursiveTimeSpent(), b.RecursiveTimeSpent())
	},
	"budget": func(a, b *model.Task) int {
		return cmp.Compare(a.RecursiveBudget(), b.RecursiveBudget())
	},
	"created": func(a, b *model.Task) int {
		return a.CreationDateTime().Compare(b.CreationDateTime())
	},
	"modified": func(a, b *model.Task) int {
		return a.ModificationDateTime().Compare(b.ModificationDateTime())
	},
}

func statusRank(s model.Status) int {
	return slices.Index(model.Statuses, s)
}

// TaskSorter returns a sorter for one of the TaskSortKeys.
func TaskSorter(key string, descending bool) (Sorter[*model.Task], error) {
	compare, ok := TaskSortKeys[key]
	if !ok {
		return Sorter[*model.Task]{}, fmt.Errorf("unknown sort key %q", key)
	}
	return Sorter[*model.Task]{Compare: compare, Descending: descending}, nil
}
