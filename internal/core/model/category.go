package model

import (
	"slices"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Category is a node in the category tree. Tasks and notes join categories
// through their Membership; the category keeps the reverse index in memory.
type Category struct {
	Base

	exclusiveSubcategories bool
	filtered               bool
	categorizables         []Categorizable
}

// NewCategory creates a category bound to r.
func (r *Registry) NewCategory(subject string) *Category {
	return r.newCategory(tree.NewID(), subject)
}

func (r *Registry) newCategory(id tree.ID, subject string) *Category {
	c := &Category{}
	c.Base.init(r, r.categories.Insert(id, c), categoryBase, c, subject)
	return c
}

func (c *Category) Type() Type { return TypeCategory }

// Parent returns the parent category or nil.
func (c *Category) Parent() *Category {
	if p := c.node.Parent(); p != nil {
		if pc, ok := p.Owner().(*Category); ok {
			return pc
		}
	}
	return nil
}

func (c *Category) Children() []*Category {
	return nodeOwners[*Category](c.node.Children())
}

// Descendants returns all subcategories in pre-order.
func (c *Category) Descendants() []*Category {
	return nodeOwners[*Category](c.node.Descendants())
}

// Ancestors returns the chain from the root category down to c's parent.
func (c *Category) Ancestors() []*Category {
	return nodeOwners[*Category](c.node.Ancestors())
}

func (c *Category) AddChild(child *Category) bool    { return c.addChild(&child.Base) }
func (c *Category) RemoveChild(child *Category) bool { return c.removeChild(&child.Base) }

func (c *Category) ExclusiveSubcategories() bool { return c.exclusiveSubcategories }

func (c *Category) SetExclusiveSubcategories(v bool) {
	setAttr(&c.Base, &c.exclusiveSubcategories, v, CategoryExclusiveSubcategories)
}

// IsFiltered reports whether the category is selected in the category filter.
func (c *Category) IsFiltered() bool { return c.filtered }

func (c *Category) SetFiltered(v bool) {
	setAttr(&c.Base, &c.filtered, v, CategoryFiltered)
}

// Categorizables returns the items that belong to c directly.
func (c *Category) Categorizables() []Categorizable {
	return slices.Clone(c.categorizables)
}

// RecursiveCategorizables returns the items of c and of all its
// subcategories, without duplicates.
func (c *Category) RecursiveCategorizables() []Categorizable {
	out := c.Categorizables()
	for _, sub := range c.Descendants() {
		for _, it := range sub.categorizables {
			if !slices.Contains(out, it) {
				out = append(out, it)
			}
		}
	}
	return out
}

func (c *Category) addCategorizable(item Categorizable) {
	if !slices.Contains(c.categorizables, item) {
		c.categorizables = append(c.categorizables, item)
	}
}

func (c *Category) removeCategorizable(item Categorizable) {
	if i := slices.Index(c.categorizables, item); i >= 0 {
		c.categorizables = slices.Delete(c.categorizables, i, i+1)
	}
}

// ResolvedForegroundColor returns c's own foreground or that of the nearest
// ancestor category that sets one.
func (c *Category) ResolvedForegroundColor() appearance.Color {
	for cat := c; cat != nil; cat = cat.Parent() {
		if cat.foreground.IsSet() {
			return cat.foreground
		}
	}
	return appearance.None
}

// ResolvedBackgroundColor is the background counterpart of
// ResolvedForegroundColor.
func (c *Category) ResolvedBackgroundColor() appearance.Color {
	for cat := c; cat != nil; cat = cat.Parent() {
		if cat.background.IsSet() {
			return cat.background
		}
	}
	return appearance.None
}

// Copy returns a deep copy of c and its subcategories with fresh IDs. Item
// memberships are not copied.
func (c *Category) Copy() *Category {
	cp := c.reg.NewCategory(c.subject)
	c.Base.copyInto(&cp.Base)
	cp.exclusiveSubcategories = c.exclusiveSubcategories
	cp.filtered = c.filtered
	for _, child := range c.Children() {
		cp.node.AddChild(child.Copy().node)
	}
	return cp
}
