package model

import (
	"slices"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
)

// Categorizable is an object that can belong to categories.
type Categorizable interface {
	Object
	Categories() []*Category
	HasCategory(c *Category) bool
	AddCategory(c *Category) bool
	RemoveCategory(c *Category) bool
	ForegroundColor() appearance.Color
	BackgroundColor() appearance.Color

	parentItem() Categorizable
}

// Membership is the category side of a categorizable object: an ordered
// identity set of categories. Joining a category also registers the item with
// the category so that both directions resolve.
type Membership struct {
	registry   *Registry
	links      *membershipKinds
	item       Categorizable
	categories []*Category
}

func (m *Membership) init(reg *Registry, kinds *membershipKinds, item Categorizable) {
	m.registry = reg
	m.links = kinds
	m.item = item
}

// Categories returns the item's own categories.
func (m *Membership) Categories() []*Category {
	return slices.Clone(m.categories)
}

// HasCategory reports whether c is one of the item's own categories.
func (m *Membership) HasCategory(c *Category) bool {
	return slices.Contains(m.categories, c)
}

// AddCategory adds c. When c's parent has exclusive subcategories the item
// leaves c's siblings first. Adding a category twice is a no-op.
func (m *Membership) AddCategory(c *Category) bool {
	if m.HasCategory(c) {
		return false
	}
	if p := c.Parent(); p != nil && p.ExclusiveSubcategories() {
		for _, sibling := range p.Children() {
			if sibling != c {
				m.RemoveCategory(sibling)
			}
		}
	}
	m.link(c)
	eventbus.Publish(m.registry.Bus, m.links.add, CategoryLink{Item: m.item, Category: c})
	return true
}

// RemoveCategory removes c. Removing a category the item does not have is a
// no-op.
func (m *Membership) RemoveCategory(c *Category) bool {
	i := slices.Index(m.categories, c)
	if i < 0 {
		return false
	}
	m.categories = slices.Delete(m.categories, i, i+1)
	c.removeCategorizable(m.item)
	eventbus.Publish(m.registry.Bus, m.links.remove, CategoryLink{Item: m.item, Category: c})
	return true
}

// link adds c without publishing. Used by restore and copy.
func (m *Membership) link(c *Category) {
	if m.HasCategory(c) {
		return
	}
	m.categories = append(m.categories, c)
	c.addCategorizable(m.item)
}

// DetachFromCategories removes the item from its categories' reverse index
// while keeping its own category set, so that re-adding the item restores the
// links. Containers call it when the item leaves the document.
func (m *Membership) DetachFromCategories() {
	for _, c := range m.categories {
		c.removeCategorizable(m.item)
	}
}

// AttachToCategories re-registers the item with its categories.
func (m *Membership) AttachToCategories() {
	for _, c := range m.categories {
		c.addCategorizable(m.item)
	}
}

// RecursiveCategories returns item's own categories followed by those of its
// ancestors, without duplicates.
func RecursiveCategories(item Categorizable) []*Category {
	var out []*Category
	for it := item; it != nil; it = it.parentItem() {
		for _, c := range it.Categories() {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// resolveColor walks own override, then the blend of the item's categories,
// then the parent's resolved color.
func resolveColor(item Categorizable, own func(Categorizable) appearance.Color, fromCategory func(*Category) appearance.Color) appearance.Color {
	for it := item; it != nil; it = it.parentItem() {
		if c := own(it); c.IsSet() {
			return c
		}
		cats := it.Categories()
		colors := make([]appearance.Color, 0, len(cats))
		for _, cat := range cats {
			colors = append(colors, fromCategory(cat))
		}
		if blended := appearance.Blend(colors...); blended.IsSet() {
			return blended
		}
	}
	return appearance.None
}

// ResolvedForegroundColor returns the foreground color item is displayed with.
func ResolvedForegroundColor(item Categorizable) appearance.Color {
	return resolveColor(item,
		func(it Categorizable) appearance.Color { return it.ForegroundColor() },
		(*Category).ResolvedForegroundColor)
}

// ResolvedBackgroundColor returns the background color item is displayed with.
func ResolvedBackgroundColor(item Categorizable) appearance.Color {
	return resolveColor(item,
		func(it Categorizable) appearance.Color { return it.BackgroundColor() },
		(*Category).ResolvedBackgroundColor)
}
