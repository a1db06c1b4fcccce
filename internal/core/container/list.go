// Package container holds the observable task, category and note lists and
// the filter pipeline layered on top of them.
//
// A list contains every item of the document, subitems included. Adding an
// item adds its whole subtree and reattaches it to its parent; removing an
// item removes its subtree and detaches it from its parent, which keeps its
// parent reference so that re-adding restores the original position.
package container

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// ErrAmbiguous is returned by Find when a reference matches several items.
var ErrAmbiguous = errors.New("ambiguous reference")

// Item is the composite behavior a list needs from its element type.
type Item[T any] interface {
	comparable
	model.Object
	Node() *tree.Node
	Parent() T
	Children() []T
	Descendants() []T
	AddChild(child T) bool
	RemoveChild(child T) bool
}

// Added is published after items were added to a list.
type Added[T Item[T]] struct {
	Items []T
}

// Objects returns the added items as domain objects.
func (a Added[T]) Objects() []model.Object { return objects(a.Items) }

// Removed is published after items were removed from a list.
type Removed[T Item[T]] struct {
	Items []T
}

// Objects returns the removed items as domain objects.
func (r Removed[T]) Objects() []model.Object { return objects(r.Items) }

func objects[T Item[T]](items []T) []model.Object {
	out := make([]model.Object, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// List is an observable, flat collection of composite items.
type List[T Item[T]] struct {
	reg     *model.Registry
	items   []T
	index   map[tree.ID]T
	added   eventbus.Kind[Added[T]]
	removed eventbus.Kind[Removed[T]]

	// extending suppresses the add-child handler while Extend reattaches
	// items itself.
	extending bool

	afterAdd    func([]T)
	afterRemove func([]T)
}

func newList[T Item[T]](reg *model.Registry, added eventbus.Kind[Added[T]], removed eventbus.Kind[Removed[T]], addChild eventbus.Kind[model.ChildChanged]) *List[T] {
	l := &List[T]{
		reg:     reg,
		index:   make(map[tree.ID]T),
		added:   added,
		removed: removed,
	}
	eventbus.Subscribe(reg.Bus, addChild, l, l.onAddChild)
	return l
}

// onAddChild pulls children added to a member item into the list.
func (l *List[T]) onAddChild(p model.ChildChanged) {
	if l.extending {
		return
	}
	parent, ok := p.Parent.(T)
	if !ok || !l.Contains(parent) {
		return
	}
	if child, ok := p.Child.(T); ok && !l.Contains(child) {
		l.Extend(child)
	}
}

// Close stops following hierarchy events.
func (l *List[T]) Close() {
	l.reg.Bus.Unsubscribe(l)
}

// Len returns the number of items, subitems included.
func (l *List[T]) Len() int { return len(l.items) }

// Items returns every item in insertion order.
func (l *List[T]) Items() []T { return slices.Clone(l.items) }

// Contains reports whether item is a member.
func (l *List[T]) Contains(item T) bool {
	var zero T
	if item == zero {
		return false
	}
	got, ok := l.index[item.ID()]
	return ok && got == item
}

// Get returns the member with the given ID.
func (l *List[T]) Get(id tree.ID) (T, bool) {
	it, ok := l.index[id]
	return it, ok
}

// RootItems returns the members whose parent is not a member containing them.
func (l *List[T]) RootItems() []T {
	var out []T
	for _, it := range l.items {
		if !l.hasMemberParent(it) {
			out = append(out, it)
		}
	}
	return out
}

func (l *List[T]) hasMemberParent(it T) bool {
	p := it.Parent()
	return l.Contains(p) && p.Node().HasChild(it.Node())
}

// Append adds one item with its subtree.
func (l *List[T]) Append(item T) { l.Extend(item) }

// Extend adds items and their subtrees in one batch. Items whose parent is a
// member (or part of the batch) are reattached to it; items whose parent is
// gone become roots. Items already present are skipped.
func (l *List[T]) Extend(items ...T) {
	batch := make(map[tree.ID]bool)
	for _, it := range items {
		batch[it.ID()] = true
		for _, d := range it.Descendants() {
			batch[d.ID()] = true
		}
	}

	l.extending = true
	var added []T
	for _, it := range items {
		l.reattach(it, batch)
		for _, x := range append([]T{it}, it.Descendants()...) {
			if _, ok := l.index[x.ID()]; ok {
				continue
			}
			l.index[x.ID()] = x
			l.items = append(l.items, x)
			added = append(added, x)
		}
	}
	l.extending = false

	if len(added) == 0 {
		return
	}
	if l.afterAdd != nil {
		l.afterAdd(added)
	}
	eventbus.Publish(l.reg.Bus, l.added, Added[T]{Items: added})
}

func (l *List[T]) reattach(it T, batch map[tree.ID]bool) {
	var zero T
	p := it.Parent()
	if p == zero {
		return
	}
	if l.Contains(p) || batch[p.ID()] {
		p.AddChild(it)
		return
	}
	p.RemoveChild(it)
	it.Node().Detach()
}

// Remove removes items and their subtrees and detaches each removed item
// from its member parent. Unknown items are ignored.
func (l *List[T]) Remove(items ...T) {
	var removed []T
	for _, it := range items {
		if !l.Contains(it) {
			continue
		}
		for _, x := range append([]T{it}, it.Descendants()...) {
			if _, ok := l.index[x.ID()]; ok {
				delete(l.index, x.ID())
				removed = append(removed, x)
			}
		}
		if p := it.Parent(); l.Contains(p) {
			p.RemoveChild(it)
		}
	}
	if len(removed) == 0 {
		return
	}

	l.items = slices.DeleteFunc(l.items, func(x T) bool {
		_, ok := l.index[x.ID()]
		return !ok
	})
	if l.afterRemove != nil {
		l.afterRemove(removed)
	}
	eventbus.Publish(l.reg.Bus, l.removed, Removed[T]{Items: removed})
}

// Clear removes every item.
func (l *List[T]) Clear() {
	l.Remove(l.RootItems()...)
}

// Find resolves a user reference: a full ID, a unique ID prefix, or an exact
// (case-insensitive) subject.
func (l *List[T]) Find(ref string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("empty reference: %w", model.ErrNotFound)
	}
	if it, ok := l.index[tree.ID(ref)]; ok {
		return it, nil
	}

	var byPrefix, bySubject []T
	for _, it := range l.items {
		if strings.HasPrefix(string(it.ID()), ref) {
			byPrefix = append(byPrefix, it)
		}
		if strings.EqualFold(it.Subject(), ref) {
			bySubject = append(bySubject, it)
		}
	}
	for _, matches := range [][]T{byPrefix, bySubject} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return zero, fmt.Errorf("%q matches %d items: %w", ref, len(matches), ErrAmbiguous)
		}
	}
	return zero, fmt.Errorf("%q: %w", ref, model.ErrNotFound)
}
