package model

import (
	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// Note is a categorizable free-text node with attachments.
type Note struct {
	Base
	Membership
}

// NewNote creates a note bound to r.
func (r *Registry) NewNote(subject string) *Note {
	return r.newNote(tree.NewID(), subject)
}

func (r *Registry) newNote(id tree.ID, subject string) *Note {
	n := &Note{}
	n.Base.init(r, r.notes.Insert(id, n), noteBase, n, subject)
	n.Membership.init(r, noteMembership, n)
	return n
}

func (n *Note) Type() Type { return TypeNote }

func (n *Note) Parent() *Note {
	if p := n.node.Parent(); p != nil {
		if pn, ok := p.Owner().(*Note); ok {
			return pn
		}
	}
	return nil
}

func (n *Note) parentItem() Categorizable {
	if p := n.Parent(); p != nil {
		return p
	}
	return nil
}

func (n *Note) Children() []*Note    { return nodeOwners[*Note](n.node.Children()) }
func (n *Note) Descendants() []*Note { return nodeOwners[*Note](n.node.Descendants()) }
func (n *Note) Ancestors() []*Note   { return nodeOwners[*Note](n.node.Ancestors()) }

func (n *Note) AddChild(child *Note) bool    { return n.addChild(&child.Base) }
func (n *Note) RemoveChild(child *Note) bool { return n.removeChild(&child.Base) }

func (n *Note) ResolvedForegroundColor() appearance.Color { return ResolvedForegroundColor(n) }
func (n *Note) ResolvedBackgroundColor() appearance.Color { return ResolvedBackgroundColor(n) }

// Copy returns a deep copy of n and its children with fresh IDs.
func (n *Note) Copy() *Note {
	cp := n.reg.NewNote(n.subject)
	n.Base.copyInto(&cp.Base)
	for _, c := range n.categories {
		cp.Membership.link(c)
	}
	for _, child := range n.Children() {
		cp.node.AddChild(child.Copy().node)
	}
	return cp
}
