// Package tree implements the composite hierarchy shared by tasks, categories
// and notes as an arena of nodes addressed by ID.
//
// Nodes own the IDs of their children; the parent is a lookup by ID into the
// Forest rather than a pointer, so no ownership cycles exist between parents
// and children. The Forest is the identity map for one kind of entity: it maps
// every ID ever created (and not yet forgotten) to its node and owning entity.
package tree

import (
	"github.com/google/uuid"
)

// ID is a stable, persisted entity identifier.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Forest is an arena of nodes of a single entity kind.
type Forest struct {
	nodes map[ID]*Node
}

// NewForest creates an empty arena.
func NewForest() *Forest {
	return &Forest{nodes: make(map[ID]*Node)}
}

// New allocates a node with a fresh ID for owner.
func (f *Forest) New(owner any) *Node {
	return f.Insert(NewID(), owner)
}

// Insert allocates a node with a known ID, as done when restoring persisted
// entities. An existing node with the same ID is replaced.
func (f *Forest) Insert(id ID, owner any) *Node {
	n := &Node{id: id, forest: f, owner: owner}
	f.nodes[id] = n
	return n
}

// Get returns the node for id.
func (f *Forest) Get(id ID) (*Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// Owner returns the entity that owns id, or nil.
func (f *Forest) Owner(id ID) any {
	if n, ok := f.nodes[id]; ok {
		return n.owner
	}
	return nil
}

// Forget drops id from the arena. Parents that still reference it simply stop
// resolving it.
func (f *Forest) Forget(id ID) {
	delete(f.nodes, id)
}

// Len returns the number of nodes in the arena.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Node is one position in a composite hierarchy.
type Node struct {
	id       ID
	parent   ID
	children []ID
	forest   *Forest
	owner    any
}

// ID returns the node's identifier.
func (n *Node) ID() ID { return n.id }

// Owner returns the entity that embeds this node.
func (n *Node) Owner() any { return n.owner }

// ParentID returns the recorded parent ID, which is kept after the node is
// removed from its parent.
func (n *Node) ParentID() ID { return n.parent }

// Parent resolves the parent node through the arena.
func (n *Node) Parent() *Node {
	if n.parent == "" {
		return nil
	}
	p, ok := n.forest.nodes[n.parent]
	if !ok {
		return nil
	}
	return p
}

// Detach forgets the parent reference. Used when a node is re-rooted.
func (n *Node) Detach() {
	n.parent = ""
}

// AddChild appends child if it is not already a child and points the child's
// parent reference at n. It reports whether the child set changed.
//
// Cycles are not rejected: adding an ancestor as a child is accepted and
// leaves the hierarchy cyclic. Callers must avoid it.
func (n *Node) AddChild(child *Node) bool {
	if n.HasChild(child) {
		return false
	}
	n.children = append(n.children, child.id)
	child.parent = n.id
	return true
}

// RemoveChild removes child from the child set and reports whether it was
// present. The child's parent reference is intentionally left in place so
// that a removed subtree can be re-inserted where it came from.
func (n *Node) RemoveChild(child *Node) bool {
	for i, id := range n.children {
		if id == child.id {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

// HasChild reports whether child is an immediate child of n.
func (n *Node) HasChild(child *Node) bool {
	for _, id := range n.children {
		if id == child.id {
			return true
		}
	}
	return false
}

// ChildIDs returns the IDs of the immediate children in insertion order.
func (n *Node) ChildIDs() []ID {
	out := make([]ID, len(n.children))
	copy(out, n.children)
	return out
}

// Children returns the immediate child nodes that resolve in the arena.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c, ok := n.forest.nodes[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns all descendants in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.Children() {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// Ancestors returns the chain from the root down to, but excluding, n.
func (n *Node) Ancestors() []*Node {
	var chain []*Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of n, or n itself.
func (n *Node) Root() *Node {
	root := n
	for p := n.Parent(); p != nil; p = p.Parent() {
		root = p
	}
	return root
}
