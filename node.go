// Package treeborrows implements the core of a Tree-Borrows-style
// aliasing model: a per-allocation tree of borrow tags, a per-(tag,
// offset) permission state machine, and the directed traversal that
// keeps them all in sync on every access.
package treeborrows

import (
	"github.com/banks/treeborrows/pkg/diagnostics"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/tag"
)

// node is one vertex of a borrow tree: a single tag, its place in the
// parent/child relation, and the default permission a not-yet-visited
// offset under this tag should assume.
type node struct {
	id       tag.NodeID
	tag      tag.Tag
	parent   tag.NodeID
	children []tag.NodeID

	defaultInitialPerm permission.Permission
	debugInfo          *diagnostics.NodeInfo
}

// hasParent reports whether n is not the tree's root.
func (n *node) hasParent() bool {
	return n.parent != tag.InvalidNodeID
}

// removeChild removes id from n's children, if present.
func (n *node) removeChild(id tag.NodeID) {
	for i, c := range n.children {
		if c == id {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
