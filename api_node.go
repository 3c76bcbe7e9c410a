package treeborrows

import (
	"github.com/banks/treeborrows/pkg/diagnostics"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/tag"
)

// NodeView is a public, read-only veneer over a tree node, used by
// callers (tests, for instance) that want to inspect the tree's shape
// without reaching into its unexported fields.
type NodeView struct {
	n *node
}

// Tag returns the borrow tag this node represents.
func (v NodeView) Tag() tag.Tag { return v.n.tag }

// Name returns the human-readable name assigned to this node, if any.
func (v NodeView) Name() string { return v.n.debugInfo.Name }

// DefaultInitialPerm returns the permission a not-yet-visited offset
// under this node assumes.
func (v NodeView) DefaultInitialPerm() permission.Permission { return v.n.defaultInitialPerm }

// IsRoot reports whether this node is its tree's root.
func (v NodeView) IsRoot() bool { return !v.n.hasParent() }

// Children returns a NodeView for each of this node's direct children.
func (v NodeView) Children(t *Tree) []NodeView {
	out := make([]NodeView, 0, len(v.n.children))
	for _, c := range v.n.children {
		out = append(out, NodeView{n: t.nodes[c]})
	}
	return out
}

// History returns the accumulated, non-no-op transition events recorded
// against this node.
func (v NodeView) History() []diagnostics.Event { return v.n.debugInfo.History }

// Root returns a NodeView over t's root, for callers that want to walk
// the tree shape without depending on internal types.
func (t *Tree) Root() NodeView {
	return NodeView{n: t.nodes[t.root]}
}

// Node returns a NodeView over the node currently holding tg, if tg is
// still live in t.
func (t *Tree) Node(tg tag.Tag) (NodeView, bool) {
	id, ok := t.tags.Get(tg)
	if !ok {
		return NodeView{}, false
	}
	return NodeView{n: t.nodes[id]}, true
}

// AddName attaches a human-readable name to tg's node, used by the CLI
// when a scenario file names its tags.
func (t *Tree) AddName(tg tag.Tag, name string) {
	id, ok := t.tags.Get(tg)
	if !ok {
		return
	}
	t.nodes[id].debugInfo.AddName(name)
}
