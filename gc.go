package treeborrows

import (
	"github.com/banks/treeborrows/pkg/rangemap"
	"github.com/banks/treeborrows/pkg/tag"
)

// RemoveUnreachableTags prunes every node that is useless as of the start
// of this call: a leaf (no children) whose tag is not in live. The root
// is never removed, even if its own tag is absent from live.
//
// Eligibility is decided from a snapshot taken before any node is
// removed, so a node freed by this call's own pruning does not make its
// parent eligible in the same call: a root->P->C chain with only the
// root live takes two calls to collapse to the root, one generation at a
// time, matching a caller that runs the sweep once per GC cycle rather
// than to a fixed point. Running it repeatedly converges the same as
// running it once to a fixed point would.
//
// Reassigning an unreachable interior node's children up to a live
// ancestor is deliberately not done: doing so could relax permissions
// (e.g. promoting a Reserved grandchild to sit directly under a Frozen
// ancestor would let it see accesses it was never entitled to see before
// the compaction). A tree may therefore retain dead interior nodes
// indefinitely; only dead leaves are ever removed.
func (t *Tree) RemoveUnreachableTags(live map[tag.Tag]bool) {
	var dead []tag.NodeID
	for id, n := range t.nodes {
		if id == t.root {
			continue
		}
		if len(n.children) == 0 && !live[n.tag] {
			dead = append(dead, id)
		}
	}

	for _, id := range dead {
		parent := t.nodes[t.nodes[id].parent]
		parent.removeChild(id)
		t.removeNode(id)
	}

	t.rperm.MergeAdjacentThorough(slicesEqual)
}

// removeNode deletes id from every index the tree maintains: the node
// table, every range-map slice that has materialized state for it, and
// the tag map. It does not touch any parent's children list; the caller
// is responsible for that.
func (t *Tree) removeNode(id tag.NodeID) {
	tg := t.nodes[id].tag
	delete(t.nodes, id)
	t.tags.Remove(tg)
	t.rperm.IterMutAll(func(_ rangemap.Range, slice *locSlice) {
		delete(*slice, id)
	})
}

// slicesEqual reports whether two range-map slices hold identical
// per-node location state, used to coalesce adjacent slices after a GC
// sweep has potentially made them equal again.
func slicesEqual(a, b locSlice) bool {
	if len(a) != len(b) {
		return false
	}
	for id, av := range a {
		bv, ok := b[id]
		if !ok || av != bv {
			return false
		}
	}
	return true
}
