package treeborrows

import (
	"github.com/banks/treeborrows/pkg/locstate"
	"github.com/banks/treeborrows/pkg/relatedness"
	"github.com/banks/treeborrows/pkg/tag"
)

// visitFn is called once per node visited by a traversal. It returns the
// decision for whether to continue into that node's children, or an
// error to abort the whole traversal.
type visitFn func(n *node, rel relatedness.Relatedness) (locstate.Decision, error)

// stackEntry is one pending node in the traversal's explicit DFS stack,
// together with the relatedness it was assigned when it was queued. An
// explicit stack is required rather than recursion because reborrow
// chains are adversarial and can be arbitrarily deep.
type stackEntry struct {
	id  tag.NodeID
	rel relatedness.Relatedness
}

// ancestorPath returns startID's ancestors in root-to-parent order,
// followed by startID itself as the final element.
func (t *Tree) ancestorPath(startID tag.NodeID) []tag.NodeID {
	path := []tag.NodeID{startID}
	cur := startID
	for t.nodes[cur].hasParent() {
		cur = t.nodes[cur].parent
		path = append(path, cur)
	}
	// path is currently [start, parent, grandparent, ..., root]; reverse
	// it to get root-down order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// pushChildrenExcept pushes every child of n onto stack with relatedness
// rel, skipping except (the node continuing the path toward the
// originally accessed tag, which is handled by the caller instead).
func pushChildrenExcept(stack []stackEntry, n *node, except tag.NodeID, rel relatedness.Relatedness) []stackEntry {
	for _, c := range n.children {
		if c == except {
			continue
		}
		stack = append(stack, stackEntry{id: c, rel: rel})
	}
	return stack
}

// drain pops entries off stack in LIFO order, visiting each and, unless
// the visit returns SkipChildren, pushing its children with the
// propagated relatedness. LIFO order means the subtree nearest to the
// originally accessed tag (pushed last) is fully explored before any
// cousin subtree pushed earlier during the ancestor walk, which is what
// gives protector-violation errors their "nearest node wins" ordering.
func (t *Tree) drain(stack []stackEntry, visit visitFn) error {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[top.id]
		decision, err := visit(n, top.rel)
		if err != nil {
			return err
		}
		if decision == locstate.SkipChildren {
			continue
		}
		childRel := top.rel.ForChild()
		for _, c := range n.children {
			stack = append(stack, stackEntry{id: c, rel: childRel})
		}
	}
	return nil
}

// traverse visits, in order: the strict ancestors of startID (root-down,
// relatedness StrictChildAccess), then startID itself (relatedness
// This), then its descendants (relatedness Ancestor, propagating via
// ForChild), then every remaining cousin subtree uncovered along the way
// (relatedness Distant, propagating via ForChild).
func (t *Tree) traverse(startID tag.NodeID, visit visitFn) error {
	path := t.ancestorPath(startID)
	var stack []stackEntry

	for i := 0; i < len(path)-1; i++ {
		a := t.nodes[path[i]]
		next := path[i+1]

		decision, err := visit(a, relatedness.StrictChildAccess)
		if err != nil {
			return err
		}
		if decision != locstate.SkipChildren {
			stack = pushChildrenExcept(stack, a, next, relatedness.StrictChildAccess.ForChild())
		}
	}

	start := t.nodes[startID]
	decision, err := visit(start, relatedness.This)
	if err != nil {
		return err
	}
	if decision != locstate.SkipChildren {
		childRel := relatedness.This.ForChild()
		for _, c := range start.children {
			stack = append(stack, stackEntry{id: c, rel: childRel})
		}
	}

	return t.drain(stack, visit)
}

// traverseNonchildren visits the same strict-ancestor and cousin nodes as
// traverse, but skips startID and its entire subtree. It is used by the
// protector-release implicit access, which must never disturb
// descendants that the caller still retains a live borrow of.
func (t *Tree) traverseNonchildren(startID tag.NodeID, visit visitFn) error {
	path := t.ancestorPath(startID)
	var stack []stackEntry

	for i := 0; i < len(path)-1; i++ {
		a := t.nodes[path[i]]
		next := path[i+1]

		decision, err := visit(a, relatedness.StrictChildAccess)
		if err != nil {
			return err
		}
		if decision != locstate.SkipChildren {
			stack = pushChildrenExcept(stack, a, next, relatedness.StrictChildAccess.ForChild())
		}
	}

	return t.drain(stack, visit)
}
