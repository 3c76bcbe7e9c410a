package treeborrows

import (
	"github.com/banks/treeborrows/pkg/diagnostics"
	"github.com/banks/treeborrows/pkg/locstate"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/rangemap"
	"github.com/banks/treeborrows/pkg/tag"
	"github.com/banks/treeborrows/pkg/tagmap"
)

// locSlice is the value type held by the tree's range-map: which nodes
// have a materialized LocationState at this run of bytes. A node absent
// from this map at a given offset has not yet been visited there and
// will be lazily materialized to NewUninit(node.defaultInitialPerm) on
// first visit.
type locSlice map[tag.NodeID]locstate.LocationState

// Tree is a single allocation's borrow tree: a rooted tree of tags, each
// carrying its own per-byte permission state. A Tree is owned
// exclusively by the allocation it tracks; every mutating method takes
// that ownership for its entire duration and is not safe to call
// concurrently with any other method on the same Tree.
type Tree struct {
	tags  *tagmap.TagMap
	nodes map[tag.NodeID]*node
	rperm *rangemap.RangeMap[locSlice]
	root  tag.NodeID

	allocID uint64
	size    int
}

// New returns a fresh borrow tree for an allocation of the given size,
// rooted at rootTag. The root starts out Active over its whole range, as
// the sole initial writer of a brand new allocation.
func New(rootTag tag.Tag, size int, allocID uint64) *Tree {
	tags := tagmap.New()
	rootID := tags.Insert(rootTag)

	t := &Tree{
		tags:    tags,
		nodes:   make(map[tag.NodeID]*node),
		rperm:   rangemap.New(size, locSlice{}),
		root:    rootID,
		allocID: allocID,
		size:    size,
	}
	t.nodes[rootID] = &node{
		id:                 rootID,
		tag:                rootTag,
		parent:             tag.InvalidNodeID,
		defaultInitialPerm: permission.NewDisabled(),
		debugInfo:          diagnostics.NewNodeInfo(rootTag),
	}
	if size > 0 {
		t.rperm.IterMutAll(func(_ rangemap.Range, v *locSlice) {
			*v = locSlice{rootID: locstate.NewInit(permission.NewActive())}
		})
	}
	return t
}

// NewChild registers a reborrow: a fresh tag parented under parentTag,
// with defaultInitialPerm as the permission any not-yet-visited offset
// under it should assume. For every offset in reborrowRange the child's
// location is eagerly materialized as already-initialized; offsets
// outside that range stay lazy.
//
// NewChild panics if newTag has already been registered in this tree or
// if parentTag has not: both are caller invariants, not data this tree
// can validate on the caller's behalf.
func (t *Tree) NewChild(parentTag, newTag tag.Tag, defaultInitialPerm permission.Permission, reborrowRange rangemap.Range) {
	parentID, ok := t.tags.Get(parentTag)
	if !ok {
		panic("treeborrows: NewChild of an unknown parent tag")
	}
	childID := t.tags.Insert(newTag)

	child := &node{
		id:                 childID,
		tag:                newTag,
		parent:             parentID,
		defaultInitialPerm: defaultInitialPerm,
		debugInfo:          diagnostics.NewNodeInfo(newTag),
	}
	t.nodes[childID] = child
	parent := t.nodes[parentID]
	parent.children = append(parent.children, childID)

	if reborrowRange.Len() <= 0 {
		return
	}
	t.rperm.IterMut(reborrowRange.Start, reborrowRange.Len(), func(_ rangemap.Range, v *locSlice) {
		if *v == nil {
			*v = locSlice{}
		}
		(*v)[childID] = locstate.NewInit(defaultInitialPerm)
	})
}

// NodeCount returns the number of live tags tracked by t, for tests and
// diagnostics.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// RootTag returns the tag of t's root.
func (t *Tree) RootTag() tag.Tag { return t.nodes[t.root].tag }

// VisitProvenance calls fn with the root's tag. External liveness
// analysis must never treat a tree's root as dead, regardless of whether
// any other code still references it.
func (t *Tree) VisitProvenance(fn func(tag.Tag)) {
	fn(t.nodes[t.root].tag)
}

// entryOrUninit returns the materialized LocationState for id within
// slice, lazily installing NewUninit(defaultInitialPerm) if id has never
// been visited in this slice before.
func (slice *locSlice) entryOrUninit(id tag.NodeID, defaultInitialPerm permission.Permission) locstate.LocationState {
	if *slice == nil {
		*slice = locSlice{}
	}
	ls, ok := (*slice)[id]
	if !ok {
		ls = locstate.NewUninit(defaultInitialPerm)
		(*slice)[id] = ls
	}
	return ls
}
