// Package tagmap implements the dense bidirectional Tag<->NodeID index
// the borrow tree uses to give externally-supplied tags compact internal
// identities, generalizing the teacher's own integer node-id scheme
// (nodeHeader.id) from a single tree-local counter into a full
// two-way lookup.
package tagmap

import "github.com/banks/treeborrows/pkg/tag"

// TagMap is a bidirectional map between Tag and NodeID.
type TagMap struct {
	byTag  map[tag.Tag]tag.NodeID
	byNode map[tag.NodeID]tag.Tag
	next   tag.NodeID
}

// New returns an empty TagMap.
func New() *TagMap {
	return &TagMap{
		byTag:  make(map[tag.Tag]tag.NodeID),
		byNode: make(map[tag.NodeID]tag.Tag),
	}
}

// Insert allocates a fresh NodeID for t and records the mapping. It
// panics if t is already present; Tree.NewChild calls it without checking
// Contains first and relies on this panic for its own documented
// caller-invariant panic contract.
func (m *TagMap) Insert(t tag.Tag) tag.NodeID {
	if _, ok := m.byTag[t]; ok {
		panic("tagmap: tag already present")
	}
	id := m.next
	m.next++
	m.byTag[t] = id
	m.byNode[id] = t
	return id
}

// Get returns the NodeID for t, if any.
func (m *TagMap) Get(t tag.Tag) (tag.NodeID, bool) {
	id, ok := m.byTag[t]
	return id, ok
}

// Contains reports whether t has been inserted.
func (m *TagMap) Contains(t tag.Tag) bool {
	_, ok := m.byTag[t]
	return ok
}

// TagOf returns the tag that was assigned id, if any.
func (m *TagMap) TagOf(id tag.NodeID) (tag.Tag, bool) {
	t, ok := m.byNode[id]
	return t, ok
}

// Remove deletes t (and its NodeID) from the map.
func (m *TagMap) Remove(t tag.Tag) {
	id, ok := m.byTag[t]
	if !ok {
		return
	}
	delete(m.byTag, t)
	delete(m.byNode, id)
}

// Len returns the number of tags currently tracked.
func (m *TagMap) Len() int { return len(m.byTag) }
