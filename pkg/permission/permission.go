// Package permission implements the concrete Tree-Borrows style
// permission lattice consumed by the borrow tree's location state
// machine. The tree treats this package as an external collaborator: it
// uses only the predicates, the NewDisabled/NewActive constructors,
// PerformAccess and the resulting Transition.
package permission

import "github.com/banks/treeborrows/pkg/relatedness"

// Permission is the state a single tag holds over a single byte of an
// allocation.
type Permission int

const (
	// Reserved is the permission a freshly reborrowed tag starts with: it
	// may still be promoted to a full writer on its first child write.
	Reserved Permission = iota
	// Active is held by the current exclusive writer.
	Active
	// Frozen is shared read-only access.
	Frozen
	// Disabled is permanently dead for this tag; any further child
	// access through it is forbidden.
	Disabled
)

func (p Permission) String() string {
	switch p {
	case Reserved:
		return "Reserved"
	case Active:
		return "Active"
	case Frozen:
		return "Frozen"
	case Disabled:
		return "Disabled"
	default:
		return "Permission(?)"
	}
}

// IsInitial reports whether p is the permission a node is born with
// before any access has been recorded against it.
func (p Permission) IsInitial() bool { return p == Reserved }

// IsDisabled reports whether p is the terminal dead state.
func (p Permission) IsDisabled() bool { return p == Disabled }

// IsActive reports whether p is the current exclusive-writer state.
func (p Permission) IsActive() bool { return p == Active }

// NewDisabled returns Disabled, the default initial permission the tree
// gives its root node. A child's default is whatever NewChild is given.
func NewDisabled() Permission { return Disabled }

// NewActive returns the permission the allocation's root itself starts
// with: the root always begins as the sole writer.
func NewActive() Permission { return Active }

// AccessKind distinguishes a read from a write for the purposes of the
// permission transition table.
type AccessKind int

const (
	// Read is a load.
	Read AccessKind = iota
	// Write is a store.
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "Write"
	}
	return "Read"
}

// Transition records a single permission change: the state before and
// after applying an access.
type Transition struct {
	From Permission
	To   Permission
}

// Applied returns the resulting permission. old must equal t.From; it is
// accepted as a parameter only to mirror the external contract named by
// the tree engine (Applied(old) -> Permission) rather than requiring
// callers to destructure the transition themselves.
func (t Transition) Applied(old Permission) Permission {
	return t.To
}

// IsNoop reports whether this transition left the permission unchanged.
func (t Transition) IsNoop() bool { return t.From == t.To }

// ProducesDisabled reports whether this transition moved a location into
// Disabled from some other state. A transition that was already Disabled
// on both sides does not "produce" Disabled; it was already there.
func (t Transition) ProducesDisabled() bool {
	return t.To == Disabled && t.From != Disabled
}

// childTable[old] gives the result of a child (This or StrictChildAccess)
// access, indexed by AccessKind.
var childTable = [...][2]Permission{
	Reserved: {Read: Reserved, Write: Active},
	Active:   {Read: Active, Write: Active},
	Frozen:   {Read: Frozen, Write: Disabled},
	Disabled: {Read: Disabled, Write: Disabled},
}

// foreignTable[old] gives the result of a foreign (AncestorAccess or
// DistantAccess) access, indexed by AccessKind.
var foreignTable = [...][2]Permission{
	Reserved: {Read: Reserved, Write: Disabled},
	Active:   {Read: Frozen, Write: Disabled},
	Frozen:   {Read: Frozen, Write: Disabled},
	Disabled: {Read: Disabled, Write: Disabled},
}

// forbiddenChild reports whether a child access of the given kind is
// outright rejected by the algebra rather than merely transitioning the
// state. A child write through a Frozen or Disabled location, or a child
// read through Disabled, has no legal outcome: the caller has a stale
// tag and the access is Undefined Behavior.
func forbiddenChild(old Permission, kind AccessKind) bool {
	switch old {
	case Disabled:
		return true
	case Frozen:
		return kind == Write
	default:
		return false
	}
}

// PerformAccess computes the transition that applying an access of the
// given kind, at the given relatedness to the accessed tag, would cause
// to a location currently holding old. protected indicates whether the
// owning tag is registered with either protector kind; it does not by
// itself change the table below (the owner of PerformAccess, not this
// function, is responsible for rejecting a transition into Disabled on a
// protected, already-initialized location via ProducesDisabled). The
// second return value is false iff the access must be rejected outright
// as ChildAccessForbidden.
func PerformAccess(kind AccessKind, rel relatedness.Relatedness, old Permission, protected bool) (Transition, bool) {
	if rel.IsForeign() {
		return Transition{From: old, To: foreignTable[old][kind]}, true
	}
	if forbiddenChild(old, kind) {
		return Transition{}, false
	}
	return Transition{From: old, To: childTable[old][kind]}, true
}
