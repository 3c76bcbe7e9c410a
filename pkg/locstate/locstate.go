// Package locstate implements the per-(tag, byte) state machine that
// wraps a Permission with the bookkeeping the tree needs to decide
// whether a foreign access can be skipped and whether a protected tag is
// being disabled for the first time.
package locstate

import (
	"fmt"

	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/relatedness"
)

// ForeignAccess is the three-state memo of the most recent foreign access
// recorded against a location. It is deliberately not a count: the
// permission algebra guarantees any run of foreign accesses collapses to
// at most one canonical transition per access kind.
type ForeignAccess int

const (
	// NoForeignAccess means no foreign access has been recorded since the
	// last child access (or ever).
	NoForeignAccess ForeignAccess = iota
	// SomeForeignRead means the most recent foreign access was a read.
	SomeForeignRead
	// SomeForeignWrite means the most recent foreign access was a write.
	SomeForeignWrite
)

// Decision is the outcome of consulting the no-op skip memo before
// applying an access.
type Decision int

const (
	// Recurse means the access must be applied and the traversal must
	// continue into this node's children.
	Recurse Decision = iota
	// SkipChildren means the access is a known no-op at this node; the
	// traversal must not visit this node's descendants.
	SkipChildren
)

// Error is the error a failed PerformAccess returns. Kind distinguishes
// the two ways a location-level access can fail.
type Error struct {
	Kind Kind
	Old  permission.Permission
}

// Kind enumerates the ways a LocationState.PerformAccess can fail.
type Kind int

const (
	// ChildAccessForbidden means the permission algebra has no legal
	// transition for this child access: the tag has lost the right to
	// perform it.
	ChildAccessForbidden Kind = iota
	// ProtectedDisabled means the access would disable an initialized
	// location whose tag is currently protected.
	ProtectedDisabled
)

func (e *Error) Error() string {
	switch e.Kind {
	case ProtectedDisabled:
		return fmt.Sprintf("protected location would be disabled (was %s)", e.Old)
	default:
		return fmt.Sprintf("child access forbidden (was %s)", e.Old)
	}
}

// LocationState is the state a single tag holds for a single byte.
type LocationState struct {
	Permission          permission.Permission
	Initialized         bool
	LatestForeignAccess ForeignAccess
}

// NewUninit returns a lazily-materialized location state for a node that
// has not yet been visited at this offset. p must be the node's default
// initial permission, and must be IsInitial or IsDisabled: a location is
// never born Active except at the root, which is always constructed via
// NewInit instead.
func NewUninit(p permission.Permission) LocationState {
	if !p.IsInitial() && !p.IsDisabled() {
		panic("locstate: NewUninit requires an initial or disabled permission")
	}
	return LocationState{Permission: p, Initialized: false, LatestForeignAccess: NoForeignAccess}
}

// NewInit returns an eagerly-materialized, already-initialized location
// state, used for the root's whole range and for a new child's explicit
// reborrow range.
func NewInit(p permission.Permission) LocationState {
	return LocationState{Permission: p, Initialized: true, LatestForeignAccess: NoForeignAccess}
}

// SkipIfKnownNoop consults the no-op memo for a pending access of the
// given kind at the given relatedness, updating the memo as a side
// effect. Skipping a child access is never legal regardless of what this
// returns; callers must only honor SkipChildren for foreign accesses.
func (s *LocationState) SkipIfKnownNoop(kind permission.AccessKind, rel relatedness.Relatedness) Decision {
	if !rel.IsForeign() {
		s.LatestForeignAccess = NoForeignAccess
		return Recurse
	}
	switch {
	case kind == permission.Read && s.LatestForeignAccess == SomeForeignWrite:
		return SkipChildren
	case kind == permission.Read && s.LatestForeignAccess == SomeForeignRead:
		return SkipChildren
	case kind == permission.Write && s.LatestForeignAccess == SomeForeignWrite:
		return SkipChildren
	default:
		if kind == permission.Write {
			s.LatestForeignAccess = SomeForeignWrite
		} else {
			s.LatestForeignAccess = SomeForeignRead
		}
		return Recurse
	}
}

// PerformAccess applies an access of the given kind, at the given
// relatedness to the tag actually accessed, to this location. protected
// reports whether the owning tag is currently held by any protector.
func (s *LocationState) PerformAccess(kind permission.AccessKind, rel relatedness.Relatedness, protected bool) (permission.Transition, error) {
	old := s.Permission
	transition, ok := permission.PerformAccess(kind, rel, old, protected)
	if !ok {
		return permission.Transition{}, &Error{Kind: ChildAccessForbidden, Old: old}
	}
	if !rel.IsForeign() {
		s.Initialized = true
	}
	s.Permission = transition.Applied(old)
	if protected && s.Initialized && transition.ProducesDisabled() {
		return transition, &Error{Kind: ProtectedDisabled, Old: old}
	}
	return transition, nil
}
