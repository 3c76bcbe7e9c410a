// Package diagnostics implements the structured error and event types the
// borrow tree uses to report Undefined Behavior and to keep an audit
// trail of every non-trivial permission transition. Nothing here is a
// bare string: every error carries the debug context a caller needs to
// render a useful diagnostic, and satisfies errors.As.
package diagnostics

import (
	"fmt"

	"github.com/banks/treeborrows/pkg/locstate"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/rangemap"
	"github.com/banks/treeborrows/pkg/relatedness"
	"github.com/banks/treeborrows/pkg/tag"
)

// AccessCause names why an access happened, for history and error
// rendering.
type AccessCause int

const (
	// Normal is an explicit caller-issued read or write.
	Normal AccessCause = iota
	// Dealloc is the full-range write an allocation's deallocation
	// performs before checking for strong protectors.
	Dealloc
	// FnExitRead is the implicit read a released protector triggers when
	// the location it protects is not currently Active.
	FnExitRead
	// FnExitWrite is the implicit write a released protector triggers
	// when the location it protects is currently Active.
	FnExitWrite
)

func (c AccessCause) String() string {
	switch c {
	case Dealloc:
		return "Dealloc"
	case FnExitRead:
		return "FnExit(Read)"
	case FnExitWrite:
		return "FnExit(Write)"
	default:
		return "Normal"
	}
}

// FnExitCause returns the FnExit cause corresponding to kind.
func FnExitCause(kind permission.AccessKind) AccessCause {
	if kind == permission.Write {
		return FnExitWrite
	}
	return FnExitRead
}

// Event is one non-no-op permission transition recorded in a node's
// history, used both to satisfy the history-fidelity invariant in tests
// and to render each node's history in Tree.Dump output. AccessRange is the full range
// the caller originally requested; Range is the maximal offset-slice
// within it that this particular transition applies to, which can be a
// strict sub-range of AccessRange whenever the access straddles a
// boundary the range-map has already split on.
type Event struct {
	Transition  permission.Transition
	IsForeign   bool
	Cause       AccessCause
	AccessRange rangemap.Range
	Range       [2]int
}

func (e Event) String() string {
	foreign := "child"
	if e.IsForeign {
		foreign = "foreign"
	}
	return fmt.Sprintf(
		"[%d,%d) of [%d,%d) %s %s: %s -> %s",
		e.Range[0], e.Range[1], e.AccessRange.Start, e.AccessRange.End,
		foreign, e.Cause, e.Transition.From, e.Transition.To,
	)
}

// NodeInfo carries the human-facing identity of a tree node: its tag, an
// optional name assigned by the caller, and its accumulated history.
type NodeInfo struct {
	Tag     tag.Tag
	Name    string
	History []Event
}

// NewNodeInfo returns a NodeInfo for a freshly created node.
func NewNodeInfo(t tag.Tag) *NodeInfo {
	return &NodeInfo{Tag: t}
}

// AddName attaches a human-readable name to this node, used by the CLI
// when a scenario gives its tags names.
func (n *NodeInfo) AddName(name string) {
	n.Name = name
}

func (n *NodeInfo) label() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(tag=%d)", n.Name, n.Tag)
	}
	return fmt.Sprintf("tag=%d", n.Tag)
}

// Push appends ev to this node's history.
func (n *NodeInfo) Push(ev Event) {
	n.History = append(n.History, ev)
}

// AccessError is returned when a traversal callback rejects an access.
// It wraps the low-level locstate.Error with the debug context of both
// the node the error actually occurred at (Conflicting) and the node the
// access was originally issued through (Accessed).
type AccessError struct {
	Inner       *locstate.Error
	Conflicting *NodeInfo
	Accessed    *NodeInfo
	Cause       AccessCause
	AllocID     uint64
	Offset      int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf(
		"undefined behavior: %s, accessing %s (alloc %d, offset %d) via %s, cause %s",
		e.Inner.Error(), e.Conflicting.label(), e.AllocID, e.Offset, e.Accessed.label(), e.Cause,
	)
}

// Unwrap exposes the inner locstate.Error so callers can errors.As down
// to the concrete failure kind.
func (e *AccessError) Unwrap() error { return e.Inner }

// NewAccessError wraps a location-state error with traversal context.
func NewAccessError(inner *locstate.Error, conflicting, accessed *NodeInfo, cause AccessCause, allocID uint64, offset int) *AccessError {
	return &AccessError{Inner: inner, Conflicting: conflicting, Accessed: accessed, Cause: cause, AllocID: allocID, Offset: offset}
}

// ErrProtectedDealloc is returned when a deallocation finds a strong
// protector anywhere in the allocation.
type ErrProtectedDealloc struct {
	Protected *NodeInfo
	AllocID   uint64
}

func (e *ErrProtectedDealloc) Error() string {
	return fmt.Sprintf("deallocation forbidden: %s is held by a strong protector (alloc %d)", e.Protected.label(), e.AllocID)
}

// RelatednessLabel renders a relatedness value for log lines without
// importing the relatedness package into callers that only need strings.
func RelatednessLabel(r relatedness.Relatedness) string { return r.String() }
