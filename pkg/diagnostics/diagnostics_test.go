package diagnostics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banks/treeborrows/pkg/locstate"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/rangemap"
	"github.com/banks/treeborrows/pkg/tag"
)

func TestEventStringIncludesTransitionAndCause(t *testing.T) {
	ev := Event{
		Transition:  permission.Transition{From: permission.Reserved, To: permission.Active},
		IsForeign:   false,
		Cause:       Normal,
		AccessRange: rangemap.Range{Start: 0, End: 4},
		Range:       [2]int{0, 4},
	}
	s := ev.String()
	require.Contains(t, s, "Reserved -> Active")
	require.Contains(t, s, "child")
	require.Contains(t, s, "[0,4) of [0,4)")
}

func TestEventStringMarksForeignAccess(t *testing.T) {
	ev := Event{
		Transition:  permission.Transition{From: permission.Active, To: permission.Frozen},
		IsForeign:   true,
		Cause:       Dealloc,
		AccessRange: rangemap.Range{Start: 0, End: 8},
		Range:       [2]int{2, 6},
	}
	require.Contains(t, ev.String(), "foreign")
	require.Contains(t, ev.String(), "Dealloc")
	require.Contains(t, ev.String(), "[2,6) of [0,8)")
}

func TestFnExitCausePicksReadOrWrite(t *testing.T) {
	require.Equal(t, FnExitWrite, FnExitCause(permission.Write))
	require.Equal(t, FnExitRead, FnExitCause(permission.Read))
}

func TestNodeInfoLabelUsesNameWhenSet(t *testing.T) {
	n := NewNodeInfo(tag.Tag(7))
	require.Contains(t, n.label(), "tag=7")

	n.AddName("root")
	require.Contains(t, n.label(), "root")
	require.Contains(t, n.label(), "tag=7")
}

func TestNodeInfoPushAccumulatesHistory(t *testing.T) {
	n := NewNodeInfo(tag.Tag(1))
	require.Empty(t, n.History)

	n.Push(Event{Transition: permission.Transition{From: permission.Reserved, To: permission.Active}})
	n.Push(Event{Transition: permission.Transition{From: permission.Active, To: permission.Frozen}})
	require.Len(t, n.History, 2)
}

func TestAccessErrorWrapsInnerAndUnwraps(t *testing.T) {
	inner := &locstate.Error{Kind: locstate.ProtectedDisabled, Old: permission.Active}
	conflicting := NewNodeInfo(tag.Tag(2))
	conflicting.AddName("X")
	accessed := NewNodeInfo(tag.Tag(1))

	err := NewAccessError(inner, conflicting, accessed, FnExitWrite, 9, 3)
	require.Contains(t, err.Error(), "X(tag=2)")
	require.Contains(t, err.Error(), "alloc 9")
	require.Contains(t, err.Error(), "FnExit(Write)")

	var unwrapped *locstate.Error
	require.True(t, errors.As(error(err), &unwrapped))
	require.Same(t, inner, unwrapped)
}

func TestErrProtectedDeallocMessage(t *testing.T) {
	protected := NewNodeInfo(tag.Tag(4))
	protected.AddName("Y")
	err := &ErrProtectedDealloc{Protected: protected, AllocID: 2}
	require.Contains(t, err.Error(), "Y(tag=4)")
	require.Contains(t, err.Error(), "alloc 2")
}
