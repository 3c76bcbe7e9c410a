package permission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banks/treeborrows/pkg/relatedness"
)

func TestChildAccessTable(t *testing.T) {
	cases := []struct {
		old     Permission
		kind    AccessKind
		wantTo  Permission
		wantOK  bool
		wantNop bool
	}{
		{Reserved, Read, Reserved, true, true},
		{Reserved, Write, Active, true, false},
		{Active, Read, Active, true, true},
		{Active, Write, Active, true, true},
		{Frozen, Read, Frozen, true, true},
		{Frozen, Write, 0, false, false},
		{Disabled, Read, 0, false, false},
		{Disabled, Write, 0, false, false},
	}
	for _, tc := range cases {
		tr, ok := PerformAccess(tc.kind, relatedness.This, tc.old, false)
		require.Equal(t, tc.wantOK, ok)
		if !ok {
			continue
		}
		require.Equal(t, tc.wantTo, tr.To)
		require.Equal(t, tc.wantNop, tr.IsNoop())
	}
}

func TestForeignAccessTable(t *testing.T) {
	cases := []struct {
		old    Permission
		kind   AccessKind
		wantTo Permission
	}{
		{Reserved, Read, Reserved},
		{Reserved, Write, Disabled},
		{Active, Read, Frozen},
		{Active, Write, Disabled},
		{Frozen, Read, Frozen},
		{Frozen, Write, Disabled},
		{Disabled, Read, Disabled},
		{Disabled, Write, Disabled},
	}
	for _, tc := range cases {
		tr, ok := PerformAccess(tc.kind, relatedness.DistantAccess, tc.old, false)
		require.True(t, ok)
		require.Equal(t, tc.wantTo, tr.To)
	}
}

// Idempotence law: foreign Read after foreign Write is a no-op, and any
// two identical consecutive foreign accesses are idempotent.
func TestForeignIdempotenceLaw(t *testing.T) {
	for _, old := range []Permission{Reserved, Active, Frozen, Disabled} {
		writeTr, ok := PerformAccess(Write, relatedness.AncestorAccess, old, false)
		require.True(t, ok)
		readAfterWrite, ok := PerformAccess(Read, relatedness.AncestorAccess, writeTr.To, false)
		require.True(t, ok)
		require.Equal(t, writeTr.To, readAfterWrite.To, "foreign read after foreign write must be a no-op")

		for _, kind := range []AccessKind{Read, Write} {
			first, ok := PerformAccess(kind, relatedness.DistantAccess, old, false)
			require.True(t, ok)
			second, ok := PerformAccess(kind, relatedness.DistantAccess, first.To, false)
			require.True(t, ok)
			require.Equal(t, first.To, second.To, "repeated identical foreign access must be idempotent")
		}
	}
}

func TestProducesDisabled(t *testing.T) {
	require.True(t, Transition{From: Active, To: Disabled}.ProducesDisabled())
	require.False(t, Transition{From: Disabled, To: Disabled}.ProducesDisabled())
	require.False(t, Transition{From: Reserved, To: Active}.ProducesDisabled())
}
