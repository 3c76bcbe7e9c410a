package locstate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/relatedness"
)

func TestNewUninitRejectsActive(t *testing.T) {
	require.Panics(t, func() { NewUninit(permission.Active) })
}

func TestNewUninitInvariantL1(t *testing.T) {
	for _, p := range []permission.Permission{permission.Reserved, permission.Disabled} {
		ls := NewUninit(p)
		require.False(t, ls.Initialized)
		require.Equal(t, NoForeignAccess, ls.LatestForeignAccess)
		require.Equal(t, p, ls.Permission)
	}
}

func TestPerformAccessInitializesOnlyOnChildAccess(t *testing.T) {
	require := require.New(t)

	ls := NewUninit(permission.Reserved)
	_, err := ls.PerformAccess(permission.Read, relatedness.DistantAccess, false)
	require.NoError(err)
	require.False(ls.Initialized, "foreign access must not initialize")

	ls2 := NewUninit(permission.Reserved)
	_, err = ls2.PerformAccess(permission.Read, relatedness.This, false)
	require.NoError(err)
	require.True(ls2.Initialized, "child access must initialize")
}

func TestPerformAccessChildAccessForbidden(t *testing.T) {
	ls := NewInit(permission.Disabled)
	_, err := ls.PerformAccess(permission.Read, relatedness.This, false)
	require.Error(t, err)
	var lsErr *Error
	require.ErrorAs(t, err, &lsErr)
	require.Equal(t, ChildAccessForbidden, lsErr.Kind)
}

func TestPerformAccessProtectedDisabledOnlyWhenInitialized(t *testing.T) {
	require := require.New(t)

	// Uninitialized: a latent transition toward Disabled is legal even
	// when protected.
	ls := NewUninit(permission.Reserved)
	_, err := ls.PerformAccess(permission.Write, relatedness.DistantAccess, true)
	require.NoError(err)
	require.Equal(permission.Disabled, ls.Permission)

	// Initialized: the same transition is now UB.
	ls2 := NewInit(permission.Reserved)
	_, err = ls2.PerformAccess(permission.Write, relatedness.DistantAccess, true)
	require.Error(err)
	var lsErr *Error
	require.ErrorAs(err, &lsErr)
	require.Equal(ProtectedDisabled, lsErr.Kind)
}

func TestSkipIfKnownNoopChildAlwaysRecursesAndResetsMemo(t *testing.T) {
	require := require.New(t)
	ls := NewInit(permission.Active)
	ls.LatestForeignAccess = SomeForeignWrite

	decision := ls.SkipIfKnownNoop(permission.Read, relatedness.This)
	require.Equal(Recurse, decision)
	require.Equal(NoForeignAccess, ls.LatestForeignAccess)
}

func TestSkipIfKnownNoopForeignReadAfterForeignWriteSkips(t *testing.T) {
	require := require.New(t)
	ls := NewInit(permission.Active)

	d := ls.SkipIfKnownNoop(permission.Write, relatedness.AncestorAccess)
	require.Equal(Recurse, d)
	require.Equal(SomeForeignWrite, ls.LatestForeignAccess)

	d = ls.SkipIfKnownNoop(permission.Read, relatedness.AncestorAccess)
	require.Equal(SkipChildren, d)
}

func TestSkipIfKnownNoopIdempotentSameKindSkips(t *testing.T) {
	require := require.New(t)
	ls := NewInit(permission.Active)

	d := ls.SkipIfKnownNoop(permission.Read, relatedness.DistantAccess)
	require.Equal(Recurse, d)

	d = ls.SkipIfKnownNoop(permission.Read, relatedness.DistantAccess)
	require.Equal(SkipChildren, d)
}

func TestSkipIfKnownNoopForeignWriteAfterForeignReadDoesNotSkip(t *testing.T) {
	require := require.New(t)
	ls := NewInit(permission.Active)

	d := ls.SkipIfKnownNoop(permission.Read, relatedness.DistantAccess)
	require.Equal(Recurse, d)

	d = ls.SkipIfKnownNoop(permission.Write, relatedness.DistantAccess)
	require.Equal(Recurse, d, "foreign write after foreign read is not a known no-op")
}
