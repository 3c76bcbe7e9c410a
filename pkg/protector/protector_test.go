package protector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banks/treeborrows/pkg/tag"
)

func TestProtectAndRelease(t *testing.T) {
	require := require.New(t)
	r := New()

	r.Protect(tag.Tag(1), Strong)
	require.True(r.IsProtected(tag.Tag(1)))
	require.True(r.IsStrong(tag.Tag(1)))

	r.Release(tag.Tag(1))
	require.False(r.IsProtected(tag.Tag(1)))
}

func TestWeakIsNotStrong(t *testing.T) {
	require := require.New(t)
	r := New()
	r.Protect(tag.Tag(1), Weak)
	require.True(r.IsProtected(tag.Tag(1)))
	require.False(r.IsStrong(tag.Tag(1)))
}

func TestKind(t *testing.T) {
	require := require.New(t)
	r := New()
	_, ok := r.Kind(tag.Tag(1))
	require.False(ok)

	r.Protect(tag.Tag(1), Strong)
	k, ok := r.Kind(tag.Tag(1))
	require.True(ok)
	require.Equal(Strong, k)
}
