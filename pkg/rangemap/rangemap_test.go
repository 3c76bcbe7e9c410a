package rangemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(m *RangeMap[int]) []Slice[int] {
	var out []Slice[int]
	m.IterMutAll(func(r Range, v *int) {
		out = append(out, Slice[int]{Range: r, Value: *v})
	})
	return out
}

func TestNewCoversWholeRangeWithInitial(t *testing.T) {
	require := require.New(t)
	m := New(8, 42)
	got := collect(m)
	require.Len(got, 1)
	require.Equal(Range{0, 8}, got[0].Range)
	require.Equal(42, got[0].Value)
}

func TestIterMutSplitsAtBoundaries(t *testing.T) {
	require := require.New(t)
	m := New(8, 0)

	m.IterMut(2, 3, func(_ Range, v *int) { *v = 9 })

	got := collect(m)
	require.Len(got, 3)
	require.Equal(Range{0, 2}, got[0].Range)
	require.Equal(0, got[0].Value)
	require.Equal(Range{2, 5}, got[1].Range)
	require.Equal(9, got[1].Value)
	require.Equal(Range{5, 8}, got[2].Range)
	require.Equal(0, got[2].Value)
}

func TestIterMutClampsToSize(t *testing.T) {
	require := require.New(t)
	m := New(4, 0)
	var touched []Range
	m.IterMut(2, 10, func(r Range, v *int) { touched = append(touched, r) })
	require.Equal([]Range{{2, 4}}, touched)
}

func TestGetOutOfBounds(t *testing.T) {
	require := require.New(t)
	m := New(4, 1)
	require.Nil(m.Get(-1))
	require.Nil(m.Get(4))
	require.NotNil(m.Get(0))
}

func TestMergeAdjacentThorough(t *testing.T) {
	require := require.New(t)
	m := New(8, 0)
	m.IterMut(0, 4, func(_ Range, v *int) { *v = 5 })
	m.IterMut(4, 4, func(_ Range, v *int) { *v = 5 })

	require.Len(collect(m), 2, "equal neighbours are not merged until asked")

	m.MergeAdjacentThorough(func(a, b int) bool { return a == b })
	got := collect(m)
	require.Len(got, 1)
	require.Equal(Range{0, 8}, got[0].Range)
}

func TestMergeAdjacentThoroughLeavesUnequalSlicesAlone(t *testing.T) {
	require := require.New(t)
	m := New(8, 0)
	m.IterMut(4, 4, func(_ Range, v *int) { *v = 1 })

	m.MergeAdjacentThorough(func(a, b int) bool { return a == b })
	require.Len(collect(m), 2)
}
