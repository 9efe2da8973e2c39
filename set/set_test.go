package set

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAddContainsRemove(t *testing.T) {
	s := Of("a", "b")
	require.True(t, s.Contains("a"))
	require.False(t, s.Contains("c"))
	s.Add("c")
	require.True(t, s.Contains("c"))
	s.Remove("a")
	require.False(t, s.Contains("a"))
	require.Equal(t, 2, s.Len())
}

func TestSetUnionIntersection(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(2, 3, 4)
	require.True(t, a.Union(b).Equals(Of(1, 2, 3, 4)))
	require.True(t, a.Intersection(b).Equals(Of(2, 3)))
	require.True(t, a.Overlaps(b))
	require.False(t, Of(1).Overlaps(Of(2)))
}

func TestSetSortedList(t *testing.T) {
	s := Of(3, 1, 2)
	got := SortedList(s, func(a, b int) bool { return a < b })
	require.Equal(t, []int{1, 2, 3}, got)
	require.True(t, sort.IntsAreSorted(got))
}

func TestSetJSONRoundTrip(t *testing.T) {
	s := Of("x", "y")
	data, err := s.MarshalJSON()
	require.NoError(t, err)
	var out Set[string]
	require.NoError(t, out.UnmarshalJSON(data))
	require.True(t, s.Equals(out))
}
