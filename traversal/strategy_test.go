package traversal

import (
	"math/rand"
	"testing"

	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func edges() []WeightedEdge {
	return []WeightedEdge{
		{Edge: spec.Edge{ID: "a"}, Weight: 1},
		{Edge: spec.Edge{ID: "b"}, Weight: 1},
	}
}

func TestPseudoRandomStrategyPicksAmongEligible(t *testing.T) {
	s := pseudoRandomStrategy{}
	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		e, ok := s.PickEdge(rng, edges())
		require.True(t, ok)
		seen[e.ID] = true
	}
	require.True(t, seen["a"] || seen["b"])
}

func TestTargetedStrategyFavorsSetEdge(t *testing.T) {
	s := newTargetedStrategy("b")
	rng := rand.New(rand.NewSource(2))
	counts := map[string]int{}
	for i := 0; i < 200; i++ {
		e, _ := s.PickEdge(rng, edges())
		counts[e.ID]++
	}
	require.Greater(t, counts["b"], counts["a"])
}

func TestInvestigationStrategyFavorsHotEdges(t *testing.T) {
	s := newInvestigationStrategy([]string{"a"})
	rng := rand.New(rand.NewSource(3))
	counts := map[string]int{}
	for i := 0; i < 200; i++ {
		e, _ := s.PickEdge(rng, edges())
		counts[e.ID]++
	}
	require.Greater(t, counts["a"], counts["b"])
}

func TestForceStrategyReplaysSequenceThenExhausts(t *testing.T) {
	s := newForceStrategy([]string{"b", "a"})
	rng := rand.New(rand.NewSource(4))

	e, ok := s.PickEdge(rng, edges())
	require.True(t, ok)
	require.Equal(t, "b", e.ID)

	e, ok = s.PickEdge(rng, edges())
	require.True(t, ok)
	require.Equal(t, "a", e.ID)

	require.True(t, s.Exhausted())
	_, ok = s.PickEdge(rng, edges())
	require.False(t, ok)
}

func TestStackFallsBackToBaseWhenEmpty(t *testing.T) {
	st := NewStack(2)
	require.Equal(t, StrategyPseudoRandom, st.Top().Kind())
}

func TestStackEvictsOldestOnOverflow(t *testing.T) {
	st := NewStack(1)
	st.PushTargeted("a")
	st.PushInvestigation([]string{"b"})
	require.Equal(t, StrategyInvestigation, st.Top().Kind())
}

func TestStackPopRemovesTop(t *testing.T) {
	st := NewStack(2)
	st.PushTargeted("a")
	require.Equal(t, StrategyTargeted, st.Top().Kind())
	st.Pop()
	require.Equal(t, StrategyPseudoRandom, st.Top().Kind())
}

func TestStackDropsExhaustedForceStrategy(t *testing.T) {
	st := NewStack(2)
	st.PushForce([]string{"a"})
	rng := rand.New(rand.NewSource(5))
	_, ok := st.Top().PickEdge(rng, edges())
	require.True(t, ok)
	require.Equal(t, StrategyPseudoRandom, st.Top().Kind(), "exhausted force strategy is dropped")
}
