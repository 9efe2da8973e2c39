package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootSeedIsDeterministic(t *testing.T) {
	var hash [32]byte
	hash[0] = 7
	require.Equal(t, RootSeed(hash, "campaign-1"), RootSeed(hash, "campaign-1"))
	require.NotEqual(t, RootSeed(hash, "campaign-1"), RootSeed(hash, "campaign-2"))
}

func TestSplitSeedDivergesPerStage(t *testing.T) {
	root := RootSeed([32]byte{1}, "c")
	a := SplitSeed(root, "fracture/partition/0")
	b := SplitSeed(root, "fracture/partition/1")
	require.NotEqual(t, a, b)
	require.Equal(t, a, SplitSeed(root, "fracture/partition/0"))
}

func TestNewRandIsReproducible(t *testing.T) {
	seed := SplitSeed(RootSeed([32]byte{9}, "c"), "traversal/worker-0")
	r1 := NewRand(seed)
	r2 := NewRand(seed)
	for i := 0; i < 10; i++ {
		require.Equal(t, r1.Int63(), r2.Int63())
	}
}
