package coordinator

import (
	"testing"

	"github.com/ajhcs/beacon/codec"
	"github.com/ajhcs/beacon/solver"
	"github.com/stretchr/testify/require"
)

func TestMemorySaveLoadRoundTrip(t *testing.T) {
	w := NewWeightTable(10, 100)
	w.Adjust("e1", "s1", 3)
	u := NewUnreachableTracker(w)
	u.Confirm("t1", "e2", "s2", []solver.Lit{5, -6}, true, true)

	mem := &Memory{Weights: w, Unreachable: u, HotRegions: map[string]int{"t1": 4}}
	var env codec.Envelope
	require.NoError(t, mem.Save(&env))

	encoded, err := codec.Encode(env)
	require.NoError(t, err)
	decodedEnv, err := codec.Decode(encoded)
	require.NoError(t, err)

	w2 := NewWeightTable(10, 100)
	u2 := NewUnreachableTracker(w2)
	mem2 := &Memory{Weights: w2, Unreachable: u2}
	require.NoError(t, mem2.Load(&decodedEnv))

	require.Equal(t, w.Snapshot().Weight("e1", "s1"), w2.Snapshot().Weight("e1", "s1"))
	require.True(t, u2.IsProven("t1"))
	require.Equal(t, 0.0, w2.Snapshot().Weight("e2", "s2"))
	require.Equal(t, 4, mem2.HotRegions["t1"])
}

func TestMemoryLoadIgnoresMissingSections(t *testing.T) {
	w := NewWeightTable(10, 100)
	u := NewUnreachableTracker(w)
	mem := &Memory{Weights: w, Unreachable: u}
	require.NoError(t, mem.Load(&codec.Envelope{}))
}
