package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightTableDefaultAndAdjust(t *testing.T) {
	w := NewWeightTable(10, 100)
	snap := w.Snapshot()
	require.Equal(t, defaultWeight, snap.Weight("e1", "s1"))

	w.Adjust("e1", "s1", 3)
	require.Equal(t, defaultWeight*3, w.Snapshot().Weight("e1", "s1"))
}

func TestWeightTableClampsToMax(t *testing.T) {
	w := NewWeightTable(10, 5)
	w.Adjust("e1", "s1", 100)
	require.Equal(t, 5.0, w.Snapshot().Weight("e1", "s1"))
}

func TestWeightTableSkipZeroesAndSticks(t *testing.T) {
	w := NewWeightTable(10, 100)
	w.Adjust("e1", "s1", 2)
	w.Skip("e1", "s1")
	require.Equal(t, 0.0, w.Snapshot().Weight("e1", "s1"))
	w.Decay(0.9)
	require.Equal(t, 0.0, w.Snapshot().Weight("e1", "s1"))
}

func TestWeightTableEvictsOldestOnCapacity(t *testing.T) {
	w := NewWeightTable(2, 100)
	w.Adjust("e1", "s1", 1)
	w.Adjust("e2", "s2", 1)
	w.Adjust("e3", "s3", 1) // evicts e1/s1, the least recently touched
	require.Equal(t, uint64(1), w.Evictions())
	snap := w.Snapshot()
	require.Equal(t, defaultWeight, snap.Weight("e1", "s1"), "evicted entries read back as default")
}

func TestWeightTableDecayAppliesToAllEntries(t *testing.T) {
	w := NewWeightTable(10, 100)
	w.Adjust("e1", "s1", 2)
	w.Adjust("e2", "s2", 4)
	w.Decay(0.5)
	snap := w.Snapshot()
	require.InDelta(t, defaultWeight, snap.Weight("e1", "s1"), 1e-9)
	require.InDelta(t, defaultWeight*2, snap.Weight("e2", "s2"), 1e-9)
}

func TestWeightTableRestoreBypassesMultiplication(t *testing.T) {
	w := NewWeightTable(10, 100)
	w.Restore("e1", "s1", 42)
	require.Equal(t, 42.0, w.Snapshot().Weight("e1", "s1"))
}
