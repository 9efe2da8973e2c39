package coordinator

import (
	"testing"

	"github.com/ajhcs/beacon/solver"
	"github.com/stretchr/testify/require"
)

func TestConfirmRequiresBothStaticAndSolverAgreement(t *testing.T) {
	w := NewWeightTable(10, 100)
	u := NewUnreachableTracker(w)

	require.False(t, u.Confirm("t", "e", "s", nil, true, false))
	require.False(t, u.Confirm("t", "e", "s", nil, false, true))
	require.False(t, u.IsProven("t"))

	require.True(t, u.Confirm("t", "e", "s", []solver.Lit{1, -2}, true, true))
	require.True(t, u.IsProven("t"))
	require.Equal(t, 0.0, w.Snapshot().Weight("e", "s"))
}

func TestConfirmIsIdempotent(t *testing.T) {
	w := NewWeightTable(10, 100)
	u := NewUnreachableTracker(w)
	u.Confirm("t", "e", "s", nil, true, true)
	u.Confirm("t", "e", "s", nil, true, true)
	require.Len(t, u.Proofs(), 1)
}

func TestRestoreReappliesSkip(t *testing.T) {
	w := NewWeightTable(10, 100)
	u := NewUnreachableTracker(w)
	u.restore([]unreachableProof{{Target: "t", EdgeID: "e", StateID: "s"}})
	require.True(t, u.IsProven("t"))
	require.Equal(t, 0.0, w.Snapshot().Weight("e", "s"))
}
