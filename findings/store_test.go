package findings

import (
	"testing"

	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/model"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordsOnlyFindingKindSignals(t *testing.T) {
	s := New(nil)
	s.Record(1, coordinator.Signal{Kind: coordinator.SignalCoverageDelta, Target: "t"})
	s.Record(1, coordinator.Signal{Kind: coordinator.SignalGuardFailure})
	s.Record(1, coordinator.Signal{Kind: coordinator.SignalPropertyViolation, Violation: &model.Violation{Property: "p1", Message: "bad"}})
	s.Record(2, coordinator.Signal{Kind: coordinator.SignalCrash})

	items, next := s.Query(0)
	require.Len(t, items, 2)
	require.Equal(t, KindViolation, items[0].Kind)
	require.Equal(t, "p1", items[0].Property)
	require.Equal(t, KindCrash, items[1].Kind)
	require.Equal(t, next, items[1].Seq)
	require.Equal(t, 2, s.Count())
}

func TestStoreQueryReturnsOnlyNewerThanCursor(t *testing.T) {
	s := New(nil)
	s.Record(1, coordinator.Signal{Kind: coordinator.SignalTimeout})
	s.Record(1, coordinator.Signal{Kind: coordinator.SignalCrash})
	items, next := s.Query(0)
	require.Len(t, items, 2)

	more, next2 := s.Query(next)
	require.Empty(t, more)
	require.Equal(t, next, next2)

	s.Record(2, coordinator.Signal{Kind: coordinator.SignalTimeout})
	more, next3 := s.Query(next)
	require.Len(t, more, 1)
	require.Greater(t, next3, next)
}

func TestMarkStaleForObserverSwapOnlyAffectsTaggedBinding(t *testing.T) {
	s := New(nil)
	s.Record(1, coordinator.Signal{Kind: coordinator.SignalDiscrepancy, Message: "mismatch"})
	items, _ := s.Query(0)
	require.Len(t, items, 1)
	s.TagObserverBinding(items[0].ID, "guestBalance")

	s.Record(1, coordinator.Signal{Kind: coordinator.SignalDiscrepancy, Message: "other"})
	all, _ := s.Query(0)
	s.TagObserverBinding(all[1].ID, "guestOther")

	s.MarkStaleForObserverSwap("guestBalance")
	after, _ := s.Query(0)
	require.True(t, after[0].Stale)
	require.False(t, after[1].Stale)
}
