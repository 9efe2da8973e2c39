package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRollbackRoundtrip(t *testing.T) {
	store := NewSnapshotStore(0)
	s := NewState()
	id := s.Create("User")
	require.NoError(t, s.Set("User", id, "role", StringValue("member")))

	snap := store.Snapshot(s)
	require.NoError(t, s.Set("User", id, "role", StringValue("admin")))

	v, ok := s.Get("User", id, "role")
	require.True(t, ok)
	require.Equal(t, "admin", v.S)

	require.NoError(t, store.Rollback(s, snap))
	v, ok = s.Get("User", id, "role")
	require.True(t, ok)
	require.Equal(t, "member", v.S)
}

func TestRollbackUnknownSnapshotErrors(t *testing.T) {
	store := NewSnapshotStore(0)
	s := NewState()
	err := store.Rollback(s, SnapshotID("nope"))
	require.ErrorIs(t, err, ErrUnknownSnapshot)
}

func TestSnapshotStoreEvictsLRUExceptReferenced(t *testing.T) {
	store := NewSnapshotStore(2)
	s := NewState()

	first := store.Snapshot(s)
	store.Retain(first)
	store.Snapshot(s)
	store.Snapshot(s)
	store.Snapshot(s)

	require.LessOrEqual(t, store.Len(), 3, "retained snapshot must survive eviction pressure")
	require.NoError(t, store.Rollback(s, first), "retained snapshot must not have been evicted")
}
