package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateCreateSetGet(t *testing.T) {
	s := NewState()
	id := s.Create("User")
	require.NoError(t, s.Set("User", id, "role", StringValue("admin")))
	v, ok := s.Get("User", id, "role")
	require.True(t, ok)
	require.Equal(t, "admin", v.S)
}

func TestSetUnknownInstanceErrors(t *testing.T) {
	s := NewState()
	err := s.Set("User", InstanceID("ghost"), "role", StringValue("admin"))
	require.ErrorIs(t, err, ErrUnknownInstance)
}

func TestForkIsolatesMutations(t *testing.T) {
	s := NewState()
	id := s.Create("User")
	require.NoError(t, s.Set("User", id, "role", StringValue("member")))

	fork := s.Fork()
	require.NoError(t, fork.Set("User", id, "role", StringValue("admin")))

	orig, ok := s.Get("User", id, "role")
	require.True(t, ok)
	require.Equal(t, "member", orig.S, "mutating the fork must not affect the original state")

	forked, ok := fork.Get("User", id, "role")
	require.True(t, ok)
	require.Equal(t, "admin", forked.S)
}

func TestCreateProducesDeterministicIDsForIdenticalSequences(t *testing.T) {
	s1 := NewState()
	s2 := NewState()
	id1 := s1.Create("User")
	id2 := s2.Create("User")
	require.Equal(t, id1, id2, "identical create() sequences from fresh states must yield identical ids")
}

func TestStateHashStableAcrossEquivalentMutationOrder(t *testing.T) {
	s1 := NewState()
	id1 := s1.Create("User")
	require.NoError(t, s1.Set("User", id1, "role", StringValue("admin")))

	s2 := NewState()
	id2 := s2.Create("User")
	require.NoError(t, s2.Set("User", id2, "role", StringValue("admin")))

	require.Equal(t, StateHash(s1), StateHash(s2))

	require.NoError(t, s2.Set("User", id2, "role", StringValue("member")))
	require.NotEqual(t, StateHash(s1), StateHash(s2))
}
