package model

import (
	"testing"

	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func TestTemporalBeforeViolation(t *testing.T) {
	s := NewState()
	user := s.Create("User")
	// authenticated defaults to unset/false

	props := map[string]*spec.CompiledProperty{
		"must_authenticate_before_write": {
			Kind: spec.PropertyTemporal,
			Temporal: &spec.CompiledTemporal{
				Op:        spec.TemporalBefore,
				Trigger:   "write_document",
				Condition: fieldExpr("actor", "authenticated", spec.TBool),
			},
		},
	}
	checker := NewTemporalChecker(props)
	ev := NewEvaluator(s, &spec.CompiledIR{}, nil)

	entry := TraceEntry{Action: "write_document", Actor: user, Step: 1}
	violations, err := checker.CheckAppend(ev, ev, entry)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Equal(t, ViolationTemporalBefore, violations[0].Kind)
}

func TestTemporalBeforeSkipsAbortedEntries(t *testing.T) {
	s := NewState()
	user := s.Create("User")
	props := map[string]*spec.CompiledProperty{
		"rule": {
			Kind: spec.PropertyTemporal,
			Temporal: &spec.CompiledTemporal{
				Op: spec.TemporalBefore, Trigger: "write_document",
				Condition: fieldExpr("actor", "authenticated", spec.TBool),
			},
		},
	}
	checker := NewTemporalChecker(props)
	ev := NewEvaluator(s, &spec.CompiledIR{}, nil)
	entry := TraceEntry{Action: "write_document", Actor: user, Step: 1, Aborted: true}
	violations, err := checker.CheckAppend(ev, ev, entry)
	require.NoError(t, err)
	require.Empty(t, violations)
}

func TestTemporalAfterViolationOnceTriggered(t *testing.T) {
	s := NewState()
	user := s.Create("User")
	require.NoError(t, s.Set("User", user, "authenticated", BoolValue(false)))

	props := map[string]*spec.CompiledProperty{
		"stays_authenticated": {
			Kind: spec.PropertyTemporal,
			Temporal: &spec.CompiledTemporal{
				Op: spec.TemporalAfter, Action: "login",
				Consequence: fieldExpr("actor", "authenticated", spec.TBool),
			},
		},
	}
	checker := NewTemporalChecker(props)
	ev := NewEvaluator(s, &spec.CompiledIR{}, nil)

	loginEntry := TraceEntry{Action: "login", Actor: user, Step: 1}
	violations, err := checker.CheckAppend(ev, ev, loginEntry)
	require.NoError(t, err)
	require.Len(t, violations, 1, "consequence is false right after the triggering action too")

	require.NoError(t, s.Set("User", user, "authenticated", BoolValue(true)))
	okEntry := TraceEntry{Action: "noop", Actor: user, Step: 2}
	violations, err = checker.CheckAppend(ev, ev, okEntry)
	require.NoError(t, err)
	require.Empty(t, violations)
}

func TestTemporalNeverFiresOnOccurrence(t *testing.T) {
	s := NewState()
	user := s.Create("User")
	props := map[string]*spec.CompiledProperty{
		"no_delete_after_archive": {
			Kind: spec.PropertyTemporal,
			Temporal: &spec.CompiledTemporal{
				Op: spec.TemporalNever, NeverAction: "delete_document",
				Scope: spec.Scope{Same: "entity"},
			},
		},
	}
	checker := NewTemporalChecker(props)
	ev := NewEvaluator(s, &spec.CompiledIR{}, nil)

	entry := TraceEntry{Action: "delete_document", Actor: user, Step: 1}
	violations, err := checker.CheckAppend(ev, ev, entry)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Equal(t, ViolationTemporalNever, violations[0].Kind)
}
