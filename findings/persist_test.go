package findings

import (
	"testing"

	"github.com/ajhcs/beacon/codec"
	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/model"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadCapsulesRoundTrip(t *testing.T) {
	s := New(nil)
	s.Record(1, coordinator.Signal{
		Kind:      coordinator.SignalPropertyViolation,
		Violation: &model.Violation{Property: "balance_nonneg"},
		Trail: []coordinator.ReplayStep{
			{Action: "deposit", ActorID: "acct-1", Input: []model.Value{model.IntValue(10)}},
			{Action: "withdraw", ActorID: "acct-1", Input: []model.Value{model.IntValue(50)}},
		},
	})

	env := codec.Envelope{Version: codec.CurrentVersion}
	require.NoError(t, s.SaveCapsules(&env))

	encoded, err := codec.Encode(env)
	require.NoError(t, err)
	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)

	capsules, kinds, properties, err := LoadRegressionCapsules(&decoded)
	require.NoError(t, err)
	require.Len(t, capsules, 1)
	require.Equal(t, KindViolation, kinds[0])
	require.Equal(t, "balance_nonneg", properties[0])
	require.Len(t, capsules[0].Steps, 2)
	require.Equal(t, "withdraw", capsules[0].Steps[1].Action)
	require.Equal(t, model.InstanceID("acct-1"), capsules[0].Steps[1].ActorID)
	require.Equal(t, int64(50), capsules[0].Steps[1].Input[0].I)
}

func TestLoadRegressionCapsulesToleratesMissingSection(t *testing.T) {
	env := codec.Envelope{Version: codec.CurrentVersion}
	capsules, kinds, properties, err := LoadRegressionCapsules(&env)
	require.NoError(t, err)
	require.Nil(t, capsules)
	require.Nil(t, kinds)
	require.Nil(t, properties)
}
