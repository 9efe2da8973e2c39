package adapter

import (
	"context"
	"testing"

	"github.com/ajhcs/beacon/logging"
	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func testAdapterIR() *spec.CompiledIR {
	return &spec.CompiledIR{
		Effects: map[string]*spec.CompiledEffect{
			"create_document": {
				ActorEntity: "User",
				Creates:     &spec.CreateClause{Entity: "Document", As: "newDoc"},
			},
		},
		Properties: map[string]*spec.CompiledProperty{},
		Bindings: map[string]spec.BindingDecl{
			"create_document": {Export: "createDocument", Mutates: true},
		},
	}
}

func TestAdapterCallActionAppliesEffect(t *testing.T) {
	ir := testAdapterIR()
	kernel := model.NewKernel(ir, nil, 0)
	guest := NewFakeGuest()
	guest.Register("createDocument", Signature{ArgCount: 0, ReturnType: model.TBool}, func(state map[string]model.Value, args []model.Value) (Response, error) {
		return Response{Value: model.BoolValue(true)}, nil
	})

	a, err := New(ir, kernel, guest, 1000, logging.NewNop())
	require.NoError(t, err)

	actor := kernel.State.Create("User")
	result, err := a.CallAction(context.Background(), "create_document", actor, nil, 0)
	require.NoError(t, err)
	require.False(t, result.Entry.Aborted)
	require.NotEmpty(t, result.CreatedID)
}

func TestAdapterCallActionMarksTrapAsAborted(t *testing.T) {
	ir := testAdapterIR()
	kernel := model.NewKernel(ir, nil, 0)
	guest := NewFakeGuest()
	guest.Register("createDocument", Signature{ArgCount: 0, ReturnType: model.TBool}, func(state map[string]model.Value, args []model.Value) (Response, error) {
		return Response{Trap: "divide by zero"}, nil
	})

	a, err := New(ir, kernel, guest, 1000, logging.NewNop())
	require.NoError(t, err)

	actor := kernel.State.Create("User")
	result, err := a.CallAction(context.Background(), "create_document", actor, nil, 0)
	require.NoError(t, err)
	require.True(t, result.Entry.Aborted)
	require.Empty(t, result.CreatedID, "effect must not apply when the guest trapped")
}

func TestAdapterNewFailsOnMissingExport(t *testing.T) {
	ir := testAdapterIR()
	kernel := model.NewKernel(ir, nil, 0)
	guest := NewFakeGuest()
	_, err := New(ir, kernel, guest, 1000, logging.NewNop())
	require.Error(t, err)
}

func TestAdapterPairedSnapshotRestore(t *testing.T) {
	ir := testAdapterIR()
	kernel := model.NewKernel(ir, nil, 0)
	guest := NewFakeGuest()
	guest.Register("createDocument", Signature{ArgCount: 0, ReturnType: model.TBool}, func(state map[string]model.Value, args []model.Value) (Response, error) {
		state["calls"] = model.IntValue(state["calls"].I + 1)
		return Response{Value: model.BoolValue(true)}, nil
	})

	a, err := New(ir, kernel, guest, 1000, logging.NewNop())
	require.NoError(t, err)

	actor := kernel.State.Create("User")
	ctx := context.Background()
	_, err = a.CallAction(ctx, "create_document", actor, nil, 0)
	require.NoError(t, err)

	snap, err := a.Snapshot(ctx)
	require.NoError(t, err)

	_, err = a.CallAction(ctx, "create_document", actor, nil, 0)
	require.NoError(t, err)
	require.Len(t, kernel.State.Instances("Document"), 2)

	require.NoError(t, a.Restore(ctx, snap))
	require.Len(t, kernel.State.Instances("Document"), 1)
}
