package adapter

import (
	"testing"

	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func TestBuildDescriptors(t *testing.T) {
	ir := &spec.CompiledIR{
		Bindings: map[string]spec.BindingDecl{
			"create_document": {Export: "createDocument", Args: []string{"visibility"}, Mutates: true, Tags: []string{"write"}},
		},
	}
	descs := BuildDescriptors(ir)
	require.Contains(t, descs, "create_document")
	require.Equal(t, "createDocument", descs["create_document"].Export)
	require.True(t, descs["create_document"].Mutates)
}

func TestVerifyExportsRejectsMissingAndMismatched(t *testing.T) {
	guest := NewFakeGuest()
	guest.Register("createDocument", Signature{ArgCount: 2, ReturnType: model.TBool}, nil)

	descs := map[string]CallDescriptor{
		"create_document": {Action: "create_document", Export: "createDocument", ArgDomains: []string{"visibility"}, ReturnType: model.TBool},
		"delete_document": {Action: "delete_document", Export: "deleteDocument", ArgDomains: []string{"id"}, ReturnType: model.TBool},
	}
	err := VerifyExports(guest, descs)
	require.Error(t, err)
	require.Contains(t, err.Error(), "deleteDocument")
	require.Contains(t, err.Error(), "createDocument")
}

func TestVerifyExportsPassesForCompatibleGuest(t *testing.T) {
	guest := NewFakeGuest()
	guest.Register("createDocument", Signature{ArgCount: 1, ReturnType: model.TBool}, nil)

	descs := map[string]CallDescriptor{
		"create_document": {Action: "create_document", Export: "createDocument", ArgDomains: []string{"visibility"}, ReturnType: model.TBool},
	}
	require.NoError(t, VerifyExports(guest, descs))
}
