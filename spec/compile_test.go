package spec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptrBool(b bool) *bool    { return &b }
func ptrInt(i int64) *int64   { return &i }

// minimalDocument returns a small but complete, compilable document
// modeling the §8 scenario 1 "document lifecycle" entities.
func minimalDocument() *Document {
	return &Document{
		Entities: map[string]EntityDecl{
			"User": {Fields: map[string]FieldDecl{
				"role":          {Kind: FieldEnum, Values: []string{"admin", "member", "guest"}},
				"authenticated": {Kind: FieldBool, Default: ptrBool(false)},
			}},
			"Document": {Fields: map[string]FieldDecl{
				"owner_id":   {Kind: FieldRef, RefEntity: "User"},
				"visibility": {Kind: FieldEnum, Values: []string{"private", "shared", "public"}},
				"deleted":    {Kind: FieldBool, Default: ptrBool(false)},
			}},
		},
		Refinements: map[string]RefinementDecl{},
		Functions:   map[string]FunctionDecl{},
		Protocols: map[string]ProtocolDecl{
			"main": {Root: ProtocolNode{
				Kind: NodeSeq,
				Seq: []ProtocolNode{
					{Kind: NodeCall, Action: "create_user"},
					{Kind: NodeCall, Action: "create_document"},
				},
			}},
		},
		Effects: map[string]EffectDecl{
			"create_user": {
				ActorEntity: "User",
				Creates:     &CreateClause{Entity: "User", As: "newUser"},
			},
			"create_document": {
				ActorEntity: "User",
				Creates:     &CreateClause{Entity: "Document", As: "newDoc"},
				Sets: []Assignment{
					{Target: "newDoc", Field: "visibility", Value: RawExpr{Kind: ExprField, Var: "actor", Field: "role"}},
				},
			},
		},
		Properties: map[string]PropertyDecl{
			"private_docs_owner_only": {
				Kind: PropertyInvariant,
				Predicate: RawExpr{
					Kind:     ExprOp,
					Operator: OpOr,
					Args: []RawExpr{
						{Kind: ExprLiteral, LitBool: ptrBool(true)},
					},
				},
			},
		},
		Generators: map[string]GeneratorDecl{},
		Exploration: ExplorationDecl{
			IterationBudget: 1000,
			EpochSize:       64,
		},
		Inputs: map[string]InputDomain{},
		Bindings: map[string]BindingDecl{
			"create_user":     {Export: "createUser", Mutates: true},
			"create_document": {Export: "createDocument", Mutates: true},
		},
	}
}

func TestCompileMinimalDocumentSucceeds(t *testing.T) {
	ir, err := Compile(minimalDocument())
	require.NoError(t, err)
	require.NotNil(t, ir)
	require.Contains(t, ir.Graphs, "main")
	require.Len(t, ir.Effects, 2)
}

func TestCompileRejectsDanglingEntityReference(t *testing.T) {
	doc := minimalDocument()
	doc.Entities["Document"].Fields["owner_id"] = FieldDecl{Kind: FieldRef, RefEntity: "Nope"}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dangling reference")
}

func TestCompileRejectsZeroWeightAlt(t *testing.T) {
	doc := minimalDocument()
	doc.Protocols["main"] = ProtocolDecl{Root: ProtocolNode{
		Kind: NodeAlt,
		Branches: []AltBranch{
			{ID: "a", Weight: 0, Body: ProtocolNode{Kind: NodeCall, Action: "create_user"}},
		},
	}}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-zero-weight")
}

func TestCompileRejectsInvalidRepeatBounds(t *testing.T) {
	doc := minimalDocument()
	body := ProtocolNode{Kind: NodeCall, Action: "create_user"}
	doc.Protocols["main"] = ProtocolDecl{Root: ProtocolNode{
		Kind: NodeRepeat,
		Min:  5,
		Max:  2,
		Body: &body,
	}}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid repeat bound")
}

func TestCompileRejectsActionMissingEffectAndBinding(t *testing.T) {
	doc := minimalDocument()
	doc.Protocols["main"] = ProtocolDecl{Root: ProtocolNode{Kind: NodeCall, Action: "ghost_action"}}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing effect")
	require.Contains(t, err.Error(), "missing binding")
}

func TestCompileRejectsProtocolRefCycle(t *testing.T) {
	doc := minimalDocument()
	doc.Protocols["a"] = ProtocolDecl{Root: ProtocolNode{Kind: NodeRef, Ref: "b"}}
	doc.Protocols["b"] = ProtocolDecl{Root: ProtocolNode{Kind: NodeRef, Ref: "a"}}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reference cycle")
}

func TestCompileRejectsNestingOverflow(t *testing.T) {
	doc := minimalDocument()
	expr := RawExpr{Kind: ExprLiteral, LitBool: ptrBool(true)}
	for i := 0; i < MaxExpressionDepth+2; i++ {
		expr = RawExpr{Kind: ExprOp, Operator: OpNot, Args: []RawExpr{expr}}
	}
	doc.Properties["deep"] = PropertyDecl{Kind: PropertyInvariant, Predicate: expr}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nesting")
}

func TestCompileRejectsOperatorTypeMismatch(t *testing.T) {
	doc := minimalDocument()
	doc.Properties["bad"] = PropertyDecl{
		Kind: PropertyInvariant,
		Predicate: RawExpr{
			Kind:     ExprOp,
			Operator: OpEq,
			Args: []RawExpr{
				{Kind: ExprLiteral, LitBool: ptrBool(true)},
				{Kind: ExprLiteral, LitInt: ptrInt(1)},
			},
		},
	}
	_, err := Compile(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "type mismatch")
}

func TestContentHashStableAndSensitive(t *testing.T) {
	doc := minimalDocument()
	ir1, err := Compile(doc)
	require.NoError(t, err)
	ir2, err := Compile(minimalDocument())
	require.NoError(t, err)
	require.Equal(t, ir1.ContentHash, ir2.ContentHash, "two compilations of the same document must hash equal")

	doc2 := minimalDocument()
	doc2.Exploration.IterationBudget = 9999
	ir3, err := Compile(doc2)
	require.NoError(t, err)
	require.NotEqual(t, ir1.ContentHash, ir3.ContentHash, "a semantic change must change the hash")
}
