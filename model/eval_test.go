package model

import (
	"testing"

	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func fieldExpr(v, f string, t spec.ValueType) *spec.Expr {
	return &spec.Expr{Kind: spec.ExprField, ValType: t, Var: v, Field: f}
}

func litBool(b bool) *spec.Expr {
	return &spec.Expr{Kind: spec.ExprLiteral, ValType: spec.TBool, Lit: b}
}

func TestEvalFieldAndOp(t *testing.T) {
	s := NewState()
	id := s.Create("User")
	require.NoError(t, s.Set("User", id, "authenticated", BoolValue(true)))

	ev := NewEvaluator(s, &spec.CompiledIR{}, nil)
	frame := EmptyFrame.Child("actor", "User", id)

	expr := &spec.Expr{Kind: spec.ExprOp, ValType: spec.TBool, Op: spec.OpNot, Args: []*spec.Expr{
		fieldExpr("actor", "authenticated", spec.TBool),
	}}
	v, err := ev.Eval(expr, frame)
	require.NoError(t, err)
	require.False(t, v.B)
}

func TestEvalQuantifierForallAndExists(t *testing.T) {
	s := NewState()
	a := s.Create("User")
	b := s.Create("User")
	require.NoError(t, s.Set("User", a, "authenticated", BoolValue(true)))
	require.NoError(t, s.Set("User", b, "authenticated", BoolValue(false)))

	ev := NewEvaluator(s, &spec.CompiledIR{}, nil)

	forall := &spec.Expr{Kind: spec.ExprQuantifier, ValType: spec.TBool, Quant: spec.QuantForall, BoundVar: "u", DomainEntity: "User",
		Body: fieldExpr("u", "authenticated", spec.TBool)}
	v, err := ev.Eval(forall, EmptyFrame)
	require.NoError(t, err)
	require.False(t, v.B, "not every user is authenticated")

	exists := &spec.Expr{Kind: spec.ExprQuantifier, ValType: spec.TBool, Quant: spec.QuantExists, BoundVar: "u", DomainEntity: "User",
		Body: fieldExpr("u", "authenticated", spec.TBool)}
	v, err = ev.Eval(exists, EmptyFrame)
	require.NoError(t, err)
	require.True(t, v.B, "at least one user is authenticated")
}

func TestEvalDerivedFunctionCall(t *testing.T) {
	s := NewState()
	doc := s.Create("Document")
	user := s.Create("User")
	require.NoError(t, s.Set("Document", doc, "owner_id", RefValue(user)))
	require.NoError(t, s.Set("User", user, "authenticated", BoolValue(true)))

	isOwnerAuthenticated := &spec.CompiledFunction{
		Kind:       spec.FunctionDerived,
		Params:     []spec.ParamDecl{{Name: "owner", Entity: "User"}},
		ReturnType: spec.TBool,
		Body:       fieldExpr("owner", "authenticated", spec.TBool),
	}
	ir := &spec.CompiledIR{Functions: map[string]*spec.CompiledFunction{"ownerAuthenticated": isOwnerAuthenticated}}
	ev := NewEvaluator(s, ir, nil)

	call := &spec.Expr{Kind: spec.ExprCall, ValType: spec.TBool, FuncName: "ownerAuthenticated",
		CallArgs: []*spec.Expr{fieldExpr("d", "owner_id", spec.TRef)}}
	frame := EmptyFrame.Child("d", "Document", doc)

	v, err := ev.Eval(call, frame)
	require.NoError(t, err)
	require.True(t, v.B)
}

func TestEvalObserverCallInvokesGuestCallback(t *testing.T) {
	s := NewState()
	user := s.Create("User")

	observed := &spec.CompiledFunction{Kind: spec.FunctionObserver, ReturnType: spec.TBool, Binding: "guestIsActive"}
	ir := &spec.CompiledIR{Functions: map[string]*spec.CompiledFunction{"isActive": observed}}

	var called []Value
	obs := map[string]ObserverFunc{
		"guestIsActive": func(args []Value) (Value, error) {
			called = args
			return BoolValue(true), nil
		},
	}
	ev := NewEvaluator(s, ir, obs)

	call := &spec.Expr{Kind: spec.ExprCall, ValType: spec.TBool, FuncName: "isActive",
		CallArgs: []*spec.Expr{fieldExpr("actor", "self_ref", spec.TRef)}}
	// bind a field whose value is a ref to satisfy the call arg shape
	require.NoError(t, s.Set("User", user, "self_ref", RefValue(user)))
	frame := EmptyFrame.Child("actor", "User", user)

	v, err := ev.Eval(call, frame)
	require.NoError(t, err)
	require.True(t, v.B)
	require.Len(t, called, 1)
	require.Equal(t, user, called[0].Ref)
}

func TestEvalRefinementTest(t *testing.T) {
	s := NewState()
	user := s.Create("User")
	require.NoError(t, s.Set("User", user, "role", StringValue("admin")))

	isAdmin := &spec.CompiledRefinement{
		Base:      "User",
		Predicate: &spec.Expr{Kind: spec.ExprOp, ValType: spec.TBool, Op: spec.OpEq, Args: []*spec.Expr{
			fieldExpr("self", "role", spec.TString),
			{Kind: spec.ExprLiteral, ValType: spec.TString, Lit: "admin"},
		}},
	}
	ir := &spec.CompiledIR{Refinements: map[string]*spec.CompiledRefinement{"isAdmin": isAdmin}}
	ev := NewEvaluator(s, ir, nil)

	refTest := &spec.Expr{Kind: spec.ExprRefTest, ValType: spec.TBool, RefVar: "u", RefinementName: "isAdmin"}
	frame := EmptyFrame.Child("u", "User", user)

	v, err := ev.Eval(refTest, frame)
	require.NoError(t, err)
	require.True(t, v.B)
}
