package model

import (
	"fmt"
	"sort"

	"github.com/ajhcs/beacon/spec"
)

// ObserverFunc queries the guest for an observer function's value,
// given its positional reference arguments (§4.1 "function call tagged
// ... observer").
type ObserverFunc func(args []Value) (Value, error)

// Evaluator evaluates compiled expressions against a State and a runtime
// Frame (§4.3 `eval(predicate, frame)`).
type Evaluator struct {
	State       *State
	Functions   map[string]*spec.CompiledFunction
	refinements map[string]*spec.CompiledRefinement
	Observers   map[string]ObserverFunc
}

// NewEvaluator returns an Evaluator over state, resolving derived
// function bodies, refinement predicates, and observer calls from ir
// and obs respectively.
func NewEvaluator(state *State, ir *spec.CompiledIR, obs map[string]ObserverFunc) *Evaluator {
	return &Evaluator{State: state, Functions: ir.Functions, refinements: ir.Refinements, Observers: obs}
}

// Eval evaluates e under frame, returning its runtime value.
func (ev *Evaluator) Eval(e *spec.Expr, frame *Frame) (Value, error) {
	switch e.Kind {
	case spec.ExprLiteral:
		return ev.evalLiteral(e)
	case spec.ExprField:
		return ev.evalField(e, frame)
	case spec.ExprOp:
		return ev.evalOp(e, frame)
	case spec.ExprQuantifier:
		return ev.evalQuantifier(e, frame)
	case spec.ExprCall:
		return ev.evalCall(e, frame)
	case spec.ExprRefTest:
		return ev.evalRefTest(e, frame)
	default:
		return Value{}, fmt.Errorf("model: unknown expression kind %q", e.Kind)
	}
}

func (ev *Evaluator) evalLiteral(e *spec.Expr) (Value, error) {
	switch e.ValType {
	case spec.TBool:
		return BoolValue(e.Lit.(bool)), nil
	case spec.TInt:
		return IntValue(e.Lit.(int64)), nil
	case spec.TString:
		return StringValue(e.Lit.(string)), nil
	default:
		return Value{}, fmt.Errorf("model: literal of unsupported type %s", e.ValType)
	}
}

func (ev *Evaluator) evalField(e *spec.Expr, frame *Frame) (Value, error) {
	b, ok := frame.Lookup(e.Var)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnboundVariable, e.Var)
	}
	v, ok := ev.State.Get(b.Entity, b.ID, e.Field)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s/%s.%s", ErrUnknownInstance, b.Entity, b.ID, e.Field)
	}
	return v, nil
}

func (ev *Evaluator) evalOp(e *spec.Expr, frame *Frame) (Value, error) {
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.Eval(a, frame)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	switch e.Op {
	case spec.OpEq:
		return BoolValue(args[0].Equal(args[1])), nil
	case spec.OpNeq:
		return BoolValue(!args[0].Equal(args[1])), nil
	case spec.OpLt:
		return BoolValue(args[0].Compare(args[1]) < 0), nil
	case spec.OpLte:
		return BoolValue(args[0].Compare(args[1]) <= 0), nil
	case spec.OpGt:
		return BoolValue(args[0].Compare(args[1]) > 0), nil
	case spec.OpGte:
		return BoolValue(args[0].Compare(args[1]) >= 0), nil
	case spec.OpNot:
		return BoolValue(!args[0].B), nil
	case spec.OpAnd:
		for _, a := range args {
			if !a.B {
				return BoolValue(false), nil
			}
		}
		return BoolValue(true), nil
	case spec.OpOr:
		for _, a := range args {
			if a.B {
				return BoolValue(true), nil
			}
		}
		return BoolValue(false), nil
	case spec.OpImplies:
		return BoolValue(!args[0].B || args[1].B), nil
	default:
		return Value{}, fmt.Errorf("model: unknown operator %q", e.Op)
	}
}

// sortedInstances returns state's instances of entityType in a
// deterministic order, since quantifier evaluation order must be
// reproducible for identical campaign seeds even though State's
// backing map iteration order is not (§4.5 RNG discipline).
func sortedInstances(s *State, entityType string) []InstanceID {
	ids := s.Instances(entityType)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (ev *Evaluator) evalQuantifier(e *spec.Expr, frame *Frame) (Value, error) {
	wantAll := e.Quant == spec.QuantForall
	for _, id := range sortedInstances(ev.State, e.DomainEntity) {
		child := frame.Child(e.BoundVar, e.DomainEntity, id)
		v, err := ev.Eval(e.Body, child)
		if err != nil {
			return Value{}, err
		}
		if wantAll && !v.B {
			return BoolValue(false), nil
		}
		if !wantAll && v.B {
			return BoolValue(true), nil
		}
	}
	return BoolValue(wantAll), nil
}

func (ev *Evaluator) evalCall(e *spec.Expr, frame *Frame) (Value, error) {
	fn, ok := ev.Functions[e.FuncName]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownFunction, e.FuncName)
	}
	args := make([]Value, len(e.CallArgs))
	for i, a := range e.CallArgs {
		v, err := ev.Eval(a, frame)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	switch fn.Kind {
	case spec.FunctionDerived:
		child := frame
		for i, p := range fn.Params {
			child = child.Child(p.Name, p.Entity, args[i].Ref)
		}
		return ev.Eval(fn.Body, child)
	case spec.FunctionObserver:
		obs, ok := ev.Observers[fn.Binding]
		if !ok {
			return Value{}, fmt.Errorf("%w: binding %q", ErrObserverRequired, fn.Binding)
		}
		return obs(args)
	default:
		return Value{}, fmt.Errorf("model: function %q has unknown kind", e.FuncName)
	}
}

func (ev *Evaluator) evalRefTest(e *spec.Expr, frame *Frame) (Value, error) {
	b, ok := frame.Lookup(e.RefVar)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnboundVariable, e.RefVar)
	}
	ref, ok := ev.refinements[e.RefinementName]
	if !ok {
		return Value{}, fmt.Errorf("model: unknown refinement %q", e.RefinementName)
	}
	child := EmptyFrame.Child("self", b.Entity, b.ID)
	for name, paramExpr := range e.ParamBindings {
		v, err := ev.Eval(paramExpr, frame)
		if err != nil {
			return Value{}, err
		}
		child = child.Child(name, ref.Base, v.Ref)
	}
	return ev.Eval(ref.Predicate, child)
}
