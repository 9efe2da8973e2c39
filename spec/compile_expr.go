package spec

import "fmt"

// compileExpr type-checks raw against tc under frame, enforcing the
// nesting-depth ceiling and every rejection rule of §4.1. Errors are
// appended to errs rather than returned, so a caller compiling an entire
// document collects every problem in one pass (§7).
func compileExpr(tc *TypeContext, frame *Frame, raw RawExpr, depth int, errs *CompileErrors) *Expr {
	if depth > MaxExpressionDepth {
		*errs = append(*errs, fmt.Errorf("%w: depth %d", ErrNestingOverflow, depth))
		return nil
	}
	switch raw.Kind {
	case ExprLiteral:
		return compileLiteral(raw, errs)
	case ExprField:
		return compileFieldAccess(tc, frame, raw, errs)
	case ExprOp:
		return compileOp(tc, frame, raw, depth, errs)
	case ExprQuantifier:
		return compileQuantifier(tc, frame, raw, depth, errs)
	case ExprCall:
		return compileCall(tc, frame, raw, depth, errs)
	case ExprRefTest:
		return compileRefTest(tc, frame, raw, depth, errs)
	default:
		*errs = append(*errs, fmt.Errorf("%w: unknown expression kind %q", ErrUnknownOperator, raw.Kind))
		return nil
	}
}

func compileLiteral(raw RawExpr, errs *CompileErrors) *Expr {
	set := 0
	var e *Expr
	if raw.LitBool != nil {
		set++
		e = &Expr{Kind: ExprLiteral, ValType: TBool, Lit: *raw.LitBool}
	}
	if raw.LitInt != nil {
		set++
		e = &Expr{Kind: ExprLiteral, ValType: TInt, Lit: *raw.LitInt}
	}
	if raw.LitString != nil {
		set++
		e = &Expr{Kind: ExprLiteral, ValType: TString, Lit: *raw.LitString}
	}
	if set != 1 {
		*errs = append(*errs, fmt.Errorf("%w: literal must set exactly one of litBool/litInt/litString, got %d", ErrTypeMismatch, set))
		return nil
	}
	return e
}

func compileFieldAccess(tc *TypeContext, frame *Frame, raw RawExpr, errs *CompileErrors) *Expr {
	entity, ok := frame.Lookup(raw.Var)
	if !ok {
		*errs = append(*errs, fmt.Errorf("%w: variable %q not bound", ErrDanglingReference, raw.Var))
		return nil
	}
	field, ok := tc.FieldType(entity, raw.Field)
	if !ok {
		*errs = append(*errs, fmt.Errorf("%w: field %q on entity %q", ErrDanglingReference, raw.Field, entity))
		return nil
	}
	return &Expr{Kind: ExprField, ValType: ValueTypeOf(field.Kind), Var: raw.Var, Field: raw.Field}
}

func compileOp(tc *TypeContext, frame *Frame, raw RawExpr, depth int, errs *CompileErrors) *Expr {
	args := make([]*Expr, 0, len(raw.Args))
	ok := true
	for _, a := range raw.Args {
		ce := compileExpr(tc, frame, a, depth+1, errs)
		if ce == nil {
			ok = false
			continue
		}
		args = append(args, ce)
	}
	switch raw.Operator {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		if len(raw.Args) != 2 {
			*errs = append(*errs, fmt.Errorf("%w: %s wants 2 args, got %d", ErrArityMismatch, raw.Operator, len(raw.Args)))
			return nil
		}
		if ok && args[0].ValType != args[1].ValType {
			*errs = append(*errs, fmt.Errorf("%w: %s operand types %s vs %s", ErrTypeMismatch, raw.Operator, args[0].ValType, args[1].ValType))
		}
	case OpNot:
		if len(raw.Args) != 1 {
			*errs = append(*errs, fmt.Errorf("%w: not wants 1 arg, got %d", ErrArityMismatch, len(raw.Args)))
			return nil
		}
		if ok && args[0].ValType != TBool {
			*errs = append(*errs, fmt.Errorf("%w: not operand must be bool, got %s", ErrTypeMismatch, args[0].ValType))
		}
	case OpAnd, OpOr:
		if len(raw.Args) < 1 {
			*errs = append(*errs, fmt.Errorf("%w: %s wants at least 1 arg, got 0", ErrArityMismatch, raw.Operator))
			return nil
		}
		if ok {
			for _, a := range args {
				if a.ValType != TBool {
					*errs = append(*errs, fmt.Errorf("%w: %s operand must be bool, got %s", ErrTypeMismatch, raw.Operator, a.ValType))
				}
			}
		}
	case OpImplies:
		if len(raw.Args) != 2 {
			*errs = append(*errs, fmt.Errorf("%w: implies wants 2 args, got %d", ErrArityMismatch, len(raw.Args)))
			return nil
		}
		if ok && (args[0].ValType != TBool || args[1].ValType != TBool) {
			*errs = append(*errs, fmt.Errorf("%w: implies operands must be bool", ErrTypeMismatch))
		}
	default:
		*errs = append(*errs, fmt.Errorf("%w: %q", ErrUnknownOperator, raw.Operator))
		return nil
	}
	if !ok {
		return nil
	}
	valType := TBool
	return &Expr{Kind: ExprOp, ValType: valType, Op: raw.Operator, Args: args}
}

func compileQuantifier(tc *TypeContext, frame *Frame, raw RawExpr, depth int, errs *CompileErrors) *Expr {
	if !tc.EntityExists(raw.Domain) {
		*errs = append(*errs, fmt.Errorf("%w: quantifier domain entity %q", ErrDanglingReference, raw.Domain))
		return nil
	}
	child, err := frame.Child(raw.Bound, raw.Domain)
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}
	if raw.Body == nil {
		*errs = append(*errs, fmt.Errorf("%w: quantifier missing body", ErrArityMismatch))
		return nil
	}
	body := compileExpr(tc, child, *raw.Body, depth+1, errs)
	if body == nil {
		return nil
	}
	if body.ValType != TBool {
		*errs = append(*errs, fmt.Errorf("%w: quantifier body must be bool, got %s", ErrTypeMismatch, body.ValType))
		return nil
	}
	return &Expr{Kind: ExprQuantifier, ValType: TBool, Quant: raw.Quant, BoundVar: raw.Bound, DomainEntity: raw.Domain, Body: body}
}

func compileCall(tc *TypeContext, frame *Frame, raw RawExpr, depth int, errs *CompileErrors) *Expr {
	fn, ok := tc.FunctionSignature(raw.Function)
	if !ok {
		*errs = append(*errs, fmt.Errorf("%w: function %q", ErrDanglingReference, raw.Function))
		return nil
	}
	if len(raw.CallArgs) != len(fn.Params) {
		*errs = append(*errs, fmt.Errorf("%w: function %q wants %d args, got %d", ErrArityMismatch, raw.Function, len(fn.Params), len(raw.CallArgs)))
		return nil
	}
	args := make([]*Expr, 0, len(raw.CallArgs))
	allOK := true
	for _, a := range raw.CallArgs {
		ce := compileExpr(tc, frame, a, depth+1, errs)
		if ce == nil {
			allOK = false
			continue
		}
		args = append(args, ce)
	}
	if !allOK {
		return nil
	}
	return &Expr{Kind: ExprCall, ValType: ValueTypeOf(fn.ReturnType), FuncKind: fn.Kind, FuncName: raw.Function, CallArgs: args}
}

func compileRefTest(tc *TypeContext, frame *Frame, raw RawExpr, depth int, errs *CompileErrors) *Expr {
	entity, ok := frame.Lookup(raw.RefVar)
	if !ok {
		*errs = append(*errs, fmt.Errorf("%w: variable %q not bound", ErrDanglingReference, raw.RefVar))
		return nil
	}
	ref, ok := tc.RefinementSignature(raw.Refinement)
	if !ok {
		*errs = append(*errs, fmt.Errorf("%w: refinement %q", ErrDanglingReference, raw.Refinement))
		return nil
	}
	if ref.Base != entity {
		*errs = append(*errs, fmt.Errorf("%w: refinement %q is over %q, got %q", ErrTypeMismatch, raw.Refinement, ref.Base, entity))
		return nil
	}
	if len(raw.ParamBindings) != len(ref.Params) {
		*errs = append(*errs, fmt.Errorf("%w: refinement %q wants %d params, got %d", ErrArityMismatch, raw.Refinement, len(ref.Params), len(raw.ParamBindings)))
		return nil
	}
	bindings := make(map[string]*Expr, len(raw.ParamBindings))
	allOK := true
	for _, p := range ref.Params {
		paramRaw, present := raw.ParamBindings[p]
		if !present {
			*errs = append(*errs, fmt.Errorf("%w: refinement %q missing param %q", ErrArityMismatch, raw.Refinement, p))
			allOK = false
			continue
		}
		ce := compileExpr(tc, frame, paramRaw, depth+1, errs)
		if ce == nil {
			allOK = false
			continue
		}
		bindings[p] = ce
	}
	if !allOK {
		return nil
	}
	return &Expr{Kind: ExprRefTest, ValType: TBool, RefVar: raw.RefVar, RefinementName: raw.Refinement, ParamBindings: bindings}
}
