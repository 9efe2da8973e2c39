package solver

import (
	"fmt"

	"github.com/ajhcs/beacon/spec"
)

// localComparisonOps mirrors spec's unexported comparisonOps set; kept
// local since the compiler package does not export it and a domain
// constraint only ever reaches this package as an already-compiled
// *spec.Expr, never as a spec.Operator the caller chooses itself.
var localComparisonOps = map[spec.Operator]bool{
	spec.OpEq: true, spec.OpNeq: true,
	spec.OpLt: true, spec.OpLte: true,
	spec.OpGt: true, spec.OpGte: true,
}

// encodeExpr Tseitin-encodes a compiled domain-constraint predicate
// (§4.5 "Predicates over domain variables are translated to CNF") into
// a single literal whose truth equals the predicate's truth. Domain
// constraints are scoped to a single pseudo-frame binding the domain's
// own value (spec.compileInputDomains), so the only expression shapes
// that can appear are literals, the domain's own field reference, and
// boolean connectives/comparisons over them — no entity exists yet to
// quantify over or call an observer against.
func encodeExpr(f *Formula, enc *DomainEncoding, e *spec.Expr) (Lit, error) {
	switch e.Kind {
	case spec.ExprLiteral:
		b, ok := e.Lit.(bool)
		if !ok {
			return 0, fmt.Errorf("%w: non-boolean literal in predicate position", ErrUnsupportedValue)
		}
		if b {
			return f.True, nil
		}
		return f.True.Neg(), nil
	case spec.ExprField:
		if enc.Kind != DomainBool {
			return 0, fmt.Errorf("%w: bare field reference only valid for bool domains", ErrUnsupportedValue)
		}
		return enc.Bool, nil
	case spec.ExprOp:
		if localComparisonOps[e.Op] {
			return encodeComparison(f, enc, e.Op, e.Args)
		}
		switch e.Op {
		case spec.OpNot:
			child, err := encodeExpr(f, enc, e.Args[0])
			if err != nil {
				return 0, err
			}
			return f.Not(child), nil
		case spec.OpAnd:
			return foldEncode(f, enc, e.Args, f.And, f.True)
		case spec.OpOr:
			return foldEncode(f, enc, e.Args, f.Or, f.True.Neg())
		case spec.OpImplies:
			if len(e.Args) != 2 {
				return 0, fmt.Errorf("%w: implies needs exactly two arguments", ErrUnsupportedValue)
			}
			a, err := encodeExpr(f, enc, e.Args[0])
			if err != nil {
				return 0, err
			}
			b, err := encodeExpr(f, enc, e.Args[1])
			if err != nil {
				return 0, err
			}
			return f.Implies(a, b), nil
		default:
			return 0, fmt.Errorf("%w: operator %q", ErrUnsupportedValue, e.Op)
		}
	default:
		return 0, fmt.Errorf("%w: expression kind %q has no boolean encoding in a domain constraint", ErrUnsupportedValue, e.Kind)
	}
}

func foldEncode(f *Formula, enc *DomainEncoding, args []*spec.Expr, gate func(a, b Lit) Lit, identity Lit) (Lit, error) {
	if len(args) == 0 {
		return identity, nil
	}
	acc, err := encodeExpr(f, enc, args[0])
	if err != nil {
		return 0, err
	}
	for _, a := range args[1:] {
		l, err := encodeExpr(f, enc, a)
		if err != nil {
			return 0, err
		}
		acc = gate(acc, l)
	}
	return acc, nil
}

// encodeComparison encodes a two-argument comparison between the
// domain's own field value and a literal (either operand order).
func encodeComparison(f *Formula, enc *DomainEncoding, op spec.Operator, args []*spec.Expr) (Lit, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("%w: comparison needs exactly two arguments", ErrUnsupportedValue)
	}
	fieldExpr, litExpr := args[0], args[1]
	if fieldExpr.Kind != spec.ExprField {
		fieldExpr, litExpr = args[1], args[0]
	}
	if fieldExpr.Kind != spec.ExprField || litExpr.Kind != spec.ExprLiteral {
		return 0, fmt.Errorf("%w: domain comparison must be the domain value against a literal", ErrUnsupportedValue)
	}

	switch enc.Kind {
	case DomainBool:
		lit, ok := litExpr.Lit.(bool)
		if !ok {
			return 0, fmt.Errorf("%w: bool domain compared to non-bool literal", ErrUnsupportedValue)
		}
		target := enc.Bool
		if !lit {
			target = target.Neg()
		}
		switch op {
		case spec.OpEq:
			return target, nil
		case spec.OpNeq:
			return target.Neg(), nil
		}
	case DomainEnum:
		lit, ok := litExpr.Lit.(string)
		if !ok {
			return 0, fmt.Errorf("%w: enum domain compared to non-string literal", ErrUnsupportedValue)
		}
		l, ok := enc.EnumLits[lit]
		if !ok {
			return 0, fmt.Errorf("%w: enum value %q not declared", ErrUnsupportedValue, lit)
		}
		switch op {
		case spec.OpEq:
			return l, nil
		case spec.OpNeq:
			return l.Neg(), nil
		}
	case DomainInt:
		lit, ok := litExpr.Lit.(int64)
		if !ok {
			return 0, fmt.Errorf("%w: int domain compared to non-int literal", ErrUnsupportedValue)
		}
		bits := constBits(f, lit-enc.Min, len(enc.IntBits))
		gt, eq := compareBits(f, enc.IntBits, bits)
		switch op {
		case spec.OpEq:
			return eq, nil
		case spec.OpNeq:
			return f.Not(eq), nil
		case spec.OpGt:
			return gt, nil
		case spec.OpGte:
			return f.Or(gt, eq), nil
		case spec.OpLt:
			return f.Not(f.Or(gt, eq)), nil
		case spec.OpLte:
			return f.Not(gt), nil
		}
	}
	return 0, fmt.Errorf("%w: operator %q not valid on domain kind %q", ErrUnsupportedValue, op, enc.Kind)
}
