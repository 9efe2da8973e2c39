package spec

import "fmt"

// ErrEffectValueShape is returned when an effect assignment's right-hand
// side is neither a literal nor a field lookup (§3: "whose right-hand
// side is a literal or a field lookup").
var ErrEffectValueShape = fmt.Errorf("effect assignment value must be a literal or a field lookup")

// CompiledAssignment is one type-checked `sets` entry of an effect.
// Target is the bound frame variable ("actor" or the `creates` as-name)
// receiving the write.
type CompiledAssignment struct {
	Target string
	Field  string
	Value  *Expr
}

// CompiledEffect is the type-checked effect of one action (§3, §4.3).
type CompiledEffect struct {
	ActorEntity string
	Creates     *CreateClause
	Sets        []CompiledAssignment
}

// CompiledTemporal is the type-checked form of a TemporalRule.
type CompiledTemporal struct {
	Op TemporalOp

	Trigger   string
	Condition *Expr

	Action      string
	Consequence *Expr

	NeverAction string
	Scope       Scope
}

// CompiledProperty is the type-checked form of a PropertyDecl.
type CompiledProperty struct {
	Kind      PropertyKind
	Predicate *Expr
	Temporal  *CompiledTemporal
}

// CompiledRefinement is the type-checked form of a RefinementDecl. Every
// parameter (and "self") is bound to Base's entity type, matching how
// the base spec's refinement frame is built (§3: "a base entity plus an
// optional parameter list").
type CompiledRefinement struct {
	Base      string
	Params    []string
	Predicate *Expr
}

// CompiledFunction is the type-checked form of a FunctionDecl. Body is
// populated for FunctionDerived and nil for FunctionObserver, whose
// value instead comes from invoking Binding against the guest at
// evaluation time.
type CompiledFunction struct {
	Kind       FunctionKind
	Params     []ParamDecl
	ReturnType ValueType
	Body       *Expr
	Binding    string
}

// CompiledInputDomain is the type-checked form of an InputDomain, with
// constraints compiled against the domain's own pseudo-entity frame.
type CompiledInputDomain struct {
	Kind        InputDomainKind
	Values      []string
	Min, Max    int64
	Constraints []*Expr
}

// CompiledIR is the output of Compile: type-checked predicates plus a
// traversable NDA graph per protocol (§4.2).
type CompiledIR struct {
	Document    *Document
	TypeContext *TypeContext
	Graphs      map[string]*Graph
	Refinements map[string]*CompiledRefinement
	Functions   map[string]*CompiledFunction
	Effects     map[string]*CompiledEffect
	Properties  map[string]*CompiledProperty
	Generators  map[string]GeneratorDecl
	Inputs      map[string]*CompiledInputDomain
	Bindings    map[string]BindingDecl
	Exploration ExplorationDecl
	ContentHash [32]byte
}

// Compile lowers doc into a CompiledIR, collecting every structural and
// type error across the document into a single CompileErrors (§7); it
// never stops at the first problem found.
func Compile(doc *Document) (*CompiledIR, error) {
	var errs CompileErrors
	tc := NewTypeContext(doc)

	validateEntities(doc, &errs)
	refinements := compileRefinements(doc, tc, &errs)
	functions := compileFunctions(doc, tc, &errs)

	graphs := make(map[string]*Graph, len(doc.Protocols))
	for name := range doc.Protocols {
		g := lowerProtocol(doc, tc, name, &errs)
		if g != nil {
			graphs[name] = g
		}
	}

	effects := compileEffects(doc, tc, &errs)
	properties := compileProperties(doc, tc, &errs)
	inputs := compileInputDomains(doc, tc, &errs)

	validateActionCoverage(graphs, doc.Effects, doc.Bindings, &errs)

	ir := &CompiledIR{
		Document:    doc,
		TypeContext: tc,
		Graphs:      graphs,
		Refinements: refinements,
		Functions:   functions,
		Effects:     effects,
		Properties:  properties,
		Generators:  doc.Generators,
		Inputs:      inputs,
		Bindings:    doc.Bindings,
		Exploration: doc.Exploration,
	}

	validateGenerators(doc, &errs)

	if err := errs.AsError(); err != nil {
		return nil, err
	}

	ir.ContentHash = computeContentHash(doc)
	return ir, nil
}

func validateEntities(doc *Document, errs *CompileErrors) {
	for name, e := range doc.Entities {
		for fname, f := range e.Fields {
			switch f.Kind {
			case FieldEnum:
				if len(f.Values) == 0 {
					*errs = append(*errs, fmt.Errorf("%w: entity %q field %q: enum needs at least one value", ErrTypeMismatch, name, fname))
				}
			case FieldInt:
				if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
					*errs = append(*errs, fmt.Errorf("%w: entity %q field %q: min %d > max %d", ErrInvalidRepeatBound, name, fname, *f.Min, *f.Max))
				}
			case FieldRef:
				if !doc.hasEntity(f.RefEntity) {
					*errs = append(*errs, fmt.Errorf("%w: entity %q field %q refers to entity %q", ErrDanglingReference, name, fname, f.RefEntity))
				}
			case FieldString, FieldBool:
				// no structural constraint beyond the kind itself.
			default:
				*errs = append(*errs, fmt.Errorf("%w: entity %q field %q: unknown field kind %q", ErrTypeMismatch, name, fname, f.Kind))
			}
		}
	}
}

func (doc *Document) hasEntity(name string) bool {
	_, ok := doc.Entities[name]
	return ok
}

func compileRefinements(doc *Document, tc *TypeContext, errs *CompileErrors) map[string]*CompiledRefinement {
	out := make(map[string]*CompiledRefinement, len(doc.Refinements))
	for name, r := range doc.Refinements {
		if !doc.hasEntity(r.Base) {
			*errs = append(*errs, fmt.Errorf("%w: refinement %q base entity %q", ErrDanglingReference, name, r.Base))
			continue
		}
		frame, err := EmptyFrame.Child("self", r.Base)
		if err != nil {
			*errs = append(*errs, err)
			continue
		}
		for _, p := range r.Params {
			frame, err = frame.Child(p, r.Base)
			if err != nil {
				*errs = append(*errs, err)
			}
		}
		body := compileExpr(tc, frame, r.Predicate, 1, errs)
		if body != nil && body.ValType != TBool {
			*errs = append(*errs, fmt.Errorf("%w: refinement %q predicate must be bool", ErrTypeMismatch, name))
		}
		out[name] = &CompiledRefinement{Base: r.Base, Params: r.Params, Predicate: body}
	}
	return out
}

func compileFunctions(doc *Document, tc *TypeContext, errs *CompileErrors) map[string]*CompiledFunction {
	out := make(map[string]*CompiledFunction, len(doc.Functions))
	for name, fn := range doc.Functions {
		frame := EmptyFrame
		var err error
		for _, p := range fn.Params {
			frame, err = frame.Child(p.Name, p.Entity)
			if err != nil {
				*errs = append(*errs, err)
			}
		}
		cf := &CompiledFunction{Kind: fn.Kind, Params: fn.Params, ReturnType: ValueTypeOf(fn.ReturnType)}
		switch fn.Kind {
		case FunctionDerived:
			body := compileExpr(tc, frame, fn.Body, 1, errs)
			if body != nil && body.ValType != ValueTypeOf(fn.ReturnType) {
				*errs = append(*errs, fmt.Errorf("%w: derived function %q body type %s != declared %s", ErrTypeMismatch, name, body.ValType, ValueTypeOf(fn.ReturnType)))
			}
			cf.Body = body
		case FunctionObserver:
			if fn.Binding == "" {
				*errs = append(*errs, fmt.Errorf("%w: observer function %q missing binding name", ErrMissingBinding, name))
			}
			cf.Binding = fn.Binding
		default:
			*errs = append(*errs, fmt.Errorf("%w: function %q unknown kind %q", ErrTypeMismatch, name, fn.Kind))
			continue
		}
		out[name] = cf
	}
	return out
}

func compileEffects(doc *Document, tc *TypeContext, errs *CompileErrors) map[string]*CompiledEffect {
	out := make(map[string]*CompiledEffect, len(doc.Effects))
	for action, eff := range doc.Effects {
		frame, err := EmptyFrame.Child("actor", eff.ActorEntity)
		if err != nil {
			*errs = append(*errs, err)
			continue
		}
		if eff.ActorEntity != "" && !doc.hasEntity(eff.ActorEntity) {
			*errs = append(*errs, fmt.Errorf("%w: action %q actor entity %q", ErrDanglingReference, action, eff.ActorEntity))
			continue
		}
		var creates *CreateClause
		if eff.Creates != nil {
			if !doc.hasEntity(eff.Creates.Entity) {
				*errs = append(*errs, fmt.Errorf("%w: action %q creates entity %q", ErrDanglingReference, action, eff.Creates.Entity))
			} else {
				frame, err = frame.Child(eff.Creates.As, eff.Creates.Entity)
				if err != nil {
					*errs = append(*errs, err)
				}
			}
			creates = eff.Creates
		}
		sets := make([]CompiledAssignment, 0, len(eff.Sets))
		for _, a := range eff.Sets {
			if a.Value.Kind != ExprLiteral && a.Value.Kind != ExprField {
				*errs = append(*errs, fmt.Errorf("%w: action %q field %q", ErrEffectValueShape, action, a.Field))
				continue
			}
			targetEntity, ok := frame.Lookup(a.Target)
			if !ok {
				*errs = append(*errs, fmt.Errorf("%w: action %q assignment target %q not bound", ErrDanglingReference, action, a.Target))
				continue
			}
			fd, ok := tc.FieldType(targetEntity, a.Field)
			if !ok {
				*errs = append(*errs, fmt.Errorf("%w: action %q target %q has no field %q", ErrDanglingReference, action, a.Target, a.Field))
				continue
			}
			v := compileExpr(tc, frame, a.Value, 1, errs)
			if v == nil {
				continue
			}
			if v.ValType != ValueTypeOf(fd.Kind) {
				*errs = append(*errs, fmt.Errorf("%w: action %q field %q: value type %s != field type %s", ErrTypeMismatch, action, a.Field, v.ValType, ValueTypeOf(fd.Kind)))
				continue
			}
			sets = append(sets, CompiledAssignment{Target: a.Target, Field: a.Field, Value: v})
		}
		out[action] = &CompiledEffect{ActorEntity: eff.ActorEntity, Creates: creates, Sets: sets}
	}
	return out
}

func compileProperties(doc *Document, tc *TypeContext, errs *CompileErrors) map[string]*CompiledProperty {
	out := make(map[string]*CompiledProperty, len(doc.Properties))
	for name, p := range doc.Properties {
		switch p.Kind {
		case PropertyInvariant:
			pred := compileExpr(tc, EmptyFrame, p.Predicate, 1, errs)
			if pred != nil && pred.ValType != TBool {
				*errs = append(*errs, fmt.Errorf("%w: invariant %q predicate must be bool", ErrTypeMismatch, name))
			}
			out[name] = &CompiledProperty{Kind: PropertyInvariant, Predicate: pred}
		case PropertyTemporal:
			out[name] = &CompiledProperty{Kind: PropertyTemporal, Temporal: compileTemporal(name, p.Temporal, tc, errs)}
		default:
			*errs = append(*errs, fmt.Errorf("%w: property %q unknown kind %q", ErrTypeMismatch, name, p.Kind))
		}
	}
	return out
}

func compileTemporal(propName string, t TemporalRule, tc *TypeContext, errs *CompileErrors) *CompiledTemporal {
	ct := &CompiledTemporal{Op: t.Op, Trigger: t.Trigger, Action: t.Action, NeverAction: t.NeverAction, Scope: t.Scope}
	switch t.Op {
	case TemporalBefore:
		ct.Condition = compileExpr(tc, EmptyFrame, t.Condition, 1, errs)
	case TemporalAfter:
		ct.Consequence = compileExpr(tc, EmptyFrame, t.Consequence, 1, errs)
	case TemporalNever:
		// NeverAction + Scope only; no predicate to compile.
	default:
		*errs = append(*errs, fmt.Errorf("%w: temporal property %q unknown op %q", ErrTypeMismatch, propName, t.Op))
	}
	return ct
}

func compileInputDomains(doc *Document, tc *TypeContext, errs *CompileErrors) map[string]*CompiledInputDomain {
	out := make(map[string]*CompiledInputDomain, len(doc.Inputs))
	for name, d := range doc.Inputs {
		if d.Kind == DomainEnum && len(d.Values) == 0 {
			*errs = append(*errs, fmt.Errorf("%w: input domain %q enum needs at least one value", ErrTypeMismatch, name))
		}
		if d.Kind == DomainInt && d.Min > d.Max {
			*errs = append(*errs, fmt.Errorf("%w: input domain %q min %d > max %d", ErrInvalidRepeatBound, name, d.Min, d.Max))
		}
		frame, err := EmptyFrame.Child(name, domainVarName(name))
		if err != nil {
			*errs = append(*errs, err)
			continue
		}
		cs := make([]*Expr, 0, len(d.Constraints))
		for _, raw := range d.Constraints {
			ce := compileExpr(tc, frame, raw, 1, errs)
			if ce != nil {
				cs = append(cs, ce)
			}
		}
		out[name] = &CompiledInputDomain{Kind: d.Kind, Values: d.Values, Min: d.Min, Max: d.Max, Constraints: cs}
	}
	return out
}

func validateActionCoverage(graphs map[string]*Graph, effects map[string]EffectDecl, bindings map[string]BindingDecl, errs *CompileErrors) {
	seen := map[string]bool{}
	for _, g := range graphs {
		for _, n := range g.Nodes {
			if n.Kind != KindTerminal || seen[n.Action] {
				continue
			}
			seen[n.Action] = true
			if _, ok := effects[n.Action]; !ok {
				*errs = append(*errs, fmt.Errorf("%w: action %q", ErrMissingEffect, n.Action))
			}
			if _, ok := bindings[n.Action]; !ok {
				*errs = append(*errs, fmt.Errorf("%w: action %q", ErrMissingBinding, n.Action))
			}
		}
	}
}

func validateGenerators(doc *Document, errs *CompileErrors) {
	for name, g := range doc.Generators {
		switch g.Kind {
		case GeneratorAllPairs:
			for _, d := range g.Domains {
				if _, ok := doc.Inputs[d]; !ok {
					*errs = append(*errs, fmt.Errorf("%w: generator %q domain %q", ErrDanglingReference, name, d))
				}
			}
		case GeneratorEachTransition:
			if _, ok := doc.Protocols[g.Protocol]; !ok {
				*errs = append(*errs, fmt.Errorf("%w: generator %q protocol %q", ErrDanglingReference, name, g.Protocol))
			}
		case GeneratorBoundary:
			if _, ok := doc.Inputs[g.Domain]; !ok {
				*errs = append(*errs, fmt.Errorf("%w: generator %q domain %q", ErrDanglingReference, name, g.Domain))
			}
		default:
			*errs = append(*errs, fmt.Errorf("%w: generator %q unknown kind %q", ErrTypeMismatch, name, g.Kind))
		}
	}
}
