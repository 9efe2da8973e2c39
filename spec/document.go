// Package spec implements the declarative campaign document compiler: a
// typed expression AST and type context over entity declarations, and a
// compiler that lowers a structured JSON document into type-checked
// predicates plus a traversable NDA graph per protocol.
package spec

// Document is the raw, JSON-decoded specification (§6): ten required
// sections. Empty sections decode to nil/empty maps, which Compile
// treats as "declared but empty", not "missing".
type Document struct {
	Entities    map[string]EntityDecl     `json:"entities"`
	Refinements map[string]RefinementDecl `json:"refinements"`
	Functions   map[string]FunctionDecl   `json:"functions"`
	Protocols   map[string]ProtocolDecl   `json:"protocols"`
	Effects     map[string]EffectDecl     `json:"effects"`
	Properties  map[string]PropertyDecl   `json:"properties"`
	Generators  map[string]GeneratorDecl  `json:"generators"`
	Exploration ExplorationDecl           `json:"exploration"`
	Inputs      map[string]InputDomain    `json:"inputs"`
	Bindings    map[string]BindingDecl    `json:"bindings"`
}

// FieldKind enumerates the five field shapes an entity may declare (§3).
type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldInt    FieldKind = "int"
	FieldBool   FieldKind = "bool"
	FieldEnum   FieldKind = "enum"
	FieldRef    FieldKind = "ref"
)

// FieldDecl is one typed field of an entity.
type FieldDecl struct {
	Kind FieldKind `json:"kind"`

	// FieldString
	Format string `json:"format,omitempty"`

	// FieldInt (bounded integer)
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`

	// FieldBool
	Default *bool `json:"default,omitempty"`

	// FieldEnum — at least one value required
	Values []string `json:"values,omitempty"`

	// FieldRef
	RefEntity string `json:"refEntity,omitempty"`
}

// EntityDecl declares one named entity type with its typed fields.
type EntityDecl struct {
	Fields map[string]FieldDecl `json:"fields"`
}

// RefinementDecl declares a base entity plus optional parameters plus a
// predicate that must hold.
type RefinementDecl struct {
	Base      string   `json:"base"`
	Params    []string `json:"params,omitempty"`
	Predicate RawExpr  `json:"predicate"`
}

// FunctionKind distinguishes pure derived functions from guest-querying
// observers.
type FunctionKind string

const (
	FunctionDerived  FunctionKind = "derived"
	FunctionObserver FunctionKind = "observer"
)

// ParamDecl is one positional function or refinement parameter.
type ParamDecl struct {
	Name   string `json:"name"`
	Entity string `json:"entity"` // domain entity type of the parameter
}

// FunctionDecl declares a named derived or observer function.
type FunctionDecl struct {
	Kind       FunctionKind `json:"kind"`
	Params     []ParamDecl  `json:"params,omitempty"`
	ReturnType FieldKind    `json:"returnType"`

	// FunctionDerived
	Body RawExpr `json:"body,omitempty"`

	// FunctionObserver
	Binding string `json:"binding,omitempty"`
}

// ProtocolNodeKind enumerates the protocol-tree node shapes (§4.2) as
// authored in the document, before lowering to the NDA graph.
type ProtocolNodeKind string

const (
	NodeSeq    ProtocolNodeKind = "seq"
	NodeAlt    ProtocolNodeKind = "alt"
	NodeRepeat ProtocolNodeKind = "repeat"
	NodeCall   ProtocolNodeKind = "call"
	NodeRef    ProtocolNodeKind = "ref"
)

// AltBranch is one named, weighted branch of an alt node.
type AltBranch struct {
	ID     string       `json:"id"`
	Weight float64      `json:"weight"`
	Guard  RawExpr      `json:"guard,omitempty"`
	Body   ProtocolNode `json:"body"`
}

// ProtocolNode is one node of the authored protocol tree.
type ProtocolNode struct {
	Kind ProtocolNodeKind `json:"kind"`

	// NodeSeq
	Seq []ProtocolNode `json:"seq,omitempty"`

	// NodeAlt
	Branches []AltBranch `json:"branches,omitempty"`

	// NodeRepeat
	Min  int           `json:"min,omitempty"`
	Max  int           `json:"max,omitempty"`
	Body *ProtocolNode `json:"body,omitempty"`

	// NodeCall
	Action string  `json:"action,omitempty"`
	Guard  RawExpr `json:"guard,omitempty"`

	// NodeRef
	Ref string `json:"ref,omitempty"`
}

// ProtocolDecl is a named protocol: a tree rooted at Root.
type ProtocolDecl struct {
	Root ProtocolNode `json:"root"`
}

// CreateClause produces a fresh entity instance bound to As.
type CreateClause struct {
	Entity string `json:"entity"`
	As     string `json:"as"`
}

// Assignment sets Target's Field to the value of an expression whose
// shape is restricted (§3) to a literal or a field lookup. Target names
// a bound variable of the effect's frame — "actor", or the `creates`
// clause's `as` name — identifying which instance receives the field
// write; the base spec describes the assignment list without naming the
// write target explicitly, so this is an implementation-necessary
// addition (an effect often needs to both create an instance and set a
// field on the actor, so the target cannot be inferred from Creates
// alone).
type Assignment struct {
	Target string  `json:"target"`
	Field  string  `json:"field"`
	Value  RawExpr `json:"value"`
}

// EffectDecl is the named effect of one action. ActorEntity names the
// entity type of the acting instance bound to the reserved "actor" name
// inside Sets' expressions — an implementation-necessary annotation: the
// base spec's frame reserves "actor" (§9) but the entity type of the
// acting instance is otherwise only recoverable from the binding's
// argument types, which the compiler does not model positionally.
type EffectDecl struct {
	ActorEntity string        `json:"actorEntity,omitempty"`
	Creates     *CreateClause `json:"creates,omitempty"`
	Sets        []Assignment  `json:"sets,omitempty"`
}

// PropertyKind distinguishes invariants from temporal rules.
type PropertyKind string

const (
	PropertyInvariant PropertyKind = "invariant"
	PropertyTemporal  PropertyKind = "temporal"
)

// TemporalOp enumerates the temporal rule language (§4.3).
type TemporalOp string

const (
	TemporalBefore TemporalOp = "before"
	TemporalAfter  TemporalOp = "after"
	TemporalNever  TemporalOp = "never"
)

// Scope restricts a "never" rule to traces sharing a reference, e.g.
// {"same": "entity"}.
type Scope struct {
	Same string `json:"same,omitempty"`
}

// TemporalRule is one rule of the temporal property language.
type TemporalRule struct {
	Op TemporalOp `json:"op"`

	// before: trigger is an action name or a tag declared in bindings.
	Trigger   string  `json:"trigger,omitempty"`
	Condition RawExpr `json:"condition,omitempty"`

	// after
	Action      string  `json:"action,omitempty"`
	Consequence RawExpr `json:"consequence,omitempty"`

	// never
	NeverAction string `json:"neverAction,omitempty"`
	Scope       Scope  `json:"scope,omitempty"`
}

// PropertyDecl is a named invariant or temporal property.
type PropertyDecl struct {
	Kind      PropertyKind `json:"kind"`
	Predicate RawExpr      `json:"predicate,omitempty"` // invariant
	Temporal  TemporalRule `json:"temporal,omitempty"`  // temporal
}

// GeneratorKind enumerates coverage target shapes (§4.5).
type GeneratorKind string

const (
	GeneratorAllPairs       GeneratorKind = "all_pairs"
	GeneratorEachTransition GeneratorKind = "each_transition"
	GeneratorBoundary       GeneratorKind = "boundary"
)

// GeneratorDecl declares one coverage-directed generation target.
type GeneratorDecl struct {
	Kind     GeneratorKind `json:"kind"`
	Domains  []string      `json:"domains,omitempty"`
	Protocol string        `json:"protocol,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Values   []interface{} `json:"values,omitempty"`
}

// ExplorationDecl is the campaign-level exploration configuration carried
// by the compiled spec (distinct from host config.Host).
type ExplorationDecl struct {
	IterationBudget int     `json:"iterationBudget"`
	EpochSize       int     `json:"epochSize"`
	Seed            uint64  `json:"seed"`
	CoverageFloor   float64 `json:"coverageFloor"`
}

// InputDomainKind enumerates the three domain-variable shapes (§4.5).
type InputDomainKind string

const (
	DomainBool InputDomainKind = "bool"
	DomainEnum InputDomainKind = "enum"
	DomainInt  InputDomainKind = "int"
)

// InputDomain declares one named input domain plus the constraints over
// it (as refinement-style predicates referencing the domain's bound
// variable).
type InputDomain struct {
	Kind        InputDomainKind `json:"kind"`
	Values      []string        `json:"values,omitempty"` // DomainEnum
	Min         int64           `json:"min,omitempty"`    // DomainInt
	Max         int64           `json:"max,omitempty"`    // DomainInt
	Constraints []RawExpr       `json:"constraints,omitempty"`
}

// BindingDecl maps an abstract action name to its guest call descriptor
// (§4.4) and optional tag set used by temporal trigger matching (§4.3).
type BindingDecl struct {
	Export     string   `json:"export"`
	Args       []string `json:"args,omitempty"`       // input domain names, in call order
	ReturnType string   `json:"returnType,omitempty"`
	Mutates    bool     `json:"mutates"`
	Idempotent bool     `json:"idempotent"`
	ReadSet    []string `json:"readSet,omitempty"`
	WriteSet   []string `json:"writeSet,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	// Scope names which entity-typed argument a "same: entity" temporal
	// scope refers to (SPEC_FULL.md §D.2). It is decoded but read by
	// neither the compiler nor the kernel, so it does not change when a
	// never rule fires.
	Scope string `json:"scope,omitempty"`
}
