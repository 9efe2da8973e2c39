package spec

// ExprKind discriminates the expression shapes described in §4.1.
type ExprKind string

const (
	ExprLiteral    ExprKind = "literal"
	ExprField      ExprKind = "field"
	ExprOp         ExprKind = "op"
	ExprQuantifier ExprKind = "quantifier"
	ExprCall       ExprKind = "call"
	ExprRefTest    ExprKind = "refinementTest"
)

// ValueType is the runtime type a compiled expression evaluates to.
type ValueType int

const (
	TBool ValueType = iota
	TInt
	TString
	TRef
)

func (t ValueType) String() string {
	switch t {
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TString:
		return "string"
	case TRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Operator enumerates the operators of §4.1.
type Operator string

const (
	OpEq      Operator = "eq"
	OpNeq     Operator = "neq"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpNot     Operator = "not"
	OpAnd     Operator = "and"
	OpOr      Operator = "or"
	OpImplies Operator = "implies"
)

var comparisonOps = map[Operator]bool{OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true}

// QuantKind distinguishes universal from existential quantifiers.
type QuantKind string

const (
	QuantForall QuantKind = "forall"
	QuantExists QuantKind = "exists"
)

// RawExpr is the JSON-decoded, untyped expression as authored in the
// document. Exactly one of the kind-specific field groups is populated,
// selected by Kind.
type RawExpr struct {
	Kind ExprKind `json:"kind"`

	// ExprLiteral — exactly one of these is non-nil.
	LitBool   *bool   `json:"litBool,omitempty"`
	LitInt    *int64  `json:"litInt,omitempty"`
	LitString *string `json:"litString,omitempty"`

	// ExprField
	Var   string `json:"var,omitempty"`
	Field string `json:"field,omitempty"`

	// ExprOp
	Operator Operator  `json:"operator,omitempty"`
	Args     []RawExpr `json:"args,omitempty"`

	// ExprQuantifier
	Quant  QuantKind `json:"quant,omitempty"`
	Bound  string    `json:"bound,omitempty"`
	Domain string    `json:"domain,omitempty"`
	Body   *RawExpr  `json:"body,omitempty"`

	// ExprCall
	Function string    `json:"function,omitempty"`
	CallArgs []RawExpr `json:"callArgs,omitempty"`

	// ExprRefTest
	RefVar        string             `json:"refVar,omitempty"`
	Refinement    string             `json:"refinement,omitempty"`
	ParamBindings map[string]RawExpr `json:"paramBindings,omitempty"`
}

// Expr is a type-checked expression node produced by Compile. Field
// population mirrors RawExpr, keyed the same way by Kind.
type Expr struct {
	Kind    ExprKind
	ValType ValueType

	Lit interface{} // bool | int64 | string

	Var   string
	Field string

	Op   Operator
	Args []*Expr

	Quant        QuantKind
	BoundVar     string
	DomainEntity string
	Body         *Expr

	FuncKind FunctionKind
	FuncName string
	CallArgs []*Expr

	RefVar         string
	RefinementName string
	ParamBindings  map[string]*Expr
}
