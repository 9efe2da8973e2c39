package solver

// Lit is a CNF literal: a positive value names a variable asserted true,
// a negative value the same variable asserted false. Variables are
// numbered from 1, so 0 is never a literal; variable 1 is the
// constant-true helper variable allocated by every Formula (see
// NewFormula).
type Lit int

// Neg returns the complementary literal.
func (l Lit) Neg() Lit { return -l }

// Formula is a growable CNF instance built by Tseitin-encoding a
// predicate tree one gate at a time (§4.5 "Predicates over domain
// variables are translated to CNF"). Every auxiliary gate variable is
// allocated through And/Or/Not/Implies so the formula stays in strict
// CNF throughout construction rather than needing a final conversion
// pass.
type Formula struct {
	nvars   int
	Clauses [][]Lit
	// True is a literal that is always true, used as a fixed point for
	// constant sub-expressions folded during encoding.
	True Lit
}

// NewFormula returns an empty formula with its constant-true helper
// variable already asserted.
func NewFormula() *Formula {
	f := &Formula{}
	v := f.NewVar()
	f.AddClause(v)
	f.True = v
	return f
}

// NewVar allocates a fresh variable and returns its positive literal.
func (f *Formula) NewVar() Lit {
	f.nvars++
	return Lit(f.nvars)
}

// NumVars reports how many variables have been allocated.
func (f *Formula) NumVars() int { return f.nvars }

// AddClause appends a disjunction of literals to the formula.
func (f *Formula) AddClause(lits ...Lit) {
	clause := make([]Lit, len(lits))
	copy(clause, lits)
	f.Clauses = append(f.Clauses, clause)
}

// And returns a fresh literal g such that g <-> (a AND b), asserted via
// the standard three-clause Tseitin gate.
func (f *Formula) And(a, b Lit) Lit {
	g := f.NewVar()
	f.AddClause(g.Neg(), a)
	f.AddClause(g.Neg(), b)
	f.AddClause(g, a.Neg(), b.Neg())
	return g
}

// Or returns a fresh literal g such that g <-> (a OR b).
func (f *Formula) Or(a, b Lit) Lit {
	g := f.NewVar()
	f.AddClause(g, a.Neg())
	f.AddClause(g, b.Neg())
	f.AddClause(g.Neg(), a, b)
	return g
}

// Not returns the literal for NOT a. No gate variable is needed since
// negation of a literal is representable directly.
func (f *Formula) Not(a Lit) Lit { return a.Neg() }

// Implies returns a fresh literal g such that g <-> (a -> b).
func (f *Formula) Implies(a, b Lit) Lit {
	return f.Or(a.Neg(), b)
}

// Xor returns a fresh literal g such that g <-> (a XOR b), used by the
// bitwise equality comparator in domain.go.
func (f *Formula) Xor(a, b Lit) Lit {
	g := f.NewVar()
	f.AddClause(g.Neg(), a, b)
	f.AddClause(g.Neg(), a.Neg(), b.Neg())
	f.AddClause(g, a.Neg(), b)
	f.AddClause(g, a, b.Neg())
	return g
}

// AndAll folds And across lits, returning True for an empty slice.
func (f *Formula) AndAll(lits []Lit) Lit {
	if len(lits) == 0 {
		return f.True
	}
	acc := lits[0]
	for _, l := range lits[1:] {
		acc = f.And(acc, l)
	}
	return acc
}

// OrAll folds Or across lits, returning the negated constant-true (i.e.
// false) for an empty slice.
func (f *Formula) OrAll(lits []Lit) Lit {
	if len(lits) == 0 {
		return f.True.Neg()
	}
	acc := lits[0]
	for _, l := range lits[1:] {
		acc = f.Or(acc, l)
	}
	return acc
}

// Assert adds a unit clause forcing l to true — used to bind the
// top-level literal of a compiled constraint into the formula.
func (f *Formula) Assert(l Lit) {
	f.AddClause(l)
}
