package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveSatisfiesSimpleClause(t *testing.T) {
	f := NewFormula()
	a := f.NewVar()
	b := f.NewVar()
	f.AddClause(a, b) // a OR b

	assign, err := Solve(f, nil)
	require.NoError(t, err)
	require.True(t, assign.True(a) || assign.True(b))
}

func TestSolveDetectsUnsat(t *testing.T) {
	f := NewFormula()
	a := f.NewVar()
	f.AddClause(a)
	f.AddClause(a.Neg())

	_, err := Solve(f, nil)
	require.ErrorIs(t, err, ErrUnsat)
}

func TestSolveHonorsAssumptions(t *testing.T) {
	f := NewFormula()
	a := f.NewVar()
	b := f.NewVar()
	g := f.And(a, b)
	f.Assert(g)

	assign, err := Solve(f, []Lit{a.Neg()})
	require.ErrorIs(t, err, ErrUnsat, "a AND b cannot hold once a is forced false")
	require.Nil(t, assign)

	assign, err = Solve(f, []Lit{a})
	require.NoError(t, err)
	require.True(t, assign.True(a))
	require.True(t, assign.True(b))
}

func TestSolveNEnumeratesDistinctModels(t *testing.T) {
	f := NewFormula()
	a := f.NewVar()
	b := f.NewVar()

	assigns, err := SolveN(f, nil, 4)
	require.NoError(t, err)
	require.Len(t, assigns, 4, "two free variables have exactly four models")

	seen := map[[2]bool]bool{}
	for _, assign := range assigns {
		seen[[2]bool{assign.True(a), assign.True(b)}] = true
	}
	require.Len(t, seen, 4)
}
