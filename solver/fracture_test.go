package solver

import (
	"context"
	"testing"

	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func TestDriverFracturePartitionsAndMergesDeterministically(t *testing.T) {
	f := NewFormula()
	enc, err := EncodeDomain(f, &spec.CompiledInputDomain{Kind: DomainInt, Min: 0, Max: 7})
	require.NoError(t, err)
	encs := map[string]*DomainEncoding{"n": enc}

	d := NewDriver(NewUnsatCache(), 4, 1)
	var hash [32]byte
	result, err := d.Fracture(context.Background(), f, hash, enc.IntBits, 8, func(a Assignment) Vector {
		return Decode(encs, a)
	})
	require.NoError(t, err)
	require.Empty(t, result.Unsat)
	require.Len(t, result.Vectors, 8, "fracturing on all 3 bits of an 8-value domain yields one vector per value")

	seen := map[int64]bool{}
	for _, v := range result.Vectors {
		seen[v["n"].I] = true
	}
	require.Len(t, seen, 8)
}

func TestDriverFractureRecordsAndCachesUnsat(t *testing.T) {
	f := NewFormula()
	a := f.NewVar()
	b := f.NewVar()
	// a and b can never both be true, and the fracture below forces
	// exactly that combination in one of its four subspaces.
	f.AddClause(a.Neg(), b.Neg())

	cache := NewUnsatCache()
	d := NewDriver(cache, 4, 1)
	var hash [32]byte
	decode := func(Assignment) Vector { return Vector{} }

	result, err := d.Fracture(context.Background(), f, hash, []Lit{a, b}, 4, decode)
	require.NoError(t, err)
	require.Len(t, result.Unsat, 1)
	require.True(t, cache.IsUnsat(hash, result.Unsat[0].Assumptions))

	// re-running hits the cache and still reports exactly one unsat subspace.
	result2, err := d.Fracture(context.Background(), f, hash, []Lit{a, b}, 4, decode)
	require.NoError(t, err)
	require.Len(t, result2.Unsat, 1)
}
