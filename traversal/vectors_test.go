package traversal

import (
	"math/rand"
	"testing"

	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/solver"
	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func TestVectorSourceReturnsEmptyWhenNoVectors(t *testing.T) {
	vs := NewVectorSource(nil)
	v := vs.Next(rand.New(rand.NewSource(1)), nil)
	require.Empty(t, v)
}

func TestVectorSourcePrefersCoverageAdvancingVector(t *testing.T) {
	generators := map[string]spec.GeneratorDecl{
		"edge": {Kind: spec.GeneratorBoundary, Domain: "n", Values: []interface{}{"10"}},
	}
	inputs := map[string]*spec.CompiledInputDomain{"n": {Kind: spec.DomainInt, Min: 0, Max: 10}}
	pool, err := solver.NewPool(generators, nil, inputs)
	require.NoError(t, err)

	vectors := []solver.Vector{
		{"n": model.IntValue(3)},
		{"n": model.IntValue(10)},
	}
	vs := NewVectorSource(vectors)
	rng := rand.New(rand.NewSource(1))

	var got solver.Vector
	for i := 0; i < 20; i++ {
		got = vs.Next(rng, pool)
		if got["n"].I == 10 {
			break
		}
	}
	require.Equal(t, int64(10), got["n"].I, "coverage-directed pick should find the boundary-advancing vector")
}
