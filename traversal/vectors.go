package traversal

import (
	"math/rand"
	"sync"

	"github.com/ajhcs/beacon/solver"
)

// VectorSource hands out input vectors solved once up front by the
// fracture/solve driver (C5) and reused with replacement for the
// remainder of the campaign — a protocol can call the same action an
// unbounded number of times, far more than the finite model set the
// solver produced for it. Selection is coverage-directed when a target
// is pending (§4.6 "request a vector from the pool, coverage-directed
// if a target is pending"): a handful of candidates are screened
// against the pending target via Pool.WouldAdvance before falling back
// to a plain random pick.
type VectorSource struct {
	mu      sync.Mutex
	vectors []solver.Vector
}

// NewVectorSource wraps the vectors a Driver.Fracture call produced.
func NewVectorSource(vectors []solver.Vector) *VectorSource {
	return &VectorSource{vectors: vectors}
}

const coverageScreenAttempts = 8

// Next returns one vector, preferring one that advances pool's pending
// target if pool is not nil.
func (vs *VectorSource) Next(rng *rand.Rand, pool *solver.Pool) solver.Vector {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if len(vs.vectors) == 0 {
		return solver.Vector{}
	}
	if pool != nil {
		if target, ok := pool.Pending(); ok {
			for i := 0; i < coverageScreenAttempts; i++ {
				cand := vs.vectors[rng.Intn(len(vs.vectors))]
				if pool.WouldAdvance(target, cand) {
					return cand
				}
			}
		}
	}
	return vs.vectors[rng.Intn(len(vs.vectors))]
}
