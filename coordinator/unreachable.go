package coordinator

import "github.com/ajhcs/beacon/solver"

// unreachableProof records a coverage target the coordinator has
// proven permanently unreachable: a static walk of the protocol graph
// found no path to it AND the solver's UnsatCache independently proved
// the guard condition along every candidate path unsatisfiable (§4.5
// "provable unreachability... only when both a static walk and a
// solver UNSAT proof agree"). Proofs are never retracted within a
// campaign; they carry forward as part of cross-campaign memory.
type unreachableProof struct {
	Target      string
	EdgeID      string
	StateID     string
	Assumptions []solver.Lit
}

// UnreachableTracker accumulates unreachability proofs and zeroes the
// weight of any edge a proof covers, so traversal never spends budget
// chasing a target that cannot fire.
type UnreachableTracker struct {
	weights *WeightTable
	proofs  map[string]unreachableProof
}

func NewUnreachableTracker(weights *WeightTable) *UnreachableTracker {
	return &UnreachableTracker{weights: weights, proofs: map[string]unreachableProof{}}
}

// staticallyUnreachable reports whether a static walk of the graph found
// no path to target. The coordinator only has the information a
// traversal signal carries to work with, so this is supplied by the
// caller (the traversal/graph layer) rather than recomputed here.
func (u *UnreachableTracker) Confirm(target, edgeID, stateID string, assumptions []solver.Lit, staticallyUnreachable, solverUnsat bool) bool {
	if !staticallyUnreachable || !solverUnsat {
		return false
	}
	if _, ok := u.proofs[target]; ok {
		return true
	}
	u.proofs[target] = unreachableProof{Target: target, EdgeID: edgeID, StateID: stateID, Assumptions: assumptions}
	u.weights.Skip(edgeID, stateID)
	return true
}

// IsProven reports whether target already carries an unreachability
// proof.
func (u *UnreachableTracker) IsProven(target string) bool {
	_, ok := u.proofs[target]
	return ok
}

// Proofs returns every recorded proof, for persistence.
func (u *UnreachableTracker) Proofs() []unreachableProof {
	out := make([]unreachableProof, 0, len(u.proofs))
	for _, p := range u.proofs {
		out = append(out, p)
	}
	return out
}

// restore replaces the proof set, used when loading cross-campaign
// memory. It re-applies the Skip side effect on the (possibly fresh)
// weight table so restored proofs stay enforced.
func (u *UnreachableTracker) restore(proofs []unreachableProof) {
	u.proofs = make(map[string]unreachableProof, len(proofs))
	for _, p := range proofs {
		u.proofs[p.Target] = p
		u.weights.Skip(p.EdgeID, p.StateID)
	}
}
