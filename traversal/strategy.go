package traversal

import (
	"math/rand"

	"github.com/ajhcs/beacon/spec"
)

// StrategyKind names one of the four strategies §4.6 describes.
type StrategyKind string

const (
	StrategyPseudoRandom  StrategyKind = "pseudo_random"
	StrategyTargeted      StrategyKind = "targeted"
	StrategyInvestigation StrategyKind = "investigation"
	StrategyForce         StrategyKind = "force"
)

// WeightedEdge pairs an eligible Branch edge with its current weight
// table cell value, the input PickEdge chooses among.
type WeightedEdge struct {
	Edge   spec.Edge
	Weight float64
}

// Strategy biases how a Branch's eligible edge set is chosen from.
type Strategy interface {
	Kind() StrategyKind
	// PickEdge selects one of eligible using rng. It returns false if
	// eligible is empty (Branch handling emits guard-failure instead of
	// calling it with an empty slice) and, for a Force strategy, when its
	// sequence is exhausted or its next pinned edge id is not in eligible.
	PickEdge(rng *rand.Rand, eligible []WeightedEdge) (spec.Edge, bool)
}

// pseudoRandomStrategy is the always-present base of the stack: a plain
// weighted draw over the eligible set (§4.6 "base PseudoRandom
// strategy").
type pseudoRandomStrategy struct{}

func (pseudoRandomStrategy) Kind() StrategyKind { return StrategyPseudoRandom }

func (pseudoRandomStrategy) PickEdge(rng *rand.Rand, eligible []WeightedEdge) (spec.Edge, bool) {
	if len(eligible) == 0 {
		return spec.Edge{}, false
	}
	var total float64
	for _, we := range eligible {
		total += we.Weight
	}
	if total <= 0 {
		return eligible[rng.Intn(len(eligible))].Edge, true
	}
	draw := rng.Float64() * total
	for _, we := range eligible {
		draw -= we.Weight
		if draw <= 0 {
			return we.Edge, true
		}
	}
	return eligible[len(eligible)-1].Edge, true
}

// targetedStrategy biases the draw toward a specific edge id believed
// to make progress on a pending coverage target (§4.6 "biases toward a
// coverage goal"). If the favored edge is not in the eligible set this
// epoch, it falls back to a plain weighted draw.
type targetedStrategy struct {
	favorEdgeID string
	boost       float64
	base        pseudoRandomStrategy
}

func newTargetedStrategy(favorEdgeID string) *targetedStrategy {
	return &targetedStrategy{favorEdgeID: favorEdgeID, boost: 10}
}

func (*targetedStrategy) Kind() StrategyKind { return StrategyTargeted }

func (t *targetedStrategy) PickEdge(rng *rand.Rand, eligible []WeightedEdge) (spec.Edge, bool) {
	boosted := make([]WeightedEdge, len(eligible))
	found := false
	for i, we := range eligible {
		boosted[i] = we
		if we.Edge.ID == t.favorEdgeID {
			boosted[i].Weight *= t.boost
			found = true
		}
	}
	if !found {
		return t.base.PickEdge(rng, eligible)
	}
	return t.base.PickEdge(rng, boosted)
}

// investigationStrategy biases toward edges in a finding's hot region:
// the set of edge ids the coordinator recorded as visited just before a
// reproducing finding (§4.6 "focuses on a reproducing finding's
// locality", §4.7 "hot regions").
type investigationStrategy struct {
	hotEdgeIDs map[string]bool
	boost      float64
	base       pseudoRandomStrategy
}

func newInvestigationStrategy(hotEdgeIDs []string) *investigationStrategy {
	set := make(map[string]bool, len(hotEdgeIDs))
	for _, id := range hotEdgeIDs {
		set[id] = true
	}
	return &investigationStrategy{hotEdgeIDs: set, boost: 5}
}

func (*investigationStrategy) Kind() StrategyKind { return StrategyInvestigation }

func (s *investigationStrategy) PickEdge(rng *rand.Rand, eligible []WeightedEdge) (spec.Edge, bool) {
	boosted := make([]WeightedEdge, len(eligible))
	for i, we := range eligible {
		boosted[i] = we
		if s.hotEdgeIDs[we.Edge.ID] {
			boosted[i].Weight *= s.boost
		}
	}
	return s.base.PickEdge(rng, boosted)
}

// forceStrategy deterministically replays a compiled directive's
// terminal sequence (§4.6 "compiled from a directive to pin a
// subsequence", §4.7 "force(sequence) pushes a Force strategy that
// replays the given terminal sequence"). Each PickEdge call consumes
// the next edge id in sequence regardless of weight; it reports a miss
// when that id is not in the eligible set or the sequence is exhausted,
// and Stack.Top drops it once it is exhausted.
type forceStrategy struct {
	sequence []string
	pos      int
}

func newForceStrategy(sequence []string) *forceStrategy {
	return &forceStrategy{sequence: sequence}
}

func (*forceStrategy) Kind() StrategyKind { return StrategyForce }

func (f *forceStrategy) Exhausted() bool { return f.pos >= len(f.sequence) }

func (f *forceStrategy) PickEdge(rng *rand.Rand, eligible []WeightedEdge) (spec.Edge, bool) {
	if f.Exhausted() {
		return spec.Edge{}, false
	}
	want := f.sequence[f.pos]
	for _, we := range eligible {
		if we.Edge.ID == want {
			f.pos++
			return we.Edge, true
		}
	}
	return spec.Edge{}, false
}

// Stack holds the base PseudoRandom strategy plus any pushed
// refinements, bounded to maxDepth entries above the base (§4.6
// "Depth is bounded; overflow pops the oldest non-base strategy").
type Stack struct {
	base   pseudoRandomStrategy
	pushed []Strategy
	depth  int
}

// NewStack returns a stack with only the base strategy active.
func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = 1
	}
	return &Stack{depth: depth}
}

// Push adds s above the current top, evicting the oldest pushed
// (non-base) strategy first if the stack is already at capacity.
func (s *Stack) Push(strat Strategy) {
	if len(s.pushed) >= s.depth {
		s.pushed = s.pushed[1:]
	}
	s.pushed = append(s.pushed, strat)
}

// Pop discards the currently active non-base strategy, e.g. on a
// guard-failure signal at a Branch (§4.6 "If the eligible set is empty,
// emit a guard-failure signal and pop"). A no-op if only the base
// strategy is active.
func (s *Stack) Pop() {
	if len(s.pushed) == 0 {
		return
	}
	s.pushed = s.pushed[:len(s.pushed)-1]
}

// Top returns the currently active strategy: the most recently pushed
// one not yet exhausted, falling back through the stack to the base.
func (s *Stack) Top() Strategy {
	for i := len(s.pushed) - 1; i >= 0; i-- {
		if f, ok := s.pushed[i].(*forceStrategy); ok && f.Exhausted() {
			s.pushed = append(s.pushed[:i], s.pushed[i+1:]...)
			continue
		}
		return s.pushed[i]
	}
	return s.base
}

// PushTargeted, PushInvestigation and PushForce are the coordinator-
// facing entry points a directive uses to add a strategy to this
// traversal worker's stack (§4.7 directives "force" and the traversal-
// local coverage-directed bias for "targeted"/"investigation").
func (s *Stack) PushTargeted(favorEdgeID string)    { s.Push(newTargetedStrategy(favorEdgeID)) }
func (s *Stack) PushInvestigation(hotEdges []string) { s.Push(newInvestigationStrategy(hotEdges)) }
func (s *Stack) PushForce(sequence []string)         { s.Push(newForceStrategy(sequence)) }
