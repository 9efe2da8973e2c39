package coordinator

import (
	"fmt"

	"github.com/ajhcs/beacon/codec"
	"github.com/ajhcs/beacon/solver"
)

// sectionWeights/sectionUnreachable/sectionHotRegions are the codec
// section names the coordinator owns within a campaign's persisted
// envelope (§6 "Persisted state layout"); the findings package adds its
// own replay-capsule section to the same Envelope under a different
// name, and the campaign package writes both into one file, so one file
// on disk carries the full cross-campaign
// memory set (weight table decayed, unreachable proofs, hot regions,
// replay capsules) without the coordinator knowing about findings.
const (
	sectionWeights     = "coordinator.weights"
	sectionUnreachable = "coordinator.unreachable"
	sectionHotRegions  = "coordinator.hot_regions"
)

type weightRecord struct {
	EdgeID  string  `json:"edge_id"`
	StateID string  `json:"state_id"`
	Weight  float64 `json:"weight"`
}

type unreachableRecord struct {
	Target      string `json:"target"`
	EdgeID      string `json:"edge_id"`
	StateID     string `json:"state_id"`
	Assumptions []int  `json:"assumptions"`
}

// hotRegion is a coverage target that historically needed repeated
// boosting, carried forward so a fresh campaign against the same
// compiled content starts its weight table already biased toward it
// (§4.7 "hot regions").
type hotRegion struct {
	Target string `json:"target"`
	Boosts int    `json:"boosts"`
}

// Memory is the coordinator's view of cross-campaign persisted state.
type Memory struct {
	Weights     *WeightTable
	Unreachable *UnreachableTracker
	HotRegions  map[string]int
}

// Save writes the coordinator's cross-campaign sections into env.
func (m *Memory) Save(env *codec.Envelope) error {
	m.Weights.mu.Lock()
	wr := make([]weightRecord, 0, len(m.Weights.entries))
	for k, e := range m.Weights.entries {
		wr = append(wr, weightRecord{EdgeID: k.EdgeID, StateID: k.StateID, Weight: e.weight})
	}
	m.Weights.mu.Unlock()
	if err := env.Put(sectionWeights, wr); err != nil {
		return fmt.Errorf("coordinator: save weights: %w", err)
	}

	ur := make([]unreachableRecord, 0, len(m.Unreachable.proofs))
	for _, p := range m.Unreachable.proofs {
		ints := make([]int, len(p.Assumptions))
		for i, l := range p.Assumptions {
			ints[i] = int(l)
		}
		ur = append(ur, unreachableRecord{Target: p.Target, EdgeID: p.EdgeID, StateID: p.StateID, Assumptions: ints})
	}
	if err := env.Put(sectionUnreachable, ur); err != nil {
		return fmt.Errorf("coordinator: save unreachable: %w", err)
	}

	hr := make([]hotRegion, 0, len(m.HotRegions))
	for target, boosts := range m.HotRegions {
		hr = append(hr, hotRegion{Target: target, Boosts: boosts})
	}
	if err := env.Put(sectionHotRegions, hr); err != nil {
		return fmt.Errorf("coordinator: save hot regions: %w", err)
	}
	return nil
}

// Load restores cross-campaign sections from env into m. Missing
// sections (a fresh compiled content hash, or an envelope written by an
// older build) are left at their zero value rather than erroring, per
// the codec's forward-compatibility contract.
func (m *Memory) Load(env *codec.Envelope) error {
	var wr []weightRecord
	if ok, err := env.Get(sectionWeights, &wr); err != nil {
		return fmt.Errorf("coordinator: load weights: %w", err)
	} else if ok {
		for _, r := range wr {
			m.Weights.Restore(r.EdgeID, r.StateID, r.Weight)
		}
	}

	var ur []unreachableRecord
	if ok, err := env.Get(sectionUnreachable, &ur); err != nil {
		return fmt.Errorf("coordinator: load unreachable: %w", err)
	} else if ok {
		proofs := make([]unreachableProof, len(ur))
		for i, r := range ur {
			lits := make([]solver.Lit, len(r.Assumptions))
			for j, v := range r.Assumptions {
				lits[j] = solver.Lit(v)
			}
			proofs[i] = unreachableProof{Target: r.Target, EdgeID: r.EdgeID, StateID: r.StateID, Assumptions: lits}
		}
		m.Unreachable.restore(proofs)
	}

	var hr []hotRegion
	if ok, err := env.Get(sectionHotRegions, &hr); err != nil {
		return fmt.Errorf("coordinator: load hot regions: %w", err)
	} else if ok {
		if m.HotRegions == nil {
			m.HotRegions = make(map[string]int, len(hr))
		}
		for _, r := range hr {
			m.HotRegions[r.Target] = r.Boosts
		}
	}
	return nil
}
