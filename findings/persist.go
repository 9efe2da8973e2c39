package findings

import (
	"fmt"

	"github.com/ajhcs/beacon/codec"
	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/model"
)

// sectionCapsules is this package's codec section within a campaign's
// shared persisted envelope (§6 "Persisted state layout"; §4.7
// "Cross-campaign memory ... replay capsules for regression priority at
// the next campaign's start"). Named independently of
// coordinator.sectionWeights/sectionUnreachable/sectionHotRegions so
// both packages can add sections to the same codec.Envelope without
// importing each other.
const sectionCapsules = "findings.capsules"

type replayStepRecord struct {
	Action  string        `json:"action"`
	ActorID string        `json:"actor_id"`
	Input   []valueRecord `json:"input"`
}

type valueRecord struct {
	Type int    `json:"type"`
	B    bool   `json:"b,omitempty"`
	I    int64  `json:"i,omitempty"`
	S    string `json:"s,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

type capsuleRecord struct {
	Kind     string             `json:"kind"`
	Property string             `json:"property"`
	Steps    []replayStepRecord `json:"steps"`
}

// SaveCapsules writes every recorded finding's replay capsule into env,
// for the next campaign against the same content hash to prioritize as
// regression replays before exploring fresh ground.
func (s *Store) SaveCapsules(env *codec.Envelope) error {
	s.mu.Lock()
	out := make([]capsuleRecord, 0, len(s.findings))
	for _, f := range s.findings {
		steps := make([]replayStepRecord, len(f.Capsule.Steps))
		for i, st := range f.Capsule.Steps {
			input := make([]valueRecord, len(st.Input))
			for j, v := range st.Input {
				input[j] = valueRecord{Type: int(v.Type), B: v.B, I: v.I, S: v.S, Ref: string(v.Ref)}
			}
			steps[i] = replayStepRecord{Action: st.Action, ActorID: string(st.ActorID), Input: input}
		}
		out = append(out, capsuleRecord{Kind: string(f.Kind), Property: f.Property, Steps: steps})
	}
	s.mu.Unlock()
	if err := env.Put(sectionCapsules, out); err != nil {
		return fmt.Errorf("findings: save capsules: %w", err)
	}
	return nil
}

// LoadRegressionCapsules reads capsules persisted by a prior campaign
// against the same content hash, for replay before any fresh traversal
// starts. It does not repopulate Store (capsules are not "findings"
// until they reproduce again); callers replay each and re-Record only
// those that still reproduce.
func LoadRegressionCapsules(env *codec.Envelope) ([]ReplayCapsule, []Kind, []string, error) {
	var records []capsuleRecord
	ok, err := env.Get(sectionCapsules, &records)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("findings: load capsules: %w", err)
	}
	if !ok {
		return nil, nil, nil, nil
	}
	capsules := make([]ReplayCapsule, len(records))
	kinds := make([]Kind, len(records))
	properties := make([]string, len(records))
	for i, r := range records {
		steps := make([]coordinator.ReplayStep, len(r.Steps))
		for j, sr := range r.Steps {
			input := make([]model.Value, len(sr.Input))
			for k, v := range sr.Input {
				input[k] = model.Value{Type: model.ValueType(v.Type), B: v.B, I: v.I, S: v.S, Ref: model.InstanceID(v.Ref)}
			}
			steps[j] = coordinator.ReplayStep{Action: sr.Action, ActorID: model.InstanceID(sr.ActorID), Input: input}
		}
		capsules[i] = ReplayCapsule{Steps: steps}
		kinds[i] = Kind(r.Kind)
		properties[i] = r.Property
	}
	return capsules, kinds, properties, nil
}
