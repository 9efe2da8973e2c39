package model

import (
	"crypto/sha256"
	"encoding/json"
)

// StateHash computes the abstract-state identity (§3 "Abstract state
// identity"): a deterministic hash under a canonical ordering of entity
// types, instance identifiers, and field names. As in spec.computeContentHash,
// encoding/json sorts map keys alphabetically for string-keyed maps —
// both State.entities (keyed by entity type name) and each EntityMap
// (keyed by InstanceID, itself a string) are string-keyed — so no
// bespoke canonicalizer is needed.
func StateHash(s *State) [32]byte {
	// Value, EntityMap, and the top-level map all hold only JSON-safe
	// fields, so Marshal cannot fail here.
	b, _ := json.Marshal(s.entities)
	return sha256.Sum256(b)
}
