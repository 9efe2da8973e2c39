package model

import (
	"fmt"

	"github.com/google/uuid"
)

// instanceNamespace seeds the deterministic instance-id derivation
// (uuid.NewSHA1) so that two campaigns started from the same seed chain
// create bit-identical instance ids for bit-identical create() call
// sequences — required by the RNG discipline (§4.5: "same inputs ⇒
// bit-identical outputs"), which a crypto/rand-backed uuid.New() cannot
// satisfy.
var instanceNamespace = uuid.MustParse("6f8f7d0e-6c2b-4e1b-9e2d-2b9a9c6f7a11")

// EntityMap is the per-entity-type instance table: instance id to field
// environment.
type EntityMap map[InstanceID]map[string]Value

// State is the copy-on-write model state (§3, §4.3). Copy-on-write is
// at the granularity of entity-type maps: Set clones only the EntityMap
// for the field's entity type, leaving every other entity type's map
// shared with whatever State it was forked from.
type State struct {
	entities map[string]EntityMap
	seq      uint64 // create() counter, seeds deterministic instance ids
}

// NewState returns an empty model state.
func NewState() *State {
	return &State{entities: map[string]EntityMap{}}
}

// Fork returns a logically independent copy of s (§4.3 `fork() -> handle`).
// The top-level entity-type map is copied; nested EntityMaps are shared
// until one of them is mutated via cow, at which point only that one is
// cloned.
func (s *State) Fork() *State {
	clone := make(map[string]EntityMap, len(s.entities))
	for k, v := range s.entities {
		clone[k] = v
	}
	return &State{entities: clone, seq: s.seq}
}

func (s *State) cow(entityType string) EntityMap {
	em := s.entities[entityType]
	cloned := make(EntityMap, len(em)+1)
	for id, fields := range em {
		cloned[id] = fields
	}
	s.entities[entityType] = cloned
	return cloned
}

// Create allocates a fresh instance of entityType with an empty field
// environment and returns its id (§4.3 `create(entity) -> instance_id`).
func (s *State) Create(entityType string) InstanceID {
	s.seq++
	id := InstanceID(uuid.NewSHA1(instanceNamespace, []byte(fmt.Sprintf("%s#%d", entityType, s.seq))).String())
	em := s.cow(entityType)
	em[id] = map[string]Value{}
	return id
}

// Set writes field on the given instance of entityType (§4.3
// `set(instance_id, field, value)`). Only the affected entity's field
// environment is cloned, not the whole EntityMap entry for other
// instances.
func (s *State) Set(entityType string, id InstanceID, field string, v Value) error {
	em := s.cow(entityType)
	fields, ok := em[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownInstance, entityType, id)
	}
	cloned := make(map[string]Value, len(fields)+1)
	for k, val := range fields {
		cloned[k] = val
	}
	cloned[field] = v
	em[id] = cloned
	return nil
}

// Get reads field on the given instance. ok is false if the instance or
// field is unset.
func (s *State) Get(entityType string, id InstanceID, field string) (Value, bool) {
	fields, ok := s.entities[entityType][id]
	if !ok {
		return Value{}, false
	}
	v, ok := fields[field]
	return v, ok
}

// Instances returns every instance id of entityType, in map-iteration
// (unspecified) order; callers that need determinism should sort.
func (s *State) Instances(entityType string) []InstanceID {
	em := s.entities[entityType]
	out := make([]InstanceID, 0, len(em))
	for id := range em {
		out = append(out, id)
	}
	return out
}

// EntityTypes returns every entity type with at least one instance.
func (s *State) EntityTypes() []string {
	out := make([]string, 0, len(s.entities))
	for t := range s.entities {
		out = append(out, t)
	}
	return out
}
