package model

// ViolationKind tags the property-checking origin of a Violation; it is
// narrower than findings.Kind (§3 "Finding"), which also covers
// discrepancies, crashes, timeouts, and solver-refuted guards raised
// outside the model kernel.
type ViolationKind string

const (
	ViolationInvariant      ViolationKind = "invariant"
	ViolationTemporalBefore ViolationKind = "temporal_before"
	ViolationTemporalAfter  ViolationKind = "temporal_after"
	ViolationTemporalNever  ViolationKind = "temporal_never"
)

// Violation is a single property-checking failure (§4.3 "Invariant
// checking" / "Temporal checking"), reported immediately as it is
// found. The findings package wraps these into Finding records with a
// sequence number and replay capsule.
type Violation struct {
	Kind     ViolationKind
	Property string
	Message  string
	Step     uint64
}
