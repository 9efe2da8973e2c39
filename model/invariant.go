package model

import (
	"fmt"
	"sort"

	"github.com/ajhcs/beacon/spec"
)

// CheckInvariants evaluates every invariant property against ev's
// current state, reporting one Violation per false predicate (§4.3
// "Invariant checking": "any false yields an invariant-violation
// finding naming the property and the binding frame"). Properties are
// walked in name order so reported violations are reproducible across
// runs of the same compiled content hash.
func CheckInvariants(ev *Evaluator, properties map[string]*spec.CompiledProperty, step uint64) ([]Violation, error) {
	names := sortedPropertyNames(properties, spec.PropertyInvariant)
	var out []Violation
	for _, name := range names {
		p := properties[name]
		v, err := ev.Eval(p.Predicate, EmptyFrame)
		if err != nil {
			return out, fmt.Errorf("model: evaluating invariant %q: %w", name, err)
		}
		if !v.B {
			out = append(out, Violation{
				Kind:     ViolationInvariant,
				Property: name,
				Message:  fmt.Sprintf("invariant %q is false", name),
				Step:     step,
			})
		}
	}
	return out, nil
}

func sortedPropertyNames(properties map[string]*spec.CompiledProperty, kind spec.PropertyKind) []string {
	names := make([]string, 0, len(properties))
	for name, p := range properties {
		if p.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
